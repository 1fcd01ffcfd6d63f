package city

import (
	"unicode/utf8"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// ValidateName normalises a city name and checks its length.
func ValidateName(raw string) (string, error) {
	name := domain.NormalizeText(raw)
	var errs []domain.FieldError
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		errs = append(errs, domain.FieldError{Field: "name", Message: "max 64 characters"})
	}
	if len(errs) > 0 {
		return "", &domain.ValidationError{Errors: errs}
	}
	return name, nil
}

// PhotoInput is the cover picture of a city. SourceRef alone is enough when
// the picture was not copied to media storage. An empty input clears it.
type PhotoInput struct {
	URL       string
	FileName  string
	SourceRef string
}

// Validate checks all fields and collects all errors.
func (i PhotoInput) Validate() error {
	if i.URL == "" && i.SourceRef == "" && i.FileName != "" {
		return domain.NewValidationError("url", "required with file name")
	}
	return nil
}

func (i PhotoInput) photo() *domain.CityPhoto {
	if i.URL == "" && i.SourceRef == "" {
		return nil
	}
	return &domain.CityPhoto{URL: i.URL, FileName: i.FileName, SourceRef: i.SourceRef}
}
