package ad

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Input holds the fields of a new ad. URL is optional.
type Input struct {
	Text string
	URL  string
}

// ValidateText checks the ad body. Line breaks are kept.
func ValidateText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", domain.NewValidationError("text", "required")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", domain.NewValidationError("text", "max 500 characters")
	}
	return text, nil
}

// Validate checks all fields and collects all errors.
func (i Input) Validate() error {
	var errs []domain.FieldError
	if _, err := ValidateText(i.Text); err != nil {
		errs = append(errs, domain.FieldErrors(err)...)
	}
	if u := domain.NormalizeURL(i.URL); strings.ContainsAny(u, " \t\n") {
		errs = append(errs, domain.FieldError{Field: "url", Message: "not a link"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
