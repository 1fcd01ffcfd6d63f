package category

import (
	"unicode/utf8"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

const (
	MaxNameLength  = 32
	MaxEmojiLength = 8
)

// Input holds the editable fields of a category.
type Input struct {
	Name  string
	Emoji string
}

// Validate checks all fields and collects all errors.
func (i Input) Validate() error {
	var errs []domain.FieldError
	if err := ValidateName(i.Name); err != nil {
		errs = append(errs, domain.FieldErrors(err)...)
	}
	if err := ValidateEmoji(i.Emoji); err != nil {
		errs = append(errs, domain.FieldErrors(err)...)
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (i Input) normalized() Input {
	return Input{Name: domain.NormalizeText(i.Name), Emoji: domain.NormalizeText(i.Emoji)}
}

// ValidateName checks a category name after whitespace normalisation.
func ValidateName(raw string) error {
	name := domain.NormalizeText(raw)
	if name == "" {
		return domain.NewValidationError("name", "required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return domain.NewValidationError("name", "max 32 characters")
	}
	return nil
}

// ValidateEmoji accepts an empty value or a short symbol.
func ValidateEmoji(raw string) error {
	emoji := domain.NormalizeText(raw)
	if utf8.RuneCountInString(emoji) > MaxEmojiLength {
		return domain.NewValidationError("emoji", "max 8 characters")
	}
	return nil
}
