package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("name", "required")

	if got := err.Error(); got != "validation: name: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "name", Message: "required"},
		{Field: "emoji", Message: "max 16 characters"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestStoreUnavailableError_Is(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Unavailable("postgres", cause)

	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatal("errors.Is(err, ErrStoreUnavailable) = false")
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is(err, cause) = false")
	}

	var sue *StoreUnavailableError
	if !errors.As(err, &sue) || sue.Store != "postgres" {
		t.Fatalf("errors.As: got %+v", sue)
	}
}

func TestIsSemantic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", ErrNotFound, true},
		{"wrapped already exists", errors.Join(errors.New("city x"), ErrAlreadyExists), true},
		{"validation", NewValidationError("name", "required"), true},
		{"unavailable", Unavailable("files", errors.New("disk")), false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsSemantic(tt.err); got != tt.want {
				t.Errorf("IsSemantic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation,
		ErrForbidden, ErrConflict, ErrStoreUnavailable,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}

func TestFieldErrors(t *testing.T) {
	t.Parallel()

	ve := NewValidationErrors([]FieldError{{Field: "name", Message: "required"}, {Field: "url", Message: "not a link"}})
	if got := FieldErrors(fmt.Errorf("wrap: %w", ve)); len(got) != 2 || got[1].Field != "url" {
		t.Errorf("wrapped validation error: got %+v", got)
	}

	got := FieldErrors(errors.New("boom"))
	if len(got) != 1 || got[0].Field != "input" || got[0].Message != "boom" {
		t.Errorf("plain error: got %+v", got)
	}
}
