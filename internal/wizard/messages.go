package wizard

import (
	"errors"
	"strings"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

const (
	labelCancel  = "✖ Cancel"
	labelSkip    = "Skip"
	labelDone    = "Done"
	labelConfirm = "Yes, delete"
	labelManual  = "Enter coordinates"

	msgCancelled       = "Cancelled. Nothing was saved."
	msgNothingToCancel = "Nothing to cancel."
	msgUnknownAction   = "This action is no longer available."
	msgSavedLocally    = "The database is unreachable, so this was saved locally and will be synced later."
)

// failureText turns a service error into a message for the chat.
func failureText(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return validationText(err)
	case errors.Is(err, domain.ErrNotFound):
		return "Not found. It may have been deleted."
	case errors.Is(err, domain.ErrAlreadyExists):
		return "That name is already taken."
	case errors.Is(err, domain.ErrForbidden):
		return "Built-in categories cannot be changed."
	case errors.Is(err, domain.ErrConflict):
		return "This cannot be done right now: " + conflictReason(err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "Storage is unavailable. Nothing was saved, please try again later."
	default:
		return "Something went wrong. Nothing was saved."
	}
}

// validationText lists the field problems of a validation error.
func validationText(err error) string {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) == 0 {
		return "⚠ Invalid input."
	}
	lines := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		lines = append(lines, "⚠ "+fieldLabel(fe.Field)+": "+fe.Message)
	}
	return strings.Join(lines, "\n")
}

func conflictReason(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "+domain.ErrConflict.Error()); i > 0 {
		msg = msg[:i]
	}
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return msg
}

var fieldLabels = map[string]string{
	"name":          "Name",
	"emoji":         "Emoji",
	"address":       "Address",
	"working_hours": "Working hours",
	"average_price": "Average price",
	"description":   "Description",
	"website":       "Website",
	"phone":         "Phone",
	"map_url":       "Map link",
	"latitude":      "Latitude",
	"longitude":     "Longitude",
	"social_links":  "Social links",
	"photos":        "Photos",
	"photo":         "Photo",
	"text":          "Text",
	"url":           "Link",
	"input":         "Input",
	"confirm":       "Confirmation",
	"category_id":   "Category",
	"field":         "Field",
}

func fieldLabel(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}
