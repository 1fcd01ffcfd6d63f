package domain

import (
	"strings"
	"time"
)

// FallbackCategoryName is the category that receives places of a deleted category.
const FallbackCategoryName = "Other"

// Category classifies places. Built-in categories (IsCustom=false) cannot be
// edited or deleted. Names are unique case-insensitively.
type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	IsCustom  bool      `json:"isCustom"`
	CreatedAt time.Time `json:"createdAt"`
}

// Label is the emoji-prefixed name shown on buttons.
func (c Category) Label() string {
	if c.Emoji == "" {
		return c.Name
	}
	return c.Emoji + " " + c.Name
}

// SameName compares category names case-insensitively.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// BuiltinCategories returns the categories every installation starts with.
func BuiltinCategories() []Category {
	return []Category{
		{ID: 1, Name: "Restaurants", Emoji: "🍽"},
		{ID: 2, Name: "Cafes", Emoji: "☕"},
		{ID: 3, Name: "Bars", Emoji: "🍸"},
		{ID: 4, Name: "Hotels", Emoji: "🏨"},
		{ID: 5, Name: "Shops", Emoji: "🛍"},
		{ID: 6, Name: "Beauty", Emoji: "💇"},
		{ID: 7, Name: "Sport", Emoji: "🏋"},
		{ID: 8, Name: "Culture", Emoji: "🏛"},
		{ID: 9, Name: "Services", Emoji: "🛠"},
		{ID: 10, Name: FallbackCategoryName, Emoji: "📌"},
	}
}
