// Package conversation holds the per-chat wizard state. States live in
// memory only; every transition replaces the whole state and every begin
// starts a new generation so late completions of an abandoned flow can be
// recognised and dropped.
package conversation

import (
	"time"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// State is the active flow of one chat.
type State struct {
	ChatID int64
	Flow   string
	Step   string
	// Gen identifies the flow instance. It is assigned by Begin and never
	// changes while the flow runs.
	Gen uint64

	CityKey    string
	PlaceID    string
	CategoryID int
	AdID       string
	// Field is the place field chosen in an edit flow.
	Field string

	Draft     Draft
	UpdatedAt time.Time
}

// Draft accumulates validated input until the flow completes.
type Draft struct {
	Place domain.Place
	Name  string
	Emoji string
	Photo *domain.CityPhoto
	Text  string
	URL   string
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Draft.Place = s.Draft.Place.Clone()
	if s.Draft.Photo != nil {
		photo := *s.Draft.Photo
		out.Draft.Photo = &photo
	}
	return out
}
