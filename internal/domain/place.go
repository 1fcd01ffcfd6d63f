package domain

import (
	"maps"
	"slices"
	"time"
)

// Place is a business listed in a city. CategoryName and CategoryEmoji are
// denormalised copies of the referenced Category and are only refreshed by
// an explicit fan-out update.
type Place struct {
	ID            string      `json:"id"`
	CityKey       string      `json:"-"`
	Name          string      `json:"name"`
	Address       string      `json:"address"`
	WorkingHours  string      `json:"working_hours"`
	AveragePrice  string      `json:"average_price"`
	Description   string      `json:"description"`
	CategoryID    int         `json:"category_id"`
	CategoryName  string      `json:"category_name"`
	CategoryEmoji string      `json:"category_emoji"`
	Website       string      `json:"website,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	MapURL        string      `json:"map_url,omitempty"`
	Latitude      *float64    `json:"latitude,omitempty"`
	Longitude     *float64    `json:"longitude,omitempty"`
	GooglePlaceID string      `json:"google_place_id,omitempty"`
	SocialLinks   SocialLinks `json:"social_links"`
	Photos        []Photo     `json:"photos"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Photo is a picture attached to a place.
type Photo struct {
	URL            string    `json:"url"`
	FileName       string    `json:"fileName"`
	UploadedAt     time.Time `json:"uploadedAt"`
	TelegramFileID string    `json:"telegramFileId"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (p *Place) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// SetCategory copies the denormalised category fields onto the place.
func (p *Place) SetCategory(c Category) {
	p.CategoryID = c.ID
	p.CategoryName = c.Name
	p.CategoryEmoji = c.Emoji
}

// Clone returns a deep copy.
func (p Place) Clone() Place {
	out := p
	if p.Latitude != nil {
		v := *p.Latitude
		out.Latitude = &v
	}
	if p.Longitude != nil {
		v := *p.Longitude
		out.Longitude = &v
	}
	if p.SocialLinks != nil {
		out.SocialLinks = maps.Clone(p.SocialLinks)
	}
	out.Photos = slices.Clone(p.Photos)
	return out
}
