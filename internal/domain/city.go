package domain

import (
	"slices"
	"time"
)

// City groups places. Key is derived from Name by Slugify and doubles as the
// storage partition id in both stores.
type City struct {
	Key       string
	Name      string
	Photo     *CityPhoto
	Places    []Place
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CityPhoto is the optional cover picture of a city.
type CityPhoto struct {
	URL       string `json:"url"`
	FileName  string `json:"fileName"`
	SourceRef string `json:"sourceRef"`
}

// Place returns the place with the given id.
func (c *City) Place(id string) (*Place, bool) {
	for i := range c.Places {
		if c.Places[i].ID == id {
			return &c.Places[i], true
		}
	}
	return nil, false
}

// UpsertPlace overwrites the place with the same id or appends it.
func (c *City) UpsertPlace(p Place) {
	p.CityKey = c.Key
	for i := range c.Places {
		if c.Places[i].ID == p.ID {
			c.Places[i] = p
			return
		}
	}
	c.Places = append(c.Places, p)
}

// RemovePlace drops the place with the given id and reports whether it existed.
func (c *City) RemovePlace(id string) bool {
	n := len(c.Places)
	c.Places = slices.DeleteFunc(c.Places, func(p Place) bool { return p.ID == id })
	return len(c.Places) != n
}

// Clone returns a deep copy.
func (c *City) Clone() *City {
	if c == nil {
		return nil
	}
	out := *c
	if c.Photo != nil {
		photo := *c.Photo
		out.Photo = &photo
	}
	out.Places = make([]Place, len(c.Places))
	for i := range c.Places {
		out.Places[i] = c.Places[i].Clone()
	}
	return &out
}
