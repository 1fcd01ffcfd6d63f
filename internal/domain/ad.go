package domain

import "time"

// Ad is a short promotional message shown to users while browsing.
type Ad struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	URL       string    `json:"url"`
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"created_at"`
}
