package models

import "time"

type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"` // low | normal | high
	Audience  string    `json:"audience"` // all | technicians | end_users
	AuthorID  string    `json:"authorId"`
	Author    string    `json:"author,omitempty"` // display name via JOIN
	Pinned    bool      `json:"pinned"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
