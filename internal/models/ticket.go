package models

import "time"

type Ticket struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"` // "TK-00042", assigned by the DB sequence
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"` // incident | request | problem | change
	Category    string     `json:"category"`
	Priority    string     `json:"priority"` // Low | Medium | High | Critical
	Status      string     `json:"status"`   // New | Open | In Progress | Resolved | Closed
	Requester   string     `json:"requester"`
	Assignee    string     `json:"assignee"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	SLADueAt    *time.Time `json:"slaDueAt,omitempty"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`

	// Populated via JOIN on read paths; never written back.
	RequesterName string    `json:"requesterName,omitempty"`
	AssigneeName  string    `json:"assigneeName,omitempty"`
	AssigneeEmail string    `json:"assigneeEmail,omitempty"`
	Comments      []Comment `json:"comments,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Closed reports whether the ticket has reached a terminal status.
func (t Ticket) Closed() bool {
	return t.Status == "Resolved" || t.Status == "Closed"
}
