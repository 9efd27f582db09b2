package models

import "time"

// ScheduleEvent is a calendar entry: maintenance window, meeting, on-site
// visit. Recurrence, when present, is an RFC 5545 RRULE string.
type ScheduleEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"` // maintenance | meeting | onsite | task
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	AssigneeID  string    `json:"assigneeId"`
	Status      string    `json:"status"` // scheduled | in_progress | done | cancelled
	Recurrence  string    `json:"recurrence,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Reminder struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	RemindAt   time.Time `json:"remindAt"`
	AssigneeID string    `json:"assigneeId"`
	Done       bool      `json:"done"`
	CreatedAt  time.Time `json:"createdAt"`
}
