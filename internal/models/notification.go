package models

import "time"

type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	Message     string    `json:"message"`
	Type        string    `json:"type"` // ticket | announcement | schedule | system
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}
