package models

import "time"

// User is an account that can sign in. Technicians and admins are users
// whose profile carries department/workload data.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"` // end_user | technician | admin
	Department string    `json:"department,omitempty"`
	Status     string    `json:"status"` // available | busy | offline
	Workload   int       `json:"workload"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
