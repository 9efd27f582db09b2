package models

import "time"

// TeamsIntegration holds the delegated-permission token pair for one user.
// A row exists only while the connection is established; disconnect deletes it.
type TeamsIntegration struct {
	UserID       string    `json:"userId"`
	TeamsUserID  string    `json:"teamsUserId"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expiresAt"`
	ConnectedAt  time.Time `json:"connectedAt"`
}

// NotificationPreferences carries the two independent toggle groups from the
// integration settings screen.
type NotificationPreferences struct {
	UserID             string    `json:"userId"`
	NotifyOnAssignment bool      `json:"notifyOnAssignment"`
	NotifyOnComment    bool      `json:"notifyOnComment"`
	NotifyOnSLABreach  bool      `json:"notifyOnSlaBreach"`
	AssistSuggestions  bool      `json:"assistSuggestions"`
	AssistAutoTriage   bool      `json:"assistAutoTriage"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
