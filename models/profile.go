package models

import "time"

// NotificationPreferences controls which proactive alerts a user receives
type NotificationPreferences struct {
	EmailEnabled bool `json:"email_enabled"`
	ExpiryAlerts bool `json:"expiry_alerts"`
}

// UserProfile holds the career context used to rank deals for a user.
// Profiles are created and updated only by explicit save, never by the
// discovery pipeline.
type UserProfile struct {
	UserID                  string                  `json:"user_id"`
	Location                string                  `json:"location"`
	StudentStatus           bool                    `json:"student_status"`
	CurrentCertifications   []string                `json:"current_certifications"`
	TargetCertifications    []string                `json:"target_certifications"`
	PreferredProviders      []string                `json:"preferred_providers"`
	NotificationPreferences NotificationPreferences `json:"notification_preferences"`
	UpdatedAt               time.Time               `json:"updated_at"`
}
