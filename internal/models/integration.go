package models

import "time"

// IntegrationAppType enumerates connectable third-party apps.
type IntegrationAppType string

const (
	IntegrationGoogleMeet IntegrationAppType = "GOOGLE_MEET_AND_CALENDAR"
)

// Valid reports whether the app type is supported.
func (t IntegrationAppType) Valid() bool {
	return t == IntegrationGoogleMeet
}

// Integration stores a user's OAuth connection to a calendar provider.
type Integration struct {
	ID           string             `db:"id" json:"id"`
	UserID       string             `db:"user_id" json:"userId"`
	AppType      IntegrationAppType `db:"app_type" json:"appType"`
	AccessToken  string             `db:"access_token" json:"-"`
	RefreshToken *string            `db:"refresh_token" json:"-"`
	ExpiryDate   *time.Time         `db:"expiry_date" json:"-"`
	CreatedAt    time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updatedAt"`
}
