package entity

import "time"

// CalendarCredential stores the OAuth tokens for one connected calendar.
type CalendarCredential struct {
	CalendarID     string    `db:"calendar_id" json:"calendar_id"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
