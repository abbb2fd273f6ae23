package dto

import "time"

// ConnectCalendarRequest registers Google credentials obtained by the client
// during its own sign-in. Either auth_code alone, or access_token plus
// refresh_token.
type ConnectCalendarRequest struct {
	AuthCode     string    `json:"auth_code"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
