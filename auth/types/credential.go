package types

import "time"

// Credential is the session token shared by value between services. It is
// never refreshed; ExpiresAt is zero when the token carries no expiry.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}
