package model

import "time"

// PhoneChallenge is a short-lived OTP challenge keyed by mobile number.
// At most one live challenge exists per number; a new request replaces
// any prior unverified challenge wholesale.
type PhoneChallenge struct {
	Mobile    string    `json:"mobile"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
}

// Expired reports whether the challenge is past its deadline at the given instant.
func (c *PhoneChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
