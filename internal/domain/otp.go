package domain

import "time"

// Passcode is an issued one-time code for an email address.
type Passcode struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (p *Passcode) IsExpired() bool {
	return time.Now().After(p.ExpiresAt)
}
