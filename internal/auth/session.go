package auth

import (
	"slices"
	"time"
)

// Session exists only for principals whose login attempt was granted. It
// carries the authority set computed at login for its whole lifetime.
type Session struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	Principal   string    `json:"principal"`
	Profile     Profile   `json:"profile"`
	Authorities []string  `json:"authorities"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s *Session) HasAuthority(authority string) bool {
	return slices.Contains(s.Authorities, authority)
}
