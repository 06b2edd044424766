package models

import (
	"time"
)

// VerificationRecord is the per-user state of the email verification
// protocol. There is exactly one row per user; issuing a new code
// overwrites the previous hash rather than appending.
type VerificationRecord struct {
	UID                  string     `json:"uid"`
	Email                string     `json:"email"`
	CodeHash             string     `json:"-"` // never expose the code hash
	Used                 bool       `json:"used"`
	ExpiresAt            time.Time  `json:"expires_at"`
	LastSentAt           time.Time  `json:"last_sent_at"`
	SendCountWindowStart time.Time  `json:"send_count_window_start"`
	SendCountInWindow    int        `json:"send_count_in_window"`
	CreatedAt            time.Time  `json:"created_at"`
	VerifiedAt           *time.Time `json:"verified_at,omitempty"`
}

// ExpiredAt reports whether the active code has passed its TTL at the
// given instant.
func (r *VerificationRecord) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
