package domain

import "time"

// OTP is a one-time password row. At most one live row exists per mobile:
// issuing a new code supersedes the previous one, and a successful
// validation consumes (deletes) the row.
type OTP struct {
	Mobile    string // owning contact identifier
	Code      string // fixed-width 6-digit numeric code
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is past its window at the given instant.
// Expiry is lazy: an expired row may still exist physically but is never
// treated as valid.
func (o OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
