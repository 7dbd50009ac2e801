package model

import "time"

// VerificationCode is a short-lived six-digit code binding a claimed
// email address to a subject: either a booking awaiting confirmation
// ("booking:<id>") or an administrator login ("admin:<email>").  Only a
// bcrypt hash of the code is stored.  A code is consumed exactly once;
// UsedAt stays nil until then.  Issuing a new code for the same subject
// does not invalidate earlier ones — they lapse at their own expiry.
type VerificationCode struct {
	ID        uint64     // verification_codes.id
	Subject   string     // verification_codes.subject
	CodeHash  string     // verification_codes.code_hash (bcrypt)
	ExpiresAt time.Time  // verification_codes.expires_at
	UsedAt    *time.Time // verification_codes.used_at (nullable)
	CreatedAt time.Time  // verification_codes.created_at
}
