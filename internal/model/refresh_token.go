package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// entry belongs to a user and, for session-bound logins, to a
// session.  Entries issued against the same session form the
// rotation chain: redeeming one marks it used and inserts its
// successor under the same session id.
//
// Both the raw token value and its bcrypt digest are stored.  The
// digest is what redemption verifies against; the raw value exists
// solely so that logout with a malformed or expired token can still
// delete the row by exact value.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – issuing user.
//  SessionID – owning session; nil when issued at registration.
//  Token     – raw token value (deletion-fallback lookup only).
//  TokenHash – bcrypt digest of the token value.
//  IsUsed    – single-use marker; set exactly once on redemption.
//  ExpiresAt – expiration timestamp, 7 days after issuance.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	SessionID *uint64   // refresh_tokens.session_id (nullable)
	Token     string    // refresh_tokens.token
	TokenHash string    // refresh_tokens.token_hash
	IsUsed    bool      // refresh_tokens.is_used
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
