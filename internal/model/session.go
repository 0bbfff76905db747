package model

import "time"

// Session models one authenticated device/browser in the `sessions`
// table.  A new row is created on every password or OAuth login; the
// row is deactivated on explicit termination or by the hourly
// staleness sweep, and hard-deleted by the daily cleanup once it is
// expired or inactive.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the session.
//  IPAddress  – client IP recorded at login.
//  UserAgent  – client User-Agent recorded at login.
//  DeviceID   – optional client-supplied device identifier.
//  IsActive   – false once terminated or swept as stale.
//  CreatedAt  – login timestamp.
//  LastUsedAt – bumped on each refresh-token redemption.
//  ExpiresAt  – hard expiry, 30 days after creation.
type Session struct {
	ID         uint64    // sessions.id
	UserID     uint64    // sessions.user_id
	IPAddress  string    // sessions.ip_address
	UserAgent  string    // sessions.user_agent
	DeviceID   *string   // sessions.device_id (nullable)
	IsActive   bool      // sessions.is_active
	CreatedAt  time.Time // sessions.created_at
	LastUsedAt time.Time // sessions.last_used_at
	ExpiresAt  time.Time // sessions.expires_at
}
