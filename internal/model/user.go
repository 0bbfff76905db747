package model

import "time"

// Auth provider names stored in users.provider.  LOCAL means the
// account was created through email/password registration.
const (
	ProviderLocal    = "LOCAL"
	ProviderGoogle   = "GOOGLE"
	ProviderGitHub   = "GITHUB"
	ProviderLinkedIn = "LINKEDIN"
)

// Role names stored in users.role.
const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// User represents a row in the `users` table.  Nullable columns are
// pointers so that OAuth-only accounts (no password) and local
// accounts (no provider id) can both be expressed.  Either
// PasswordHash or the (Provider, ProviderID) pair is always set.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address, stored lower-cased.
//  Username     – optional display handle.
//  FirstName    – optional given name.
//  LastName     – optional family name.
//  PasswordHash – bcrypt hashed password; nil for OAuth-only accounts.
//  Avatar       – optional avatar URL taken from an OAuth profile.
//  Role         – USER, MODERATOR or ADMIN.
//  Provider     – LOCAL, GOOGLE, GITHUB or LINKEDIN.
//  ProviderID   – provider-assigned account id; nil for local accounts.
//  IsActive     – whether the account may log in.
//  IsVerified   – whether the email was verified (OAuth logins are).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Username     *string   // users.username (nullable)
	FirstName    *string   // users.first_name (nullable)
	LastName     *string   // users.last_name (nullable)
	PasswordHash *string   // users.password_hash (nullable)
	Avatar       *string   // users.avatar (nullable)
	Role         string    // users.role
	Provider     string    // users.provider
	ProviderID   *string   // users.provider_id (nullable)
	IsActive     bool      // users.is_active
	IsVerified   bool      // users.is_verified
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
