// Package service implements the token/session lifecycle engine:
// registration, credential and OAuth login, refresh-token rotation,
// session tracking and revocation.  Handlers stay thin and delegate
// here; persistence is reached through the store interfaces below so
// the engine can be exercised against in-memory fakes in tests.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/auth-session-service/internal/config"
	"github.com/iliyamo/auth-session-service/internal/model"
	"github.com/iliyamo/auth-session-service/internal/oauth"
	"github.com/iliyamo/auth-session-service/internal/queue"
	"github.com/iliyamo/auth-session-service/internal/repository"
	"github.com/iliyamo/auth-session-service/internal/utils"
)

// ErrInvalidCredentials covers unknown email, wrong password and
// deactivated accounts.  The three cases are deliberately
// indistinguishable to callers to avoid account enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidRefreshToken covers bad signature, expiry, a missing
// ledger entry and digest mismatch.  Uniform for the same reason.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// UserStore is the user persistence surface the engine needs.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// SessionStore tracks one row per logged-in device.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, ip, userAgent string, deviceID *string, expiresAt time.Time) (model.Session, error)
	ListActive(ctx context.Context, userID uint64, now time.Time) ([]model.Session, error)
	Touch(ctx context.Context, sessionID uint64, now time.Time) error
	Terminate(ctx context.Context, sessionID, userID uint64) error
	TerminateAll(ctx context.Context, userID uint64) error
}

// TokenStore is the refresh-token ledger.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, raw, tokenHash string, sessionID *uint64, expiresAt time.Time) error
	FindActive(ctx context.Context, userID uint64, now time.Time) (model.RefreshToken, error)
	MarkUsed(ctx context.Context, id uint64) error
	InvalidateForUser(ctx context.Context, userID uint64) error
	InvalidateForSession(ctx context.Context, sessionID uint64) error
	DeleteRaw(ctx context.Context, raw string) error
}

// EventPublisher emits auth events to the message broker.  A nil
// publisher disables events; publishing is always best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AuthEvent) error
}

// RequestContext carries per-request client metadata captured by the
// HTTP layer and recorded on the session row.
type RequestContext struct {
	IP        string
	UserAgent string
	DeviceID  *string
}

// RegisterInput is the payload for Register.  Optional profile fields
// are pointers and stored as NULL when absent.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	Username  *string
}

// AuthResult is returned by every flow that issues tokens.
type AuthResult struct {
	User model.User
	Pair utils.TokenPair
}

// AuthService orchestrates the credential store, password hasher,
// session tracker, token issuer and refresh-token ledger.
type AuthService struct {
	cfg      config.Config
	users    UserStore
	sessions SessionStore
	tokens   TokenStore
	events   EventPublisher
}

func NewAuthService(cfg config.Config, users UserStore, sessions SessionStore, tokens TokenStore, events EventPublisher) *AuthService {
	return &AuthService{cfg: cfg, users: users, sessions: sessions, tokens: tokens, events: events}
}

// Register creates a local account and issues its first token pair.
// No session is created at registration; the stored refresh token has
// no session binding.  Fails with repository.ErrEmailExists when the
// email is taken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return AuthResult{}, err
	}
	user, err := s.users.Create(ctx, model.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: &hash,
		Role:         model.RoleUser,
		Provider:     model.ProviderLocal,
		IsActive:     true,
	})
	if err != nil {
		return AuthResult{}, err
	}

	pair, err := s.issueAndStore(ctx, user, nil)
	if err != nil {
		return AuthResult{}, err
	}
	s.publish(ctx, queue.EventUserRegistered, user, "")
	return AuthResult{User: user, Pair: pair}, nil
}

// Login verifies credentials, creates a session for the calling
// device and issues a session-bound token pair.  Unknown email, wrong
// password and an inactive account all fail with
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string, req RequestContext) (AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if user.PasswordHash == nil || !utils.VerifyPassword(*user.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return AuthResult{}, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user.ID, req.IP, req.UserAgent, req.DeviceID,
		time.Now().UTC().Add(s.cfg.SessionTTL))
	if err != nil {
		return AuthResult{}, err
	}

	pair, err := s.issueAndStore(ctx, user, &session.ID)
	if err != nil {
		return AuthResult{}, err
	}
	s.publish(ctx, queue.EventUserLogin, user, req.IP)
	return AuthResult{User: user, Pair: pair}, nil
}

// Refresh redeems a refresh token and rotates it: the located ledger
// entry is atomically marked used and exactly one successor is stored
// under the same session.  Any failure surfaces uniformly as
// ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, raw string) (AuthResult, error) {
	claims, err := utils.ParseToken(raw, s.cfg.JWTRefresh)
	if err != nil {
		return AuthResult{}, ErrInvalidRefreshToken
	}

	now := time.Now().UTC()
	entry, err := s.tokens.FindActive(ctx, claims.UserID, now)
	if err != nil {
		// Covers never issued, already rotated, expired and revoked.
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, err
	}

	// The signature check above proves the token was minted by us for
	// this user; the digest check proves it is this exact ledger entry
	// and not another token issued to the same user.
	if !utils.VerifyToken(entry.TokenHash, raw) {
		return AuthResult{}, ErrInvalidRefreshToken
	}

	// Atomic 0->1 transition: under concurrent redemption of the same
	// token exactly one caller passes this point.
	if err := s.tokens.MarkUsed(ctx, entry.ID); err != nil {
		if errors.Is(err, repository.ErrTokenUsed) {
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, err
	}

	// Re-fetch the user rather than trusting week-old claims.
	user, err := s.users.GetByID(ctx, entry.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, err
	}

	pair, err := s.issueAndStore(ctx, user, entry.SessionID)
	if err != nil {
		return AuthResult{}, err
	}
	if entry.SessionID != nil {
		// Redemption counts as session activity.
		if err := s.sessions.Touch(ctx, *entry.SessionID, now); err != nil {
			return AuthResult{}, err
		}
	}
	return AuthResult{User: user, Pair: pair}, nil
}

// Logout never fails from the caller's perspective.  With a
// verifiable token it invalidates every unused ledger entry for the
// subject; with a malformed or expired one it falls back to deleting
// any row matching the raw value, so cleanup still happens.
func (s *AuthService) Logout(ctx context.Context, raw string) {
	claims, err := utils.ParseToken(raw, s.cfg.JWTRefresh)
	if err != nil {
		_ = s.tokens.DeleteRaw(ctx, raw)
		return
	}
	if err := s.tokens.InvalidateForUser(ctx, claims.UserID); err != nil {
		_ = s.tokens.DeleteRaw(ctx, raw)
	}
}

// ListSessions enumerates the user's active devices, most recently
// used first.
func (s *AuthService) ListSessions(ctx context.Context, userID uint64) ([]model.Session, error) {
	return s.sessions.ListActive(ctx, userID, time.Now().UTC())
}

// TerminateSession deactivates one session and cascades to the
// ledger so no refresh token in its rotation chain stays redeemable.
// Fails with repository.ErrNotFound or repository.ErrForbidden.
func (s *AuthService) TerminateSession(ctx context.Context, sessionID, userID uint64) error {
	if err := s.sessions.Terminate(ctx, sessionID, userID); err != nil {
		return err
	}
	if err := s.tokens.InvalidateForSession(ctx, sessionID); err != nil {
		return err
	}
	s.publishID(ctx, queue.EventSessionTerminated, userID)
	return nil
}

// TerminateAllSessions deactivates every session the user owns and
// invalidates every unused refresh token.
func (s *AuthService) TerminateAllSessions(ctx context.Context, userID uint64) error {
	if err := s.sessions.TerminateAll(ctx, userID); err != nil {
		return err
	}
	if err := s.tokens.InvalidateForUser(ctx, userID); err != nil {
		return err
	}
	s.publishID(ctx, queue.EventSessionTerminated, userID)
	return nil
}

// ValidateOAuthUser finds or creates a user from a normalized OAuth
// profile.  New accounts are created verified, with the provider
// linkage and no password.
func (s *AuthService) ValidateOAuthUser(ctx context.Context, p oauth.Profile) (model.User, error) {
	user, err := s.users.GetByEmail(ctx, p.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, err
	}

	u := model.User{
		Email:      p.Email,
		Role:       model.RoleUser,
		Provider:   p.Provider,
		ProviderID: &p.ProviderID,
		IsActive:   true,
		IsVerified: true,
	}
	if p.FirstName != "" {
		u.FirstName = &p.FirstName
	}
	if p.LastName != "" {
		u.LastName = &p.LastName
	}
	if p.Avatar != "" {
		u.Avatar = &p.Avatar
	}
	return s.users.Create(ctx, u)
}

// CompleteOAuthLogin finishes an OAuth callback: it resolves the
// user and then follows the same path as a password login, creating
// a session and binding the stored refresh token to it.  OAuth
// sessions are therefore revocable through the same termination
// endpoints as password sessions.
func (s *AuthService) CompleteOAuthLogin(ctx context.Context, p oauth.Profile, req RequestContext) (AuthResult, error) {
	user, err := s.ValidateOAuthUser(ctx, p)
	if err != nil {
		return AuthResult{}, err
	}
	if !user.IsActive {
		return AuthResult{}, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user.ID, req.IP, req.UserAgent, req.DeviceID,
		time.Now().UTC().Add(s.cfg.SessionTTL))
	if err != nil {
		return AuthResult{}, err
	}
	pair, err := s.issueAndStore(ctx, user, &session.ID)
	if err != nil {
		return AuthResult{}, err
	}
	s.publish(ctx, queue.EventUserLogin, user, req.IP)
	return AuthResult{User: user, Pair: pair}, nil
}

// issueAndStore mints a token pair for the user and records the
// refresh half in the ledger, hashed, under the given session.
func (s *AuthService) issueAndStore(ctx context.Context, user model.User, sessionID *uint64) (utils.TokenPair, error) {
	pair, err := utils.IssuePair(s.cfg.JWTSecret, s.cfg.JWTRefresh, s.cfg.AccessTTL, s.cfg.RefreshTTL,
		utils.Claims{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return utils.TokenPair{}, err
	}
	hash, err := utils.HashToken(pair.RefreshToken, s.cfg.BcryptCost)
	if err != nil {
		return utils.TokenPair{}, err
	}
	if err := s.tokens.Store(ctx, user.ID, pair.RefreshToken, hash, sessionID, pair.RefreshExpiresAt); err != nil {
		return utils.TokenPair{}, err
	}
	return pair, nil
}

func (s *AuthService) publish(ctx context.Context, typ string, user model.User, ip string) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, queue.NewAuthEvent(typ, user.ID, user.Email, ip))
}

func (s *AuthService) publishID(ctx context.Context, typ string, userID uint64) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, queue.NewAuthEvent(typ, userID, "", ""))
}
