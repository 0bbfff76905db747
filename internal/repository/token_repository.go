package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/auth-session-service/internal/model"
)

// TokenRepo persists the refresh-token ledger.  Rows carry both the
// raw token value (deletion-fallback lookup only) and its bcrypt
// digest; redemption verifies against the digest.  The single-use
// invariant is enforced by MarkUsed's conditional update, never by a
// read-then-write sequence.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a ledger entry for a freshly issued refresh token.
// sessionID is nil for tokens issued at registration or any other
// session-less flow.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, raw, tokenHash string, sessionID *uint64, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, session_id, token, token_hash, is_used, expires_at)
		 VALUES (?,?,?,?,0,?)`,
		userID, sessionID, raw, tokenHash, expiresAt)
	return err
}

// FindActive returns the most recent unused, unexpired ledger entry
// for the user, or ErrNotFound when none exists (never issued,
// already rotated, expired or revoked).
func (r *TokenRepo) FindActive(ctx context.Context, userID uint64, now time.Time) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, session_id, token, token_hash, is_used, expires_at, created_at
		 FROM refresh_tokens
		 WHERE user_id=? AND is_used=0 AND expires_at>?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID, now).
		Scan(&t.ID, &t.UserID, &t.SessionID, &t.Token, &t.TokenHash, &t.IsUsed, &t.ExpiresAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrNotFound
	}
	return t, err
}

// MarkUsed performs the atomic 0->1 transition of the used flag.
// When two callers race on the same entry, the conditional WHERE
// guarantees exactly one sees a row affected; the loser gets
// ErrTokenUsed.
func (r *TokenRepo) MarkUsed(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_used=1 WHERE id=? AND is_used=0", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenUsed
	}
	return nil
}

// InvalidateForUser marks all of the user's unused entries as used.
// This is the signature-decode logout path.
func (r *TokenRepo) InvalidateForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_used=1 WHERE user_id=? AND is_used=0", userID)
	return err
}

// InvalidateForSession marks all entries under the session as used so
// that no refresh token in its rotation chain remains redeemable.
// Called as the cascade of session termination.
func (r *TokenRepo) InvalidateForSession(ctx context.Context, sessionID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_used=1 WHERE session_id=? AND is_used=0", sessionID)
	return err
}

// DeleteRaw removes any entry whose raw token value matches exactly.
// Fallback cleanup used only when logout cannot verify the token's
// signature.
func (r *TokenRepo) DeleteRaw(ctx context.Context, raw string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token=?", raw)
	return err
}

// DeleteExpired removes entries that are past expiry or already
// redeemed.  Used by the daily cleanup sweep; returns the number of
// rows deleted.
func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at<? OR is_used=1", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
