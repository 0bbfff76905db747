package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/auth-session-service/internal/model"
)

// SessionRepo persists one row per authenticated device in the
// `sessions` table.  All timestamp comparisons are performed in UTC;
// callers must pass UTC values.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

const sessionColumns = "id,user_id,ip_address,user_agent,device_id,is_active,created_at,last_used_at,expires_at"

// Create inserts a session row.  Every login creates a new row, even
// from an already-tracked device.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, ip, userAgent string, deviceID *string, expiresAt time.Time) (model.Session, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (user_id, ip_address, user_agent, device_id, is_active, last_used_at, expires_at)
		 VALUES (?,?,?,?,1,UTC_TIMESTAMP(),?)`,
		userID, ip, userAgent, deviceID, expiresAt)
	if err != nil {
		return model.Session{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Session{}, err
	}
	return r.getByID(ctx, uint64(id))
}

// ListActive returns the user's active, unexpired sessions ordered by
// most recently used first.
func (r *SessionRepo) ListActive(ctx context.Context, userID uint64, now time.Time) ([]model.Session, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+sessionColumns+` FROM sessions
		 WHERE user_id=? AND is_active=1 AND expires_at>?
		 ORDER BY last_used_at DESC`, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.IPAddress, &s.UserAgent, &s.DeviceID,
			&s.IsActive, &s.CreatedAt, &s.LastUsedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Touch bumps last_used_at to now.  Called when a refresh token under
// the session is redeemed.
func (r *SessionRepo) Touch(ctx context.Context, sessionID uint64, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET last_used_at=? WHERE id=?", now, sessionID)
	return err
}

// Terminate deactivates a single session after verifying ownership.
// Returns ErrNotFound when the session does not exist and
// ErrForbidden when it belongs to another user.  The refresh-token
// cascade is the caller's responsibility.
func (r *SessionRepo) Terminate(ctx context.Context, sessionID, userID uint64) error {
	var owner uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM sessions WHERE id=? LIMIT 1", sessionID).Scan(&owner)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_active=0 WHERE id=?", sessionID)
	return err
}

// TerminateAll deactivates every session owned by the user.
func (r *SessionRepo) TerminateAll(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_active=0 WHERE user_id=?", userID)
	return err
}

// DeleteExpired removes sessions that are past their expiry or have
// been deactivated.  Used by the daily cleanup sweep; returns the
// number of rows deleted.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at<? OR is_active=0", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeactivateStale marks sessions inactive when they have not been
// used since the cutoff.  Used by the hourly sweep; returns the
// number of rows updated.
func (r *SessionRepo) DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_active=0 WHERE last_used_at<? AND is_active=1", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SessionRepo) getByID(ctx context.Context, id uint64) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.UserID, &s.IPAddress, &s.UserAgent, &s.DeviceID,
			&s.IsActive, &s.CreatedAt, &s.LastUsedAt, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return model.Session{}, ErrNotFound
	}
	return s, err
}
