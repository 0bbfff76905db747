package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/auth-session-service/internal/model"
)

// UserRepo persists user records.  Password hashing happens in the
// service layer; this repository only stores and retrieves rows.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,username,first_name,last_name,password_hash,avatar,role,provider,provider_id,is_active,is_verified,created_at,updated_at"

// Create inserts a user and returns the stored row.  Emails are
// normalized to lower case before insertion so the unique constraint
// is case-insensitive in practice.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users
		 (email, username, first_name, last_name, password_hash, avatar, role, provider, provider_id, is_active, is_verified)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash, u.Avatar,
		u.Role, u.Provider, u.ProviderID, u.IsActive, u.IsVerified)
	if err != nil {
		// MySQL error 1062: duplicate entry for a unique key.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Avatar, &u.Role, &u.Provider, &u.ProviderID,
		&u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}
