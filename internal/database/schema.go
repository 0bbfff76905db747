package database

import (
	"context"
	"database/sql"
)

// Schema statements for the auth tables.  Applied idempotently at
// startup; production deployments may instead manage these with a
// migration tool, in which case Migrate is a no-op.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email VARCHAR(255) NOT NULL,
		username VARCHAR(64) NULL,
		first_name VARCHAR(128) NULL,
		last_name VARCHAR(128) NULL,
		password_hash VARCHAR(255) NULL,
		avatar VARCHAR(512) NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'USER',
		provider VARCHAR(16) NOT NULL DEFAULT 'LOCAL',
		provider_id VARCHAR(128) NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		is_verified TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		ip_address VARCHAR(45) NOT NULL,
		user_agent VARCHAR(512) NOT NULL,
		device_id VARCHAR(128) NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_used_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_sessions_user (user_id, is_active, expires_at),
		CONSTRAINT fk_sessions_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		session_id BIGINT UNSIGNED NULL,
		token VARCHAR(1024) NOT NULL,
		token_hash VARCHAR(255) NOT NULL,
		is_used TINYINT(1) NOT NULL DEFAULT 0,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_refresh_user_active (user_id, is_used, expires_at),
		KEY idx_refresh_session (session_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_refresh_session FOREIGN KEY (session_id) REFERENCES sessions (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
