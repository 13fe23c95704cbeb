package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema lists the MySQL tables used by the mysql storage driver.  Statements
// are idempotent so EnsureSchema can run on every start.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(64)  NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'user',
		is_active     TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    VARCHAR(64)     NOT NULL,
		token_hash CHAR(64)        NOT NULL UNIQUE,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_sessions_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id       VARCHAR(64)  NOT NULL PRIMARY KEY,
		position INT          NOT NULL,
		street   VARCHAR(255) NOT NULL,
		building VARCHAR(64)  NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS connections (
		id              VARCHAR(64)    NOT NULL PRIMARY KEY,
		position        INT            NOT NULL,
		client_name     VARCHAR(255)   NOT NULL,
		address         VARCHAR(512)   NOT NULL,
		office          VARCHAR(128)   NOT NULL,
		connection_type VARCHAR(16)    NOT NULL,
		status          VARCHAR(16)    NOT NULL,
		speed           VARCHAR(8)     NOT NULL,
		price           DECIMAL(12,2)  NOT NULL,
		contact         VARCHAR(255)   NOT NULL,
		last_check      DATETIME       NOT NULL,
		notes           TEXT           NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS connection_photos (
		connection_id VARCHAR(64)   NOT NULL,
		id            VARCHAR(64)   NOT NULL,
		position      INT           NOT NULL,
		url           VARCHAR(1024) NOT NULL,
		caption       VARCHAR(512)  NOT NULL,
		created_at    DATETIME      NOT NULL,
		PRIMARY KEY (connection_id, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS connection_schedules (
		connection_id VARCHAR(64)  NOT NULL,
		id            VARCHAR(64)  NOT NULL,
		position      INT          NOT NULL,
		title         VARCHAR(255) NOT NULL,
		date          DATETIME     NOT NULL,
		type          VARCHAR(16)  NOT NULL,
		description   TEXT         NOT NULL,
		status        VARCHAR(16)  NOT NULL,
		PRIMARY KEY (connection_id, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing table.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
