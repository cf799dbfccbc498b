package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const csrfTokenLifetime = time.Hour

func CreateCSRFToken(db *sql.DB, sessionID string) (string, error) {
	token := uuid.NewString()
	expiresAt := time.Now().Add(csrfTokenLifetime)

	query := `
		INSERT INTO csrf_tokens (token, session_id, expires_at)
		VALUES (?, ?, ?)
	`

	if _, err := db.Exec(query, token, sessionID, expiresAt.Unix()); err != nil {
		return "", fmt.Errorf("failed to create CSRF token: %w", err)
	}

	return token, nil
}

// ValidateCSRFToken consumes token; it cannot be used twice.
func ValidateCSRFToken(db *sql.DB, token, sessionID string) error {
	query := `
		SELECT 1
		FROM csrf_tokens
		WHERE token = ? AND session_id = ? AND expires_at > ?
	`

	var exists int
	err := db.QueryRow(query, token, sessionID, time.Now().Unix()).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("CSRF token not found or expired")
		}
		return fmt.Errorf("failed to validate CSRF token: %w", err)
	}

	if _, err := db.Exec(`DELETE FROM csrf_tokens WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete used CSRF token: %w", err)
	}

	return nil
}

func CleanupExpiredCSRFTokens(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM csrf_tokens WHERE expires_at <= ?`, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to cleanup expired CSRF tokens: %w", err)
	}
	return nil
}
