package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventaris/internal/models"

	"github.com/google/uuid"
)

// StoredSession is the persisted pair of bearer credential and serialized
// Session. Both are written and removed together.
type StoredSession struct {
	ID        string
	Token     string
	Data      []byte
	ExpiresAt time.Time
}

func CreateSession(db *sql.DB, token string, s models.Session, sessionDuration time.Duration) (*StoredSession, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	stored := &StoredSession{
		ID:        uuid.NewString(),
		Token:     token,
		Data:      data,
		ExpiresAt: time.Now().Add(sessionDuration),
	}

	query := `
		INSERT INTO sessions (id, token, data, expires_at)
		VALUES (?, ?, ?, ?)
	`

	_, err = db.Exec(query, stored.ID, stored.Token, string(stored.Data), stored.ExpiresAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return stored, nil
}

// GetSession returns ErrSessionNotFound for unknown and expired ids.
func GetSession(db *sql.DB, sessionID string) (*StoredSession, error) {
	query := `
		SELECT id, token, data, expires_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`

	var (
		stored    StoredSession
		data      string
		expiresAt int64
	)
	err := db.QueryRow(query, sessionID, time.Now().Unix()).Scan(&stored.ID, &stored.Token, &data, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	stored.Data = []byte(data)
	stored.ExpiresAt = time.Unix(expiresAt, 0)
	return &stored, nil
}

// RenewSession slides the expiry forward on activity.
func RenewSession(db *sql.DB, sessionID string, sessionDuration time.Duration) error {
	newExpiresAt := time.Now().Add(sessionDuration)

	_, err := db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`, newExpiresAt.Unix(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to renew session: %w", err)
	}

	return nil
}

func DeleteSession(db *sql.DB, sessionID string) error {
	if _, err := db.Exec(`DELETE FROM csrf_tokens WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session CSRF tokens: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func CleanupExpiredSessions(db *sql.DB) error {
	now := time.Now().Unix()
	if _, err := db.Exec(`DELETE FROM csrf_tokens WHERE session_id IN (SELECT id FROM sessions WHERE expires_at <= ?)`, now); err != nil {
		return fmt.Errorf("failed to cleanup expired session CSRF tokens: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, now); err != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	return nil
}
