package database

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"inventaris/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	return db
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := models.Session{Username: "ani", Email: "ani@example.com", Role: models.RoleAdmin}
	stored, err := CreateSession(db, "bearer-token", user, time.Hour)
	if err != nil {
		t.Fatal("Failed to create session:", err)
	}

	if len(stored.ID) == 0 {
		t.Error("Session ID should not be empty")
	}

	loaded, err := GetSession(db, stored.ID)
	if err != nil {
		t.Fatal("Failed to load session:", err)
	}

	if loaded.Token != "bearer-token" {
		t.Errorf("Expected token 'bearer-token', got %s", loaded.Token)
	}

	if string(loaded.Data) != `{"username":"ani","email":"ani@example.com","role":"admin"}` {
		t.Errorf("Unexpected session data: %s", loaded.Data)
	}

	if err := DeleteSession(db, stored.ID); err != nil {
		t.Fatal("Failed to delete session:", err)
	}

	_, err = GetSession(db, stored.ID)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestExpiredSessionIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	stored, err := CreateSession(db, "tok", models.Session{Email: "a@b.c"}, -time.Minute)
	if err != nil {
		t.Fatal("Failed to create session:", err)
	}

	if _, err := GetSession(db, stored.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected expired session to be not found, got %v", err)
	}

	if err := RenewSession(db, stored.ID, time.Hour); err != nil {
		t.Fatal("Failed to renew session:", err)
	}

	if _, err := GetSession(db, stored.ID); err != nil {
		t.Errorf("Expected renewed session to load, got %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	expired, _ := CreateSession(db, "old", models.Session{}, -time.Minute)
	live, _ := CreateSession(db, "new", models.Session{}, time.Hour)

	if _, err := CreateCSRFToken(db, expired.ID); err != nil {
		t.Fatal("Failed to create CSRF token:", err)
	}

	if err := CleanupExpiredSessions(db); err != nil {
		t.Fatal("Failed to cleanup sessions:", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 session left, got %d", count)
	}

	if _, err := GetSession(db, live.ID); err != nil {
		t.Errorf("Live session should survive cleanup: %v", err)
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM csrf_tokens").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected CSRF tokens of expired sessions to be removed, got %d", count)
	}
}

func TestCSRFTokensAreSingleUse(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	stored, err := CreateSession(db, "tok", models.Session{}, time.Hour)
	if err != nil {
		t.Fatal("Failed to create session:", err)
	}

	token, err := CreateCSRFToken(db, stored.ID)
	if err != nil {
		t.Fatal("Failed to create CSRF token:", err)
	}

	if err := ValidateCSRFToken(db, token, "another-session"); err == nil {
		t.Error("CSRF token must be bound to its session")
	}

	if err := ValidateCSRFToken(db, token, stored.ID); err != nil {
		t.Fatal("Failed to validate CSRF token:", err)
	}

	if err := ValidateCSRFToken(db, token, stored.ID); err == nil {
		t.Error("CSRF token should not validate twice")
	}
}
