package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactsBorrowerContactData(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, INFO, false)

	l.Info("Loan created",
		"borrower_email", "budi.santoso@example.com",
		"telepon_peminjam", "0812-3456-7890",
		"password", "rahasia",
		"session_id", "0123456789abcdef")

	out := buf.String()
	assert.Contains(t, out, "[INFO] Loan created")
	assert.Contains(t, out, "b****o@example.com")
	assert.Contains(t, out, "****890")
	assert.Contains(t, out, "[REDACTED]")
	assert.Contains(t, out, "0123****")
	assert.NotContains(t, out, "rahasia")
	assert.NotContains(t, out, "0812")
}

func TestDevelopmentDebugKeepsValues(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DEBUG, true)

	l.Debug("Login attempt", "email", "ani@example.com")

	assert.Contains(t, buf.String(), "ani@example.com")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WARN, false)

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}
