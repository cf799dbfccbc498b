package dashboard

import (
	"testing"

	"inventaris/internal/models"
	"inventaris/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	items      = []models.Item{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	categories = []models.Category{{ID: "1"}, {ID: "2"}}
	loans      = []models.Loan{
		{ID: "1", BorrowerEmail: "ani@x.com", Status: "dipinjam"},
		{ID: "2", BorrowerEmail: "budi@x.com", Status: "Dipinjam"},
		{ID: "3", BorrowerEmail: "ani@x.com", Status: "dikembalikan"},
	}
)

func TestAdminSummary(t *testing.T) {
	s := Summarize(session.New(&models.Session{Role: models.RoleAdmin}), items, categories, loans)

	assert.Equal(t, 3, s.Items)
	assert.Equal(t, 2, s.Categories)
	assert.Equal(t, 3, s.Loans)
	assert.Equal(t, 2, s.ActiveLoans)

	require.Len(t, s.Cards, 4)
	assert.Equal(t, "Sedang Dipinjam", s.Cards[3].Title)
	assert.Equal(t, 2, s.Cards[3].Value)
}

func TestUserSummary(t *testing.T) {
	s := Summarize(session.New(&models.Session{Email: "ani@x.com", Role: models.RoleUser}), items, categories, loans)

	assert.Equal(t, 2, s.Loans)
	assert.Equal(t, 1, s.ActiveLoans)

	require.Len(t, s.Cards, 2)
	assert.Equal(t, "Total Barang", s.Cards[0].Title)
	assert.Equal(t, "Total Kategori", s.Cards[1].Title)
}
