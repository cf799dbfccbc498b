package dashboard

import (
	"strings"

	"inventaris/internal/filter"
	"inventaris/internal/models"
	"inventaris/internal/session"
)

type Card struct {
	Title string
	Value int
	Link  string
}

type Summary struct {
	Items       int
	Categories  int
	Loans       int
	ActiveLoans int
	Cards       []Card
}

// Summarize counts what the viewer is allowed to see. Loan counts use the
// viewer-scoped collection and only admins get loan cards.
func Summarize(viewer *session.Resolver, items []models.Item, categories []models.Category, loans []models.Loan) Summary {
	scoped := filter.Scope(loans, viewer)

	s := Summary{
		Items:      len(items),
		Categories: len(categories),
		Loans:      len(scoped),
	}
	for _, l := range scoped {
		if strings.EqualFold(string(l.Status), string(models.StatusBorrowed)) {
			s.ActiveLoans++
		}
	}

	s.Cards = []Card{
		{Title: "Total Barang", Value: s.Items, Link: "/barang"},
		{Title: "Total Kategori", Value: s.Categories, Link: "/kategori"},
	}
	if viewer.IsAdmin() {
		s.Cards = append(s.Cards,
			Card{Title: "Total Peminjaman", Value: s.Loans, Link: "/peminjaman"},
			Card{Title: "Sedang Dipinjam", Value: s.ActiveLoans, Link: "/peminjaman?status=dipinjam"},
		)
	}
	return s
}
