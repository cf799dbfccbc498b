// Package filter narrows the loan collection to what one viewer may see
// and what their query asks for.
package filter

import (
	"strings"

	"inventaris/internal/models"
	"inventaris/internal/session"
)

// AllStatuses disables the status stage.
const AllStatuses = "all"

type Options struct {
	Search string
	Status string
	ItemID string
}

// Result carries the filtered loans plus how many loans the viewer could see
// before any predicate ran, so callers can tell "no data" from "no matches".
type Result struct {
	Loans  []models.Loan
	Total  int
	Scoped int
}

// NoData reports that the viewer has no loans at all.
func (r Result) NoData() bool {
	return r.Scoped == 0
}

// NoMatches reports that loans exist for the viewer but the query removed
// every one of them.
func (r Result) NoMatches() bool {
	return r.Scoped > 0 && len(r.Loans) == 0
}

// Loans applies ownership scope, then the admin-only status and item stages,
// then the free-text search. all is never modified and order is preserved.
func Loans(all []models.Loan, viewer *session.Resolver, opts Options) Result {
	scoped := Scope(all, viewer)
	res := Result{Total: len(all), Scoped: len(scoped)}

	out := scoped
	if viewer.IsAdmin() {
		if status := strings.TrimSpace(opts.Status); status != "" && !strings.EqualFold(status, AllStatuses) {
			out = keep(out, func(l models.Loan) bool {
				return strings.EqualFold(string(l.Status), status)
			})
		}
		if itemID := strings.TrimSpace(opts.ItemID); itemID != "" {
			out = keep(out, func(l models.Loan) bool {
				return l.ItemID.String() == itemID
			})
		}
	}
	if term := strings.ToLower(strings.TrimSpace(opts.Search)); term != "" {
		out = keep(out, func(l models.Loan) bool {
			return strings.Contains(strings.ToLower(l.BorrowerName), term)
		})
	}

	res.Loans = out
	return res
}

// Scope returns the loans the viewer owns. Admins own everything; a viewer
// without a session owns nothing.
func Scope(all []models.Loan, viewer *session.Resolver) []models.Loan {
	s, ok := viewer.CurrentSession()
	if !ok {
		return []models.Loan{}
	}
	if viewer.IsAdmin() {
		return append([]models.Loan{}, all...)
	}
	return keep(all, func(l models.Loan) bool {
		return l.BorrowerEmail == s.Email
	})
}

func keep(loans []models.Loan, pred func(models.Loan) bool) []models.Loan {
	out := make([]models.Loan, 0, len(loans))
	for _, l := range loans {
		if pred(l) {
			out = append(out, l)
		}
	}
	return out
}
