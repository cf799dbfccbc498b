// Package session derives the current actor and role from an explicit,
// persisted Session value. Nothing here reads ambient storage.
package session

import (
	"encoding/json"
	"errors"
	"strings"

	"inventaris/internal/logger"
	"inventaris/internal/models"
)

var ErrMalformedSession = errors.New("malformed session data")

type Permission string

const (
	ViewItems        Permission = "view_barang"
	ViewCategories   Permission = "view_kategori"
	ViewLoans        Permission = "view_peminjaman"
	CreateLoan       Permission = "create_peminjaman"
	ManageItems      Permission = "manage_barang"
	ManageCategories Permission = "manage_kategori"
	ManageLoans      Permission = "manage_peminjaman"
	ExportReport     Permission = "export_laporan"
)

var userPermissions = map[Permission]bool{
	ViewItems:      true,
	ViewCategories: true,
	ViewLoans:      true,
	CreateLoan:     true,
}

// Resolver answers identity and role questions for one request. The zero
// value and a nil *Resolver both mean "no session".
type Resolver struct {
	current *models.Session
}

func New(s *models.Session) *Resolver {
	if s == nil {
		return &Resolver{}
	}
	cp := *s
	return &Resolver{current: &cp}
}

// Resolve decodes a serialized Session record. Malformed data is treated as
// absence and never surfaces as an error.
func Resolve(raw []byte) *Resolver {
	s, err := Parse(raw)
	if err != nil {
		if len(raw) > 0 {
			logger.Warn("Ignoring persisted session", "error", err)
		}
		return &Resolver{}
	}
	return &Resolver{current: s}
}

// Parse is the strict form of Resolve.
func Parse(raw []byte) (*models.Session, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, ErrMalformedSession
	}
	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, ErrMalformedSession
	}
	return &s, nil
}

func (r *Resolver) CurrentSession() (models.Session, bool) {
	if r == nil || r.current == nil {
		return models.Session{}, false
	}
	return *r.current, true
}

func (r *Resolver) Role() models.Role {
	if s, ok := r.CurrentSession(); ok && s.Role == models.RoleAdmin {
		return models.RoleAdmin
	}
	return models.RoleUser
}

func (r *Resolver) IsAdmin() bool {
	return r.Role() == models.RoleAdmin
}

func (r *Resolver) IsUser() bool {
	return r.Role() == models.RoleUser
}

// Email is the session e-mail, or "" without a session.
func (r *Resolver) Email() string {
	s, _ := r.CurrentSession()
	return s.Email
}

// Can reports whether the current actor may perform p. Admins may do
// everything; regular users may browse and create loans; no session may do nothing.
func (r *Resolver) Can(p Permission) bool {
	if _, ok := r.CurrentSession(); !ok {
		return false
	}
	if r.IsAdmin() {
		return true
	}
	return userPermissions[p]
}

type DisplayInfo struct {
	Username string
	Email    string
	Role     models.Role
	IsAdmin  bool
}

func (r *Resolver) DisplayInfo() (DisplayInfo, bool) {
	s, ok := r.CurrentSession()
	if !ok {
		return DisplayInfo{}, false
	}
	info := DisplayInfo{
		Username: s.Username,
		Email:    s.Email,
		Role:     r.Role(),
		IsAdmin:  r.IsAdmin(),
	}
	if info.Username == "" {
		info.Username = "User"
	}
	return info, true
}
