// Package validation holds the per-field rules for the item, category and
// loan forms. Every function is pure: no I/O, no shared state.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"inventaris/internal/models"
)

type Kind string

const (
	KindItem     Kind = "barang"
	KindCategory Kind = "kategori"
	KindLoan     Kind = "peminjaman"
)

// Form field names, matching the backing API's payload keys.
const (
	FieldItemName       = "nama"
	FieldItemCategoryID = "kategori_id"
	FieldItemStock      = "stok"

	FieldCategoryName        = "nama"
	FieldCategoryDescription = "deskripsi"

	FieldBorrowerName  = "nama_peminjam"
	FieldBorrowerEmail = "email_peminjam"
	FieldBorrowerPhone = "telepon_peminjam"
	FieldLoanItemID    = "barang_id"
	FieldLoanQuantity  = "jumlah"
	FieldLoanStatus    = "status"
)

var fields = map[Kind][]string{
	KindItem:     {FieldItemName, FieldItemCategoryID, FieldItemStock},
	KindCategory: {FieldCategoryName, FieldCategoryDescription},
	KindLoan: {
		FieldBorrowerName, FieldBorrowerEmail, FieldBorrowerPhone,
		FieldLoanItemID, FieldLoanQuantity, FieldLoanStatus,
	},
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)
)

const minPhoneDigits = 10

// maxCount bounds stock and quantity so they always fit the payload's int.
const maxCount = math.MaxInt32

// Context carries what a rule cannot know from the value alone.
type Context struct {
	// Item is the currently referenced item; the loan quantity is checked
	// against its stock. Callers should supply freshly fetched data.
	Item *models.Item

	RequireCategoryDescription bool
}

// Errors maps a field name to its message. Only failing fields are present.
type Errors map[string]string

func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// Fields returns the failing field names in a stable order.
func (e Errors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields lists the validated fields of kind in form order.
func Fields(kind Kind) []string {
	return append([]string(nil), fields[kind]...)
}

// ValidateField returns the message for the first rule value breaks, or "".
func ValidateField(kind Kind, field, value string, ctx *Context) string {
	if ctx == nil {
		ctx = &Context{}
	}

	switch kind {
	case KindItem:
		switch field {
		case FieldItemName:
			return minLength(value, 3, "Nama barang wajib diisi", "Nama barang minimal 3 karakter")
		case FieldItemCategoryID:
			return required(value, "Kategori wajib dipilih")
		case FieldItemStock:
			return validateStock(value)
		}
	case KindCategory:
		switch field {
		case FieldCategoryName:
			return required(value, "Nama kategori wajib diisi")
		case FieldCategoryDescription:
			if ctx.RequireCategoryDescription {
				return required(value, "Deskripsi kategori wajib diisi")
			}
		}
	case KindLoan:
		switch field {
		case FieldBorrowerName:
			return minLength(value, 3, "Nama peminjam wajib diisi", "Nama peminjam minimal 3 karakter")
		case FieldBorrowerEmail:
			return validateEmail(value)
		case FieldBorrowerPhone:
			return validatePhone(value)
		case FieldLoanItemID:
			return required(value, "Barang wajib dipilih")
		case FieldLoanQuantity:
			return validateQuantity(value, ctx.Item)
		case FieldLoanStatus:
			return validateStatus(value)
		}
	}
	return ""
}

// ValidateForm checks every declared field of kind; absent values count as empty.
func ValidateForm(kind Kind, values map[string]string, ctx *Context) Errors {
	errs := Errors{}
	for _, field := range fields[kind] {
		if msg := ValidateField(kind, field, values[field], ctx); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

func required(value, msg string) string {
	if strings.TrimSpace(value) == "" {
		return msg
	}
	return ""
}

func minLength(value string, n int, requiredMsg, shortMsg string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return requiredMsg
	}
	if utf8.RuneCountInString(trimmed) < n {
		return shortMsg
	}
	return ""
}

func validateStock(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Stok wajib diisi"
	}
	n, err := parseNumber(trimmed)
	if err != nil {
		return "Stok harus berupa angka bulat"
	}
	if n < 0 {
		return "Stok tidak boleh negatif"
	}
	if n != math.Trunc(n) || n > maxCount {
		return "Stok harus berupa angka bulat"
	}
	return ""
}

func validateEmail(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Email wajib diisi"
	}
	if !emailPattern.MatchString(trimmed) {
		return "Format email tidak valid"
	}
	return ""
}

func validatePhone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Nomor telepon wajib diisi"
	}
	if !phonePattern.MatchString(trimmed) {
		return "Format nomor telepon tidak valid"
	}
	digits := 0
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < minPhoneDigits {
		return fmt.Sprintf("Nomor telepon minimal %d digit", minPhoneDigits)
	}
	return ""
}

func validateQuantity(value string, item *models.Item) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Jumlah wajib diisi"
	}
	n, err := parseNumber(trimmed)
	if err != nil {
		return "Jumlah harus berupa angka bulat"
	}
	if n < 1 {
		return "Jumlah minimal 1"
	}
	if n != math.Trunc(n) || n > maxCount {
		return "Jumlah harus berupa angka bulat"
	}
	if item != nil && n > float64(item.Stock) {
		return fmt.Sprintf("Jumlah melebihi stok yang tersedia (%d)", item.Stock)
	}
	return ""
}

func validateStatus(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if _, ok := ParseStatus(trimmed); !ok {
		return "Status tidak valid"
	}
	return ""
}

// ParseStatus normalises a loan status case-insensitively.
func ParseStatus(value string) (models.LoanStatus, bool) {
	for _, s := range []models.LoanStatus{models.StatusBorrowed, models.StatusReturned} {
		if strings.EqualFold(strings.TrimSpace(value), string(s)) {
			return s, true
		}
	}
	return "", false
}

func parseNumber(s string) (float64, error) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return n, nil
}
