package validation

import (
	"strings"

	"inventaris/internal/models"
)

// Item validates values and, when they pass, returns the item payload.
func Item(values map[string]string) (*models.Item, Errors) {
	errs := ValidateForm(KindItem, values, nil)
	if errs.HasErrors() {
		return nil, errs
	}
	stock, _ := parseNumber(strings.TrimSpace(values[FieldItemStock]))
	return &models.Item{
		Name:       strings.TrimSpace(values[FieldItemName]),
		CategoryID: models.ID(strings.TrimSpace(values[FieldItemCategoryID])),
		Stock:      int(stock),
	}, nil
}

func Category(values map[string]string, ctx *Context) (*models.Category, Errors) {
	errs := ValidateForm(KindCategory, values, ctx)
	if errs.HasErrors() {
		return nil, errs
	}
	return &models.Category{
		Name:        strings.TrimSpace(values[FieldCategoryName]),
		Description: strings.TrimSpace(values[FieldCategoryDescription]),
	}, nil
}

// Loan validates values against ctx.Item's stock. A missing status becomes
// "dipinjam".
func Loan(values map[string]string, ctx *Context) (*models.Loan, Errors) {
	errs := ValidateForm(KindLoan, values, ctx)
	if errs.HasErrors() {
		return nil, errs
	}
	quantity, _ := parseNumber(strings.TrimSpace(values[FieldLoanQuantity]))
	status, ok := ParseStatus(values[FieldLoanStatus])
	if !ok {
		status = models.StatusBorrowed
	}
	return &models.Loan{
		BorrowerName:  strings.TrimSpace(values[FieldBorrowerName]),
		BorrowerEmail: strings.TrimSpace(values[FieldBorrowerEmail]),
		BorrowerPhone: strings.TrimSpace(values[FieldBorrowerPhone]),
		ItemID:        models.ID(strings.TrimSpace(values[FieldLoanItemID])),
		Quantity:      int(quantity),
		Status:        status,
	}, nil
}

const minPasswordLength = 6

// Credentials checks the login form.
func Credentials(email, password string) Errors {
	errs := Errors{}
	if strings.TrimSpace(email) == "" {
		errs["email"] = "Email wajib diisi"
	}
	if password == "" {
		errs["password"] = "Password wajib diisi"
	}
	return errs
}

// Registration checks the sign-up form.
func Registration(username, email, password, confirm string) Errors {
	errs := Errors{}
	if strings.TrimSpace(username) == "" {
		errs["username"] = "Username wajib diisi"
	}
	if msg := validateEmail(email); msg != "" {
		errs["email"] = msg
	}
	switch {
	case password == "":
		errs["password"] = "Password wajib diisi"
	case len(password) < minPasswordLength:
		errs["password"] = "Password minimal 6 karakter"
	}
	if password != confirm {
		errs["confirm_password"] = "Password dan konfirmasi password tidak sama"
	}
	return errs
}
