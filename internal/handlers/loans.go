package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inventaris/internal/catalog"
	emailService "inventaris/internal/email"
	"inventaris/internal/filter"
	"inventaris/internal/gateway"
	"inventaris/internal/logger"
	"inventaris/internal/models"
	"inventaris/internal/validation"

	"github.com/gin-gonic/gin"
)

const (
	emptyNoData    = "Belum ada data peminjaman"
	emptyNoMatches = "Tidak ada peminjaman yang cocok dengan pencarian"

	lockedNameMessage = "Username akun tidak dapat dipakai sebagai nama peminjam. Hubungi admin untuk mencatat peminjaman"
)

var loanStatuses = []models.LoanStatus{models.StatusBorrowed, models.StatusReturned}

func loanOptions(c *gin.Context) filter.Options {
	return filter.Options{
		Search: c.Query("search"),
		Status: c.DefaultQuery("status", filter.AllStatuses),
		ItemID: c.Query("barang"),
	}
}

func emptyMessage(res filter.Result) string {
	switch {
	case res.NoData():
		return emptyNoData
	case res.NoMatches():
		return emptyNoMatches
	}
	return ""
}

func handleLoans(c *gin.Context) {
	renderLoans(c, http.StatusOK, "")
}

func renderLoans(c *gin.Context, status int, errMsg string) {
	ctx := c.Request.Context()
	api := apiClient(c)
	r := viewer(c)
	opts := loanOptions(c)

	data := pageData(c, "Peminjaman")
	data["CanManage"] = r.IsAdmin()
	data["Search"] = opts.Search
	data["Status"] = opts.Status
	data["ItemID"] = opts.ItemID
	data["Statuses"] = loanStatuses

	// The full collection is fetched so an empty search result can be told
	// apart from an empty collection.
	loans, err := api.Peminjaman().List(ctx, nil)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memuat data peminjaman")
		if handled {
			return
		}
		data["Error"] = msg
		c.HTML(http.StatusBadGateway, "peminjaman.html", data)
		return
	}

	items, err := api.Barang().List(ctx, nil)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memuat data barang")
		if handled {
			return
		}
		errMsg = msg
	}

	res := filter.Loans(loans, r, opts)
	data["Rows"] = catalog.New(items, nil).LoanRows(res.Loans)
	data["Items"] = items
	data["Count"] = len(res.Loans)
	data["Scoped"] = res.Scoped
	data["Empty"] = emptyMessage(res)
	if errMsg != "" {
		data["Error"] = errMsg
	}
	c.HTML(status, "peminjaman.html", data)
}

type loanForm struct {
	Heading string
	Action  string
	Values  map[string]string
	Errors  validation.Errors
	IsEdit  bool

	itemName string
}

func renderLoanForm(c *gin.Context, status int, form loanForm, errMsg string) {
	r := viewer(c)
	data := pageData(c, form.Heading)
	data["Heading"] = form.Heading
	data["Action"] = form.Action
	data["Values"] = form.Values
	data["Errors"] = form.Errors
	data["IsEdit"] = form.IsEdit
	data["LockBorrower"] = !r.IsAdmin()
	data["Statuses"] = loanStatuses
	if errMsg != "" {
		data["Error"] = errMsg
	}

	items, err := apiClient(c).Barang().List(c.Request.Context(), nil)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memuat data barang")
		if handled {
			return
		}
		data["Error"] = msg
		items = []models.Item{}
	}
	data["Items"] = items

	c.HTML(status, "peminjaman_form.html", data)
}

// borrowerDefaults fills and, for non-admins, pins the borrower identity to
// the session so users can only create loans in their own name.
func borrowerDefaults(c *gin.Context, values map[string]string) {
	r := viewer(c)
	if r.IsAdmin() {
		return
	}
	info, ok := r.DisplayInfo()
	if !ok {
		return
	}
	values[validation.FieldBorrowerName] = info.Username
	values[validation.FieldBorrowerEmail] = info.Email
	values[validation.FieldLoanStatus] = string(models.StatusBorrowed)
}

// referencedItem fetches the selected item fresh so the quantity is checked
// against current stock. A missing item becomes a field error.
func referencedItem(c *gin.Context, values map[string]string) (*models.Item, string, error) {
	id := strings.TrimSpace(values[validation.FieldLoanItemID])
	if id == "" {
		return nil, "", nil
	}

	item, err := apiClient(c).Barang().Get(c.Request.Context(), models.ID(id))
	if err != nil {
		var gwErr *gateway.Error
		if errors.As(err, &gwErr) && gwErr.StatusCode == http.StatusNotFound {
			return nil, "Barang tidak ditemukan", nil
		}
		return nil, "", err
	}
	return item, "", nil
}

func handleNewLoanPage(c *gin.Context) {
	values := map[string]string{
		validation.FieldLoanStatus: string(models.StatusBorrowed),
		validation.FieldLoanItemID: c.Query("barang"),
	}
	borrowerDefaults(c, values)

	renderLoanForm(c, http.StatusOK, loanForm{
		Heading: "Tambah Peminjaman",
		Action:  "/peminjaman/tambah",
		Values:  values,
		Errors:  noErrors(),
	}, "")
}

func handleCreateLoan(c *gin.Context) {
	form := loanForm{
		Heading: "Tambah Peminjaman",
		Action:  "/peminjaman/tambah",
		Values:  formValues(c, validation.Fields(validation.KindLoan)),
		Errors:  noErrors(),
	}
	borrowerDefaults(c, form.Values)

	loan, ok := validateLoan(c, &form)
	if !ok {
		return
	}
	loan.BorrowedAt = models.NewDate(time.Now())

	created, err := apiClient(c).Peminjaman().Create(c.Request.Context(), loan)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal menambahkan peminjaman")
		if handled {
			return
		}
		renderLoanForm(c, http.StatusBadRequest, form, msg)
		return
	}
	loan = created

	logger.Info("Loan created", "id", loan.ID.String(), "borrower", loan.BorrowerName, "email", loan.BorrowerEmail, "item_id", loan.ItemID.String(), "quantity", loan.Quantity)
	sendLoanReceipt(c, *loan, form.itemName)

	c.Redirect(http.StatusFound, "/peminjaman?notice=peminjaman_dibuat")
}

// validateLoan runs the full form validation against freshly fetched stock.
// On failure the response has been written and ok is false.
func validateLoan(c *gin.Context, form *loanForm) (*models.Loan, bool) {
	item, missing, err := referencedItem(c, form.Values)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memuat data barang")
		if !handled {
			renderLoanForm(c, http.StatusBadGateway, *form, msg)
		}
		return nil, false
	}

	loan, errs := validation.Loan(form.Values, &validation.Context{Item: item})
	if missing != "" {
		if errs == nil {
			errs = validation.Errors{}
		}
		errs[validation.FieldLoanItemID] = missing
	}
	// A non-admin cannot edit the pinned borrower name, so a rejection there
	// is about the account's username rather than the input.
	if _, bad := errs[validation.FieldBorrowerName]; bad && !viewer(c).IsAdmin() {
		errs[validation.FieldBorrowerName] = lockedNameMessage
	}
	if errs.HasErrors() {
		form.Errors = errs
		renderLoanForm(c, http.StatusBadRequest, *form, "")
		return nil, false
	}

	if item != nil {
		form.itemName = item.Name
	}
	return loan, true
}

func sendLoanReceipt(c *gin.Context, loan models.Loan, itemName string) {
	emailSvc, _ := c.Get("email_service")
	service, ok := emailSvc.(*emailService.Service)
	if !ok || !service.IsEnabled() {
		return
	}
	go func() {
		if err := service.SendLoanReceipt(loan, itemName); err != nil {
			logger.Warn("Failed to send loan receipt", "email", loan.BorrowerEmail, "error", err)
		}
	}()
}

func editLoanForm(id string) loanForm {
	return loanForm{
		Heading: "Edit Peminjaman",
		Action:  "/peminjaman/edit/" + id,
		Errors:  noErrors(),
		IsEdit:  true,
	}
}

func handleEditLoanPage(c *gin.Context) {
	id := c.Param("id")
	loan, err := apiClient(c).Peminjaman().Get(c.Request.Context(), models.ID(id))
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Peminjaman tidak ditemukan")
		if handled {
			return
		}
		renderError(c, http.StatusNotFound, "Edit Peminjaman", msg)
		return
	}

	form := editLoanForm(id)
	form.Values = map[string]string{
		validation.FieldBorrowerName:  loan.BorrowerName,
		validation.FieldBorrowerEmail: loan.BorrowerEmail,
		validation.FieldBorrowerPhone: loan.BorrowerPhone,
		validation.FieldLoanItemID:    loan.ItemID.String(),
		validation.FieldLoanQuantity:  strconv.Itoa(loan.Quantity),
		validation.FieldLoanStatus:    string(loan.Status),
	}
	renderLoanForm(c, http.StatusOK, form, "")
}

func handleUpdateLoan(c *gin.Context) {
	id := c.Param("id")
	api := apiClient(c)

	existing, err := api.Peminjaman().Get(c.Request.Context(), models.ID(id))
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Peminjaman tidak ditemukan")
		if handled {
			return
		}
		renderError(c, http.StatusNotFound, "Edit Peminjaman", msg)
		return
	}

	form := editLoanForm(id)
	form.Values = formValues(c, validation.Fields(validation.KindLoan))

	loan, ok := validateLoan(c, &form)
	if !ok {
		return
	}
	loan.BorrowedAt = existing.BorrowedAt

	if _, err := api.Peminjaman().Update(c.Request.Context(), models.ID(id), loan); err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memperbarui peminjaman")
		if handled {
			return
		}
		renderLoanForm(c, http.StatusBadRequest, form, msg)
		return
	}

	c.Redirect(http.StatusFound, "/peminjaman?notice=peminjaman_diubah")
}

func handleDeleteLoan(c *gin.Context) {
	if err := apiClient(c).Peminjaman().Delete(c.Request.Context(), models.ID(c.Param("id"))); err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal menghapus peminjaman")
		if handled {
			return
		}
		renderLoans(c, http.StatusBadRequest, msg)
		return
	}

	c.Redirect(http.StatusFound, "/peminjaman?notice=peminjaman_dihapus")
}
