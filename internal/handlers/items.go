package handlers

import (
	"net/http"
	"strconv"

	"inventaris/internal/catalog"
	"inventaris/internal/logger"
	"inventaris/internal/models"
	"inventaris/internal/validation"

	"github.com/gin-gonic/gin"
)

func handleItems(c *gin.Context) {
	renderItems(c, http.StatusOK, "")
}

func renderItems(c *gin.Context, status int, errMsg string) {
	ctx := c.Request.Context()
	api := apiClient(c)
	data := pageData(c, "Data Barang")
	data["CanManage"] = viewer(c).IsAdmin()

	items, err := api.Barang().List(ctx, nil)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memuat data barang")
		if handled {
			return
		}
		data["Error"] = msg
		c.HTML(http.StatusBadGateway, "barang.html", data)
		return
	}

	categories, err := api.Kategori().List(ctx, nil)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memuat data kategori")
		if handled {
			return
		}
		// Items are still listed; every category renders as unknown.
		errMsg = msg
	}

	data["Rows"] = catalog.New(items, categories).ItemRows(items)
	if errMsg != "" {
		data["Error"] = errMsg
	}
	c.HTML(status, "barang.html", data)
}

func handleItemDetail(c *gin.Context) {
	ctx := c.Request.Context()
	api := apiClient(c)

	item, err := api.Barang().Get(ctx, models.ID(c.Param("id")))
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Barang tidak ditemukan")
		if handled {
			return
		}
		renderError(c, http.StatusNotFound, "Detail Barang", msg)
		return
	}

	categories, err := api.Kategori().List(ctx, nil)
	if err != nil {
		if _, handled := gatewayFailure(c, err, ""); handled {
			return
		}
	}

	data := pageData(c, "Detail Barang")
	data["Item"] = item
	data["CategoryName"] = catalog.New(nil, categories).CategoryName(item.CategoryID)
	data["CanManage"] = viewer(c).IsAdmin()
	c.HTML(http.StatusOK, "barang_detail.html", data)
}

type itemForm struct {
	Heading string
	Action  string
	Submit  string
	Values  map[string]string
	Errors  validation.Errors
}

func renderItemForm(c *gin.Context, status int, form itemForm, errMsg string) {
	data := pageData(c, form.Heading)
	data["Heading"] = form.Heading
	data["Action"] = form.Action
	data["Submit"] = form.Submit
	data["Values"] = form.Values
	data["Errors"] = form.Errors
	if errMsg != "" {
		data["Error"] = errMsg
	}

	categories, err := apiClient(c).Kategori().List(c.Request.Context(), nil)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memuat data kategori")
		if handled {
			return
		}
		data["Error"] = msg
		categories = []models.Category{}
	}
	data["Categories"] = categories

	c.HTML(status, "barang_form.html", data)
}

func newItemForm() itemForm {
	return itemForm{
		Heading: "Tambah Barang",
		Action:  "/barang/tambah",
		Submit:  "Simpan",
		Values:  map[string]string{},
		Errors:  noErrors(),
	}
}

func editItemForm(id string) itemForm {
	return itemForm{
		Heading: "Edit Barang",
		Action:  "/barang/edit/" + id,
		Submit:  "Perbarui",
		Values:  map[string]string{},
		Errors:  noErrors(),
	}
}

func handleNewItemPage(c *gin.Context) {
	renderItemForm(c, http.StatusOK, newItemForm(), "")
}

func handleCreateItem(c *gin.Context) {
	form := newItemForm()
	form.Values = formValues(c, validation.Fields(validation.KindItem))

	payload, errs := validation.Item(form.Values)
	if errs.HasErrors() {
		form.Errors = errs
		renderItemForm(c, http.StatusBadRequest, form, "")
		return
	}

	item, err := apiClient(c).Barang().Create(c.Request.Context(), payload)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal menambahkan barang")
		if handled {
			return
		}
		renderItemForm(c, http.StatusBadRequest, form, msg)
		return
	}
	logger.Info("Item created", "id", item.ID.String(), "name", item.Name)

	c.Redirect(http.StatusFound, "/barang?notice=barang_dibuat")
}

func handleEditItemPage(c *gin.Context) {
	id := c.Param("id")
	item, err := apiClient(c).Barang().Get(c.Request.Context(), models.ID(id))
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Barang tidak ditemukan")
		if handled {
			return
		}
		renderError(c, http.StatusNotFound, "Edit Barang", msg)
		return
	}

	form := editItemForm(id)
	form.Values = map[string]string{
		validation.FieldItemName:       item.Name,
		validation.FieldItemCategoryID: item.CategoryID.String(),
		validation.FieldItemStock:      strconv.Itoa(item.Stock),
	}
	renderItemForm(c, http.StatusOK, form, "")
}

// handleUpdateItem replaces the editable fields. The API expects the whole
// record, so created_at and status are carried over from the stored item.
func handleUpdateItem(c *gin.Context) {
	id := c.Param("id")
	api := apiClient(c)

	existing, err := api.Barang().Get(c.Request.Context(), models.ID(id))
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Barang tidak ditemukan")
		if handled {
			return
		}
		renderError(c, http.StatusNotFound, "Edit Barang", msg)
		return
	}

	form := editItemForm(id)
	form.Values = formValues(c, validation.Fields(validation.KindItem))

	payload, errs := validation.Item(form.Values)
	if errs.HasErrors() {
		form.Errors = errs
		renderItemForm(c, http.StatusBadRequest, form, "")
		return
	}

	payload.CreatedAt = existing.CreatedAt
	payload.Status = existing.Status

	if _, err := api.Barang().Update(c.Request.Context(), models.ID(id), payload); err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memperbarui barang")
		if handled {
			return
		}
		renderItemForm(c, http.StatusBadRequest, form, msg)
		return
	}

	c.Redirect(http.StatusFound, "/barang?notice=barang_diubah")
}

func handleDeleteItem(c *gin.Context) {
	if err := apiClient(c).Barang().Delete(c.Request.Context(), models.ID(c.Param("id"))); err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal menghapus barang")
		if handled {
			return
		}
		renderItems(c, http.StatusBadRequest, msg)
		return
	}

	c.Redirect(http.StatusFound, "/barang?notice=barang_dihapus")
}
