package handlers

import (
	"net/http"

	"inventaris/internal/config"
	"inventaris/internal/models"
	"inventaris/internal/validation"

	"github.com/gin-gonic/gin"
)

func categoryContext(c *gin.Context) *validation.Context {
	cfg := c.MustGet("config").(*config.Config)
	return &validation.Context{RequireCategoryDescription: cfg.RequireCategoryDescription}
}

func handleCategories(c *gin.Context) {
	renderCategories(c, http.StatusOK, "")
}

func renderCategories(c *gin.Context, status int, errMsg string) {
	data := pageData(c, "Kategori")
	data["CanManage"] = viewer(c).IsAdmin()

	categories, err := apiClient(c).Kategori().List(c.Request.Context(), nil)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memuat data kategori")
		if handled {
			return
		}
		data["Error"] = msg
		c.HTML(http.StatusBadGateway, "kategori.html", data)
		return
	}

	data["Categories"] = categories
	if errMsg != "" {
		data["Error"] = errMsg
	}
	c.HTML(status, "kategori.html", data)
}

func renderCategoryForm(c *gin.Context, status int, heading, action string, values map[string]string, errs validation.Errors, errMsg string) {
	data := pageData(c, heading)
	data["Heading"] = heading
	data["Action"] = action
	data["Values"] = values
	data["Errors"] = errs
	data["RequireDescription"] = categoryContext(c).RequireCategoryDescription
	if errMsg != "" {
		data["Error"] = errMsg
	}
	c.HTML(status, "kategori_form.html", data)
}

func handleNewCategoryPage(c *gin.Context) {
	renderCategoryForm(c, http.StatusOK, "Tambah Kategori", "/kategori/tambah", map[string]string{}, noErrors(), "")
}

func handleCreateCategory(c *gin.Context) {
	values := formValues(c, validation.Fields(validation.KindCategory))

	payload, errs := validation.Category(values, categoryContext(c))
	if errs.HasErrors() {
		renderCategoryForm(c, http.StatusBadRequest, "Tambah Kategori", "/kategori/tambah", values, errs, "")
		return
	}

	if _, err := apiClient(c).Kategori().Create(c.Request.Context(), payload); err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal menambahkan kategori")
		if handled {
			return
		}
		renderCategoryForm(c, http.StatusBadRequest, "Tambah Kategori", "/kategori/tambah", values, noErrors(), msg)
		return
	}

	c.Redirect(http.StatusFound, "/kategori?notice=kategori_dibuat")
}

func handleEditCategoryPage(c *gin.Context) {
	id := c.Param("id")
	category, err := apiClient(c).Kategori().Get(c.Request.Context(), models.ID(id))
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Kategori tidak ditemukan")
		if handled {
			return
		}
		renderError(c, http.StatusNotFound, "Edit Kategori", msg)
		return
	}

	values := map[string]string{
		validation.FieldCategoryName:        category.Name,
		validation.FieldCategoryDescription: category.Description,
	}
	renderCategoryForm(c, http.StatusOK, "Edit Kategori", "/kategori/edit/"+id, values, noErrors(), "")
}

func handleUpdateCategory(c *gin.Context) {
	id := c.Param("id")
	action := "/kategori/edit/" + id
	values := formValues(c, validation.Fields(validation.KindCategory))

	payload, errs := validation.Category(values, categoryContext(c))
	if errs.HasErrors() {
		renderCategoryForm(c, http.StatusBadRequest, "Edit Kategori", action, values, errs, "")
		return
	}

	if _, err := apiClient(c).Kategori().Update(c.Request.Context(), models.ID(id), payload); err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memperbarui kategori")
		if handled {
			return
		}
		renderCategoryForm(c, http.StatusBadRequest, "Edit Kategori", action, values, noErrors(), msg)
		return
	}

	c.Redirect(http.StatusFound, "/kategori?notice=kategori_diubah")
}

func handleDeleteCategory(c *gin.Context) {
	if err := apiClient(c).Kategori().Delete(c.Request.Context(), models.ID(c.Param("id"))); err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal menghapus kategori")
		if handled {
			return
		}
		renderCategories(c, http.StatusBadRequest, msg)
		return
	}

	c.Redirect(http.StatusFound, "/kategori?notice=kategori_dihapus")
}
