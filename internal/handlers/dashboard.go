package handlers

import (
	"net/http"

	"inventaris/internal/dashboard"
	"inventaris/internal/models"

	"github.com/gin-gonic/gin"
)

func handleDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	api := apiClient(c)
	r := viewer(c)

	items, err := api.Barang().List(ctx, nil)
	if err != nil {
		dashboardFailure(c, err)
		return
	}

	categories, err := api.Kategori().List(ctx, nil)
	if err != nil {
		dashboardFailure(c, err)
		return
	}

	// Users never see loan cards, so their loans are not fetched.
	var loans []models.Loan
	if r.IsAdmin() {
		loans, err = api.Peminjaman().List(ctx, nil)
		if err != nil {
			dashboardFailure(c, err)
			return
		}
	}

	data := pageData(c, "Dashboard")
	data["Summary"] = dashboard.Summarize(r, items, categories, loans)
	c.HTML(http.StatusOK, "dashboard.html", data)
}

func dashboardFailure(c *gin.Context, err error) {
	msg, handled := gatewayFailure(c, err, "Gagal memuat data dashboard")
	if handled {
		return
	}
	data := pageData(c, "Dashboard")
	data["Error"] = msg
	c.HTML(http.StatusBadGateway, "dashboard.html", data)
}
