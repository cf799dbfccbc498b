package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"inventaris/internal/catalog"
	"inventaris/internal/filter"
	"inventaris/internal/logger"
	"inventaris/internal/report"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportRows loads the report, applies the page's filter and joins item and
// category names. On failure the response has been written.
func reportRows(c *gin.Context) ([]catalog.LoanRow, filter.Result, bool) {
	ctx := c.Request.Context()
	api := apiClient(c)

	loans, err := api.LoanReport(ctx)
	if err != nil {
		msg, handled := gatewayFailure(c, err, "Gagal memuat data laporan")
		if !handled {
			renderError(c, http.StatusBadGateway, "Laporan Peminjaman", msg)
		}
		return nil, filter.Result{}, false
	}

	// Report rows usually embed names; the collections fill the gaps.
	items, err := api.Barang().List(ctx, nil)
	if err != nil {
		if _, handled := gatewayFailure(c, err, ""); handled {
			return nil, filter.Result{}, false
		}
	}
	categories, err := api.Kategori().List(ctx, nil)
	if err != nil {
		if _, handled := gatewayFailure(c, err, ""); handled {
			return nil, filter.Result{}, false
		}
	}

	res := filter.Loans(loans, viewer(c), loanOptions(c))
	return catalog.New(items, categories).LoanRows(res.Loans), res, true
}

func handleReport(c *gin.Context) {
	rows, res, ok := reportRows(c)
	if !ok {
		return
	}

	opts := loanOptions(c)
	data := pageData(c, "Laporan Peminjaman")
	data["Rows"] = rows
	data["Count"] = len(rows)
	data["Empty"] = emptyMessage(res)
	data["Search"] = opts.Search
	data["Status"] = opts.Status
	data["ItemID"] = opts.ItemID
	data["Statuses"] = loanStatuses
	data["ExportURL"] = exportURL(c.Request.URL.RawQuery)
	c.HTML(http.StatusOK, "laporan.html", data)
}

// exportURL carries the page's filter over to the download link.
func exportURL(rawQuery string) string {
	if rawQuery == "" {
		return "/laporan/export"
	}
	return "/laporan/export?" + rawQuery
}

func handleExportReport(c *gin.Context) {
	rows, _, ok := reportRows(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, rows); err != nil {
		logger.Error("Failed to build report", "error", err)
		renderError(c, http.StatusInternalServerError, "Laporan Peminjaman", "Gagal membuat file laporan")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.FileName))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
