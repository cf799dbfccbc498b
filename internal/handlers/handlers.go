package handlers

import (
	"database/sql"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"inventaris/internal/config"
	"inventaris/internal/database"
	"inventaris/internal/email"
	"inventaris/internal/gateway"
	"inventaris/internal/logger"
	"inventaris/internal/middleware"
	"inventaris/internal/session"
	"inventaris/internal/validation"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, db *sql.DB, cfg *config.Config, api *gateway.Client, emailService *email.Service) {
	r.Use(middleware.LogRequests())
	r.Use(middleware.SecurityHeaders(cfg))
	r.Use(middleware.IPBlocker(cfg))
	r.Use(middleware.Track404AndBlock(cfg))
	r.Use(addConfigContext(cfg))
	r.Use(addEmailServiceContext(emailService))
	r.Use(middleware.TrimSpaces())

	public := r.Group("/")
	public.Use(middleware.AuthOptional(db, cfg, api))
	{
		public.GET("/login", handleLoginPage)
		public.POST("/login", middleware.AuthRateLimit(cfg), handleLogin)
		public.GET("/register", handleRegisterPage)
		public.POST("/register", middleware.AuthRateLimit(cfg), handleRegister)
	}

	protected := r.Group("/")
	protected.Use(middleware.AuthRequired(db, cfg, api))
	protected.Use(middleware.CSRF(cfg))
	{
		protected.GET("/", handleDashboard)
		protected.POST("/logout", handleLogout)
		protected.GET("/api/csrf-token", handleCSRFToken)

		protected.GET("/barang", handleItems)
		protected.GET("/barang/:id", handleItemDetail)
		protected.GET("/kategori", handleCategories)
		protected.GET("/peminjaman", handleLoans)
		protected.GET("/peminjaman/tambah", handleNewLoanPage)
		protected.POST("/peminjaman/tambah", handleCreateLoan)
	}

	admin := protected.Group("/")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/barang/tambah", handleNewItemPage)
		admin.POST("/barang/tambah", handleCreateItem)
		admin.GET("/barang/edit/:id", handleEditItemPage)
		admin.POST("/barang/edit/:id", handleUpdateItem)
		admin.POST("/barang/delete/:id", handleDeleteItem)

		admin.GET("/kategori/tambah", handleNewCategoryPage)
		admin.POST("/kategori/tambah", handleCreateCategory)
		admin.GET("/kategori/edit/:id", handleEditCategoryPage)
		admin.POST("/kategori/edit/:id", handleUpdateCategory)
		admin.POST("/kategori/delete/:id", handleDeleteCategory)

		admin.GET("/peminjaman/edit/:id", handleEditLoanPage)
		admin.POST("/peminjaman/edit/:id", handleUpdateLoan)
		admin.POST("/peminjaman/delete/:id", handleDeleteLoan)

		admin.GET("/laporan", handleReport)
		admin.GET("/laporan/export", handleExportReport)
	}

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"Title":   "Halaman Tidak Ditemukan - Inventaris",
			"Message": "Halaman yang Anda cari tidak ditemukan.",
		})
	})
}

// TemplateFuncs is shared by the server and the handler tests.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"lower": strings.ToLower,
	}
}

func addConfigContext(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	}
}

func addEmailServiceContext(emailService *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("email_service", emailService)
		c.Next()
	}
}

func viewer(c *gin.Context) *session.Resolver {
	if v, ok := c.Get(middleware.KeyResolver); ok {
		if r, ok := v.(*session.Resolver); ok {
			return r
		}
	}
	return session.New(nil)
}

func apiClient(c *gin.Context) *gateway.Client {
	return c.MustGet(middleware.KeyAPI).(*gateway.Client)
}

func csrfToken(c *gin.Context) string {
	sessionID := c.GetString(middleware.KeySessionID)
	if sessionID == "" {
		return ""
	}
	db := c.MustGet(middleware.KeyDB).(*sql.DB)
	token, err := database.CreateCSRFToken(db, sessionID)
	if err != nil {
		logger.Error("Failed to create CSRF token", "session_id", sessionID, "error", err)
		return ""
	}
	return token
}

var notices = map[string]string{
	"barang_dibuat":       "Barang berhasil ditambahkan",
	"barang_diubah":       "Barang berhasil diperbarui",
	"barang_dihapus":      "Barang berhasil dihapus",
	"kategori_dibuat":     "Kategori berhasil ditambahkan",
	"kategori_diubah":     "Kategori berhasil diperbarui",
	"kategori_dihapus":    "Kategori berhasil dihapus",
	"peminjaman_dibuat":   "Peminjaman berhasil ditambahkan",
	"peminjaman_diubah":   "Peminjaman berhasil diperbarui",
	"peminjaman_dihapus":  "Peminjaman berhasil dihapus",
	"sesi_berakhir":       "Sesi Anda telah berakhir, silakan masuk kembali",
	"registrasi_berhasil": "Registrasi berhasil, selamat datang!",
	"keluar":              "Anda telah keluar",
}

// pageData is the data every authenticated page starts from.
func pageData(c *gin.Context, title string) gin.H {
	data := gin.H{
		"Title":     title + " - Inventaris",
		"IsAdmin":   viewer(c).IsAdmin(),
		"CSRFToken": csrfToken(c),
		"Notice":    notices[c.Query("notice")],
	}
	if info, ok := viewer(c).DisplayInfo(); ok {
		data["User"] = info
	}
	return data
}

// gatewayFailure turns a gateway error into a user message. An expired
// session is ended here and the request redirected; handled is then true.
func gatewayFailure(c *gin.Context, err error, fallback string) (msg string, handled bool) {
	if errors.Is(err, gateway.ErrSessionExpired) {
		endSession(c)
		c.Redirect(http.StatusFound, "/login?notice=sesi_berakhir")
		c.Abort()
		return "", true
	}

	logger.Warn("Backend request failed", "path", c.FullPath(), "error", err)
	return gateway.UserMessage(err, fallback), false
}

func endSession(c *gin.Context) {
	if sessionID := c.GetString(middleware.KeySessionID); sessionID != "" {
		db := c.MustGet(middleware.KeyDB).(*sql.DB)
		if err := database.DeleteSession(db, sessionID); err != nil {
			logger.Error("Failed to delete session", "session_id", sessionID, "error", err)
		}
	}
	middleware.ClearSessionCookie(c)
}

func formValues(c *gin.Context, fields []string) map[string]string {
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		values[field] = c.PostForm(field)
	}
	return values
}

func renderError(c *gin.Context, status int, title, message string) {
	data := pageData(c, title)
	data["Message"] = message
	c.HTML(status, "error.html", data)
}

func noErrors() validation.Errors {
	return validation.Errors{}
}

func handleCSRFToken(c *gin.Context) {
	token := csrfToken(c)
	if token == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal membuat token keamanan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"csrf_token": token})
}
