package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"inventaris/internal/config"
	"inventaris/internal/database"
	emailService "inventaris/internal/email"
	"inventaris/internal/gateway"
	"inventaris/internal/logger"
	"inventaris/internal/middleware"
	"inventaris/internal/models"
	"inventaris/internal/validation"

	"github.com/gin-gonic/gin"
)

func handleLoginPage(c *gin.Context) {
	if c.GetString(middleware.KeySessionID) != "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title":  "Masuk - Inventaris",
		"Notice": notices[c.Query("notice")],
		"Errors": noErrors(),
	})
}

func handleLogin(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	errs := validation.Credentials(email, password)
	if errs.HasErrors() {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"Title":  "Masuk - Inventaris",
			"Errors": errs,
			"Email":  email,
		})
		return
	}

	api := apiClient(c).WithToken("")
	res, err := api.Login(c.Request.Context(), gateway.Credentials{Email: email, Password: password})
	if err != nil {
		logger.Warn("Login failed", "email", email, "error", err)
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Title":  "Masuk - Inventaris",
			"Errors": noErrors(),
			"Error":  gateway.UserMessage(err, "Email atau password salah"),
			"Email":  email,
		})
		return
	}

	if err := startSession(c, res); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"Title":  "Masuk - Inventaris",
			"Errors": noErrors(),
			"Error":  "Gagal membuat sesi. Silakan coba lagi.",
			"Email":  email,
		})
		return
	}

	logger.Info("User logged in", "email", res.User.Email, "role", res.User.Role)
	c.Redirect(http.StatusFound, "/")
}

func handleRegisterPage(c *gin.Context) {
	if c.GetString(middleware.KeySessionID) != "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "register.html", gin.H{
		"Title":  "Daftar - Inventaris",
		"Errors": noErrors(),
	})
}

func handleRegister(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirmPassword := c.PostForm("confirm_password")

	errs := validation.Registration(username, email, password, confirmPassword)
	if errs.HasErrors() {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"Title":    "Daftar - Inventaris",
			"Errors":   errs,
			"Username": username,
			"Email":    email,
		})
		return
	}

	api := apiClient(c).WithToken("")
	res, err := api.Register(c.Request.Context(), gateway.Registration{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		logger.Warn("Registration failed", "email", email, "error", err)
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"Title":    "Daftar - Inventaris",
			"Errors":   noErrors(),
			"Error":    gateway.UserMessage(err, "Registrasi gagal. Silakan coba lagi."),
			"Username": username,
			"Email":    email,
		})
		return
	}

	if err := startSession(c, res); err != nil {
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{
			"Title":  "Daftar - Inventaris",
			"Errors": noErrors(),
			"Error":  "Akun dibuat, tetapi sesi gagal dibuat. Silakan masuk.",
		})
		return
	}

	emailSvc, _ := c.Get("email_service")
	if service, ok := emailSvc.(*emailService.Service); ok && service.IsEnabled() {
		user := res.User
		go func() {
			if err := service.SendWelcomeEmail(user); err != nil {
				logger.Warn("Failed to send welcome email", "email", user.Email, "error", err)
			}
		}()
	}

	c.Redirect(http.StatusFound, "/?notice=registrasi_berhasil")
}

// startSession persists the credential and the user record together and
// hands the browser only the session id.
func startSession(c *gin.Context, res *gateway.AuthResult) error {
	db := c.MustGet(middleware.KeyDB).(*sql.DB)
	cfg := c.MustGet("config").(*config.Config)

	user := res.User
	if user.Role != models.RoleAdmin {
		user.Role = models.RoleUser
	}

	stored, err := database.CreateSession(db, res.Token, user, cfg.SessionDuration)
	if err != nil {
		logger.Error("Failed to create session", "email", user.Email, "error", err)
		return err
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, stored.ID, int(cfg.SessionDuration.Seconds()), "/", "", !cfg.IsDevelopment(), true)
	return nil
}

func handleLogout(c *gin.Context) {
	endSession(c)
	c.Redirect(http.StatusFound, "/login?notice=keluar")
}
