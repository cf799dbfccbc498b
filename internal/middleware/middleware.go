package middleware

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"inventaris/internal/config"
	"inventaris/internal/database"
	"inventaris/internal/gateway"
	"inventaris/internal/logger"
	"inventaris/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Context keys shared with the handlers.
const (
	KeyDB        = "db"
	KeySessionID = "session_id"
	KeyResolver  = "resolver"
	KeyAPI       = "api"
	KeyUser      = "user"
)

const SessionCookie = "session_id"

type rateLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientTracker struct {
	errors404    []time.Time
	blockedUntil time.Time
	lastSeen     time.Time
}

var (
	clients    = make(map[string]*rateLimiter)
	mu         sync.Mutex
	trackers   = make(map[string]*clientTracker)
	trackersMu sync.Mutex
)

func RateLimit(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.IsDevelopment() {
			c.Next()
			return
		}

		if !allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Terlalu banyak permintaan"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// allow records a request from ip. Handlers must never run while mu is held.
func allow(ip string) bool {
	mu.Lock()
	defer mu.Unlock()

	limiter, exists := clients[ip]
	if !exists {
		clients[ip] = &rateLimiter{
			limiter:  rate.NewLimiter(rate.Every(time.Second/20), 20),
			lastSeen: time.Now(),
		}
		cleanupOldClients()
		return true
	}

	limiter.lastSeen = time.Now()
	return limiter.limiter.Allow()
}

// AuthRateLimit throttles login and registration attempts per IP.
func AuthRateLimit(cfg *config.Config) gin.HandlerFunc {
	authClients := make(map[string]*rateLimiter)
	var authMu sync.Mutex

	allowAuth := func(ip string) bool {
		authMu.Lock()
		defer authMu.Unlock()

		for clientIP, client := range authClients {
			if time.Since(client.lastSeen) > 30*time.Minute {
				delete(authClients, clientIP)
			}
		}

		limiter, exists := authClients[ip]
		if !exists {
			authClients[ip] = &rateLimiter{
				limiter:  rate.NewLimiter(rate.Every(time.Minute), 5),
				lastSeen: time.Now(),
			}
			return true
		}

		limiter.lastSeen = time.Now()
		return limiter.limiter.Allow()
	}

	return func(c *gin.Context) {
		if cfg.IsDevelopment() || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		if !allowAuth(c.ClientIP()) {
			c.HTML(http.StatusTooManyRequests, "error.html", gin.H{
				"Title":   "Terlalu Banyak Percobaan",
				"Message": "Terlalu banyak percobaan masuk. Silakan tunggu sebentar.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func IPBlocker(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.IsDevelopment() {
			c.Next()
			return
		}

		ip := c.ClientIP()

		trackersMu.Lock()
		tracker, exists := trackers[ip]
		blocked := exists && time.Now().Before(tracker.blockedUntil)
		trackersMu.Unlock()

		if blocked {
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Title":   "Akses Diblokir",
				"Message": "Alamat IP Anda diblokir sementara karena terlalu banyak permintaan tidak valid.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func Track404AndBlock(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if cfg.IsDevelopment() || c.Writer.Status() != http.StatusNotFound {
			return
		}

		ip := c.ClientIP()
		now := time.Now()

		trackersMu.Lock()
		defer trackersMu.Unlock()

		tracker, exists := trackers[ip]
		if !exists {
			tracker = &clientTracker{lastSeen: now}
			trackers[ip] = tracker
		}

		tracker.lastSeen = now
		tracker.errors404 = append(tracker.errors404, now)

		cutoff := now.Add(-5 * time.Minute)
		recent := tracker.errors404[:0]
		for _, at := range tracker.errors404 {
			if at.After(cutoff) {
				recent = append(recent, at)
			}
		}
		tracker.errors404 = recent

		if len(tracker.errors404) >= 10 {
			tracker.blockedUntil = now.Add(15 * time.Minute)
			logger.Warn("Blocked IP after repeated 404s", "ip", ip, "count", len(tracker.errors404))
			tracker.errors404 = nil
		}

		for trackerIP, t := range trackers {
			if time.Since(t.lastSeen) > 30*time.Minute && now.After(t.blockedUntil) {
				delete(trackers, trackerIP)
			}
		}
	}
}

func cleanupOldClients() {
	for ip, client := range clients {
		if time.Since(client.lastSeen) > 10*time.Minute {
			delete(clients, ip)
		}
	}
}

// CORS allows the comma separated origins; an empty list allows any origin
// without credentials.
func CORS(allowedOrigins string) gin.HandlerFunc {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-CSRF-Token"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func CSRF(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.IsDevelopment() {
			c.Next()
			return
		}

		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}

		token := c.GetHeader("X-CSRF-Token")
		if token == "" {
			token = c.PostForm("csrf_token")
		}

		if token == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "CSRF token required"})
			c.Abort()
			return
		}

		sessionID := c.GetString(KeySessionID)
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		db, exists := c.Get(KeyDB)
		if !exists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not available"})
			c.Abort()
			return
		}

		if err := database.ValidateCSRFToken(db.(*sql.DB), token, sessionID); err != nil {
			logger.Warn("Rejected CSRF token", "session_id", sessionID, "error", err)
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid CSRF token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ClearSessionCookie expires the browser's session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
}

// loadSession resolves the cookie to a stored session. Expired bearer
// credentials and unreadable session records end the session.
func loadSession(c *gin.Context, db *sql.DB, cfg *config.Config) (*database.StoredSession, *session.Resolver, bool) {
	sessionID, err := c.Cookie(SessionCookie)
	if err != nil || sessionID == "" {
		return nil, nil, false
	}

	stored, err := database.GetSession(db, sessionID)
	if err != nil {
		return nil, nil, false
	}

	resolver := session.Resolve(stored.Data)
	if _, ok := resolver.CurrentSession(); !ok || session.TokenExpired(stored.Token, time.Now()) {
		if err := database.DeleteSession(db, stored.ID); err != nil {
			logger.Warn("Failed to delete stale session", "session_id", stored.ID, "error", err)
		}
		return nil, nil, false
	}

	if err := database.RenewSession(db, stored.ID, cfg.SessionDuration); err != nil {
		logger.Warn("Failed to renew session", "session_id", stored.ID, "error", err)
	}
	return stored, resolver, true
}

func setSessionContext(c *gin.Context, db *sql.DB, api *gateway.Client, stored *database.StoredSession, resolver *session.Resolver) {
	s, _ := resolver.CurrentSession()
	c.Set(KeyDB, db)
	c.Set(KeySessionID, stored.ID)
	c.Set(KeyResolver, resolver)
	c.Set(KeyAPI, api.WithToken(stored.Token))
	c.Set(KeyUser, s)
}

func AuthRequired(db *sql.DB, cfg *config.Config, api *gateway.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		stored, resolver, ok := loadSession(c, db, cfg)
		if !ok {
			ClearSessionCookie(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		setSessionContext(c, db, api, stored, resolver)
		c.Next()
	}
}

// AuthOptional loads the session when there is one; guests pass through.
func AuthOptional(db *sql.DB, cfg *config.Config, api *gateway.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(KeyDB, db)
		c.Set(KeyAPI, api)
		if stored, resolver, ok := loadSession(c, db, cfg); ok {
			setSessionContext(c, db, api, stored, resolver)
		}
		c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		resolver, _ := c.Get(KeyResolver)
		r, _ := resolver.(*session.Resolver)
		if !r.IsAdmin() {
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Title":   "Akses Ditolak",
				"User":    c.MustGet(KeyUser),
				"Message": "Halaman ini hanya dapat diakses oleh admin.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func SecurityHeaders(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.IsDevelopment() {
			c.Next()
			return
		}

		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "same-origin")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		c.Next()
	}
}

func LogRequests() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s %s %d %s %s\n",
			param.TimeStamp.Format("2006/01/02 15:04:05"),
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
			param.ClientIP,
		)
	})
}

// TrimSpaces trims submitted form values. Password fields are left as typed.
func TrimSpaces() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "POST" || c.Request.Method == "PUT" {
			if err := c.Request.ParseForm(); err == nil {
				for key, values := range c.Request.PostForm {
					if strings.Contains(key, "password") {
						continue
					}
					for i, value := range values {
						c.Request.PostForm[key][i] = strings.TrimSpace(value)
					}
				}
			}
		}
		c.Next()
	}
}
