package middleware

import (
	"database/sql"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inventaris/internal/config"
	"inventaris/internal/database"
	"inventaris/internal/gateway"
	"inventaris/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig(env string) *config.Config {
	return &config.Config{Environment: env, SessionDuration: time.Hour}
}

func jwtToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newSession(t *testing.T, db *sql.DB, token string, role models.Role) *database.StoredSession {
	t.Helper()
	stored, err := database.CreateSession(db, token, models.Session{Username: "ani", Email: "ani@x.com", Role: role}, time.Hour)
	require.NoError(t, err)
	return stored
}

func get(r http.Handler, path, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredRedirectsWithoutSession(t *testing.T) {
	db := setupTestDB(t)
	r := gin.New()
	r.GET("/", AuthRequired(db, testConfig("production"), gateway.New("http://api.invalid", 0)), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := get(r, "/", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = get(r, "/", "no-such-session")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestAuthRequiredLoadsSession(t *testing.T) {
	db := setupTestDB(t)
	token := jwtToken(t, time.Now().Add(time.Hour))
	stored := newSession(t, db, token, models.RoleAdmin)

	r := gin.New()
	r.GET("/", AuthRequired(db, testConfig("production"), gateway.New("http://api.invalid", 0)), func(c *gin.Context) {
		user := c.MustGet(KeyUser).(models.Session)
		api := c.MustGet(KeyAPI).(*gateway.Client)
		assert.Equal(t, "ani@x.com", user.Email)
		assert.Equal(t, token, api.Token())
		assert.Equal(t, stored.ID, c.GetString(KeySessionID))
		c.String(http.StatusOK, "ok")
	})

	w := get(r, "/", stored.ID)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExpiredTokenEndsSession(t *testing.T) {
	db := setupTestDB(t)
	stored := newSession(t, db, jwtToken(t, time.Now().Add(-time.Minute)), models.RoleUser)

	r := gin.New()
	r.GET("/", AuthRequired(db, testConfig("production"), gateway.New("http://api.invalid", 0)), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := get(r, "/", stored.ID)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	_, err := database.GetSession(db, stored.ID)
	assert.ErrorIs(t, err, database.ErrSessionNotFound)
}

func TestAdminRequired(t *testing.T) {
	db := setupTestDB(t)
	admin := newSession(t, db, "opaque-admin", models.RoleAdmin)
	user := newSession(t, db, "opaque-user", models.RoleUser)

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("error.html").Parse(`{{.Message}}`)))
	r.GET("/laporan",
		AuthRequired(db, testConfig("production"), gateway.New("http://api.invalid", 0)),
		AdminRequired(),
		func(c *gin.Context) { c.String(http.StatusOK, "laporan") },
	)

	w := get(r, "/laporan", user.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "hanya dapat diakses oleh admin")

	w = get(r, "/laporan", admin.ID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "laporan", w.Body.String())
}

// A request blocked in its handler must not hold up requests from other clients.
func TestRateLimitersDoNotSerializeHandlers(t *testing.T) {
	cfg := testConfig("production")
	limiters := map[string]gin.HandlerFunc{
		http.MethodGet:  RateLimit(cfg),
		http.MethodPost: AuthRateLimit(cfg),
	}

	for method, limiter := range limiters {
		t.Run(method, func(t *testing.T) {
			started := make(chan struct{})
			release := make(chan struct{})
			defer close(release)

			r := gin.New()
			r.Handle(method, "/slow", limiter, func(c *gin.Context) {
				close(started)
				<-release
				c.String(http.StatusOK, "slow")
			})
			r.Handle(method, "/fast", limiter, func(c *gin.Context) {
				c.String(http.StatusOK, "fast")
			})

			serve := func(path, addr string) *httptest.ResponseRecorder {
				req := httptest.NewRequest(method, path, nil)
				req.RemoteAddr = addr
				w := httptest.NewRecorder()
				r.ServeHTTP(w, req)
				return w
			}

			go serve("/slow", "10.1.0.1:4000")
			<-started

			done := make(chan int, 1)
			go func() { done <- serve("/fast", "10.1.0.2:4000").Code }()

			select {
			case code := <-done:
				assert.Equal(t, http.StatusOK, code)
			case <-time.After(2 * time.Second):
				t.Fatal("request from a second client waited on a slow handler")
			}
		})
	}
}

func TestCSRFTokensAreOneShot(t *testing.T) {
	db := setupTestDB(t)
	stored := newSession(t, db, "opaque", models.RoleUser)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(KeyDB, db)
		c.Set(KeySessionID, stored.ID)
		c.Next()
	})
	r.Use(CSRF(testConfig("production")))
	r.POST("/logout", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	post := func(token string) int {
		form := url.Values{}
		if token != "" {
			form.Set("csrf_token", token)
		}
		req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, post(""))

	token, err := database.CreateCSRFToken(db, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, post(token))
	assert.Equal(t, http.StatusForbidden, post(token))
}

func TestCSRFSkippedInDevelopment(t *testing.T) {
	r := gin.New()
	r.Use(CSRF(testConfig("development")))
	r.POST("/logout", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:8080, https://inventaris.example"))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://inventaris.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://inventaris.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTrimSpacesKeepsPasswords(t *testing.T) {
	r := gin.New()
	r.Use(TrimSpaces())
	r.POST("/login", func(c *gin.Context) {
		c.String(http.StatusOK, c.PostForm("email")+"|"+c.PostForm("password"))
	})

	form := url.Values{"email": {"  ani@x.com "}, "password": {" rahasia "}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "ani@x.com| rahasia ", w.Body.String())
}
