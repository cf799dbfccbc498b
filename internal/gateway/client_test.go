package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"inventaris/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", time.Second).WithToken("tok-123")
}

func TestListSendsBearerAndQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/peminjaman", r.URL.Path)
		assert.Equal(t, "ani", r.URL.Query().Get("search"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":1,"nama_peminjam":"Ani","barang_id":"4","jumlah":2,"status":"dipinjam","tanggal_pinjam":"2024-03-01"}]`)
	})

	loans, err := c.Peminjaman().List(context.Background(), url.Values{"search": {"ani"}})
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, models.ID("1"), loans[0].ID)
	assert.Equal(t, models.ID("4"), loans[0].ItemID)
	assert.Equal(t, 2, loans[0].Quantity)
}

func TestListUnwrapsEnvelopeAndNormalisesNull(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/kategori":
			io.WriteString(w, `{"data":[{"id":"7","nama":"Elektronik"}]}`)
		default:
			io.WriteString(w, `null`)
		}
	})

	cats, err := c.Kategori().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Elektronik", cats[0].Name)

	items, err := c.Barang().List(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCreateAndUpdateSendPayload(t *testing.T) {
	var got []map[string]interface{}
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = append(got, body)
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	})

	item := &models.Item{Name: "Proyektor", CategoryID: "3", Stock: 4}
	created, err := c.Barang().Create(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "Proyektor", created.Name)
	_, err = c.Barang().Update(context.Background(), "9", item)
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /api/barang", "PUT /api/barang/9"}, paths)
	assert.Equal(t, "Proyektor", got[0]["nama"])
	assert.Equal(t, float64(3), got[0]["kategori_id"])
	assert.Equal(t, float64(4), got[0]["stok"])
	assert.NotContains(t, got[0], "id")
}

func TestCreateReturnsStoredEntity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"data":{"id":5,"nama_peminjam":"Ani","barang_id":1,"jumlah":2,"status":"dipinjam","tanggal_pinjam":"2024-03-01"}}`)
		default:
			io.WriteString(w, `{"message":"Berhasil"}`)
		}
	})

	loan := &models.Loan{BorrowerName: "Ani", ItemID: "1", Quantity: 2, Status: models.StatusBorrowed}
	created, err := c.Peminjaman().Create(context.Background(), loan)
	require.NoError(t, err)
	assert.Equal(t, models.ID("5"), created.ID)
	assert.Equal(t, "Ani", created.BorrowerName)
	assert.Empty(t, loan.ID)

	// A reply without the entity keeps what was sent.
	updated, err := c.Peminjaman().Update(context.Background(), "5", loan)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity)
	assert.Equal(t, "Ani", updated.BorrowerName)
}

func TestWriteSurvivesUndecodableReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":"tersimpan"}`)
	})

	cat, err := c.Kategori().Create(context.Background(), &models.Category{Name: "Elektronik"})
	require.NoError(t, err)
	assert.Equal(t, "Elektronik", cat.Name)

	plain := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "OK")
	})
	_, err = plain.Kategori().Update(context.Background(), "3", &models.Category{Name: "Elektronik"})
	require.NoError(t, err)
}

func TestServerMessageIsSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"error":"Kategori masih digunakan oleh barang"}`)
	})

	err := c.Kategori().Delete(context.Background(), "7")
	require.Error(t, err)

	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusConflict, gwErr.StatusCode)
	assert.Equal(t, "Kategori masih digunakan oleh barang", UserMessage(err, "Gagal menghapus kategori"))
	assert.False(t, errors.Is(err, ErrSessionExpired))
}

func TestMessageFieldAndFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/barang/1" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"message":"Stok tidak cukup"}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `<html>oops</html>`)
	})

	_, err := c.Barang().Get(context.Background(), "1")
	assert.Equal(t, "Stok tidak cukup", UserMessage(err, "fallback"))

	_, err = c.Barang().Get(context.Background(), "2")
	assert.Equal(t, "fallback", UserMessage(err, "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("dial tcp: refused"), "fallback"))
}

func TestUnauthorizedIsSessionExpired(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"Token tidak valid"}`)
	})

	_, err := c.Barang().List(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "rahasia" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":"Email atau password salah"}`)
			return
		}
		io.WriteString(w, `{"data":{"token":"jwt","user":{"username":"ani","email":"ani@x.com","role":"admin"}}}`)
	})
	anon := c.WithToken("")

	res, err := anon.Login(context.Background(), Credentials{Email: "ani@x.com", Password: "rahasia"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.Token)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	_, err = anon.Login(context.Background(), Credentials{Email: "ani@x.com", Password: "salah"})
	assert.Equal(t, "Email atau password salah", UserMessage(err, "Login gagal"))
}

func TestLoanReport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/laporan/peminjaman", r.URL.Path)
		io.WriteString(w, `[{"id":1,"nama_peminjam":"Ani","jumlah":1,"barang_info":{"nama":"Laptop"},"kategori_info":{"nama":"Komputer"}}]`)
	})

	rows, err := c.LoanReport(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Item)
	assert.Equal(t, "Laptop", rows[0].Item.Name)
	assert.Equal(t, "Komputer", rows[0].Category.Name)
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Barang().List(ctx, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSessionExpired))
}
