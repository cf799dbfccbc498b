// Package gateway is the REST client for the backing inventory API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inventaris/internal/logger"
	"inventaris/internal/models"

	"github.com/google/uuid"
)

const maxResponseSize = 10 << 20

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of c that sends token as its bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Token() string {
	return c.token
}

// do sends in as JSON (when non-nil) and decodes the response into out. A
// {"data": ...} envelope is unwrapped; bare bodies are accepted as well.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("Backend request failed", "op", op, "request_id", requestID, "error", err)
		return fmt.Errorf("failed to send %s request: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	logger.Debug("Backend request",
		"op", op,
		"method", method,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := newError(op, resp.StatusCode, raw)
		if resp.StatusCode >= 500 {
			logger.Error("Backend error", "op", op, "status", resp.StatusCode, "request_id", requestID)
		} else {
			logger.Warn("Backend rejected request", "op", op, "status", resp.StatusCode, "request_id", requestID)
		}
		return gwErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	// Writes accept plain-text acknowledgements.
	if _, ok := out.(*json.RawMessage); ok && !json.Valid(raw) {
		return nil
	}
	if err := decode(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func decode(raw []byte, out interface{}) error {
	var envelope map[string]json.RawMessage
	if json.Unmarshal(raw, &envelope) == nil {
		if data, ok := envelope["data"]; ok {
			return json.Unmarshal(data, out)
		}
	}
	return json.Unmarshal(raw, out)
}

// AuthResult is what login and registration return.
type AuthResult struct {
	Token string         `json:"token"`
	User  models.Session `json:"user"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil, creds, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", nil, reg, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("register response carried no token")
	}
	return &res, nil
}

// LoanReport fetches the report rows, which embed item and category info.
func (c *Client) LoanReport(ctx context.Context) ([]models.Loan, error) {
	var loans []models.Loan
	if err := c.do(ctx, "laporan peminjaman", http.MethodGet, "/laporan/peminjaman", nil, nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func (c *Client) Barang() *Resource[models.Item] {
	return &Resource[models.Item]{client: c, path: "/barang", name: "barang"}
}

func (c *Client) Kategori() *Resource[models.Category] {
	return &Resource[models.Category]{client: c, path: "/kategori", name: "kategori"}
}

func (c *Client) Peminjaman() *Resource[models.Loan] {
	return &Resource[models.Loan]{client: c, path: "/peminjaman", name: "peminjaman"}
}
