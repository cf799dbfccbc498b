package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"inventaris/internal/logger"
	"inventaris/internal/models"
)

// Resource is one entity collection on the backing API.
type Resource[T any] struct {
	client *Client
	path   string
	name   string
}

// List fetches the collection. query is passed through, e.g. search for loans.
func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var out []T
	if err := r.client.do(ctx, "list "+r.name, http.MethodGet, r.path, query, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id models.ID) (*T, error) {
	var out T
	if err := r.client.do(ctx, "get "+r.name, http.MethodGet, r.itemPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts payload and returns the stored entity as the API echoes it,
// e.g. with its assigned id.
func (r *Resource[T]) Create(ctx context.Context, payload *T) (*T, error) {
	return r.write(ctx, "create "+r.name, http.MethodPost, r.path, payload)
}

func (r *Resource[T]) Update(ctx context.Context, id models.ID, payload *T) (*T, error) {
	return r.write(ctx, "update "+r.name, http.MethodPut, r.itemPath(id), payload)
}

// write sends payload and overlays the response onto a copy of it. Fields
// the API leaves out keep the submitted values. An undecodable body after a
// successful write is logged, not returned.
func (r *Resource[T]) write(ctx context.Context, op, method, path string, payload *T) (*T, error) {
	var raw json.RawMessage
	if err := r.client.do(ctx, op, method, path, nil, payload, &raw); err != nil {
		return nil, err
	}
	out := *payload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			logger.Warn("Ignoring undecodable write response", "op", op, "error", err)
			out = *payload
		}
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id models.ID) error {
	return r.client.do(ctx, "delete "+r.name, http.MethodDelete, r.itemPath(id), nil, nil, nil)
}

func (r *Resource[T]) itemPath(id models.ID) string {
	return r.path + "/" + url.PathEscape(id.String())
}
