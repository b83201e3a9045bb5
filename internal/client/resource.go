package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

// Resource is one REST collection such as /families.
type Resource struct {
	c    *Client
	path string
	log  *logrus.Entry
}

func (r *Resource) Path() string { return r.path }

func (r *Resource) item(id string) string { return r.path + "/" + url.PathEscape(id) }

// List fetches the whole collection. A body that is not a JSON array yields
// an empty list; non-object elements are skipped.
func (r *Resource) List(ctx context.Context) ([]map[string]any, error) {
	var body any
	if err := r.c.do(ctx, http.MethodGet, r.path, r.c.cacheBuster(), nil, &body); err != nil {
		return nil, err
	}
	arr, ok := body.([]any)
	if !ok {
		if body != nil {
			r.log.Warnf("list: expected an array, got %T", body)
		}
		return []map[string]any{}, nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Resource) Get(ctx context.Context, id string) (map[string]any, error) {
	var out map[string]any
	if err := r.c.do(ctx, http.MethodGet, r.item(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create POSTs the full document and returns the stored version.
func (r *Resource) Create(ctx context.Context, doc map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := r.c.do(ctx, http.MethodPost, r.path, nil, doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update PATCHes a partial document. The id is taken from the URL, never the body.
func (r *Resource) Update(ctx context.Context, id string, patch map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := r.c.do(ctx, http.MethodPatch, r.item(id), nil, withoutID(patch), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace PUTs a full document.
func (r *Resource) Replace(ctx context.Context, id string, doc map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := r.c.do(ctx, http.MethodPut, r.item(id), nil, withoutID(doc), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}

func withoutID(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if k != "id" {
			out[k] = v
		}
	}
	return out
}
