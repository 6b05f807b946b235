package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tesso57/pubdesk/internal/domain/publication"
)

const (
	pathPublications = "/api/publications"
	pathBulkDelete   = "/api/publications/bulk-delete"
	pathBulkUndo     = "/api/publications/bulk-undo"
	pathUndoDelete   = "/api/publications/undo"
	pathPublic       = "/api/public"
)

type idsRequest struct {
	IDs []string `json:"ids"`
}

// List fetches a page of the signed-in user's publications.
func (c *Client) List(ctx context.Context, params publication.ListParams) ([]publication.Publication, error) {
	return c.list(ctx, pathPublications, params)
}

// ListPublic fetches a page of published publications.
func (c *Client) ListPublic(ctx context.Context, params publication.ListParams) ([]publication.Publication, error) {
	return c.list(ctx, pathPublic, params)
}

// Get fetches one of the user's publications.
func (c *Client) Get(ctx context.Context, id string) (publication.Publication, error) {
	var p publication.Publication
	err := c.do(ctx, http.MethodGet, itemPath(pathPublications, id), nil, &p)
	return p, err
}

// GetPublic fetches a published publication.
func (c *Client) GetPublic(ctx context.Context, id string) (publication.Publication, error) {
	var p publication.Publication
	err := c.do(ctx, http.MethodGet, itemPath(pathPublic, id), nil, &p)
	return p, err
}

// Create stores a new publication.
func (c *Client) Create(ctx context.Context, draft publication.Draft) (publication.Publication, error) {
	var p publication.Publication
	err := c.do(ctx, http.MethodPost, pathPublications, draft, &p)
	return p, err
}

// Update applies patch to a publication.
func (c *Client) Update(ctx context.Context, id string, patch publication.Patch) (publication.Publication, error) {
	var p publication.Publication
	err := c.do(ctx, http.MethodPut, itemPath(pathPublications, id), patch, &p)
	return p, err
}

// Delete moves a publication to the trash.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(pathPublications, id), nil, nil)
}

// UndoDelete restores a trashed publication.
func (c *Client) UndoDelete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(pathUndoDelete, id), nil, nil)
}

// BulkDelete trashes several publications.
func (c *Client) BulkDelete(ctx context.Context, ids []string) (publication.BulkResult, error) {
	var res publication.BulkResult
	err := c.do(ctx, http.MethodPost, pathBulkDelete, idsRequest{IDs: ids}, &res)
	return res, err
}

// BulkUndo restores several publications.
func (c *Client) BulkUndo(ctx context.Context, ids []string) (publication.BulkResult, error) {
	var res publication.BulkResult
	err := c.do(ctx, http.MethodPost, pathBulkUndo, idsRequest{IDs: ids}, &res)
	return res, err
}

func (c *Client) list(ctx context.Context, path string, params publication.ListParams) ([]publication.Publication, error) {
	rel := &url.URL{Path: path, RawQuery: listQuery(params).Encode()}
	var raw json.RawMessage
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList(raw), nil
}

func listQuery(params publication.ListParams) url.Values {
	values := url.Values{}
	if params.Search != "" {
		values.Set("search", params.Search)
	}
	if params.Status != "" {
		values.Set("status", string(params.Status))
	}
	if params.Page > 0 {
		values.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.ShowDeleted {
		values.Set("showDeleted", "true")
	}
	return values
}

// decodeList accepts either a bare array or an object wrapping the array in
// "data". Any other payload is an empty page.
func decodeList(raw json.RawMessage) []publication.Publication {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []publication.Publication{}
	}
	switch raw[0] {
	case '[':
		var items []publication.Publication
		if err := json.Unmarshal(raw, &items); err == nil {
			return items
		}
	case '{':
		var nested struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil {
			data := bytes.TrimSpace(nested.Data)
			if len(data) > 0 && data[0] == '[' {
				var items []publication.Publication
				if err := json.Unmarshal(data, &items); err == nil {
					return items
				}
			}
		}
	}
	return []publication.Publication{}
}

func itemPath(root, id string) string {
	return root + "/" + url.PathEscape(id)
}
