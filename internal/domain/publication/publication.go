// Package publication defines the publication model and its validation rules.
package publication

import (
	"strings"
	"time"
)

// Status is the publishing state of a publication.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusPublished {
		return StatusDraft
	}
	return StatusPublished
}

// Publication is a text document owned by a user.
type Publication struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key returns the identity used for list deduplication.
func (p Publication) Key() string { return p.ID }

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Status  *Status `json:"status,omitempty"`
}

// StatusPatch builds a patch that only changes the status.
func StatusPatch(s Status) Patch {
	return Patch{Status: &s}
}

// ListParams are the query parameters of a list request.
type ListParams struct {
	Search      string
	Status      Status
	Page        int
	Limit       int
	ShowDeleted bool
}

// Filter is the user-controlled part of a dashboard listing.
type Filter struct {
	Search      string
	Status      Status
	ShowDeleted bool
}

// Deps returns the filter as a dependency list for a paginated view.
func (f Filter) Deps() []any {
	return []any{strings.TrimSpace(f.Search), f.Status, f.ShowDeleted}
}

// Params builds list parameters for the given page.
func (f Filter) Params(page, limit int) ListParams {
	return ListParams{
		Search:      strings.TrimSpace(f.Search),
		Status:      f.Status,
		Page:        page,
		Limit:       limit,
		ShowDeleted: f.ShowDeleted,
	}
}

// NextStatusFilter cycles All -> DRAFT -> PUBLISHED -> All.
func NextStatusFilter(s Status) Status {
	switch s {
	case "":
		return StatusDraft
	case StatusDraft:
		return StatusPublished
	default:
		return ""
	}
}

// BulkResult is the server response to a bulk operation.
type BulkResult struct {
	Count int `json:"deletedCount"`
}
