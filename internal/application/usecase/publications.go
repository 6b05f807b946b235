// Package usecase contains application-level services.
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/tesso57/pubdesk/internal/domain/publication"
)

// PublicationRepository abstracts the publications API.
type PublicationRepository interface {
	List(ctx context.Context, params publication.ListParams) ([]publication.Publication, error)
	Get(ctx context.Context, id string) (publication.Publication, error)
	Create(ctx context.Context, draft publication.Draft) (publication.Publication, error)
	Update(ctx context.Context, id string, patch publication.Patch) (publication.Publication, error)
	Delete(ctx context.Context, id string) error
	UndoDelete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (publication.BulkResult, error)
	BulkUndo(ctx context.Context, ids []string) (publication.BulkResult, error)
	ListPublic(ctx context.Context, params publication.ListParams) ([]publication.Publication, error)
	GetPublic(ctx context.Context, id string) (publication.Publication, error)
}

// PublicationService provides publication-related operations.
type PublicationService struct {
	Repo PublicationRepository
}

// NewPublicationService constructs a PublicationService.
func NewPublicationService(repo PublicationRepository) PublicationService {
	return PublicationService{Repo: repo}
}

// Page fetches one page of the signed-in user's publications.
func (s PublicationService) Page(ctx context.Context, filter publication.Filter, page, size int) ([]publication.Publication, error) {
	return s.Repo.List(ctx, filter.Params(page, size))
}

// PublicPage fetches one page of published publications.
func (s PublicationService) PublicPage(ctx context.Context, search string, page, size int) ([]publication.Publication, error) {
	return s.Repo.ListPublic(ctx, publication.ListParams{
		Search: strings.TrimSpace(search),
		Page:   page,
		Limit:  size,
	})
}

// Get loads one of the user's publications.
func (s PublicationService) Get(ctx context.Context, id string) (publication.Publication, error) {
	return s.Repo.Get(ctx, id)
}

// GetPublic loads a published publication.
func (s PublicationService) GetPublic(ctx context.Context, id string) (publication.Publication, error) {
	return s.Repo.GetPublic(ctx, id)
}

// Save validates draft and creates a publication, or updates editing when it is set.
func (s PublicationService) Save(ctx context.Context, editing *publication.Publication, draft publication.Draft) (publication.Publication, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return publication.Publication{}, err
	}
	if editing == nil {
		return s.Repo.Create(ctx, draft)
	}
	return s.Repo.Update(ctx, editing.ID, draft.Patch())
}

// SetStatus changes only the status of a publication.
func (s PublicationService) SetStatus(ctx context.Context, id string, status publication.Status) (publication.Publication, error) {
	if !status.Valid() {
		return publication.Publication{}, fmt.Errorf("invalid status %q", status)
	}
	return s.Repo.Update(ctx, id, publication.StatusPatch(status))
}

// Remove moves a publication to the trash, or restores it when restore is set.
func (s PublicationService) Remove(ctx context.Context, id string, restore bool) error {
	if restore {
		return s.Repo.UndoDelete(ctx, id)
	}
	return s.Repo.Delete(ctx, id)
}

// RemoveMany is the bulk form of Remove. An empty id list is a no-op.
func (s PublicationService) RemoveMany(ctx context.Context, ids []string, restore bool) (publication.BulkResult, error) {
	if len(ids) == 0 {
		return publication.BulkResult{}, nil
	}
	if restore {
		return s.Repo.BulkUndo(ctx, ids)
	}
	return s.Repo.BulkDelete(ctx, ids)
}
