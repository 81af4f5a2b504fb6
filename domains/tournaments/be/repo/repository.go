package repo

import (
	"context"

	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/resource"
)

// Repository defines the persistence operations required by the tournaments service.
type Repository interface {
	resource.Store[persistence.Tournament]
	GetTournamentsWithPagination(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.Tournament], error)
	FindBySlug(ctx context.Context, slug string) (persistence.Tournament, bool, error)
	Create(ctx context.Context, fields persistence.Fields) (persistence.Tournament, error)
	Update(ctx context.Context, id int64, fields persistence.Fields) (persistence.Tournament, bool, error)
	ChangeStatus(ctx context.Context, id int64, status string) (persistence.Tournament, bool, error)
	TitleExists(ctx context.Context, title string, excludeID *int64) (bool, error)
}

var _ Repository = (*persistence.TournamentStore)(nil)

// NewPostgresRepository returns the tournaments store as the service repository.
func NewPostgresRepository(store *persistence.TournamentStore) Repository {
	if store == nil {
		panic("tournament store is required")
	}
	return store
}
