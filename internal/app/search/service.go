package search

import (
	"context"

	"github.com/aaa123456yg/music-platform/shared/go/models"
)

// Store captures the catalog-wide search query.
type Store interface {
	Search(ctx context.Context, query string, requesterID int64) (models.SearchResults, error)
}

// Service answers cross-entity search requests.
type Service interface {
	Search(ctx context.Context, query string, requesterID int64) (models.SearchResults, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Search(ctx context.Context, query string, requesterID int64) (models.SearchResults, error) {
	if err := ctx.Err(); err != nil {
		return models.SearchResults{}, err
	}
	return s.store.Search(ctx, query, requesterID)
}
