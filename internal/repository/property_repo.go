package repository

import (
	"context"

	"github.com/user/feed-service/internal/entity"
)

// PropertyRepository defines the interface for persisting imported property
// records. Rows are keyed by (owner_id, external_id): the same listing
// re-imported from a feed updates in place.
type PropertyRepository interface {
	// Upsert inserts or updates one record. The returned flag reports
	// whether a new row was created (false means updated).
	Upsert(ctx context.Context, ownerID string, rec entity.PropertyRecord, public bool) (created bool, err error)
	// FindByID retrieves one stored listing by its row id.
	FindByID(ctx context.Context, id int64) (*entity.StoredProperty, error)
	// ListPublic retrieves all of an owner's public listings, oldest first.
	ListPublic(ctx context.Context, ownerID string) ([]entity.StoredProperty, error)
	// ListOlxMarked retrieves the owner's public listings that are marked
	// for OLX publication.
	ListOlxMarked(ctx context.Context, ownerID string) ([]entity.StoredProperty, error)
	// Ping reports storage reachability for health checks.
	Ping(ctx context.Context) error
}
