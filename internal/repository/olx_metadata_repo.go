package repository

import (
	"context"
	"time"

	"github.com/user/feed-service/internal/entity"
)

// OlxMetadataRepository manages the marketplace metadata persisted
// one-to-one with a property.
type OlxMetadataRepository interface {
	// FindByPropertyID retrieves the metadata row for a property.
	// Returns pgx.ErrNoRows-wrapped error when none exists yet.
	FindByPropertyID(ctx context.Context, propertyID int64) (*entity.OlxListingMetadata, error)
	// Save inserts or updates the metadata for a property.
	Save(ctx context.Context, meta *entity.OlxListingMetadata) error
	// SetMarked toggles the OLX publication mark on a property.
	SetMarked(ctx context.Context, propertyID int64, marked bool) error
	// CountMarked returns how many of an owner's listings are marked,
	// used to enforce the plan quota.
	CountMarked(ctx context.Context, ownerID string) (int, error)
	// StampPublished records the publication timestamp on the metadata
	// rows of the given properties.
	StampPublished(ctx context.Context, propertyIDs []int64, ts time.Time) error
}
