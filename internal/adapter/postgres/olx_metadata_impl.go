package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/feed-service/internal/entity"
)

// OlxMetadataRepoImpl provides a concrete implementation for the
// OlxMetadataRepository interface using PostgreSQL.
type OlxMetadataRepoImpl struct {
	db *pgxpool.Pool
}

// NewOlxMetadataRepo creates a new instance of OlxMetadataRepoImpl.
func NewOlxMetadataRepo(db *pgxpool.Pool) *OlxMetadataRepoImpl {
	return &OlxMetadataRepoImpl{db: db}
}

// FindByPropertyID retrieves the metadata row for a property.
func (r *OlxMetadataRepoImpl) FindByPropertyID(ctx context.Context, propertyID int64) (*entity.OlxListingMetadata, error) {
	query := `
		SELECT property_id, contact_name, contact_phone, contact_email,
		       postal_code, state_abbr, street_number, living_area_m2,
		       marked_for_olx, last_published_at
		FROM olx_listing_metadata
		WHERE property_id = $1;
	`
	row := r.db.QueryRow(ctx, query, propertyID)

	var meta entity.OlxListingMetadata
	err := row.Scan(
		&meta.PropertyID,
		&meta.ContactName,
		&meta.ContactPhone,
		&meta.ContactEmail,
		&meta.PostalCode,
		&meta.StateAbbr,
		&meta.StreetNumber,
		&meta.LivingAreaM2,
		&meta.MarkedForOlx,
		&meta.LastPublishedAt,
	)
	if err != nil {
		return nil, err // pgx.ErrNoRows when no metadata exists yet
	}
	return &meta, nil
}

// Save creates or updates the metadata for a property.
func (r *OlxMetadataRepoImpl) Save(ctx context.Context, meta *entity.OlxListingMetadata) error {
	query := `
		INSERT INTO olx_listing_metadata (
			property_id, contact_name, contact_phone, contact_email,
			postal_code, state_abbr, street_number, living_area_m2
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (property_id) DO UPDATE SET
			contact_name = EXCLUDED.contact_name,
			contact_phone = EXCLUDED.contact_phone,
			contact_email = EXCLUDED.contact_email,
			postal_code = EXCLUDED.postal_code,
			state_abbr = EXCLUDED.state_abbr,
			street_number = EXCLUDED.street_number,
			living_area_m2 = EXCLUDED.living_area_m2;
	`
	_, err := r.db.Exec(ctx, query,
		meta.PropertyID,
		meta.ContactName,
		meta.ContactPhone,
		meta.ContactEmail,
		meta.PostalCode,
		meta.StateAbbr,
		meta.StreetNumber,
		meta.LivingAreaM2,
	)
	return err
}

// SetMarked toggles the OLX publication mark, creating the metadata row if
// the broker marks a listing before filling the form.
func (r *OlxMetadataRepoImpl) SetMarked(ctx context.Context, propertyID int64, marked bool) error {
	query := `
		INSERT INTO olx_listing_metadata (property_id, marked_for_olx)
		VALUES ($1, $2)
		ON CONFLICT (property_id) DO UPDATE SET
			marked_for_olx = EXCLUDED.marked_for_olx;
	`
	_, err := r.db.Exec(ctx, query, propertyID, marked)
	return err
}

// CountMarked returns how many of an owner's listings carry the OLX mark.
func (r *OlxMetadataRepoImpl) CountMarked(ctx context.Context, ownerID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM olx_listing_metadata m
		JOIN properties p ON p.id = m.property_id
		WHERE p.owner_id = $1 AND m.marked_for_olx;
	`
	var count int
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&count)
	return count, err
}

// StampPublished records the publication timestamp on the metadata rows of
// the given properties.
func (r *OlxMetadataRepoImpl) StampPublished(ctx context.Context, propertyIDs []int64, ts time.Time) error {
	if len(propertyIDs) == 0 {
		return nil
	}
	query := `
		UPDATE olx_listing_metadata
		SET last_published_at = $1
		WHERE property_id = ANY($2);
	`
	_, err := r.db.Exec(ctx, query, ts, propertyIDs)
	return err
}
