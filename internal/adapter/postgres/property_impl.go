package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/feed-service/internal/entity"
)

// PropertyRepoImpl provides a concrete implementation for the
// PropertyRepository interface using PostgreSQL.
type PropertyRepoImpl struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewPropertyRepo creates a new instance of PropertyRepoImpl.
func NewPropertyRepo(db *pgxpool.Pool) *PropertyRepoImpl {
	return &PropertyRepoImpl{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Upsert stores or updates a property record keyed by (owner_id,
// external_id). The xmax trick distinguishes an insert from an update.
func (r *PropertyRepoImpl) Upsert(ctx context.Context, ownerID string, rec entity.PropertyRecord, public bool) (bool, error) {
	photosJSON, err := json.Marshal(rec.Photos)
	if err != nil {
		return false, fmt.Errorf("marshal photos: %w", err)
	}

	query := `
		INSERT INTO properties (
			owner_id, external_id, title, description, price, transaction_type,
			area_m2, bedrooms, bathrooms, parking_spots,
			address, neighborhood, city, state, zip_code,
			property_type, photos, is_public, imported_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW())
		ON CONFLICT (owner_id, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			transaction_type = EXCLUDED.transaction_type,
			area_m2 = EXCLUDED.area_m2,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			parking_spots = EXCLUDED.parking_spots,
			address = EXCLUDED.address,
			neighborhood = EXCLUDED.neighborhood,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code,
			property_type = EXCLUDED.property_type,
			photos = EXCLUDED.photos,
			is_public = EXCLUDED.is_public,
			imported_at = NOW()
		RETURNING (xmax = 0);
	`

	var created bool
	err = r.db.QueryRow(ctx, query,
		ownerID,
		rec.ID,
		rec.Title,
		rec.Description,
		rec.Price,
		string(rec.TransactionType),
		rec.AreaM2,
		rec.Bedrooms,
		rec.Bathrooms,
		rec.ParkingSpots,
		rec.Address,
		rec.Neighborhood,
		rec.City,
		rec.State,
		rec.ZipCode,
		string(rec.PropertyType),
		photosJSON,
		public,
	).Scan(&created)
	if err != nil {
		return false, err
	}
	return created, nil
}

var propertyColumns = []string{
	"id", "owner_id", "external_id", "title", "description", "price",
	"transaction_type", "area_m2", "bedrooms", "bathrooms", "parking_spots",
	"address", "neighborhood", "city", "state", "zip_code",
	"property_type", "photos", "is_public",
}

// FindByID retrieves one stored listing by its row id.
func (r *PropertyRepoImpl) FindByID(ctx context.Context, id int64) (*entity.StoredProperty, error) {
	query, args, err := r.sb.Select(propertyColumns...).
		From("properties").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, query, args...)
	prop, err := scanProperty(row)
	if err != nil {
		return nil, err // pgx.ErrNoRows when not found
	}
	return prop, nil
}

// ListPublic retrieves all of an owner's public listings, oldest import first.
func (r *PropertyRepoImpl) ListPublic(ctx context.Context, ownerID string) ([]entity.StoredProperty, error) {
	query, args, err := r.sb.Select(propertyColumns...).
		From("properties").
		Where(sq.Eq{"owner_id": ownerID, "is_public": true}).
		OrderBy("imported_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryProperties(ctx, query, args)
}

// ListOlxMarked retrieves the owner's public listings marked for OLX.
func (r *PropertyRepoImpl) ListOlxMarked(ctx context.Context, ownerID string) ([]entity.StoredProperty, error) {
	cols := make([]string, len(propertyColumns))
	for i, c := range propertyColumns {
		cols[i] = "p." + c
	}
	query, args, err := r.sb.Select(cols...).
		From("properties p").
		Join("olx_listing_metadata m ON m.property_id = p.id").
		Where(sq.Eq{"p.owner_id": ownerID, "p.is_public": true, "m.marked_for_olx": true}).
		OrderBy("p.imported_at ASC", "p.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryProperties(ctx, query, args)
}

// Ping reports database reachability.
func (r *PropertyRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PropertyRepoImpl) queryProperties(ctx context.Context, query string, args []interface{}) ([]entity.StoredProperty, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []entity.StoredProperty
	for rows.Next() {
		prop, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, *prop)
	}
	return props, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*entity.StoredProperty, error) {
	var (
		prop            entity.StoredProperty
		transactionType string
		propertyType    string
		photosJSON      []byte
	)

	err := row.Scan(
		&prop.ID,
		&prop.OwnerID,
		&prop.Record.ID,
		&prop.Record.Title,
		&prop.Record.Description,
		&prop.Record.Price,
		&transactionType,
		&prop.Record.AreaM2,
		&prop.Record.Bedrooms,
		&prop.Record.Bathrooms,
		&prop.Record.ParkingSpots,
		&prop.Record.Address,
		&prop.Record.Neighborhood,
		&prop.Record.City,
		&prop.Record.State,
		&prop.Record.ZipCode,
		&propertyType,
		&photosJSON,
		&prop.Public,
	)
	if err != nil {
		return nil, err
	}

	prop.Record.TransactionType = entity.TransactionType(transactionType)
	prop.Record.PropertyType = entity.PropertyType(propertyType)
	if err := json.Unmarshal(photosJSON, &prop.Record.Photos); err != nil {
		return nil, fmt.Errorf("unmarshal photos: %w", err)
	}
	return &prop, nil
}
