package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/user/feed-service/internal/entity"
	"github.com/user/feed-service/internal/olx"
	"github.com/user/feed-service/internal/repository"
	"github.com/user/feed-service/pkg/metrics"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrOlxQuotaExceeded = errors.New("OLX listing quota for the current plan exceeded")
	ErrNotOwner         = errors.New("property does not belong to this owner")
)

// OlxManager defines the interface for the per-listing OLX surface brokers
// interact with: metadata editing, readiness checks and the marking toggle.
type OlxManager interface {
	// Readiness loads a listing and its metadata and runs the gate.
	Readiness(ctx context.Context, propertyID int64) (olx.Result, error)
	// GetMetadata returns the stored metadata, or an empty form when the
	// broker has not filled anything yet.
	GetMetadata(ctx context.Context, propertyID int64) (*entity.OlxListingMetadata, error)
	// SaveMetadata persists the form and returns the fresh gate verdict.
	SaveMetadata(ctx context.Context, meta *entity.OlxListingMetadata) (olx.Result, error)
	// SetMarked toggles OLX publication for a listing, enforcing the
	// plan quota when marking.
	SetMarked(ctx context.Context, ownerID string, propertyID int64, marked bool) error
}

type olxManagerUseCase struct {
	properties  repository.PropertyRepository
	metadata    repository.OlxMetadataRepository
	validator   *olx.Validator
	maxListings int
}

// NewOlxManager creates the OLX management use case.
func NewOlxManager(
	properties repository.PropertyRepository,
	metadata repository.OlxMetadataRepository,
	validator *olx.Validator,
	maxListings int,
) OlxManager {
	return &olxManagerUseCase{
		properties:  properties,
		metadata:    metadata,
		validator:   validator,
		maxListings: maxListings,
	}
}

func (uc *olxManagerUseCase) Readiness(ctx context.Context, propertyID int64) (olx.Result, error) {
	prop, meta, err := uc.load(ctx, propertyID)
	if err != nil {
		return olx.Result{}, err
	}

	verdict := uc.validator.Validate(prop.Record, *meta)
	if verdict.IsValid {
		metrics.ValidationsTotal.WithLabelValues("valid").Inc()
	} else {
		metrics.ValidationsTotal.WithLabelValues("invalid").Inc()
	}
	return verdict, nil
}

func (uc *olxManagerUseCase) GetMetadata(ctx context.Context, propertyID int64) (*entity.OlxListingMetadata, error) {
	_, meta, err := uc.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (uc *olxManagerUseCase) SaveMetadata(ctx context.Context, meta *entity.OlxListingMetadata) (olx.Result, error) {
	prop, err := uc.properties.FindByID(ctx, meta.PropertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return olx.Result{}, ErrPropertyNotFound
		}
		return olx.Result{}, fmt.Errorf("load property %d: %w", meta.PropertyID, err)
	}

	if err := uc.metadata.Save(ctx, meta); err != nil {
		return olx.Result{}, fmt.Errorf("save OLX metadata: %w", err)
	}

	verdict := uc.validator.Validate(prop.Record, *meta)
	if verdict.IsValid {
		metrics.ValidationsTotal.WithLabelValues("valid").Inc()
	} else {
		metrics.ValidationsTotal.WithLabelValues("invalid").Inc()
	}
	return verdict, nil
}

func (uc *olxManagerUseCase) SetMarked(ctx context.Context, ownerID string, propertyID int64, marked bool) error {
	prop, err := uc.properties.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("load property %d: %w", propertyID, err)
	}
	if prop.OwnerID != ownerID {
		return ErrNotOwner
	}

	if marked {
		count, err := uc.metadata.CountMarked(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("count marked listings: %w", err)
		}
		if count >= uc.maxListings {
			return ErrOlxQuotaExceeded
		}
	}

	return uc.metadata.SetMarked(ctx, propertyID, marked)
}

func (uc *olxManagerUseCase) load(ctx context.Context, propertyID int64) (*entity.StoredProperty, *entity.OlxListingMetadata, error) {
	prop, err := uc.properties.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrPropertyNotFound
		}
		return nil, nil, fmt.Errorf("load property %d: %w", propertyID, err)
	}

	meta, err := uc.metadata.FindByPropertyID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No metadata yet: validate against an empty form so the broker
			// sees the full checklist.
			meta = &entity.OlxListingMetadata{PropertyID: propertyID}
		} else {
			return nil, nil, fmt.Errorf("load OLX metadata for property %d: %w", propertyID, err)
		}
	}
	return prop, meta, nil
}
