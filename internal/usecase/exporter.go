package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/user/feed-service/internal/entity"
	"github.com/user/feed-service/internal/feed"
	"github.com/user/feed-service/internal/olx"
	"github.com/user/feed-service/internal/repository"
	"github.com/user/feed-service/pkg/metrics"
)

// Exporter defines the interface for the two export surfaces: the generic
// XML download and the OLX marketplace feed.
type Exporter interface {
	// ExportGeneric serializes all of the owner's public listings.
	ExportGeneric(ctx context.Context, ownerID string) (xmlDoc, filename string, err error)
	// ExportOlx serializes the broker's OLX-marked listings that pass the
	// validation gate. A non-preview export stamps each emitted listing
	// with the publication timestamp.
	ExportOlx(ctx context.Context, brokerID string, preview bool) (xmlDoc, filename string, err error)
}

type exporterUseCase struct {
	properties repository.PropertyRepository
	metadata   repository.OlxMetadataRepository
	validator  *olx.Validator
}

// NewExporter creates the export use case.
func NewExporter(
	properties repository.PropertyRepository,
	metadata repository.OlxMetadataRepository,
	validator *olx.Validator,
) Exporter {
	return &exporterUseCase{
		properties: properties,
		metadata:   metadata,
		validator:  validator,
	}
}

func (uc *exporterUseCase) ExportGeneric(ctx context.Context, ownerID string) (string, string, error) {
	props, err := uc.properties.ListPublic(ctx, ownerID)
	if err != nil {
		return "", "", fmt.Errorf("list public properties: %w", err)
	}

	records := make([]entity.PropertyRecord, 0, len(props))
	for _, p := range props {
		records = append(records, p.Record)
	}

	metrics.ExportsTotal.WithLabelValues("generic").Inc()
	slog.Info("Generic export produced", "owner_id", ownerID, "records", len(records))

	filename := fmt.Sprintf("imoveis_%s.xml", time.Now().Format("2006-01-02"))
	return feed.ToXML(records), filename, nil
}

func (uc *exporterUseCase) ExportOlx(ctx context.Context, brokerID string, preview bool) (string, string, error) {
	props, err := uc.properties.ListOlxMarked(ctx, brokerID)
	if err != nil {
		return "", "", fmt.Errorf("list OLX-marked properties: %w", err)
	}

	var (
		records     []entity.PropertyRecord
		publishedID []int64
	)
	for _, p := range props {
		meta, err := uc.metadata.FindByPropertyID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				meta = &entity.OlxListingMetadata{PropertyID: p.ID}
			} else {
				return "", "", fmt.Errorf("load OLX metadata for property %d: %w", p.ID, err)
			}
		}

		verdict := uc.validator.Validate(p.Record, *meta)
		if !verdict.IsValid {
			// Incomplete listings stay out of the feed; the broker sees the
			// violations through the readiness endpoint.
			slog.Warn("Skipping OLX listing that fails validation",
				"broker_id", brokerID, "property_id", p.ID, "violations", len(verdict.Errors))
			metrics.ValidationsTotal.WithLabelValues("invalid").Inc()
			continue
		}
		metrics.ValidationsTotal.WithLabelValues("valid").Inc()

		records = append(records, p.Record)
		publishedID = append(publishedID, p.ID)
	}

	xmlDoc := feed.ToXML(records)
	filename := fmt.Sprintf("olx-export-%s-%d.xml", brokerID, time.Now().UnixMilli())

	if preview {
		metrics.ExportsTotal.WithLabelValues("olx_preview").Inc()
		return xmlDoc, filename, nil
	}

	if err := uc.metadata.StampPublished(ctx, publishedID, time.Now()); err != nil {
		return "", "", fmt.Errorf("stamp published listings: %w", err)
	}

	metrics.ExportsTotal.WithLabelValues("olx").Inc()
	slog.Info("OLX export produced", "broker_id", brokerID, "records", len(records))
	return xmlDoc, filename, nil
}
