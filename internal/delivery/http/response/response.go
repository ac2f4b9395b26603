package response

import (
	"time"

	"github.com/user/feed-service/internal/entity"
)

// ImportResultResponse is a DTO for entity.ImportResult.
type ImportResultResponse struct {
	Fetched   int      `json:"fetched"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Ignored   int      `json:"ignored"`
	Errors    []string `json:"errors"`
	DryRun    bool     `json:"dry_run"`
	Published bool     `json:"published"`
}

// FromImportResult maps the entity onto the wire shape.
func FromImportResult(r *entity.ImportResult) ImportResultResponse {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return ImportResultResponse{
		Fetched:   r.Fetched,
		Created:   r.Created,
		Updated:   r.Updated,
		Ignored:   r.Ignored,
		Errors:    errs,
		DryRun:    r.DryRun,
		Published: r.Published,
	}
}

// OlxMetadataResponse is a DTO for entity.OlxListingMetadata.
type OlxMetadataResponse struct {
	PropertyID      int64      `json:"property_id"`
	ContactName     *string    `json:"contact_name"`
	ContactPhone    *string    `json:"contact_phone"`
	ContactEmail    *string    `json:"contact_email"`
	PostalCode      *string    `json:"postal_code"`
	StateAbbr       *string    `json:"state_abbr"`
	StreetNumber    *string    `json:"street_number"`
	LivingAreaM2    *float64   `json:"living_area_m2"`
	MarkedForOlx    bool       `json:"marked_for_olx"`
	LastPublishedAt *time.Time `json:"last_published_at,omitempty"`
}

// FromOlxMetadata maps the entity onto the wire shape.
func FromOlxMetadata(m *entity.OlxListingMetadata) OlxMetadataResponse {
	return OlxMetadataResponse{
		PropertyID:      m.PropertyID,
		ContactName:     m.ContactName,
		ContactPhone:    m.ContactPhone,
		ContactEmail:    m.ContactEmail,
		PostalCode:      m.PostalCode,
		StateAbbr:       m.StateAbbr,
		StreetNumber:    m.StreetNumber,
		LivingAreaM2:    m.LivingAreaM2,
		MarkedForOlx:    m.MarkedForOlx,
		LastPublishedAt: m.LastPublishedAt,
	}
}
