package entity

import "time"

// OlxListingMetadata mirrors the `olx_listing_metadata` PostgreSQL table.
// Every marketplace field is independently nullable; the listing becomes
// publishable only once the whole validation rule set passes.
type OlxListingMetadata struct {
	PropertyID int64

	ContactName  *string
	ContactPhone *string
	ContactEmail *string

	PostalCode   *string
	StateAbbr    *string
	StreetNumber *string
	LivingAreaM2 *float64

	MarkedForOlx    bool
	LastPublishedAt *time.Time
}
