package request

// ImportURLRequest is the body of the remote-feed import endpoints.
type ImportURLRequest struct {
	URL     string `json:"url"`
	UserID  string `json:"user_id"`
	Publish bool   `json:"publish"`
	Force   bool   `json:"force,omitempty"`
	DryRun  bool   `json:"dry_run,omitempty"`
}

// SaveOlxMetadataRequest is the body of the OLX metadata form save.
type SaveOlxMetadataRequest struct {
	PropertyID   int64    `json:"property_id"`
	ContactName  *string  `json:"contact_name"`
	ContactPhone *string  `json:"contact_phone"`
	ContactEmail *string  `json:"contact_email"`
	PostalCode   *string  `json:"postal_code"`
	StateAbbr    *string  `json:"state_abbr"`
	StreetNumber *string  `json:"street_number"`
	LivingAreaM2 *float64 `json:"living_area_m2"`
}

// MarkOlxRequest toggles OLX publication for one listing.
type MarkOlxRequest struct {
	OwnerID    string `json:"owner_id"`
	PropertyID int64  `json:"property_id"`
	Marked     bool   `json:"marked"`
}
