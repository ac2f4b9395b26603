package entity

// ImportResult summarizes one import operation. It is returned to the
// caller and never persisted.
type ImportResult struct {
	Fetched int
	Created int
	Updated int
	Ignored int

	// Errors holds one message per record that failed to persist. A
	// per-record failure never aborts the rest of the batch.
	Errors []string

	DryRun    bool
	Published bool
}
