package entity

// PropertyType classifies a listing. Inferred heuristically from free text
// when the source dialect carries no explicit type tag.
type PropertyType string

const (
	PropertyApartment  PropertyType = "apartment"
	PropertyHouse      PropertyType = "house"
	PropertyLand       PropertyType = "land"
	PropertyCommercial PropertyType = "commercial"
)

// Residential reports whether the type describes a dwelling.
func (t PropertyType) Residential() bool {
	return t == PropertyApartment || t == PropertyHouse
}

// TransactionType distinguishes sale from rental listings.
type TransactionType string

const (
	TransactionSale TransactionType = "sale"
	TransactionRent TransactionType = "rent"
)

// PropertyRecord is the normalized, in-memory representation of one listing
// during an import or export pass. Numeric fields are always zero (never
// negative or unset) after parsing, so downstream arithmetic is total.
// Photos keep their source order; position 0 is the cover image.
type PropertyRecord struct {
	ID string

	Title       string
	Description string

	Price           float64
	TransactionType TransactionType

	AreaM2       float64
	Bedrooms     int
	Bathrooms    int
	ParkingSpots int

	Address      string
	Neighborhood string
	City         string
	State        string
	ZipCode      string

	PropertyType PropertyType

	Photos []string
}

// StoredProperty is a persisted listing row: the transient record plus its
// storage identity.
type StoredProperty struct {
	ID      int64
	OwnerID string
	Public  bool
	Record  PropertyRecord
}
