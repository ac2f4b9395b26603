package feed

import (
	"fmt"

	"github.com/user/feed-service/internal/entity"
	"github.com/user/feed-service/internal/feed/extract"
)

// VivaRealParser handles ListingDataFeed documents. Most structured fields
// are not carried as distinct tags in this dialect, so the numeric fields
// are recovered heuristically from the concatenated title and description.
type VivaRealParser struct{}

func NewVivaRealParser() *VivaRealParser { return &VivaRealParser{} }

func (p *VivaRealParser) Dialect() Dialect { return DialectVivaReal }

func (p *VivaRealParser) Parse(doc *Element) []entity.PropertyRecord {
	feed := doc.Find("ListingDataFeed")
	if feed == nil {
		return nil
	}

	listings := feed.FindAll("Listing")
	records := make([]entity.PropertyRecord, 0, len(listings))
	for i, el := range listings {
		records = append(records, p.parseListing(el, i))
	}
	return records
}

func (p *VivaRealParser) parseListing(el *Element, index int) entity.PropertyRecord {
	rec := entity.PropertyRecord{ID: listingID(el)}
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("%s_%d", DialectVivaReal, index)
	}

	if t := el.Find("Title"); t != nil {
		rec.Title = t.TrimmedText()
	}
	if d := el.Find("Description"); d != nil {
		rec.Description = d.TrimmedText()
	}

	// Descriptions in the wild carry embedded HTML; strip it before the
	// regex extractors run.
	text := extract.Sanitize(rec.Title + " " + rec.Description)

	if v, ok := extract.Bedrooms.Extract(text); ok {
		rec.Bedrooms = int(v)
	}
	if v, ok := extract.Bathrooms.Extract(text); ok {
		rec.Bathrooms = int(v)
	}
	if v, ok := extract.Parking.Extract(text); ok {
		rec.ParkingSpots = int(v)
	}
	if v, ok := extract.Area.Extract(text); ok {
		rec.AreaM2 = v
	}
	if v, ok := extract.Price.Extract(text); ok {
		rec.Price = v
	}
	if city, state, ok := extract.CityState(text); ok {
		rec.City = city
		rec.State = state
	}

	rec.PropertyType = extract.PropertyType(text)
	rec.TransactionType = extract.TransactionType(text)
	rec.Photos = vivaRealPhotos(el)
	return rec
}

func listingID(el *Element) string {
	for _, alias := range []string{"ListingID", "ListingId", "id"} {
		if c := el.Find(alias); c != nil {
			if id := c.TrimmedText(); id != "" {
				return id
			}
		}
	}
	return ""
}

// vivaRealPhotos collects Media/Item URLs whose medium attribute is
// "image", preserving document order.
func vivaRealPhotos(el *Element) []string {
	var photos []string
	for _, item := range el.FindAll("Item") {
		if item.Attr("medium") != "image" {
			continue
		}
		if u := item.TrimmedText(); u != "" {
			photos = append(photos, u)
		}
	}
	return photos
}
