package feed

import (
	"fmt"
	"strings"

	"github.com/user/feed-service/internal/entity"
	"github.com/user/feed-service/internal/feed/extract"
)

// Parser turns a parsed feed document into normalized property records.
// Parsing never drops a listing: a listing that fails every field
// extraction still yields a record with zeroed defaults, and rejection is
// the validation gate's job.
type Parser interface {
	Dialect() Dialect
	Parse(doc *Element) []entity.PropertyRecord
}

// GenericParser handles the in-house export schema and legacy lowercase
// `imovel` feeds. Every field is read through a fixed bilingual tag-alias
// table, first non-empty match wins.
type GenericParser struct{}

func NewGenericParser() *GenericParser { return &GenericParser{} }

func (p *GenericParser) Dialect() Dialect { return DialectGeneric }

func (p *GenericParser) Parse(doc *Element) []entity.PropertyRecord {
	listings := doc.FindAll("Listing")
	if len(listings) == 0 {
		listings = doc.FindAll("imovel")
	}

	records := make([]entity.PropertyRecord, 0, len(listings))
	for i, el := range listings {
		records = append(records, p.parseListing(el, i))
	}
	return records
}

func (p *GenericParser) parseListing(el *Element, index int) entity.PropertyRecord {
	rec := entity.PropertyRecord{
		ID:          el.ChildText("ListingID", "id", "codigo"),
		Title:       el.ChildText("Title", "titulo"),
		Description: el.ChildText("Description", "descricao"),

		Price:        floatOrZero(el.ChildText("Price", "valor", "preco")),
		AreaM2:       floatOrZero(el.ChildText("Area", "area", "LivingArea", "area_util")),
		Bedrooms:     intOrZero(el.ChildText("Bedrooms", "quartos", "dormitorios")),
		Bathrooms:    intOrZero(el.ChildText("Bathrooms", "banheiros")),
		ParkingSpots: intOrZero(el.ChildText("Garages", "vagas", "garagem")),

		Address:      el.ChildText("Address", "endereco"),
		Neighborhood: el.ChildText("Neighborhood", "bairro"),
		City:         el.ChildText("City", "cidade"),
		State:        el.ChildText("State", "estado", "uf"),
		ZipCode:      el.ChildText("ZipCode", "cep"),
	}

	if rec.ID == "" {
		rec.ID = fmt.Sprintf("%s_%d", DialectGeneric, index)
	}

	rec.PropertyType = normalizeType(
		el.ChildText("PropertyType", "tipo"),
		rec.Title+" "+rec.Description,
	)
	rec.TransactionType = normalizeTransaction(
		el.ChildText("TransactionType", "transacao"),
		rec.Title+" "+rec.Description,
	)

	rec.Photos = parsePhotos(el)
	return rec
}

func parsePhotos(el *Element) []string {
	container := el.Child("Photos")
	if container == nil {
		container = el.Child("fotos")
	}
	if container == nil {
		return nil
	}

	var photos []string
	for _, c := range container.Children {
		if !strings.EqualFold(c.Name, "Photo") && !strings.EqualFold(c.Name, "foto") {
			continue
		}
		if u := c.TrimmedText(); u != "" {
			photos = append(photos, u)
		}
	}
	return photos
}

// normalizeType maps a dialect's type tag onto the closed enum; when the
// tag is absent or unrecognized the type is inferred from free text.
func normalizeType(tag, text string) entity.PropertyType {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case string(entity.PropertyApartment), "apartamento":
		return entity.PropertyApartment
	case string(entity.PropertyHouse):
		return entity.PropertyHouse
	case string(entity.PropertyLand):
		return entity.PropertyLand
	case string(entity.PropertyCommercial):
		return entity.PropertyCommercial
	}
	if tag != "" {
		text = tag + " " + text
	}
	return extract.PropertyType(text)
}

func normalizeTransaction(tag, text string) entity.TransactionType {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case string(entity.TransactionSale), "venda":
		return entity.TransactionSale
	case string(entity.TransactionRent):
		return entity.TransactionRent
	}
	if tag != "" {
		text = tag + " " + text
	}
	return extract.TransactionType(text)
}

// floatOrZero and intOrZero collapse an extraction miss to 0 at the parse
// boundary, keeping numeric record fields total.
func floatOrZero(s string) float64 {
	v, ok := extract.Number(s)
	if !ok {
		return 0
	}
	return v
}

func intOrZero(s string) int {
	return int(floatOrZero(s))
}
