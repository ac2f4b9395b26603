package feed

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/feed-service/internal/entity"
)

// ToXML renders records into the generic output dialect: one <Listing> per
// record under a <Listings> root, fixed field order, CDATA around free
// text. The only contract is that the output re-parses through the generic
// parser path; byte-for-byte stability is not guaranteed.
func ToXML(records []entity.PropertyRecord) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<Listings>\n")

	for _, rec := range records {
		writeListing(&b, rec)
	}

	b.WriteString("</Listings>\n")
	return b.String()
}

func writeListing(b *strings.Builder, rec entity.PropertyRecord) {
	b.WriteString("  <Listing>\n")

	writeTag(b, "ListingID", rec.ID)
	writeCDATATag(b, "Title", rec.Title)
	writeCDATATag(b, "Description", rec.Description)
	writeTag(b, "Price", formatDecimal(rec.Price))
	writeTag(b, "Area", formatDecimal(rec.AreaM2))
	writeTag(b, "Bedrooms", strconv.Itoa(rec.Bedrooms))
	writeTag(b, "Bathrooms", strconv.Itoa(rec.Bathrooms))
	writeTag(b, "Garages", strconv.Itoa(rec.ParkingSpots))
	writeCDATATag(b, "Address", rec.Address)
	writeCDATATag(b, "City", rec.City)
	writeCDATATag(b, "State", rec.State)
	writeTag(b, "ZipCode", rec.ZipCode)
	writeTag(b, "PropertyType", string(rec.PropertyType))
	writeTag(b, "TransactionType", string(rec.TransactionType))

	b.WriteString("    <Photos>\n")
	for i, photo := range rec.Photos {
		fmt.Fprintf(b, "      <Photo order=\"%d\">%s</Photo>\n", i+1, escapeText(photo))
	}
	b.WriteString("    </Photos>\n")

	b.WriteString("  </Listing>\n")
}

func writeTag(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "    <%s>%s</%s>\n", name, escapeText(value), name)
}

func writeCDATATag(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "    <%s><![CDATA[%s]]></%s>\n", name, cdataSafe(value), name)
}

// cdataSafe splits any literal "]]>" so it cannot terminate the section.
func cdataSafe(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

func escapeText(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
