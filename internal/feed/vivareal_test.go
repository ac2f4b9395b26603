package feed

import (
	"testing"

	"github.com/user/feed-service/internal/entity"
)

const vivaRealSample = `
<ListingDataFeed>
	<Listings>
		<Listing>
			<ListingID>VR-77</ListingID>
			<Title>Casa com 3 quartos em Salvador - BA</Title>
			<Description><![CDATA[Excelente casa com 2 banheiros, 2 vagas e 150 m² por R$ 350.000,00. Quintal amplo.]]></Description>
			<Media>
				<Item medium="image">http://img.example.com/a.jpg</Item>
				<Item medium="video">http://video.example.com/tour.mp4</Item>
				<Item medium="image">http://img.example.com/b.jpg</Item>
			</Media>
		</Listing>
		<Listing>
			<Title>Sala comercial para locação</Title>
			<Description>Ótimo ponto.</Description>
		</Listing>
	</Listings>
</ListingDataFeed>`

func TestVivaRealParserHeuristics(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, vivaRealSample)
	if DetectDialect(doc) != DialectVivaReal {
		t.Fatal("sample not detected as vivareal")
	}

	records := NewVivaRealParser().Parse(doc)
	if len(records) != 2 {
		t.Fatalf("Parse returned %d records, want 2", len(records))
	}

	rec := records[0]
	if rec.ID != "VR-77" {
		t.Errorf("ID = %q, want VR-77", rec.ID)
	}
	if rec.Bedrooms != 3 {
		t.Errorf("Bedrooms = %d, want 3", rec.Bedrooms)
	}
	if rec.Bathrooms != 2 {
		t.Errorf("Bathrooms = %d, want 2", rec.Bathrooms)
	}
	if rec.ParkingSpots != 2 {
		t.Errorf("ParkingSpots = %d, want 2", rec.ParkingSpots)
	}
	if rec.AreaM2 != 150 {
		t.Errorf("AreaM2 = %v, want 150", rec.AreaM2)
	}
	if rec.Price != 350000 {
		t.Errorf("Price = %v, want 350000", rec.Price)
	}
	if rec.City != "Salvador" || rec.State != "BA" {
		t.Errorf("location = %q/%q, want Salvador/BA", rec.City, rec.State)
	}
	if rec.PropertyType != entity.PropertyHouse {
		t.Errorf("PropertyType = %q, want house", rec.PropertyType)
	}
	if rec.TransactionType != entity.TransactionSale {
		t.Errorf("TransactionType = %q, want sale", rec.TransactionType)
	}
}

func TestVivaRealParserPhotosOnlyImageItems(t *testing.T) {
	t.Parallel()

	records := NewVivaRealParser().Parse(mustParse(t, vivaRealSample))
	photos := records[0].Photos
	want := []string{"http://img.example.com/a.jpg", "http://img.example.com/b.jpg"}
	if len(photos) != len(want) {
		t.Fatalf("Photos = %v, want %v", photos, want)
	}
	for i := range want {
		if photos[i] != want[i] {
			t.Errorf("Photos[%d] = %q, want %q", i, photos[i], want[i])
		}
	}
}

func TestVivaRealParserDefaultsAndSynthesizedID(t *testing.T) {
	t.Parallel()

	records := NewVivaRealParser().Parse(mustParse(t, vivaRealSample))
	rec := records[1]

	if rec.ID != "vivareal_1" {
		t.Errorf("ID = %q, want vivareal_1", rec.ID)
	}
	// Nothing extractable: every numeric stays zero, record still exists.
	if rec.Bedrooms != 0 || rec.Bathrooms != 0 || rec.ParkingSpots != 0 || rec.AreaM2 != 0 || rec.Price != 0 {
		t.Errorf("numeric fields not zeroed: %+v", rec)
	}
	if rec.PropertyType != entity.PropertyCommercial {
		t.Errorf("PropertyType = %q, want commercial (sala keyword)", rec.PropertyType)
	}
	if rec.TransactionType != entity.TransactionRent {
		t.Errorf("TransactionType = %q, want rent (locação keyword)", rec.TransactionType)
	}
	if len(rec.Photos) != 0 {
		t.Errorf("Photos = %v, want none", rec.Photos)
	}
}

func TestVivaRealParserStripsEmbeddedHTML(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `
		<ListingDataFeed>
			<Listing>
				<Title>Apartamento novo</Title>
				<Description><![CDATA[<p><b>3</b> quartos e <br/>2 banheiros</p>]]></Description>
			</Listing>
		</ListingDataFeed>`)

	records := NewVivaRealParser().Parse(doc)
	if len(records) != 1 {
		t.Fatalf("Parse returned %d records, want 1", len(records))
	}
	if records[0].Bedrooms != 3 {
		t.Errorf("Bedrooms = %d, want 3 (markup between digit and keyword)", records[0].Bedrooms)
	}
	if records[0].Bathrooms != 2 {
		t.Errorf("Bathrooms = %d, want 2", records[0].Bathrooms)
	}
}
