// Package extract is the heuristic layer of the feed pipeline: best-effort
// recovery of structured fields from free listing text. Every extractor is
// explicit about failure so the parse boundary decides what a miss means.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/feed-service/internal/entity"
)

// Extractor recovers one numeric field from free text. The boolean result
// distinguishes "absent" from "present and zero"; callers that want the
// legacy defaulting collapse a miss to 0 themselves.
type Extractor interface {
	Name() string
	Extract(text string) (float64, bool)
}

type regexExtractor struct {
	name    string
	pattern *regexp.Regexp
	parse   func(string) (float64, bool)
}

func (e *regexExtractor) Name() string { return e.name }

func (e *regexExtractor) Extract(text string) (float64, bool) {
	m := e.pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return e.parse(m[1])
}

func newCountExtractor(name, pattern string) Extractor {
	return &regexExtractor{
		name:    name,
		pattern: regexp.MustCompile(pattern),
		parse: func(s string) (float64, bool) {
			n, err := strconv.Atoi(s)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		},
	}
}

// Count and measure extractors over Portuguese listing text.
var (
	Bedrooms  = newCountExtractor("bedrooms", `(?i)(\d+)\s*(?:quartos?|dormit[oó]rios?|su[ií]tes?)`)
	Bathrooms = newCountExtractor("bathrooms", `(?i)(\d+)\s*(?:banheiros?|wc)`)
	Parking   = newCountExtractor("parking", `(?i)(\d+)\s*(?:vagas?|garagem|garagens)`)

	Area = &regexExtractor{
		name:    "area",
		pattern: regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:m²|m2|metros)`),
		parse:   ParseDecimal,
	}

	Price = &regexExtractor{
		name:    "price",
		pattern: regexp.MustCompile(`(?i)R\$\s*([\d.,]+)`),
		parse:   ParseMoney,
	}
)

// Matches "Salvador - BA" or "Rio de Janeiro/RJ": a run of capitalized words
// (connectives allowed) directly before a two-letter state abbreviation.
var cityStatePattern = regexp.MustCompile(`([A-ZÀ-Ú][\p{L}']*(?:\s+(?:de|da|do|das|dos|[A-ZÀ-Ú][\p{L}']*)){0,4})\s*[-/,]\s*([A-Z]{2})\b`)

// CityState recovers a "Cidade - UF" pair from free text.
func CityState(text string) (city, state string, ok bool) {
	m := cityStatePattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}

var (
	houseKeywords      = []string{"casa", "sobrado", "residência", "residencia"}
	landKeywords       = []string{"terreno", "lote"}
	commercialKeywords = []string{"comercial", "loja", "sala"}
	rentKeywords       = []string{"aluguel", "locação", "locacao", "rent"}
)

// PropertyType classifies listing text by keyword; apartment is the default
// when nothing matches.
func PropertyType(text string) entity.PropertyType {
	lower := strings.ToLower(text)
	for _, kw := range houseKeywords {
		if strings.Contains(lower, kw) {
			return entity.PropertyHouse
		}
	}
	for _, kw := range landKeywords {
		if strings.Contains(lower, kw) {
			return entity.PropertyLand
		}
	}
	for _, kw := range commercialKeywords {
		if strings.Contains(lower, kw) {
			return entity.PropertyCommercial
		}
	}
	return entity.PropertyApartment
}

// TransactionType defaults to sale unless the text mentions rental terms.
func TransactionType(text string) entity.TransactionType {
	lower := strings.ToLower(text)
	for _, kw := range rentKeywords {
		if strings.Contains(lower, kw) {
			return entity.TransactionRent
		}
	}
	return entity.TransactionSale
}

// Sanitize strips embedded HTML markup from feed text so the regex
// extractors see plain words. On any parse failure the input is returned
// unchanged.
func Sanitize(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// ParseDecimal parses a number that may use a Brazilian decimal comma,
// e.g. "120,50" or "1.250,00". A trailing sentence period captured by the
// extractors is discarded.
func ParseDecimal(s string) (float64, bool) {
	s = strings.Trim(strings.TrimSpace(s), ".,")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ParseMoney parses a monetary amount. Without a decimal comma, dots
// followed by exactly three digits are thousand separators ("350.000").
func ParseMoney(s string) (float64, bool) {
	s = strings.Trim(strings.TrimSpace(s), ".,")
	if strings.Contains(s, ",") {
		return ParseDecimal(s)
	}
	if i := strings.LastIndex(s, "."); i >= 0 && len(s)-i-1 == 3 {
		s = strings.ReplaceAll(s, ".", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// Number is the tolerant numeric parse used at tag boundaries: plain Go
// float syntax first, then the Brazilian decimal forms.
func Number(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 {
		return v, true
	}
	return ParseDecimal(s)
}
