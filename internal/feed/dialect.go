package feed

// Dialect is the closed set of feed schema variants the pipeline accepts.
// Adding a dialect means adding a constant here, a case in DetectDialect,
// and a parser; nothing else branches on sniffed tag names.
type Dialect int

const (
	// DialectGeneric covers the in-house export schema and the legacy
	// lowercase `imovel` feeds, both parsed through the alias table.
	DialectGeneric Dialect = iota
	// DialectVivaReal covers VivaReal/VRSync ListingDataFeed documents.
	DialectVivaReal
)

func (d Dialect) String() string {
	switch d {
	case DialectVivaReal:
		return "vivareal"
	default:
		return "generic"
	}
}

// DetectDialect sniffs the parsed document. The presence of a
// ListingDataFeed element anywhere marks the VivaReal dialect; everything
// else falls back to the generic parser.
func DetectDialect(doc *Element) Dialect {
	if doc.Find("ListingDataFeed") != nil {
		return DialectVivaReal
	}
	return DialectGeneric
}

// ParserFor returns the parser implementation for a detected dialect.
func ParserFor(d Dialect) Parser {
	if d == DialectVivaReal {
		return NewVivaRealParser()
	}
	return NewGenericParser()
}
