package address

import (
	"fmt"
	"strings"
)

// Components represents the structured components of an Australian address
type Components struct {
	UnitNumber   string `json:"unit_number"`   // "5", "12A"
	StreetNumber string `json:"street_number"` // "12", "10" (lower bound of "10-12")
	StreetName   string `json:"street_name"`   // "High", "O'Brien"
	StreetType   string `json:"street_type"`   // "Street", "Road", or the special forms "PO Box"/"RMB"
	Suburb       string `json:"suburb"`        // "Carlton", "Surry Hills"
	State        string `json:"state"`         // "NSW", "VIC", ...
	Postcode     string `json:"postcode"`      // "2000", always 4 digits when present
}

// ParseResult is the complete outcome of parsing one address. It is built
// once per parse and never mutated after being returned.
type ParseResult struct {
	Components

	// UnparsedComponents holds the original street text verbatim when no
	// number and no name could be extracted from it.
	UnparsedComponents string `json:"unparsed_components"`

	// ParsingNotes records how parsing proceeded, in the order events happened.
	ParsingNotes []string `json:"parsing_notes"`

	// InconsistencyFlags records cross-field contradictions found after
	// normalization.
	InconsistencyFlags []string `json:"inconsistency_flags"`
}

// Special street_type values assigned by the special-form detector.
const (
	StreetTypePOBox = "PO Box"
	StreetTypeRMB   = "RMB"
)

// Parsing notes.
const (
	NoteInternationalAddress = "INTERNATIONAL_ADDRESS"
	NotePOBox                = "PO_BOX"
	NoteRMB                  = "RMB"
	NoteUnableToParse        = "UNABLE_TO_PARSE"
	NoteAmbiguousStreetNum   = "AMBIGUOUS_STREET_NUMBER"
	NoteAmbiguousUnitNum     = "AMBIGUOUS_UNIT_NUMBER"
	NoteConflictingIndicator = "CONFLICTING_INDICATORS"
	NoteMLPredictionUsed     = "ML_PREDICTION_USED"
)

// Inconsistency flags.
const (
	FlagInvalidPostcodeFormat  = "INVALID_POSTCODE_FORMAT"
	FlagPostcodeStateMismatch  = "POSTCODE_STATE_MISMATCH"
	FlagInvalidStreetNumber    = "INVALID_STREET_NUMBER"
	FlagSuburbPostcodeMismatch = "SUBURB_POSTCODE_MISMATCH"
)

// G-NAF matching flags.
const (
	FlagGNAFExactMatch       = "GNAF_EXACT_MATCH"
	FlagGNAFApproximateMatch = "GNAF_APPROXIMATE_MATCH"
	FlagNoGNAFMatch          = "NO_GNAF_MATCH"
	FlagGNAFDisabled         = "GNAF_DISABLED"
	FlagGNAFConnectionError  = "GNAF_CONNECTION_ERROR"
	FlagGNAFQueryError       = "GNAF_QUERY_ERROR"
	FlagInsufficientGNAFData = "INSUFFICIENT_DATA_FOR_GNAF"
)

// Correction tags emitted when a reference match overwrites a field.
const (
	CorrectionSuburb          = "SUBURB_CORRECTED"
	CorrectionState           = "STATE_CORRECTED"
	CorrectionPostcode        = "POSTCODE_CORRECTED"
	CorrectionStreetTypeFuzzy = "STREET_TYPE_FUZZY_MATCH"
	CorrectionSuburbFuzzy     = "SUBURB_FUZZY_MATCH"
)

// String renders the components as a single display line
func (c Components) String() string {
	var parts []string

	if c.IsSpecialForm() {
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%s %s", c.StreetType, c.StreetNumber)))
	} else {
		street := c.StreetNumber
		if c.UnitNumber != "" {
			street = c.UnitNumber + "/" + c.StreetNumber
		}
		street = strings.TrimSpace(fmt.Sprintf("%s %s %s", street, c.StreetName, c.StreetType))
		if street != "" {
			parts = append(parts, street)
		}
	}

	locality := strings.TrimSpace(fmt.Sprintf("%s %s %s", c.Suburb, c.State, c.Postcode))
	if locality != "" {
		parts = append(parts, locality)
	}

	return strings.Join(parts, ", ")
}

// IsSpecialForm reports whether the address is a non-street delivery form
func (c Components) IsSpecialForm() bool {
	return c.StreetType == StreetTypePOBox || c.StreetType == StreetTypeRMB
}

// HasLocality reports whether both suburb and state are present
func (c Components) HasLocality() bool {
	return c.Suburb != "" && c.State != ""
}

// IsEmpty reports whether every component field is blank
func (c Components) IsEmpty() bool {
	return c == Components{}
}

// IsInternational reports whether the parse was short-circuited as a
// non-Australian address.
func (r ParseResult) IsInternational() bool {
	return r.HasNote(NoteInternationalAddress)
}

// HasNote reports whether a parsing note was recorded
func (r ParseResult) HasNote(note string) bool {
	for _, n := range r.ParsingNotes {
		if n == note {
			return true
		}
	}
	return false
}

// HasFlag reports whether an inconsistency flag was recorded
func (r ParseResult) HasFlag(flag string) bool {
	for _, f := range r.InconsistencyFlags {
		if f == flag {
			return true
		}
	}
	return false
}
