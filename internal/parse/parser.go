package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aus-address-cleaner/internal/address"
	"github.com/aus-address-cleaner/internal/config"
)

// Parser normalizes raw Australian address fields into structured
// components. All lookup tables are built once at construction; a Parser
// is read-only afterwards and safe for concurrent use.
type Parser struct {
	// Street type lookups
	streetTypes     map[string]string // upper token -> canonical label
	canonicalLabels []string          // upper labels, fuzzy match candidates
	labelForUpper   map[string]string // upper label -> canonical label
	fuzzyEnabled    bool
	fuzzyMinScore   int

	// Locality lookups
	states      map[string]string // upper code or alias -> code
	validStates map[string]bool
	suburbFixes map[string]string // upper misspelling -> corrected form

	// Token parsing rules
	unitPrefixes     map[string]bool
	separatorChars   string
	poBoxPrefixes    []string
	rmbPrefixes      []string
	rangeSeparators  []string
	stripAlphaSuffix bool

	// International detection
	intlEnabled      bool
	countryTokens    []string
	requireFourDigit bool

	// Consistency rules
	postcodePattern *regexp.Regexp // nil means no format check
	postcodeRanges  map[string][][]int
	streetNumberMin int
	streetNumberMax int
}

// New builds a Parser from configuration. The configuration must already
// have passed Validate; New does not re-check it.
func New(cfg *config.Config) *Parser {
	p := &Parser{
		streetTypes:      make(map[string]string),
		labelForUpper:    make(map[string]string),
		states:           make(map[string]string),
		validStates:      make(map[string]bool),
		suburbFixes:      make(map[string]string),
		unitPrefixes:     make(map[string]bool),
		fuzzyEnabled:     cfg.StreetTypes.FuzzyMatching.Enabled,
		fuzzyMinScore:    cfg.StreetTypes.FuzzyMatching.MinScore,
		rangeSeparators:  cfg.Parsing.StreetNumberRangeSeparators,
		stripAlphaSuffix: cfg.Parsing.StripStreetNumberAlphaSuffix,
		intlEnabled:      cfg.International.Enabled,
		requireFourDigit: cfg.International.RequireFourDigitPostcode,
		postcodeRanges:   cfg.Validation.Postcode.Ranges,
		streetNumberMin:  cfg.Validation.StreetNumber.MinValue,
		streetNumberMax:  cfg.Validation.StreetNumber.MaxValue,
	}

	// Canonical street types, keyed by every accepted spelling. Keys are
	// walked in sorted order so the fuzzy candidate list is deterministic.
	keys := make([]string, 0, len(cfg.StreetTypes.Canonical))
	for key := range cfg.StreetTypes.Canonical {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := cfg.StreetTypes.Canonical[key]
		upperLabel := strings.ToUpper(entry.Label)

		p.canonicalLabels = append(p.canonicalLabels, upperLabel)
		p.labelForUpper[upperLabel] = entry.Label
		p.streetTypes[upperLabel] = entry.Label
		p.streetTypes[strings.ToUpper(key)] = entry.Label

		for _, alias := range entry.Aliases {
			p.streetTypes[strings.ToUpper(alias)] = entry.Label
		}
	}

	for misspelling, key := range cfg.StreetTypes.Misspellings {
		if entry, ok := cfg.StreetTypes.Canonical[key]; ok {
			p.streetTypes[strings.ToUpper(misspelling)] = entry.Label
		}
	}

	// State codes and aliases
	for _, state := range cfg.Localities.States.Valid {
		p.states[strings.ToUpper(state)] = state
		p.validStates[state] = true
	}
	for alias, state := range cfg.Localities.States.Aliases {
		p.states[strings.ToUpper(alias)] = state
	}

	for misspelling, corrected := range cfg.Localities.SuburbMisspellings {
		p.suburbFixes[strings.ToUpper(misspelling)] = corrected
	}

	for _, prefix := range cfg.Parsing.UnitPrefixes {
		p.unitPrefixes[strings.ToUpper(prefix)] = true
	}
	for _, sep := range cfg.Parsing.UnitStreetSeparators {
		p.separatorChars += sep
	}
	for _, prefix := range cfg.Parsing.POBoxPrefixes {
		p.poBoxPrefixes = append(p.poBoxPrefixes, strings.ToUpper(prefix))
	}
	for _, prefix := range cfg.Parsing.RMBPrefixes {
		p.rmbPrefixes = append(p.rmbPrefixes, strings.ToUpper(prefix))
	}

	for _, country := range cfg.International.CountryTokens {
		p.countryTokens = append(p.countryTokens, strings.ToUpper(country))
	}

	if pattern := cfg.Validation.Postcode.Pattern; pattern != "" {
		if re, err := regexp.Compile(pattern); err == nil {
			p.postcodePattern = re
		}
	}

	return p
}

// ParseAddress parses raw address fields into normalized components.
// It never fails; malformed input degrades to parsing notes and
// inconsistency flags on the result.
func (p *Parser) ParseAddress(streetAddress, suburb, state, postcode string) address.ParseResult {
	var result address.ParseResult

	street := CleanText(streetAddress)
	suburb = CleanText(suburb)
	state = CleanText(state)
	postcode = CleanText(postcode)

	// International addresses short-circuit with empty components.
	if p.isInternational(street, suburb, state, postcode) {
		result.ParsingNotes = append(result.ParsingNotes, address.NoteInternationalAddress)
		return result
	}

	if p.isPOBox(street) {
		return p.parsePOBox(street, suburb, state, postcode)
	}
	if p.isRMB(street) {
		return p.parseRMB(street, suburb, state, postcode)
	}

	parts := p.parseStreet(street)
	result.UnitNumber = parts.unitNumber
	result.StreetNumber = parts.streetNumber
	result.StreetName = parts.streetName
	result.StreetType = parts.streetType
	result.UnparsedComponents = parts.unparsed
	result.ParsingNotes = append(result.ParsingNotes, parts.notes...)

	result.Suburb = p.normalizeSuburb(suburb)
	result.State = p.normalizeState(state)
	result.Postcode = p.normalizePostcode(postcode)

	result.InconsistencyFlags = append(result.InconsistencyFlags, p.checkConsistency(result.Components)...)

	return result
}
