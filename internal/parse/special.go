package parse

import (
	"strings"

	"github.com/aus-address-cleaner/internal/address"
)

// isInternational reports whether the cleaned fields look like a
// non-Australian address: a country token anywhere in the combined
// fields, a malformed postcode when the strict policy is on, or a
// state that matches neither a valid code nor a known alias.
func (p *Parser) isInternational(street, suburb, state, postcode string) bool {
	if !p.intlEnabled {
		return false
	}

	full := street + " " + suburb + " " + state + " " + postcode
	for _, country := range p.countryTokens {
		if strings.Contains(full, country) {
			return true
		}
	}

	if p.requireFourDigit && postcode != "" && !fourDigits.MatchString(postcode) {
		return true
	}

	if state != "" && !p.validStates[state] {
		if _, ok := p.states[state]; !ok {
			return true
		}
	}

	return false
}

func (p *Parser) isPOBox(street string) bool {
	for _, prefix := range p.poBoxPrefixes {
		if strings.HasPrefix(street, prefix) {
			return true
		}
	}
	return false
}

func (p *Parser) isRMB(street string) bool {
	for _, prefix := range p.rmbPrefixes {
		if strings.HasPrefix(street, prefix) {
			return true
		}
	}
	return false
}

// parsePOBox handles postal box addresses. The box number becomes the
// street number and the locality is normalized as usual.
func (p *Parser) parsePOBox(street, suburb, state, postcode string) address.ParseResult {
	result := address.ParseResult{
		Components: address.Components{
			StreetType: address.StreetTypePOBox,
			Suburb:     p.normalizeSuburb(suburb),
			State:      p.normalizeState(state),
			Postcode:   p.normalizePostcode(postcode),
		},
		ParsingNotes: []string{address.NotePOBox},
	}

	if match := boxNumber.FindStringSubmatch(street); match != nil {
		result.StreetNumber = match[1]
	}

	result.InconsistencyFlags = append(result.InconsistencyFlags, p.checkConsistency(result.Components)...)

	return result
}

// parseRMB handles roadside mail bag addresses, symmetric with parsePOBox.
func (p *Parser) parseRMB(street, suburb, state, postcode string) address.ParseResult {
	result := address.ParseResult{
		Components: address.Components{
			StreetType: address.StreetTypeRMB,
			Suburb:     p.normalizeSuburb(suburb),
			State:      p.normalizeState(state),
			Postcode:   p.normalizePostcode(postcode),
		},
		ParsingNotes: []string{address.NoteRMB},
	}

	if match := rmbNumber.FindStringSubmatch(street); match != nil {
		result.StreetNumber = match[1]
	}

	result.InconsistencyFlags = append(result.InconsistencyFlags, p.checkConsistency(result.Components)...)

	return result
}
