package parse

import "strings"

// normalizeSuburb corrects known misspellings and title-cases the result.
func (p *Parser) normalizeSuburb(suburb string) string {
	if suburb == "" {
		return ""
	}

	if corrected, ok := p.suburbFixes[suburb]; ok {
		return titleCase(corrected)
	}

	return titleCase(suburb)
}

// normalizeState maps state names and aliases to their abbreviation.
// Unknown values pass through unchanged.
func (p *Parser) normalizeState(state string) string {
	if state == "" {
		return ""
	}

	if abbrev, ok := p.states[state]; ok {
		return abbrev
	}

	return state
}

// normalizePostcode strips non-digits and pads or truncates to four
// digits. "2000 " -> "2000", "999" -> "0999", "20001" -> "2000".
func (p *Parser) normalizePostcode(postcode string) string {
	if postcode == "" {
		return ""
	}

	digits := nonDigit.ReplaceAllString(postcode, "")

	switch {
	case len(digits) == 4:
		return digits
	case len(digits) < 4:
		return strings.Repeat("0", 4-len(digits)) + digits
	default:
		return digits[:4]
	}
}
