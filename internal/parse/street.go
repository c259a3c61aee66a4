package parse

import (
	"strings"

	"github.com/aus-address-cleaner/internal/address"
	"github.com/aus-address-cleaner/internal/similarity"
)

// streetParts is the raw outcome of tokenizing one street string.
type streetParts struct {
	unitNumber   string
	streetNumber string
	streetName   string
	streetType   string
	unparsed     string
	notes        []string
}

// parseStreet extracts unit number, street number, street name, and
// street type from a cleaned street string.
func (p *Parser) parseStreet(street string) streetParts {
	var parts streetParts

	if street == "" {
		return parts
	}

	tokens := strings.Fields(street)

	// Street type usually sits at the end.
	streetType, typeIndex := p.extractStreetType(tokens)
	parts.streetType = streetType

	if typeIndex >= 0 {
		tokens = tokens[:typeIndex]
	}

	unitNumber, streetNumber, numberEnd := p.extractNumbers(tokens)
	parts.unitNumber = unitNumber
	parts.streetNumber = streetNumber

	if numberEnd >= 0 && numberEnd < len(tokens) {
		parts.streetName = normalizeStreetName(strings.Join(tokens[numberEnd+1:], " "))
	} else if numberEnd < 0 && len(tokens) > 0 {
		// No number found, everything left is street name
		parts.streetName = normalizeStreetName(strings.Join(tokens, " "))
	}

	if parts.streetNumber == "" && parts.streetName == "" {
		parts.unparsed = street
		parts.notes = append(parts.notes, address.NoteUnableToParse)
	}

	return parts
}

// extractStreetType finds the street type token, scanning from the end.
// The whole token list is checked for exact matches; only the last two
// positions are tried fuzzily, to avoid false positives on mid-string
// words that happen to resemble a street type.
func (p *Parser) extractStreetType(tokens []string) (string, int) {
	for i := len(tokens) - 1; i >= 0; i-- {
		if label, ok := p.streetTypes[tokens[i]]; ok {
			return label, i
		}
	}

	if p.fuzzyEnabled {
		stop := len(tokens) - 3
		if stop < -1 {
			stop = -1
		}
		for i := len(tokens) - 1; i > stop; i-- {
			match, score := similarity.BestMatch(tokens[i], p.canonicalLabels)
			if match != "" && score >= p.fuzzyMinScore {
				return p.labelForUpper[match], i
			}
		}
	}

	return "", -1
}

// extractNumbers scans tokens left to right for unit and street numbers.
// Returns the numbers and the index of the last token consumed, or -1
// when no number was found.
func (p *Parser) extractNumbers(tokens []string) (string, string, int) {
	unitNumber := ""
	streetNumber := ""
	endIndex := -1

	i := 0
	for i < len(tokens) {
		token := tokens[i]

		// A unit prefix claims the following token, unless that token
		// carries a unit/street separator ("UNIT 5/12") in which case
		// the separator rule below gets it.
		if p.unitPrefixes[token] {
			if i+1 < len(tokens) && !p.containsSeparator(tokens[i+1]) {
				unitNumber = p.extractNumeric(tokens[i+1])
				endIndex = i + 1
				i += 2
				continue
			}
		}

		// Combined unit/street token, e.g. "5/12"
		if p.containsSeparator(token) {
			if parts := p.splitOnSeparators(token); len(parts) == 2 {
				unitNumber = p.extractNumeric(parts[0])
				streetNumber = p.extractNumeric(parts[1])
				endIndex = i
				break
			}
		}

		if numericToken.MatchString(token) {
			if i+1 < len(tokens) && numericToken.MatchString(tokens[i+1]) {
				// Two numbers in a row: unit then street
				unitNumber = p.extractNumeric(token)
				streetNumber = p.extractNumeric(tokens[i+1])
				endIndex = i + 1
			} else {
				streetNumber = p.extractNumeric(token)
				endIndex = i
			}
			break
		}

		i++
	}

	if streetNumber != "" {
		streetNumber = p.handleRange(streetNumber)
	}

	return unitNumber, streetNumber, endIndex
}

// extractNumeric reduces a token to its leading digits when the alpha
// suffix stripping policy is on; otherwise the token passes through.
func (p *Parser) extractNumeric(token string) string {
	if p.stripAlphaSuffix {
		if match := leadingDigit.FindString(token); match != "" {
			return match
		}
	}

	return token
}

// handleRange reduces a street number range to its lower bound,
// "10-12" -> "10".
func (p *Parser) handleRange(number string) string {
	for _, sep := range p.rangeSeparators {
		if strings.Contains(number, sep) {
			parts := strings.Split(number, sep)
			if len(parts) >= 2 && isDigits(parts[0]) {
				return parts[0]
			}
		}
	}

	return number
}

func (p *Parser) containsSeparator(token string) bool {
	return strings.ContainsAny(token, p.separatorChars)
}

// splitOnSeparators splits a token on every separator character,
// keeping empty parts so "5/" still yields two parts.
func (p *Parser) splitOnSeparators(token string) []string {
	var parts []string
	var current strings.Builder

	for _, r := range token {
		if strings.ContainsRune(p.separatorChars, r) {
			parts = append(parts, current.String())
			current.Reset()
		} else {
			current.WriteRune(r)
		}
	}

	return append(parts, current.String())
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
