package parse

import (
	"strconv"

	"github.com/aus-address-cleaner/internal/address"
)

// checkConsistency validates the normalized components against the
// configured postcode and street number rules. Checks whose rules are
// absent from the config are skipped.
func (p *Parser) checkConsistency(c address.Components) []string {
	var flags []string

	if c.Postcode != "" && p.postcodePattern != nil && !p.postcodePattern.MatchString(c.Postcode) {
		flags = append(flags, address.FlagInvalidPostcodeFormat)
	}

	if c.State != "" && c.Postcode != "" {
		if ranges := p.postcodeRanges[c.State]; len(ranges) > 0 {
			postcode := 0
			if isDigits(c.Postcode) {
				postcode, _ = strconv.Atoi(c.Postcode)
			}

			inRange := false
			for _, r := range ranges {
				if postcode >= r[0] && postcode <= r[1] {
					inRange = true
					break
				}
			}
			if !inRange {
				flags = append(flags, address.FlagPostcodeStateMismatch)
			}
		}
	}

	if c.StreetNumber != "" && isDigits(c.StreetNumber) && p.streetNumberMax > 0 {
		num, _ := strconv.Atoi(c.StreetNumber)
		if num < p.streetNumberMin || num > p.streetNumberMax {
			flags = append(flags, address.FlagInvalidStreetNumber)
		}
	}

	return flags
}
