package parse

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// Australian surname prefixes whose following letter stays capital.
	mcPrefix     = regexp.MustCompile(`\bMc([a-z])`)
	macPrefix    = regexp.MustCompile(`\bMac([a-z])`)
	oApostrophe  = regexp.MustCompile(`\bO'([a-z])`)
	nonDigit     = regexp.MustCompile(`\D`)
	fourDigits   = regexp.MustCompile(`^\d{4}$`)
	numericToken = regexp.MustCompile(`^\d+[A-Z]?$`)
	leadingDigit = regexp.MustCompile(`^(\d+)`)
	boxNumber    = regexp.MustCompile(`BOX\s+(\d+[A-Z]?)`)
	rmbNumber    = regexp.MustCompile(`RMB\s+(\d+[A-Z]?)`)
)

// CleanText uppercases, trims, and collapses internal whitespace runs
// to single spaces. Empty input stays empty.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToUpper(strings.TrimSpace(text))

	return whitespaceRun.ReplaceAllString(text, " ")
}

// titleCase capitalizes the first letter of every alphabetic run and
// lowercases the rest, so "O'BRIEN" becomes "O'Brien" and "10A" stays
// "10A".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}

	return b.String()
}

// normalizeStreetName title-cases a street name and restores the inner
// capital in Mc/Mac/O' surnames, e.g. "MCDONALD" -> "McDonald".
func normalizeStreetName(name string) string {
	if name == "" {
		return ""
	}

	name = titleCase(name)

	name = mcPrefix.ReplaceAllStringFunc(name, capitalizeLast)
	name = macPrefix.ReplaceAllStringFunc(name, capitalizeLast)
	name = oApostrophe.ReplaceAllStringFunc(name, capitalizeLast)

	return name
}

func capitalizeLast(match string) string {
	return match[:len(match)-1] + strings.ToUpper(match[len(match)-1:])
}
