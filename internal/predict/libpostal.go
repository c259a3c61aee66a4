//go:build libpostal

package predict

import (
	"strings"

	postal "github.com/openvenues/gopostal/parser"
)

const nativeParserAvailable = true

// libpostalConfidence is assigned to every component because libpostal
// does not expose per-label probabilities.
const libpostalConfidence = 0.85

var libpostalLabels = map[string]string{
	"unit":          LabelUnitNumber,
	"house_number":  LabelStreetNumber,
	"road":          LabelStreetName,
	"suburb":        LabelSuburb,
	"city":          LabelSuburb,
	"city_district": LabelSuburb,
	"state":         LabelState,
	"postcode":      LabelPostcode,
}

// nativePredict parses the street line with libpostal. It returns nil
// when libpostal finds nothing usable, letting the token model run.
func nativePredict(streetAddress string) *Prediction {
	parsed := postal.ParseAddress(streetAddress)
	if len(parsed) == 0 {
		return nil
	}

	p := &Prediction{}
	for _, component := range parsed {
		label, ok := libpostalLabels[component.Label]
		if !ok {
			continue
		}
		p.setComponent(label, strings.ToUpper(component.Value), libpostalConfidence)
	}
	if len(p.Predictions) == 0 {
		return nil
	}

	p.MLConfidence = libpostalConfidence

	return p
}
