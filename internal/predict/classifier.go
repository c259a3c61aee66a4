package predict

import (
	"crypto/md5"
	"encoding/binary"
	"math"
	"strings"
)

// Token labels assigned during training. Order matters: training
// resolves a token that appears in several components to the first
// label here, and classification breaks ties the same way.
const (
	LabelUnitNumber   = "UNIT_NUMBER"
	LabelStreetNumber = "STREET_NUMBER"
	LabelStreetName   = "STREET_NAME"
	LabelStreetType   = "STREET_TYPE"
	LabelSuburb       = "SUBURB"
	LabelState        = "STATE"
	LabelPostcode     = "POSTCODE"
	LabelOther        = "OTHER"
)

var labelOrder = []string{
	LabelUnitNumber,
	LabelStreetNumber,
	LabelStreetName,
	LabelStreetType,
	LabelSuburb,
	LabelState,
	LabelPostcode,
	LabelOther,
}

// vectorDim sizes the hashed character profile. The last two slots
// hold shape features rather than hashed trigrams.
const vectorDim = 64

// classifier labels single tokens. Tokens seen during training are
// looked up directly; unseen tokens fall back to a character-profile
// comparison against per-label centroids.
type classifier struct {
	TokenLabels map[string]map[string]int `json:"token_labels"`
	Centroids   map[string][]float64      `json:"centroids"`
	Samples     int                       `json:"samples"`
}

func newClassifier() *classifier {
	return &classifier{
		TokenLabels: make(map[string]map[string]int),
		Centroids:   make(map[string][]float64),
	}
}

// observe records one labeled training token.
func (c *classifier) observe(token, label string) {
	upper := strings.ToUpper(token)

	counts, ok := c.TokenLabels[upper]
	if !ok {
		counts = make(map[string]int)
		c.TokenLabels[upper] = counts
	}
	counts[label]++

	centroid, ok := c.Centroids[label]
	if !ok {
		centroid = make([]float64, vectorDim)
		c.Centroids[label] = centroid
	}
	for i, v := range tokenVector(upper) {
		centroid[i] += v
	}

	c.Samples++
}

// finalize normalizes the accumulated centroids to unit length.
func (c *classifier) finalize() {
	for _, centroid := range c.Centroids {
		normalize(centroid)
	}
}

// classify returns the most likely label for a token and the
// probability assigned to it.
func (c *classifier) classify(token string) (string, float64) {
	upper := strings.ToUpper(token)

	if counts, ok := c.TokenLabels[upper]; ok {
		total := 0
		for _, n := range counts {
			total += n
		}

		best := LabelOther
		bestCount := 0
		for _, label := range labelOrder {
			if counts[label] > bestCount {
				bestCount = counts[label]
				best = label
			}
		}

		return best, float64(bestCount) / float64(total)
	}

	return c.classifyByProfile(upper)
}

// classifyByProfile scores an unseen token against the label centroids.
func (c *classifier) classifyByProfile(upper string) (string, float64) {
	v := tokenVector(upper)

	total := 0.0
	scores := make(map[string]float64, len(c.Centroids))
	for label, centroid := range c.Centroids {
		score := dot(v, centroid)
		scores[label] = score
		total += score
	}

	if total == 0 {
		return LabelOther, 1.0 / float64(len(labelOrder))
	}

	best := LabelOther
	bestScore := 0.0
	for _, label := range labelOrder {
		if scores[label] > bestScore {
			bestScore = scores[label]
			best = label
		}
	}

	return best, bestScore / total
}

// tokenVector builds a unit-length character profile: hashed trigrams
// of the space-padded token, plus digit-fraction and length features.
func tokenVector(upper string) []float64 {
	vector := make([]float64, vectorDim)

	padded := " " + upper + " "
	runes := []rune(padded)
	for i := 0; i+3 <= len(runes); i++ {
		gram := string(runes[i : i+3])
		hash := md5.Sum([]byte(gram))
		idx := binary.BigEndian.Uint32(hash[:4]) % (vectorDim - 2)
		vector[idx]++
	}

	digits := 0
	for _, r := range upper {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if len(upper) > 0 {
		vector[vectorDim-2] = float64(digits) / float64(len(upper))
		vector[vectorDim-1] = float64(len(upper)) / 10.0
	}

	normalize(vector)

	return vector
}

func normalize(v []float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)

	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
