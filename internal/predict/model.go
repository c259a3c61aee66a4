// Package predict provides an optional trained component predictor that
// can split a raw street line into address components before the rule
// parser runs. It is disabled unless a model has been trained or loaded.
package predict

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aus-address-cleaner/internal/address"
	"github.com/aus-address-cleaner/internal/config"
)

// Example is one labeled training row: the raw street line alongside
// the clean component values it should decompose into.
type Example struct {
	RawStreetAddress string
	UnitNumber       string
	StreetNumber     string
	StreetName       string
	StreetType       string
	Suburb           string
	State            string
	Postcode         string
}

// FieldPrediction is one predicted component with its confidence.
type FieldPrediction struct {
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Prediction is the full output of Predict for one street line.
type Prediction struct {
	Components   address.Components `json:"components"`
	MLConfidence float64            `json:"ml_confidence"`
	Predictions  []FieldPrediction  `json:"ml_predictions"`
}

// Model wraps the token classifier together with the thresholds that
// decide whether its predictions are trusted over the rule parser.
type Model struct {
	enabled         bool
	minConfidence   float64
	fallbackToRules bool
	modelPath       string
	clf             *classifier
}

// New builds a Model from configuration. modelPath overrides the
// configured path when non-empty. A model file that exists is loaded
// eagerly; a load failure disables prediction rather than failing the
// caller.
func New(cfg *config.Config, modelPath string) *Model {
	m := &Model{
		enabled:         cfg.MLModel.Enabled,
		minConfidence:   cfg.MLModel.MinConfidence,
		fallbackToRules: cfg.MLModel.FallbackToRules,
		modelPath:       cfg.MLModel.ModelPath,
	}
	if modelPath != "" {
		m.modelPath = modelPath
	}

	if m.enabled && m.modelPath != "" {
		if _, err := os.Stat(m.modelPath); err == nil {
			if err := m.Load(m.modelPath); err != nil {
				log.Printf("failed to load prediction model from %s: %v", m.modelPath, err)
				m.enabled = false
			}
		}
	}

	return m
}

// IsEnabled reports whether Predict can produce results.
func (m *Model) IsEnabled() bool {
	return m.enabled && (m.clf != nil || nativeParserAvailable)
}

// Train fits a new classifier from labeled examples and enables the
// model on success. Tokens in the raw street line are labeled by
// containment in the clean component values; tokens matching nothing
// are kept as OTHER so the classifier learns filler words too.
func (m *Model) Train(examples []Example) error {
	if len(examples) == 0 {
		return fmt.Errorf("no training examples provided")
	}

	clf := newClassifier()
	for _, ex := range examples {
		for _, token := range strings.Fields(ex.RawStreetAddress) {
			clf.observe(token, assignLabel(token, ex))
		}
	}
	if clf.Samples == 0 {
		return fmt.Errorf("training examples contained no tokens")
	}
	clf.finalize()

	m.clf = clf
	m.enabled = true

	return nil
}

// assignLabel maps a raw token to the first component whose clean
// value contains it.
func assignLabel(token string, ex Example) string {
	upper := strings.ToUpper(token)

	candidates := []struct {
		label string
		value string
	}{
		{LabelUnitNumber, ex.UnitNumber},
		{LabelStreetNumber, ex.StreetNumber},
		{LabelStreetName, ex.StreetName},
		{LabelStreetType, ex.StreetType},
		{LabelSuburb, ex.Suburb},
		{LabelState, ex.State},
		{LabelPostcode, ex.Postcode},
	}
	for _, c := range candidates {
		if c.value != "" && strings.Contains(strings.ToUpper(c.value), upper) {
			return c.label
		}
	}

	return LabelOther
}

// Predict decomposes a street line into components. It returns nil
// when the model is disabled, untrained, or the line has no tokens.
func (m *Model) Predict(streetAddress string) *Prediction {
	if !m.IsEnabled() {
		return nil
	}

	if p := nativePredict(streetAddress); p != nil {
		return p
	}
	if m.clf == nil {
		return nil
	}

	tokens := strings.Fields(streetAddress)
	if len(tokens) == 0 {
		return nil
	}

	p := &Prediction{}

	// Consecutive tokens sharing a label form one component value.
	// A later run with the same label overwrites the earlier one.
	var (
		groupLabel  string
		groupTokens []string
		groupConfs  []float64
		confTotal   float64
	)
	flush := func() {
		if groupLabel == "" || groupLabel == LabelOther {
			return
		}
		p.setComponent(groupLabel, strings.Join(groupTokens, " "), mean(groupConfs))
	}

	for _, token := range tokens {
		label, conf := m.clf.classify(token)
		confTotal += conf

		if label != groupLabel {
			flush()
			groupLabel = label
			groupTokens = groupTokens[:0]
			groupConfs = groupConfs[:0]
		}
		groupTokens = append(groupTokens, token)
		groupConfs = append(groupConfs, conf)
	}
	flush()

	p.MLConfidence = confTotal / float64(len(tokens))

	return p
}

// ShouldUse decides whether a prediction replaces the rule parse.
func (m *Model) ShouldUse(p *Prediction) bool {
	if p == nil {
		return false
	}
	if p.MLConfidence < m.minConfidence {
		return !m.fallbackToRules
	}
	return true
}

// setComponent stores one predicted component on the result.
func (p *Prediction) setComponent(label, value string, confidence float64) {
	var field string
	switch label {
	case LabelUnitNumber:
		field = "unit_number"
		p.Components.UnitNumber = value
	case LabelStreetNumber:
		field = "street_number"
		p.Components.StreetNumber = value
	case LabelStreetName:
		field = "street_name"
		p.Components.StreetName = value
	case LabelStreetType:
		field = "street_type"
		p.Components.StreetType = value
	case LabelSuburb:
		field = "suburb"
		p.Components.Suburb = value
	case LabelState:
		field = "state"
		p.Components.State = value
	case LabelPostcode:
		field = "postcode"
		p.Components.Postcode = value
	default:
		return
	}

	p.Predictions = append(p.Predictions, FieldPrediction{
		Field:      field,
		Value:      value,
		Confidence: confidence,
	})
}

// Save writes the trained classifier to path as JSON, creating parent
// directories as needed.
func (m *Model) Save(path string) error {
	if m.clf == nil {
		return fmt.Errorf("no trained model to save")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(m.clf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}

	return nil
}

// Load reads a previously saved classifier from path.
func (m *Model) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model file: %w", err)
	}

	clf := newClassifier()
	if err := json.Unmarshal(data, clf); err != nil {
		return fmt.Errorf("failed to decode model file: %w", err)
	}

	m.clf = clf

	return nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
