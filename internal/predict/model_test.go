package predict

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aus-address-cleaner/internal/config"
)

func trainingExamples() []Example {
	return []Example{
		{RawStreetAddress: "12 SMITH STREET", StreetNumber: "12", StreetName: "Smith", StreetType: "Street"},
		{RawStreetAddress: "34 JONES ROAD", StreetNumber: "34", StreetName: "Jones", StreetType: "Road"},
		{RawStreetAddress: "7 HIGH STREET", StreetNumber: "7", StreetName: "High", StreetType: "Street"},
		{RawStreetAddress: "156 PARKER AVENUE", StreetNumber: "156", StreetName: "Parker", StreetType: "Avenue"},
	}
}

func trainedModel(t *testing.T) *Model {
	t.Helper()

	cfg := config.Default()
	cfg.MLModel.Enabled = true

	m := New(cfg, "")
	if err := m.Train(trainingExamples()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return m
}

func TestTrainAndPredict(t *testing.T) {
	m := trainedModel(t)

	if !m.IsEnabled() {
		t.Fatal("IsEnabled() = false after successful Train()")
	}

	p := m.Predict("12 SMITH STREET")
	if p == nil {
		t.Fatal("Predict() = nil for an address seen in training")
	}

	if p.Components.StreetNumber != "12" {
		t.Errorf("StreetNumber = %q, want %q", p.Components.StreetNumber, "12")
	}
	if p.Components.StreetName != "SMITH" {
		t.Errorf("StreetName = %q, want %q", p.Components.StreetName, "SMITH")
	}
	if p.Components.StreetType != "STREET" {
		t.Errorf("StreetType = %q, want %q", p.Components.StreetType, "STREET")
	}

	// Every token was seen unambiguously, so each carries probability 1.
	if math.Abs(p.MLConfidence-1.0) > 1e-9 {
		t.Errorf("MLConfidence = %v, want 1.0", p.MLConfidence)
	}
	if len(p.Predictions) != 3 {
		t.Errorf("len(Predictions) = %d, want 3", len(p.Predictions))
	}
}

func TestPredictGroupsConsecutiveTokens(t *testing.T) {
	cfg := config.Default()
	cfg.MLModel.Enabled = true

	m := New(cfg, "")
	err := m.Train([]Example{
		{RawStreetAddress: "10 ST KILDA ROAD", StreetNumber: "10", StreetName: "St Kilda", StreetType: "Road"},
	})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	p := m.Predict("10 ST KILDA ROAD")
	if p == nil {
		t.Fatal("Predict() = nil")
	}

	if p.Components.StreetName != "ST KILDA" {
		t.Errorf("StreetName = %q, want %q", p.Components.StreetName, "ST KILDA")
	}
	if p.Components.StreetNumber != "10" {
		t.Errorf("StreetNumber = %q, want %q", p.Components.StreetNumber, "10")
	}
	if p.Components.StreetType != "ROAD" {
		t.Errorf("StreetType = %q, want %q", p.Components.StreetType, "ROAD")
	}
}

func TestPredictLaterGroupOverwrites(t *testing.T) {
	cfg := config.Default()
	cfg.MLModel.Enabled = true

	m := New(cfg, "")
	err := m.Train([]Example{
		{RawStreetAddress: "5 MAIN STREET EAST", StreetNumber: "5", StreetName: "Main East", StreetType: "Street"},
	})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	// MAIN and EAST are both street-name tokens but are split by the
	// street type, so the second run replaces the first.
	p := m.Predict("MAIN STREET EAST")
	if p == nil {
		t.Fatal("Predict() = nil")
	}
	if p.Components.StreetName != "EAST" {
		t.Errorf("StreetName = %q, want %q", p.Components.StreetName, "EAST")
	}
	if len(p.Predictions) != 3 {
		t.Errorf("len(Predictions) = %d, want 3", len(p.Predictions))
	}
}

func TestPredictUnseenNumericToken(t *testing.T) {
	m := trainedModel(t)

	p := m.Predict("99 SMITH STREET")
	if p == nil {
		t.Fatal("Predict() = nil")
	}

	// 99 never appeared in training; the character profile should
	// still group it with the numeric tokens.
	if p.Components.StreetNumber != "99" {
		t.Errorf("StreetNumber = %q, want %q", p.Components.StreetNumber, "99")
	}
	if p.MLConfidence <= 0 || p.MLConfidence > 1 {
		t.Errorf("MLConfidence = %v, want in (0, 1]", p.MLConfidence)
	}
}

func TestPredictDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.MLModel.Enabled = false

	m := New(cfg, "")
	if m.IsEnabled() {
		t.Error("IsEnabled() = true with prediction disabled")
	}
	if p := m.Predict("12 SMITH STREET"); p != nil {
		t.Errorf("Predict() = %+v, want nil when disabled", p)
	}
}

func TestPredictUntrained(t *testing.T) {
	cfg := config.Default()
	cfg.MLModel.Enabled = true

	m := New(cfg, "")
	if p := m.Predict("12 SMITH STREET"); p != nil {
		t.Errorf("Predict() = %+v, want nil without a trained model", p)
	}
}

func TestPredictEmptyStreet(t *testing.T) {
	m := trainedModel(t)

	for _, street := range []string{"", "   "} {
		if p := m.Predict(street); p != nil {
			t.Errorf("Predict(%q) = %+v, want nil", street, p)
		}
	}
}

func TestTrainErrors(t *testing.T) {
	cfg := config.Default()
	cfg.MLModel.Enabled = true

	m := New(cfg, "")

	if err := m.Train(nil); err == nil {
		t.Error("Train(nil) error = nil, want error")
	}
	if err := m.Train([]Example{{RawStreetAddress: "   "}}); err == nil {
		t.Error("Train() error = nil for examples without tokens, want error")
	}
	if m.IsEnabled() {
		t.Error("IsEnabled() = true after failed training")
	}
}

func TestShouldUse(t *testing.T) {
	tests := []struct {
		name            string
		prediction      *Prediction
		minConfidence   float64
		fallbackToRules bool
		want            bool
	}{
		{
			name:            "nil prediction",
			prediction:      nil,
			minConfidence:   0.7,
			fallbackToRules: true,
			want:            false,
		},
		{
			name:            "confident prediction",
			prediction:      &Prediction{MLConfidence: 0.92},
			minConfidence:   0.7,
			fallbackToRules: true,
			want:            true,
		},
		{
			name:            "low confidence with rule fallback",
			prediction:      &Prediction{MLConfidence: 0.5},
			minConfidence:   0.7,
			fallbackToRules: true,
			want:            false,
		},
		{
			name:            "low confidence without rule fallback",
			prediction:      &Prediction{MLConfidence: 0.5},
			minConfidence:   0.7,
			fallbackToRules: false,
			want:            true,
		},
		{
			name:            "exactly at threshold",
			prediction:      &Prediction{MLConfidence: 0.7},
			minConfidence:   0.7,
			fallbackToRules: true,
			want:            true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Model{
				enabled:         true,
				minConfidence:   tt.minConfidence,
				fallbackToRules: tt.fallbackToRules,
			}
			if got := m.ShouldUse(tt.prediction); got != tt.want {
				t.Errorf("ShouldUse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	m := trainedModel(t)

	path := filepath.Join(t.TempDir(), "models", "predictor.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	cfg := config.Default()
	cfg.MLModel.Enabled = true

	loaded := New(cfg, path)
	if !loaded.IsEnabled() {
		t.Fatal("IsEnabled() = false after loading a saved model")
	}

	want := m.Predict("12 SMITH STREET")
	got := loaded.Predict("12 SMITH STREET")
	if got == nil || want == nil {
		t.Fatal("Predict() = nil after round trip")
	}
	if got.Components != want.Components {
		t.Errorf("Components after load = %+v, want %+v", got.Components, want.Components)
	}
	if math.Abs(got.MLConfidence-want.MLConfidence) > 1e-9 {
		t.Errorf("MLConfidence after load = %v, want %v", got.MLConfidence, want.MLConfidence)
	}
}

func TestSaveUntrained(t *testing.T) {
	cfg := config.Default()
	cfg.MLModel.Enabled = true

	m := New(cfg, "")
	if err := m.Save(filepath.Join(t.TempDir(), "predictor.json")); err == nil {
		t.Error("Save() error = nil for untrained model, want error")
	}
}

func TestNewWithMissingModelFile(t *testing.T) {
	cfg := config.Default()
	cfg.MLModel.Enabled = true

	m := New(cfg, filepath.Join(t.TempDir(), "absent.json"))
	if m.IsEnabled() && !nativeParserAvailable {
		t.Error("IsEnabled() = true with no model file present")
	}
}

func TestLoadMissingFile(t *testing.T) {
	m := &Model{}
	if err := m.Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load() error = nil for missing file, want error")
	}
}

func TestAssignLabel(t *testing.T) {
	ex := Example{
		UnitNumber:   "2",
		StreetNumber: "24",
		StreetName:   "St Kilda",
		StreetType:   "Road",
		Suburb:       "Carlton",
		State:        "VIC",
		Postcode:     "3053",
	}

	tests := []struct {
		token string
		want  string
	}{
		{"24", LabelStreetNumber},
		{"KILDA", LabelStreetName},
		{"road", LabelStreetType},
		{"CARLTON", LabelSuburb},
		{"VIC", LabelState},
		{"3053", LabelPostcode},
		{"UNKNOWN", LabelOther},

		// A bare 2 appears in both the unit number and the street
		// number; the first label in component order wins.
		{"2", LabelUnitNumber},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := assignLabel(tt.token, ex); got != tt.want {
				t.Errorf("assignLabel(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestClassifySeenToken(t *testing.T) {
	clf := newClassifier()
	for i := 0; i < 3; i++ {
		clf.observe("STREET", LabelStreetType)
	}
	clf.observe("STREET", LabelStreetName)
	clf.finalize()

	label, conf := clf.classify("street")
	if label != LabelStreetType {
		t.Errorf("classify(street) label = %q, want %q", label, LabelStreetType)
	}
	if math.Abs(conf-0.75) > 1e-9 {
		t.Errorf("classify(street) confidence = %v, want 0.75", conf)
	}
}

func TestClassifyWithEmptyClassifier(t *testing.T) {
	clf := newClassifier()
	clf.finalize()

	label, conf := clf.classify("ANYTHING")
	if label != LabelOther {
		t.Errorf("classify() label = %q, want %q", label, LabelOther)
	}
	want := 1.0 / float64(len(labelOrder))
	if math.Abs(conf-want) > 1e-9 {
		t.Errorf("classify() confidence = %v, want %v", conf, want)
	}
}

func TestTokenVectorIsUnitLength(t *testing.T) {
	for _, token := range []string{"STREET", "12", "O'BRIEN", "X"} {
		v := tokenVector(token)

		norm := 0.0
		for _, x := range v {
			norm += x * x
		}
		if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
			t.Errorf("tokenVector(%q) norm = %v, want 1.0", token, math.Sqrt(norm))
		}
	}
}

func BenchmarkPredict(b *testing.B) {
	cfg := config.Default()
	cfg.MLModel.Enabled = true

	m := New(cfg, "")
	if err := m.Train(trainingExamples()); err != nil {
		b.Fatalf("Train() error = %v", err)
	}

	addresses := []string{
		"12 SMITH STREET",
		"2/34 JONES ROAD",
		"99 PARKER AVENUE",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Predict(addresses[i%len(addresses)])
	}
}

func TestTrainLabelsFillerTokensAsOther(t *testing.T) {
	cfg := config.Default()
	cfg.MLModel.Enabled = true

	m := New(cfg, "")
	err := m.Train([]Example{
		{RawStreetAddress: "12 SMITH STREET NEAR PARK", StreetNumber: "12", StreetName: "Smith", StreetType: "Street"},
	})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	label, _ := m.clf.classify("NEAR")
	if label != LabelOther {
		t.Errorf("classify(NEAR) label = %q, want %q", label, LabelOther)
	}

	// OTHER tokens never become components.
	p := m.Predict("12 SMITH STREET NEAR PARK")
	if p == nil {
		t.Fatal("Predict() = nil")
	}
	for _, fp := range p.Predictions {
		if strings.Contains(fp.Value, "NEAR") || strings.Contains(fp.Value, "PARK") {
			t.Errorf("prediction %q contains filler token", fp.Value)
		}
	}
}
