// Package score turns parsing outcomes into a 0-100 confidence score.
//
// Scoring starts from a configured base and subtracts penalties for
// parsing notes, inconsistency flags, reference-match outcomes, applied
// corrections, unparsed leftovers, and missing components. A predictor
// confidence, when present, nudges the final score either way.
package score

import (
	"github.com/aus-address-cleaner/internal/address"
	"github.com/aus-address-cleaner/internal/config"
)

// Confidence level labels, ordered best to worst.
const (
	LevelExcellent = "EXCELLENT"
	LevelVeryHigh  = "VERY_HIGH"
	LevelHigh      = "HIGH"
	LevelModerate  = "MODERATE"
	LevelLow       = "LOW"
	LevelVeryLow   = "VERY_LOW"
)

// Input collects everything that feeds one score calculation.
// GNAFFlags, Corrections, and MLConfidence come from optional
// collaborators; their zero values mean the collaborator produced
// nothing.
type Input struct {
	Components         address.Components
	UnparsedComponents string
	ParsingNotes       []string
	InconsistencyFlags []string
	GNAFFlags          []string
	GNAFMatchScore     float64
	Corrections        []string
	MLConfidence       *float64
}

// Breakdown itemizes one score calculation. Penalty keys appear only
// when their check ran, so unparsed_components is absent for fully
// parsed addresses and ml_confidence is absent without a predictor.
type Breakdown struct {
	BaseScore   int            `json:"base_score"`
	Penalties   map[string]int `json:"penalties"`
	Adjustments map[string]int `json:"adjustments"`
	FinalScore  int            `json:"final_score"`
}

// Scorer applies the configured penalty table. Construct once with New
// and share freely; a Scorer is read-only.
type Scorer struct {
	baseScore           int
	notePenalties       map[string]int
	flagPenalties       map[string]int
	correctionPenalties map[string]int
	noMatch             int
	approximateMatch    int
	unparsedPresent     int
}

// New builds a Scorer from configuration.
func New(cfg *config.Config) *Scorer {
	p := cfg.Scoring.Penalties

	s := &Scorer{
		baseScore: cfg.Scoring.BaseScore,
		notePenalties: map[string]int{
			address.NoteInternationalAddress: p.InternationalAddress,
			address.NotePOBox:                0,
			address.NoteRMB:                  0,
			address.NoteUnableToParse:        p.InvalidAddress,
			address.NoteAmbiguousStreetNum:   p.AmbiguousStreetNumber,
			address.NoteAmbiguousUnitNum:     p.AmbiguousUnitNumber,
			address.NoteConflictingIndicator: p.ConflictingIndicators,
		},
		correctionPenalties: map[string]int{
			address.CorrectionSuburb:          p.SuburbCorrected,
			address.CorrectionState:           p.StateCorrected,
			address.CorrectionPostcode:        p.PostcodeCorrected,
			address.CorrectionStreetTypeFuzzy: p.FuzzyStreetType,
			address.CorrectionSuburbFuzzy:     p.FuzzySuburb,
		},
		flagPenalties:    make(map[string]int),
		noMatch:          p.NoGNAFMatch,
		approximateMatch: p.ApproximateGNAFMatch,
		unparsedPresent:  p.UnparsedComponentsPresent,
	}

	for flag, penalty := range cfg.Scoring.FlagPenalties {
		s.flagPenalties[flag] = penalty
	}

	return s
}

// Score calculates the confidence score for one address, clamped to
// the 0-100 range.
func (s *Scorer) Score(in Input) int {
	score := s.baseScore

	score -= s.penaltyForNotes(in.ParsingNotes)
	score -= s.penaltyForFlags(in.InconsistencyFlags)
	score -= s.penaltyForGNAF(in.GNAFFlags, in.GNAFMatchScore)
	score -= s.penaltyForCorrections(in.Corrections)

	if in.UnparsedComponents != "" {
		score -= s.unparsedPresent
	}

	score -= s.penaltyForMissing(in.Components)

	if in.MLConfidence != nil {
		score = adjustForMLConfidence(score, *in.MLConfidence)
	}

	return clamp(score)
}

func (s *Scorer) penaltyForNotes(notes []string) int {
	penalty := 0
	for _, note := range notes {
		penalty += s.notePenalties[note]
	}
	return penalty
}

func (s *Scorer) penaltyForFlags(flags []string) int {
	penalty := 0
	for _, flag := range flags {
		if p, ok := s.flagPenalties[flag]; ok {
			penalty += p
		} else {
			penalty += 5
		}
	}
	return penalty
}

func (s *Scorer) penaltyForGNAF(flags []string, matchScore float64) int {
	penalty := 0

	if hasFlag(flags, address.FlagNoGNAFMatch) {
		penalty += s.noMatch
	} else if hasFlag(flags, address.FlagGNAFApproximateMatch) {
		penalty += s.approximateMatch

		if matchScore < 0.8 {
			penalty += 5
		} else if matchScore < 0.9 {
			penalty += 3
		}
	}

	if hasFlag(flags, address.FlagGNAFDisabled) {
		penalty += 5
	}

	if hasFlag(flags, address.FlagGNAFConnectionError) || hasFlag(flags, address.FlagGNAFQueryError) {
		penalty += 5
	}

	return penalty
}

func (s *Scorer) penaltyForCorrections(corrections []string) int {
	penalty := 0
	for _, correction := range corrections {
		if p, ok := s.correctionPenalties[correction]; ok {
			penalty += p
		} else {
			penalty += 3
		}
	}
	return penalty
}

// penaltyForMissing weights absent components by how essential they
// are to locating the address.
func (s *Scorer) penaltyForMissing(c address.Components) int {
	penalty := 0

	if c.StreetName == "" {
		penalty += 30
	}
	if c.Suburb == "" {
		penalty += 20
	}
	if c.State == "" {
		penalty += 20
	}
	if c.Postcode == "" {
		penalty += 15
	}
	if c.StreetNumber == "" {
		penalty += 10
	}

	return penalty
}

// adjustForMLConfidence nudges the score for very confident or very
// unconfident predictions. Mid-range confidence leaves it unchanged.
func adjustForMLConfidence(score int, confidence float64) int {
	if confidence >= 0.95 {
		return score + 2
	} else if confidence >= 0.90 {
		return score + 1
	} else if confidence < 0.7 {
		return score - 5
	} else if confidence < 0.8 {
		return score - 3
	}

	return score
}

// Classify buckets a score into a confidence level label.
func (s *Scorer) Classify(score int) string {
	switch {
	case score >= 95:
		return LevelExcellent
	case score >= 85:
		return LevelVeryHigh
	case score >= 75:
		return LevelHigh
	case score >= 60:
		return LevelModerate
	case score >= 40:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// IsValid reports whether the address is usable. Postal forms pass
// without a street name; everything else needs one, plus a suburb,
// a state, and a score of at least 30.
func (s *Scorer) IsValid(c address.Components, score int) bool {
	if score < 30 {
		return false
	}

	if c.Suburb == "" || c.State == "" {
		return false
	}

	if c.StreetType == address.StreetTypePOBox || c.StreetType == address.StreetTypeRMB {
		return true
	}

	return c.StreetName != ""
}

// Breakdown itemizes the score calculation for diagnostics.
func (s *Scorer) Breakdown(in Input) Breakdown {
	b := Breakdown{
		BaseScore:   s.baseScore,
		Penalties:   make(map[string]int),
		Adjustments: make(map[string]int),
	}

	b.Penalties["parsing_notes"] = s.penaltyForNotes(in.ParsingNotes)
	b.Penalties["inconsistencies"] = s.penaltyForFlags(in.InconsistencyFlags)
	b.Penalties["gnaf"] = s.penaltyForGNAF(in.GNAFFlags, in.GNAFMatchScore)
	b.Penalties["corrections"] = s.penaltyForCorrections(in.Corrections)

	if in.UnparsedComponents != "" {
		b.Penalties["unparsed_components"] = s.unparsedPresent
	}

	b.Penalties["missing_components"] = s.penaltyForMissing(in.Components)

	total := 0
	for _, penalty := range b.Penalties {
		total += penalty
	}
	score := s.baseScore - total

	if in.MLConfidence != nil {
		adjusted := adjustForMLConfidence(score, *in.MLConfidence)
		b.Adjustments["ml_confidence"] = adjusted - score
		score = adjusted
	}

	b.FinalScore = clamp(score)

	return b
}

func hasFlag(flags []string, target string) bool {
	for _, flag := range flags {
		if flag == target {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
