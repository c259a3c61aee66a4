// Package cleaner runs the full address cleaning pipeline: component
// prediction or rule-based parsing, G-NAF matching and correction, and
// confidence scoring, over single records or batches.
package cleaner

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/aus-address-cleaner/internal/address"
	"github.com/aus-address-cleaner/internal/config"
	"github.com/aus-address-cleaner/internal/debug"
	"github.com/aus-address-cleaner/internal/gnaf"
	"github.com/aus-address-cleaner/internal/parse"
	"github.com/aus-address-cleaner/internal/predict"
	"github.com/aus-address-cleaner/internal/score"
)

// invalidStreetName replaces the street name of addresses that fail
// validation so downstream consumers cannot mistake them for real ones.
const invalidStreetName = "INVALID ADDRESS"

// Record is one input address before cleaning. Original carries any
// extra input columns so they can be preserved in the output.
type Record struct {
	RecordID      string
	StreetAddress string
	Suburb        string
	State         string
	Postcode      string
	Original      map[string]string
}

// Result is one cleaned address with its quality metadata.
type Result struct {
	RecordID           string `json:"record_id"`
	UnitNumber         string `json:"unit_number"`
	StreetNumber       string `json:"street_number"`
	StreetName         string `json:"street_name"`
	StreetType         string `json:"street_type"`
	Suburb             string `json:"suburb"`
	State              string `json:"state"`
	Postcode           string `json:"postcode"`
	ConfidenceLevel    int    `json:"confidence_level"`
	IsInternational    bool   `json:"is_international"`
	IsInvalidAddress   bool   `json:"is_invalid_address"`
	InconsistencyFlags string `json:"inconsistency_flags"`
	UnparsedComponents string `json:"unparsed_components"`
	RawStreetAddress   string `json:"raw_street_address"`
	RawSuburb          string `json:"raw_suburb"`
	RawState           string `json:"raw_state"`
	RawPostcode        string `json:"raw_postcode"`
}

// Options selects the optional pipeline stages.
type Options struct {
	// GNAFConnectionURL overrides the configured database URL.
	GNAFConnectionURL string
	// MLModelPath overrides the configured model path.
	MLModelPath string
	UseML       bool
	UseGNAF     bool
}

// Cleaner holds the pipeline stages. Construct once with New and share
// across goroutines; all stages are safe for concurrent use.
type Cleaner struct {
	cfg     *config.Config
	parser  *parse.Parser
	scorer  *score.Scorer
	model   *predict.Model
	matcher *gnaf.Matcher
}

// New builds a Cleaner from configuration. Unavailable optional stages
// log a warning and leave the pipeline running on rules alone.
func New(cfg *config.Config, opts Options) *Cleaner {
	c := &Cleaner{
		cfg:    cfg,
		parser: parse.New(cfg),
		scorer: score.New(cfg),
	}

	if opts.UseML {
		c.model = predict.New(cfg, opts.MLModelPath)
		if !c.model.IsEnabled() {
			log.Println("prediction model is not available, using rule-based parsing only")
		}
	}

	if opts.UseGNAF {
		c.matcher = gnaf.New(cfg, opts.GNAFConnectionURL)
		if !c.matcher.Enabled() {
			log.Println("G-NAF matching is not available")
		}
	}

	return c
}

// Parser exposes the rule parsing stage.
func (c *Cleaner) Parser() *parse.Parser {
	return c.parser
}

// Scorer exposes the scoring stage for diagnostic output.
func (c *Cleaner) Scorer() *score.Scorer {
	return c.scorer
}

// Matcher exposes the G-NAF stage; nil when G-NAF was not requested.
func (c *Cleaner) Matcher() *gnaf.Matcher {
	return c.matcher
}

// Model exposes the prediction stage; nil when prediction was not
// requested.
func (c *Cleaner) Model() *predict.Model {
	return c.model
}

// Close releases resources held by the pipeline stages.
func (c *Cleaner) Close() error {
	if c.matcher == nil {
		return nil
	}
	return c.matcher.Close()
}

// CleanRecord runs the pipeline over a single record.
func (c *Cleaner) CleanRecord(ctx context.Context, rec Record) Result {
	// Prediction runs first. Its confidence feeds the scorer even
	// when the components themselves are rejected in favour of rules.
	var (
		prediction   *predict.Prediction
		mlConfidence *float64
	)
	if c.model != nil && c.model.IsEnabled() {
		prediction = c.model.Predict(rec.StreetAddress)
		if prediction != nil {
			conf := prediction.MLConfidence
			mlConfidence = &conf
		}
	}

	var (
		components address.Components
		notes      []string
		flags      []string
		unparsed   string
	)
	if c.model != nil && prediction != nil && c.model.ShouldUse(prediction) {
		components = prediction.Components
		notes = []string{address.NoteMLPredictionUsed}
		debug.Tracef("record %s: using prediction (confidence %.2f)", rec.RecordID, prediction.MLConfidence)
	} else {
		parsed := c.parser.ParseAddress(rec.StreetAddress, rec.Suburb, rec.State, rec.Postcode)
		components = parsed.Components
		notes = parsed.ParsingNotes
		flags = parsed.InconsistencyFlags
		unparsed = parsed.UnparsedComponents
	}

	var (
		gnafFlags   []string
		matchScore  float64
		corrections []string
	)
	if c.matcher != nil && c.matcher.Enabled() {
		var match *gnaf.Match
		match, matchScore, gnafFlags = c.matcher.Match(ctx, components)
		if match != nil {
			components, corrections = c.matcher.ApplyCorrections(components, match, matchScore)
			if len(corrections) > 0 {
				debug.Tracef("record %s: %d corrections from G-NAF match (score %.2f)", rec.RecordID, len(corrections), matchScore)
			}
		}
	} else {
		gnafFlags = []string{address.FlagGNAFDisabled}
	}

	confidence := c.scorer.Score(score.Input{
		Components:         components,
		UnparsedComponents: unparsed,
		ParsingNotes:       notes,
		InconsistencyFlags: flags,
		GNAFFlags:          gnafFlags,
		GNAFMatchScore:     matchScore,
		Corrections:        corrections,
		MLConfidence:       mlConfidence,
	})

	isInternational := contains(notes, address.NoteInternationalAddress)

	isInvalid := false
	if !c.scorer.IsValid(components, confidence) {
		components.StreetName = invalidStreetName
		isInvalid = true
	}

	allFlags := make([]string, 0, len(flags)+len(gnafFlags))
	allFlags = append(allFlags, flags...)
	allFlags = append(allFlags, gnafFlags...)

	return Result{
		RecordID:           rec.RecordID,
		UnitNumber:         components.UnitNumber,
		StreetNumber:       components.StreetNumber,
		StreetName:         components.StreetName,
		StreetType:         components.StreetType,
		Suburb:             components.Suburb,
		State:              components.State,
		Postcode:           components.Postcode,
		ConfidenceLevel:    confidence,
		IsInternational:    isInternational,
		IsInvalidAddress:   isInvalid,
		InconsistencyFlags: c.formatFlags(allFlags),
		UnparsedComponents: unparsed,
		RawStreetAddress:   rec.StreetAddress,
		RawSuburb:          rec.Suburb,
		RawState:           rec.State,
		RawPostcode:        rec.Postcode,
	}
}

// errorResult marks a record that could not be processed at all.
func errorResult(rec Record, err error) Result {
	return Result{
		RecordID:           rec.RecordID,
		StreetName:         invalidStreetName,
		ConfidenceLevel:    0,
		IsInvalidAddress:   true,
		InconsistencyFlags: "PROCESSING_ERROR: " + err.Error(),
		UnparsedComponents: rec.StreetAddress,
		RawStreetAddress:   rec.StreetAddress,
		RawSuburb:          rec.Suburb,
		RawState:           rec.State,
		RawPostcode:        rec.Postcode,
	}
}

// formatFlags renders flags as configured, either a JSON array or a
// comma separated list. No flags render as an empty string.
func (c *Cleaner) formatFlags(flags []string) string {
	if len(flags) == 0 {
		return ""
	}

	if c.cfg.Output.InconsistencyFlagsFormat == "json" {
		data, err := json.Marshal(flags)
		if err != nil {
			return strings.Join(flags, ", ")
		}
		return string(data)
	}

	return strings.Join(flags, ", ")
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
