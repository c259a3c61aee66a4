package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/caffix/stringset"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for the address cleaner. Every
// lookup table, threshold and penalty the engine uses comes from here;
// the engine itself holds no tunable values.
type Config struct {
	Parsing       ParsingConfig       `yaml:"parsing"`
	StreetTypes   StreetTypesConfig   `yaml:"street_types"`
	Localities    LocalitiesConfig    `yaml:"localities"`
	Validation    ValidationConfig    `yaml:"validation"`
	International InternationalConfig `yaml:"international_detection"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	GNAF          GNAFConfig          `yaml:"gnaf"`
	MLModel       MLModelConfig       `yaml:"ml_model"`
	Schemas       map[string]Schema   `yaml:"schemas"`
	Processing    ProcessingConfig    `yaml:"processing"`
	Output        OutputConfig        `yaml:"output"`
	Server        ServerConfig        `yaml:"server"`
}

// ParsingConfig controls token-level street parsing
type ParsingConfig struct {
	UnitPrefixes                 []string `yaml:"unit_prefixes"`
	UnitStreetSeparators         []string `yaml:"unit_street_separators"`
	POBoxPrefixes                []string `yaml:"po_box_prefixes"`
	RMBPrefixes                  []string `yaml:"rmb_prefixes"`
	StreetNumberRangeSeparators  []string `yaml:"street_number_range_separators"`
	StripStreetNumberAlphaSuffix bool     `yaml:"strip_street_number_alpha_suffix"`
}

// StreetTypesConfig defines the street-type vocabulary
type StreetTypesConfig struct {
	// Canonical maps a canonical key (e.g. "street") to its entry.
	Canonical map[string]StreetTypeEntry `yaml:"canonical"`
	// Misspellings maps a misspelled token to a canonical key.
	Misspellings  map[string]string   `yaml:"misspellings"`
	FuzzyMatching FuzzyMatchingConfig `yaml:"fuzzy_matching"`
}

// StreetTypeEntry is one canonical street type with its accepted aliases
type StreetTypeEntry struct {
	Label   string   `yaml:"label"`
	Aliases []string `yaml:"aliases"`
}

// FuzzyMatchingConfig gates approximate street-type matching
type FuzzyMatchingConfig struct {
	Enabled  bool `yaml:"enabled"`
	MinScore int  `yaml:"min_score"`
}

// LocalitiesConfig defines suburb and state normalization tables
type LocalitiesConfig struct {
	States             StatesConfig      `yaml:"states"`
	SuburbMisspellings map[string]string `yaml:"suburb_misspellings"`
}

// StatesConfig lists valid state codes and their accepted aliases
type StatesConfig struct {
	Valid   []string          `yaml:"valid"`
	Aliases map[string]string `yaml:"aliases"`
}

// ValidationConfig holds cross-field consistency rules
type ValidationConfig struct {
	Postcode     PostcodeValidation     `yaml:"postcode"`
	StreetNumber StreetNumberValidation `yaml:"street_number"`
}

// PostcodeValidation holds the postcode format pattern and per-state ranges
type PostcodeValidation struct {
	Pattern string             `yaml:"pattern"`
	Ranges  map[string][][]int `yaml:"ranges"`
}

// StreetNumberValidation bounds plausible street numbers
type StreetNumberValidation struct {
	MinValue int `yaml:"min_value"`
	MaxValue int `yaml:"max_value"`
}

// InternationalConfig controls non-Australian address detection
type InternationalConfig struct {
	Enabled                  bool     `yaml:"enabled"`
	CountryTokens            []string `yaml:"country_tokens"`
	RequireFourDigitPostcode bool     `yaml:"require_four_digit_postcode"`
}

// ScoringConfig holds the confidence scoring model
type ScoringConfig struct {
	BaseScore int           `yaml:"base_score"`
	Penalties PenaltyConfig `yaml:"penalties"`
	// FlagPenalties overrides the per-flag inconsistency penalties.
	// Flags absent from the map cost the built-in defaults.
	FlagPenalties map[string]int `yaml:"flag_penalties"`
}

// PenaltyConfig lists the named scoring penalties
type PenaltyConfig struct {
	InternationalAddress      int `yaml:"international_address"`
	InvalidAddress            int `yaml:"invalid_address"`
	AmbiguousStreetNumber     int `yaml:"ambiguous_street_number"`
	AmbiguousUnitNumber       int `yaml:"ambiguous_unit_number"`
	ConflictingIndicators     int `yaml:"conflicting_indicators"`
	UnparsedComponentsPresent int `yaml:"unparsed_components_present"`
	NoGNAFMatch               int `yaml:"no_gnaf_match"`
	ApproximateGNAFMatch      int `yaml:"approximate_gnaf_match"`
	SuburbCorrected           int `yaml:"suburb_corrected"`
	StateCorrected            int `yaml:"state_corrected"`
	PostcodeCorrected         int `yaml:"postcode_corrected"`
	FuzzyStreetType           int `yaml:"fuzzy_street_type"`
	FuzzySuburb               int `yaml:"fuzzy_suburb"`
}

// GNAFConfig controls the reference-registry matcher
type GNAFConfig struct {
	Enabled               bool            `yaml:"enabled"`
	ConnectionURL         string          `yaml:"connection_url"`
	AllowApproximateMatch bool            `yaml:"allow_approximate_match"`
	MatchingThresholds    GNAFThresholds  `yaml:"matching_thresholds"`
	Corrections           GNAFCorrections `yaml:"corrections"`
}

// GNAFThresholds holds approximate-match acceptance thresholds
type GNAFThresholds struct {
	MinAcceptableScore float64 `yaml:"min_acceptable_score"`
}

// GNAFCorrections controls when registry values overwrite parsed fields
type GNAFCorrections struct {
	MinScoreForCorrection float64  `yaml:"min_score_for_correction"`
	CorrectableFields     []string `yaml:"correctable_fields"`
}

// MLModelConfig controls the component predictor
type MLModelConfig struct {
	Enabled         bool    `yaml:"enabled"`
	ModelPath       string  `yaml:"model_path"`
	MinConfidence   float64 `yaml:"min_confidence"`
	FallbackToRules bool    `yaml:"fallback_to_rules"`
}

// Schema maps logical field names to physical input column names.
// The id_column entry is optional; all others are required.
type Schema map[string]string

// ProcessingConfig controls batch behaviour
type ProcessingConfig struct {
	MaxBatchSize            int  `yaml:"max_batch_size"`
	ContinueOnError         bool `yaml:"continue_on_error"`
	PreserveOriginalColumns bool `yaml:"preserve_original_columns"`
	// WorkerCount is the parse worker pool size; 0 means one per CPU.
	WorkerCount int `yaml:"worker_count"`
}

// OutputConfig controls result rendering
type OutputConfig struct {
	// InconsistencyFlagsFormat is "comma_separated" or "json".
	InconsistencyFlagsFormat string `yaml:"inconsistency_flags_format"`
}

// ServerConfig holds HTTP facade settings
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// Logical field names every schema must map
var requiredSchemaFields = []string{"street_address", "suburb", "state", "postcode"}

// SchemaIDField is the optional logical name for the record identifier column
const SchemaIDField = "id_column"

// Load reads a YAML configuration file and overlays it onto the defaults,
// so a partial file only has to name the sections it changes.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports configuration malformations. It runs once at startup;
// per-record processing never re-checks these.
func (c *Config) Validate() error {
	// Every misspelling must point at a canonical street-type key.
	for misspelling, key := range c.StreetTypes.Misspellings {
		if _, ok := c.StreetTypes.Canonical[key]; !ok {
			return fmt.Errorf("street type misspelling %q references unknown canonical key %q", misspelling, key)
		}
	}

	// No street-type token may map to two different entries.
	keys := make([]string, 0, len(c.StreetTypes.Canonical))
	for key := range c.StreetTypes.Canonical {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	owner := make(map[string]string)
	for _, key := range keys {
		entry := c.StreetTypes.Canonical[key]
		if entry.Label == "" {
			return fmt.Errorf("street type %q has no label", key)
		}
		for _, token := range append([]string{key, entry.Label}, entry.Aliases...) {
			upper := strings.ToUpper(strings.TrimSpace(token))
			if upper == "" {
				return fmt.Errorf("street type %q has an empty token", key)
			}
			if prev, ok := owner[upper]; ok && prev != key {
				return fmt.Errorf("street type token %q is defined by both %q and %q", token, prev, key)
			}
			owner[upper] = key
		}
	}

	if c.StreetTypes.FuzzyMatching.MinScore < 0 || c.StreetTypes.FuzzyMatching.MinScore > 100 {
		return fmt.Errorf("street type fuzzy min_score %d outside [0,100]", c.StreetTypes.FuzzyMatching.MinScore)
	}

	// State aliases must resolve to valid state codes.
	valid := stringset.New(c.Localities.States.Valid...)
	for alias, state := range c.Localities.States.Aliases {
		if !valid.Has(state) {
			return fmt.Errorf("state alias %q maps to unknown state %q", alias, state)
		}
	}

	// Postcode pattern and ranges.
	if p := c.Validation.Postcode.Pattern; p != "" {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid postcode pattern %q: %w", p, err)
		}
	}
	for state, ranges := range c.Validation.Postcode.Ranges {
		if !valid.Has(state) {
			return fmt.Errorf("postcode ranges defined for unknown state %q", state)
		}
		for _, r := range ranges {
			if len(r) != 2 || r[0] > r[1] {
				return fmt.Errorf("invalid postcode range %v for state %s", r, state)
			}
		}
	}

	if c.Validation.StreetNumber.MinValue > c.Validation.StreetNumber.MaxValue {
		return fmt.Errorf("street number min_value %d exceeds max_value %d",
			c.Validation.StreetNumber.MinValue, c.Validation.StreetNumber.MaxValue)
	}

	// Schemas must map every required logical field.
	for name, schema := range c.Schemas {
		for _, field := range requiredSchemaFields {
			if schema[field] == "" {
				return fmt.Errorf("schema %q does not map required field %q", name, field)
			}
		}
	}

	if c.MLModel.MinConfidence < 0 || c.MLModel.MinConfidence > 1 {
		return fmt.Errorf("ml_model min_confidence %v outside [0,1]", c.MLModel.MinConfidence)
	}
	if s := c.GNAF.MatchingThresholds.MinAcceptableScore; s < 0 || s > 1 {
		return fmt.Errorf("gnaf min_acceptable_score %v outside [0,1]", s)
	}
	if s := c.GNAF.Corrections.MinScoreForCorrection; s < 0 || s > 1 {
		return fmt.Errorf("gnaf min_score_for_correction %v outside [0,1]", s)
	}

	if c.Processing.MaxBatchSize <= 0 {
		return fmt.Errorf("processing max_batch_size must be positive, got %d", c.Processing.MaxBatchSize)
	}
	if c.Processing.WorkerCount < 0 {
		return fmt.Errorf("processing worker_count must not be negative, got %d", c.Processing.WorkerCount)
	}

	switch c.Output.InconsistencyFlagsFormat {
	case "comma_separated", "json":
	default:
		return fmt.Errorf("unknown inconsistency_flags_format %q", c.Output.InconsistencyFlagsFormat)
	}

	return nil
}
