package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default passes",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "misspelling references unknown canonical key",
			mutate: func(c *Config) {
				c.StreetTypes.Misspellings["STREAT"] = "streat"
			},
			wantErr: true,
		},
		{
			name: "alias shared between street types",
			mutate: func(c *Config) {
				entry := c.StreetTypes.Canonical["road"]
				entry.Aliases = append(entry.Aliases, "ST")
				c.StreetTypes.Canonical["road"] = entry
			},
			wantErr: true,
		},
		{
			name: "street type without label",
			mutate: func(c *Config) {
				c.StreetTypes.Canonical["quay"] = StreetTypeEntry{Aliases: []string{"QY"}}
			},
			wantErr: true,
		},
		{
			name: "state alias maps to unknown state",
			mutate: func(c *Config) {
				c.Localities.States.Aliases["NEW ENGLAND"] = "NE"
			},
			wantErr: true,
		},
		{
			name: "postcode range inverted",
			mutate: func(c *Config) {
				c.Validation.Postcode.Ranges["VIC"] = [][]int{{3999, 3000}}
			},
			wantErr: true,
		},
		{
			name: "postcode range wrong arity",
			mutate: func(c *Config) {
				c.Validation.Postcode.Ranges["VIC"] = [][]int{{3000, 3999, 4000}}
			},
			wantErr: true,
		},
		{
			name: "postcode range for unknown state",
			mutate: func(c *Config) {
				c.Validation.Postcode.Ranges["NZ"] = [][]int{{1000, 1999}}
			},
			wantErr: true,
		},
		{
			name: "postcode pattern does not compile",
			mutate: func(c *Config) {
				c.Validation.Postcode.Pattern = `^\d{4$`
			},
			wantErr: true,
		},
		{
			name: "fuzzy min score out of range",
			mutate: func(c *Config) {
				c.StreetTypes.FuzzyMatching.MinScore = 150
			},
			wantErr: true,
		},
		{
			name: "street number bounds inverted",
			mutate: func(c *Config) {
				c.Validation.StreetNumber.MinValue = 100
				c.Validation.StreetNumber.MaxValue = 1
			},
			wantErr: true,
		},
		{
			name: "schema missing required field",
			mutate: func(c *Config) {
				c.Schemas["broken"] = Schema{"street_address": "addr"}
			},
			wantErr: true,
		},
		{
			name: "ml confidence out of range",
			mutate: func(c *Config) {
				c.MLModel.MinConfidence = 1.5
			},
			wantErr: true,
		},
		{
			name: "gnaf threshold out of range",
			mutate: func(c *Config) {
				c.GNAF.MatchingThresholds.MinAcceptableScore = -0.1
			},
			wantErr: true,
		},
		{
			name: "zero batch size",
			mutate: func(c *Config) {
				c.Processing.MaxBatchSize = 0
			},
			wantErr: true,
		},
		{
			name: "unknown flags format",
			mutate: func(c *Config) {
				c.Output.InconsistencyFlagsFormat = "xml"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadOverlay(t *testing.T) {
	yaml := `
street_types:
  fuzzy_matching:
    min_score: 90
  misspellings:
    STREAT: street
localities:
  suburb_misspellings:
    GELONG: GEELONG
international_detection:
  require_four_digit_postcode: true
gnaf:
  connection_url: postgres://localhost/gnaf
processing:
  worker_count: 8
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.StreetTypes.FuzzyMatching.MinScore; got != 90 {
		t.Errorf("fuzzy min_score = %d, want 90", got)
	}
	if !cfg.StreetTypes.FuzzyMatching.Enabled {
		t.Error("fuzzy matching disabled, want default enabled to survive overlay")
	}
	if got := cfg.StreetTypes.Misspellings["STREAT"]; got != "street" {
		t.Errorf("misspellings[STREAT] = %q, want %q", got, "street")
	}
	if got := cfg.StreetTypes.Misspellings["CRESENT"]; got != "crescent" {
		t.Errorf("misspellings[CRESENT] = %q, want default %q to survive overlay", got, "crescent")
	}
	if got := cfg.Localities.SuburbMisspellings["GELONG"]; got != "GEELONG" {
		t.Errorf("suburb_misspellings[GELONG] = %q, want %q", got, "GEELONG")
	}
	if !cfg.International.RequireFourDigitPostcode {
		t.Error("require_four_digit_postcode = false, want true")
	}
	if got := cfg.GNAF.ConnectionURL; got != "postgres://localhost/gnaf" {
		t.Errorf("gnaf connection_url = %q, want %q", got, "postgres://localhost/gnaf")
	}
	if got := cfg.Processing.WorkerCount; got != 8 {
		t.Errorf("worker_count = %d, want 8", got)
	}
	if got := cfg.Processing.MaxBatchSize; got != 50000 {
		t.Errorf("max_batch_size = %d, want default 50000 to survive overlay", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	yaml := `
street_types:
  misspellings:
    STREAT: nosuchtype
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want error for unknown canonical key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() error = nil, want error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ADDRCLEAN_GNAF_URL", "postgres://db.internal/gnaf")
	t.Setenv("ADDRCLEAN_WORKERS", "16")
	t.Setenv("ADDRCLEAN_ML_ENABLED", "off")

	cfg := Default()
	cfg.ApplyEnv()

	if got := cfg.GNAF.ConnectionURL; got != "postgres://db.internal/gnaf" {
		t.Errorf("GNAF.ConnectionURL = %q, want env override", got)
	}
	if got := cfg.Processing.WorkerCount; got != 16 {
		t.Errorf("Processing.WorkerCount = %d, want 16", got)
	}
	if cfg.MLModel.Enabled {
		t.Error("MLModel.Enabled = true, want false from env")
	}
	if got := cfg.Server.Listen; got != ":8080" {
		t.Errorf("Server.Listen = %q, want default when env unset", got)
	}
}

func TestApplyEnvBuildsDSNFromPGVars(t *testing.T) {
	t.Setenv("PGDATABASE", "gnaf")
	t.Setenv("PGHOST", "db.internal")
	t.Setenv("PGPASSWORD", "hunter2")

	cfg := Default()
	cfg.GNAF.ConnectionURL = ""
	cfg.ApplyEnv()

	want := "host=db.internal port=5432 user=postgres dbname=gnaf sslmode=disable password=hunter2"
	if got := cfg.GNAF.ConnectionURL; got != want {
		t.Errorf("GNAF.ConnectionURL = %q, want %q", got, want)
	}
}

func TestApplyEnvPrefersExplicitURL(t *testing.T) {
	t.Setenv("PGDATABASE", "gnaf")

	cfg := Default()
	cfg.GNAF.ConnectionURL = "postgres://db.internal/gnaf"
	cfg.ApplyEnv()

	if got := cfg.GNAF.ConnectionURL; got != "postgres://db.internal/gnaf" {
		t.Errorf("GNAF.ConnectionURL = %q, want configured URL kept", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{"maybe", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("ADDRCLEAN_TEST_BOOL", tt.value)
			if got := GetEnvBool("ADDRCLEAN_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("GetEnvBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}
