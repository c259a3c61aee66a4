package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/aus-address-cleaner/internal/config"
)

// ConfigHandler exposes a read-only view of the active configuration.
// Connection URLs and file paths stay private.
type ConfigHandler struct {
	Config *config.Config
}

// ConfigResponse is the redacted configuration view.
type ConfigResponse struct {
	Schemas               []string `json:"schemas"`
	StreetTypes           int      `json:"street_types"`
	FuzzyMatchingEnabled  bool     `json:"fuzzy_matching_enabled"`
	FuzzyMatchingMinScore int      `json:"fuzzy_matching_min_score"`
	InternationalEnabled  bool     `json:"international_detection_enabled"`
	GNAFEnabled           bool     `json:"gnaf_enabled"`
	GNAFAllowApproximate  bool     `json:"gnaf_allow_approximate"`
	MLModelEnabled        bool     `json:"ml_model_enabled"`
	MLMinConfidence       float64  `json:"ml_min_confidence"`
	BaseScore             int      `json:"base_score"`
	MaxBatchSize          int      `json:"max_batch_size"`
	WorkerCount           int      `json:"worker_count"`
	FlagsFormat           string   `json:"inconsistency_flags_format"`
}

// GetConfig returns the redacted configuration.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	schemas := make([]string, 0, len(h.Config.Schemas))
	for name := range h.Config.Schemas {
		schemas = append(schemas, name)
	}
	sort.Strings(schemas)

	resp := ConfigResponse{
		Schemas:               schemas,
		StreetTypes:           len(h.Config.StreetTypes.Canonical),
		FuzzyMatchingEnabled:  h.Config.StreetTypes.FuzzyMatching.Enabled,
		FuzzyMatchingMinScore: h.Config.StreetTypes.FuzzyMatching.MinScore,
		InternationalEnabled:  h.Config.International.Enabled,
		GNAFEnabled:           h.Config.GNAF.Enabled,
		GNAFAllowApproximate:  h.Config.GNAF.AllowApproximateMatch,
		MLModelEnabled:        h.Config.MLModel.Enabled,
		MLMinConfidence:       h.Config.MLModel.MinConfidence,
		BaseScore:             h.Config.Scoring.BaseScore,
		MaxBatchSize:          h.Config.Processing.MaxBatchSize,
		WorkerCount:           h.Config.Processing.WorkerCount,
		FlagsFormat:           h.Config.Output.InconsistencyFlagsFormat,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
