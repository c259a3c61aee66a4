package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aus-address-cleaner/internal/address"
	"github.com/aus-address-cleaner/internal/parse"
	"github.com/aus-address-cleaner/internal/score"
)

// ParseHandler parses a single address with the rule parser, without
// the prediction or G-NAF stages.
type ParseHandler struct {
	Parser *parse.Parser
	Scorer *score.Scorer
}

// ParseResponse is the body of a successful parse call.
type ParseResponse struct {
	address.ParseResult

	ConfidenceLevel int              `json:"confidence_level"`
	Level           string           `json:"level"`
	IsValid         bool             `json:"is_valid"`
	Breakdown       *score.Breakdown `json:"breakdown,omitempty"`
}

// ParseAddress parses the address given in query parameters. Passing
// breakdown=true itemizes the score calculation in the response.
func (h *ParseHandler) ParseAddress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	street := q.Get("street")
	suburb := q.Get("suburb")
	state := q.Get("state")
	postcode := q.Get("postcode")

	if street == "" && suburb == "" && state == "" && postcode == "" {
		http.Error(w, "At least one of street, suburb, state, postcode is required", http.StatusBadRequest)
		return
	}

	result := h.Parser.ParseAddress(street, suburb, state, postcode)

	in := score.Input{
		Components:         result.Components,
		UnparsedComponents: result.UnparsedComponents,
		ParsingNotes:       result.ParsingNotes,
		InconsistencyFlags: result.InconsistencyFlags,
	}
	confidence := h.Scorer.Score(in)

	resp := ParseResponse{
		ParseResult:     result,
		ConfidenceLevel: confidence,
		Level:           h.Scorer.Classify(confidence),
		IsValid:         h.Scorer.IsValid(result.Components, confidence),
	}

	if q.Get("breakdown") == "true" {
		breakdown := h.Scorer.Breakdown(in)
		resp.Breakdown = &breakdown
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
