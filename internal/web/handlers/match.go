package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aus-address-cleaner/internal/address"
	"github.com/aus-address-cleaner/internal/gnaf"
)

// MatchHandler looks parsed components up in G-NAF.
type MatchHandler struct {
	Matcher *gnaf.Matcher
}

// MatchResponse is the body of a successful match call.
type MatchResponse struct {
	Match      *gnaf.Match `json:"match"`
	MatchScore float64     `json:"match_score"`
	Flags      []string    `json:"flags"`
}

// MatchAddress matches the components given in query parameters
// against the G-NAF database.
func (h *MatchHandler) MatchAddress(w http.ResponseWriter, r *http.Request) {
	if h.Matcher == nil || !h.Matcher.Enabled() {
		http.Error(w, "G-NAF matching is not available", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	components := address.Components{
		UnitNumber:   q.Get("unit_number"),
		StreetNumber: q.Get("street_number"),
		StreetName:   q.Get("street_name"),
		StreetType:   q.Get("street_type"),
		Suburb:       q.Get("suburb"),
		State:        q.Get("state"),
		Postcode:     q.Get("postcode"),
	}

	if components.StreetName == "" || components.Suburb == "" {
		http.Error(w, "street_name and suburb are required", http.StatusBadRequest)
		return
	}

	match, score, flags := h.Matcher.Match(r.Context(), components)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MatchResponse{
		Match:      match,
		MatchScore: score,
		Flags:      flags,
	})
}
