package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aus-address-cleaner/internal/gnaf"
	"github.com/aus-address-cleaner/internal/predict"
)

// HealthHandler reports pipeline component status.
type HealthHandler struct {
	Matcher *gnaf.Matcher
	Model   *predict.Model
	Version string
}

// HealthResponse is the body of a health call.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	GNAF    string `json:"gnaf"`
	MLModel string `json:"ml_model"`
}

// Health reports whether the service and its optional stages are up.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.Version,
		GNAF:    "disabled",
		MLModel: "disabled",
	}

	if h.Matcher != nil && h.Matcher.Enabled() {
		if err := h.Matcher.Ping(r.Context()); err != nil {
			resp.GNAF = "unreachable"
		} else {
			resp.GNAF = "connected"
		}
	}

	if h.Model != nil && h.Model.IsEnabled() {
		resp.MLModel = "enabled"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
