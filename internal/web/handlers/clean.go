// Package handlers implements the HTTP handlers for the cleaning API.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aus-address-cleaner/internal/cleaner"
)

// CleanHandler runs the full pipeline over posted address batches.
type CleanHandler struct {
	Cleaner      *cleaner.Cleaner
	MaxBatchSize int
}

// AddressInput is one address in a clean request.
type AddressInput struct {
	RecordID      string `json:"record_id"`
	StreetAddress string `json:"street_address"`
	Suburb        string `json:"suburb"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
}

// CleanRequest is the body of POST /api/clean.
type CleanRequest struct {
	Addresses []AddressInput `json:"addresses"`
}

// CleanResponse is the body of a successful clean call.
type CleanResponse struct {
	Results []cleaner.Result   `json:"results"`
	Stats   cleaner.BatchStats `json:"stats"`
}

// CleanAddresses cleans a batch of addresses posted as JSON.
func (h *CleanHandler) CleanAddresses(w http.ResponseWriter, r *http.Request) {
	var req CleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if len(req.Addresses) == 0 {
		http.Error(w, "Request contains no addresses", http.StatusBadRequest)
		return
	}
	if h.MaxBatchSize > 0 && len(req.Addresses) > h.MaxBatchSize {
		http.Error(w, fmt.Sprintf("Batch size %d exceeds limit %d", len(req.Addresses), h.MaxBatchSize),
			http.StatusRequestEntityTooLarge)
		return
	}

	records := make([]cleaner.Record, len(req.Addresses))
	for i, in := range req.Addresses {
		recordID := in.RecordID
		if recordID == "" {
			recordID = fmt.Sprintf("REC%06d", i+1)
		}
		records[i] = cleaner.Record{
			RecordID:      recordID,
			StreetAddress: in.StreetAddress,
			Suburb:        in.Suburb,
			State:         in.State,
			Postcode:      in.Postcode,
		}
	}

	results, stats := h.Cleaner.CleanBatch(r.Context(), records)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CleanResponse{Results: results, Stats: stats})
}
