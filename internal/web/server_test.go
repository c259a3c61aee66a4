package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aus-address-cleaner/internal/cleaner"
	"github.com/aus-address-cleaner/internal/config"
	"github.com/aus-address-cleaner/internal/web/handlers"
)

func newTestServer(opts Options) *Server {
	cfg := config.Default()
	return NewServer(cfg, cleaner.New(cfg, cleaner.Options{}), opts)
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCleanEndpoint(t *testing.T) {
	s := newTestServer(Options{Version: "test"})

	body := `{"addresses": [
		{"record_id": "R1", "street_address": "12 High Street", "suburb": "Carlton", "state": "VIC", "postcode": "3053"},
		{"record_id": "R2", "street_address": "PO Box 12", "suburb": "Carlton", "state": "VIC", "postcode": "3053"}
	]}`

	rec := doRequest(s, http.MethodPost, "/api/clean", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/clean status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp handlers.CleanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(resp.Results))
	}
	if resp.Results[0].RecordID != "R1" {
		t.Errorf("Results[0].RecordID = %q, want %q", resp.Results[0].RecordID, "R1")
	}
	if resp.Results[0].StreetName != "High" {
		t.Errorf("Results[0].StreetName = %q, want %q", resp.Results[0].StreetName, "High")
	}
	if resp.Results[1].StreetType != "PO Box" {
		t.Errorf("Results[1].StreetType = %q, want %q", resp.Results[1].StreetType, "PO Box")
	}
	if resp.Stats.Total != 2 {
		t.Errorf("Stats.Total = %d, want 2", resp.Stats.Total)
	}
}

func TestCleanEndpointSynthesizesRecordIDs(t *testing.T) {
	s := newTestServer(Options{})

	body := `{"addresses": [{"street_address": "12 High Street", "suburb": "Carlton", "state": "VIC", "postcode": "3053"}]}`

	rec := doRequest(s, http.MethodPost, "/api/clean", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp handlers.CleanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Results[0].RecordID != "REC000001" {
		t.Errorf("RecordID = %q, want %q", resp.Results[0].RecordID, "REC000001")
	}
}

func TestCleanEndpointValidation(t *testing.T) {
	s := newTestServer(Options{})

	tests := []struct {
		name     string
		method   string
		body     string
		wantCode int
	}{
		{
			name:     "invalid json",
			method:   http.MethodPost,
			body:     "{not json",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "no addresses",
			method:   http.MethodPost,
			body:     `{"addresses": []}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "wrong method",
			method:   http.MethodGet,
			body:     "",
			wantCode: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, tt.method, "/api/clean", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestParseEndpoint(t *testing.T) {
	s := newTestServer(Options{})

	rec := doRequest(s, http.MethodGet,
		"/api/parse?street=12+High+Street&suburb=carlton&state=VIC&postcode=3053", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp handlers.ParseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.StreetName != "High" {
		t.Errorf("StreetName = %q, want %q", resp.StreetName, "High")
	}
	if resp.Suburb != "Carlton" {
		t.Errorf("Suburb = %q, want %q", resp.Suburb, "Carlton")
	}
	if resp.ConfidenceLevel != 100 {
		t.Errorf("ConfidenceLevel = %d, want 100", resp.ConfidenceLevel)
	}
	if !resp.IsValid {
		t.Error("IsValid = false, want true")
	}
	if resp.Breakdown != nil {
		t.Error("Breakdown present without breakdown=true")
	}
}

func TestParseEndpointBreakdown(t *testing.T) {
	s := newTestServer(Options{})

	rec := doRequest(s, http.MethodGet, "/api/parse?street=12+High+Street&breakdown=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp handlers.ParseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Breakdown == nil {
		t.Fatal("Breakdown = nil, want itemized scoring")
	}
	if resp.Breakdown.FinalScore != resp.ConfidenceLevel {
		t.Errorf("Breakdown.FinalScore = %d, want %d", resp.Breakdown.FinalScore, resp.ConfidenceLevel)
	}
}

func TestParseEndpointRequiresInput(t *testing.T) {
	s := newTestServer(Options{})

	rec := doRequest(s, http.MethodGet, "/api/parse", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMatchEndpointUnavailable(t *testing.T) {
	s := newTestServer(Options{})

	rec := doRequest(s, http.MethodGet, "/api/match?street_name=High&suburb=Carlton", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(Options{Version: "1.0.0"})

	rec := doRequest(s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp handlers.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("Status = %q, want %q", resp.Status, "ok")
	}
	if resp.Version != "1.0.0" {
		t.Errorf("Version = %q, want %q", resp.Version, "1.0.0")
	}
	if resp.GNAF != "disabled" {
		t.Errorf("GNAF = %q, want %q", resp.GNAF, "disabled")
	}
	if resp.MLModel != "disabled" {
		t.Errorf("MLModel = %q, want %q", resp.MLModel, "disabled")
	}
}

func TestConfigEndpoint(t *testing.T) {
	s := newTestServer(Options{})

	rec := doRequest(s, http.MethodGet, "/api/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp handlers.ConfigResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	found := false
	for _, name := range resp.Schemas {
		if name == "default" {
			found = true
		}
	}
	if !found {
		t.Errorf("Schemas = %v, want to include %q", resp.Schemas, "default")
	}

	if strings.Contains(rec.Body.String(), "connection_url") {
		t.Error("config response leaks connection_url")
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	s := newTestServer(Options{APIKey: "secret"})

	rec := doRequest(s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-API-Key", "secret")
	withKey := httptest.NewRecorder()
	s.Handler().ServeHTTP(withKey, req)

	if withKey.Code != http.StatusOK {
		t.Errorf("status with key = %d, want %d", withKey.Code, http.StatusOK)
	}
}

func TestCORSHeader(t *testing.T) {
	s := newTestServer(Options{})

	rec := doRequest(s, http.MethodGet, "/api/health", "")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
}
