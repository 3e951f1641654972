package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/observability"
	"resumeforge/internal/types"
)

// newTestServer builds a server with no oracle, no auth, and disabled
// observability, so handlers run the local pipeline end to end.
func newTestServer(t *testing.T, actionLimit *config.ActionLimitConfig) (*Server, *http.ServeMux) {
	t.Helper()

	logger, err := forgeErrors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	appCfg := &config.Config{}
	s := NewServer(appCfg, ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		Version:        "test",
		MaxRequestSize: 1 << 20,
		ActionLimit:    actionLimit,
	}, logger)
	t.Cleanup(func() {
		if s.ActionLimiter != nil {
			s.ActionLimiter.Close()
		}
		s.Previews.Close()
	})

	om, err := observability.NewObservabilityManager(
		observability.ObservabilityConfig{Enabled: false}, appCfg)
	if err != nil {
		t.Fatalf("failed to create observability manager: %v", err)
	}

	return s, s.setupRoutes(om)
}

func postJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestGenerateHandlerRejectsInvalidType(t *testing.T) {
	_, mux := newTestServer(t, nil)

	rec := postJSON(mux, "/api/generate", `{"type":"poem","formData":{"firstName":"Ada","lastName":"Lovelace"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "Invalid type" {
		t.Errorf("error = %q, want %q", resp.Error, "Invalid type")
	}
}

func TestGenerateHandlerRejectsBadContentType(t *testing.T) {
	_, mux := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGenerateHandlerBuildsResumeWithoutOracle(t *testing.T) {
	_, mux := newTestServer(t, nil)

	rec := postJSON(mux, "/api/generate", `{
		"type": "resume",
		"formData": {
			"firstName": "Ada",
			"lastName": "Lovelace",
			"email": "ada@example.com",
			"city": "London",
			"summary": "wrote the first published algorithm",
			"skills": ["analytical engines", "mathematics"],
			"experienceList": [{
				"position": "Analyst",
				"company": "Babbage & Co",
				"start": "1840",
				"end": "1843",
				"bullets": ["Documented the Analytical Engine"]
			}]
		}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var result types.BuildResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode build result: %v", err)
	}
	if result.Output == "" {
		t.Error("output should not be empty")
	}
	if !strings.Contains(result.Output, "Ada Lovelace") {
		t.Error("output should contain the candidate name")
	}
	if result.ATSScore <= 0 {
		t.Errorf("ats_score = %d, want > 0", result.ATSScore)
	}
}

func TestGenerateHandlerResolvesInlineForm(t *testing.T) {
	_, mux := newTestServer(t, nil)

	// Older clients put form fields at the top level instead of formData.
	rec := postJSON(mux, "/api/generate", `{
		"type": "resume",
		"firstName": "Grace",
		"lastName": "Hopper",
		"email": "grace@example.com",
		"skills": ["compilers"]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var result types.BuildResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode build result: %v", err)
	}
	if !strings.Contains(result.Output, "Grace Hopper") {
		t.Error("output should contain the inline-form candidate name")
	}
}

func TestGenerateHandlerCoverUsesTextKey(t *testing.T) {
	_, mux := newTestServer(t, nil)

	rec := postJSON(mux, "/api/generate", `{
		"type": "cover",
		"formData": {
			"firstName": "Ada",
			"lastName": "Lovelace",
			"companyName": "Babbage & Co",
			"job_title": "Analyst"
		}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode cover response: %v", err)
	}
	if _, ok := raw["text"]; !ok {
		t.Error(`cover response should carry plain text under "text"`)
	}
	if _, ok := raw["plain_text"]; ok {
		t.Error(`cover response should not carry "plain_text"`)
	}
}

func TestGenerateHandlerEnforcesActionLimit(t *testing.T) {
	_, mux := newTestServer(t, &config.ActionLimitConfig{
		Enabled: true,
		Limit:   1,
		Window:  time.Hour,
	})

	body := `{"type":"resume","formData":{"firstName":"Ada","lastName":"Lovelace","skills":["math"]}}`
	if rec := postJSON(mux, "/api/generate", body); rec.Code != http.StatusOK {
		t.Fatalf("first build: status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec := postJSON(mux, "/api/generate", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second build: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	// The limit body mirrors a build result so clients render the message.
	var result types.BuildResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode limit response: %v", err)
	}
	if result.Error != "Generation limit reached." {
		t.Errorf("error = %q, want %q", result.Error, "Generation limit reached.")
	}
	if result.Output != "" {
		t.Error("limited response should carry no document")
	}
}

func TestExportHandlerRequiresPayment(t *testing.T) {
	_, mux := newTestServer(t, nil)

	rec := postJSON(mux, "/api/export/docx", `{"html":"<p>My Resume</p>","type":"resume"}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusPaymentRequired)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "payment_required" {
		t.Errorf("error = %q, want %q", resp.Error, "payment_required")
	}
}

func TestExportHandlerRequiresHTML(t *testing.T) {
	_, mux := newTestServer(t, nil)

	rec := postJSON(mux, "/api/export/docx", `{"html":"   ","type":"resume","token":"tok_12345678901234567890"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "html_required" {
		t.Errorf("error = %q, want %q", resp.Error, "html_required")
	}
}

func TestExportHandlerReturnsDocx(t *testing.T) {
	_, mux := newTestServer(t, nil)

	rec := postJSON(mux, "/api/export/docx",
		`{"html":"<h1>Ada Lovelace</h1><p>Analyst</p>","type":"resume","token":"tok_12345678901234567890"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "resume.docx") {
		t.Errorf("Content-Disposition = %q, want resume.docx attachment", got)
	}
	if rec.Body.Len() == 0 {
		t.Error("response body should carry the DOCX bytes")
	}
}

func TestPreviewRoundTrip(t *testing.T) {
	_, mux := newTestServer(t, nil)

	rec := postJSON(mux, "/api/preview", `{"html":"<p>My Resume</p>","type":"resume"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("store: status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var stored struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
		t.Fatalf("failed to decode store response: %v", err)
	}
	if stored.ID == "" || stored.URL != "/api/preview/"+stored.ID {
		t.Fatalf("unexpected store response: %+v", stored)
	}

	fetchReq := httptest.NewRequest(http.MethodGet, stored.URL, nil)
	fetchRec := httptest.NewRecorder()
	mux.ServeHTTP(fetchRec, fetchReq)

	if fetchRec.Code != http.StatusOK {
		t.Fatalf("fetch: status = %d, want %d", fetchRec.Code, http.StatusOK)
	}
	if ct := fetchRec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(fetchRec.Body.String(), "<p>My Resume</p>") {
		t.Error("preview should contain the stored document")
	}
	if !strings.Contains(fetchRec.Body.String(), defaultWatermark) {
		t.Error("preview should be watermarked")
	}
}

func TestPreviewStoreRequiresHTML(t *testing.T) {
	_, mux := newTestServer(t, nil)

	rec := postJSON(mux, "/api/preview", `{"html":"","type":"resume"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPreviewFetchUnknownID(t *testing.T) {
	_, mux := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/preview/no-such-id", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
