package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/server/respond"
)

func setupAnalysisRouter(t *testing.T, ai Analyzer) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	h := NewHandler(&Service{Repo: repo, AI: ai})
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r, repo
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) respond.ErrorBody {
	t.Helper()
	var body struct {
		Error struct {
			Code    string              `json:"code"`
			Message string              `json:"message"`
			Details []map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, resp.Body.String())
	}
	return respond.ErrorBody{Code: body.Error.Code, Message: body.Error.Message, Details: body.Error.Details}
}

func TestAnalyzeResumeValidation(t *testing.T) {
	router, repo := setupAnalysisRouter(t, nil)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing text", `{}`, ReasonResumeRequired},
		{"blank text", `{"resumeText": "   "}`, ReasonResumeRequired},
		{"short text", `{"resumeText": "Jane Doe"}`, ReasonResumeTooShort},
		{"wrong type", `{"resumeText": 42}`, "Invalid request body"},
		{"not json", `resumeText=hello`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, router, "/api/analyze-resume", tt.body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
			body := decodeError(t, resp)
			if body.Code != ErrorCodeValidation || body.Message != tt.message {
				t.Fatalf("unexpected error %+v", body)
			}
			if details, ok := body.Details.([]map[string]string); !ok || len(details) != 1 {
				t.Fatalf("expected one detail entry, got %#v", body.Details)
			}
		})
	}
	if list, _ := repo.ListRecent(context.Background(), 10); len(list) != 0 {
		t.Fatalf("expected no records, got %d", len(list))
	}
}

func TestAnalyzeResumeDemoResponse(t *testing.T) {
	router, _ := setupAnalysisRouter(t, analyzerFunc(func(context.Context, string, *string) (Result, error) {
		return Result{}, &AIAnalysisError{Kind: AIFailureTransport, Err: errors.New("boom")}
	}))

	payload, _ := json.Marshal(map[string]string{"resumeText": sampleResume})
	resp := postJSON(t, router, "/api/analyze-resume", string(payload))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"id", "overallScore", "feedback", "createdAt", "isDemo"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("response missing %q: %v", key, body)
		}
	}
	if body["isDemo"] != true {
		t.Fatalf("expected isDemo=true, got %v", body["isDemo"])
	}
	if strings.Contains(resp.Body.String(), "boom") {
		t.Fatalf("AI failure details leaked to the client")
	}
}

func TestAnalyzeResumeStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &Service{Repo: failingRepo{MemoryRepo: NewMemoryRepo(), err: errors.New("db down")}}
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))

	payload, _ := json.Marshal(map[string]string{"resumeText": sampleResume})
	resp := postJSON(t, r, "/api/analyze-resume", string(payload))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	body := decodeError(t, resp)
	if body.Code != ErrorCodeInternal || body.Message != "Failed to analyze resume. Please try again." {
		t.Fatalf("unexpected error %+v", body)
	}
}

func TestGetAnalysis(t *testing.T) {
	router, repo := setupAnalysisRouter(t, nil)
	created, err := repo.Create(context.Background(), sampleNewAnalysis(sampleResume))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/"+created.ID, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got Analysis
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != created.ID || got.ResumeText != sampleResume || got.JobDescription != nil {
		t.Fatalf("unexpected analysis %+v", got)
	}
	if !strings.Contains(resp.Body.String(), `"jobDescription":null`) {
		t.Fatalf("expected explicit null job description, got %s", resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/analysis/does-not-exist", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if body := decodeError(t, resp); body.Code != ErrorCodeNotFound || body.Message != "Analysis not found" {
		t.Fatalf("unexpected error %+v", body)
	}
}

func TestRecentAnalysesLimit(t *testing.T) {
	router, repo := setupAnalysisRouter(t, nil)
	for i := 0; i < 60; i++ {
		if _, err := repo.Create(context.Background(), sampleNewAnalysis(sampleResume)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", DefaultRecentLimit},
		{"?limit=3", 3},
		{"?limit=abc", DefaultRecentLimit},
		{"?limit=-1", DefaultRecentLimit},
		{"?limit=500", MaxRecentLimit},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/recent-analyses"+tt.query, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", tt.query, resp.Code)
		}
		var list []Analysis
		if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
			t.Fatalf("%q: decode: %v", tt.query, err)
		}
		if len(list) != tt.want {
			t.Fatalf("%q: got %d records, want %d", tt.query, len(list), tt.want)
		}
	}
}

func TestRecentAnalysesEmptyIsArray(t *testing.T) {
	router, _ := setupAnalysisRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/recent-analyses", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if strings.TrimSpace(resp.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", resp.Body.String())
	}
}
