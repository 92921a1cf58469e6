package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/cache"
)

type stubLLM struct {
	resp  string
	err   error
	calls atomic.Int32
	last  llm.AnalyzeInput
}

func (s *stubLLM) AnalyzeResume(ctx context.Context, input llm.AnalyzeInput) (json.RawMessage, error) {
	s.calls.Add(1)
	s.last = input
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.resp), nil
}

const validAIResponse = `{
  "overallScore": 78.6,
  "feedback": {
    "grammar": {"score": 90, "summary": "Clean", "suggestions": ["Use active voice"]},
    "ats": {"score": 120, "summary": "Keyword rich", "suggestions": [], "missingKeywords": ["Kubernetes", " "]},
    "formatting": {"score": 80, "summary": "Tidy", "suggestions": []},
    "content": {"score": -5, "summary": "Thin", "suggestions": ["Add metrics"]},
    "skills": {"score": 70, "summary": "Solid", "suggestions": [], "missingSkills": ["Terraform"]},
    "experience": {"score": 75, "summary": "Relevant", "suggestions": []},
    "improvements": [
      {"title": "Quantify", "description": "Add numbers", "before": "Did work", "after": "Cut costs 20%", "category": "Content"},
      {"title": "Keywords", "description": "Mirror the posting", "before": "", "category": "ats"}
    ],
    "trendingSkills": [
      {"skill": "Go", "relevance": 101, "category": "technical"},
      {"skill": "Mentoring", "relevance": 64.4, "category": "soft"}
    ]
  }
}`

func TestDecodeAIResultClampsAndNormalizes(t *testing.T) {
	res, err := DecodeAIResult([]byte(validAIResponse))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.OverallScore != 79 {
		t.Fatalf("overall = %d, want 79", res.OverallScore)
	}
	fb := res.Feedback
	if fb.ATS.Score != 100 || fb.Content.Score != 0 {
		t.Fatalf("expected clamped scores, got ats=%d content=%d", fb.ATS.Score, fb.Content.Score)
	}
	if len(fb.ATS.MissingKeywords) != 1 || fb.ATS.MissingKeywords[0] != "Kubernetes" {
		t.Fatalf("unexpected missing keywords %v", fb.ATS.MissingKeywords)
	}
	if fb.Formatting.Suggestions == nil {
		t.Fatalf("expected empty suggestions slice, got nil")
	}
	if fb.Improvements[0].Category != CategoryContent {
		t.Fatalf("expected category to be lower-cased, got %q", fb.Improvements[0].Category)
	}
	if fb.Improvements[1].Before != nil || fb.Improvements[1].After != nil {
		t.Fatalf("expected blank before/after to be dropped")
	}
	if fb.TrendingSkills[0].Relevance != 100 || fb.TrendingSkills[1].Relevance != 64 {
		t.Fatalf("unexpected relevance %+v", fb.TrendingSkills)
	}
}

func TestDecodeAIResultClampsOverallScore(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`"overallScore": 150,`, 100},
		{`"overallScore": -10,`, 0},
		{`"overallScore": 100,`, 100},
		{`"overallScore": 0,`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res, err := DecodeAIResult([]byte(strings.Replace(validAIResponse, `"overallScore": 78.6,`, tt.raw, 1)))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if res.OverallScore != tt.want {
				t.Fatalf("overall = %d, want %d", res.OverallScore, tt.want)
			}
		})
	}
}

func TestDecodeAIResultDeduplicatesKeywordSets(t *testing.T) {
	raw := strings.Replace(validAIResponse, `"missingKeywords": ["Kubernetes", " "]`, `"missingKeywords": ["Kubernetes", "kubernetes ", "Docker", "KUBERNETES"]`, 1)
	raw = strings.Replace(raw, `"missingSkills": ["Terraform"]`, `"missingSkills": ["Terraform", "terraform", "Go"]`, 1)

	res, err := DecodeAIResult([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := res.Feedback.ATS.MissingKeywords; len(got) != 2 || got[0] != "Kubernetes" || got[1] != "Docker" {
		t.Fatalf("unexpected missing keywords %v", got)
	}
	if got := res.Feedback.Skills.MissingSkills; len(got) != 2 || got[0] != "Terraform" || got[1] != "Go" {
		t.Fatalf("unexpected missing skills %v", got)
	}
}

func TestDecodeAIResultRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{"invalid json", func(string) string { return "{not json" }, "decode ai response"},
		{"missing overall", func(s string) string { return strings.Replace(s, `"overallScore": 78.6,`, "", 1) }, "overallScore"},
		{"missing feedback", func(string) string { return `{"overallScore": 70}` }, "feedback is required"},
		{"missing category", func(s string) string {
			return strings.Replace(s, `"formatting": {"score": 80, "summary": "Tidy", "suggestions": []},`, "", 1)
		}, "feedback.formatting"},
		{"missing summary", func(s string) string {
			return strings.Replace(s, `"score": 75, "summary": "Relevant", `, `"score": 75, `, 1)
		}, "feedback.experience.summary"},
		{"string score", func(s string) string { return strings.Replace(s, `"score": 90`, `"score": "90"`, 1) }, "decode ai response"},
		{"unknown improvement category", func(s string) string {
			return strings.Replace(s, `"category": "ats"}`, `"category": "tone"}`, 1)
		}, "improvements[1].category"},
		{"bad skill category", func(s string) string {
			return strings.Replace(s, `"category": "soft"`, `"category": "hard"`, 1)
		}, "trendingSkills[1].category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAIResult([]byte(tt.mutate(validAIResponse)))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAIAnalyzerErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		client llm.Client
		want   AIFailureKind
	}{
		{"nil client", nil, AIFailureUnavailable},
		{"placeholder", llm.PlaceholderClient{}, AIFailureUnavailable},
		{"transport", &stubLLM{err: errors.New("openai status=503")}, AIFailureTransport},
		{"not json", &stubLLM{err: llm.ErrInvalidJSON}, AIFailureInvalidResponse},
		{"deadline", &stubLLM{err: fmt.Errorf("openai request: %w", context.DeadlineExceeded)}, AIFailureTimeout},
		{"schema", &stubLLM{resp: `{"overallScore": 50}`}, AIFailureInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAIAnalyzer(tt.client, nil, "test")
			_, err := a.Analyze(context.Background(), "resume", nil)
			if !errors.Is(err, ErrAIAnalysis) {
				t.Fatalf("expected ErrAIAnalysis, got %v", err)
			}
			var aiErr *AIAnalysisError
			if !errors.As(err, &aiErr) || aiErr.Kind != tt.want {
				t.Fatalf("expected kind %q, got %v", tt.want, err)
			}
		})
	}
}

func TestAIAnalyzerPassesJobDescription(t *testing.T) {
	client := &stubLLM{resp: validAIResponse}
	jd := "Backend engineer, Go"
	if _, err := NewAIAnalyzer(client, nil, "test").Analyze(context.Background(), "resume", &jd); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if client.last.JobDescription == nil || *client.last.JobDescription != jd {
		t.Fatalf("expected job description to reach the client, got %+v", client.last)
	}
}

func TestAIAnalyzerCachesValidatedResults(t *testing.T) {
	lru, err := cache.NewLRU(8)
	if err != nil {
		t.Fatalf("new lru: %v", err)
	}
	client := &stubLLM{resp: validAIResponse}
	a := NewAIAnalyzer(client, lru, "test")

	first, err := a.Analyze(context.Background(), "resume", nil)
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	second, err := a.Analyze(context.Background(), "resume", nil)
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if client.calls.Load() != 1 {
		t.Fatalf("expected one provider call, got %d", client.calls.Load())
	}
	if first.OverallScore != second.OverallScore || second.Feedback.ATS.MissingKeywords[0] != "Kubernetes" {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}

	// Empty job description is a different input than none.
	empty := ""
	if _, err := a.Analyze(context.Background(), "resume", &empty); err != nil {
		t.Fatalf("analyze with empty jd: %v", err)
	}
	if client.calls.Load() != 2 {
		t.Fatalf("expected cache miss for a different job description, got %d calls", client.calls.Load())
	}
}

func TestAIAnalyzerDoesNotCacheFailures(t *testing.T) {
	lru, err := cache.NewLRU(8)
	if err != nil {
		t.Fatalf("new lru: %v", err)
	}
	client := &stubLLM{resp: `{"overallScore": 50}`}
	a := NewAIAnalyzer(client, lru, "test")
	for i := 0; i < 2; i++ {
		if _, err := a.Analyze(context.Background(), "resume", nil); err == nil {
			t.Fatalf("expected schema failure")
		}
	}
	if lru.Len() != 0 {
		t.Fatalf("expected nothing cached, got %d entries", lru.Len())
	}
	if client.calls.Load() != 2 {
		t.Fatalf("expected two provider calls, got %d", client.calls.Load())
	}
}
