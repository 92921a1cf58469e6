package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/cache"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/telemetry"
	"resume-analyzer/internal/shared/util"
)

// cacheKeyVersion changes whenever the cached Result shape changes.
const cacheKeyVersion = "analysis:v1"

// Analyzer produces a Result for résumé text.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText string, jobDescription *string) (Result, error)
}

// AIAnalyzer scores résumés with an LLM and validates the reply against the feedback schema.
// Every failure is returned as *AIAnalysisError.
type AIAnalyzer struct {
	Client llm.Client
	// Cache, when set, holds validated results keyed by the exact inputs.
	Cache    cache.Cache
	Provider string
}

// NewAIAnalyzer constructs an AIAnalyzer. c may be nil.
func NewAIAnalyzer(client llm.Client, c cache.Cache, provider string) *AIAnalyzer {
	return &AIAnalyzer{Client: client, Cache: c, Provider: provider}
}

// Analyze calls the model, or returns a cached result for identical inputs.
func (a *AIAnalyzer) Analyze(ctx context.Context, resumeText string, jobDescription *string) (Result, error) {
	if a == nil || a.Client == nil {
		return Result{}, &AIAnalysisError{Kind: AIFailureUnavailable, Err: llm.ErrNotConfigured}
	}

	key := aiCacheKey(resumeText, jobDescription)
	if res, ok := a.cached(ctx, key); ok {
		return res, nil
	}

	start := time.Now()
	raw, err := a.Client.AnalyzeResume(ctx, llm.AnalyzeInput{ResumeText: resumeText, JobDescription: jobDescription})
	telemetry.Info("llm.call", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"provider":    a.Provider,
		"duration_ms": time.Since(start).Milliseconds(),
		"ok":          err == nil,
	})
	if err != nil {
		kind := AIFailureTransport
		if errors.Is(err, llm.ErrNotConfigured) {
			kind = AIFailureUnavailable
		} else if errors.Is(err, llm.ErrInvalidJSON) {
			kind = AIFailureInvalidResponse
		} else if isTimeout(err) {
			kind = AIFailureTimeout
		}
		return Result{}, &AIAnalysisError{Kind: kind, Err: err}
	}

	res, err := DecodeAIResult(raw)
	if err != nil {
		return Result{}, &AIAnalysisError{Kind: AIFailureInvalidResponse, Err: err}
	}

	a.store(ctx, key, res)
	return res, nil
}

func (a *AIAnalyzer) cached(ctx context.Context, key string) (Result, bool) {
	if a.Cache == nil {
		return Result{}, false
	}
	payload, ok, err := a.Cache.Get(ctx, key)
	if err != nil {
		telemetry.Warn("analysis.cache_error", map[string]any{"op": "get", "err": err})
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}
	res, err := DecodeAIResult(payload)
	if err != nil {
		telemetry.Warn("analysis.cache_error", map[string]any{"op": "decode", "err": err})
		return Result{}, false
	}
	metrics.IncAnalysisCacheHit()
	return res, true
}

func (a *AIAnalyzer) store(ctx context.Context, key string, res Result) {
	if a.Cache == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err == nil {
		err = a.Cache.Set(ctx, key, payload)
	}
	if err != nil {
		telemetry.Warn("analysis.cache_error", map[string]any{"op": "set", "err": err})
	}
}

func aiCacheKey(resumeText string, jobDescription *string) string {
	if jobDescription == nil {
		return util.HashKey(cacheKeyVersion, resumeText, "0")
	}
	return util.HashKey(cacheKeyVersion, resumeText, "1", *jobDescription)
}

type rawCategory struct {
	Score           *float64 `json:"score"`
	Summary         *string  `json:"summary"`
	Suggestions     []string `json:"suggestions"`
	MissingKeywords []string `json:"missingKeywords"`
	MissingSkills   []string `json:"missingSkills"`
}

type rawImprovement struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Before      *string `json:"before"`
	After       *string `json:"after"`
	Category    string  `json:"category"`
}

type rawTrendingSkill struct {
	Skill     *string  `json:"skill"`
	Relevance *float64 `json:"relevance"`
	Category  string   `json:"category"`
}

type rawFeedback struct {
	Grammar        *rawCategory       `json:"grammar"`
	ATS            *rawCategory       `json:"ats"`
	Formatting     *rawCategory       `json:"formatting"`
	Content        *rawCategory       `json:"content"`
	Skills         *rawCategory       `json:"skills"`
	Experience     *rawCategory       `json:"experience"`
	Improvements   []rawImprovement   `json:"improvements"`
	TrendingSkills []rawTrendingSkill `json:"trendingSkills"`
}

type rawResult struct {
	OverallScore *float64     `json:"overallScore"`
	Feedback     *rawFeedback `json:"feedback"`
}

// DecodeAIResult parses a model reply into a Result.
// Required fields must be present; scores are clamped to [0, 100].
func DecodeAIResult(raw []byte) (Result, error) {
	var parsed rawResult
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("decode ai response: %w", err)
	}
	if parsed.OverallScore == nil {
		return Result{}, errors.New("overallScore is required")
	}
	if parsed.Feedback == nil {
		return Result{}, errors.New("feedback is required")
	}
	fb := parsed.Feedback

	var out Feedback
	var err error
	if out.Grammar, err = decodeCategory(CategoryGrammar, fb.Grammar); err != nil {
		return Result{}, err
	}
	if out.ATS.CategoryFeedback, err = decodeCategory(CategoryATS, fb.ATS); err != nil {
		return Result{}, err
	}
	out.ATS.MissingKeywords = cleanSet(fb.ATS.MissingKeywords)
	if out.Formatting, err = decodeCategory(CategoryFormatting, fb.Formatting); err != nil {
		return Result{}, err
	}
	if out.Content, err = decodeCategory(CategoryContent, fb.Content); err != nil {
		return Result{}, err
	}
	if out.Skills.CategoryFeedback, err = decodeCategory(CategorySkills, fb.Skills); err != nil {
		return Result{}, err
	}
	out.Skills.MissingSkills = cleanSet(fb.Skills.MissingSkills)
	if out.Experience, err = decodeCategory(CategoryExperience, fb.Experience); err != nil {
		return Result{}, err
	}

	out.Improvements = make([]Improvement, 0, len(fb.Improvements))
	for i, imp := range fb.Improvements {
		if imp.Title == nil || imp.Description == nil {
			return Result{}, fmt.Errorf("feedback.improvements[%d]: title and description are required", i)
		}
		cat := Category(strings.ToLower(strings.TrimSpace(imp.Category)))
		if !cat.Valid() {
			return Result{}, fmt.Errorf("feedback.improvements[%d].category %q is not a known category", i, imp.Category)
		}
		out.Improvements = append(out.Improvements, Improvement{
			Title:       *imp.Title,
			Description: *imp.Description,
			Before:      nonBlank(imp.Before),
			After:       nonBlank(imp.After),
			Category:    cat,
		})
	}

	out.TrendingSkills = make([]TrendingSkill, 0, len(fb.TrendingSkills))
	for i, ts := range fb.TrendingSkills {
		if ts.Skill == nil || ts.Relevance == nil {
			return Result{}, fmt.Errorf("feedback.trendingSkills[%d]: skill and relevance are required", i)
		}
		cat := SkillCategory(strings.ToLower(strings.TrimSpace(ts.Category)))
		if !cat.Valid() {
			return Result{}, fmt.Errorf("feedback.trendingSkills[%d].category %q must be technical or soft", i, ts.Category)
		}
		out.TrendingSkills = append(out.TrendingSkills, TrendingSkill{
			Skill:     *ts.Skill,
			Relevance: ClampScore(*ts.Relevance),
			Category:  cat,
		})
	}

	return Result{
		OverallScore: ClampScore(*parsed.OverallScore),
		Feedback:     out.normalized(),
	}, nil
}

func decodeCategory(name Category, c *rawCategory) (CategoryFeedback, error) {
	if c == nil {
		return CategoryFeedback{}, fmt.Errorf("feedback.%s is required", name)
	}
	if c.Score == nil {
		return CategoryFeedback{}, fmt.Errorf("feedback.%s.score is required", name)
	}
	if c.Summary == nil {
		return CategoryFeedback{}, fmt.Errorf("feedback.%s.summary is required", name)
	}
	return CategoryFeedback{
		Score:       ClampScore(*c.Score),
		Summary:     *c.Summary,
		Suggestions: cleanStrings(c.Suggestions),
	}, nil
}

// cleanSet is cleanStrings with case-insensitive duplicates removed; the first spelling wins.
func cleanSet(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range cleanStrings(in) {
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nonBlank(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return p
}
