package analyses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/telemetry"
)

const (
	StatusValidating         = "validating"
	StatusAnalyzingAI        = "analyzing_ai"
	StatusAnalyzingHeuristic = "analyzing_heuristic"
	StatusPersisting         = "persisting"
	StatusDone               = "done"
)

// DefaultAITimeout bounds a single AI analysis.
const DefaultAITimeout = 30 * time.Second

// Service runs the analysis pipeline and serves stored analyses.
type Service struct {
	Repo Repo
	// AI may be nil, in which case every run uses the heuristic.
	AI        Analyzer
	AITimeout time.Duration
}

// RunInput is a request to analyze résumé text.
type RunInput struct {
	ResumeText     string
	JobDescription *string
}

// RunResult is a persisted analysis plus whether the heuristic produced it.
type RunResult struct {
	Analysis Analysis
	IsDemo   bool
}

// Run validates, analyzes and persists a résumé.
// AI failures fall back to the heuristic and are never returned.
func (s *Service) Run(ctx context.Context, in RunInput) (RunResult, error) {
	start := time.Now()
	s.transition(ctx, "", StatusValidating)

	if v := ValidateResumeText(in.ResumeText); !v.Valid {
		metrics.IncAnalysisRejected()
		telemetry.Info("analysis.rejected", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"field":      v.Field,
			"reason":     v.Reason,
		})
		return RunResult{}, v.Err()
	}

	s.transition(ctx, StatusValidating, StatusAnalyzingAI)
	result, aiErr := s.analyzeAI(ctx, in)

	isDemo := false
	from := StatusAnalyzingAI
	if aiErr != nil {
		// The caller went away; don't persist a record nobody asked for.
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		logAIFailure(ctx, aiErr)
		metrics.IncAnalysisFallback()

		s.transition(ctx, StatusAnalyzingAI, StatusAnalyzingHeuristic)
		result = AnalyzeHeuristic(in.ResumeText)
		isDemo = true
		from = StatusAnalyzingHeuristic
	} else {
		metrics.IncAnalysisAI()
	}

	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}
	result = result.normalized()

	s.transition(ctx, from, StatusPersisting)
	analysis, err := s.Repo.Create(ctx, NewAnalysis{
		ResumeText:     in.ResumeText,
		JobDescription: in.JobDescription,
		OverallScore:   result.OverallScore,
		Feedback:       result.Feedback,
	})
	if err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Error("analysis.persist_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"err":        err,
		})
		return RunResult{}, fmt.Errorf("persist analysis: %w", err)
	}

	s.transition(ctx, StatusPersisting, StatusDone)
	metrics.ObserveAnalysisDuration(time.Since(start))
	telemetry.Info("analysis.completed", map[string]any{
		"request_id":    requestIDFromContext(ctx),
		"analysis_id":   analysis.ID,
		"overall_score": analysis.OverallScore,
		"is_demo":       isDemo,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return RunResult{Analysis: analysis, IsDemo: isDemo}, nil
}

func (s *Service) analyzeAI(ctx context.Context, in RunInput) (Result, error) {
	if s.AI == nil {
		return Result{}, &AIAnalysisError{Kind: AIFailureUnavailable, Err: errors.New("no analyzer configured")}
	}
	timeout := s.AITimeout
	if timeout <= 0 {
		timeout = DefaultAITimeout
	}
	aiCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := s.AI.Analyze(aiCtx, in.ResumeText, in.JobDescription)
	if err != nil {
		var aiErr *AIAnalysisError
		if !errors.As(err, &aiErr) {
			aiErr = &AIAnalysisError{Kind: AIFailureTransport, Err: err}
			err = aiErr
		}
		if aiErr.Kind == AIFailureTransport && isTimeout(aiErr) {
			aiErr.Kind = AIFailureTimeout
		}
		return Result{}, err
	}
	return res, nil
}

func logAIFailure(ctx context.Context, err error) {
	kind := AIFailureTransport
	var aiErr *AIAnalysisError
	if errors.As(err, &aiErr) {
		kind = aiErr.Kind
	}
	telemetry.Warn("analysis.ai_failed", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"kind":       string(kind),
		"err":        err,
	})
}

func (s *Service) transition(ctx context.Context, from, to string) {
	transition := to
	if from != "" {
		transition = from + "->" + to
	}
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"status":            to,
		"status_transition": transition,
	})
}

// Get returns an analysis by ID.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, analysisID)
}

// Recent returns the newest analyses; limit is clamped by ClampRecentLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]Analysis, error) {
	return s.Repo.ListRecent(ctx, ClampRecentLimit(limit))
}
