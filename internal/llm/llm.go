package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// DefaultTemperature keeps analyses close to deterministic while allowing some phrasing variety.
const DefaultTemperature float32 = 0.3

// Client abstracts LLM providers for resume analysis.
type Client interface {
	AnalyzeResume(ctx context.Context, input AnalyzeInput) (json.RawMessage, error)
}

// AnalyzeInput captures the inputs needed for resume analysis.
// A nil JobDescription means no target role was supplied.
type AnalyzeInput struct {
	ResumeText     string
	JobDescription *string
}

// HasJobDescription reports whether the input carries a non-blank job description.
func (in AnalyzeInput) HasJobDescription() bool {
	return in.JobDescription != nil && trimmed(*in.JobDescription) != ""
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM provider not configured")

// PlaceholderClient stands in when no provider credentials are configured.
type PlaceholderClient struct{}

// AnalyzeResume returns ErrNotConfigured.
func (PlaceholderClient) AnalyzeResume(ctx context.Context, input AnalyzeInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotConfigured
}
