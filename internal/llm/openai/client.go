package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/telemetry"
)

const (
	defaultModel   = "gpt-4o"
	defaultTimeout = 60 * time.Second
)

// apiURL is a var so tests can point the client at an httptest server.
var apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey string
	model  string
	http   *resty.Client
}

// NewClient constructs a new OpenAI client. An empty model selects gpt-4o.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		http:   resty.New().SetTimeout(timeout),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// AnalyzeResume sends the analysis prompt and returns the model's JSON payload.
func (c *Client) AnalyzeResume(ctx context.Context, input llm.AnalyzeInput) (json.RawMessage, error) {
	messages := llm.BuildPrompt(input)
	reqMessages := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	temp := llm.DefaultTemperature
	reqBody := chatRequest{
		Model:          c.model,
		Messages:       reqMessages,
		Temperature:    &temp,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post(apiURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("openai request timeout: %w", err)
		}
		return nil, fmt.Errorf("openai request: %w", err)
	}

	body := resp.String()
	if msg := gjson.Get(body, "error.message"); msg.Exists() {
		return nil, fmt.Errorf("openai error status=%d: %s (%s)", resp.StatusCode(), msg.String(), gjson.Get(body, "error.type").String())
	}
	if resp.IsError() {
		return nil, fmt.Errorf("openai error status=%d", resp.StatusCode())
	}

	choice := gjson.Get(body, "choices.0.message.content")
	if !choice.Exists() {
		return nil, fmt.Errorf("openai response missing choices")
	}
	logUsage(c.model, body)

	raw, err := llm.ExtractJSON(choice.String())
	if err != nil {
		return nil, fmt.Errorf("openai response content: %w", err)
	}
	return raw, nil
}

func logUsage(model, body string) {
	usage := gjson.Get(body, "usage")
	fields := map[string]any{
		"provider": "openai",
		"model":    model,
	}
	if usage.Exists() {
		fields["prompt_tokens"] = usage.Get("prompt_tokens").Int()
		fields["completion_tokens"] = usage.Get("completion_tokens").Int()
		fields["total_tokens"] = usage.Get("total_tokens").Int()
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Client = (*Client)(nil)
