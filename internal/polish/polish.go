// Package polish rewrites free-text notes through an OpenAI-compatible chat
// completions API (Groq by default).
package polish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL    = "https://api.groq.com/openai/v1/"
	DefaultModel      = "llama3-8b-8192"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 1

	maxTokens   = 400
	temperature = 0.3
	redacted    = "[REDACTED]"
)

var (
	ErrNotConfigured = errors.New("text polishing is not configured")
	ErrEmptyResponse = errors.New("polishing service returned no text")
)

type Intent string

const (
	IntentActivity Intent = "activity"
	IntentGoal     Intent = "goal"
)

// ParseIntent maps a request value to an Intent. Empty means IntentActivity.
func ParseIntent(s string) (Intent, error) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case "", IntentActivity:
		return IntentActivity, nil
	case IntentGoal:
		return IntentGoal, nil
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

var prompts = map[Intent]string{
	IntentActivity: "You edit short lab progress updates written by students. " +
		"Rewrite the update so it is clear and concise, keeping every fact, number and name. " +
		"Mention data collected, blockers and next steps when the draft contains them. " +
		"Reply with the rewritten update only.",
	IntentGoal: "You edit goal descriptions for a research lab. " +
		"Rewrite the description so the objective and the expected outcome are clear. " +
		"Keep every fact and do not invent deadlines. Reply with the rewritten description only.",
}

type Request struct {
	Text string
	// Model overrides the configured model when set.
	Model  string
	Intent Intent
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// Error is returned for failed requests. Its message never contains the API
// key.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return "polish request failed: " + e.Message
	}
	return fmt.Sprintf("polish request failed (status %d): %s", e.StatusCode, e.Message)
}

type Client struct {
	client openai.Client
	apiKey string
	model  string
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		client: openai.NewClient(opts...),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Polish sends one chat completion and returns the rewritten text. Transient
// failures (connection errors, 408, 409, 429, 5xx) are retried up to the
// configured budget; each attempt is bounded by the configured timeout.
func (c *Client) Polish(ctx context.Context, req Request) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", errors.New("text is required")
	}

	intent := req.Intent
	if intent == "" {
		intent = IntentActivity
	}
	system, ok := prompts[intent]
	if !ok {
		return "", fmt.Errorf("unknown intent %q", intent)
	}

	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", c.wrap(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	polished := strings.TrimSpace(resp.Choices[0].Message.Content)
	if polished == "" {
		return "", ErrEmptyResponse
	}

	return polished, nil
}

func (c *Client) wrap(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &Error{StatusCode: apiErr.StatusCode, Message: c.redact(msg)}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Message: "request timed out"}
	}
	return &Error{Message: c.redact(err.Error())}
}

func (c *Client) redact(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, c.apiKey, redacted)
}
