package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyInput rejects blank descriptions and empty summaries before any request is made.
	ErrEmptyInput = errors.New("input is empty")
	// ErrNotConfigured means no API key was provided.
	ErrNotConfigured = errors.New("llm api key not configured")
)

// UpstreamError wraps any failure talking to the model. Status and Body are for logs only.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("llm %s: upstream status %d: %s", e.Op, e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("llm %s: upstream failure", e.Op)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: 60 * time.Second,
	}
}

// Client talks to an OpenAI-compatible chat completions endpoint. It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        logrus.FieldLogger
}

func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	def := DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = def.BaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.WithField("component", "llm"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const maxErrorBody = 512

// completeJSON sends one chat completion and decodes the model's JSON answer into out.
// There is exactly one attempt.
func (c *Client) completeJSON(ctx context.Context, op, system, user string, out any) error {
	if c.apiKey == "" {
		return &UpstreamError{Op: op, Err: ErrNotConfigured}
	}
	start := time.Now()
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.4,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Op: op, Status: resp.StatusCode, Body: excerpt(raw)}
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("decode completion: %w", err)}
	}
	if cr.Error != nil {
		return &UpstreamError{Op: op, Err: errors.New(cr.Error.Message)}
	}
	if len(cr.Choices) == 0 {
		return &UpstreamError{Op: op, Err: errors.New("no completion returned")}
	}
	content := stripFences(cr.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("decode answer: %w", err), Body: excerpt([]byte(content))}
	}
	c.log.WithFields(logrus.Fields{"op": op, "model": c.model, "took": time.Since(start).Round(time.Millisecond)}).Debug("completion")
	return nil
}

// stripFences removes a ```json ... ``` wrapper some models add despite json_object mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func excerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "…"
	}
	return s
}
