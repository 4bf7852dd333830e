// Package llm is a minimal chat completion client for OpenAI-compatible
// endpoints. It makes exactly one request per call and never retries.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agusx1211/promptarena/internal/debug"
)

// ErrNoAPIKey is returned before any request when no key is configured.
var ErrNoAPIKey = errors.New("no API key configured (set PROMPTARENA_API_KEY or api.key)")

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System and User build messages.
func System(content string) Message { return Message{Role: "system", Content: content} }
func User(content string) Message   { return Message{Role: "user", Content: content} }

// Options are per-request generation settings. Zero Model and MaxTokens fall
// back to the client defaults.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Usage is token accounting reported by the endpoint.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is a successful response.
type Completion struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
	Model   string `json:"model"`
}

// Completer is implemented by Client and by test fakes.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (Completion, error)
}

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("chat completion: HTTP %d: %s", e.Status, body)
}

// Client calls a chat completions endpoint.
type Client struct {
	apiKey     string
	url        string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// NewClient returns a client for the OpenAI chat completions endpoint unless
// overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:        "https://api.openai.com/v1/chat/completions",
		model:      "gpt-4o",
		maxTokens:  2000,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithURL sets the full chat completions URL.
func WithURL(url string) Option {
	return func(c *Client) {
		c.url = url
	}
}

func WithModel(model string, maxTokens int) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
		if maxTokens > 0 {
			c.maxTokens = maxTokens
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// HasCredentials reports whether an API key is configured.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Complete sends messages and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (Completion, error) {
	if c.apiKey == "" {
		return Completion{}, ErrNoAPIKey
	}
	if opts.Model == "" {
		opts.Model = c.model
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = c.maxTokens
	}

	body, err := json.Marshal(chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("encoding chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	debug.LogKV("llm", "request", "model", opts.Model, "messages", len(messages), "max_tokens", opts.MaxTokens)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		debug.LogKV("llm", "transport error", "error", err)
		return Completion{}, fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Completion{}, fmt.Errorf("reading chat response: %w", err)
	}
	debug.LogKV("llm", "response", "status", resp.StatusCode, "bytes", len(raw), "elapsed", time.Since(started))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Completion{}, &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Completion{}, fmt.Errorf("decoding chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return Completion{}, fmt.Errorf("chat completion: response has no choices")
	}
	return Completion{
		Content: out.Choices[0].Message.Content,
		Usage:   out.Usage,
		Model:   out.Model,
	}, nil
}
