package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCompleteSendsRequestAndParsesResponse(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"gpt-4o-2024","choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))
	defer srv.Close()

	c := NewClient(WithAPIKey("sk-test"), WithURL(srv.URL), WithModel("gpt-4o", 2000))
	out, err := c.Complete(context.Background(), []Message{System("be brief"), User("hi")}, Options{Temperature: 0.3, MaxTokens: 500})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out.Content != "hello" || out.Model != "gpt-4o-2024" || out.Usage.TotalTokens != 4 {
		t.Fatalf("Complete = %+v", out)
	}
	if got.Model != "gpt-4o" || got.MaxTokens != 500 || got.Temperature != 0.3 {
		t.Fatalf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "hi" {
		t.Fatalf("request messages = %+v", got.Messages)
	}
}

func TestCompleteNon2xxIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(WithAPIKey("k"), WithURL(srv.URL)).Complete(context.Background(), []Message{User("x")}, Options{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusTooManyRequests || !strings.Contains(apiErr.Error(), "rate limited") {
		t.Fatalf("APIError = %+v", apiErr)
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	if _, err := NewClient(WithAPIKey("k"), WithURL(srv.URL)).Complete(context.Background(), nil, Options{}); err == nil {
		t.Fatal("Complete(no choices) error = nil")
	}
}

func TestCompleteWithoutKeyDoesNotCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(WithURL(srv.URL))
	if c.HasCredentials() {
		t.Fatal("HasCredentials() = true without key")
	}
	if _, err := c.Complete(context.Background(), nil, Options{}); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
	if called {
		t.Fatal("server called without an API key")
	}
}

func TestCompleteHonorsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(WithAPIKey("k"), WithURL(srv.URL), WithTimeout(50*time.Millisecond))
	if _, err := c.Complete(context.Background(), nil, Options{}); err == nil {
		t.Fatal("Complete against a hung server error = nil")
	}
}
