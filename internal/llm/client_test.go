package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Run("claude", func(t *testing.T) {
		c, err := NewClient(ProviderConfig{Type: ProviderClaude, Model: "claude-test", APIKey: "k"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := c.(*claudeClient); !ok {
			t.Errorf("expected claudeClient, got %T", c)
		}
	})

	t.Run("openai", func(t *testing.T) {
		c, err := NewClient(ProviderConfig{Type: ProviderOpenAI, Model: "gpt-test", APIKey: "k"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := c.(*openAIClient); !ok {
			t.Errorf("expected openAIClient, got %T", c)
		}
	})

	t.Run("missing model", func(t *testing.T) {
		if _, err := NewClient(ProviderConfig{Type: ProviderClaude, APIKey: "k"}); err == nil {
			t.Error("expected error for missing model")
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		if _, err := NewClient(ProviderConfig{Type: "mystery", Model: "m", APIKey: "k"}); err == nil {
			t.Error("expected error for unknown provider")
		}
	})
}

func TestClaudeClientComplete(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("x-api-key") != "test-key" {
				t.Errorf("missing API key header")
			}
			json.NewEncoder(w).Encode(map[string]any{
				"content": []map[string]string{{"type": "text", "text": `{"entities":[]}`}},
			})
		}))
		defer server.Close()

		c := &claudeClient{
			config:     ProviderConfig{Type: ProviderClaude, Model: "m", APIKey: "test-key"},
			httpClient: server.Client(),
			baseURL:    server.URL,
		}

		out, err := c.Complete(context.Background(), "hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != `{"entities":[]}` {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := &claudeClient{
			config:     ProviderConfig{Type: ProviderClaude, Model: "m", APIKey: "k", MaxRetries: 0},
			httpClient: server.Client(),
			baseURL:    server.URL,
		}

		if _, err := c.Complete(context.Background(), "hello"); err == nil {
			t.Error("expected error for 503 response")
		}
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer server.Close()

		c := &claudeClient{
			config:     ProviderConfig{Type: ProviderClaude, Model: "m", APIKey: "k", MaxRetries: 3},
			httpClient: server.Client(),
			baseURL:    server.URL,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := c.Complete(ctx, "hello")
		if err == nil {
			t.Fatal("expected error")
		}
		// Cancellation must short-circuit the 1s+2s+4s backoff schedule.
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("retry loop ignored cancellation, took %v", elapsed)
		}
	})
}

func TestOpenAIClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %+v", req.ResponseFormat)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"ok":true}`}},
			},
		})
	}))
	defer server.Close()

	c := &openAIClient{
		config:     ProviderConfig{Type: ProviderOpenAI, Model: "m", APIKey: "test-key"},
		httpClient: server.Client(),
		baseURL:    server.URL,
	}

	out, err := c.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("unexpected output: %q", out)
	}
}
