package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens/internal/domain"
)

func testModelConfig() domain.ModelConfig {
	return domain.ModelConfig{Model: "gpt-4-turbo", MaxOutputTokens: 100, Temperature: 0.7}
}

func TestChatClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4-turbo" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "## Analysis\nStrong team."}},
			},
			"usage": map[string]int{"prompt_tokens": 50, "completion_tokens": 20},
		})
	}))
	defer server.Close()

	c := NewChatClient("test-key", server.URL, zap.NewNop())

	out, err := c.Complete(context.Background(), "You are an analyst.", "Analyze this.", testModelConfig())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out != "## Analysis\nStrong team." {
		t.Errorf("unexpected completion: %q", out)
	}
}

func TestChatClient_NoSystemPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected single user message, got %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer server.Close()

	c := NewChatClient("test-key", server.URL, zap.NewNop())

	if _, err := c.Complete(context.Background(), "", "just user", testModelConfig()); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestChatClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "backend exploded", "type": "server_error"},
		})
	}))
	defer server.Close()

	c := NewChatClient("test-key", server.URL, zap.NewNop())

	_, err := c.Complete(context.Background(), "s", "u", testModelConfig())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !errors.Is(err, domain.ErrCompletionProviderError) {
		t.Errorf("expected ErrCompletionProviderError, got %v", err)
	}
}
