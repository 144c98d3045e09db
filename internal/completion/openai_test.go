package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/medioracle/medirag/internal/models"
)

func chatServer(t *testing.T, status int, content string, tokens int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Errorf("got %d messages, want 2", len(req.Messages))
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("response format not pinned to json_object")
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"upstream failure"}}`))
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
			"usage": map[string]int{"total_tokens": tokens},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClient_Complete(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"answer":"Rest and hydrate.","key_points":["fluids"]}`, 42)
	client, err := NewOpenAIClient(srv.URL, "test-key", "gpt-4o-mini", 500, 0.3, 5*time.Second)
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}

	res, err := client.Complete(context.Background(), "You are a careful assistant.", "What helps with a cold?")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Content != `{"answer":"Rest and hydrate.","key_points":["fluids"]}` {
		t.Errorf("unexpected content %q", res.Content)
	}
	if res.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", res.TokensUsed)
	}
}

func TestOpenAIClient_UpstreamErrorIsExternalServiceError(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "", 0)
	client, err := NewOpenAIClient(srv.URL, "test-key", "gpt-4o-mini", 0, 0, time.Second)
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}

	_, err = client.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	var extErr *models.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("error %T is not ExternalServiceError", err)
	}
	if extErr.Service != "completion" {
		t.Errorf("Service = %q, want completion", extErr.Service)
	}
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[],"usage":{"total_tokens":0}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAIClient(srv.URL, "test-key", "gpt-4o-mini", 0, 0, time.Second)
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient("https://api.openai.com/v1", "", "gpt-4o-mini", 0, 0, 0); err == nil {
		t.Fatal("expected error for missing API key")
	}
	if _, err := NewOpenAIClient("", "key", "gpt-4o-mini", 0, 0, 0); err == nil {
		t.Fatal("expected error for missing base URL")
	}
}
