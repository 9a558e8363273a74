package anthropic_provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paperchat/paperchat/models"
)

func testClient(baseURL string) *Client {
	c := NewClient("ant-key", "claude-3-5-sonnet-latest", 5*time.Second)
	c.baseURL = baseURL
	return c
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "ant-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("anthropic-version = %q", got)
		}
		var req struct {
			Model       string  `json:"model"`
			MaxTokens   int     `json:"max_tokens"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "claude-3-5-sonnet-latest" {
			t.Errorf("model = %q", req.Model)
		}
		if req.MaxTokens == 0 {
			t.Error("max_tokens must be set")
		}
		if req.Temperature != 0 {
			t.Errorf("temperature = %v, want 0", req.Temperature)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "first part "},
				{"type": "tool_use", "text": "ignored"},
				{"type": "text", "text": "second part"},
			},
		})
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "first part second part" {
		t.Fatalf("answer = %q", got)
	}
}

func TestGenerateUnauthorized(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), "q")
	var authErr *models.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("want AuthenticationError, got %v", err)
	}
	if authErr.Provider != "anthropic" {
		t.Fatalf("provider = %q", authErr.Provider)
	}
}

func TestGenerateContextLengthExceeded(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"maximum context length is 200000 tokens, but your request resulted in 250000 tokens"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), "q")
	var overflow *models.ContextLengthExceededError
	if !errors.As(err, &overflow) {
		t.Fatalf("want ContextLengthExceededError, got %v", err)
	}
	if overflow.MaxTokens != 200000 || overflow.UsedTokens != 250000 {
		t.Fatalf("unexpected token counts %+v", overflow)
	}
}

func TestGenerateVendorError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		fmt.Fprint(w, `{"error":{"type":"overloaded_error","message":"Overloaded"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), "q")
	var genErr *models.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("want GenerationError, got %v", err)
	}
	if genErr.Status != 529 || genErr.Message != "Overloaded" {
		t.Fatalf("unexpected error %+v", genErr)
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[]}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), "q")
	var genErr *models.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("want GenerationError, got %v", err)
	}
}
