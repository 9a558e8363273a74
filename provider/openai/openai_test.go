package openai_provider

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
	c := NewClient("test-key", "gpt-4o-mini", "text-embedding-3-small", 5*time.Second)
	c.baseURL = baseURL
	return c
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req struct {
			Model       string `json:"model"`
			Temperature float64
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Temperature != 0 {
			t.Errorf("temperature = %v, want 0", req.Temperature)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "the answer"}},
			},
		})
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "the answer" {
		t.Fatalf("answer = %q", got)
	}
}

func TestGenerateUnauthorized(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), "q")
	var authErr *models.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("want AuthenticationError, got %v", err)
	}
	if authErr.Provider != "openai" {
		t.Fatalf("provider = %q", authErr.Provider)
	}
}

func TestGenerateContextLengthExceeded(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"This model's maximum context length is 8192 tokens. However, your messages resulted in 16614 tokens.","code":"context_length_exceeded"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), "q")
	var overflow *models.ContextLengthExceededError
	if !errors.As(err, &overflow) {
		t.Fatalf("want ContextLengthExceededError, got %v", err)
	}
	if overflow.MaxTokens != 8192 || overflow.UsedTokens != 16614 {
		t.Fatalf("unexpected token counts %+v", overflow)
	}
}

func TestGenerateVendorError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"Rate limit reached"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), "q")
	var genErr *models.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("want GenerationError, got %v", err)
	}
	if genErr.Status != http.StatusTooManyRequests || genErr.Message != "Rate limit reached" {
		t.Fatalf("unexpected error %+v", genErr)
	}
}

// embedServer answers /embeddings with index-derived vectors so ordering is
// observable, and counts the calls it served.
func embedServer(t *testing.T, calls *int, batchSizes *[]int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		*calls++
		*batchSizes = append(*batchSizes, len(req.Input))

		data := make([]map[string]interface{}, len(req.Input))
		for i, text := range req.Input {
			data[i] = map[string]interface{}{
				"embedding": []float32{float32(len(text))},
				"index":     i,
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}))
}

func TestEmbedDocumentsSubBatches(t *testing.T) {
	t.Parallel()
	var calls int
	var batchSizes []int
	srv := embedServer(t, &calls, &batchSizes)
	defer srv.Close()

	texts := make([]string, 150)
	for i := range texts {
		// Length encodes position so the returned vector identifies its input.
		texts[i] = fmt.Sprintf("%*s", i+1, "x")
	}

	vecs, err := testClient(srv.URL).EmbedDocuments(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedDocuments: %v", err)
	}
	if len(vecs) != 150 {
		t.Fatalf("got %d vectors, want 150", len(vecs))
	}
	if calls != 2 {
		t.Fatalf("got %d underlying calls, want 2", calls)
	}
	if batchSizes[0] != 128 || batchSizes[1] != 22 {
		t.Fatalf("batch sizes = %v, want [128 22]", batchSizes)
	}
	for i, v := range vecs {
		if len(v) != 1 || v[0] != float32(i+1) {
			t.Fatalf("vector %d out of order: %v", i, v)
		}
	}
}

func TestEmbedDocumentsEmpty(t *testing.T) {
	t.Parallel()
	vecs, err := testClient("http://unreachable.invalid").EmbedDocuments(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedDocuments: %v", err)
	}
	if vecs != nil {
		t.Fatalf("expected nil result for empty input, got %v", vecs)
	}
}

func TestEmbedQuery(t *testing.T) {
	t.Parallel()
	var calls int
	var batchSizes []int
	srv := embedServer(t, &calls, &batchSizes)
	defer srv.Close()

	vec, err := testClient(srv.URL).EmbedQuery(context.Background(), "hello")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if len(vec) != 1 || vec[0] != 5 {
		t.Fatalf("unexpected vector %v", vec)
	}
	if calls != 1 || batchSizes[0] != 1 {
		t.Fatalf("calls = %d, batch sizes = %v", calls, batchSizes)
	}
}

func TestEmbedBatchOverLimit(t *testing.T) {
	t.Parallel()
	c := testClient("http://unreachable.invalid")
	texts := make([]string, maxEmbedBatch+1)
	_, err := c.embedBatch(context.Background(), texts)
	var batchErr *models.BatchSizeExceededError
	if !errors.As(err, &batchErr) {
		t.Fatalf("want BatchSizeExceededError, got %v", err)
	}
	if batchErr.Size != maxEmbedBatch+1 || batchErr.Limit != maxEmbedBatch {
		t.Fatalf("unexpected error %+v", batchErr)
	}
}

func TestEmbedProviderError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"message":"The server is overloaded"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).EmbedQuery(context.Background(), "q")
	var embErr *models.EmbeddingProviderError
	if !errors.As(err, &embErr) {
		t.Fatalf("want EmbeddingProviderError, got %v", err)
	}
	if embErr.Status != http.StatusServiceUnavailable || embErr.Message != "The server is overloaded" {
		t.Fatalf("unexpected error %+v", embErr)
	}
}
