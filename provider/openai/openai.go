package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paperchat/paperchat/models"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"

	// maxEmbedBatch is OpenAI's per-call input cap; larger requests are
	// split into sub-batches.
	maxEmbedBatch = 128
)

// Client talks to OpenAI's chat completions and embeddings APIs.
type Client struct {
	apiKey          string
	completionModel string
	embeddingModel  string
	baseURL         string
	httpClient      *http.Client
}

// NewClient creates an OpenAI client for both generation and embeddings.
func NewClient(apiKey, completionModel, embeddingModel string, timeout time.Duration) *Client {
	return &Client{
		apiKey:          apiKey,
		completionModel: completionModel,
		embeddingModel:  embeddingModel,
		baseURL:         defaultBaseURL,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// apiError is the error envelope OpenAI returns on non-200 responses.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Generate sends the prompt as a single user message at temperature zero and
// returns the model's free-text answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.completionModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
	})
	if err != nil {
		return "", &models.GenerationError{Message: fmt.Sprintf("marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", &models.GenerationError{Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &models.GenerationError{Message: fmt.Sprintf("send request: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", generationFailure(resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &models.GenerationError{Message: fmt.Sprintf("parse response: %v", err)}
	}
	if len(out.Choices) == 0 {
		return "", &models.GenerationError{Message: "no choices in response"}
	}
	return out.Choices[0].Message.Content, nil
}

// generationFailure maps a non-200 chat response to the error taxonomy. The
// context-overflow signature is pattern-matched out of the vendor message so
// callers receive structured token counts.
func generationFailure(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	message := vendorMessage(raw)
	if resp.StatusCode == http.StatusUnauthorized {
		return &models.AuthenticationError{Provider: "openai"}
	}
	if overflow, ok := models.ParseContextLength(message); ok {
		return overflow
	}
	return &models.GenerationError{Status: resp.StatusCode, Message: message}
}

// EmbedQuery returns the embedding for a single query string.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, &models.EmbeddingProviderError{Message: fmt.Sprintf("expected 1 embedding, got %d", len(vecs))}
	}
	return vecs[0], nil
}

// EmbedDocuments embeds texts in order, splitting into sub-batches of at most
// maxEmbedBatch inputs per underlying call.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := start + maxEmbedBatch
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, batch...)
	}
	return vecs, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) > maxEmbedBatch {
		return nil, &models.BatchSizeExceededError{Size: len(texts), Limit: maxEmbedBatch}
	}

	body, err := json.Marshal(map[string]interface{}{
		"model": c.embeddingModel,
		"input": texts,
	})
	if err != nil {
		return nil, &models.EmbeddingProviderError{Message: fmt.Sprintf("marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/embeddings", bytes.NewBuffer(body))
	if err != nil {
		return nil, &models.EmbeddingProviderError{Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.EmbeddingProviderError{Message: fmt.Sprintf("send request: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &models.EmbeddingProviderError{Status: resp.StatusCode, Message: vendorMessage(raw)}
	}

	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &models.EmbeddingProviderError{Message: fmt.Sprintf("parse response: %v", err)}
	}
	if len(out.Data) != len(texts) {
		return nil, &models.EmbeddingProviderError{Message: fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(out.Data))}
	}

	vecs := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

// vendorMessage pulls the human-readable message out of an error body,
// falling back to the raw body when it is not the usual envelope.
func vendorMessage(raw []byte) string {
	var envelope apiError
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return string(raw)
}
