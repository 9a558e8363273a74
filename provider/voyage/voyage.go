package voyage_provider

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
	defaultBaseURL = "https://api.voyageai.com/v1"

	// maxEmbedBatch is Voyage's per-call input cap.
	maxEmbedBatch = 128
)

// Client talks to Voyage AI's embeddings API. It is the auxiliary embedder
// for generator families without a first-party embedding offering.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Voyage embedding client.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// EmbedQuery embeds a single question using Voyage's query input type.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embedBatch(ctx, []string{text}, "query")
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, &models.EmbeddingProviderError{Message: fmt.Sprintf("expected 1 embedding, got %d", len(vecs))}
	}
	return vecs[0], nil
}

// EmbedDocuments embeds texts in order using Voyage's document input type,
// splitting into sub-batches of at most maxEmbedBatch inputs.
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
		batch, err := c.embedBatch(ctx, texts[start:end], "document")
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, batch...)
	}
	return vecs, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	if len(texts) > maxEmbedBatch {
		return nil, &models.BatchSizeExceededError{Size: len(texts), Limit: maxEmbedBatch}
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":      c.model,
		"input":      texts,
		"input_type": inputType,
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

func vendorMessage(raw []byte) string {
	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Detail != "" {
		return envelope.Detail
	}
	return string(raw)
}
