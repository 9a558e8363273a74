package models

import "time"

// Page is the plain text of a single PDF page. Numbering is 1-based and
// follows the page order of the source document.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document is an uploaded document after page-text extraction. Pages are
// immutable for the document's lifetime.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Pages      []Page    `json:"pages"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Chunk is a bounded passage of one page's text, the atomic retrieval unit.
// Chunks are rebuilt per question and never persisted.
type Chunk struct {
	Content    string `json:"content"`
	PageNumber int    `json:"page_number"`
}

// ScoredChunk pairs a chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// HighlightRange is a character range into a citation's FullText.
type HighlightRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Citation points from an answer back to the page and passage that supports it.
// DisplayText is a short excerpt for list rendering; FullText is the whole
// source chunk, with HighlightRange marking the matched span inside it.
type Citation struct {
	PageNumber     int            `json:"page_number"`
	DisplayText    string         `json:"display_text"`
	FullText       string         `json:"full_text"`
	HighlightRange HighlightRange `json:"highlight_range"`
}

// ProviderKind selects the chat-model backend family.
type ProviderKind string

const (
	ProviderOpenAI    ProviderKind = "openai"
	ProviderAnthropic ProviderKind = "anthropic"
)

// ProviderConfig carries per-request vendor credentials and model selection.
// Keys are passed through to the vendor APIs and are never persisted or logged.
type ProviderConfig struct {
	Kind ProviderKind `json:"kind"`
	// APIKey authenticates generation calls, and embedding calls when the
	// generator family has a first-party embedding offering.
	APIKey string `json:"api_key"`
	// Model overrides the configured default completion model when set.
	Model string `json:"model,omitempty"`
	// EmbeddingAPIKey is the auxiliary vendor key required when the generator
	// family has no embedding offering (Anthropic generation embeds via Voyage).
	EmbeddingAPIKey string `json:"embedding_api_key,omitempty"`
}
