package models

import (
	"fmt"
	"regexp"
)

// DocumentNotFoundError is returned when a document id is absent from the store.
type DocumentNotFoundError struct {
	ID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %s not found", e.ID)
}

// EmptyDocumentError is returned when chunking produced no usable passages.
type EmptyDocumentError struct {
	DocumentID string
}

func (e *EmptyDocumentError) Error() string {
	if e.DocumentID != "" {
		return fmt.Sprintf("document %s contains no extractable text", e.DocumentID)
	}
	return "document contains no extractable text"
}

// MissingEmbeddingCredentialsError is returned before any network call when
// the chosen generator family requires an auxiliary embedding key that was
// not supplied.
type MissingEmbeddingCredentialsError struct {
	Kind ProviderKind
}

func (e *MissingEmbeddingCredentialsError) Error() string {
	return fmt.Sprintf("%s generation requires an embedding API key (embedding_api_key)", e.Kind)
}

// AuthenticationError indicates an invalid or missing vendor API key.
type AuthenticationError struct {
	Provider string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("invalid or missing %s API key", e.Provider)
}

// EmbeddingProviderError wraps a transport or vendor failure from an
// embedding backend.
type EmbeddingProviderError struct {
	Status  int
	Message string
}

func (e *EmbeddingProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("embedding provider error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("embedding provider error: %s", e.Message)
}

// BatchSizeExceededError is returned when a single embedding call is given
// more inputs than the vendor's per-call cap.
type BatchSizeExceededError struct {
	Size  int
	Limit int
}

func (e *BatchSizeExceededError) Error() string {
	return fmt.Sprintf("embedding batch of %d exceeds provider limit of %d", e.Size, e.Limit)
}

// GenerationError is the catch-all for chat backend failures that are not
// authentication or context-length problems.
type GenerationError struct {
	Status  int
	Message string
}

func (e *GenerationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("generation error: %s", e.Message)
}

// ContextLengthExceededError is extracted from a backend's error text when the
// assembled prompt overflows the model's context window. The structured token
// counts let the UI offer specific remediation (switch model, shrink document).
type ContextLengthExceededError struct {
	MaxTokens  int
	UsedTokens int
}

func (e *ContextLengthExceededError) Error() string {
	return fmt.Sprintf("prompt of %d tokens exceeds the model's maximum context length of %d tokens", e.UsedTokens, e.MaxTokens)
}

var contextLengthPattern = regexp.MustCompile(`(?is)maximum context length is (\d+) tokens.*?resulted in (\d+) tokens`)

// ParseContextLength scans a backend error message for the context-overflow
// signature and returns the structured error when it matches.
func ParseContextLength(message string) (*ContextLengthExceededError, bool) {
	m := contextLengthPattern.FindStringSubmatch(message)
	if m == nil {
		return nil, false
	}
	var maxTokens, usedTokens int
	fmt.Sscanf(m[1], "%d", &maxTokens)
	fmt.Sscanf(m[2], "%d", &usedTokens)
	return &ContextLengthExceededError{MaxTokens: maxTokens, UsedTokens: usedTokens}, true
}
