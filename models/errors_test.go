package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseContextLength(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		message  string
		wantOK   bool
		wantMax  int
		wantUsed int
	}{
		{
			name:     "openai style",
			message:  "This model's maximum context length is 8192 tokens. However, your messages resulted in 16614 tokens. Please reduce the length of the messages.",
			wantOK:   true,
			wantMax:  8192,
			wantUsed: 16614,
		},
		{
			name:     "case and newline tolerant",
			message:  "Maximum context length is 4096 tokens.\nYour request resulted in 5000 tokens total.",
			wantOK:   true,
			wantMax:  4096,
			wantUsed: 5000,
		},
		{
			name:    "unrelated error",
			message: "rate limit exceeded, retry after 20s",
			wantOK:  false,
		},
		{
			name:    "mentions tokens but not the signature",
			message: "invalid token count in request",
			wantOK:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseContextLength(tt.message)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if got.MaxTokens != tt.wantMax || got.UsedTokens != tt.wantUsed {
				t.Fatalf("got {max %d, used %d}, want {max %d, used %d}",
					got.MaxTokens, got.UsedTokens, tt.wantMax, tt.wantUsed)
			}
		})
	}
}

func TestErrorsMatchWithAs(t *testing.T) {
	t.Parallel()

	var notFound *DocumentNotFoundError
	wrapped := fmt.Errorf("loading document: %w", &DocumentNotFoundError{ID: "abc"})
	if !errors.As(wrapped, &notFound) {
		t.Fatal("errors.As failed to unwrap DocumentNotFoundError")
	}
	if notFound.ID != "abc" {
		t.Fatalf("ID = %q, want %q", notFound.ID, "abc")
	}

	var overflow *ContextLengthExceededError
	deep := fmt.Errorf("asking question: %w", fmt.Errorf("generation: %w",
		&ContextLengthExceededError{MaxTokens: 8192, UsedTokens: 16614}))
	if !errors.As(deep, &overflow) {
		t.Fatal("errors.As failed to unwrap ContextLengthExceededError")
	}
	if overflow.MaxTokens != 8192 || overflow.UsedTokens != 16614 {
		t.Fatalf("unexpected token counts: %+v", overflow)
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want string
	}{
		{&DocumentNotFoundError{ID: "d1"}, "document d1 not found"},
		{&EmptyDocumentError{}, "document contains no extractable text"},
		{&EmptyDocumentError{DocumentID: "d2"}, "document d2 contains no extractable text"},
		{&MissingEmbeddingCredentialsError{Kind: ProviderAnthropic}, "anthropic generation requires an embedding API key (embedding_api_key)"},
		{&AuthenticationError{Provider: "openai"}, "invalid or missing openai API key"},
		{&BatchSizeExceededError{Size: 200, Limit: 128}, "embedding batch of 200 exceeds provider limit of 128"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
