package server

import (
	"errors"
	"net/http"

	"github.com/paperchat/paperchat/models"
)

// errorBody is the structured error object returned on every failure. Kind is
// preserved from the typed error so the UI can branch on it; details carries
// kind-specific fields (token counts for context overflow).
type errorBody struct {
	ErrorKind string                 `json:"error_kind"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// classify maps a typed pipeline error to an HTTP status and response body.
// This is the single place errors are translated; the kind always survives.
func classify(err error) (int, errorBody) {
	var (
		notFound     *models.DocumentNotFoundError
		empty        *models.EmptyDocumentError
		missingCreds *models.MissingEmbeddingCredentialsError
		auth         *models.AuthenticationError
		overflow     *models.ContextLengthExceededError
		embed        *models.EmbeddingProviderError
		batch        *models.BatchSizeExceededError
		generation   *models.GenerationError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorBody{ErrorKind: "document_not_found", Message: err.Error()}
	case errors.As(err, &empty):
		return http.StatusUnprocessableEntity, errorBody{ErrorKind: "empty_document", Message: err.Error()}
	case errors.As(err, &missingCreds):
		return http.StatusBadRequest, errorBody{ErrorKind: "missing_embedding_credentials", Message: err.Error()}
	case errors.As(err, &auth):
		return http.StatusUnauthorized, errorBody{ErrorKind: "authentication_error", Message: err.Error()}
	case errors.As(err, &overflow):
		return http.StatusRequestEntityTooLarge, errorBody{
			ErrorKind: "context_length_exceeded",
			Message:   err.Error(),
			Details: map[string]interface{}{
				"max_tokens":  overflow.MaxTokens,
				"used_tokens": overflow.UsedTokens,
			},
		}
	case errors.As(err, &embed):
		return http.StatusBadGateway, errorBody{ErrorKind: "embedding_provider_error", Message: err.Error()}
	case errors.As(err, &batch):
		return http.StatusBadGateway, errorBody{ErrorKind: "batch_size_exceeded", Message: err.Error()}
	case errors.As(err, &generation):
		return http.StatusBadGateway, errorBody{ErrorKind: "generation_error", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorBody{ErrorKind: "internal_error", Message: err.Error()}
	}
}
