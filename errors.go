package pitchlens

import "fmt"

// API error codes returned by the server.
const (
	CodeBadRequest              = "bad_request"
	CodeValidationFailed        = "validation_failed"
	CodeUnauthorized            = "unauthorized"
	CodeIndexNotReady           = "index_not_ready"
	CodeEmbeddingProviderError  = "embedding_provider_error"
	CodeCompletionProviderError = "completion_provider_error"
	CodeInternal                = "internal_error"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("pitchlens: %s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("pitchlens: http %d: %s", e.StatusCode, e.Message)
}
