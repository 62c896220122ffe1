package chi

import "github.com/pitchlens/pitchlens/internal/domain"

// ErrorResponseCode identifies an API error category.
type ErrorResponseCode string

const (
	ErrorCodeBadRequest              ErrorResponseCode = "bad_request"
	ErrorCodeValidationFailed        ErrorResponseCode = "validation_failed"
	ErrorCodeUnauthorized            ErrorResponseCode = "unauthorized"
	ErrorCodeIndexNotReady           ErrorResponseCode = "index_not_ready"
	ErrorCodeEmbeddingProviderError  ErrorResponseCode = "embedding_provider_error"
	ErrorCodeCompletionProviderError ErrorResponseCode = "completion_provider_error"
	ErrorCodeInternal                ErrorResponseCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchRequest is the body of POST /v1/knowledge/search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
	// SimilarityThreshold is a pointer so that an explicit zero (or negative)
	// threshold can be told apart from an omitted one.
	SimilarityThreshold *float32 `json:"similarity_threshold,omitempty"`
}

// SearchResponse is the body of a successful knowledge search.
type SearchResponse struct {
	Matches []domain.Match `json:"matches"`
	Count   int            `json:"count"`
}

// TopicsResponse lists the knowledge corpus topics.
type TopicsResponse struct {
	Topics []domain.TopicInfo `json:"topics"`
	Count  int                `json:"count"`
}

// AnalyzeRequest is the body of POST /v1/analyze/text.
type AnalyzeRequest struct {
	Content string `json:"content"`
}

// EvaluateRequest is the body of POST /v1/evaluate.
type EvaluateRequest struct {
	Content  string `json:"content"`
	Analysis string `json:"analysis"`
}

// PromptModelInfo mirrors the generation model settings of a prompt.
type PromptModelInfo struct {
	Model           string  `json:"model"`
	MaxOutputTokens int     `json:"max_output_tokens"`
	Temperature     float32 `json:"temperature"`
}

// PromptInfo describes one configured prompt template.
type PromptInfo struct {
	SystemPrompt       string          `json:"system_prompt"`
	UserPromptTemplate string          `json:"user_prompt_template"`
	Model              PromptModelInfo `json:"model"`
}

// PromptsResponse is the body of GET /v1/config/prompts.
type PromptsResponse struct {
	Prompts map[string]PromptInfo `json:"prompts"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
