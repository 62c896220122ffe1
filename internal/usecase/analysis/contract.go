package analysis

import (
	"context"

	"github.com/pitchlens/pitchlens/internal/config"
	"github.com/pitchlens/pitchlens/internal/domain"
)

// Retriever supplies knowledge matches for grounding the generation prompt.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, minScore float32) ([]domain.Match, error)
}

// PromptSource resolves prompt configurations by type.
type PromptSource interface {
	Get(promptType string) (config.PromptConfig, error)
}
