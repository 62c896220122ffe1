package retrieval

import (
	"context"

	"github.com/pitchlens/pitchlens/internal/domain"
	"github.com/pitchlens/pitchlens/internal/index"
)

// Corpus is the knowledge catalog contract.
type Corpus interface {
	Items() []domain.Document
	Len() int
	Contents() []string
	Digest() string
	Topics() []domain.TopicInfo
}

// DocumentEmbedder vectorizes the whole corpus in one batch call.
type DocumentEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// QueryEmbedder vectorizes a single query. Must be backed by the same model
// as the DocumentEmbedder: vector spaces are not comparable across models.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// IndexCache persists a built index and its embedding matrix across restarts.
type IndexCache interface {
	TryLoad(corpusLen int, digest string) (*index.Flat, [][]float32, bool)
	Save(idx *index.Flat, embeddings [][]float32, corpusLen int, digest string) error
}
