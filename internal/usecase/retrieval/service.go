// Package retrieval implements the embedding-based retrieval core: index
// construction with on-disk caching, and similarity queries over the
// knowledge corpus.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens/internal/domain"
	"github.com/pitchlens/pitchlens/internal/index"
	"github.com/pitchlens/pitchlens/internal/metrics"
)

// Service answers similarity queries against the knowledge corpus.
//
// Lifecycle: construct, call BuildOrLoad once, then serve Retrieve calls.
// The built state is immutable, so concurrent Retrieve calls need no locking.
type Service struct {
	corpus     Corpus
	docEmbed   DocumentEmbedder
	queryEmbed QueryEmbedder
	cache      IndexCache
	logger     *zap.Logger

	state atomic.Pointer[builtState]
}

type builtState struct {
	index      *index.Flat
	embeddings [][]float32
}

// New creates a retrieval service. BuildOrLoad must complete before Retrieve
// is called.
func New(
	corpus Corpus,
	docEmbed DocumentEmbedder,
	queryEmbed QueryEmbedder,
	cache IndexCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		corpus:     corpus,
		docEmbed:   docEmbed,
		queryEmbed: queryEmbed,
		cache:      cache,
		logger:     logger,
	}
}

// BuildOrLoad initializes the index: load the persisted artifacts if they are
// valid for the current corpus, otherwise embed the full corpus in one batch
// call, normalize, build, and persist. This is the only site of full-corpus
// embedding and must finish before any query is served.
//
// A failed persistence write is logged and ignored: the in-memory index stays
// usable for the current process.
func (s *Service) BuildOrLoad(ctx context.Context) error {
	if s.corpus.Len() == 0 {
		return fmt.Errorf("knowledge corpus is empty")
	}

	if idx, embeddings, ok := s.cache.TryLoad(s.corpus.Len(), s.corpus.Digest()); ok {
		s.state.Store(&builtState{index: idx, embeddings: embeddings})
		metrics.IndexBuildsTotal.WithLabelValues("cache").Inc()
		s.logger.Info("Loaded persisted knowledge index",
			zap.Int("documents", idx.Len()),
			zap.Int("dim", idx.Dim()),
		)
		return nil
	}

	s.logger.Info("Building knowledge index", zap.Int("documents", s.corpus.Len()))

	res, err := s.docEmbed.BatchEmbed(ctx, s.corpus.Contents())
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}
	if len(res.Embeddings) != s.corpus.Len() {
		return fmt.Errorf("corpus embedding returned %d rows for %d documents",
			len(res.Embeddings), s.corpus.Len())
	}

	matrix := res.Embeddings
	index.NormalizeMatrix(matrix)

	idx, err := index.Build(matrix)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	s.state.Store(&builtState{index: idx, embeddings: matrix})
	metrics.IndexBuildsTotal.WithLabelValues("built").Inc()

	if err := s.cache.Save(idx, matrix, s.corpus.Len(), s.corpus.Digest()); err != nil {
		s.logger.Warn("Failed to persist knowledge index", zap.Error(err))
	}

	s.logger.Info("Built knowledge index",
		zap.Int("documents", idx.Len()),
		zap.Int("dim", idx.Dim()),
		zap.Int("embedding_tokens", res.TotalTokens),
	)
	return nil
}

// Ready reports whether BuildOrLoad has completed.
func (s *Service) Ready() bool {
	return s.state.Load() != nil
}

// Retrieve embeds the query, searches the index for the topK nearest
// documents, and drops candidates scoring strictly below minScore. Results
// come back in descending similarity order; an empty result is not an error.
func (s *Service) Retrieve(
	ctx context.Context, query string, topK int, minScore float32,
) ([]domain.Match, error) {
	st := s.state.Load()
	if st == nil {
		return nil, domain.ErrIndexNotReady
	}

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidArgument)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidArgument, topK)
	}

	res, err := s.queryEmbed.Embed(ctx, query)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}

	// Same normalization rule as the corpus matrix, otherwise inner product
	// stops meaning cosine similarity.
	vec := make([]float32, len(res.Embedding))
	copy(vec, res.Embedding)
	index.Normalize(vec)

	scores, rows, err := st.index.Search(vec, topK)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("search index: %w", err)
	}

	items := s.corpus.Items()
	matches := make([]domain.Match, 0, len(rows))
	for i, row := range rows {
		if scores[i] < minScore {
			continue
		}
		doc := items[row]
		matches = append(matches, domain.Match{
			Content:         doc.Content,
			Topic:           doc.Topic,
			Category:        doc.Category,
			Tags:            doc.Tags,
			SimilarityScore: scores[i],
		})
	}

	metrics.RetrievalRequestsTotal.WithLabelValues("success").Inc()
	metrics.RetrievalMatches.Observe(float64(len(matches)))
	s.logger.Info("Retrieved knowledge matches", zap.Int("count", len(matches)))

	return matches, nil
}

// ListTopics returns the corpus introspection listing.
func (s *Service) ListTopics() []domain.TopicInfo {
	return s.corpus.Topics()
}
