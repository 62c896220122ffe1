package retrieval

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens/internal/domain"
	"github.com/pitchlens/pitchlens/internal/index"
)

// mockCorpus is a fixed in-memory catalog with content-keyed embeddings.
type mockCorpus struct {
	docs []domain.Document
}

func (c *mockCorpus) Items() []domain.Document { return c.docs }
func (c *mockCorpus) Len() int                 { return len(c.docs) }

func (c *mockCorpus) Contents() []string {
	out := make([]string, len(c.docs))
	for i, d := range c.docs {
		out[i] = d.Content
	}
	return out
}

func (c *mockCorpus) Digest() string { return "test-digest" }

func (c *mockCorpus) Topics() []domain.TopicInfo {
	out := make([]domain.TopicInfo, len(c.docs))
	for i, d := range c.docs {
		out[i] = domain.TopicInfo{ID: d.ID, Topic: d.Topic, Category: d.Category, Tags: d.Tags}
	}
	return out
}

// mockEmbedder maps known texts to fixed unnormalized vectors so tests can
// pin down exact similarity ordering.
type mockEmbedder struct {
	vectors    map[string][]float32
	batchCalls int
	embedCalls int
	embedErr   error
	batchErr   error
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	return []float32{1, 0, 0}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return domain.EmbeddingResult{}, m.embedErr
	}
	return domain.EmbeddingResult{Embedding: m.vectorFor(text), TotalTokens: 3}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = m.vectorFor(text)
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 3 * len(texts)}, nil
}

// mockIndexCache is an in-memory stand-in for the on-disk cache.
type mockIndexCache struct {
	idx        *index.Flat
	embeddings [][]float32
	corpusLen  int
	saveErr    error
	saveCalls  int
	loadCalls  int
}

func (m *mockIndexCache) TryLoad(corpusLen int, _ string) (*index.Flat, [][]float32, bool) {
	m.loadCalls++
	if m.idx == nil || m.corpusLen != corpusLen {
		return nil, nil, false
	}
	return m.idx, m.embeddings, true
}

func (m *mockIndexCache) Save(idx *index.Flat, embeddings [][]float32, corpusLen int, _ string) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.idx = idx
	m.embeddings = embeddings
	m.corpusLen = corpusLen
	return nil
}

func testCorpus() *mockCorpus {
	return &mockCorpus{docs: []domain.Document{
		{ID: 0, Topic: "Valuation", Category: "finance", Content: "doc valuation", Tags: []string{"dcf"}},
		{ID: 1, Topic: "Market Sizing", Category: "market", Content: "doc market", Tags: []string{"tam"}},
		{ID: 2, Topic: "Unit Economics", Category: "finance", Content: "doc unit economics", Tags: []string{"ltv"}},
	}}
}

func testEmbedder() *mockEmbedder {
	return &mockEmbedder{vectors: map[string][]float32{
		"doc valuation":      {1, 0, 0},
		"doc market":         {0, 1, 0},
		"doc unit economics": {1, 1, 0},
		"about valuation":    {1, 0.2, 0},
		"about market":       {0.1, 1, 0},
		"orthogonal":         {0, 0, 1},
	}}
}

func newTestService(t *testing.T, emb *mockEmbedder, cache *mockIndexCache) *Service {
	t.Helper()
	return New(testCorpus(), emb, emb, cache, zap.NewNop())
}

func mustBuild(t *testing.T, s *Service) {
	t.Helper()
	if err := s.BuildOrLoad(context.Background()); err != nil {
		t.Fatalf("BuildOrLoad() error = %v", err)
	}
}

func requireNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func requireErrIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}
