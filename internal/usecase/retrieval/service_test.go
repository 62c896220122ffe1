package retrieval

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens/internal/domain"
)

func TestRetrieve_OrderedByScore(t *testing.T) {
	emb := testEmbedder()
	svc := newTestService(t, emb, &mockIndexCache{})
	mustBuild(t, svc)

	matches, err := svc.Retrieve(context.Background(), "about valuation", 3, -1)
	requireNoErr(t, err)

	if len(matches) != 3 {
		t.Fatalf("len(matches) = %d, want 3", len(matches))
	}
	if matches[0].Topic != "Valuation" {
		t.Errorf("matches[0].Topic = %q, want Valuation", matches[0].Topic)
	}
	if matches[1].Topic != "Unit Economics" {
		t.Errorf("matches[1].Topic = %q, want Unit Economics", matches[1].Topic)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].SimilarityScore > matches[i-1].SimilarityScore {
			t.Errorf("scores not descending at %d: %v > %v",
				i, matches[i].SimilarityScore, matches[i-1].SimilarityScore)
		}
	}
}

func TestRetrieve_ThresholdFiltersStrictlyBelow(t *testing.T) {
	emb := testEmbedder()
	svc := newTestService(t, emb, &mockIndexCache{})
	mustBuild(t, svc)

	// "doc valuation" embeds to a unit vector identical to document 0, so its
	// top score is exactly 1.0 and must survive a threshold of 1.0.
	matches, err := svc.Retrieve(context.Background(), "doc valuation", 3, 1.0)
	requireNoErr(t, err)

	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	if matches[0].SimilarityScore != 1.0 {
		t.Errorf("SimilarityScore = %v, want exactly 1.0", matches[0].SimilarityScore)
	}
}

func TestRetrieve_NegativeThresholdReturnsTopK(t *testing.T) {
	emb := testEmbedder()
	svc := newTestService(t, emb, &mockIndexCache{})
	mustBuild(t, svc)

	// Orthogonal query scores 0 everywhere; threshold -1 keeps everything,
	// capped by the corpus size.
	matches, err := svc.Retrieve(context.Background(), "orthogonal", 5, -1)
	requireNoErr(t, err)

	if len(matches) != 3 {
		t.Fatalf("len(matches) = %d, want 3 (corpus size)", len(matches))
	}
}

func TestRetrieve_TopKAndThresholdTogether(t *testing.T) {
	emb := testEmbedder()
	svc := newTestService(t, emb, &mockIndexCache{})
	mustBuild(t, svc)

	matches, err := svc.Retrieve(context.Background(), "about valuation", 2, 0.3)
	requireNoErr(t, err)

	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(matches))
	}
	for _, m := range matches {
		if m.SimilarityScore < 0.3 {
			t.Errorf("match %q below threshold: %v", m.Topic, m.SimilarityScore)
		}
	}
}

func TestRetrieve_DeterministicAcrossRebuilds(t *testing.T) {
	first := newTestService(t, testEmbedder(), &mockIndexCache{})
	mustBuild(t, first)
	second := newTestService(t, testEmbedder(), &mockIndexCache{})
	mustBuild(t, second)

	a, err := first.Retrieve(context.Background(), "about market", 3, -1)
	requireNoErr(t, err)
	b, err := second.Retrieve(context.Background(), "about market", 3, -1)
	requireNoErr(t, err)

	if len(a) != len(b) {
		t.Fatalf("result lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Topic != b[i].Topic || a[i].SimilarityScore != b[i].SimilarityScore {
			t.Errorf("result %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestBuildOrLoad_CacheHitSkipsEmbedding(t *testing.T) {
	cache := &mockIndexCache{}
	first := newTestService(t, testEmbedder(), cache)
	mustBuild(t, first)
	if cache.saveCalls != 1 {
		t.Fatalf("saveCalls = %d, want 1", cache.saveCalls)
	}

	emb := testEmbedder()
	second := newTestService(t, emb, cache)
	mustBuild(t, second)

	if emb.batchCalls != 0 {
		t.Errorf("batchCalls = %d, want 0 on cache hit", emb.batchCalls)
	}

	matches, err := second.Retrieve(context.Background(), "about valuation", 2, 0.3)
	requireNoErr(t, err)
	if len(matches) != 2 || matches[0].Topic != "Valuation" {
		t.Errorf("unexpected matches from cached index: %+v", matches)
	}
}

func TestBuildOrLoad_CorpusSizeMismatchRebuilds(t *testing.T) {
	// Cache holds artifacts for a smaller corpus: must be treated as a miss.
	stale := &mockIndexCache{}
	staleSvc := New(
		&mockCorpus{docs: testCorpus().docs[:2]},
		testEmbedder(), testEmbedder(), stale, zap.NewNop(),
	)
	mustBuild(t, staleSvc)

	emb := testEmbedder()
	svc := newTestService(t, emb, stale)
	mustBuild(t, svc)

	if emb.batchCalls != 1 {
		t.Errorf("batchCalls = %d, want 1 (rebuild on size mismatch)", emb.batchCalls)
	}
	if stale.saveCalls != 2 {
		t.Errorf("saveCalls = %d, want 2", stale.saveCalls)
	}
}

func TestBuildOrLoad_SaveFailureIsNotFatal(t *testing.T) {
	cache := &mockIndexCache{saveErr: errors.New("disk full")}
	svc := newTestService(t, testEmbedder(), cache)
	mustBuild(t, svc)

	matches, err := svc.Retrieve(context.Background(), "about market", 1, 0.3)
	requireNoErr(t, err)
	if len(matches) != 1 || matches[0].Topic != "Market Sizing" {
		t.Errorf("unexpected matches: %+v", matches)
	}
}

func TestBuildOrLoad_BatchEmbedError(t *testing.T) {
	emb := testEmbedder()
	emb.batchErr = errors.New("provider down")
	svc := newTestService(t, emb, &mockIndexCache{})

	if err := svc.BuildOrLoad(context.Background()); err == nil {
		t.Fatal("BuildOrLoad() expected error")
	}
	if svc.Ready() {
		t.Error("Ready() = true after failed build")
	}
}

func TestRetrieve_BeforeBuildReturnsNotReady(t *testing.T) {
	svc := newTestService(t, testEmbedder(), &mockIndexCache{})

	_, err := svc.Retrieve(context.Background(), "anything", 5, 0.3)
	requireErrIs(t, err, domain.ErrIndexNotReady)
}

func TestRetrieve_InvalidArguments(t *testing.T) {
	svc := newTestService(t, testEmbedder(), &mockIndexCache{})
	mustBuild(t, svc)

	tests := []struct {
		name  string
		query string
		topK  int
	}{
		{name: "empty query", query: "", topK: 5},
		{name: "blank query", query: "   ", topK: 5},
		{name: "zero top_k", query: "about market", topK: 0},
		{name: "negative top_k", query: "about market", topK: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Retrieve(context.Background(), tt.query, tt.topK, 0.3)
			requireErrIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestRetrieve_EmbedErrorWrapsEncoding(t *testing.T) {
	emb := testEmbedder()
	svc := newTestService(t, emb, &mockIndexCache{})
	mustBuild(t, svc)

	emb.embedErr = errors.New("provider timeout")
	_, err := svc.Retrieve(context.Background(), "about market", 5, 0.3)
	requireErrIs(t, err, domain.ErrEncoding)
}

func TestListTopics(t *testing.T) {
	svc := newTestService(t, testEmbedder(), &mockIndexCache{})

	topics := svc.ListTopics()
	if len(topics) != 3 {
		t.Fatalf("len(topics) = %d, want 3", len(topics))
	}
	if topics[0].Topic != "Valuation" || topics[0].ID != 0 {
		t.Errorf("unexpected first topic: %+v", topics[0])
	}
}

func TestReady(t *testing.T) {
	svc := newTestService(t, testEmbedder(), &mockIndexCache{})
	if svc.Ready() {
		t.Fatal("Ready() = true before build")
	}
	mustBuild(t, svc)
	if !svc.Ready() {
		t.Fatal("Ready() = false after build")
	}
}
