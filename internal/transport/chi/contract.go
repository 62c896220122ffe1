package chi

import (
	"context"

	"github.com/pitchlens/pitchlens/internal/domain"
	healthuc "github.com/pitchlens/pitchlens/internal/usecase/health"
)

// Retriever serves knowledge search and topic listing.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, minScore float32) ([]domain.Match, error)
	ListTopics() []domain.TopicInfo
}

// Analyzer generates analysis reports from pitch-deck text.
type Analyzer interface {
	Analyze(ctx context.Context, content string) (domain.Analysis, error)
}

// Judge scores an analysis against the original content.
type Judge interface {
	Evaluate(ctx context.Context, original, analysis string) (domain.Evaluation, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
