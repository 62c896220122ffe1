package health

import "context"

// IndexReadiness reports whether the knowledge index has been built.
type IndexReadiness interface {
	Ready() bool
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks the optional embedding-cache store.
type CachePinger interface {
	Ping(ctx context.Context) error
}
