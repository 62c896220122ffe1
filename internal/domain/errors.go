package domain

import "errors"

var (
	// ErrIndexNotReady signals a query arriving before the index build barrier completed.
	// Retriable: the caller should retry once startup finishes.
	ErrIndexNotReady = errors.New("retrieval index not ready")
	// ErrEncoding signals that a query could not be embedded.
	ErrEncoding = errors.New("query encoding failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionProviderError signals a chat completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrInvalidArgument signals invalid caller input.
	ErrInvalidArgument = errors.New("invalid argument")
)
