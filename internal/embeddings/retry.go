package embeddings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrEmbeddingFailure is returned once every embedding attempt has failed.
var ErrEmbeddingFailure = errors.New("failed to generate embedding")

// Retrying wraps an Embedder and retries failed calls with exponential
// backoff: the wait after attempt n (counting from zero) is base << n.
type Retrying struct {
	inner      Embedder
	maxRetries int
	base       time.Duration
	wait       func(ctx context.Context, d time.Duration) error
}

// NewRetrying returns an Embedder that makes at most maxRetries attempts.
func NewRetrying(inner Embedder, maxRetries int, base time.Duration) *Retrying {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Retrying{inner: inner, maxRetries: maxRetries, base: base, wait: sleep}
}

func (r *Retrying) Name() string {
	return r.inner.Name()
}

func (r *Retrying) Dimensions() int {
	return r.inner.Dimensions()
}

func (r *Retrying) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		vecs, err := r.inner.Embed(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
		log.Printf("embeddings: attempt %d/%d with %s failed: %v", attempt+1, r.maxRetries, r.inner.Name(), err)

		if attempt == r.maxRetries-1 {
			break
		}
		if err := r.wait(ctx, r.base<<attempt); err != nil {
			return nil, fmt.Errorf("%w: %w (last error: %v)", ErrEmbeddingFailure, err, lastErr)
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrEmbeddingFailure, r.maxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
