package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryOptions bound every call made through WithRetry.
type RetryOptions struct {
	Timeout  time.Duration // per-attempt budget
	Attempts int           // total tries, including the first
	Backoff  time.Duration // linear unit: attempt n waits n x Backoff
}

// WithRetry wraps a source so that transient failures are retried with a
// per-attempt timeout and capped linear backoff. ErrNotFound and parent
// context cancellation are not retried.
func WithRetry(src Source, opts RetryOptions) Source {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 400 * time.Millisecond
	}
	return &retrySource{inner: src, opts: opts}
}

type retrySource struct {
	inner Source
	opts  RetryOptions
}

func (r *retrySource) ID() string {
	return r.inner.ID()
}

func (r *retrySource) ListCandidates(ctx context.Context, hint string) ([]string, error) {
	var out []string
	err := r.do(ctx, func(callCtx context.Context) error {
		var callErr error
		out, callErr = r.inner.ListCandidates(callCtx, hint)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *retrySource) FetchMetadata(ctx context.Context, title string) (Metadata, error) {
	var out Metadata
	err := r.do(ctx, func(callCtx context.Context) error {
		var callErr error
		out, callErr = r.inner.FetchMetadata(callCtx, title)
		return callErr
	})
	if err != nil {
		return Metadata{}, err
	}
	return out, nil
}

func (r *retrySource) do(ctx context.Context, call func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < r.opts.Attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		err := call(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			return err
		}
		if attempt == r.opts.Attempts-1 {
			break
		}
		backoff := time.Duration(attempt+1) * r.opts.Backoff
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("source %s: %d attempts exhausted: %w", r.inner.ID(), r.opts.Attempts, lastErr)
}
