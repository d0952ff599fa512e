package source

import (
	"context"
	"errors"
	"testing"
	"time"
)

type funcSource struct {
	id    string
	list  func(ctx context.Context, hint string) ([]string, error)
	fetch func(ctx context.Context, title string) (Metadata, error)
}

func (f *funcSource) ID() string { return f.id }

func (f *funcSource) ListCandidates(ctx context.Context, hint string) ([]string, error) {
	return f.list(ctx, hint)
}

func (f *funcSource) FetchMetadata(ctx context.Context, title string) (Metadata, error) {
	return f.fetch(ctx, title)
}

func fastRetry(attempts int) RetryOptions {
	return RetryOptions{Timeout: 50 * time.Millisecond, Attempts: attempts, Backoff: time.Millisecond}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	src := WithRetry(&funcSource{
		id: "flaky",
		list: func(ctx context.Context, hint string) ([]string, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("transient")
			}
			return []string{"Celeste"}, nil
		},
	}, fastRetry(3))

	got, err := src.ListCandidates(context.Background(), "celeste")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(got) != 1 || got[0] != "Celeste" {
		t.Fatalf("candidates = %v", got)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	src := WithRetry(&funcSource{
		id: "down",
		list: func(ctx context.Context, hint string) ([]string, error) {
			calls++
			return nil, boom
		},
	}, fastRetry(3))

	_, err := src.ListCandidates(context.Background(), "celeste")
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("error does not wrap the last failure: %v", err)
	}
}

func TestRetryNotFoundIsTerminal(t *testing.T) {
	calls := 0
	src := WithRetry(&funcSource{
		id: "strict",
		fetch: func(ctx context.Context, title string) (Metadata, error) {
			calls++
			return Metadata{}, ErrNotFound
		},
	}, fastRetry(3))

	_, err := src.FetchMetadata(context.Background(), "Celeste")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (not found must not retry)", calls)
	}
}

func TestRetryStopsWhenParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	src := WithRetry(&funcSource{
		id: "canceled",
		list: func(ctx context.Context, hint string) ([]string, error) {
			calls++
			return nil, ctx.Err()
		},
	}, fastRetry(3))

	_, err := src.ListCandidates(ctx, "celeste")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (canceled parent must not retry)", calls)
	}
}

func TestRetryPerAttemptTimeout(t *testing.T) {
	calls := 0
	src := WithRetry(&funcSource{
		id: "slow",
		fetch: func(ctx context.Context, title string) (Metadata, error) {
			calls++
			<-ctx.Done()
			return Metadata{}, ctx.Err()
		},
	}, RetryOptions{Timeout: 5 * time.Millisecond, Attempts: 2, Backoff: time.Millisecond})

	_, err := src.FetchMetadata(context.Background(), "Celeste")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (per-attempt timeout keeps the parent alive)", calls)
	}
}

func TestRetryIDPassthrough(t *testing.T) {
	src := WithRetry(&funcSource{id: "cheapshark"}, RetryOptions{})
	if src.ID() != "cheapshark" {
		t.Fatalf("ID = %q", src.ID())
	}
}
