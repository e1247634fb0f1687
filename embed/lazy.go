package embed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Lazy defers construction of an Embedder until the first Embed call.
// Construction cost (model load, client warm-up) is paid once per process:
// concurrent first callers block on a single shared barrier instead of each
// triggering a redundant construction. A failed construction is not cached;
// the next caller retries, so the provider stays unavailable only until a
// subsequent construction succeeds.
type Lazy struct {
	construct func() (Embedder, error)

	mu    sync.Mutex
	ready atomic.Pointer[Embedder]
}

// NewLazy wraps a constructor. The constructor runs at most once at a time
// and never again after it has succeeded.
func NewLazy(construct func() (Embedder, error)) *Lazy {
	return &Lazy{construct: construct}
}

func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	e, err := l.get()
	if err != nil {
		return nil, err
	}
	return e.Embed(ctx, text)
}

func (l *Lazy) get() (Embedder, error) {
	if e := l.ready.Load(); e != nil {
		return *e, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if e := l.ready.Load(); e != nil {
		return *e, nil
	}
	e, err := l.construct()
	if err != nil {
		return nil, fmt.Errorf("embed: initializing provider: %w", err)
	}
	l.ready.Store(&e)
	return e, nil
}
