package suspicion

import (
	"context"
	"runtime"
)

// Analyzer gates the CPU-bound suspicion scan behind a bounded semaphore
// so that large object streams never saturate the request goroutines.
// The calling goroutine blocks until a slot is free or its context ends.
type Analyzer struct {
	sem chan struct{}
}

// NewAnalyzer creates an Analyzer with the given concurrency limit.
// A limit of 0 or less defaults to GOMAXPROCS.
func NewAnalyzer(limit int) *Analyzer {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Analyzer{sem: make(chan struct{}, limit)}
}

// CheckRaw parses and evaluates raw .osu content under the concurrency
// limit. It returns the context error if the slot could not be acquired.
func (a *Analyzer) CheckRaw(ctx context.Context, raw string) (bool, error) {
	select {
	case a.sem <- struct{}{}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	defer func() { <-a.sem }()

	return CheckRaw(raw)
}
