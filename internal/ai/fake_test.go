package ai_test

import (
	"context"
	"sync"

	"github.com/myrjola/plottwist/internal/ai"
)

// fakeBackend returns a canned completion and records the requests it receives.
type fakeBackend struct {
	mu         sync.Mutex
	completion ai.Completion
	err        error
	block      bool
	requests   []ai.Request
}

func (f *fakeBackend) Name() string {
	return "fake"
}

func (f *fakeBackend) Generate(ctx context.Context, req ai.Request) (ai.Completion, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return ai.Completion{}, ctx.Err()
	}
	return f.completion, f.err
}
