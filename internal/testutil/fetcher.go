package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/spfrm/internal/request"
)

// FakeFetcher is a fetcher whose fetches block until the test releases them
// by request key. In auto mode every fetch succeeds immediately.
type FakeFetcher struct {
	mu    sync.Mutex
	auto  bool
	calls map[string]int
	order []string
	gates map[string]chan error
}

// NewFakeFetcher returns a gated FakeFetcher.
func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		calls: make(map[string]int),
		gates: make(map[string]chan error),
	}
}

// NewAutoFetcher returns a FakeFetcher that completes every fetch at once.
func NewAutoFetcher() *FakeFetcher {
	f := NewFakeFetcher()
	f.auto = true
	return f
}

// Fetch records the call and blocks until the key is released or ctx ends.
func (f *FakeFetcher) Fetch(ctx context.Context, req request.Request) error {
	f.mu.Lock()
	f.calls[req.Key]++
	f.order = append(f.order, req.Key)
	if f.auto {
		f.mu.Unlock()
		return nil
	}
	gate := f.gateLocked(req.Key)
	f.mu.Unlock()

	select {
	case err := <-gate:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Complete lets the fetch for key succeed.
func (f *FakeFetcher) Complete(key string) {
	f.release(key, nil)
}

// Fail makes the fetch for key return err.
func (f *FakeFetcher) Fail(key string, err error) {
	f.release(key, err)
}

func (f *FakeFetcher) release(key string, err error) {
	f.mu.Lock()
	gate := f.gateLocked(key)
	f.mu.Unlock()
	select {
	case gate <- err:
	default:
	}
}

func (f *FakeFetcher) gateLocked(key string) chan error {
	gate, ok := f.gates[key]
	if !ok {
		gate = make(chan error, 8)
		f.gates[key] = gate
	}
	return gate
}

// Calls returns how many times key was fetched.
func (f *FakeFetcher) Calls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

// Total returns the number of fetches across all keys.
func (f *FakeFetcher) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

// Order returns the keys in the order their fetches started.
func (f *FakeFetcher) Order() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}
