package loader

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/spfrm/internal/clock"
	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/specialistvlad/spfrm/internal/testutil"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	reg     *Registry
	clock   *clock.Fake
	fetcher *testutil.FakeFetcher
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	clk := clock.NewFake(epoch)
	fetcher := testutil.NewFakeFetcher()
	opts = append([]Option{WithClock(clk)}, opts...)
	reg := New(ctxlog.Discard(context.Background()), fetcher, opts...)
	t.Cleanup(reg.Close)
	return &harness{reg: reg, clock: clk, fetcher: fetcher}
}

// complete releases the fetch for key and waits for the Loaded transition.
func (h *harness) complete(t *testing.T, key string) {
	t.Helper()
	res, ok := h.reg.Lookup(key)
	require.True(t, ok, "resource %q not registered", key)
	h.fetcher.Complete(key)
	require.Eventually(t, func() bool { return res.State() == Loaded },
		time.Second, time.Millisecond, "resource %q never loaded", key)
}

// recorder captures every invocation of a Func.
type recorder struct {
	mu    sync.Mutex
	calls []error
	times []time.Time
	clock clock.Clock
}

func newRecorder(c clock.Clock) *recorder {
	return &recorder{clock: c}
}

func (r *recorder) fn(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, err)
	if r.clock != nil {
		r.times = append(r.times, r.clock.Now())
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() (error, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var at time.Time
	if len(r.times) > 0 {
		at = r.times[len(r.times)-1]
	}
	return r.calls[len(r.calls)-1], at
}
