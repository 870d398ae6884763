package loader

import (
	"context"
	"sync"
)

// Func is the user function a Callback invokes once. err is nil when every
// bound resource loaded and the first timeout otherwise.
type Func func(err error)

// Callback is a one-shot join over a set of Resources.
type Callback struct {
	fn Func

	mu       sync.Mutex
	pending  int
	holds    int
	bound    int
	wants    map[*Resource]struct{}
	settled  map[*Resource]struct{}
	err      error
	failures []error
	fired    bool
	done     chan struct{}
}

// NewCallback returns a Callback that invokes fn once every resource has
// settled. When all of them are already loaded fn runs before NewCallback
// returns. fn may be nil when only Done or Wait is of interest.
func NewCallback(fn Func, resources ...*Resource) *Callback {
	cb := newCallback(fn)
	cb.hold()
	for _, r := range resources {
		cb.Need(r)
	}
	cb.release()
	return cb
}

func newCallback(fn Func) *Callback {
	return &Callback{
		fn:      fn,
		wants:   make(map[*Resource]struct{}),
		settled: make(map[*Resource]struct{}),
		done:    make(chan struct{}),
	}
}

// Need adds r to the set this Callback waits for. Binding a resource twice is
// a no-op, as is binding after the Callback fired.
func (c *Callback) Need(r *Resource) {
	if r == nil {
		return
	}
	c.mu.Lock()
	if c.fired || c.knownLocked(r) {
		c.mu.Unlock()
		return
	}
	state, err := r.attach(c, true)
	c.bound++
	switch state {
	case Loaded:
		c.settled[r] = struct{}{}
	case TimedOut:
		c.settled[r] = struct{}{}
		c.recordLocked(err)
	default:
		c.wants[r] = struct{}{}
		c.pending++
	}
	c.settleLocked()
}

func (c *Callback) knownLocked(r *Resource) bool {
	if _, ok := c.wants[r]; ok {
		return true
	}
	_, ok := c.settled[r]
	return ok
}

// resolve settles r as loaded.
func (c *Callback) resolve(r *Resource) {
	c.mu.Lock()
	if _, ok := c.wants[r]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.wants, r)
	c.settled[r] = struct{}{}
	c.pending--
	c.settleLocked()
}

// fail settles r as timed out. The first failure becomes the Callback's error.
func (c *Callback) fail(r *Resource, err error) {
	c.mu.Lock()
	if _, ok := c.wants[r]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.wants, r)
	c.settled[r] = struct{}{}
	c.pending--
	c.recordLocked(err)
	c.settleLocked()
}

func (c *Callback) recordLocked(err error) {
	if err == nil {
		return
	}
	c.failures = append(c.failures, err)
	if c.err == nil {
		c.err = err
	}
}

// hold keeps the Callback from firing while a batch of resources is bound.
func (c *Callback) hold() {
	c.mu.Lock()
	c.holds++
	c.mu.Unlock()
}

func (c *Callback) release() {
	c.mu.Lock()
	if c.holds > 0 {
		c.holds--
	}
	c.settleLocked()
}

// settleLocked fires the Callback if nothing is outstanding. It must be called
// with c.mu held and always releases it.
func (c *Callback) settleLocked() {
	if c.fired || c.pending > 0 || c.holds > 0 || c.bound == 0 {
		c.mu.Unlock()
		return
	}
	c.fired = true
	fn, err := c.fn, c.err
	c.mu.Unlock()

	if fn != nil {
		fn(err)
	}
	close(c.done)
}

// Done returns a channel closed after the Callback's function has returned.
func (c *Callback) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the Callback fires or ctx is done. It returns the
// Callback's error, or ctx.Err() if ctx ended first.
func (c *Callback) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the first failure seen, or nil.
func (c *Callback) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Failures returns every failure seen, in the order they arrived.
func (c *Callback) Failures() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]error, len(c.failures))
	copy(out, c.failures)
	return out
}

// Pending returns the number of bound resources that have not settled.
func (c *Callback) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Fired reports whether the Callback's function has been invoked.
func (c *Callback) Fired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}
