package loader

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/spfrm/internal/clock"
	"github.com/specialistvlad/spfrm/internal/request"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Resource is one externally loadable unit, created through Registry.Resource.
type Resource struct {
	req request.Request
	reg *Registry

	mu        sync.Mutex
	state     State
	listeners []func()
	callbacks []*Callback
	timer     clock.Timer
	span      trace.Span
	startedAt time.Time
	elapsed   time.Duration
	err       *LoadTimeoutError
}

func newResource(reg *Registry, req request.Request) *Resource {
	return &Resource{req: req, reg: reg}
}

// Key returns the raw request string this resource was requested with.
func (r *Resource) Key() string { return r.req.Key }

// Address returns the fetch address with directives stripped.
func (r *Resource) Address() string { return r.req.Address }

// Name returns the last path segment of the address.
func (r *Resource) Name() string { return r.req.Name() }

// Timeout returns the load deadline.
func (r *Resource) Timeout() time.Duration { return r.req.Timeout }

// Async returns the async load hint.
func (r *Resource) Async() bool { return r.req.Async }

// Request returns the parsed request.
func (r *Resource) Request() request.Request { return r.req }

// State returns the current lifecycle state.
func (r *Resource) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the timeout error once the resource has timed out, nil otherwise.
func (r *Resource) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		return nil
	}
	return r.err
}

// AddCallback makes cb wait for this resource as well.
func (r *Resource) AddCallback(cb *Callback) {
	if cb == nil {
		return
	}
	cb.Need(r)
}

// OnSettled wraps fn in a new Callback bound to this resource only. If the
// resource is already loaded, fn runs before OnSettled returns.
func (r *Resource) OnSettled(fn Func) *Callback {
	return NewCallback(fn, r)
}

// AddLoadListener queues fn to run once when the resource loads. Listeners run
// in registration order and never run if the resource times out. A listener
// added after the resource loaded runs immediately.
func (r *Resource) AddLoadListener(fn func()) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	switch r.state {
	case Loaded:
		r.mu.Unlock()
		fn()
		return
	case TimedOut:
		r.mu.Unlock()
		return
	}
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Load starts fetching the resource. Only the first call has any effect.
func (r *Resource) Load() {
	r.mu.Lock()
	if r.state != Pending {
		r.mu.Unlock()
		return
	}
	r.state = Loading
	r.startedAt = r.reg.clock.Now()
	ctx, span := r.reg.tracer.Start(r.reg.ctx, "spfrm.resource.load",
		trace.WithAttributes(
			attribute.String("spfrm.key", r.req.Key),
			attribute.String("spfrm.address", r.req.Address),
			attribute.Bool("spfrm.async", r.req.Async),
			attribute.Int64("spfrm.timeout_ms", r.req.Timeout.Milliseconds()),
		),
	)
	r.span = span
	r.mu.Unlock()

	r.reg.logger.Debug("Resource load started.", "key", r.req.Key, "address", r.req.Address, "timeout", r.req.Timeout, "async", r.req.Async)
	r.reg.emit(r.event(Loading, 0, nil))

	// Loading is emitted before the deadline can produce TimedOut.
	r.mu.Lock()
	r.timer = r.reg.clock.AfterFunc(r.req.Timeout, r.expire)
	r.mu.Unlock()

	go r.fetch(ctx)
}

// fetch runs the transport and reports the completion signal.
func (r *Resource) fetch(ctx context.Context) {
	if err := r.reg.fetcher.Fetch(ctx, r.req); err != nil {
		r.reg.logger.Debug("Fetch failed, waiting on deadline.", "key", r.req.Key, "address", r.req.Address, "error", err)
		return
	}
	r.complete()
}

// complete applies the Loaded transition. Signals arriving after a terminal
// state are dropped.
func (r *Resource) complete() {
	r.mu.Lock()
	if r.state != Loading {
		state := r.state
		r.mu.Unlock()
		r.reg.logger.Debug("Ignoring completion signal for settled resource.", "key", r.req.Key, "state", state)
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.state = Loaded
	r.elapsed = r.reg.clock.Now().Sub(r.startedAt)
	listeners := r.listeners
	r.listeners = nil
	r.callbacks = nil
	span, elapsed := r.span, r.elapsed
	r.mu.Unlock()

	span.SetStatus(codes.Ok, "")
	span.End()
	r.reg.logger.Debug("Resource loaded.", "key", r.req.Key, "elapsed", elapsed, "listeners", len(listeners))

	for _, fn := range listeners {
		fn()
	}
	r.reg.emit(r.event(Loaded, elapsed, nil))
}

// expire applies the TimedOut transition and fails every bound callback.
func (r *Resource) expire() {
	r.mu.Lock()
	if r.state != Loading {
		r.mu.Unlock()
		return
	}
	r.state = TimedOut
	r.elapsed = r.reg.clock.Now().Sub(r.startedAt)
	r.err = &LoadTimeoutError{Key: r.req.Key, Address: r.req.Address, Timeout: r.req.Timeout}
	r.listeners = nil
	callbacks := r.callbacks
	r.callbacks = nil
	span, elapsed, err := r.span, r.elapsed, r.err
	r.mu.Unlock()

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
	r.reg.logger.Warn("Resource load timed out.", "key", r.req.Key, "address", r.req.Address, "timeout", r.req.Timeout, "callbacks", len(callbacks))

	for _, cb := range callbacks {
		cb.fail(r, err)
	}
	r.reg.emit(r.event(TimedOut, elapsed, err))
}

// attach registers cb for this resource's outcome and reports the state seen
// at registration. For a non-terminal resource, cb is bound for timeout
// notification and, when listen is true, queued to resolve on load.
func (r *Resource) attach(cb *Callback, listen bool) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case Loaded:
		return Loaded, nil
	case TimedOut:
		return TimedOut, r.err
	}
	if !r.boundLocked(cb) {
		r.callbacks = append(r.callbacks, cb)
	}
	if listen {
		r.listeners = append(r.listeners, func() { cb.resolve(r) })
	}
	return r.state, nil
}

func (r *Resource) boundLocked(cb *Callback) bool {
	for _, existing := range r.callbacks {
		if existing == cb {
			return true
		}
	}
	return false
}

func (r *Resource) event(state State, elapsed time.Duration, err error) Event {
	ev := Event{
		Key:     r.req.Key,
		Address: r.req.Address,
		Name:    r.req.Name(),
		State:   state,
		Elapsed: elapsed,
		At:      r.reg.clock.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}

// Status is a point-in-time view of a Resource.
type Status struct {
	Key     string        `json:"key"`
	Address string        `json:"address"`
	Name    string        `json:"name"`
	State   State         `json:"state"`
	Async   bool          `json:"async"`
	Timeout time.Duration `json:"timeout_ns"`
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Status returns a snapshot of the resource.
func (r *Resource) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := Status{
		Key:     r.req.Key,
		Address: r.req.Address,
		Name:    r.req.Name(),
		State:   r.state,
		Async:   r.req.Async,
		Timeout: r.req.Timeout,
		Elapsed: r.elapsed,
	}
	if r.err != nil {
		st.Error = r.err.Error()
	}
	return st
}
