package loader

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/specialistvlad/spfrm/internal/clock"
	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/specialistvlad/spfrm/internal/request"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/specialistvlad/spfrm/internal/loader"

// Fetcher retrieves the content behind a request. Returning nil is the
// completion signal; a returned error is logged and the resource is left to
// its deadline.
type Fetcher interface {
	Fetch(ctx context.Context, req request.Request) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req request.Request) error

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, req request.Request) error {
	return f(ctx, req)
}

// Registry owns every Resource and Profile of one engine instance.
type Registry struct {
	ctx            context.Context
	cancel         context.CancelFunc
	fetcher        Fetcher
	clock          clock.Clock
	logger         *slog.Logger
	tracer         trace.Tracer
	defaultTimeout time.Duration
	observers      []Observer

	mu        sync.RWMutex
	resources map[string]*Resource
	profiles  map[string]*Profile
}

// New creates a Registry whose fetches run under ctx. The logger is taken
// from ctx via ctxlog. Close cancels in-flight fetches.
func New(ctx context.Context, fetcher Fetcher, opts ...Option) *Registry {
	ctx, cancel := context.WithCancel(ctx)
	r := &Registry{
		ctx:            ctx,
		cancel:         cancel,
		fetcher:        fetcher,
		clock:          clock.Real(),
		logger:         ctxlog.FromContext(ctx),
		tracer:         otel.Tracer(tracerName),
		defaultTimeout: request.DefaultTimeout,
		resources:      make(map[string]*Resource),
		profiles:       make(map[string]*Profile),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fetcher == nil {
		r.fetcher = FetcherFunc(func(context.Context, request.Request) error { return nil })
	}
	return r
}

// DefaultTimeout returns the timeout applied to requests without a timeout
// directive.
func (r *Registry) DefaultTimeout() time.Duration {
	return r.defaultTimeout
}

// Resource returns the Resource for key, creating it on first use. Keys are
// compared verbatim, directives included.
func (r *Registry) Resource(key string) *Resource {
	r.mu.RLock()
	res, ok := r.resources[key]
	r.mu.RUnlock()
	if ok {
		return res
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.resources[key]; ok {
		return res
	}
	res = newResource(r, request.Parse(key, r.defaultTimeout))
	r.resources[key] = res
	r.logger.Debug("Resource registered.", "key", key, "address", res.Address(), "timeout", res.Timeout())
	return res
}

// Lookup returns the Resource for key without creating it.
func (r *Registry) Lookup(key string) (*Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[key]
	return res, ok
}

// Resources returns every registered Resource ordered by key.
func (r *Registry) Resources() []*Resource {
	r.mu.RLock()
	out := make([]*Resource, 0, len(r.resources))
	for _, res := range r.resources {
		out = append(out, res)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Snapshot returns the status of every registered Resource ordered by key.
func (r *Registry) Snapshot() []Status {
	resources := r.Resources()
	out := make([]Status, len(resources))
	for i, res := range resources {
		out[i] = res.Status()
	}
	return out
}

// Declare creates the profile name, replacing any earlier profile of that
// name. The old dependency list is discarded, not merged.
func (r *Registry) Declare(name string) *Profile {
	p := &Profile{name: name, reg: r}
	r.mu.Lock()
	_, replaced := r.profiles[name]
	r.profiles[name] = p
	r.mu.Unlock()
	r.logger.Debug("Profile declared.", "profile", name, "replaced", replaced)
	return p
}

// Profile returns the current profile registered under name.
func (r *Registry) Profile(name string) (*Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	return p, ok
}

// Profiles returns every declared profile ordered by name.
func (r *Registry) Profiles() []*Profile {
	r.mu.RLock()
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Close cancels every in-flight fetch. Pending deadlines still fire.
func (r *Registry) Close() {
	r.cancel()
}

func (r *Registry) emit(ev Event) {
	for _, o := range r.observers {
		o.Observe(ev)
	}
}
