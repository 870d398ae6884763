// Package handlers dispatches fetches to the transport registered for the
// request's URL scheme.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/spfrm/internal/loader"
	"github.com/specialistvlad/spfrm/internal/request"
)

// ErrUnsupportedScheme is returned when no fetcher serves a request's scheme.
var ErrUnsupportedScheme = errors.New("unsupported scheme")

// DefaultScheme serves addresses without a scheme.
const DefaultScheme = "file"

// Module is a transport that registers its fetchers.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all the registered fetchers, keyed by scheme.
type Handlers struct {
	logger *slog.Logger
	mu     sync.RWMutex
	all    map[string]loader.Fetcher
}

// New creates an empty Handlers and registers the given modules. A nil
// logger drops registration logs.
func New(logger *slog.Logger, modules ...Module) *Handlers {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &Handlers{
		logger: logger,
		all:    make(map[string]loader.Fetcher),
	}
	for _, mod := range modules {
		mod.Register(h)
	}
	return h
}

// RegisterFetcher registers f for scheme. Registering a scheme twice is a
// programmer error and panics.
func (h *Handlers) RegisterFetcher(scheme string, f loader.Fetcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.all[scheme]; exists {
		panic(fmt.Sprintf("fetcher for scheme '%s' already registered", scheme))
	}
	h.logger.Debug("Registering fetcher.", "scheme", scheme)
	h.all[scheme] = f
}

// Lookup returns the fetcher for scheme.
func (h *Handlers) Lookup(scheme string) (loader.Fetcher, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, ok := h.all[scheme]
	return f, ok
}

// Schemes returns the registered schemes in sorted order.
func (h *Handlers) Schemes() []string {
	h.mu.RLock()
	out := make([]string, 0, len(h.all))
	for scheme := range h.all {
		out = append(out, scheme)
	}
	h.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Fetch implements loader.Fetcher by dispatching on the request's scheme.
func (h *Handlers) Fetch(ctx context.Context, req request.Request) error {
	scheme := req.Scheme()
	if scheme == "" {
		scheme = DefaultScheme
	}
	f, ok := h.Lookup(scheme)
	if !ok {
		return fmt.Errorf("fetch %s: %w '%s'", req.Address, ErrUnsupportedScheme, scheme)
	}
	return f.Fetch(ctx, req)
}
