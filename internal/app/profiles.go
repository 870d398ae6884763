package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/spfrm/internal/config"
	"github.com/specialistvlad/spfrm/internal/loader"
)

// ErrUnknownProfile is returned when using a profile that was never declared.
var ErrUnknownProfile = errors.New("unknown profile")

// Group status values.
const (
	StatusPending = "pending"
	StatusLoaded  = "loaded"
	StatusFailed  = "failed"
)

// Group is one need block of a profile: a set of request strings sharing one
// callback.
type Group struct {
	Profile string
	Name    string
	Keys    []string

	cb *loader.Callback
}

// GroupResult is the outcome of a Group at a point in time.
type GroupResult struct {
	Profile string   `json:"profile"`
	Group   string   `json:"group"`
	Keys    []string `json:"keys"`
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
}

// Result reports the group's current outcome. A group without keys is loaded.
func (g *Group) Result() GroupResult {
	res := GroupResult{Profile: g.Profile, Group: g.Name, Keys: g.Keys, Status: StatusLoaded}
	if g.cb == nil {
		return res
	}
	if !g.cb.Fired() {
		res.Status = StatusPending
		return res
	}
	if err := g.cb.Err(); err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
	}
	return res
}

// Wait blocks until the group settles or ctx ends.
func (g *Group) Wait(ctx context.Context) error {
	if g.cb == nil {
		return nil
	}
	return g.cb.Wait(ctx)
}

// declare registers p with the registry, replacing any earlier declaration
// and its groups.
func (a *App) declare(p *config.Profile) {
	profile := a.registry.Declare(p.Name)
	groups := make([]*Group, 0, len(p.Needs))
	for _, need := range p.Needs {
		g := &Group{Profile: p.Name, Name: need.Name, Keys: need.URLs}
		if len(need.URLs) > 0 {
			logger := a.logger.With("profile", p.Name, "group", need.Name)
			g.cb = profile.NeedFunc(func(err error) {
				a.metrics.GroupSettled(err)
				if err != nil {
					logger.Warn("Dependency group failed.", "error", err)
					return
				}
				logger.Info("Dependency group loaded.", "resources", len(need.URLs))
			}, need.URLs...)
		}
		groups = append(groups, g)
	}

	a.mu.Lock()
	a.groups[p.Name] = groups
	a.mu.Unlock()
}

// Groups returns the groups of the named profile.
func (a *App) Groups(name string) []*Group {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Group, len(a.groups[name]))
	copy(out, a.groups[name])
	return out
}

// Use triggers every named profile. All names are checked before any
// profile is used.
func (a *App) Use(names ...string) error {
	profiles := make([]*loader.Profile, 0, len(names))
	for _, name := range names {
		p, ok := a.registry.Profile(name)
		if !ok {
			return fmt.Errorf("%w '%s'", ErrUnknownProfile, name)
		}
		profiles = append(profiles, p)
	}
	for _, p := range profiles {
		a.logger.Info("Using profile.", "profile", p.Name(), "dependencies", len(p.Dependencies()))
		a.metrics.ProfileUsed(p.Name())
		p.Use()
	}
	return nil
}

// startupProfiles returns the configured profiles, or the autoload ones.
func (a *App) startupProfiles() []string {
	if len(a.config.Profiles) > 0 {
		return a.config.Profiles
	}
	return a.model.Autoload()
}

// waitGroups waits for every group of the named profiles. A positive wait
// bounds the total time; groups still pending afterwards are reported as
// pending.
func (a *App) waitGroups(ctx context.Context, names []string, wait time.Duration) []GroupResult {
	if wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}

	var results []GroupResult
	for _, name := range names {
		for _, g := range a.Groups(name) {
			if err := g.Wait(ctx); err != nil && ctx.Err() != nil {
				a.logger.Warn("Stopped waiting for dependency group.", "profile", g.Profile, "group", g.Name, "reason", ctx.Err())
			}
			results = append(results, g.Result())
		}
	}
	return results
}
