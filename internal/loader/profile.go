package loader

import "sync"

// Profile is a named, ordered set of Resources loaded together by Use.
type Profile struct {
	name string
	reg  *Registry

	mu   sync.Mutex
	deps []*Resource
}

// Name returns the profile name.
func (p *Profile) Name() string {
	return p.name
}

// Need appends the resources for keys to the profile. Duplicates are kept.
func (p *Profile) Need(keys ...string) *Profile {
	p.add(nil, keys)
	return p
}

// NeedFunc appends keys and binds them all to one new Callback wrapping fn.
func (p *Profile) NeedFunc(fn Func, keys ...string) *Callback {
	cb := newCallback(fn)
	p.add(cb, keys)
	return cb
}

// NeedCallback appends keys and binds each of them to cb.
func (p *Profile) NeedCallback(cb *Callback, keys ...string) *Profile {
	p.add(cb, keys)
	return p
}

func (p *Profile) add(cb *Callback, keys []string) {
	resources := make([]*Resource, len(keys))
	for i, key := range keys {
		resources[i] = p.reg.Resource(key)
	}

	p.mu.Lock()
	p.deps = append(p.deps, resources...)
	p.mu.Unlock()

	if cb == nil {
		return
	}
	cb.hold()
	for _, r := range resources {
		cb.Need(r)
	}
	cb.release()
}

// Use loads every dependency in declaration order. It may be called any
// number of times.
func (p *Profile) Use() {
	deps := p.Dependencies()
	p.reg.logger.Debug("Using profile.", "profile", p.name, "dependencies", len(deps))
	for _, r := range deps {
		r.Load()
	}
}

// Dependencies returns the profile's resources in declaration order.
func (p *Profile) Dependencies() []*Resource {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Resource, len(p.deps))
	copy(out, p.deps)
	return out
}

// Keys returns the request strings of the profile's resources in declaration
// order.
func (p *Profile) Keys() []string {
	deps := p.Dependencies()
	out := make([]string, len(deps))
	for i, r := range deps {
		out[i] = r.Key()
	}
	return out
}
