package request

import (
	"strings"
	"time"
)

// DefaultTimeout is the load deadline used when no timeout directive is given.
const DefaultTimeout = 10 * time.Second

// Separator divides directives from each other and from the address.
const Separator = "!"

// Request is the structured form of a raw request string.
type Request struct {
	// Key is the exact raw string, directives included. It is the dedup key.
	Key string
	// Address is the location to fetch, with all directives stripped.
	Address string
	// Timeout is the load deadline.
	Timeout time.Duration
	// Async is the load hint set by the 'async' directive.
	Async bool
}

// Name returns the last path segment of the address without any query string.
// Example: "https://cdn.example.com/js/easel.js?v=2" -> "easel.js"
func (r Request) Name() string {
	name := r.Address
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Scheme returns the lower-cased URL scheme of the address, or "" when the
// address has none (a bare or relative path).
func (r Request) Scheme() string {
	i := strings.Index(r.Address, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(r.Address[:i])
}

// String implements fmt.Stringer.
func (r Request) String() string {
	return r.Key
}
