// Package http_client fetches http and https addresses through a shared,
// pooled *http.Client.
package http_client

import "github.com/specialistvlad/spfrm/internal/handlers"

// Module implements the handlers.Module interface. It registers one Fetcher
// for both http and https.
type Module struct {
	Fetcher *Fetcher
}

// NewModule creates the module with a Fetcher built from settings.
func NewModule(settings Settings) *Module {
	return &Module{Fetcher: New(settings)}
}

// Register registers the fetcher for the http and https schemes.
func (m *Module) Register(h *handlers.Handlers) {
	if m.Fetcher == nil {
		m.Fetcher = New(Settings{})
	}
	h.RegisterFetcher("http", m.Fetcher)
	h.RegisterFetcher("https", m.Fetcher)
}
