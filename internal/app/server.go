package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/specialistvlad/spfrm/internal/loader"
	"github.com/specialistvlad/spfrm/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// profileView is the JSON form of a declared profile.
type profileView struct {
	Name         string        `json:"name"`
	Dependencies []string      `json:"dependencies"`
	Groups       []GroupResult `json:"groups"`
}

// Router returns the HTTP API of the application.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", a.healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(a.gatherer))
	r.Get("/resources", a.resourcesHandler)
	r.Get("/profiles", a.profilesHandler)
	r.Get("/profiles/{name}", a.profileHandler)
	r.Post("/profiles/{name}/use", a.useHandler)
	r.Method(http.MethodGet, "/events", a.hub)
	return r
}

// healthHandler logs the request and reports liveness.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) resourcesHandler(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.registry.Snapshot())
}

func (a *App) profilesHandler(w http.ResponseWriter, r *http.Request) {
	profiles := a.registry.Profiles()
	views := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, a.profileView(p))
	}
	a.writeJSON(w, http.StatusOK, views)
}

func (a *App) profileHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := a.registry.Profile(chi.URLParam(r, "name"))
	if !ok {
		a.writeError(w, http.StatusNotFound, fmt.Errorf("%w '%s'", ErrUnknownProfile, chi.URLParam(r, "name")))
		return
	}
	a.writeJSON(w, http.StatusOK, a.profileView(p))
}

func (a *App) useHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := a.Use(name); err != nil {
		if errors.Is(err, ErrUnknownProfile) {
			a.writeError(w, http.StatusNotFound, err)
			return
		}
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	p, _ := a.registry.Profile(name)
	a.writeJSON(w, http.StatusAccepted, a.profileView(p))
}

func (a *App) profileView(p *loader.Profile) profileView {
	view := profileView{Name: p.Name(), Dependencies: p.Keys(), Groups: []GroupResult{}}
	for _, g := range a.Groups(p.Name()) {
		view.Groups = append(view.Groups, g.Result())
	}
	if view.Dependencies == nil {
		view.Dependencies = []string{}
	}
	return view
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Failed to write response.", "error", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, status int, err error) {
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Serve uses the startup profiles and serves the HTTP API on the configured
// address until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	if a.config.Listen == "" {
		return errors.New("listen address is required")
	}
	ln, err := net.Listen("tcp", a.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Listen, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	if names := unique(a.startupProfiles()); len(names) > 0 {
		if err := a.Use(names...); err != nil {
			ln.Close()
			return err
		}
	}

	a.httpServer = &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🩺 Server starting", "address", ln.Addr().String())
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("🩺 Shutting down server...")
	a.hub.Close()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Server shut down gracefully.")
	return nil
}
