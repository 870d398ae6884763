package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/spfrm/internal/config"
	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/specialistvlad/spfrm/internal/events"
	"github.com/specialistvlad/spfrm/internal/handlers"
	"github.com/specialistvlad/spfrm/internal/loader"
	"github.com/specialistvlad/spfrm/internal/metrics"
	"github.com/specialistvlad/spfrm/modules/socketio"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx      context.Context
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	handlers *handlers.Handlers
	registry *loader.Registry
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	hub      *events.Hub
	notifier *socketio.Notifier

	mu     sync.Mutex
	groups map[string][]*Group

	httpServer *http.Server
	closeOnce  sync.Once
}

// Option customizes App construction.
type Option func(*options)

type options struct {
	modules       []handlers.Module
	registryOpts  []loader.Option
	skipNotifier  bool
	extraObserver []loader.Observer
}

// WithModules replaces the core transports.
func WithModules(modules ...handlers.Module) Option {
	return func(o *options) { o.modules = modules }
}

// WithRegistryOptions passes extra options to the loader registry.
func WithRegistryOptions(opts ...loader.Option) Option {
	return func(o *options) { o.registryOpts = append(o.registryOpts, opts...) }
}

// WithObserver adds an observer of resource transitions.
func WithObserver(obs loader.Observer) Option {
	return func(o *options) { o.extraObserver = append(o.extraObserver, obs) }
}

// WithoutNotifier skips the socket.io notifier even if the manifest
// configures one.
func WithoutNotifier() Option {
	return func(o *options) { o.skipNotifier = true }
}

// NewApp is the constructor for the main application. It loads the
// manifests, wires transports and observers, and declares every profile.
// Logs are written to outW.
func NewApp(ctx context.Context, outW io.Writer, appConfig *Config, cfgLoader config.Loader, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	model, err := cfgLoader.Load(ctx, appConfig.ManifestPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.", "profiles", len(model.Profiles))

	modules := o.modules
	if len(modules) == 0 {
		modules = coreModules(model)
	}
	hndls := handlers.New(logger.With("component", "handlers"), modules...)
	logger.Debug("All transports registered.", "schemes", hndls.Schemes())

	promReg := prometheus.NewRegistry()

	a := &App{
		logger:   logger,
		config:   appConfig,
		model:    model,
		handlers: hndls,
		metrics:  metrics.New(metrics.WithRegistry(promReg)),
		gatherer: promReg,
		hub:      events.NewHub(logger.With("component", "events")),
		groups:   make(map[string][]*Group),
	}

	if model.Notify != nil && !o.skipNotifier {
		a.notifier, err = socketio.Connect(ctx, socketio.Settings{
			URL:                model.Notify.SocketIOURL,
			Namespace:          model.Notify.Namespace,
			Event:              model.Notify.Event,
			ConnectTimeout:     model.Notify.ConnectTimeout,
			InsecureSkipVerify: model.Notify.InsecureSkipVerify,
		})
		if err != nil {
			logger.Warn("Notifier disabled.", "error", err)
		}
	}

	registryOpts := []loader.Option{
		loader.WithObserver(a.metrics),
		loader.WithObserver(a.hub),
	}
	if a.notifier != nil {
		registryOpts = append(registryOpts, loader.WithObserver(a.notifier))
	}
	for _, obs := range o.extraObserver {
		registryOpts = append(registryOpts, loader.WithObserver(obs))
	}
	if model.Settings.DefaultTimeout > 0 {
		registryOpts = append(registryOpts, loader.WithDefaultTimeout(model.Settings.DefaultTimeout))
	}
	registryOpts = append(registryOpts, o.registryOpts...)

	a.registry = loader.New(ctx, hndls, registryOpts...)
	a.ctx = ctx

	for _, p := range model.Profiles {
		a.declare(p)
	}
	logger.Debug("Profiles declared.", "count", len(a.registry.Profiles()))

	return a, nil
}

// Registry returns the application's resource registry.
func (a *App) Registry() *loader.Registry {
	return a.registry
}

// Model returns the loaded manifest model.
func (a *App) Model() *config.Model {
	return a.model
}

// Close cancels in-flight fetches and disconnects every observer.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.logger.Debug("Closing application.")
		a.registry.Close()
		a.hub.Close()
		if a.notifier != nil {
			a.notifier.Close()
		}
	})
}
