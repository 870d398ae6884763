package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/specialistvlad/spfrm/internal/app"
	"github.com/specialistvlad/spfrm/internal/config"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// DefaultListen is the address serve binds to when --listen is not given.
const DefaultListen = ":8080"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

func failure(err error) error {
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel  string
	logFormat string
}

// Streams are the process outputs. Logs go to Err so Out carries only
// command results.
type Streams struct {
	Out io.Writer
	Err io.Writer
}

// NewRootCmd builds the spfrm command tree. Manifests are read with loader.
func NewRootCmd(streams Streams, loader config.Loader) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "spfrm",
		Short: "Declarative loader for shared external resources",
		Long: `spfrm loads external resources (scripts, stylesheets, objects) declared in
HCL manifests. Resources are shared by their exact request string, directives
included: "timeout=500!a.js" and "a.js" are two resources fetched separately.
Each resource is loaded at most once. Resources are grouped into named
profiles; a dependency group reports once every resource in it has loaded or
timed out, and fails with the first timeout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "json", "Log output format. Options: 'text' or 'json'.")

	root.AddCommand(
		runCmd(g, streams, loader),
		serveCmd(g, streams, loader),
	)
	return root
}

func runCmd(g *globalFlags, streams Streams, loader config.Loader) *cobra.Command {
	var (
		profiles []string
		wait     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run [MANIFEST...]",
		Short: "Load profiles once and report the outcome",
		Long: `Load the manifests, use the selected profiles (or every autoload profile),
wait for their dependency groups and print a JSON summary.

Examples:
  spfrm run site.hcl
  spfrm run --profile canvas --wait 30s manifests/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			cfg, err := app.NewConfig(app.Config{
				ManifestPaths: args,
				Profiles:      profiles,
				Wait:          wait,
				LogFormat:     g.logFormat,
				LogLevel:      g.logLevel,
			})
			if err != nil {
				return usageError(err)
			}
			return runOnce(cmd.Context(), cfg, streams, loader)
		},
	}

	cmd.Flags().StringArrayVarP(&profiles, "profile", "p", nil, "Profile to use (repeatable). Defaults to autoload profiles.")
	cmd.Flags().DurationVar(&wait, "wait", 0, "Upper bound on waiting for dependency groups. 0 waits until all settle.")
	return cmd
}

func serveCmd(g *globalFlags, streams Streams, loader config.Loader) *cobra.Command {
	var (
		profiles []string
		listen   string
	)

	cmd := &cobra.Command{
		Use:   "serve [MANIFEST...]",
		Short: "Load profiles and serve the status API",
		Long: `Load the manifests, use the selected profiles (or every autoload profile)
and serve health, metrics, resource state, profile triggers and a websocket
event stream until interrupted.

Examples:
  spfrm serve site.hcl
  spfrm serve --listen 127.0.0.1:9000 manifests/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			cfg, err := app.NewConfig(app.Config{
				ManifestPaths: args,
				Profiles:      profiles,
				Listen:        listen,
				LogFormat:     g.logFormat,
				LogLevel:      g.logLevel,
			})
			if err != nil {
				return usageError(err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, streams, loader)
		},
	}

	cmd.Flags().StringArrayVarP(&profiles, "profile", "p", nil, "Profile to use at startup (repeatable). Defaults to autoload profiles.")
	cmd.Flags().StringVar(&listen, "listen", DefaultListen, "Address for the HTTP API.")
	return cmd
}

func runOnce(ctx context.Context, cfg *app.Config, streams Streams, loader config.Loader) error {
	a, err := app.NewApp(ctx, streams.Err, cfg, loader)
	if err != nil {
		return failure(err)
	}
	defer a.Close()

	summary, runErr := a.Run(ctx)
	if errors.Is(runErr, app.ErrUnknownProfile) {
		return usageError(runErr)
	}
	if summary != nil {
		enc := json.NewEncoder(streams.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return failure(fmt.Errorf("failed to write summary: %w", err))
		}
	}
	if runErr != nil {
		return failure(runErr)
	}
	return nil
}

func serve(ctx context.Context, cfg *app.Config, streams Streams, loader config.Loader) error {
	a, err := app.NewApp(ctx, streams.Err, cfg, loader)
	if err != nil {
		return failure(err)
	}
	defer a.Close()

	if err := a.Serve(ctx); err != nil {
		if errors.Is(err, app.ErrUnknownProfile) {
			return usageError(err)
		}
		return failure(err)
	}
	return nil
}

// Execute runs the command tree with args. Every returned error is an
// *ExitError; errors raised by cobra itself count as usage errors.
func Execute(ctx context.Context, args []string, streams Streams, loader config.Loader) error {
	root := NewRootCmd(streams, loader)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return usageError(err)
}
