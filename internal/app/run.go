package app

import (
	"context"
	"errors"
	"fmt"
)

// ErrDependenciesFailed is returned by Run when a dependency group failed or
// did not settle in time.
var ErrDependenciesFailed = errors.New("dependency groups did not load")

// Summary is the outcome of Run.
type Summary struct {
	Profiles []string      `json:"profiles"`
	Groups   []GroupResult `json:"groups"`
	Loaded   int           `json:"loaded"`
	Failed   int           `json:"failed"`
	Pending  int           `json:"pending"`
}

// Run uses the startup profiles and waits for their dependency groups.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	a.logger.Debug("App.Run method started.")
	names := unique(a.startupProfiles())
	summary := &Summary{Profiles: names}
	if len(names) == 0 {
		a.logger.Warn("No profiles selected and none marked autoload, nothing to load.")
		return summary, nil
	}

	if err := a.Use(names...); err != nil {
		return nil, err
	}

	a.logger.Info("🚀 Waiting for dependency groups...", "profiles", names)
	summary.Groups = a.waitGroups(ctx, names, a.config.Wait)
	for _, g := range summary.Groups {
		switch g.Status {
		case StatusLoaded:
			summary.Loaded++
		case StatusFailed:
			summary.Failed++
		default:
			summary.Pending++
		}
	}
	a.logger.Info("🏁 Run finished.", "loaded", summary.Loaded, "failed", summary.Failed, "pending", summary.Pending)

	if summary.Failed > 0 || summary.Pending > 0 {
		return summary, fmt.Errorf("%w: %d failed, %d pending", ErrDependenciesFailed, summary.Failed, summary.Pending)
	}
	return summary, nil
}

func unique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
