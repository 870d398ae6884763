package integration_tests

import (
	"context"
	"os"
	"testing"

	"github.com/specialistvlad/spfrm/internal/app"
	"github.com/specialistvlad/spfrm/internal/hcl_adapter"
	"github.com/specialistvlad/spfrm/internal/testutil"
	"github.com/stretchr/testify/require"
)

// harnessResult holds the outcome of building an App for a test.
type harnessResult struct {
	Root string
	Logs *testutil.SafeBuffer
	Err  error
	App  *app.App
}

// newTestApp writes files to a temporary directory, points cfg at it and
// builds an App with debug text logging. The App is closed on cleanup.
func newTestApp(t *testing.T, files map[string]string, cfg app.Config, opts ...app.Option) *harnessResult {
	t.Helper()

	root := testutil.WriteFiles(t, files)
	cfg.ManifestPaths = []string{root}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	opts = append([]app.Option{app.WithoutNotifier()}, opts...)
	a, err := app.NewApp(context.Background(), logs, appConfig, hcl_adapter.NewLoaderWithEnv(nil), opts...)
	if a != nil {
		t.Cleanup(a.Close)
	}
	if os.Getenv("SPFRM_TEST_LOGS") == "true" {
		t.Cleanup(func() { t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String()) })
	}
	return &harnessResult{Root: root, Logs: logs, Err: err, App: a}
}
