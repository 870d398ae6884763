package integration_tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/specialistvlad/spfrm/internal/app"
	"github.com/specialistvlad/spfrm/internal/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_AutoloadProfileLoads(t *testing.T) {
	srv := newScriptServer(t, map[string]string{
		"/js/TweenMax.js": "var TweenMax;",
		"/js/easeljs.js":  "var createjs;",
	}, nil)

	manifest := fmt.Sprintf(`
settings {
  variables = { script_dir = "%s/js/" }
}

profile "canvas" {
  autoload = true
  need "libraries" {
    urls = ["${script_dir}TweenMax.js", "async!${script_dir}easeljs.js"]
  }
}

profile "unused" {
  need "extra" { urls = ["${script_dir}missing.js"] }
}
`, srv.URL)

	h := newTestApp(t, map[string]string{"main.hcl": manifest}, app.Config{Wait: 5 * time.Second})
	require.NoError(t, h.Err)

	summary, err := h.App.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"canvas"}, summary.Profiles)
	require.Len(t, summary.Groups, 1)
	assert.Equal(t, app.StatusLoaded, summary.Groups[0].Status)
	assert.Equal(t, 1, summary.Loaded)

	assert.Equal(t, 1, srv.Hits("/js/TweenMax.js"))
	assert.Equal(t, 1, srv.Hits("/js/easeljs.js"))
	assert.Equal(t, 0, srv.Hits("/js/missing.js"), "profiles that are not used must not fetch")
	assert.Contains(t, h.Logs.String(), "Dependency group loaded.")
}

func TestRun_TimeoutFailsGroup(t *testing.T) {
	srv := newScriptServer(t, map[string]string{
		"/a.js": "var a;",
		"/b.js": "var b;",
	}, map[string]time.Duration{"/b.js": 2 * time.Second})

	manifest := fmt.Sprintf(`
profile "demo" {
  need "scripts" {
    urls = ["%[1]s/a.js", "timeout=100!%[1]s/b.js"]
  }
  need "broken" {
    urls = ["timeout=100!%[1]s/missing.js"]
  }
}
`, srv.URL)

	h := newTestApp(t, map[string]string{"main.hcl": manifest}, app.Config{Profiles: []string{"demo"}})
	require.NoError(t, h.Err)

	start := time.Now()
	summary, err := h.App.Run(context.Background())
	require.ErrorIs(t, err, app.ErrDependenciesFailed)
	assert.Less(t, time.Since(start), 2*time.Second, "run must end at the deadline, not when b.js arrives")

	require.Len(t, summary.Groups, 2)
	assert.Equal(t, app.StatusFailed, summary.Groups[0].Status)
	assert.Contains(t, summary.Groups[0].Error, "b.js timed out after 100ms")
	assert.Equal(t, app.StatusFailed, summary.Groups[1].Status, "a 404 is only noticed through the deadline")
	assert.Equal(t, 2, summary.Failed)

	res, ok := h.App.Registry().Lookup(srv.URL + "/a.js")
	require.True(t, ok)
	assert.Equal(t, loader.Loaded, res.State())
}

func TestRun_WaitBoundReportsPending(t *testing.T) {
	srv := newScriptServer(t, map[string]string{"/slow.js": "var s;"},
		map[string]time.Duration{"/slow.js": 2 * time.Second})

	manifest := fmt.Sprintf(`
profile "slow" {
  autoload = true
  need "all" { urls = ["%s/slow.js"] }
}
`, srv.URL)

	h := newTestApp(t, map[string]string{"main.hcl": manifest}, app.Config{Wait: 100 * time.Millisecond})
	require.NoError(t, h.Err)

	summary, err := h.App.Run(context.Background())
	require.ErrorIs(t, err, app.ErrDependenciesFailed)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, app.StatusPending, summary.Groups[0].Status)
}

func TestRun_SharedResourcesFetchOnce(t *testing.T) {
	srv := newScriptServer(t, map[string]string{"/common.js": "var c;", "/x.js": "var x;"}, nil)

	manifest := fmt.Sprintf(`
profile "one" {
  autoload = true
  need "g" { urls = ["%[1]s/common.js"] }
}

profile "two" {
  autoload = true
  need "g" { urls = ["%[1]s/common.js", "%[1]s/x.js"] }
  need "again" { urls = ["%[1]s/common.js"] }
}
`, srv.URL)

	h := newTestApp(t, map[string]string{"main.hcl": manifest}, app.Config{Wait: 5 * time.Second})
	require.NoError(t, h.Err)

	summary, err := h.App.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Loaded)
	assert.Equal(t, 1, srv.Hits("/common.js"))
}

func TestRun_RedeclaredProfileLastWins(t *testing.T) {
	srv := newScriptServer(t, map[string]string{"/old.js": "", "/new.js": ""}, nil)

	h := newTestApp(t, map[string]string{
		"a.hcl": fmt.Sprintf(`
profile "p" {
  need "g" { urls = ["%s/old.js"] }
}
`, srv.URL),
		"b.hcl": fmt.Sprintf(`
profile "p" {
  need "g" { urls = ["%s/new.js"] }
}
`, srv.URL),
	}, app.Config{Profiles: []string{"p"}, Wait: 5 * time.Second})
	require.NoError(t, h.Err)

	_, err := h.App.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, srv.Hits("/old.js"))
	assert.Equal(t, 1, srv.Hits("/new.js"))
}

func TestRun_LocalFilesAndUnknownProfile(t *testing.T) {
	files := map[string]string{
		"site.hcl": `
profile "local" {
  need "g" { urls = ["js/app.js", "timeout=100!js/missing.js"] }
}
`,
		"js/app.js": "void 0",
	}

	h := newTestApp(t, files, app.Config{Profiles: []string{"local"}})
	require.NoError(t, h.Err)

	summary, err := h.App.Run(context.Background())
	require.ErrorIs(t, err, app.ErrDependenciesFailed)
	assert.Contains(t, summary.Groups[0].Error, "js/missing.js")

	res, ok := h.App.Registry().Lookup("js/app.js")
	require.True(t, ok)
	assert.Equal(t, loader.Loaded, res.State())

	bad := newTestApp(t, files, app.Config{Profiles: []string{"nope"}})
	require.NoError(t, bad.Err)
	_, err = bad.App.Run(context.Background())
	assert.ErrorIs(t, err, app.ErrUnknownProfile)
}

func TestNewApp_InvalidManifest(t *testing.T) {
	h := newTestApp(t, map[string]string{"main.hcl": `profile "p" {`}, app.Config{})
	require.Error(t, h.Err)
	assert.ErrorContains(t, h.Err, "failed to load configuration")
	assert.Nil(t, h.App)
}
