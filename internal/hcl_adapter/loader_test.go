package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/spfrm/internal/config"
	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifests(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func load(t *testing.T, env map[string]string, paths ...string) (*config.Model, error) {
	t.Helper()
	return NewLoaderWithEnv(env).Load(ctxlog.Discard(context.Background()), paths...)
}

func TestLoad_FullManifest(t *testing.T) {
	root := writeManifests(t, map[string]string{
		"main.hcl": `
settings {
  default_timeout = "5s"
  variables = {
    script_dir    = "${env.CDN}/js/"
    animation_dir = "https://cdn.example.com/anim/"
  }
}

http {
  timeout    = "30s"
  user_agent = "spfrm"
}

s3 {
  region         = "eu-west-1"
  endpoint       = "http://localhost:9000"
  use_path_style = true
}

notify {
  socketio_url    = "http://localhost:3000"
  connect_timeout = "2s"
}

profile "canvas" {
  autoload = true
  need "libraries" {
    urls = ["${script_dir}TweenMax.js", "timeout=500!${var.script_dir}easeljs.js"]
  }
  need "animation" {
    urls = ["async!${animation_dir}intro.js"]
  }
}
`,
	})

	model, err := load(t, map[string]string{"CDN": "https://cdn.example.com"}, root)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, model.Settings.DefaultTimeout)
	assert.Equal(t, config.HTTP{Timeout: 30 * time.Second, UserAgent: "spfrm"}, model.HTTP)
	assert.Equal(t, config.S3{Region: "eu-west-1", Endpoint: "http://localhost:9000", UsePathStyle: true}, model.S3)
	require.NotNil(t, model.Notify)
	assert.Equal(t, "http://localhost:3000", model.Notify.SocketIOURL)
	assert.Equal(t, 2*time.Second, model.Notify.ConnectTimeout)
	assert.Equal(t, root, model.BaseDir)
	assert.Equal(t, root, model.File.Root)

	want := []*config.Profile{{
		Name:     "canvas",
		Autoload: true,
		Needs: []*config.NeedGroup{
			{Name: "libraries", URLs: []string{
				"https://cdn.example.com/js/TweenMax.js",
				"timeout=500!https://cdn.example.com/js/easeljs.js",
			}},
			{Name: "animation", URLs: []string{"async!https://cdn.example.com/anim/intro.js"}},
		},
	}}
	if diff := cmp.Diff(want, model.Profiles); diff != "" {
		t.Errorf("profiles mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_VariablesVisibleAcrossFiles(t *testing.T) {
	root := writeManifests(t, map[string]string{
		"a_profiles.hcl": `
profile "p" {
  need "g" { urls = ["${base}a.js"] }
}
`,
		"z_settings.hcl": `
settings {
  variables = { base = "lib/" }
}
`,
	})

	model, err := load(t, nil, root)
	require.NoError(t, err)
	require.Len(t, model.Profiles, 1)
	assert.Equal(t, []string{"lib/a.js"}, model.Profiles[0].Keys())
	assert.Nil(t, model.Notify)
	assert.Zero(t, model.Settings.DefaultTimeout)
}

func TestLoad_SingleFilePath(t *testing.T) {
	root := writeManifests(t, map[string]string{
		"site/app.hcl": `
profile "x" {
  need "g" { urls = [] }
}
`,
	})

	model, err := load(t, nil, filepath.Join(root, "site", "app.hcl"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "site"), model.BaseDir)
	require.Len(t, model.Profiles, 1)
	assert.Empty(t, model.Profiles[0].Keys())
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "syntax error",
			content: `profile "p" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "bad duration",
			content: `settings { default_timeout = "soon" }`,
			wantErr: "invalid default_timeout",
		},
		{
			name: "unknown variable",
			content: `
profile "p" {
  need "g" { urls = ["${missing}a.js"] }
}
`,
			wantErr: "profile 'p', need 'g'",
		},
		{
			name: "urls not a list",
			content: `
profile "p" {
  need "g" { urls = "a.js" }
}
`,
			wantErr: "must be a list of strings",
		},
		{
			name:    "reserved variable",
			content: `settings { variables = { env = "x" } }`,
			wantErr: "variable name 'env' is reserved",
		},
		{
			name:    "missing notify url",
			content: `notify {}`,
			wantErr: "failed to decode HCL file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := writeManifests(t, map[string]string{"main.hcl": tc.content})
			_, err := load(t, nil, root)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_NoFiles(t *testing.T) {
	_, err := load(t, nil, t.TempDir())
	assert.ErrorContains(t, err, "no .hcl files found")

	_, err = load(t, nil)
	assert.ErrorContains(t, err, "no manifest paths given")

	_, err = load(t, nil, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
