package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/spfrm/internal/handlers"
	"github.com/specialistvlad/spfrm/internal/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "js"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "app.js"), []byte("void 0"), 0644))

	h := handlers.New(nil, &Module{Root: root})
	ctx := context.Background()

	assert.NoError(t, h.Fetch(ctx, request.Parse("js/app.js", 0)))
	assert.NoError(t, h.Fetch(ctx, request.Parse("timeout=100!js/app.js?v=3", 0)))
	assert.NoError(t, h.Fetch(ctx, request.Parse("file://"+filepath.ToSlash(filepath.Join(root, "js", "app.js")), 0)))
	assert.ErrorIs(t, h.Fetch(ctx, request.Parse("js/missing.js", 0)), os.ErrNotExist)
}

func TestPath(t *testing.T) {
	f := &Fetcher{Root: "/srv"}
	testCases := map[string]string{
		"a.js":                  filepath.FromSlash("/srv/a.js"),
		"lib/b.js?v=1":          filepath.FromSlash("/srv/lib/b.js"),
		"/abs/c.js":             filepath.FromSlash("/abs/c.js"),
		"file:///abs/d.js":      filepath.FromSlash("/abs/d.js"),
		"file://localhost/e.js": filepath.FromSlash("/e.js"),
	}
	for address, expected := range testCases {
		got, err := f.Path(address)
		require.NoError(t, err, address)
		assert.Equal(t, expected, got, address)
	}

	_, err := f.Path("file://")
	assert.Error(t, err)
}
