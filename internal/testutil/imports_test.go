package testutil

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The loader's internal tests import this package, so it may only depend on
// packages below the loader.
func TestImportsStayBelowLoader(t *testing.T) {
	allowed := map[string]bool{
		"github.com/specialistvlad/spfrm/internal/request": true,
	}

	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		require.NoError(t, err)
		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			if strings.HasPrefix(path, "github.com/specialistvlad/spfrm/") {
				assert.True(t, allowed[path], "%s imports %s", name, path)
			}
		}
	}
}
