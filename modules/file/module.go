// Package file fetches file:// addresses and bare paths from the local
// filesystem.
package file

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/specialistvlad/spfrm/internal/handlers"
	"github.com/specialistvlad/spfrm/internal/request"
)

// Fetcher reads local files. Relative paths are resolved against Root.
type Fetcher struct {
	Root string
}

// Path returns the filesystem path an address refers to.
func (f *Fetcher) Path(address string) (string, error) {
	path := address
	if strings.HasPrefix(strings.ToLower(address), "file://") {
		u, err := url.Parse(address)
		if err != nil {
			return "", fmt.Errorf("invalid file address '%s': %w", address, err)
		}
		path = u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = u.Host + u.Path
		}
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "", fmt.Errorf("invalid file address '%s': empty path", address)
	}
	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) && f.Root != "" {
		path = filepath.Join(f.Root, path)
	}
	return path, nil
}

// Fetch reads the file to the end.
func (f *Fetcher) Fetch(ctx context.Context, req request.Request) error {
	path, err := f.Path(req.Address)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer file.Close()

	n, err := io.Copy(io.Discard, file)
	if err != nil {
		return fmt.Errorf("failed to read '%s': %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Read local file.", "path", path, "bytes", n)
	return nil
}

// Module implements the handlers.Module interface.
type Module struct {
	Root string
}

// Register registers the fetcher for the file scheme, which also serves
// addresses without a scheme.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterFetcher(handlers.DefaultScheme, &Fetcher{Root: m.Root})
}
