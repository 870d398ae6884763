package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/spfrm/internal/config"
	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/specialistvlad/spfrm/internal/fsutil"
	"github.com/specialistvlad/spfrm/modules/env_vars"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	env map[string]string
}

// NewLoader creates a new HCL manifest loader that exposes the process
// environment as `env`.
func NewLoader() *Loader {
	return &Loader{env: env_vars.Environment()}
}

// NewLoaderWithEnv creates a loader that exposes env instead of the process
// environment.
func NewLoaderWithEnv(env map[string]string) *Loader {
	return &Loader{env: env}
}

type parsedFile struct {
	path string
	root fileRoot
}

// Load parses every .hcl file under paths and merges them into one model.
// Settings from all files are applied first so that variables declared in
// any file are visible to profiles in every file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	if len(paths) == 0 {
		return nil, fmt.Errorf("no manifest paths given")
	}
	hclFiles, err := fsutil.CollectFiles(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	files := make([]parsedFile, 0, len(hclFiles))
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		files = append(files, parsedFile{path: file, root: root})
	}

	model := &config.Model{
		Settings: config.Settings{Variables: make(map[string]string)},
		BaseDir:  baseDir(paths[0]),
	}

	for _, f := range files {
		for _, s := range f.root.Settings {
			if err := l.translateSettings(ctx, s, f.path, &model.Settings); err != nil {
				return nil, err
			}
		}
	}
	evalCtx := newEvalContext(model.Settings.Variables, l.env)

	for _, f := range files {
		if err := l.translateTransports(&f.root, f.path, model); err != nil {
			return nil, err
		}
		for _, p := range f.root.Profiles {
			profile, err := l.translateProfile(ctx, p, evalCtx)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", f.path, err)
			}
			model.Profiles = append(model.Profiles, profile)
		}
	}
	if model.File.Root == "" {
		model.File.Root = model.BaseDir
	}

	logger.Debug("HCL loading complete.",
		"files", len(files),
		"profiles", len(model.Profiles),
		"variables", len(model.Settings.Variables),
		"notify", model.Notify != nil,
	)
	return model, nil
}

func baseDir(path string) string {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}
