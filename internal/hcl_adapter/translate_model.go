// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/spfrm/internal/config"
	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/specialistvlad/spfrm/modules/env_vars"
	"github.com/zclconf/go-cty/cty"
)

// reservedVariables cannot be used as variable names.
var reservedVariables = map[string]struct{}{
	env_vars.Namespace: {},
	"var":              {},
}

// newEvalContext exposes each variable by name and under `var`, plus the
// environment under `env`.
func newEvalContext(variables, env map[string]string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(variables)+2)
	varObj := make(map[string]cty.Value, len(variables))
	for k, v := range variables {
		vars[k] = cty.StringVal(v)
		varObj[k] = cty.StringVal(v)
	}
	vars["var"] = cty.ObjectVal(varObj)
	vars[env_vars.Namespace] = env_vars.Value(env)
	return &hcl.EvalContext{Variables: vars}
}

// translateSettings merges a settings block into s. Variables are evaluated
// against the environment only.
func (l *Loader) translateSettings(ctx context.Context, b *SettingsBlock, file string, s *config.Settings) error {
	owner := fmt.Sprintf("settings block of %s", file)
	timeout, err := parseDuration(b.DefaultTimeout, "default_timeout", owner)
	if err != nil {
		return err
	}
	if b.DefaultTimeout != "" {
		s.DefaultTimeout = timeout
	}

	if !isExprDefined(ctx, b.Variables, "variables") {
		return nil
	}
	envCtx := &hcl.EvalContext{Variables: map[string]cty.Value{
		env_vars.Namespace: env_vars.Value(l.env),
	}}
	val, diags := b.Variables.Value(envCtx)
	if diags.HasErrors() {
		return fmt.Errorf("invalid variables in %s: %w", owner, diags)
	}
	vars, err := stringMap(val, "variables")
	if err != nil {
		return fmt.Errorf("in %s: %w", owner, err)
	}
	for k, v := range vars {
		if _, reserved := reservedVariables[k]; reserved {
			return fmt.Errorf("in %s: variable name '%s' is reserved", owner, k)
		}
		s.Variables[k] = v
	}
	return nil
}

// translateTransports applies the transport blocks of one file. A later block
// replaces an earlier one.
func (l *Loader) translateTransports(root *fileRoot, file string, m *config.Model) error {
	for _, b := range root.HTTP {
		timeout, err := parseDuration(b.Timeout, "timeout", "http block of "+file)
		if err != nil {
			return err
		}
		m.HTTP = config.HTTP{Timeout: timeout, UserAgent: b.UserAgent}
	}
	for _, b := range root.S3 {
		m.S3 = config.S3{
			Region:       b.Region,
			Endpoint:     b.Endpoint,
			UsePathStyle: b.UsePathStyle,
			Anonymous:    b.Anonymous,
		}
	}
	for _, b := range root.File {
		m.File = config.File{Root: b.Root}
	}
	for _, b := range root.Notify {
		timeout, err := parseDuration(b.ConnectTimeout, "connect_timeout", "notify block of "+file)
		if err != nil {
			return err
		}
		m.Notify = &config.Notify{
			SocketIOURL:        b.SocketIOURL,
			Namespace:          b.Namespace,
			Event:              b.Event,
			ConnectTimeout:     timeout,
			InsecureSkipVerify: b.InsecureSkipVerify,
		}
	}
	return nil
}

// translateProfile converts a profile block, evaluating every need's urls.
func (l *Loader) translateProfile(ctx context.Context, b *ProfileBlock, evalCtx *hcl.EvalContext) (*config.Profile, error) {
	logger := ctxlog.FromContext(ctx).With("profile", b.Name)
	logger.Debug("Translating HCL profile to internal config model.", "needs", len(b.Needs))

	p := &config.Profile{Name: b.Name, Autoload: b.Autoload}
	for _, need := range b.Needs {
		val, diags := need.URLs.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("profile '%s', need '%s': %w", b.Name, need.Name, diags)
		}
		urls, err := stringList(val, "urls")
		if err != nil {
			return nil, fmt.Errorf("profile '%s', need '%s': %w", b.Name, need.Name, err)
		}
		p.Needs = append(p.Needs, &config.NeedGroup{Name: need.Name, URLs: urls})
	}
	return p, nil
}
