// Package env_vars exposes the process environment to manifests as the
// `env` object.
package env_vars

import (
	"os"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Namespace is the name under which the environment is visible to manifest
// expressions, as in "${env.CDN_BASE}".
const Namespace = "env"

// Environment returns the process environment as a map.
func Environment() map[string]string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// Value converts an environment map into a cty object of strings.
func Value(env map[string]string) cty.Value {
	if len(env) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(env))
	for k, v := range env {
		attrs[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(attrs)
}
