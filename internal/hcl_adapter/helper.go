package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional expression fields with
// zero-width placeholder expressions, so a nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// parseDuration parses an optional duration attribute. Empty means zero.
func parseDuration(value, attrName, owner string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s in %s: %w", attrName, owner, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s in %s: must not be negative", attrName, owner)
	}
	return d, nil
}

// stringMap converts an object or map value into a map of strings.
func stringMap(val cty.Value, what string) (map[string]string, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("%s must be known at load time", what)
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("%s must be an object, got %s", what, ty.FriendlyName())
	}
	out := make(map[string]string)
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		s, err := toString(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", what, k.AsString(), err)
		}
		out[k.AsString()] = s
	}
	return out, nil
}

// stringList converts a list, set or tuple value into a slice of strings.
func stringList(val cty.Value, what string) ([]string, error) {
	if val.IsNull() {
		return nil, fmt.Errorf("%s must not be null", what)
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("%s must be known at load time", what)
	}
	ty := val.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return nil, fmt.Errorf("%s must be a list of strings, got %s", what, ty.FriendlyName())
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		s, err := toString(v)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", what, len(out), err)
		}
		out = append(out, s)
	}
	return out, nil
}

func toString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", fmt.Errorf("must not be null")
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", err
	}
	return s.AsString(), nil
}
