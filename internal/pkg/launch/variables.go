package launch

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/ext/typeexpr"

	"github.com/plai-group/primitive-runner/internal/pkg/hcl"
)

// ParseVarFlags converts repeated name=value CLI arguments into a variable
// map. Later occurrences of a name win.
func ParseVarFlags(flags []string) (map[string]any, error) {

	vars := make(map[string]any, len(flags))

	for _, flag := range flags {
		name, value, ok := strings.Cut(flag, "=")
		if !ok {
			return nil, fmt.Errorf("invalid variable %q, expected name=value", flag)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid variable %q, name is empty", flag)
		}
		vars[name] = value
	}

	return vars, nil
}

func (v *Variable) postDecodeProcessing() error {
	if v.DefaultExpr != nil {
		val, diags := v.DefaultExpr.Value(nil)
		if diags.HasErrors() {
			return diags
		}

		var err error
		v.Default, err = hcl.CtyToGo(val)
		if err != nil {
			return fmt.Errorf("failed to convert default value: %w", err)
		}
	}

	if v.TypeExpr != nil && !isNullExpr(v.TypeExpr) {
		tp, diags := typeexpr.Type(v.TypeExpr)
		if diags.HasErrors() {
			return diags
		}

		v.Type = tp.FriendlyName()
	}

	return nil
}

// convert coerces a CLI supplied string into the declared variable type.
// Values that are not strings were supplied programmatically and are kept.
func (v *Variable) convert(raw any) (any, error) {

	s, ok := raw.(string)
	if !ok {
		return raw, nil
	}

	switch v.Type {
	case "number":
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("variable %q must be a number: %w", v.Name, err)
		}
		return f, nil
	case "bool":
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("variable %q must be a bool: %w", v.Name, err)
		}
		return b, nil
	default:
		return s, nil
	}
}

// resolveVariables merges declared defaults with supplied values. Required
// variables must be supplied even when they declare a default, and supplied
// names must be declared.
func resolveVariables(defs []*Variable, supplied map[string]any) (map[string]any, error) {

	var errs []string

	result := make(map[string]any, len(defs))
	declared := make(map[string]struct{}, len(defs))

	for _, v := range defs {

		declared[v.Name] = struct{}{}

		if v.Default != nil {
			result[v.Name] = v.Default
		}

		raw, ok := supplied[v.Name]
		if !ok {
			if v.Required {
				errs = append(errs, fmt.Sprintf("missing required variable: %s", v.Name))
			}
			continue
		}

		val, err := v.convert(raw)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		result[v.Name] = val
	}

	for name := range supplied {
		if _, ok := declared[name]; !ok {
			errs = append(errs, fmt.Sprintf("undeclared variable: %s", name))
		}
	}

	if len(errs) > 0 {
		slices.Sort(errs)
		return nil, fmt.Errorf("variable errors: %s", strings.Join(errs, "; "))
	}

	return result, nil
}
