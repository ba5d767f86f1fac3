package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// GenerateEvalContext builds an evaluation context whose top level variables
// are the keys of vars. Launch files use a single "var" key so expressions
// read as var.<name>.
func GenerateEvalContext(vars map[string]any) (*hcl.EvalContext, error) {
	ctx := &hcl.EvalContext{
		Variables: make(map[string]cty.Value),
		Functions: hclFunctions(),
	}

	if len(vars) == 0 {
		return ctx, nil
	}

	varValues := make(map[string]cty.Value)

	for k, v := range vars {
		ctyVal, err := goValueToCtyValue(v)
		if err != nil {
			return nil, fmt.Errorf("failed to convert variable %q: %w", k, err)
		}
		varValues[k] = ctyVal
	}

	ctx.Variables = varValues

	return ctx, nil
}
