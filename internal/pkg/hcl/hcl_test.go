package hcl

import (
	"fmt"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// evalString evaluates a template the way launch attributes are evaluated.
func evalString(t *testing.T, tpl string, evalCtx *hcl.EvalContext) (string, error) {
	t.Helper()

	expr, diags := hclsyntax.ParseTemplate([]byte(tpl), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if !val.Type().Equals(cty.String) {
		return "", fmt.Errorf("result is not a string: %s", val.Type().FriendlyName())
	}
	return val.AsString(), nil
}

func TestGenerateEvalContext(t *testing.T) {

	evalCtx, err := GenerateEvalContext(map[string]any{
		"var": map[string]any{
			"dataset": "LL1_736",
			"splits":  []any{"TRAIN", "TEST"},
		},
	})
	require.NoError(t, err)

	testCases := []struct {
		name        string
		input       string
		expected    string
		expectedErr bool
	}{
		{
			name:     "literal",
			input:    "/datasets/plain",
			expected: "/datasets/plain",
		},
		{
			name:     "variable",
			input:    "/datasets/${var.dataset}/problemDoc.json",
			expected: "/datasets/LL1_736/problemDoc.json",
		},
		{
			name:     "functions",
			input:    "${lower(var.dataset)}:${join(\",\", var.splits)}",
			expected: "ll1_736:TRAIN,TEST",
		},
		{
			name:        "unknown variable",
			input:       "${var.missing}",
			expectedErr: true,
		},
		{
			name:        "non string result",
			input:       "${var.splits}",
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := evalString(t, tc.input, evalCtx)
			if tc.expectedErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestEnvFunc(t *testing.T) {
	t.Setenv("PRIMITIVE_RUNNER_TEST_ENV", "/static")

	evalCtx, err := GenerateEvalContext(nil)
	require.NoError(t, err)

	actual, err := evalString(t, `${env("PRIMITIVE_RUNNER_TEST_ENV")}`, evalCtx)
	require.NoError(t, err)
	require.Equal(t, "/static", actual)
}

func TestCtyToGo(t *testing.T) {

	val := cty.ObjectVal(map[string]cty.Value{
		"name":  cty.StringVal("smi"),
		"count": cty.NumberIntVal(3),
		"ratio": cty.NumberFloatVal(0.5),
		"on":    cty.True,
		"args":  cty.TupleVal([]cty.Value{cty.StringVal("-s"), cty.StringVal("1")}),
		"none":  cty.NullVal(cty.String),
	})

	actual, err := CtyToGo(val)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"name":  "smi",
		"count": int64(3),
		"ratio": 0.5,
		"on":    true,
		"args":  []any{"-s", "1"},
		"none":  nil,
	}, actual)

	roundTrip, err := GoToCty(actual)
	require.NoError(t, err)
	require.True(t, roundTrip.Type().IsObjectType())
}
