package launch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	hhcl "github.com/plai-group/primitive-runner/internal/pkg/hcl"
)

// ParseFile reads and decodes a launch file. Variables are resolved from
// their declared defaults and the supplied values before any launch block is
// evaluated, so launch attributes can reference var.<name>.
func ParseFile(path string, vars map[string]any) (*File, error) {

	if fileExt := filepath.Ext(path); fileExt != ".hcl" {
		return nil, fmt.Errorf("unsupported file extension: %q", fileExt)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(path, data, vars)
}

// Parse decodes launch file source. The filename is only used in
// diagnostics.
func Parse(filename string, src []byte, vars map[string]any) (*File, error) {

	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}

	// Variables are decoded first, everything else is left in the remaining
	// body until the evaluation context exists.
	varsObj := struct {
		Variables []*Variable `hcl:"variable,block"`
		Remain    hcl.Body    `hcl:",remain"`
	}{}

	if diags := gohcl.DecodeBody(file.Body, nil, &varsObj); diags.HasErrors() {
		return nil, diags
	}

	for _, v := range varsObj.Variables {
		if err := v.postDecodeProcessing(); err != nil {
			return nil, fmt.Errorf("failed to decode variable %q: %w", v.Name, err)
		}
	}

	resolved, err := resolveVariables(varsObj.Variables, vars)
	if err != nil {
		return nil, err
	}

	evalCtx, err := hhcl.GenerateEvalContext(map[string]any{"var": resolved})
	if err != nil {
		return nil, fmt.Errorf("failed to create eval context: %w", err)
	}

	launchObj := struct {
		Launches []*Launch `hcl:"launch,block"`
	}{}

	if diags := gohcl.DecodeBody(varsObj.Remain, evalCtx, &launchObj); diags.HasErrors() {
		return nil, diags
	}

	if len(launchObj.Launches) == 0 {
		return nil, errors.New("no launch blocks found")
	}

	seen := make(map[string]struct{}, len(launchObj.Launches))

	for _, l := range launchObj.Launches {
		if _, ok := seen[l.ID]; ok {
			return nil, fmt.Errorf("duplicate launch %q", l.ID)
		}
		seen[l.ID] = struct{}{}
		l.Canonicalize()
	}

	return &File{
		Path:      filename,
		Variables: varsObj.Variables,
		Launches:  launchObj.Launches,
		Resolved:  resolved,
	}, nil
}

// Get selects a launch by ID. An empty ID is accepted when the file holds
// exactly one launch.
func (f *File) Get(id string) (*Launch, error) {

	if id == "" {
		if len(f.Launches) == 1 {
			return f.Launches[0], nil
		}
		ids := make([]string, 0, len(f.Launches))
		for _, l := range f.Launches {
			ids = append(ids, l.ID)
		}
		slices.Sort(ids)
		return nil, fmt.Errorf("file contains %d launches, select one of: %s",
			len(ids), strings.Join(ids, ", "))
	}

	for _, l := range f.Launches {
		if l.ID == id {
			return l, nil
		}
	}

	return nil, fmt.Errorf("launch %q not found in %s", id, f.Path)
}

func isNullExpr(expr hcl.Expression) bool {
	val, diags := expr.Value(nil)
	return !diags.HasErrors() && val.IsNull()
}
