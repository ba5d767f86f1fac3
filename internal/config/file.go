package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// ParseFile decodes an HCL runner configuration file. Only the settings it
// names are set on the returned config.
func ParseFile(path string) (*Config, error) {

	if filepath.Ext(path) != ".hcl" {
		return nil, fmt.Errorf("unsupported configuration file extension %q", filepath.Ext(path))
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return Parse(path, src)
}

func Parse(filename string, src []byte) (*Config, error) {

	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, errors.New(diags.Error())
	}

	var cfg Config

	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, errors.New(diags.Error())
	}

	return &cfg, nil
}
