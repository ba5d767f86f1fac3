package state

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/pkg/logger"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
	"github.com/plai-group/primitive-runner/internal/state/dev"
	"github.com/plai-group/primitive-runner/internal/state/file"
)

const (
	BackendDev  = "dev"
	BackendFile = "file"
)

type Config struct {
	Backend string `hcl:"backend,optional"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendFile,
	}
}

func (c *Config) Merge(other *Config) *Config {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}

	result := *c

	if other.Backend != "" {
		result.Backend = other.Backend
	}

	return &result
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendDev, BackendFile:
		return nil
	default:
		return fmt.Errorf("unsupported state backend: %q", c.Backend)
	}
}

func NewBackend(cfg *Config, dataDir string, log *zap.Logger) (state.State, error) {
	switch cfg.Backend {
	case BackendDev:
		return dev.New(), nil
	case BackendFile:
		return file.New(dataDir, log.Named(logger.ComponentNameState)), nil
	default:
		return nil, fmt.Errorf("unsupported state backend: %q", cfg.Backend)
	}
}
