package state

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/state/dev"
	"github.com/plai-group/primitive-runner/internal/state/file"
)

func TestConfig(t *testing.T) {

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, BackendFile, cfg.Backend)

	merged := cfg.Merge(&Config{Backend: BackendDev})
	require.Equal(t, BackendDev, merged.Backend)
	require.Equal(t, BackendFile, cfg.Backend)
	require.Equal(t, cfg, cfg.Merge(&Config{}))

	require.ErrorContains(t, (&Config{Backend: "nomad-vars"}).Validate(), "unsupported state backend")
}

func TestNewBackend(t *testing.T) {

	s, err := NewBackend(&Config{Backend: BackendDev}, "", zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &dev.State{}, s)

	s, err = NewBackend(&Config{Backend: BackendFile}, t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &file.State{}, s)

	_, err = NewBackend(&Config{Backend: "other"}, "", zap.NewNop())
	require.Error(t, err)
}
