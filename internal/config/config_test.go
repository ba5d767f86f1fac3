package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/pkg/logger"
	"github.com/plai-group/primitive-runner/internal/runner/driver"
	"github.com/plai-group/primitive-runner/internal/state"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, driver.DefaultDockerBinary, cfg.Docker.Binary)
	require.Equal(t, state.BackendFile, cfg.State.Backend)
	require.NotEmpty(t, cfg.DataDir)
}

func TestParseFile(t *testing.T) {

	cfg, err := ParseFile(filepath.Join("testdata", "runner.hcl"))
	require.NoError(t, err)

	require.Equal(t, "/var/lib/primitive-runner", cfg.DataDir)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, *cfg.Log.JSON)
	require.Nil(t, cfg.Log.IncludeLine)
	require.Equal(t, "/usr/bin/podman", cfg.Docker.Binary)
	require.Equal(t, "http://nomad.service.consul:4646", cfg.Nomad.Addr)
	require.Equal(t, "ml", cfg.Nomad.Namespace)
	require.Equal(t, state.BackendDev, cfg.State.Backend)

	merged := DefaultConfig().Merge(cfg)
	require.NoError(t, merged.Validate())
	require.Equal(t, "/usr/bin/podman", merged.Docker.Binary)
	require.False(t, *merged.Log.IncludeLine)
	require.Equal(t, &driver.NomadConfig{Addr: "http://nomad.service.consul:4646", Namespace: "ml"}, merged.DriverNomadConfig())
}

func TestParse_Errors(t *testing.T) {

	_, err := ParseFile("runner.json")
	require.ErrorContains(t, err, "unsupported configuration file extension")

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.hcl"))
	require.ErrorContains(t, err, "failed to read configuration file")

	_, err = Parse("bad.hcl", []byte(`unknown_attr = 1`))
	require.Error(t, err)

	_, err = Parse("bad.hcl", []byte(`data_dir = `))
	require.Error(t, err)
}

func TestConfig_Merge(t *testing.T) {

	base := DefaultConfig()

	merged := base.Merge(&Config{
		Docker: &DockerConfig{},
		Nomad:  &NomadConfig{Token: "secret"},
		State:  &state.Config{Backend: state.BackendDev},
	})

	require.Equal(t, base.DataDir, merged.DataDir)
	require.Equal(t, driver.DefaultDockerBinary, merged.Docker.Binary)
	require.Equal(t, "secret", merged.Nomad.Token)
	require.Equal(t, state.BackendDev, merged.State.Backend)

	// The receiver is left untouched.
	require.Empty(t, base.Nomad.Token)
	require.Equal(t, state.BackendFile, base.State.Backend)

	require.Equal(t, base, base.Merge(nil))
}

func TestConfig_Validate(t *testing.T) {

	cfg := DefaultConfig()
	cfg.DataDir = ""
	cfg.State.Backend = "nomad-vars"

	err := cfg.Validate()
	require.ErrorContains(t, err, "data_dir must be set")
	require.ErrorContains(t, err, "unsupported state backend")
}

func TestLoad(t *testing.T) {

	var loaded *Config

	cmd := &cli.Command{
		Name:  "test",
		Flags: append(logger.Flags(), Flags()...),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := Load(cmd)
			loaded = cfg
			return err
		},
	}

	err := cmd.Run(context.Background(), []string{
		"test",
		"--config", filepath.Join("testdata", "runner.hcl"),
		"--data-dir", "/tmp/runs",
		"--log-level", "warn",
	})
	require.NoError(t, err)

	require.Equal(t, "/tmp/runs", loaded.DataDir)
	require.Equal(t, "warn", loaded.Log.Level)
	require.True(t, *loaded.Log.JSON)
	require.Equal(t, "/usr/bin/podman", loaded.Docker.Binary)
	require.Equal(t, state.BackendDev, loaded.State.Backend)
}
