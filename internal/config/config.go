package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/pkg/logger"
	"github.com/plai-group/primitive-runner/internal/runner/driver"
	"github.com/plai-group/primitive-runner/internal/state"
)

const defaultDataDirName = ".primitive-runner"

type Config struct {
	DataDir string         `hcl:"data_dir,optional"`
	Log     *logger.Config `hcl:"log,block"`
	Docker  *DockerConfig  `hcl:"docker,block"`
	Nomad   *NomadConfig   `hcl:"nomad,block"`
	State   *state.Config  `hcl:"state,block"`
}

type DockerConfig struct {
	Binary string `hcl:"binary,optional"`
}

type NomadConfig struct {
	Addr      string `hcl:"addr,optional"`
	Token     string `hcl:"token,optional"`
	Namespace string `hcl:"namespace,optional"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Log:     logger.DefaultConfig(),
		Docker: &DockerConfig{
			Binary: driver.DefaultDockerBinary,
		},
		Nomad: &NomadConfig{},
		State: state.DefaultConfig(),
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, defaultDataDirName)
	}
	return defaultDataDirName
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "The path to an HCL runner configuration file",
			Sources: cli.EnvVars("PRIMITIVE_RUNNER_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "The path to the data directory holding run records and logs",
			Sources: cli.EnvVars("PRIMITIVE_RUNNER_DATA_DIR"),
		},
		&cli.StringFlag{
			Name:    "docker-bin",
			Usage:   "The docker client binary used by the docker driver",
			Sources: cli.EnvVars("PRIMITIVE_RUNNER_DOCKER_BIN"),
		},
		&cli.StringFlag{
			Name:    "state-backend",
			Usage:   "The state backend to use (file, dev)",
			Sources: cli.EnvVars("PRIMITIVE_RUNNER_STATE_BACKEND"),
		},
		&cli.StringFlag{
			Name:    "nomad-addr",
			Usage:   "The Nomad server address used by the nomad driver",
			Sources: cli.EnvVars("NOMAD_ADDR"),
		},
		&cli.StringFlag{
			Name:    "nomad-token",
			Usage:   "The Nomad ACL token to use for HTTP requests",
			Sources: cli.EnvVars("NOMAD_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "nomad-namespace",
			Usage:   "The Nomad namespace launches are registered in",
			Sources: cli.EnvVars("NOMAD_NAMESPACE"),
		},
	}
}

func ConfigFromCLI(cmd *cli.Command) *Config {
	return &Config{
		DataDir: cmd.String("data-dir"),
		Docker: &DockerConfig{
			Binary: cmd.String("docker-bin"),
		},
		Nomad: &NomadConfig{
			Addr:      cmd.String("nomad-addr"),
			Token:     cmd.String("nomad-token"),
			Namespace: cmd.String("nomad-namespace"),
		},
		State: &state.Config{
			Backend: cmd.String("state-backend"),
		},
	}
}

// Load builds the configuration for a command: defaults, then the optional
// configuration file, then CLI flags and environment variables.
func Load(cmd *cli.Command) (*Config, error) {

	cfg := DefaultConfig()

	if path := cmd.String("config"); path != "" {
		fileCfg, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		cfg = cfg.Merge(fileCfg)
	}

	cfg.Log = cfg.Log.Merge(logger.ConfigFromCLI(cmd))
	cfg = cfg.Merge(ConfigFromCLI(cmd))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Merge(other *Config) *Config {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}

	result := *c

	if other.DataDir != "" {
		result.DataDir = other.DataDir
	}

	if other.Docker != nil {
		docker := DockerConfig{}
		if result.Docker != nil {
			docker = *result.Docker
		}
		if other.Docker.Binary != "" {
			docker.Binary = other.Docker.Binary
		}
		result.Docker = &docker
	}

	if other.Nomad != nil {
		nomad := NomadConfig{}
		if result.Nomad != nil {
			nomad = *result.Nomad
		}
		if other.Nomad.Addr != "" {
			nomad.Addr = other.Nomad.Addr
		}
		if other.Nomad.Token != "" {
			nomad.Token = other.Nomad.Token
		}
		if other.Nomad.Namespace != "" {
			nomad.Namespace = other.Nomad.Namespace
		}
		result.Nomad = &nomad
	}

	if other.State != nil {
		result.State = result.State.Merge(other.State)
	}

	if other.Log != nil {
		result.Log = result.Log.Merge(other.Log)
	}

	return &result
}

func (c *Config) Validate() error {

	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must be set"))
	}

	if c.State == nil {
		errs = append(errs, errors.New("state backend must be set"))
	} else if err := c.State.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Docker == nil || c.Docker.Binary == "" {
		errs = append(errs, errors.New("docker binary must be set"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid runner configuration: %w", err)
	}
	return nil
}

func (c *Config) DriverNomadConfig() *driver.NomadConfig {
	if c.Nomad == nil {
		return &driver.NomadConfig{}
	}
	return &driver.NomadConfig{
		Addr:      c.Nomad.Addr,
		Token:     c.Nomad.Token,
		Namespace: c.Nomad.Namespace,
	}
}
