package helper

import (
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/config"
	"github.com/plai-group/primitive-runner/internal/pkg/logger"
	pkgstate "github.com/plai-group/primitive-runner/internal/pkg/state"
	"github.com/plai-group/primitive-runner/internal/runner"
	"github.com/plai-group/primitive-runner/internal/runner/driver"
	"github.com/plai-group/primitive-runner/internal/state"
)

// Runtime is the configuration, logger and state backend a command works
// with.
type Runtime struct {
	Config *config.Config
	Logger *zap.Logger
	State  pkgstate.State
}

func NewRuntime(cmd *cli.Command) (*Runtime, error) {

	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.NewZap(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	stateImpl, err := state.NewBackend(cfg.State, cfg.DataDir, zapLogger)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Config: cfg,
		Logger: zapLogger,
		State:  stateImpl,
	}, nil
}

// Controller builds a launch controller with every available driver,
// attached to the console streams of the root command.
func (r *Runtime) Controller(cmd *cli.Command) (*runner.Controller, error) {

	nomadDriver, err := driver.NewNomad(r.Config.DriverNomadConfig(), r.Logger)
	if err != nil {
		return nil, err
	}

	return runner.NewController(&runner.ControllerConfig{
		Logger:  r.Logger,
		State:   r.State,
		DataDir: r.Config.DataDir,
		Drivers: []driver.Driver{
			driver.NewDocker(r.Config.Docker.Binary, r.Logger),
			nomadDriver,
		},
		DockerBinary: r.Config.Docker.Binary,
		Stdin:        cmd.Root().Reader,
		Stdout:       cmd.Root().Writer,
		Stderr:       cmd.Root().ErrWriter,
	}), nil
}

// Sync flushes the logger, ignoring the error stderr returns on some
// platforms.
func (r *Runtime) Sync() { _ = r.Logger.Sync() }
