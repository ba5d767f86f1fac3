package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/pkg/helper"
	"github.com/plai-group/primitive-runner/internal/pkg/launch"
	"github.com/plai-group/primitive-runner/internal/pkg/logger"
	"github.com/plai-group/primitive-runner/internal/pkg/render"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
	"github.com/plai-group/primitive-runner/internal/runner/driver"
	"github.com/plai-group/primitive-runner/internal/runner/logs"
	"github.com/plai-group/primitive-runner/internal/runner/outputs"
	"github.com/plai-group/primitive-runner/internal/runner/result"
)

type Controller struct {
	dataDir      string
	dockerBinary string
	logger       *zap.Logger
	state        state.State
	drivers      map[string]driver.Driver

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type ControllerConfig struct {
	Logger  *zap.Logger
	State   state.State
	DataDir string
	Drivers []driver.Driver

	// DockerBinary replaces the binary of rendered commands.
	DockerBinary string

	// Console streams, os.Stdin, os.Stdout and os.Stderr when nil.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewController(cfg *ControllerConfig) *Controller {

	c := Controller{
		dataDir:      cfg.DataDir,
		dockerBinary: cfg.DockerBinary,
		logger:       cfg.Logger.Named(logger.ComponentNameRunner),
		state:        cfg.State,
		drivers:      make(map[string]driver.Driver, len(cfg.Drivers)),
		stdin:        cfg.Stdin,
		stdout:       cfg.Stdout,
		stderr:       cfg.Stderr,
	}

	for _, d := range cfg.Drivers {
		c.drivers[d.Name()] = d
	}

	if c.stdin == nil {
		c.stdin = os.Stdin
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.stderr == nil {
		c.stderr = os.Stderr
	}

	return &c
}

type LaunchReq struct {
	File   *launch.File
	Launch *launch.Launch
	Driver string

	// DryRun prints the rendered command and executes nothing.
	DryRun bool

	// Attach connects the console to the container: stdin is passed through
	// and output is echoed besides being written to the log files.
	Attach bool
}

// Render produces the command a launch runs, with the configured docker
// binary.
func (c *Controller) Render(l *launch.Launch) (*render.Command, error) {
	cmd, err := render.Render(l)
	if err != nil {
		return nil, err
	}
	if c.dockerBinary != "" {
		cmd.Binary = c.dockerBinary
	}
	return cmd, nil
}

// Launch runs a launch to completion and returns its final record. A dry run
// returns a nil run. The returned error is only set when the run could not
// be recorded; failures of the launch itself are reported through the run.
func (c *Controller) Launch(ctx context.Context, req *LaunchReq) (*state.Run, error) {

	l := req.Launch

	// Docker refuses a TTY when stdin is not a terminal, which is always the
	// case for a detached run.
	if !req.Attach && (l.Interactive == nil || *l.Interactive) {
		detached := *l
		detached.Interactive = helper.PointerOf(false)
		l = &detached
	}

	cmd, err := c.Render(l)
	if err != nil {
		return nil, err
	}

	if req.DryRun {
		_, _ = fmt.Fprintf(c.stderr, "+ %s\n", cmd.String())
		return nil, nil
	}

	driverName := req.Driver
	if driverName == "" {
		driverName = driver.NameDocker
	}

	d, ok := c.drivers[driverName]
	if !ok {
		return nil, fmt.Errorf("unknown driver %q", driverName)
	}

	run := &state.Run{
		ID:         ulid.Make(),
		LaunchID:   l.ID,
		Driver:     driverName,
		Image:      l.Image,
		Command:    cmd.Argv(),
		CreateTime: time.Now(),
	}
	if req.File != nil {
		run.LaunchFile = req.File.Path
		run.Variables = req.File.Resolved
	}

	runLogger := c.logger.With(zap.String("run_id", run.ID.String()), zap.String("launch_id", run.LaunchID))

	res, err := result.New(run, c.logger, c.state)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	if err := os.MkdirAll(state.RunDir(c.dataDir, run.ID), 0o755); err != nil {
		res.EndRun(state.RunStatusFailed, -1, err)
		return res.Run(), fmt.Errorf("failed to create run directory: %w", err)
	}

	stdoutFile, err := logs.CreateFile(state.LogPath(c.dataDir, run.ID, state.LogTypeStdout))
	if err != nil {
		res.EndRun(state.RunStatusFailed, -1, err)
		return res.Run(), fmt.Errorf("failed to create log file: %w", err)
	}
	defer func(f *os.File) { _ = f.Close() }(stdoutFile)

	stderrFile, err := logs.CreateFile(state.LogPath(c.dataDir, run.ID, state.LogTypeStderr))
	if err != nil {
		res.EndRun(state.RunStatusFailed, -1, err)
		return res.Run(), fmt.Errorf("failed to create log file: %w", err)
	}
	defer func(f *os.File) { _ = f.Close() }(stderrFile)

	driverReq := driver.Request{
		RunID:      run.ID,
		Launch:     l,
		Command:    cmd,
		Stdout:     stdoutFile,
		Stderr:     stderrFile,
		OnRemoteID: res.SetRemoteID,
	}

	if req.Attach {
		driverReq.Stdin = c.stdin
		driverReq.Stdout = io.MultiWriter(stdoutFile, c.stdout)
		driverReq.Stderr = io.MultiWriter(stderrFile, c.stderr)
	}

	runLogger.Info("executing launch", zap.String("driver", driverName))

	res.StartRun()

	driverRes, runErr := d.Run(ctx, &driverReq)

	exitCode := -1
	if driverRes != nil {
		exitCode = driverRes.ExitCode
	}

	status := runStatus(ctx, exitCode, runErr)
	if runErr == nil && status == state.RunStatusFailed {
		runErr = fmt.Errorf("container exited with code %d", exitCode)
	}

	// Outputs of a nomad run live on the client that ran the allocation.
	if driverName != driver.NameNomad {
		res.SetOutputs(outputs.Inspect(l))
	}
	res.EndRun(status, exitCode, runErr)

	runLogger.Info("launch finished", zap.String("status", status), zap.Int("exit_code", exitCode))

	return res.Run(), nil
}

func runStatus(ctx context.Context, exitCode int, err error) string {
	switch {
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return state.RunStatusCancelled
	case err != nil, exitCode != 0:
		return state.RunStatusFailed
	default:
		return state.RunStatusSuccess
	}
}
