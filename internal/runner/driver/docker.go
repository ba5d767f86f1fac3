package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/pkg/logger"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
	"github.com/plai-group/primitive-runner/internal/runner/logs"
)

// DefaultDockerBinary is looked up on PATH.
const DefaultDockerBinary = "docker"

// dockerWaitDelay is how long the docker client gets to tear the container
// down after being interrupted, before it is killed.
const dockerWaitDelay = 10 * time.Second

type Docker struct {
	binary string
	logger *zap.Logger
}

func NewDocker(binary string, log *zap.Logger) *Docker {
	if binary == "" {
		binary = DefaultDockerBinary
	}
	return &Docker{
		binary: binary,
		logger: log.Named(logger.ComponentNameDriver).With(zap.String("driver", NameDocker)),
	}
}

func (d *Docker) Name() string { return NameDocker }

func (d *Docker) Run(ctx context.Context, req *Request) (*Result, error) {

	cmd := exec.CommandContext(ctx, d.binary, req.Command.Args...)
	cmd.Stdin = req.Stdin

	// The docker client proxies the interrupt to the container.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = dockerWaitDelay

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("could not get stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("could not get stderr pipe: %w", err)
	}

	handlers := []*logs.Handler{
		logs.NewHandler(d.logger, state.LogTypeStdout, stdoutPipe, req.Stdout),
		logs.NewHandler(d.logger, state.LogTypeStderr, stderrPipe, req.Stderr),
	}

	d.logger.Info("starting container", zap.String("run_id", req.RunID.String()), zap.String("binary", d.binary))

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", d.binary, err)
	}

	var wg sync.WaitGroup
	for _, h := range handlers {
		wg.Add(1)
		go func(h *logs.Handler) {
			defer wg.Done()
			h.Start()
		}(h)
	}

	// All reads must finish before Wait closes the pipes.
	wg.Wait()
	waitErr := cmd.Wait()

	res := Result{ExitCode: cmd.ProcessState.ExitCode()}

	d.logger.Info("container exited", zap.String("run_id", req.RunID.String()), zap.Int("exit_code", res.ExitCode))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return &res, ctxErr
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return &res, fmt.Errorf("failed waiting for %s: %w", d.binary, waitErr)
	}

	return &res, nil
}
