// Package driver runs a rendered launch on a container runtime.
package driver

import (
	"context"
	"io"

	"github.com/oklog/ulid/v2"

	"github.com/plai-group/primitive-runner/internal/pkg/launch"
	"github.com/plai-group/primitive-runner/internal/pkg/render"
)

const (
	NameDocker = "docker"
	NameNomad  = "nomad"
)

type Driver interface {
	Name() string

	// Run blocks until the container shell exits or ctx is cancelled. A
	// non-zero exit code is not an error.
	Run(ctx context.Context, req *Request) (*Result, error)
}

type Request struct {
	RunID   ulid.ULID
	Launch  *launch.Launch
	Command *render.Command

	// Stdin is nil when the launch is detached.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// OnRemoteID, when set, is called once the runtime has assigned its own
	// identifier to the run.
	OnRemoteID func(string)
}

type Result struct {
	ExitCode int
	RemoteID string
}
