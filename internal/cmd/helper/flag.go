package helper

import (
	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/config"
	"github.com/plai-group/primitive-runner/internal/pkg/logger"
)

// RunnerFlags are the flags every command accepting runner configuration
// carries.
func RunnerFlags(extra ...cli.Flag) []cli.Flag {
	f := append(logger.Flags(), config.Flags()...)
	return append(f, extra...)
}
