package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/cmd/helper"
	"github.com/plai-group/primitive-runner/internal/cmd/launch"
	"github.com/plai-group/primitive-runner/internal/cmd/run"
	"github.com/plai-group/primitive-runner/internal/pkg/version"
)

func main() {

	cli.VersionPrinter = func(cmd *cli.Command) {
		_, _ = fmt.Fprint(cmd.Writer, helper.FormatKV([]string{
			fmt.Sprintf("Version|%s", cmd.Version),
			fmt.Sprintf("Build Time|%s", version.BuildTime),
			fmt.Sprintf("Build Commit|%s", version.BuildCommit),
		}))
		_, _ = fmt.Fprint(cmd.Writer, "\n")
	}

	cliApp := cli.Command{
		Commands: []*cli.Command{
			launch.Command(),
			run.Command(),
		},
		Name:  "primitive-runner",
		Usage: "Run ML primitive pipelines inside a container runtime",
		Description: strings.TrimSpace(`
Primitive Runner launches a container with a project directory mounted,
installs the project, generates a pipeline and evaluates it with the
runtime's fit-produce command. Launches are described in HCL files, and
every run is recorded together with its logs and outputs.`),
		Version:                   version.Get(),
		HideHelpCommand:           true,
		DisableSliceFlagSeparator: true,
	}

	// The first signal cancels the running launch, the container is asked to
	// stop and the run is recorded as cancelled.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cliApp.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprint(os.Stderr, err.Error()+"\n")
		stop()
		os.Exit(1)
	}
}
