package launch

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/cmd/helper"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
	"github.com/plai-group/primitive-runner/internal/runner"
	"github.com/plai-group/primitive-runner/internal/runner/driver"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Category:  "launch",
		Usage:     "Run a launch and record the result",
		UsageText: "primitive-runner launch run [options] <launch-file>",
		Flags:     helper.RunnerFlags(runCommandFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			file, l, err := selectLaunch(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(runCommandCLIErrorMsg, err), 1)
			}

			rt, err := helper.NewRuntime(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(runCommandCLIErrorMsg, err), 1)
			}
			defer rt.Sync()

			controller, err := rt.Controller(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(runCommandCLIErrorMsg, err), 1)
			}

			run, err := controller.Launch(ctx, &runner.LaunchReq{
				File:   file,
				Launch: l,
				Driver: cmd.String("driver"),
				DryRun: cmd.Bool("dry-run"),
				Attach: cmd.Bool("attach"),
			})
			if err != nil {
				return cli.Exit(helper.FormatError(runCommandCLIErrorMsg, err), 1)
			}

			// Dry run, the command was printed.
			if run == nil {
				return nil
			}

			_, _ = fmt.Fprint(cmd.Root().Writer, helper.FormatKV(runSummary(run)))
			_, _ = fmt.Fprint(cmd.Root().Writer, "\n")

			if run.Status != state.RunStatusSuccess {
				return cli.Exit("", exitCode(run))
			}
			return nil
		},
	}
}

func runCommandFlags() []cli.Flag {
	return append(
		launchFileFlags(),
		launchSelectFlag(),
		&cli.StringFlag{
			Name:  "driver",
			Value: driver.NameDocker,
			Usage: "The container runtime to launch on (docker, nomad)",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print the rendered command instead of running it",
		},
		&cli.BoolFlag{
			Name:  "attach",
			Value: true,
			Usage: "Attach the console to the container, disable to only write log files",
		},
	)
}

func runSummary(run *state.Run) []string {

	out := []string{
		fmt.Sprintf("Run ID|%s", run.ID),
		fmt.Sprintf("Launch ID|%s", run.LaunchID),
		fmt.Sprintf("Status|%s", run.Status),
		fmt.Sprintf("Exit Code|%d", run.ExitCode),
	}

	if run.Error != "" {
		out = append(out, fmt.Sprintf("Error|%s", run.Error))
	}

	for _, o := range run.Outputs {
		out = append(out, fmt.Sprintf("Output %s|%s (%s)", o.Name, o.HostPath, o.Detail))
	}

	return out
}

// exitCode mirrors the container's exit code, falling back to 1 when the
// container did not report a usable one.
func exitCode(run *state.Run) int {
	if run.ExitCode > 0 && run.ExitCode < 256 {
		return run.ExitCode
	}
	return 1
}
