package run

import (
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

const (
	deleteCommandCLIErrorMsg = "failed to delete run"
	getCommandCLIErrorMsg    = "failed to get run detail"
	listCommandCLIErrorMsg   = "failed to list runs"
	logsCommandCLIErrorMsg   = "failed to get run logs"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:            "run",
		Usage:           "Read and delete recorded launch runs",
		HideHelpCommand: true,
		UsageText:       "primitive-runner run <command> [options] [args]",
		Commands: []*cli.Command{
			deleteCommand(),
			getCommand(),
			listCommand(),
			logsCommand(),
		},
	}
}

func runIDArg(cmd *cli.Command) (ulid.ULID, error) {
	if numArgs := cmd.Args().Len(); numArgs != 1 {
		return ulid.ULID{}, fmt.Errorf("expected 1 argument, got %v", numArgs)
	}
	return ulid.Parse(cmd.Args().First())
}

func colouredRunStatus(status string) string {
	switch status {
	case state.RunStatusPending:
		return pterm.Yellow(status)
	case state.RunStatusRunning:
		return pterm.LightMagenta(status)
	case state.RunStatusSuccess:
		return pterm.Green(status)
	case state.RunStatusFailed:
		return pterm.Red(status)
	case state.RunStatusCancelled:
		return pterm.Gray(status)
	default:
		return pterm.White(status)
	}
}
