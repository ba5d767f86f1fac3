package launch

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/cmd/helper"
	"github.com/plai-group/primitive-runner/internal/pkg/launch"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Category:  "launch",
		Usage:     "List the launches a launch file describes",
		UsageText: "primitive-runner launch list [options] <launch-file>",
		Flags:     launchFileFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			file, err := parseLaunchFile(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(listCommandCLIErrorMsg, err), 1)
			}

			outputLaunchList(cmd, file.Launches)
			return nil
		},
	}
}

func outputLaunchList(cmd *cli.Command, launches []*launch.Launch) {

	out := pterm.TableData{{"ID", "Image", "Host Dir", "Script"}}

	for _, l := range launches {
		stub := l.Stub()
		out = append(out, []string{stub.ID, stub.Image, stub.Host, stub.Script})
	}

	body, _ := pterm.DefaultTable.WithHasHeader().WithData(out).Srender()
	_, _ = fmt.Fprintln(cmd.Root().Writer, body)
}
