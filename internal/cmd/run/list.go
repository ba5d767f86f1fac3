package run

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/cmd/helper"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Category:  "run",
		Usage:     "List recorded runs, newest first",
		UsageText: "primitive-runner run list [options]",
		Flags: helper.RunnerFlags(&cli.StringFlag{
			Name:  "launch",
			Usage: "Only list runs of this launch ID",
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if numArgs := cmd.Args().Len(); numArgs != 0 {
				return cli.Exit(helper.FormatError(listCommandCLIErrorMsg,
					fmt.Errorf("expected 0 arguments, got %v", numArgs)), 1)
			}

			rt, err := helper.NewRuntime(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(listCommandCLIErrorMsg, err), 1)
			}
			defer rt.Sync()

			resp, errResp := rt.State.Runs().List(&state.RunsListReq{LaunchID: cmd.String("launch")})
			if errResp != nil {
				return cli.Exit(helper.FormatError(listCommandCLIErrorMsg, errResp), 1)
			}

			outputRunList(cmd, resp.Runs)
			return nil
		},
	}
}

func outputRunList(cmd *cli.Command, runs []*state.RunStub) {
	if len(runs) == 0 {
		_, _ = fmt.Fprint(cmd.Root().Writer, "No runs found\n")
		return
	}

	out := pterm.TableData{{"ID", "Launch ID", "Driver", "Status", "Exit Code", "Create Time"}}

	for _, run := range runs {
		out = append(out, []string{
			run.ID.String(),
			run.LaunchID,
			run.Driver,
			colouredRunStatus(run.Status),
			strconv.Itoa(run.ExitCode),
			helper.FormatTime(run.CreateTime),
		})
	}

	body, _ := pterm.DefaultTable.WithHasHeader().WithData(out).Srender()
	_, _ = fmt.Fprintln(cmd.Root().Writer, body)
}
