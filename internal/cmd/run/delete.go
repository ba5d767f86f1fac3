package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/cmd/helper"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Category:  "run",
		Usage:     "Delete a finished run and its logs",
		UsageText: "primitive-runner run delete [options] <run-id>",
		Flags:     helper.RunnerFlags(deleteCommandFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			id, err := runIDArg(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(deleteCommandCLIErrorMsg, err), 1)
			}

			rt, err := helper.NewRuntime(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(deleteCommandCLIErrorMsg, err), 1)
			}
			defer rt.Sync()

			getResp, errResp := rt.State.Runs().Get(&state.RunsGetReq{ID: id})
			if errResp != nil {
				return cli.Exit(helper.FormatError(deleteCommandCLIErrorMsg, errResp), 1)
			}

			if !getResp.Run.IsTerminal() && !cmd.Bool("force") {
				return cli.Exit(helper.FormatError(deleteCommandCLIErrorMsg,
					errors.New("run is still "+getResp.Run.Status)), 1)
			}

			if _, errResp := rt.State.Runs().Delete(&state.RunsDeleteReq{ID: id}); errResp != nil {
				return cli.Exit(helper.FormatError(deleteCommandCLIErrorMsg, errResp), 1)
			}

			_, _ = fmt.Fprint(cmd.Root().Writer, helper.FormatKV([]string{
				"Message|Successfully deleted run",
				fmt.Sprintf("Run ID|%s", id),
			}))
			_, _ = fmt.Fprint(cmd.Root().Writer, "\n")
			return nil
		},
	}
}

func deleteCommandFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Delete the run even if it is not finished, such as when its runner was killed",
		},
	}
}
