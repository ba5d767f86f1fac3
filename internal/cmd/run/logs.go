package run

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/cmd/helper"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
	"github.com/plai-group/primitive-runner/internal/runner/logs"
)

func logsCommand() *cli.Command {
	return &cli.Command{
		Name:      "logs",
		Category:  "run",
		Usage:     "Get the logs of a run",
		UsageText: "primitive-runner run logs [options] <run-id>",
		Flags:     helper.RunnerFlags(logsCommandFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			id, err := runIDArg(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(logsCommandCLIErrorMsg, err), 1)
			}

			logType := cmd.String("type")
			if logType != state.LogTypeStdout && logType != state.LogTypeStderr {
				return cli.Exit(helper.FormatError(logsCommandCLIErrorMsg,
					fmt.Errorf("invalid log type %q, expected stdout or stderr", logType)), 1)
			}

			rt, err := helper.NewRuntime(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(logsCommandCLIErrorMsg, err), 1)
			}
			defer rt.Sync()

			if _, errResp := rt.State.Runs().Get(&state.RunsGetReq{ID: id}); errResp != nil {
				return cli.Exit(helper.FormatError(logsCommandCLIErrorMsg, errResp), 1)
			}

			path := state.LogPath(rt.Config.DataDir, id, logType)

			if cmd.Bool("follow") {
				return logStream(ctx, cmd, path)
			}
			return logGet(cmd, path, id)
		},
	}
}

func logsCommandFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "type",
			Value: state.LogTypeStdout,
			Usage: "The log type to get (stdout or stderr)",
		},
		&cli.BoolFlag{
			Name:    "follow",
			Aliases: []string{"f"},
			Usage:   "Keep streaming new log lines until interrupted",
		},
	}
}

func logStream(ctx context.Context, cmd *cli.Command, path string) error {

	streamCh := make(chan string)
	errorCh := make(chan error, 1)

	go logs.NewStream(path, streamCh, errorCh).Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errorCh:
			return cli.Exit(helper.FormatError(logsCommandCLIErrorMsg, err), 1)
		case line := <-streamCh:
			_, _ = fmt.Fprint(cmd.Root().Writer, line+"\n")
		}
	}
}

func logGet(cmd *cli.Command, path string, id ulid.ULID) error {

	lines, err := logs.Get(path)
	if err != nil {
		return cli.Exit(helper.FormatError(logsCommandCLIErrorMsg,
			fmt.Errorf("failed to read logs of run %s: %w", id, err)), 1)
	}

	for _, line := range lines {
		_, _ = fmt.Fprint(cmd.Root().Writer, line+"\n")
	}
	return nil
}
