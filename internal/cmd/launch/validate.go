package launch

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/cmd/helper"
	"github.com/plai-group/primitive-runner/internal/pkg/launch"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Category:  "launch",
		Usage:     "Check a launch file for errors",
		UsageText: "primitive-runner launch validate [options] <launch-file>",
		Flags:     append(launchFileFlags(), launchSelectFlag()),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			file, err := parseLaunchFile(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(validateCommandCLIErrorMsg, err), 1)
			}

			launches := file.Launches
			if id := cmd.String("launch"); id != "" {
				l, err := file.Get(id)
				if err != nil {
					return cli.Exit(helper.FormatError(validateCommandCLIErrorMsg, err), 1)
				}
				launches = []*launch.Launch{l}
			}

			var errs []error
			for _, l := range launches {
				if err := l.Validate(); err != nil {
					errs = append(errs, fmt.Errorf("launch %q: %w", l.ID, err))
				}
			}

			if err := errors.Join(errs...); err != nil {
				return cli.Exit(helper.FormatError(validateCommandCLIErrorMsg, err), 1)
			}

			_, _ = fmt.Fprint(cmd.Root().Writer, helper.FormatKV([]string{
				"Message|Launch file is valid",
				fmt.Sprintf("File|%s", file.Path),
				fmt.Sprintf("Launches|%d", len(launches)),
			}))
			_, _ = fmt.Fprint(cmd.Root().Writer, "\n")
			return nil
		},
	}
}
