package launch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/cmd/helper"
	"github.com/plai-group/primitive-runner/internal/config"
	"github.com/plai-group/primitive-runner/internal/pkg/render"
)

const (
	renderFormatShell = "shell"
	renderFormatJSON  = "json"
)

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Category:  "launch",
		Usage:     "Print the container command a launch runs without running it",
		UsageText: "primitive-runner launch render [options] <launch-file>",
		Flags: helper.RunnerFlags(append(launchFileFlags(),
			launchSelectFlag(),
			&cli.StringFlag{
				Name:  "format",
				Value: renderFormatShell,
				Usage: "The output format (shell, json)",
			},
		)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			cfg, err := config.Load(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(renderCommandCLIErrorMsg, err), 1)
			}

			_, l, err := selectLaunch(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(renderCommandCLIErrorMsg, err), 1)
			}

			rendered, err := render.Render(l)
			if err != nil {
				return cli.Exit(helper.FormatError(renderCommandCLIErrorMsg, err), 1)
			}
			rendered.Binary = cfg.Docker.Binary

			out, err := formatCommand(rendered, cmd.String("format"))
			if err != nil {
				return cli.Exit(helper.FormatError(renderCommandCLIErrorMsg, err), 1)
			}

			_, _ = fmt.Fprintln(cmd.Root().Writer, out)
			return nil
		},
	}
}

func formatCommand(c *render.Command, format string) (string, error) {
	switch format {
	case renderFormatShell:
		return c.String(), nil
	case renderFormatJSON:
		out := struct {
			*render.Command
			Argv []string `json:"argv"`
		}{
			Command: c,
			Argv:    c.Argv(),
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported format %q, expected %s or %s", format, renderFormatShell, renderFormatJSON)
	}
}
