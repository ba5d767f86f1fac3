package launch

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/pkg/launch"
)

const (
	listCommandCLIErrorMsg     = "failed to list launches"
	renderCommandCLIErrorMsg   = "failed to render launch"
	runCommandCLIErrorMsg      = "failed to run launch"
	validateCommandCLIErrorMsg = "failed to validate launch file"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:            "launch",
		Usage:           "Render, validate, and run container launches",
		HideHelpCommand: true,
		UsageText:       "primitive-runner launch <command> [options] [args]",
		Commands: []*cli.Command{
			listCommand(),
			renderCommand(),
			runCommand(),
			validateCommand(),
		},
	}
}

func launchFileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "var",
			Usage: "Set a launch file variable, in the form name=value (repeatable)",
		},
	}
}

func launchSelectFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "launch",
		Usage: "The launch block to use, optional when the file holds exactly one",
	}
}

func parseLaunchFile(cmd *cli.Command) (*launch.File, error) {

	if numArgs := cmd.Args().Len(); numArgs != 1 {
		return nil, fmt.Errorf("expected 1 argument, got %v", numArgs)
	}

	vars, err := launch.ParseVarFlags(cmd.StringSlice("var"))
	if err != nil {
		return nil, err
	}

	return launch.ParseFile(cmd.Args().First(), vars)
}

func selectLaunch(cmd *cli.Command) (*launch.File, *launch.Launch, error) {

	file, err := parseLaunchFile(cmd)
	if err != nil {
		return nil, nil, err
	}

	l, err := file.Get(cmd.String("launch"))
	if err != nil {
		return nil, nil, err
	}

	return file, l, nil
}
