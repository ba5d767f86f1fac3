package run

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/cmd/helper"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Category:  "run",
		Usage:     "Get the detail of a run",
		UsageText: "primitive-runner run get [options] <run-id>",
		Flags:     helper.RunnerFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {

			id, err := runIDArg(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(getCommandCLIErrorMsg, err), 1)
			}

			rt, err := helper.NewRuntime(cmd)
			if err != nil {
				return cli.Exit(helper.FormatError(getCommandCLIErrorMsg, err), 1)
			}
			defer rt.Sync()

			resp, errResp := rt.State.Runs().Get(&state.RunsGetReq{ID: id})
			if errResp != nil {
				return cli.Exit(helper.FormatError(getCommandCLIErrorMsg, errResp), 1)
			}

			outputRun(cmd, resp.Run)
			return nil
		},
	}
}

func outputRun(cmd *cli.Command, run *state.Run) {

	w := cmd.Root().Writer

	_, _ = fmt.Fprint(w, runHeader(run))
	_, _ = fmt.Fprint(w, "\n")

	if runVars := runVariables(run); runVars != "" {
		_, _ = fmt.Fprint(w, pterm.DefaultSection.Sprint("Variables"))
		_, _ = fmt.Fprintln(w, runVars)
	}

	if runOutputs := runOutputs(run); runOutputs != "" {
		_, _ = fmt.Fprint(w, pterm.DefaultSection.Sprint("Outputs"))
		_, _ = fmt.Fprintln(w, runOutputs)
	}

	_, _ = fmt.Fprint(w, pterm.DefaultSection.Sprint("Command"))
	_, _ = fmt.Fprintln(w, strings.Join(run.Command, " "))
}

func runHeader(run *state.Run) string {

	out := []string{
		fmt.Sprintf("ID|%s", run.ID),
		fmt.Sprintf("Launch ID|%s", run.LaunchID),
		fmt.Sprintf("Launch File|%s", run.LaunchFile),
		fmt.Sprintf("Driver|%s", run.Driver),
		fmt.Sprintf("Status|%v", colouredRunStatus(run.Status)),
		fmt.Sprintf("Exit Code|%d", run.ExitCode),
		fmt.Sprintf("Image|%s", run.Image),
		fmt.Sprintf("Create Time|%v", helper.FormatTime(run.CreateTime)),
		fmt.Sprintf("Start Time|%s", helper.FormatTime(run.StartTime)),
		fmt.Sprintf("End Time|%s", helper.FormatTime(run.EndTime)),
	}

	if run.RemoteID != "" {
		out = append(out, fmt.Sprintf("Remote ID|%s", run.RemoteID))
	}
	if run.Error != "" {
		out = append(out, fmt.Sprintf("Error|%s", run.Error))
	}

	return helper.FormatKV(out)
}

func runVariables(run *state.Run) string {

	if len(run.Variables) == 0 {
		return ""
	}

	out := pterm.TableData{{"Name", "Value"}}

	for _, key := range slices.Sorted(maps.Keys(run.Variables)) {
		out = append(out, []string{key, fmt.Sprintf("%v", run.Variables[key])})
	}

	body, _ := pterm.DefaultTable.WithHasHeader().WithData(out).Srender()
	return body
}

func runOutputs(run *state.Run) string {

	if len(run.Outputs) == 0 {
		return ""
	}

	out := pterm.TableData{{"Name", "Present", "Host Path", "Detail"}}

	for _, o := range run.Outputs {
		out = append(out, []string{o.Name, strconv.FormatBool(o.Present), o.HostPath, o.Detail})
	}

	body, _ := pterm.DefaultTable.WithHasHeader().WithData(out).Srender()
	return body
}
