package run

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/pkg/state"
	"github.com/plai-group/primitive-runner/internal/state/file"
)

func seedRun(t *testing.T, dataDir, launchID, status string) *state.Run {
	t.Helper()

	run := &state.Run{
		ID:         ulid.Make(),
		LaunchID:   launchID,
		Driver:     "docker",
		Status:     status,
		ExitCode:   0,
		Image:      "IMG",
		Command:    []string{"docker", "run", "IMG"},
		CreateTime: time.Now(),
		Variables:  map[string]any{"dataset": "185_baseball"},
		Outputs: []*state.Output{
			{Name: state.OutputPredictions, HostPath: "/a/b/pipelines/results.csv", Present: true, Detail: "3 rows"},
		},
	}

	_, errResp := file.New(dataDir, zap.NewNop()).Runs().Create(&state.RunsCreateReq{Run: run})
	require.Nil(t, errResp)

	require.NoError(t, os.WriteFile(state.LogPath(dataDir, run.ID, state.LogTypeStdout),
		[]byte("Generated pipeline - 1!\nfit-produce done\n"), 0o600))

	return run
}

func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := &cli.Command{
		Name:      "primitive-runner",
		Commands:  []*cli.Command{Command()},
		Writer:    &out,
		ErrWriter: &out,
		ExitErrHandler: func(context.Context, *cli.Command, error) {
		},
	}

	full := append([]string{"primitive-runner", "run"}, args[0], "--data-dir", dataDir, "--state-backend", "file")
	full = append(full, args[1:]...)

	err := root.Run(context.Background(), full)
	return out.String(), err
}

func TestListCommand(t *testing.T) {

	dataDir := t.TempDir()

	out, err := runCLI(t, dataDir, "list")
	require.NoError(t, err)
	require.Equal(t, "No runs found\n", out)

	smi := seedRun(t, dataDir, "smi", state.RunStatusSuccess)
	mobilenet := seedRun(t, dataDir, "mobilenet", state.RunStatusFailed)

	out, err = runCLI(t, dataDir, "list")
	require.NoError(t, err)
	require.Contains(t, out, smi.ID.String())
	require.Contains(t, out, mobilenet.ID.String())

	out, err = runCLI(t, dataDir, "list", "--launch", "smi")
	require.NoError(t, err)
	require.Contains(t, out, smi.ID.String())
	require.NotContains(t, out, mobilenet.ID.String())

	_, err = runCLI(t, dataDir, "list", "extra")
	require.ErrorContains(t, err, "expected 0 arguments")
}

func TestGetCommand(t *testing.T) {

	dataDir := t.TempDir()
	run := seedRun(t, dataDir, "smi", state.RunStatusSuccess)

	out, err := runCLI(t, dataDir, "get", run.ID.String())
	require.NoError(t, err)
	require.Contains(t, out, run.ID.String())
	require.Contains(t, out, "185_baseball")
	require.Contains(t, out, "/a/b/pipelines/results.csv")
	require.Contains(t, out, "docker run IMG")

	_, err = runCLI(t, dataDir, "get", ulid.Make().String())
	require.ErrorContains(t, err, "404")

	_, err = runCLI(t, dataDir, "get", "not-a-ulid")
	require.Error(t, err)
}

func TestLogsCommand(t *testing.T) {

	dataDir := t.TempDir()
	run := seedRun(t, dataDir, "smi", state.RunStatusSuccess)

	out, err := runCLI(t, dataDir, "logs", run.ID.String())
	require.NoError(t, err)
	require.Equal(t, "Generated pipeline - 1!\nfit-produce done\n", out)

	_, err = runCLI(t, dataDir, "logs", "--type", "stderr", run.ID.String())
	require.ErrorContains(t, err, "failed to read logs")

	_, err = runCLI(t, dataDir, "logs", "--type", "stdin", run.ID.String())
	require.ErrorContains(t, err, "invalid log type")
}

func TestDeleteCommand(t *testing.T) {

	dataDir := t.TempDir()
	done := seedRun(t, dataDir, "smi", state.RunStatusSuccess)
	running := seedRun(t, dataDir, "smi", state.RunStatusRunning)

	out, err := runCLI(t, dataDir, "delete", done.ID.String())
	require.NoError(t, err)
	require.Contains(t, out, "Successfully deleted run")

	_, err = os.Stat(state.RunDir(dataDir, done.ID))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = runCLI(t, dataDir, "delete", running.ID.String())
	require.ErrorContains(t, err, "run is still running")

	out, err = runCLI(t, dataDir, "delete", "--force", running.ID.String())
	require.NoError(t, err)
	require.Contains(t, out, "Successfully deleted run")

	_, err = os.Stat(state.RunDir(dataDir, running.ID))
	require.ErrorIs(t, err, os.ErrNotExist)
}
