// Package statetest holds behaviour every state backend must share.
package statetest

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

func newRun(launchID string, ts time.Time) *state.Run {
	return &state.Run{
		ID:         ulid.MustNew(ulid.Timestamp(ts), nil),
		LaunchID:   launchID,
		LaunchFile: "launch.hcl",
		Driver:     "docker",
		Status:     state.RunStatusPending,
		ExitCode:   -1,
		Image:      "IMG",
		Command:    []string{"docker", "run", "-v", "/a/b:/c"},
		CreateTime: ts.UTC().Truncate(time.Second),
		Variables:  map[string]any{"dataset": "185_baseball"},
	}
}

// RunRuns exercises the Runs interface of a freshly created, empty backend.
func RunRuns(t *testing.T, s state.State) {
	t.Helper()

	base := time.Now()

	older := newRun("smi", base.Add(-time.Minute))
	newer := newRun("mobilenet", base)

	listResp, errResp := s.Runs().List(&state.RunsListReq{})
	require.Nil(t, errResp)
	require.Empty(t, listResp.Runs)

	_, errResp = s.Runs().Get(&state.RunsGetReq{ID: older.ID})
	require.NotNil(t, errResp)
	require.Equal(t, 404, errResp.StatusCode())

	_, errResp = s.Runs().Update(&state.RunsUpdateReq{Run: older})
	require.NotNil(t, errResp)
	require.Equal(t, 404, errResp.StatusCode())

	_, errResp = s.Runs().Create(&state.RunsCreateReq{Run: older})
	require.Nil(t, errResp)
	_, errResp = s.Runs().Create(&state.RunsCreateReq{Run: newer})
	require.Nil(t, errResp)

	_, errResp = s.Runs().Create(&state.RunsCreateReq{Run: older})
	require.NotNil(t, errResp)
	require.Equal(t, 409, errResp.StatusCode())

	getResp, errResp := s.Runs().Get(&state.RunsGetReq{ID: older.ID})
	require.Nil(t, errResp)
	require.Equal(t, older.LaunchID, getResp.Run.LaunchID)
	require.Equal(t, older.Command, getResp.Run.Command)
	require.Equal(t, older.Variables, getResp.Run.Variables)
	require.True(t, older.CreateTime.Equal(getResp.Run.CreateTime))

	// Mutating a returned run must not leak into the backend.
	getResp.Run.Status = state.RunStatusRunning
	getResp, errResp = s.Runs().Get(&state.RunsGetReq{ID: older.ID})
	require.Nil(t, errResp)
	require.Equal(t, state.RunStatusPending, getResp.Run.Status)

	updated := older.Copy()
	updated.Status = state.RunStatusSuccess
	updated.ExitCode = 0
	updated.Outputs = []*state.Output{{Name: state.OutputPredictions, HostPath: "/a/b/pipelines/results.csv", Present: true}}

	_, errResp = s.Runs().Update(&state.RunsUpdateReq{Run: updated})
	require.Nil(t, errResp)

	getResp, errResp = s.Runs().Get(&state.RunsGetReq{ID: older.ID})
	require.Nil(t, errResp)
	require.Equal(t, state.RunStatusSuccess, getResp.Run.Status)
	require.Equal(t, 0, getResp.Run.ExitCode)
	require.Equal(t, updated.Outputs, getResp.Run.Outputs)

	listResp, errResp = s.Runs().List(&state.RunsListReq{})
	require.Nil(t, errResp)
	require.Len(t, listResp.Runs, 2)
	require.Equal(t, newer.ID, listResp.Runs[0].ID)
	require.Equal(t, older.ID, listResp.Runs[1].ID)

	listResp, errResp = s.Runs().List(&state.RunsListReq{LaunchID: "smi"})
	require.Nil(t, errResp)
	require.Len(t, listResp.Runs, 1)
	require.Equal(t, older.ID, listResp.Runs[0].ID)

	_, errResp = s.Runs().Delete(&state.RunsDeleteReq{ID: older.ID})
	require.Nil(t, errResp)

	_, errResp = s.Runs().Delete(&state.RunsDeleteReq{ID: older.ID})
	require.NotNil(t, errResp)
	require.Equal(t, 404, errResp.StatusCode())

	listResp, errResp = s.Runs().List(&state.RunsListReq{})
	require.Nil(t, errResp)
	require.Len(t, listResp.Runs, 1)
}
