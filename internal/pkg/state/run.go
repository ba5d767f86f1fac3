package state

import (
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusSuccess   = "success"
	RunStatusCancelled = "cancelled"
	RunStatusFailed    = "failed"
)

const (
	OutputPredictions = "predictions"
	OutputRunRecord   = "run_record"
)

// Run is the record of one execution of a launch.
type Run struct {
	ID         ulid.ULID `json:"id"`
	LaunchID   string    `json:"launch_id"`
	LaunchFile string    `json:"launch_file"`
	Driver     string    `json:"driver"`
	Status     string    `json:"status"`
	ExitCode   int       `json:"exit_code"`
	Error      string    `json:"error,omitempty"`

	Image    string   `json:"image"`
	Command  []string `json:"command"`
	RemoteID string   `json:"remote_id,omitempty"`

	CreateTime time.Time `json:"create_time"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`

	Variables map[string]any `json:"variables"`
	Outputs   []*Output      `json:"outputs"`
}

// Output describes one file the evaluation step is expected to write, as
// observed from the host after the container exited.
type Output struct {
	Name          string `json:"name"`
	ContainerPath string `json:"container_path"`
	HostPath      string `json:"host_path"`
	Present       bool   `json:"present"`
	Detail        string `json:"detail,omitempty"`
}

type RunStub struct {
	ID         ulid.ULID `json:"id"`
	LaunchID   string    `json:"launch_id"`
	Driver     string    `json:"driver"`
	Status     string    `json:"status"`
	ExitCode   int       `json:"exit_code"`
	CreateTime time.Time `json:"create_time"`
}

func (r *Run) Stub() *RunStub {
	return &RunStub{
		ID:         r.ID,
		LaunchID:   r.LaunchID,
		Driver:     r.Driver,
		Status:     r.Status,
		ExitCode:   r.ExitCode,
		CreateTime: r.CreateTime,
	}
}

func (r *Run) IsTerminal() bool {
	switch r.Status {
	case RunStatusSuccess, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}

func (r *Run) MarkCancelled() {
	r.EndTime = time.Now()
	r.Status = RunStatusCancelled
}

func (r *Run) MarkFailed(err error) {
	r.EndTime = time.Now()
	r.Status = RunStatusFailed
	if err != nil {
		r.Error = err.Error()
	}
}

func (r *Run) Copy() *Run {
	if r == nil {
		return nil
	}

	copy := &Run{
		ID:         r.ID,
		LaunchID:   r.LaunchID,
		LaunchFile: r.LaunchFile,
		Driver:     r.Driver,
		Status:     r.Status,
		ExitCode:   r.ExitCode,
		Error:      r.Error,
		Image:      r.Image,
		Command:    slices.Clone(r.Command),
		RemoteID:   r.RemoteID,
		CreateTime: r.CreateTime,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Variables:  make(map[string]any, len(r.Variables)),
	}

	maps.Copy(copy.Variables, r.Variables)

	if r.Outputs != nil {
		copy.Outputs = make([]*Output, len(r.Outputs))
		for i, o := range r.Outputs {
			if o != nil {
				oc := *o
				copy.Outputs[i] = &oc
			}
		}
	}

	return copy
}

// RunDir is the directory holding a run's record and logs.
func RunDir(dataDir string, id ulid.ULID) string {
	return filepath.Join(dataDir, "runs", id.String())
}

const (
	LogTypeStdout = "stdout"
	LogTypeStderr = "stderr"
)

// LogPath is the file a run's stdout or stderr stream is written to.
func LogPath(dataDir string, id ulid.ULID, logType string) string {
	return filepath.Join(RunDir(dataDir, id), logType+".log")
}
