package result

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/pkg/logger"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

// Result owns the record of a single run and writes every change through to
// the state backend.
type Result struct {
	state  state.State
	logger *zap.Logger

	lock sync.Mutex
	r    *state.Run
}

// New stores the run in its pending state.
func New(run *state.Run, log *zap.Logger, stateImpl state.State) (*Result, error) {

	if run == nil {
		return nil, errors.New("run is nil")
	}

	res := Result{
		state:  stateImpl,
		logger: log.Named(logger.ComponentNameResult).With(zap.String("run_id", run.ID.String())),
		r:      run.Copy(),
	}

	res.r.Status = state.RunStatusPending
	res.r.ExitCode = -1

	if res.r.CreateTime.IsZero() {
		res.r.CreateTime = time.Now()
	}

	if _, err := res.state.Runs().Create(&state.RunsCreateReq{Run: res.r}); err != nil {
		return nil, err.Err()
	}

	return &res, nil
}

// Run returns a copy of the current record.
func (r *Result) Run() *state.Run {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.r.Copy()
}

func (r *Result) StartRun() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.r.StartTime = time.Now()
	r.r.Status = state.RunStatusRunning
	r.writeStateUpdate()
}

func (r *Result) SetRemoteID(id string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.r.RemoteID = id
	r.writeStateUpdate()
}

func (r *Result) SetOutputs(outputs []*state.Output) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.r.Outputs = outputs
	r.writeStateUpdate()
}

// EndRun records the terminal status. A non-nil err is stored on the record
// regardless of status.
func (r *Result) EndRun(status string, exitCode int, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	switch status {
	case state.RunStatusFailed:
		r.r.MarkFailed(err)
	case state.RunStatusCancelled:
		r.r.MarkCancelled()
		if err != nil {
			r.r.Error = err.Error()
		}
	default:
		r.r.EndTime = time.Now()
		r.r.Status = status
	}

	r.r.ExitCode = exitCode
	r.writeStateUpdate()
}

func (r *Result) writeStateUpdate() {
	if _, err := r.state.Runs().Update(&state.RunsUpdateReq{Run: r.r}); err != nil {
		r.logger.Error("failed to write run update to state", zap.Error(err))
	}
}
