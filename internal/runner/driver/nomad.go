package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/nomad/api"
	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/pkg/logger"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
	"github.com/plai-group/primitive-runner/internal/runner/logs"
)

const (
	nomadPollInterval = 1 * time.Second

	// nomadLogDrainTimeout bounds how long log streams may keep going once
	// the job is dead.
	nomadLogDrainTimeout = 5 * time.Second
)

type NomadConfig struct {
	Addr      string
	Token     string
	Namespace string
}

type Nomad struct {
	client    *api.Client
	namespace string
	logger    *zap.Logger
}

func NewNomad(cfg *NomadConfig, log *zap.Logger) (*Nomad, error) {

	nomadCfg := api.DefaultConfig()

	if cfg.Addr != "" {
		nomadCfg.Address = cfg.Addr
	}
	if cfg.Token != "" {
		nomadCfg.SecretID = cfg.Token
	}
	if cfg.Namespace != "" {
		nomadCfg.Namespace = cfg.Namespace
	}

	client, err := api.NewClient(nomadCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Nomad client: %w", err)
	}

	return &Nomad{
		client:    client,
		namespace: nomadCfg.Namespace,
		logger:    log.Named(logger.ComponentNameDriver).With(zap.String("driver", NameNomad)),
	}, nil
}

func (n *Nomad) Name() string { return NameNomad }

func (n *Nomad) Run(ctx context.Context, req *Request) (*Result, error) {

	job := BuildJob(req.RunID, n.namespace, req.Launch, req.Command)
	jobID := *job.ID

	queryOpts := &api.QueryOptions{Namespace: *job.Namespace}
	writeOpts := &api.WriteOptions{Namespace: *job.Namespace}

	jobLogger := n.logger.With(zap.String("run_id", req.RunID.String()), zap.String("nomad_job_id", jobID))

	if _, _, err := n.client.Jobs().Register(job, writeOpts); err != nil {
		return nil, fmt.Errorf("failed to register job: %w", err)
	}

	res := Result{ExitCode: -1, RemoteID: jobID}
	if req.OnRemoteID != nil {
		req.OnRemoteID(jobID)
	}

	jobLogger.Info("successfully registered Nomad job")

	defer func() {
		_, _, err := n.client.Jobs().Deregister(jobID, req.Launch.Remove, writeOpts)
		if err != nil {
			jobLogger.Error("failed to stop job", zap.Error(err))
		} else {
			jobLogger.Info("successfully stopped job")
		}
	}()

	alloc, err := n.waitForAlloc(ctx, jobID, queryOpts)
	if err != nil {
		return &res, fmt.Errorf("failed to get alloc: %w", err)
	}

	jobLogger.Info("Nomad job placed", zap.String("nomad_alloc_id", alloc.ID))

	cancelLogs := make(chan struct{})
	var wg sync.WaitGroup

	for logType, sink := range map[string]io.Writer{
		state.LogTypeStdout: req.Stdout,
		state.LogTypeStderr: req.Stderr,
	} {
		wg.Add(1)
		go func(logType string, sink io.Writer) {
			defer wg.Done()
			n.streamLogs(alloc.ID, logType, sink, cancelLogs, queryOpts)
		}(logType, sink)
	}

	waitErr := n.waitForDead(ctx, jobID, queryOpts)

	drained := make(chan struct{})
	go func() { wg.Wait(); close(drained) }()

	select {
	case <-drained:
	case <-time.After(nomadLogDrainTimeout):
	case <-ctx.Done():
	}
	close(cancelLogs)
	wg.Wait()

	if waitErr != nil {
		return &res, waitErr
	}

	allocs, _, err := n.client.Jobs().Allocations(jobID, false, queryOpts)
	if err != nil {
		return &res, fmt.Errorf("failed to list job allocations: %w", err)
	}

	exitCode, err := taskExitCode(allocs, nomadTaskName)
	if err != nil {
		return &res, err
	}
	res.ExitCode = exitCode

	jobLogger.Info("Nomad job finished", zap.Int("exit_code", exitCode))

	return &res, nil
}

func (n *Nomad) waitForAlloc(ctx context.Context, jobID string, q *api.QueryOptions) (*api.AllocationListStub, error) {

	ticker := time.NewTicker(nomadPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			allocs, _, err := n.client.Jobs().Allocations(jobID, false, q)
			if err != nil {
				n.logger.Error("failed to get job allocations", zap.String("nomad_job_id", jobID), zap.Error(err))
				continue
			}

			if alloc := latestAlloc(allocs); alloc != nil && alloc.ClientStatus != api.AllocClientStatusPending {
				return alloc, nil
			}
		}
	}
}

func (n *Nomad) waitForDead(ctx context.Context, jobID string, q *api.QueryOptions) error {

	ticker := time.NewTicker(nomadPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			job, _, err := n.client.Jobs().Info(jobID, q)
			if err != nil {
				return fmt.Errorf("failed to read job: %w", err)
			}
			if job.Status != nil && *job.Status == "dead" {
				return nil
			}
		}
	}
}

// streamLogs copies one task log stream into a log handler until the stream
// ends or cancel is closed.
func (n *Nomad) streamLogs(allocID, logType string, sink io.Writer, cancel <-chan struct{}, q *api.QueryOptions) {

	pr, pw := io.Pipe()

	handlerDone := make(chan struct{})
	go func() {
		logs.NewHandler(n.logger, logType, pr, sink).Start()
		close(handlerDone)
	}()

	frames, errCh := n.client.AllocFS().Logs(&api.Allocation{ID: allocID}, true, nomadTaskName, logType, "start", 0, cancel, q)

	func() {
		for {
			select {
			case <-cancel:
				return
			case err, ok := <-errCh:
				if ok && err != nil {
					n.logger.Error("failed to stream task logs", zap.String("type", logType), zap.Error(err))
				}
				return
			case frame, ok := <-frames:
				if !ok {
					return
				}
				if frame == nil || len(frame.Data) == 0 {
					continue
				}
				if _, err := pw.Write(frame.Data); err != nil {
					return
				}
			}
		}
	}()

	_ = pw.Close()
	<-handlerDone
}

func latestAlloc(allocs []*api.AllocationListStub) *api.AllocationListStub {
	if len(allocs) == 0 {
		return nil
	}
	return slices.MaxFunc(allocs, func(a, b *api.AllocationListStub) int {
		switch {
		case a.CreateIndex < b.CreateIndex:
			return -1
		case a.CreateIndex > b.CreateIndex:
			return 1
		default:
			return 0
		}
	})
}

// taskExitCode reads the exit code of the task's last Terminated event on
// the newest allocation.
func taskExitCode(allocs []*api.AllocationListStub, task string) (int, error) {

	alloc := latestAlloc(allocs)
	if alloc == nil {
		return -1, errors.New("job has no allocations")
	}

	ts, ok := alloc.TaskStates[task]
	if !ok || ts == nil {
		return -1, fmt.Errorf("allocation %s has no state for task %q", alloc.ID, task)
	}

	for i := len(ts.Events) - 1; i >= 0; i-- {
		if ev := ts.Events[i]; ev != nil && ev.Type == api.TaskTerminated {
			return ev.ExitCode, nil
		}
	}

	return -1, fmt.Errorf("task %q did not terminate, allocation status: %s", task, alloc.ClientStatus)
}
