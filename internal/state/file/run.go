package file

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

func (s *State) Runs() state.Runs {
	return &Runs{s: s}
}

type Runs struct {
	s *State
}

func (r *Runs) Create(req *state.RunsCreateReq) (*state.RunsCreateResp, *state.ErrorResp) {
	r.s.runsLock.Lock()
	defer r.s.runsLock.Unlock()

	path := r.runPath(req.Run.ID)

	if _, err := os.Stat(path); err == nil {
		return nil, state.NewErrorResp(errors.New("run already exists"), 409)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, state.NewErrorResp(fmt.Errorf("failed to create run directory: %w", err), 500)
	}

	if err := writeRun(path, req.Run); err != nil {
		return nil, state.NewErrorResp(err, 500)
	}

	return &state.RunsCreateResp{}, nil
}

func (r *Runs) Delete(req *state.RunsDeleteReq) (*state.RunsDeleteResp, *state.ErrorResp) {
	r.s.runsLock.Lock()
	defer r.s.runsLock.Unlock()

	if _, err := os.Stat(r.runPath(req.ID)); err != nil {
		return nil, notFoundOr(err)
	}

	if err := os.RemoveAll(state.RunDir(r.s.dataDir, req.ID)); err != nil {
		return nil, state.NewErrorResp(fmt.Errorf("failed to delete run: %w", err), 500)
	}

	return &state.RunsDeleteResp{}, nil
}

func (r *Runs) Get(req *state.RunsGetReq) (*state.RunsGetResp, *state.ErrorResp) {
	r.s.runsLock.RLock()
	defer r.s.runsLock.RUnlock()

	run, err := readRun(r.runPath(req.ID))
	if err != nil {
		return nil, notFoundOr(err)
	}

	return &state.RunsGetResp{Run: run}, nil
}

func (r *Runs) List(req *state.RunsListReq) (*state.RunsListResp, *state.ErrorResp) {
	r.s.runsLock.RLock()
	defer r.s.runsLock.RUnlock()

	runs := []*state.RunStub{}

	entries, err := os.ReadDir(filepath.Join(r.s.dataDir, "runs"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &state.RunsListResp{Runs: runs}, nil
		}
		return nil, state.NewErrorResp(fmt.Errorf("failed to list runs: %w", err), 500)
	}

	for _, entry := range entries {

		if !entry.IsDir() {
			continue
		}

		id, err := ulid.ParseStrict(entry.Name())
		if err != nil {
			continue
		}

		run, err := readRun(r.runPath(id))
		if err != nil {
			r.s.logger.Warn("skipping unreadable run record",
				zap.String("run_id", id.String()), zap.Error(err))
			continue
		}

		if req.LaunchID == "" || run.LaunchID == req.LaunchID {
			runs = append(runs, run.Stub())
		}
	}

	slices.SortFunc(runs, func(a, b *state.RunStub) int { return cmp.Compare(b.ID.String(), a.ID.String()) })

	return &state.RunsListResp{Runs: runs}, nil
}

func (r *Runs) Update(req *state.RunsUpdateReq) (*state.RunsUpdateResp, *state.ErrorResp) {
	r.s.runsLock.Lock()
	defer r.s.runsLock.Unlock()

	path := r.runPath(req.Run.ID)

	if _, err := os.Stat(path); err != nil {
		return nil, notFoundOr(err)
	}

	if err := writeRun(path, req.Run); err != nil {
		return nil, state.NewErrorResp(err, 500)
	}

	return &state.RunsUpdateResp{}, nil
}

func (r *Runs) runPath(id ulid.ULID) string {
	return filepath.Join(state.RunDir(r.s.dataDir, id), runFileName)
}

// writeRun replaces the record through a rename so readers never observe a
// partially written file.
func writeRun(path string, run *state.Run) error {

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write run: %w", err)
	}

	return nil
}

func readRun(path string) (*state.Run, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var run state.Run

	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run: %w", err)
	}

	return &run, nil
}

func notFoundOr(err error) *state.ErrorResp {
	if errors.Is(err, fs.ErrNotExist) {
		return state.NewErrorResp(errors.New("run not found"), 404)
	}
	return state.NewErrorResp(err, 500)
}
