// Package outputs inspects, from the host, the files the evaluation step
// writes inside the container.
package outputs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/plai-group/primitive-runner/internal/pkg/launch"
	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

// HostPath maps a container path back through the bind mounts to the host.
// Relative paths are resolved against workDir first. The longest matching
// mount wins; an empty string means the path is outside every mount.
func HostPath(mounts []*launch.Mount, containerPath, workDir string) string {

	p := containerPath
	if !path.IsAbs(p) {
		p = path.Join(workDir, p)
	}
	p = path.Clean(p)

	var (
		best    *launch.Mount
		bestLen = -1
	)

	for _, m := range mounts {
		if m == nil || m.Container == "" || m.Host == "" {
			continue
		}
		c := path.Clean(m.Container)
		if !within(p, c) {
			continue
		}
		if len(c) > bestLen {
			best, bestLen = m, len(c)
		}
	}

	if best == nil {
		return ""
	}

	rel := strings.TrimPrefix(p, path.Clean(best.Container))
	return filepath.Join(best.Host, filepath.FromSlash(rel))
}

func within(p, dir string) bool {
	if dir == "/" {
		return true
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// EvaluateDir is the container directory the evaluation step runs in.
func EvaluateDir(l *launch.Launch) string {
	if path.IsAbs(l.PipelinesDir) {
		return path.Clean(l.PipelinesDir)
	}
	return path.Join(l.ProjectDir, l.PipelinesDir)
}

// Inspect describes the predictions file and the run record of a finished
// launch. It never fails: problems are reported in each output's detail.
func Inspect(l *launch.Launch) []*state.Output {

	if l.Evaluate == nil {
		return nil
	}

	dir := EvaluateDir(l)

	return []*state.Output{
		inspect(l, dir, state.OutputPredictions, l.Evaluate.Predictions, predictionsDetail),
		inspect(l, dir, state.OutputRunRecord, l.Evaluate.RunRecord, runRecordDetail),
	}
}

func inspect(l *launch.Launch, dir, name, containerPath string, detail func(string) (string, error)) *state.Output {

	out := state.Output{
		Name:          name,
		ContainerPath: containerPath,
	}

	if !path.IsAbs(containerPath) {
		out.ContainerPath = path.Join(dir, containerPath)
	}

	out.HostPath = HostPath(l.Mounts, containerPath, dir)
	if out.HostPath == "" {
		out.Detail = "not under any mount"
		return &out
	}

	if _, err := os.Stat(out.HostPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			out.Detail = "not found"
		} else {
			out.Detail = fmt.Sprintf("unreadable: %v", err)
		}
		return &out
	}

	out.Present = true

	d, err := detail(out.HostPath)
	if err != nil {
		out.Detail = fmt.Sprintf("unreadable: %v", err)
	} else {
		out.Detail = d
	}

	return &out
}

func predictionsDetail(p string) (string, error) {
	rows, err := CountRows(p)
	if err != nil {
		return "", err
	}
	if rows == 1 {
		return "1 row", nil
	}
	return fmt.Sprintf("%d rows", rows), nil
}

func runRecordDetail(p string) (string, error) {
	summary, err := SummariseRunRecord(p)
	if err != nil {
		return "", err
	}
	if summary == "" {
		return "no documents", nil
	}
	return summary, nil
}
