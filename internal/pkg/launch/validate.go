package launch

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Validate reports every problem with the launch at once. It expects
// Canonicalize to have run.
func (l *Launch) Validate() error {

	var errs []error

	if l.ID == "" {
		errs = append(errs, errors.New("launch ID must not be empty"))
	}

	if l.Image == "" {
		errs = append(errs, errors.New("image must be set"))
	}

	if len(l.Mounts) == 0 {
		errs = append(errs, errors.New("at least one mount block is required"))
	}

	for i, m := range l.Mounts {
		errs = append(errs, m.validate(i)...)
	}

	if l.ProjectDir != "" && !path.IsAbs(l.ProjectDir) {
		errs = append(errs, fmt.Errorf("project_dir %q must be an absolute container path", l.ProjectDir))
	}

	for key := range l.Env {
		if key == "" || strings.ContainsAny(key, "= ") {
			errs = append(errs, fmt.Errorf("invalid env name %q", key))
		}
	}

	switch {
	case l.Generate == nil:
		errs = append(errs, errors.New("generate block is required, set skip = true to omit the step"))
	case !l.Generate.Skip && l.Generate.Script == "":
		errs = append(errs, errors.New("generate script must be set"))
	}

	if l.Evaluate == nil {
		errs = append(errs, errors.New("evaluate block is required"))
	} else {
		errs = append(errs, l.Evaluate.validate()...)
	}

	return errors.Join(errs...)
}

func (m *Mount) validate(idx int) []error {

	var errs []error

	if m.Host == "" {
		errs = append(errs, fmt.Errorf("mount %d: host path must be set", idx))
	}
	if m.Container == "" {
		errs = append(errs, fmt.Errorf("mount %d: container path must be set", idx))
	} else if !path.IsAbs(m.Container) {
		errs = append(errs, fmt.Errorf("mount %d: container path %q must be absolute", idx, m.Container))
	}

	// The volume argument is host:container and any further colon changes
	// its meaning for the container runtime.
	if strings.Contains(m.Host, ":") {
		errs = append(errs, fmt.Errorf("mount %d: host path %q must not contain ':'", idx, m.Host))
	}
	if strings.Contains(m.Container, ":") {
		errs = append(errs, fmt.Errorf("mount %d: container path %q must not contain ':'", idx, m.Container))
	}

	return errs
}

func (e *EvaluateStep) validate() []error {

	var errs []error

	names := map[string]string{
		"-p": "pipeline",
		"-r": "problem",
		"-i": "train_dataset",
		"-t": "test_dataset",
		"-o": "predictions",
		"-O": "run_record",
	}

	for _, p := range e.Paths() {
		if p[1] == "" {
			errs = append(errs, fmt.Errorf("evaluate %s must be set", names[p[0]]))
		}
	}

	return errs
}
