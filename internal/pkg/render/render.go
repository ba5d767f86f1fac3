package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/plai-group/primitive-runner/internal/pkg/launch"
)

const (
	DefaultBinary = "docker"
	Shell         = "/bin/bash"

	stepSeparator     = ";"
	failFastSeparator = "&&"
	exitStep          = "exit"
)

// Command is a fully rendered container invocation. Args excludes Binary and
// holds the compound shell command as its final element.
type Command struct {
	Binary   string   `json:"binary"`
	Args     []string `json:"args"`
	Compound string   `json:"compound"`
}

// Argv returns the binary followed by its arguments.
func (c *Command) Argv() []string {
	return append([]string{c.Binary}, c.Args...)
}

// String renders the command as a line that can be pasted into a shell. The
// compound command is always double quoted.
func (c *Command) String() string {

	words := make([]string, 0, len(c.Args)+1)
	words = append(words, Quote(c.Binary))

	last := len(c.Args) - 1

	for i, arg := range c.Args {
		if i == last && arg == c.Compound {
			words = append(words, doubleQuote(arg))
			continue
		}
		words = append(words, Quote(arg))
	}

	return strings.Join(words, " ")
}

// Render validates the launch and produces the docker invocation for it.
// Rendering is pure: the same launch always yields an identical command.
func Render(l *launch.Launch) (*Command, error) {

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid launch %q: %w", l.ID, err)
	}

	compound := Compound(l)

	args := []string{"run"}

	for _, m := range l.Mounts {
		args = append(args, "-v", Volume(m))
	}

	for _, key := range sortedKeys(l.Env) {
		args = append(args, "-e", key+"="+l.Env[key])
	}

	if l.GPUs != "" {
		args = append(args, "--gpus", l.GPUs)
	}
	if l.Remove {
		args = append(args, "--rm")
	}
	if l.Interactive == nil || *l.Interactive {
		args = append(args, "-i", "-t")
	}

	args = append(args, l.Image, Shell, "-c", compound)

	return &Command{
		Binary:   DefaultBinary,
		Args:     args,
		Compound: compound,
	}, nil
}

// Volume is the bind mount argument, host and container path joined by a
// single colon.
func Volume(m *launch.Mount) string { return m.Host + ":" + m.Container }

// Steps returns the shell steps run inside the container in execution
// order, excluding the trailing exit.
func Steps(l *launch.Launch) []string {

	steps := []string{"cd " + Quote(l.ProjectDir)}

	if l.Install != nil && !l.Install.Skip {
		steps = append(steps, l.Install.Command)
	}

	steps = append(steps, "cd "+Quote(l.PipelinesDir))

	if l.Generate != nil && !l.Generate.Skip {
		words := []string{l.Python, Quote(l.Generate.Script)}
		for _, arg := range l.Generate.Args {
			words = append(words, Quote(arg))
		}
		steps = append(steps, strings.Join(words, " "))
	}

	return append(steps, fitProduce(l))
}

// Compound joins the steps into the single command passed to the container
// shell. Without fail_fast the steps are chained with ';' so a failing step
// does not stop the ones after it.
func Compound(l *launch.Launch) string {

	sep := stepSeparator
	if l.FailFast {
		sep = failFastSeparator
	}

	return strings.Join(Steps(l), sep) + stepSeparator + exitStep
}

func fitProduce(l *launch.Launch) string {

	e := l.Evaluate

	words := []string{l.Python, "-m", e.RuntimeModule, "runtime"}

	if e.Volumes != "" {
		words = append(words, "--volumes", Quote(e.Volumes))
	}

	words = append(words, "fit-produce")

	for _, p := range e.Paths() {
		words = append(words, p[0], Quote(p[1]))
	}

	return strings.Join(words, " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
