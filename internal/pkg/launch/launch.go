package launch

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/plai-group/primitive-runner/internal/pkg/helper"
)

const (
	DefaultPipelinesDir   = "pipelines"
	DefaultPython         = "python"
	DefaultInstallCommand = "pip install -e ."
	DefaultRuntimeModule  = "d3m"
)

// File is a decoded launch file. A single file can describe several
// launches which share the declared variables.
type File struct {
	Path      string
	Variables []*Variable
	Launches  []*Launch

	// Resolved holds the variable values the launches were evaluated with.
	Resolved map[string]any
}

type Variable struct {
	Name string `hcl:"name,label" json:"name"`

	Type     string         `json:"type"`
	TypeExpr hcl.Expression `hcl:"type,optional" json:"-"`

	Required bool `hcl:"required,optional" json:"required"`

	Default     any            `json:"default"`
	DefaultExpr hcl.Expression `hcl:"default,optional" json:"-"`
}

// Launch is one container invocation: a bind mounted project, an install
// step, a pipeline generation step and a fit-produce evaluation.
type Launch struct {
	ID    string `hcl:"id,label" json:"id"`
	Image string `hcl:"image,optional" json:"image"`

	Mounts []*Mount `hcl:"mount,block" json:"mount"`

	ProjectDir   string `hcl:"project_dir,optional" json:"project_dir"`
	PipelinesDir string `hcl:"pipelines_dir,optional" json:"pipelines_dir"`
	Python       string `hcl:"python,optional" json:"python"`

	FailFast    bool              `hcl:"fail_fast,optional" json:"fail_fast"`
	Interactive *bool             `hcl:"interactive,optional" json:"interactive"`
	Remove      bool              `hcl:"remove,optional" json:"remove"`
	GPUs        string            `hcl:"gpus,optional" json:"gpus"`
	Env         map[string]string `hcl:"env,optional" json:"env"`

	Install  *InstallStep  `hcl:"install,block" json:"install"`
	Generate *GenerateStep `hcl:"generate,block" json:"generate"`
	Evaluate *EvaluateStep `hcl:"evaluate,block" json:"evaluate"`
}

type Mount struct {
	Host      string `hcl:"host,optional" json:"host"`
	Container string `hcl:"container,optional" json:"container"`
}

type InstallStep struct {
	Command string `hcl:"command,optional" json:"command"`
	Skip    bool   `hcl:"skip,optional" json:"skip"`
}

type GenerateStep struct {
	Script string   `hcl:"script,optional" json:"script"`
	Args   []string `hcl:"args,optional" json:"args"`
	Skip   bool     `hcl:"skip,optional" json:"skip"`
}

// EvaluateStep holds the arguments of the runtime's fit-produce command.
// Paths are container paths, relative ones resolve against the pipelines
// directory.
type EvaluateStep struct {
	RuntimeModule string `hcl:"runtime_module,optional" json:"runtime_module"`
	Volumes       string `hcl:"volumes,optional" json:"volumes"`
	Pipeline      string `hcl:"pipeline,optional" json:"pipeline"`
	Problem       string `hcl:"problem,optional" json:"problem"`
	TrainDataset  string `hcl:"train_dataset,optional" json:"train_dataset"`
	TestDataset   string `hcl:"test_dataset,optional" json:"test_dataset"`
	Predictions   string `hcl:"predictions,optional" json:"predictions"`
	RunRecord     string `hcl:"run_record,optional" json:"run_record"`
}

type Stub struct {
	ID     string `json:"id"`
	Image  string `json:"image"`
	Host   string `json:"host"`
	Script string `json:"script"`
}

func (l *Launch) Stub() *Stub {
	s := Stub{ID: l.ID, Image: l.Image}
	if len(l.Mounts) > 0 {
		s.Host = l.Mounts[0].Host
	}
	if l.Generate != nil && !l.Generate.Skip {
		s.Script = l.Generate.Script
	}
	return &s
}

// Canonicalize fills in defaults for every optional attribute that has one.
// It is safe to call more than once.
func (l *Launch) Canonicalize() {
	if l.ProjectDir == "" && len(l.Mounts) > 0 && l.Mounts[0] != nil {
		l.ProjectDir = l.Mounts[0].Container
	}
	if l.PipelinesDir == "" {
		l.PipelinesDir = DefaultPipelinesDir
	}
	if l.Python == "" {
		l.Python = DefaultPython
	}
	if l.Interactive == nil {
		l.Interactive = helper.PointerOf(true)
	}
	if l.Install == nil {
		l.Install = &InstallStep{}
	}
	if l.Install.Command == "" {
		l.Install.Command = DefaultInstallCommand
	}
	if l.Evaluate != nil && l.Evaluate.RuntimeModule == "" {
		l.Evaluate.RuntimeModule = DefaultRuntimeModule
	}
}

// Paths returns the evaluate paths keyed by the fit-produce flag they bind
// to, in flag order.
func (e *EvaluateStep) Paths() [][2]string {
	return [][2]string{
		{"-p", e.Pipeline},
		{"-r", e.Problem},
		{"-i", e.TrainDataset},
		{"-t", e.TestDataset},
		{"-o", e.Predictions},
		{"-O", e.RunRecord},
	}
}
