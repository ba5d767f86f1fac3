package launch

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/plai-group/primitive-runner/internal/pkg/render"
)

const testLaunchFile = `
variable "dataset" {
  type     = string
  required = true
}

launch "smi" {
  image = "IMG"

  mount {
    host      = "/a/b"
    container = "/c"
  }

  interactive = false

  generate {
    script = "smi_pipeline.py"
  }

  evaluate {
    volumes       = "/static"
    pipeline      = "pipeline.json"
    problem       = "/datasets/${var.dataset}/problemDoc.json"
    train_dataset = "/datasets/${var.dataset}/TRAIN/datasetDoc.json"
    test_dataset  = "/datasets/${var.dataset}/TEST/datasetDoc.json"
    predictions   = "results.csv"
    run_record    = "run.yml"
  }
}

launch "broken" {
  generate {
    skip = true
  }
}
`

func writeLaunchFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launch.hcl")
	require.NoError(t, os.WriteFile(path, []byte(testLaunchFile), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
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

	err := root.Run(context.Background(), append([]string{"primitive-runner", "launch"}, args...))
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {

	path := writeLaunchFile(t)

	out, err := runCLI(t, "render", "--launch", "smi", "--var", "dataset=185_baseball", "--docker-bin", "docker", path)
	require.NoError(t, err)
	require.Contains(t, out, "docker run -v /a/b:/c IMG /bin/bash -c \"cd /c;pip install -e .;cd pipelines;python smi_pipeline.py;")
	require.Contains(t, out, "-r /datasets/185_baseball/problemDoc.json")
	require.Contains(t, out, "-o results.csv -O run.yml;exit\"")

	out, err = runCLI(t, "render", "--launch", "smi", "--var", "dataset=185_baseball", "--format", "json", path)
	require.NoError(t, err)

	var decoded struct {
		render.Command
		Argv []string `json:"argv"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, "IMG", decoded.Args[3])
	require.Equal(t, decoded.Compound, decoded.Argv[len(decoded.Argv)-1])
}

func TestRenderCommand_Errors(t *testing.T) {

	path := writeLaunchFile(t)

	_, err := runCLI(t, "render", "--launch", "smi", path)
	require.ErrorContains(t, err, "dataset")

	_, err = runCLI(t, "render", "--var", "dataset=x", path)
	require.ErrorContains(t, err, "select one of: broken, smi")

	_, err = runCLI(t, "render", "--launch", "broken", "--var", "dataset=x", path)
	require.ErrorContains(t, err, "image must be set")

	_, err = runCLI(t, "render", "--launch", "smi", "--var", "dataset=x", "--format", "yaml", path)
	require.ErrorContains(t, err, "unsupported format")
}

func TestValidateCommand(t *testing.T) {

	path := writeLaunchFile(t)

	out, err := runCLI(t, "validate", "--var", "dataset=x", "--launch", "smi", path)
	require.NoError(t, err)
	require.Contains(t, out, "Launch file is valid")

	_, err = runCLI(t, "validate", "--var", "dataset=x", path)
	require.ErrorContains(t, err, `launch "broken"`)
}

func TestListCommand(t *testing.T) {

	out, err := runCLI(t, "list", "--var", "dataset=x", writeLaunchFile(t))
	require.NoError(t, err)
	require.Contains(t, out, "smi_pipeline.py")
	require.Contains(t, out, "broken")
}

func TestRunCommand_DryRun(t *testing.T) {

	dataDir := t.TempDir()

	// The dry run goes to stderr, which shares the buffer here.
	out, err := runCLI(t, "run", "--dry-run", "--data-dir", dataDir, "--launch", "smi", "--var", "dataset=x", writeLaunchFile(t))
	require.NoError(t, err)
	require.Contains(t, out, "+ docker run -v /a/b:/c IMG")

	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
