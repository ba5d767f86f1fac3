package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/plai-group/primitive-runner/internal/pkg/helper"
	"github.com/plai-group/primitive-runner/internal/pkg/launch"
)

func exampleLaunch() *launch.Launch {
	l := &launch.Launch{
		ID:     "example",
		Image:  "IMG",
		Mounts: []*launch.Mount{{Host: "/a/b", Container: "/c"}},
		Generate: &launch.GenerateStep{
			Script: "smi_pipeline.py",
		},
		Evaluate: &launch.EvaluateStep{
			Volumes:      "/static",
			Pipeline:     "pipeline.json",
			Problem:      "/data/problemDoc.json",
			TrainDataset: "/data/train_datasetDoc.json",
			TestDataset:  "/data/test_datasetDoc.json",
			Predictions:  "results.csv",
			RunRecord:    "run.yml",
		},
	}
	l.Canonicalize()
	return l
}

func TestRender_Example(t *testing.T) {

	cmd, err := Render(exampleLaunch())
	require.NoError(t, err)

	expectedCompound := "cd /c;pip install -e .;cd pipelines;python smi_pipeline.py;" +
		"python -m d3m runtime --volumes /static fit-produce -p pipeline.json " +
		"-r /data/problemDoc.json -i /data/train_datasetDoc.json -t /data/test_datasetDoc.json " +
		"-o results.csv -O run.yml;exit"

	require.Equal(t, expectedCompound, cmd.Compound)
	require.True(t, strings.HasSuffix(cmd.Compound, "-o results.csv -O run.yml;exit"))

	expectedArgs := []string{"run", "-v", "/a/b:/c", "-i", "-t", "IMG", "/bin/bash", "-c", expectedCompound}
	if diff := cmp.Diff(expectedArgs, cmd.Args); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}

	line := cmd.String()
	require.Contains(t, line, "-v /a/b:/c")
	require.Equal(t, `docker run -v /a/b:/c -i -t IMG /bin/bash -c "`+expectedCompound+`"`, line)
	require.Equal(t, append([]string{"docker"}, expectedArgs...), cmd.Argv())
}

func TestRender_PathsBoundOnce(t *testing.T) {

	l := exampleLaunch()

	cmd, err := Render(l)
	require.NoError(t, err)

	for _, p := range l.Evaluate.Paths() {
		require.Equal(t, 1, strings.Count(cmd.Compound, p[1]), "path %q", p[1])
		require.Contains(t, cmd.Compound, " "+p[0]+" "+p[1])
	}

	// Flags appear in their fixed order.
	last := -1
	for _, flag := range []string{" -p ", " -r ", " -i ", " -t ", " -o ", " -O "} {
		idx := strings.Index(cmd.Compound, flag)
		require.Greater(t, idx, last, "flag %q out of order", flag)
		last = idx
	}
}

func TestRender_VolumeSingleColon(t *testing.T) {

	cmd, err := Render(exampleLaunch())
	require.NoError(t, err)

	idx := indexOf(cmd.Args, "-v")
	require.GreaterOrEqual(t, idx, 0)

	vol := cmd.Args[idx+1]
	require.Equal(t, 1, strings.Count(vol, ":"))

	host, container, _ := strings.Cut(vol, ":")
	require.Equal(t, "/a/b", host)
	require.Equal(t, "/c", container)
}

func TestRender_StepOrder(t *testing.T) {

	cmd, err := Render(exampleLaunch())
	require.NoError(t, err)

	install := strings.Index(cmd.Compound, "pip install -e .")
	generate := strings.Index(cmd.Compound, "python smi_pipeline.py")
	fit := strings.Index(cmd.Compound, "fit-produce")
	exit := strings.LastIndex(cmd.Compound, ";exit")

	require.True(t, install >= 0 && install < generate)
	require.True(t, generate < fit)
	require.True(t, fit < exit)
	require.Equal(t, len(cmd.Compound)-len(";exit"), exit)
}

func TestRender_Idempotent(t *testing.T) {

	l := exampleLaunch()
	l.Env = map[string]string{"Z": "1", "A": "2", "M": "3"}

	first, err := Render(l)
	require.NoError(t, err)

	for range 10 {
		again, err := Render(l)
		require.NoError(t, err)
		require.Equal(t, first.String(), again.String())
	}

	// A separately built but identical launch renders identically too.
	other := exampleLaunch()
	other.Env = map[string]string{"M": "3", "Z": "1", "A": "2"}
	second, err := Render(other)
	require.NoError(t, err)
	require.Equal(t, first.String(), second.String())
}

func TestRender_Options(t *testing.T) {

	l := exampleLaunch()
	l.Mounts = append(l.Mounts, &launch.Mount{Host: "/weights", Container: "/static"})
	l.Env = map[string]string{"D3MSTATICDIR": "/static", "A": "x y"}
	l.GPUs = "all"
	l.Remove = true
	l.Interactive = helper.PointerOf(false)
	l.FailFast = true
	l.Install.Skip = true
	l.Generate.Args = []string{"-s", "2"}
	l.Evaluate.Volumes = ""

	cmd, err := Render(l)
	require.NoError(t, err)

	expectedCompound := "cd /c&&cd pipelines&&python smi_pipeline.py -s 2&&" +
		"python -m d3m runtime fit-produce -p pipeline.json " +
		"-r /data/problemDoc.json -i /data/train_datasetDoc.json -t /data/test_datasetDoc.json " +
		"-o results.csv -O run.yml;exit"

	expectedArgs := []string{
		"run",
		"-v", "/a/b:/c",
		"-v", "/weights:/static",
		"-e", "A=x y",
		"-e", "D3MSTATICDIR=/static",
		"--gpus", "all",
		"--rm",
		"IMG", "/bin/bash", "-c", expectedCompound,
	}
	if diff := cmp.Diff(expectedArgs, cmd.Args); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}

	require.Contains(t, cmd.String(), `-e 'A=x y'`)
	require.NotContains(t, cmd.String(), "-i -t")
}

func TestRender_SkippedGenerate(t *testing.T) {

	l := exampleLaunch()
	l.Generate = &launch.GenerateStep{Skip: true}

	cmd, err := Render(l)
	require.NoError(t, err)
	require.Equal(t, []string{
		"cd /c",
		"pip install -e .",
		"cd pipelines",
		"python -m d3m runtime --volumes /static fit-produce -p pipeline.json " +
			"-r /data/problemDoc.json -i /data/train_datasetDoc.json -t /data/test_datasetDoc.json " +
			"-o results.csv -O run.yml",
	}, Steps(l))
	require.NotContains(t, cmd.Compound, "smi_pipeline.py")
}

func TestRender_QuotesPaths(t *testing.T) {

	l := exampleLaunch()
	l.Evaluate.Problem = "/data/my problem/problemDoc.json"
	l.Evaluate.Predictions = "it's.csv"

	cmd, err := Render(l)
	require.NoError(t, err)
	require.Contains(t, cmd.Compound, `-r '/data/my problem/problemDoc.json'`)
	require.Contains(t, cmd.Compound, `-o 'it'\''s.csv'`)

	// Inside the double quoted compound the single quotes survive and the
	// backslash is escaped.
	require.Contains(t, cmd.String(), `-o 'it'\\''s.csv'`)
}

func TestRender_Invalid(t *testing.T) {

	l := exampleLaunch()
	l.Mounts[0].Host = "/a:b"

	_, err := Render(l)
	require.ErrorContains(t, err, `invalid launch "example"`)
	require.ErrorContains(t, err, "must not contain ':'")
}

func TestQuote(t *testing.T) {

	testCases := []struct {
		input    string
		expected string
	}{
		{input: "", expected: "''"},
		{input: "/plain/path.json", expected: "/plain/path.json"},
		{input: "a b", expected: "'a b'"},
		{input: "$HOME", expected: "'$HOME'"},
		{input: "it's", expected: `'it'\''s'`},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			require.Equal(t, tc.expected, Quote(tc.input))
		})
	}
}

func indexOf(s []string, v string) int {
	for i, item := range s {
		if item == v {
			return i
		}
	}
	return -1
}
