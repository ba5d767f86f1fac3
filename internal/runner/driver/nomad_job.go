package driver

import (
	"strconv"
	"strings"

	"github.com/hashicorp/nomad/api"
	"github.com/oklog/ulid/v2"

	"github.com/plai-group/primitive-runner/internal/pkg/helper"
	"github.com/plai-group/primitive-runner/internal/pkg/launch"
	"github.com/plai-group/primitive-runner/internal/pkg/render"
)

const (
	nomadTaskGroupName = "launch"
	nomadTaskName      = "primitive"
	nomadGPUDevice     = "nvidia/gpu"
)

// BuildJob turns a launch into a Nomad batch job running the same compound
// command through the docker task driver. The job never restarts or
// reschedules: a failed launch stays failed.
func BuildJob(runID ulid.ULID, namespace string, l *launch.Launch, cmd *render.Command) *api.Job {

	jobID := GenerateJobID(runID, l.ID)

	volumes := make([]string, 0, len(l.Mounts))
	for _, m := range l.Mounts {
		volumes = append(volumes, render.Volume(m))
	}

	task := api.Task{
		Name:   nomadTaskName,
		Driver: "docker",
		Config: map[string]interface{}{
			"image":   l.Image,
			"command": "/bin/bash",
			"args":    []string{"-c", cmd.Compound},
			"volumes": volumes,
		},
	}

	if len(l.Env) > 0 {
		task.Env = make(map[string]string, len(l.Env))
		for k, v := range l.Env {
			task.Env[k] = v
		}
	}

	if l.GPUs != "" {
		task.Resources = &api.Resources{
			Devices: []*api.RequestedDevice{
				{Name: nomadGPUDevice, Count: helper.PointerOf(gpuCount(l.GPUs))},
			},
		}
	}

	if namespace == "" {
		namespace = api.DefaultNamespace
	}

	return &api.Job{
		Name:      helper.PointerOf(jobID),
		ID:        helper.PointerOf(jobID),
		Type:      helper.PointerOf(api.JobTypeBatch),
		Namespace: helper.PointerOf(namespace),
		Meta: map[string]string{
			"primitive_runner_run_id":    runID.String(),
			"primitive_runner_launch_id": l.ID,
		},
		TaskGroups: []*api.TaskGroup{
			{
				Name:  helper.PointerOf(nomadTaskGroupName),
				Count: helper.PointerOf(1),
				RestartPolicy: &api.RestartPolicy{
					Attempts: helper.PointerOf(0),
					Mode:     helper.PointerOf("fail"),
				},
				ReschedulePolicy: &api.ReschedulePolicy{
					Attempts:  helper.PointerOf(0),
					Unlimited: helper.PointerOf(false),
				},
				Tasks: []*api.Task{&task},
			},
		},
	}
}

func GenerateJobID(runID ulid.ULID, launchID string) string {
	return "primitive-runner-" + strings.ToLower(launchID) + "-" + strings.ToLower(runID.String())
}

// gpuCount maps the docker --gpus value onto a device count. Anything that
// is not a plain number, such as "all", asks for a single device.
func gpuCount(gpus string) uint64 {
	if n, err := strconv.ParseUint(strings.TrimPrefix(gpus, "count="), 10, 64); err == nil && n > 0 {
		return n
	}
	return 1
}
