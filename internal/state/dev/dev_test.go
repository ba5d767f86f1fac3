package dev

import (
	"testing"

	"github.com/plai-group/primitive-runner/internal/state/statetest"
)

func TestState_Runs(t *testing.T) {
	statetest.RunRuns(t, New())
}
