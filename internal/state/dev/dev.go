// Package dev is an in-memory state backend. Runs do not survive the
// process, which makes it useful for tests and throwaway launches.
package dev

import (
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

type State struct {
	runs     map[ulid.ULID]*state.Run
	runsLock sync.RWMutex
}

func New() state.State {
	return &State{
		runs: make(map[ulid.ULID]*state.Run),
	}
}
