// Package file persists runs as JSON documents in the runner data
// directory, one directory per run so that logs can live alongside.
package file

import (
	"sync"

	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

const runFileName = "run.json"

type State struct {
	dataDir string
	logger  *zap.Logger

	// runsLock serialises access from within this process. Concurrent
	// runner processes only ever write their own run directory.
	runsLock sync.RWMutex
}

func New(dataDir string, logger *zap.Logger) state.State {
	return &State{
		dataDir: dataDir,
		logger:  logger,
	}
}
