package helper

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plai-group/primitive-runner/internal/pkg/state"
)

func TestFormatError(t *testing.T) {

	out := FormatError("failed to get run", fmt.Errorf("lookup: %w", state.NewErrorResp(errors.New("run not found"), 404)))
	require.Contains(t, out, "Description = failed to get run")
	require.Contains(t, out, "Error       = lookup: run not found")
	require.Contains(t, out, "Code        = 404")

	out = FormatError("failed to parse", errors.New("bad"))
	require.Contains(t, out, "Code        = 400")
}

func TestFormatTime(t *testing.T) {
	require.Equal(t, "N/A", FormatTime(time.Time{}))
	require.Equal(t, "2020-01-09T10:00:00Z", FormatTime(time.Date(2020, 1, 9, 10, 0, 0, 0, time.UTC)))
}
