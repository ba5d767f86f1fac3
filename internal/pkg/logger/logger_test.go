package logger

import (
	"testing"

	"github.com/hashicorp/nomad/helper/pointer"
	"github.com/stretchr/testify/require"
)

func TestConfig_Merge(t *testing.T) {

	base := DefaultConfig()

	merged := base.Merge(&Config{Level: "debug", JSON: pointer.Of(true)})
	require.Equal(t, "debug", merged.Level)
	require.True(t, *merged.JSON)
	require.False(t, *merged.IncludeLine)

	// The receiver must not be modified.
	require.Equal(t, "info", base.Level)
	require.False(t, *base.JSON)

	require.Equal(t, base, base.Merge(nil))

	var nilCfg *Config
	require.Equal(t, base, nilCfg.Merge(base))
}

func TestNewZap(t *testing.T) {

	l, err := NewZap(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, l)

	l, err = NewZap(DefaultConfig().Merge(&Config{JSON: pointer.Of(true), IncludeLine: pointer.Of(true)}))
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = NewZap(&Config{Level: "loud"})
	require.Error(t, err)
}
