package cli

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelVar(t *testing.T) {
	var level zapcore.Level
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	LevelVar(fs, &level, "log-level", zapcore.WarnLevel, "")
	assert.Equal(t, zapcore.WarnLevel, level)

	require.NoError(t, fs.Parse([]string{"--log-level=debug"}))
	assert.Equal(t, zapcore.DebugLevel, level)
	assert.Equal(t, "Log-Level", fs.Lookup("log-level").Value.Type())

	err := fs.Parse([]string{"--log-level=chatty"})
	assert.ErrorContains(t, err, "unknown log level")
}
