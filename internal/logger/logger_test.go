package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewFormats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"logfmt", `msg="checked unit" file=a.yaml`},
		{"auto", `msg="checked unit" file=a.yaml`},
		{"console", "checked unit\t{\"file\": \"a.yaml\"}"},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(&buf, Config{Format: tc.format, Level: zapcore.InfoLevel})
			require.NoError(t, err)

			log.Info("checked unit", zap.String("file", "a.yaml"))
			require.NoError(t, log.Sync())
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Config{Format: "json", Level: zapcore.InfoLevel})
	require.NoError(t, err)

	log.Info("checked unit", zap.Int("errors", 2))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "checked unit", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 2, entry["errors"])
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Config{Format: "logfmt", Level: zapcore.WarnLevel})
	require.NoError(t, err)

	log.Info("hidden")
	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Config{Format: "xml"})
	assert.EqualError(t, err, "unknown logging format: xml")
}

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, "auto", c.Format)
	assert.Equal(t, zapcore.InfoLevel, c.Level)
}

func TestContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	log := zap.NewExample()
	ctx := NewContextWithLogger(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}
