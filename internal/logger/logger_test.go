package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	entry := G(context.Background())
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLogger(t *testing.T) {
	custom := logrus.NewEntry(logrus.New()).WithField("tool", "cursor")
	ctx := WithLogger(context.Background(), custom)

	got := G(ctx)
	assert.Equal(t, "cursor", got.Data["tool"])
	assert.Equal(t, custom.Logger, got.Logger)
}

func TestSetLogLevel(t *testing.T) {
	original := L.Logger.GetLevel()
	defer L.Logger.SetLevel(original)

	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("loud"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())
}

func TestSetLogFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogFormat("json")
	original := L.Logger.GetLevel()
	defer func() {
		SetLogOutput(os.Stderr)
		SetLogFormat("fmt")
		L.Logger.SetLevel(original)
	}()
	L.Logger.SetLevel(logrus.InfoLevel)

	L.WithField("tool", "claude").Info("installed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "installed", entry["message"])
	assert.Equal(t, "info", entry["logLevel"])
	assert.Equal(t, "claude", entry["tool"])
	assert.Contains(t, entry, "timestamp")
}
