package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerAddsServiceAndOp(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, logrus.DebugLevel, false)

	l.WithField("op", "confirm_deposit").Info("депозит подтверждён")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, Service, record["service"])
	assert.Equal(t, "confirm_deposit", record["op"])
	assert.Equal(t, "info", record["level"])
}

func TestInitFallsBackToInfo(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	Init("не-уровень", "production")
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
	_, isJSON := Log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)

	Init("debug", "development")
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
}
