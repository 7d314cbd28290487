package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	l := Setup(false)
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())
	require.Equal(t, zerolog.InfoLevel, log.Logger.GetLevel())

	l = Setup(true)
	require.Equal(t, zerolog.DebugLevel, l.GetLevel())
}

func TestSetup_jsonOutput(t *testing.T) {
	var buf bytes.Buffer
	l := setup(&buf, false)

	l.Debug().Msg("hidden")
	l.Info().Str("document", "index.html").Msg("Processed document")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "index.html", entry["document"])
	assert.Equal(t, "Processed document", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestSetup_debugConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := setup(&buf, true)

	l.Debug().Msg("Inlined asset")

	assert.Contains(t, buf.String(), "Inlined asset")
	assert.Contains(t, buf.String(), "logger_test.go")
	assert.False(t, json.Valid(buf.Bytes()))
}
