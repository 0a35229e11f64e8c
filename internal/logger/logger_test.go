package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/bookshelf-api/internal/logger"
)

func TestNew_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("production", "debug", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	l := logger.New("coordinator")
	l.Warn().Str("isbn", "978-1").Msg("partial")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "coordinator", line["component"])
	assert.Equal(t, "978-1", line["isbn"])
	assert.Equal(t, "warn", line["level"])
	assert.Contains(t, line, "time")
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("production", "warn", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	l := logger.New("x")
	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.InitWithWriter("production", "bogus", &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
