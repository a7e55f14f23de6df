package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/permalink/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Run("json output with static attrs", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttrs(slog.String("component", "permalink")),
		)
		log.InfoContext(context.Background(), "hello")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "permalink", record["component"])
	})

	t.Run("text output", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.True(t, strings.Contains(buf.String(), "msg=hello"))
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Empty(t, buf.String())
		log.Warn("kept")
		assert.NotEmpty(t, buf.String())
	})
}
