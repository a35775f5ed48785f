package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zip2addr/zip2addr/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Default().Info().Msg("info message")

	assert.Contains(t, buf.String(), "info message")
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.OrDefault(nil))

	l := zerolog.Nop()
	assert.Same(t, &l, logging.OrDefault(&l))
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithRunID(ctx, "run-123")
	ctx = logging.WithFile(ctx, "KEN_ALL.CSV")
	ctx = logging.WithStage(ctx, "merge")

	logging.FromContext(ctx).Info().Msg("test message")

	testLogger.AssertContains(t, "run-123")
	testLogger.AssertContains(t, "KEN_ALL.CSV")
	testLogger.AssertContains(t, `"stage":"merge"`)
	testLogger.AssertContains(t, "test message")
	assert.Equal(t, "run-123", logging.RunID(ctx))
}

func TestFromContextWithoutLogger(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	assert.Equal(t, "", logging.RunID(context.Background()))
}

func TestWithField(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithField(ctx, "records", 3)
	ctx = logging.WithField(ctx, "empty", false)

	logging.FromContext(ctx).Info().Msg("done")

	entries := testLogger.Entries()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 3, entries[0]["records"])
	assert.Equal(t, false, entries[0]["empty"])
}

func TestConfiguration(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	configs := []struct {
		name   string
		config *logging.Config
		check  func(t *testing.T, output string)
	}{
		{
			name:   "debug level",
			config: &logging.Config{Level: "debug", Format: "json", Output: "discard"},
			check: func(t *testing.T, output string) {
				assert.Contains(t, output, `"level":"debug"`)
			},
		},
		{
			name:   "error level only",
			config: &logging.Config{Level: "error", Format: "json", Output: "discard"},
			check: func(t *testing.T, output string) {
				assert.NotContains(t, output, `"level":"info"`)
				assert.Contains(t, output, `"level":"error"`)
			},
		},
	}

	for _, tc := range configs {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.NewLoggerFromConfig(tc.config).Output(buf)

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			tc.check(t, buf.String())
		})
	}
}

func TestConfigFileOutput(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	path := filepath.Join(t.TempDir(), "zip2addr.log")
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "info",
		Format: "auto",
		Output: path,
		Fields: map[string]any{"service": "zip2addr"},
	})
	logger.Info().Msg("written to file")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	// Files are never terminals, so auto resolves to JSON.
	assert.True(t, strings.HasPrefix(string(content), "{"))
	assert.Contains(t, string(content), "written to file")
	assert.Contains(t, string(content), `"service":"zip2addr"`)
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("message 1")
	tl.Logger.Warn().Int("line", 4).Msg("message 2")

	tl.AssertContains(t, "message 1")
	tl.AssertCount(t, 2)
	assert.True(t, tl.ContainsAll("message 1", "message 2"))

	warns := tl.EntriesAt("warn")
	require.Len(t, warns, 1)
	assert.EqualValues(t, 4, warns[0]["line"])

	tl.Clear()
	assert.Equal(t, 0, tl.Count())
}
