package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("version: \"1.0\"\n"))
	require.NoError(t, err)

	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, 3, cfg.Markdown.TOCDepth)
	require.NotNil(t, cfg.Markdown.Unsafe)
	assert.True(t, *cfg.Markdown.Unsafe)
	require.NotNil(t, cfg.Markdown.GFM)
	assert.True(t, *cfg.Markdown.GFM)
	assert.Equal(t, 4, cfg.Run.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Run.Debounce())
	assert.Equal(t, OutputJSON, cfg.Output.Format)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Sinks.NATS.Subject)
}

func TestParse_ExplicitValues(t *testing.T) {
	data := `version: "1.0"
logging:
  level: DEBUG
  format: Json
markdown:
  toc_depth: 4
  unsafe: false
transformers:
  disabled: [" UID "]
run:
  concurrency: 8
  watch_debounce: 1s
output:
  format: yml
sinks:
  sqlite:
    path: out.db
  nats:
    url: nats://localhost:4222
metrics:
  address: ":9090"
`
	cfg, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, 4, cfg.Markdown.TOCDepth)
	assert.False(t, *cfg.Markdown.Unsafe)
	assert.True(t, *cfg.Markdown.GFM)
	assert.Equal(t, []string{"uid"}, cfg.Transformers.Disabled)
	assert.Equal(t, 8, cfg.Run.Concurrency)
	assert.Equal(t, time.Second, cfg.Run.Debounce())
	assert.Equal(t, OutputYAML, cfg.Output.Format)
	assert.Equal(t, "out.db", cfg.Sinks.SQLite.Path)
	assert.Equal(t, "contentpipe.parsed", cfg.Sinks.NATS.Subject)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("CONTENTPIPE_TEST_DB", "/tmp/contentpipe.db")

	cfg, err := Parse([]byte("version: \"1.0\"\nsinks:\n  sqlite:\n    path: ${CONTENTPIPE_TEST_DB}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/contentpipe.db", cfg.Sinks.SQLite.Path)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		category errors.ErrorCategory
	}{
		{"unsupported version", "version: \"2.0\"\n", errors.CategoryConfig},
		{"missing version", "logging:\n  level: info\n", errors.CategoryConfig},
		{"unknown field", "version: \"1.0\"\nbogus: true\n", errors.CategoryConfig},
		{"bad level", "version: \"1.0\"\nlogging:\n  level: loud\n", errors.CategoryValidation},
		{"toc depth too deep", "version: \"1.0\"\nmarkdown:\n  toc_depth: 9\n", errors.CategoryValidation},
		{"negative concurrency", "version: \"1.0\"\nrun:\n  concurrency: -1\n", errors.CategoryValidation},
		{"bad debounce", "version: \"1.0\"\nrun:\n  watch_debounce: soon\n", errors.CategoryValidation},
		{"bad nats scheme", "version: \"1.0\"\nsinks:\n  nats:\n    url: http://localhost\n", errors.CategoryValidation},
		{"subject with spaces", "version: \"1.0\"\nsinks:\n  nats:\n    url: nats://x:4222\n    subject: a b\n", errors.CategoryValidation},
		{"relative metrics path", "version: \"1.0\"\nmetrics:\n  path: metrics\n", errors.CategoryValidation},
		{"bad output format", "version: \"1.0\"\noutput:\n  format: xml\n", errors.CategoryValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, tt.category), "got category %s: %v", errors.GetCategory(err), err)
		})
	}
}

func TestNormalize_ReportsWarnings(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "WARNING", Format: "text"},
		Output:  OutputConfig{Format: "nope"},
	}
	res := Normalize(cfg)

	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, OutputFormat("nope"), cfg.Output.Format)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "logging.level")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestInit_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contentpipe.yaml")

	require.NoError(t, Init(path, false))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	require.NoError(t, Init(path, true))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoggingConfig_NewLogger(t *testing.T) {
	var sb strings.Builder
	logger := LoggingConfig{Level: LogLevelError, Format: LogFormatJSON}.NewLogger(&sb, false)
	logger.Info("hidden")
	logger.Error("shown")
	assert.NotContains(t, sb.String(), "hidden")
	assert.Contains(t, sb.String(), `"msg":"shown"`)

	sb.Reset()
	logger = LoggingConfig{Level: LogLevelError, Format: LogFormatText}.NewLogger(&sb, true)
	logger.Debug("verbose")
	assert.Contains(t, sb.String(), "msg=verbose")
}
