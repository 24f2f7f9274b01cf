package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "MODEL_PATH", "LABELS_PATH", "ONNXRUNTIME_SHARED_LIBRARY_PATH", "CATALOG_PATH",
		"METRICS_ADDR", "TELEGRAM_TOKEN", "MODEL_EAGER_LOAD", "MODEL_LOAD_DELAY", "MAX_UPLOAD_MB", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, filepath.Join("models", "model.onnx"), lastTwo(cfg.ModelPath))
	require.Equal(t, filepath.Join("models", "labels.txt"), lastTwo(cfg.LabelsPath))
	require.True(t, filepath.IsAbs(cfg.ModelPath))
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.True(t, cfg.EagerLoad)
	require.Equal(t, time.Second, cfg.LoadDelay)
	require.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.Empty(t, cfg.CatalogPath)
	require.Empty(t, cfg.TelegramToken)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("MODEL_PATH", "/opt/models/plagas.onnx")
	t.Setenv("LABELS_PATH", "https://example.com/labels.txt")
	t.Setenv("MODEL_EAGER_LOAD", "false")
	t.Setenv("MODEL_LOAD_DELAY", "250ms")
	t.Setenv("MAX_UPLOAD_MB", "4")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CATALOG_PATH", "catalog.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, "/opt/models/plagas.onnx", cfg.ModelPath)
	require.Equal(t, "https://example.com/labels.txt", cfg.LabelsPath)
	require.False(t, cfg.EagerLoad)
	require.Equal(t, 250*time.Millisecond, cfg.LoadDelay)
	require.Equal(t, int64(4<<20), cfg.MaxUploadBytes)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.True(t, filepath.IsAbs(cfg.CatalogPath))
}

func TestLoad_Invalid(t *testing.T) {
	for k, v := range map[string]string{
		"MODEL_EAGER_LOAD": "maybe",
		"MODEL_LOAD_DELAY": "soon",
		"MAX_UPLOAD_MB":    "-1",
		"LOG_LEVEL":        "LOUD",
	} {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(k, v)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func lastTwo(path string) string {
	return filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path))
}
