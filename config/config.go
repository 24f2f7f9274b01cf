package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	ModelPath      string
	LabelsPath     string
	OnnxLibrary    string
	CatalogPath    string
	MetricsAddr    string
	TelegramToken  string
	EagerLoad      bool
	LoadDelay      time.Duration
	MaxUploadBytes int64
	LogLevel       slog.Level
}

// Load reads .env (if present) and the environment. Relative resource paths
// are resolved against the project root.
func Load() (*Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	root, err := projectRoot()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		ModelPath:     resolve(root, getEnv("MODEL_PATH", filepath.Join("models", "model.onnx"))),
		LabelsPath:    resolve(root, getEnv("LABELS_PATH", filepath.Join("models", "labels.txt"))),
		OnnxLibrary:   os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"),
		CatalogPath:   os.Getenv("CATALOG_PATH"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}
	if cfg.CatalogPath != "" {
		cfg.CatalogPath = resolve(root, cfg.CatalogPath)
	}

	if cfg.EagerLoad, err = strconv.ParseBool(getEnv("MODEL_EAGER_LOAD", "true")); err != nil {
		return nil, fmt.Errorf("invalid MODEL_EAGER_LOAD: %w", err)
	}
	if cfg.LoadDelay, err = time.ParseDuration(getEnv("MODEL_LOAD_DELAY", "1s")); err != nil {
		return nil, fmt.Errorf("invalid MODEL_LOAD_DELAY: %w", err)
	}

	maxMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "10"))
	if err != nil || maxMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB %q", os.Getenv("MAX_UPLOAD_MB"))
	}
	cfg.MaxUploadBytes = int64(maxMB) << 20

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "INFO"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// projectRoot is the working directory, or two levels up when running from cmd/server.
func projectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if filepath.Base(wd) == "server" && filepath.Base(filepath.Dir(wd)) == "cmd" {
		wd = filepath.Join(wd, "..", "..")
	}
	return filepath.Clean(wd), nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return filepath.Join(root, path)
}
