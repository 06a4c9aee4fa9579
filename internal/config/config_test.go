package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LANG_DIR", "/games/warband/languages")
	t.Setenv("LANGUAGE", "ru")
	t.Setenv("SCORE_CUTOFF", "72.5")
	t.Setenv("WORKER_COUNT", "not-a-number")

	cfg := Load()
	assert.Equal(t, filepath.Join("/games/warband/languages", "ru"), cfg.LanguagePath())
	assert.InDelta(t, 72.5, cfg.ScoreCutoff, 1e-9)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, "sqlite", cfg.DatasetBackend)
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("X_FLOAT", "bad")
	assert.InDelta(t, 1.5, getEnvFloat("X_FLOAT", 1.5), 1e-9)
	t.Setenv("X_FLOAT", "")
	assert.InDelta(t, 2.0, getEnvFloat("X_FLOAT", 2), 1e-9)
}
