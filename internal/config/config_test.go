package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Duration(0), cfg.Client.Timeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
server:
  port: "9000"
client:
  base_url: http://mri.internal:9000
  timeout: 30s
  locale: es
model:
  drive:
    model_id: abc
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "es", cfg.Client.Locale)
	assert.Equal(t, "models/model.onnx", cfg.Model.Path)
	assert.True(t, cfg.Model.Drive.Enabled())
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())

	assert.Error(t, cfg.Validate(), "drive without credentials")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		"PORT":                                   "5000",
		"PREDICT_URL":                            "http://localhost:5000",
		"PREDICT_TIMEOUT":                        "2s",
		"MAX_UPLOAD_BYTES":                       "2048",
		"DRIVE_MODEL_ID":                         "model-id",
		"GOOGLE_APPLICATION_CREDENTIALS_CONTENT": `{"type":"service_account"}`,
		"LOG_LEVEL":                              "",
	})))

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5000", cfg.Client.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Client.Timeout)
	assert.Equal(t, int64(2048), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	assert.Error(t, Default().ApplyEnv(envMap(map[string]string{"PREDICT_TIMEOUT": "soon"})))
	assert.Error(t, Default().ApplyEnv(envMap(map[string]string{"MAX_UPLOAD_BYTES": "ten"})))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.MaxUploadBytes = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Client.Timeout = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("PREDICT_LOCALE", "es")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "es", cfg.Client.Locale)
}
