package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_DIR", filepath.Join(dir, "logs"))
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env-key")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("CONFIG_ENCRYPTION_KEY", "")
	t.Setenv("BATCH_CONCURRENCY", "")
	t.Setenv("MAX_SCRIPT_BYTES", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Cleanup(func() {
		configMutex.Lock()
		currentConfig = nil
		encryptionKey = ""
		configMutex.Unlock()
	})
	return dir
}

func TestLoad(t *testing.T) {
	setupEnv(t)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 60, cfg.RateLimitPerMinute)
		assert.Equal(t, int64(65536), cfg.MaxScriptBytes)
		assert.Equal(t, 4, cfg.BatchConcurrency)
		assert.Equal(t, DefaultModel, cfg.LLMModel)
		assert.Equal(t, "sk-env-key", cfg.APIKeyFor("openai"))
	})

	t.Run("bad integer falls back", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 60, cfg.RateLimitPerMinute)
	})

	t.Run("zero concurrency rejected", func(t *testing.T) {
		t.Setenv("BATCH_CONCURRENCY", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("openrouter key", func(t *testing.T) {
		t.Setenv("OPENROUTER_API_KEY", "or-key")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "or-key", cfg.APIKeyFor("openrouter"))
	})
}

func TestInitConfig(t *testing.T) {
	t.Run("writes config file", func(t *testing.T) {
		dir := setupEnv(t)
		require.NoError(t, InitConfig(dir))

		cfg := GetCurrentConfig()
		assert.Equal(t, "openai", cfg.LLMProvider)
		assert.Equal(t, "sk-env-key", cfg.LLMConfig["api_key"])
		assert.FileExists(t, filepath.Join(dir, "config.json"))
	})

	t.Run("saved provider wins", func(t *testing.T) {
		dir := setupEnv(t)
		saved := `{"llm_provider": "openrouter", "llm_config": {"default_model": "meta/llama"}}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(saved), 0600))
		t.Setenv("OPENROUTER_API_KEY", "or-key")

		require.NoError(t, InitConfig(dir))
		cfg := GetCurrentConfig()
		assert.Equal(t, "openrouter", cfg.LLMProvider)
		assert.Equal(t, "meta/llama", cfg.LLMConfig["default_model"])
		assert.Equal(t, "or-key", cfg.LLMConfig["api_key"])
	})

	t.Run("copy is detached", func(t *testing.T) {
		dir := setupEnv(t)
		require.NoError(t, InitConfig(dir))
		cfg := GetCurrentConfig()
		cfg.LLMConfig["api_key"] = "changed"
		assert.Equal(t, "sk-env-key", GetCurrentConfig().LLMConfig["api_key"])
	})
}

func TestUpdateLLMConfigEncryptsKey(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("CONFIG_ENCRYPTION_KEY", "passphrase")
	require.NoError(t, InitConfig(dir))

	require.NoError(t, UpdateLLMConfig("openrouter", map[string]string{"api_key": "or-secret", "default_model": "x"}))

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	var onDisk AppConfig
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.NotEqual(t, "or-secret", onDisk.LLMConfig["api_key"])
	assert.Contains(t, onDisk.LLMConfig["api_key"], "enc:")

	// reload decrypts
	require.NoError(t, InitConfig(dir))
	assert.Equal(t, "or-secret", GetCurrentConfig().LLMConfig["api_key"])
}

func TestUpdateLLMConfigUninitialized(t *testing.T) {
	setupEnv(t)
	assert.Error(t, UpdateLLMConfig("openai", nil))
}
