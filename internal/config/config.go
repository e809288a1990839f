// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/clinicflow/roteiros/internal/utils"
	"github.com/joho/godotenv"
)

// Singleton state for the running configuration.
var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// DefaultModel is used when neither the environment nor config.json names a model.
const DefaultModel = "gpt-4o-mini"

// AppConfig is the merged runtime configuration. Only the LLM section is
// persisted to config.json; everything else comes from the environment.
type AppConfig struct {
	Port               string `json:"port"`
	DataDir            string `json:"data_dir"`
	LogDir             string `json:"log_dir"`
	DebugMode          bool   `json:"debug_mode"`
	LogMode            string `json:"log_mode"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute"`
	MaxScriptBytes     int64  `json:"max_script_bytes"`
	BatchConcurrency   int    `json:"batch_concurrency"`

	LLMProvider string            `json:"llm_provider"`
	LLMConfig   map[string]string `json:"llm_config"`
}

// Config holds the values read from the environment.
type Config struct {
	Port               string
	DataDir            string
	LogDir             string
	DebugMode          bool
	LogMode            string
	LLMProvider        string
	OpenAIAPIKey       string
	OpenRouterAPIKey   string
	LLMModel           string
	RateLimitPerMinute int
	MaxScriptBytes     int64
	BatchConcurrency   int
	EncryptionKey      string
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Port:               getEnv("PORT", "8080"),
		DataDir:            getEnvPath("DATA_DIR", "data"),
		LogDir:             getEnvPath("LOG_DIR", "logs"),
		DebugMode:          getEnvBool("DEBUG_MODE", false),
		LogMode:            getEnv("LOG_MODE", "development"),
		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenRouterAPIKey:   getEnv("OPENROUTER_API_KEY", ""),
		LLMModel:           getEnv("LLM_MODEL", DefaultModel),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MaxScriptBytes:     int64(getEnvInt("MAX_SCRIPT_BYTES", 64*1024)),
		BatchConcurrency:   getEnvInt("BATCH_CONCURRENCY", 4),
		EncryptionKey:      getEnv("CONFIG_ENCRYPTION_KEY", ""),
	}

	if config.BatchConcurrency < 1 {
		return nil, fmt.Errorf("BATCH_CONCURRENCY must be at least 1, got %d", config.BatchConcurrency)
	}
	if config.MaxScriptBytes < 1 {
		return nil, fmt.Errorf("MAX_SCRIPT_BYTES must be positive, got %d", config.MaxScriptBytes)
	}

	if config.APIKeyFor(config.LLMProvider) == "" {
		log.Printf("warning: no API key for LLM provider %q, script generation stays disabled until one is configured", config.LLMProvider)
	}

	return config, nil
}

// APIKeyFor returns the environment key for a provider.
func (c *Config) APIKeyFor(provider string) string {
	if provider == "openrouter" {
		return c.OpenRouterAPIKey
	}
	return c.OpenAIAPIKey
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath returns a directory path and makes sure it exists.
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Printf("warning: failed to create directory %s: %v", path, err)
		}
	}

	return path
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(getEnv(key, ""))
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt falls back to the default when the value is missing or not a number.
func getEnvInt(key string, defaultValue int) int {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("warning: %s=%q is not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// InitConfig loads the environment and merges the LLM section saved in
// <dataDir>/config.json. Environment keys win over an empty saved key.
func InitConfig(dataDir string) error {
	base, err := Load()
	if err != nil {
		return err
	}
	if dataDir == "" {
		dataDir = base.DataDir
	}
	configFile = filepath.Join(dataDir, "config.json")

	configMutex.Lock()
	defer configMutex.Unlock()

	encryptionKey = base.EncryptionKey
	currentConfig = fromBase(base)
	currentConfig.DataDir = dataDir

	data, err := os.ReadFile(configFile)
	if err == nil {
		var saved AppConfig
		if jsonErr := json.Unmarshal(data, &saved); jsonErr != nil {
			log.Printf("warning: ignoring unreadable %s: %v", configFile, jsonErr)
		} else if saved.LLMProvider != "" {
			llmConfig, decErr := decryptSecrets(saved.LLMConfig)
			if decErr != nil {
				return fmt.Errorf("failed to decrypt saved LLM config: %w", decErr)
			}
			if llmConfig["api_key"] == "" {
				llmConfig["api_key"] = base.APIKeyFor(saved.LLMProvider)
			}
			if llmConfig["default_model"] == "" {
				llmConfig["default_model"] = base.LLMModel
			}
			currentConfig.LLMProvider = saved.LLMProvider
			currentConfig.LLMConfig = llmConfig
		}
	}

	return saveLocked()
}

var encryptionKey string

func fromBase(base *Config) *AppConfig {
	return &AppConfig{
		Port:               base.Port,
		DataDir:            base.DataDir,
		LogDir:             base.LogDir,
		DebugMode:          base.DebugMode,
		LogMode:            base.LogMode,
		RateLimitPerMinute: base.RateLimitPerMinute,
		MaxScriptBytes:     base.MaxScriptBytes,
		BatchConcurrency:   base.BatchConcurrency,
		LLMProvider:        base.LLMProvider,
		LLMConfig: map[string]string{
			"api_key":       base.APIKeyFor(base.LLMProvider),
			"default_model": base.LLMModel,
		},
	}
}

// GetCurrentConfig returns a copy of the running configuration, loading the
// environment when InitConfig has not run.
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		base, err := Load()
		if err != nil {
			base = &Config{Port: "8080", DataDir: "data", LogDir: "logs", LogMode: "development",
				LLMProvider: "openai", LLMModel: DefaultModel, RateLimitPerMinute: 60,
				MaxScriptBytes: 64 * 1024, BatchConcurrency: 4}
		}
		return fromBase(base)
	}

	configCopy := *currentConfig
	configCopy.LLMConfig = make(map[string]string, len(currentConfig.LLMConfig))
	for k, v := range currentConfig.LLMConfig {
		configCopy.LLMConfig[k] = v
	}
	return &configCopy
}

// UpdateLLMConfig switches the provider settings and persists them.
func UpdateLLMConfig(provider string, config map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("config not initialized")
	}

	llmConfig := make(map[string]string, len(config))
	for k, v := range config {
		llmConfig[k] = v
	}
	currentConfig.LLMProvider = provider
	currentConfig.LLMConfig = llmConfig

	return saveLocked()
}

// SaveConfig writes the current configuration to config.json.
func SaveConfig() error {
	configMutex.Lock()
	defer configMutex.Unlock()
	return saveLocked()
}

func saveLocked() error {
	if currentConfig == nil {
		return fmt.Errorf("no config to save")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	persisted := *currentConfig
	sealed, err := encryptSecrets(currentConfig.LLMConfig)
	if err != nil {
		return fmt.Errorf("failed to encrypt LLM config: %w", err)
	}
	persisted.LLMConfig = sealed

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configFile, data, 0600)
}

// secretKeys names the LLM config entries sealed on disk.
var secretKeys = []string{"api_key"}

func encryptSecrets(in map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	for _, k := range secretKeys {
		sealed, err := utils.EncryptSecret(out[k], encryptionKey)
		if err != nil {
			return nil, err
		}
		if sealed != "" {
			out[k] = sealed
		}
	}
	return out, nil
}

func decryptSecrets(in map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	for _, k := range secretKeys {
		plain, err := utils.DecryptSecret(out[k], encryptionKey)
		if err != nil {
			return nil, err
		}
		out[k] = plain
	}
	return out, nil
}
