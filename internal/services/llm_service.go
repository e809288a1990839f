// internal/services/llm_service.go
package services

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clinicflow/roteiros/internal/config"
	apperrors "github.com/clinicflow/roteiros/internal/errors"
	"github.com/clinicflow/roteiros/internal/llm"
	"github.com/clinicflow/roteiros/internal/utils"
)

const (
	defaultCacheExpiration = 30 * time.Minute
	maxCacheEntries        = 1000
	cacheEvictBatch        = 100
)

// LLMService wraps the configured provider with readiness tracking and a response cache.
type LLMService struct {
	providerMutex      sync.RWMutex
	provider           llm.Provider
	providerName       string
	cache              *LLMCache
	isReady            bool
	readyState         string
	activeDefaultModel string
	metrics            *utils.APIMetrics
}

// LLMCache keeps completions keyed by an md5 of the request.
type LLMCache struct {
	cache      map[string]*CacheEntry
	mutex      sync.RWMutex
	expiration time.Duration
}

type CacheEntry struct {
	Response  *llm.CompletionResponse
	CreatedAt time.Time
}

// LLMStatus is reported by GET /api/llm/status.
type LLMStatus struct {
	Ready        bool   `json:"ready"`
	State        string `json:"state"`
	Provider     string `json:"provider"`
	DefaultModel string `json:"default_model"`
	CacheEntries int    `json:"cache_entries"`
}

// NewLLMService builds the service from the current config. A missing key or a
// failing provider yields a service that is not ready rather than an error.
func NewLLMService() (*LLMService, error) {
	service := createBaseLLMService()

	cfg := config.GetCurrentConfig()
	if cfg.LLMProvider == "" || cfg.LLMConfig["api_key"] == "" {
		service.readyState = "API key not configured"
		return service, nil
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		service.readyState = fmt.Sprintf("Initialization failed: %v", err)
		return service, nil
	}

	service.provider = provider
	service.providerName = cfg.LLMProvider
	service.activeDefaultModel = cfg.LLMConfig["default_model"]
	service.isReady = true
	service.readyState = "Ready"
	return service, nil
}

// NewEmptyLLMService returns a standby service used when construction fails.
func NewEmptyLLMService() *LLMService {
	service := createBaseLLMService()
	service.providerName = "empty"
	service.readyState = "Standby mode, configure an API key in settings"
	return service
}

// NewLLMServiceWithProvider binds an already initialized provider.
func NewLLMServiceWithProvider(name string, provider llm.Provider, defaultModel string) *LLMService {
	service := createBaseLLMService()
	service.provider = provider
	service.providerName = name
	service.activeDefaultModel = defaultModel
	service.isReady = provider != nil
	if service.isReady {
		service.readyState = "Ready"
	}
	return service
}

func createBaseLLMService() *LLMService {
	return &LLMService{
		readyState: "Uninitialized",
		cache:      newLLMCache(defaultCacheExpiration),
		metrics:    utils.NewAPIMetrics(),
	}
}

func newLLMCache(expiration time.Duration) *LLMCache {
	return &LLMCache{
		cache:      make(map[string]*CacheEntry),
		expiration: expiration,
	}
}

func (s *LLMService) IsReady() bool {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.provider != nil && s.isReady
}

func (s *LLMService) GetReadyState() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.readyState
}

// Status snapshots the provider state for the API.
func (s *LLMService) Status() LLMStatus {
	s.providerMutex.RLock()
	status := LLMStatus{
		Ready:        s.provider != nil && s.isReady,
		State:        s.readyState,
		Provider:     s.providerName,
		DefaultModel: s.activeDefaultModel,
	}
	cache := s.cache
	s.providerMutex.RUnlock()

	cache.mutex.RLock()
	status.CacheEntries = len(cache.cache)
	cache.mutex.RUnlock()
	return status
}

// UpdateProvider swaps the provider and clears the cache.
func (s *LLMService) UpdateProvider(providerName string, cfg map[string]string) error {
	provider, err := llm.GetProvider(providerName, cfg)
	if err != nil {
		s.providerMutex.Lock()
		s.isReady = false
		s.readyState = fmt.Sprintf("Configuration failed: %v", err)
		s.providerMutex.Unlock()
		return apperrors.NewValidationError("invalid LLM configuration", err)
	}

	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()

	s.provider = provider
	s.providerName = providerName
	s.activeDefaultModel = cfg["default_model"]
	s.isReady = true
	s.readyState = "Ready"
	s.cache = newLLMCache(defaultCacheExpiration)
	return nil
}

func (s *LLMService) GetProviderName() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.providerName
}

// GenerateText sends one system+user prompt pair to the provider. Identical
// requests within the cache window are served from memory.
func (s *LLMService) GenerateText(ctx context.Context, systemPrompt, prompt string) (*llm.CompletionResponse, error) {
	s.providerMutex.RLock()
	provider, providerName, model, cache := s.provider, s.providerName, s.activeDefaultModel, s.cache
	ready, state := s.isReady, s.readyState
	s.providerMutex.RUnlock()

	if !ready || provider == nil {
		return nil, apperrors.NewLLMUnavailableError("LLM service not ready: "+state, nil)
	}

	key := generateCacheKey(prompt, systemPrompt, model, providerName)
	if cached, ok := cache.get(key); ok {
		utils.GetLogger().Debug("LLM cache hit", map[string]interface{}{"cache_key_prefix": key[:8]})
		return cached, nil
	}

	start := time.Now()
	resp, err := provider.CompleteText(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
		Model:        model,
		Temperature:  0.7,
	})
	if err != nil {
		s.metrics.RecordError("llm_request", "llm_service")
		return nil, apperrors.NewLLMUnavailableError("LLM request failed", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, apperrors.NewLLMUnavailableError("LLM returned an empty answer", nil)
	}

	s.metrics.RecordLLMRequest(providerName, resp.ModelName, resp.TokensUsed, time.Since(start))
	cache.put(key, resp)
	return resp, nil
}

func generateCacheKey(prompt, systemPrompt, model, providerName string) string {
	hashInput := fmt.Sprintf("%s:::%s:::%s:::%s", prompt, systemPrompt, model, providerName)
	return fmt.Sprintf("%x", md5.Sum([]byte(hashInput)))
}

func (c *LLMCache) get(key string) (*llm.CompletionResponse, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[key]
	if !exists || time.Since(entry.CreatedAt) > c.expiration {
		return nil, false
	}
	return entry.Response, true
}

func (c *LLMCache) put(key string, response *llm.CompletionResponse) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = &CacheEntry{Response: response, CreatedAt: time.Now()}
	if len(c.cache) > maxCacheEntries {
		c.cleanupOldest(cacheEvictBatch)
	}
}

// cleanupOldest drops the count oldest entries. Caller holds the write lock.
func (c *LLMCache) cleanupOldest(count int) {
	type keyAge struct {
		key string
		age time.Time
	}

	entries := make([]keyAge, 0, len(c.cache))
	for k, v := range c.cache {
		entries = append(entries, keyAge{k, v.CreatedAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].age.Before(entries[j].age)
	})

	for i := 0; i < min(count, len(entries)); i++ {
		delete(c.cache, entries[i].key)
	}
}
