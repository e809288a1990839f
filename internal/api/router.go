// internal/api/router.go
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicflow/roteiros/internal/config"
	"github.com/clinicflow/roteiros/internal/di"
	"github.com/clinicflow/roteiros/internal/services"
	"github.com/clinicflow/roteiros/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterDeps are the services the HTTP layer needs.
type RouterDeps struct {
	Scripts     *services.ScriptService
	Exports     *services.ExportService
	LLM         *services.LLMService
	Metrics     *utils.APIMetrics
	Preview     *PreviewHub
	RateLimiter *RateLimiter
	Config      *config.AppConfig

	// PersistLLMConfig overrides config.UpdateLLMConfig when set.
	PersistLLMConfig func(provider string, cfg map[string]string) error
}

// SetupRouter resolves the services registered in the DI container and builds the
// engine. Background cleanup stops when ctx is done.
func SetupRouter(ctx context.Context) (*gin.Engine, error) {
	container := di.GetContainer()

	scripts, err := di.Resolve[*services.ScriptService](container, di.ServiceScript)
	if err != nil {
		return nil, fmt.Errorf("script service not initialized: %w", err)
	}
	exports, err := di.Resolve[*services.ExportService](container, di.ServiceExport)
	if err != nil {
		return nil, fmt.Errorf("export service not initialized: %w", err)
	}
	llmService, err := di.Resolve[*services.LLMService](container, di.ServiceLLM)
	if err != nil {
		return nil, fmt.Errorf("LLM service not initialized: %w", err)
	}
	metrics, err := di.Resolve[*utils.APIMetrics](container, di.ServiceMetrics)
	if err != nil {
		return nil, fmt.Errorf("metrics not initialized: %w", err)
	}

	cfg := config.GetCurrentConfig()
	preview, err := di.Resolve[*PreviewHub](container, di.ServicePreview)
	if err != nil {
		preview = NewPreviewHub(scripts, metrics.Collector(), cfg.MaxScriptBytes)
		container.Register(di.ServicePreview, preview)
	}

	limiter := NewRateLimiter()
	limiter.StartCleanup(ctx, time.Hour)

	return NewRouter(RouterDeps{
		Scripts:     scripts,
		Exports:     exports,
		LLM:         llmService,
		Metrics:     metrics,
		Preview:     preview,
		RateLimiter: limiter,
		Config:      cfg,
	}), nil
}

// NewRouter wires middleware and routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := NewHandler(deps.Scripts, deps.Exports, deps.LLM, deps.Metrics.Collector())
	if deps.PersistLLMConfig != nil {
		handler.persistLLMConfig = deps.PersistLLMConfig
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(utils.GetLogger(), deps.Metrics))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader, "Content-Disposition", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	scriptBody := BodySizeLimit(2*cfg.MaxScriptBytes + 16*1024)
	batchBody := BodySizeLimit(int64(maxBatchItems)*(2*cfg.MaxScriptBytes) + 16*1024)
	limited := RateLimitByIP(deps.RateLimiter, cfg.RateLimitPerMinute, time.Minute)

	r.GET("/health", handler.Health)
	r.GET("/ws/preview", deps.Preview.ServeWS)

	api := r.Group("/api")
	{
		scripts := api.Group("/scripts")
		{
			scripts.POST("/parse", limited, scriptBody, handler.ParseScript)
			scripts.POST("/parse/batch", limited, batchBody, handler.ParseBatch)
			scripts.POST("/validate", scriptBody, handler.ValidateScript)
			scripts.POST("/generate", limited, scriptBody, handler.GenerateScript)

			scripts.POST("", scriptBody, handler.SaveScript)
			scripts.GET("", handler.ListScripts)
			scripts.GET("/:id", handler.GetScript)
			scripts.DELETE("/:id", handler.DeleteScript)
			scripts.GET("/:id/export", handler.ExportScript)
		}

		llmGroup := api.Group("/llm")
		{
			llmGroup.GET("/status", handler.GetLLMStatus)
			llmGroup.PUT("/config", scriptBody, handler.UpdateLLMConfig)
			llmGroup.GET("/providers", handler.ListLLMProviders)
		}

		api.GET("/metrics", handler.GetMetrics)
	}

	return r
}
