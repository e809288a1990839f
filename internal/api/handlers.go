// internal/api/handlers.go
package api

import (
	"net/http"
	"strings"

	"github.com/clinicflow/roteiros/internal/config"
	"github.com/clinicflow/roteiros/internal/llm"
	"github.com/clinicflow/roteiros/internal/models"
	"github.com/clinicflow/roteiros/internal/services"
	"github.com/clinicflow/roteiros/internal/utils"
	"github.com/gin-gonic/gin"
)

// maxBatchItems bounds a single batch parse request.
const maxBatchItems = 20

// Handler serves the script API.
type Handler struct {
	Scripts *services.ScriptService
	Exports *services.ExportService
	LLM     *services.LLMService
	Metrics *utils.MetricsCollector

	// persistLLMConfig saves provider settings; config.UpdateLLMConfig by default.
	persistLLMConfig func(provider string, cfg map[string]string) error
	rh               *ResponseHelper
}

func NewHandler(scripts *services.ScriptService, exports *services.ExportService, llmService *services.LLMService, metrics *utils.MetricsCollector) *Handler {
	return &Handler{
		Scripts:          scripts,
		Exports:          exports,
		LLM:              llmService,
		Metrics:          metrics,
		persistLLMConfig: config.UpdateLLMConfig,
		rh:               NewResponseHelper(),
	}
}

type parseRequest struct {
	Format  string `json:"format" binding:"required"`
	Content string `json:"content"`
}

type batchParseRequest struct {
	Items []models.ParseRequest `json:"items" binding:"required"`
}

type validateRequest struct {
	Format string                 `json:"format" binding:"required"`
	Slides []models.CarouselSlide `json:"slides"`
	Beats  []models.StoryBeat     `json:"beats"`
	GPSC   *models.GPSCDocument   `json:"gpsc"`
}

type generateRequest struct {
	Format   string          `json:"format" binding:"required"`
	Briefing models.Briefing `json:"briefing"`
}

type llmConfigRequest struct {
	Provider string            `json:"provider" binding:"required"`
	Config   map[string]string `json:"config"`
}

type providerInfo struct {
	Name   string   `json:"name"`
	Models []string `json:"models"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"llm_ready": h.LLM.IsReady(),
	})
}

// ParseScript structures one raw script.
func (h *Handler) ParseScript(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rh.bindError(c, err)
		return
	}

	parsed, err := h.Scripts.Parse(req.Format, req.Content)
	if err != nil {
		h.rh.HandleError(c, err)
		return
	}
	h.rh.Success(c, parsed)
}

func (h *Handler) ParseBatch(c *gin.Context) {
	var req batchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rh.bindError(c, err)
		return
	}
	if len(req.Items) == 0 || len(req.Items) > maxBatchItems {
		h.rh.BadRequest(c, "items must hold between 1 and 20 scripts")
		return
	}

	results, err := h.Scripts.ParseBatch(c.Request.Context(), req.Items)
	if err != nil {
		h.rh.HandleError(c, err)
		return
	}
	h.rh.Success(c, results)
}

// ValidateScript re-scores a document edited in the UI.
func (h *Handler) ValidateScript(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rh.bindError(c, err)
		return
	}
	format, err := models.ParseScriptFormat(req.Format)
	if err != nil {
		h.rh.BadRequest(c, "invalid format", err.Error())
		return
	}

	doc := models.ScriptDocument{Format: format, Slides: req.Slides, Beats: req.Beats, GPSC: req.GPSC}
	if format == models.FormatGPSC && doc.GPSC == nil {
		doc.GPSC = &models.GPSCDocument{}
	}
	h.rh.Success(c, h.Scripts.Validate(doc))
}

func (h *Handler) GenerateScript(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rh.bindError(c, err)
		return
	}

	parsed, err := h.Scripts.Generate(c.Request.Context(), req.Format, req.Briefing)
	if err != nil {
		h.rh.HandleError(c, err)
		return
	}
	h.rh.Success(c, parsed)
}

func (h *Handler) SaveScript(c *gin.Context) {
	var req models.SaveProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rh.bindError(c, err)
		return
	}

	project, err := h.Scripts.SaveProject(req)
	if err != nil {
		h.rh.HandleError(c, err)
		return
	}
	h.rh.Created(c, project, "script saved")
}

func (h *Handler) ListScripts(c *gin.Context) {
	projects, err := h.Scripts.ListProjects()
	if err != nil {
		h.rh.HandleError(c, err)
		return
	}
	h.rh.Success(c, projects)
}

func (h *Handler) GetScript(c *gin.Context) {
	project, err := h.Scripts.GetProject(c.Param("id"))
	if err != nil {
		h.rh.HandleError(c, err)
		return
	}
	h.rh.Success(c, project)
}

func (h *Handler) DeleteScript(c *gin.Context) {
	if err := h.Scripts.DeleteProject(c.Param("id")); err != nil {
		h.rh.HandleError(c, err)
		return
	}
	h.rh.Success(c, gin.H{"id": c.Param("id")}, "script deleted")
}

// ExportScript renders a saved script as a downloadable file.
func (h *Handler) ExportScript(c *gin.Context) {
	result, err := h.Exports.Export(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "markdown"))
	if err != nil {
		h.rh.HandleError(c, err)
		return
	}
	h.rh.ExportResponse(c, result)
}

func (h *Handler) GetLLMStatus(c *gin.Context) {
	cfg := config.GetCurrentConfig()
	h.rh.Success(c, gin.H{
		"status":  h.LLM.Status(),
		"api_key": utils.MaskSecret(cfg.LLMConfig["api_key"]),
	})
}

// UpdateLLMConfig switches provider. An omitted api_key keeps the stored one
// when the provider does not change.
func (h *Handler) UpdateLLMConfig(c *gin.Context) {
	var req llmConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rh.bindError(c, err)
		return
	}

	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	cfg := make(map[string]string, len(req.Config)+1)
	for k, v := range req.Config {
		cfg[k] = v
	}
	current := config.GetCurrentConfig()
	if cfg["api_key"] == "" && current.LLMProvider == provider {
		cfg["api_key"] = current.LLMConfig["api_key"]
	}

	if err := h.LLM.UpdateProvider(provider, cfg); err != nil {
		h.rh.Error(c, http.StatusBadRequest, ErrorLLMConfigInvalid, "invalid LLM configuration", err.Error())
		return
	}
	if err := h.persistLLMConfig(provider, cfg); err != nil {
		utils.GetLogger().Error("failed to persist LLM config", map[string]interface{}{"error": err})
		h.rh.Error(c, http.StatusInternalServerError, ErrorStorageFailed, "provider updated but settings could not be saved")
		return
	}

	utils.GetLogger().Info("LLM provider updated", map[string]interface{}{"provider": provider})
	h.rh.Success(c, h.LLM.Status(), "LLM configuration updated")
}

func (h *Handler) ListLLMProviders(c *gin.Context) {
	names := llm.ListProviders()
	providers := make([]providerInfo, 0, len(names))
	for _, name := range names {
		providers = append(providers, providerInfo{Name: name, Models: llm.GetSupportedModelsForProvider(name)})
	}
	h.rh.Success(c, providers)
}

func (h *Handler) GetMetrics(c *gin.Context) {
	h.rh.Success(c, h.Metrics.GetMetrics())
}
