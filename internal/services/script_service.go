// internal/services/script_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/clinicflow/roteiros/internal/errors"
	"github.com/clinicflow/roteiros/internal/models"
	"github.com/clinicflow/roteiros/internal/parser"
	"github.com/clinicflow/roteiros/internal/storage"
	"github.com/clinicflow/roteiros/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	scriptsDir     = "scripts"
	projectLockTTL = 30 * time.Minute
)

// ScriptServiceOptions carries the limits read from config.
type ScriptServiceOptions struct {
	MaxScriptBytes   int64
	BatchConcurrency int
}

// ScriptService runs the structuring engine and keeps approved scripts.
type ScriptService struct {
	storage *storage.FileStorage
	llm     *LLMService
	metrics *utils.APIMetrics
	logger  *utils.Logger
	locks   *LockManager
	opts    ScriptServiceOptions
	now     func() time.Time
}

func NewScriptService(fs *storage.FileStorage, llmService *LLMService, opts ScriptServiceOptions) *ScriptService {
	if opts.MaxScriptBytes <= 0 {
		opts.MaxScriptBytes = 64 * 1024
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 4
	}
	return &ScriptService{
		storage: fs,
		llm:     llmService,
		metrics: utils.NewAPIMetrics(),
		logger:  utils.GetLogger(),
		locks:   NewLockManager(projectLockTTL),
		opts:    opts,
		now:     time.Now,
	}
}

// Parse structures raw text for the given format and validates the result.
func (s *ScriptService) Parse(format, raw string) (*models.ParsedScript, error) {
	scriptFormat, err := models.ParseScriptFormat(format)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid format", err)
	}
	if int64(len(raw)) > s.opts.MaxScriptBytes {
		return nil, apperrors.NewTooLargeError(
			fmt.Sprintf("script exceeds %d bytes", s.opts.MaxScriptBytes), nil)
	}

	start := time.Now()
	doc, strategy := parser.ParseDocument(scriptFormat, raw)
	validation := parser.ValidateDocument(doc)
	s.metrics.RecordParse(string(scriptFormat), strategy, validation.IsValid, validation.Score, time.Since(start))

	s.logger.Debug("script parsed", map[string]interface{}{
		"format":   scriptFormat,
		"strategy": strategy,
		"score":    validation.Score,
		"bytes":    len(raw),
	})

	return &models.ParsedScript{
		Format:     scriptFormat,
		Raw:        raw,
		Document:   doc,
		Validation: validation,
		Strategy:   strategy,
		ParsedAt:   s.now().UTC(),
	}, nil
}

// ParseBatch parses items concurrently. Results keep the input order; the first
// invalid item fails the batch.
func (s *ScriptService) ParseBatch(ctx context.Context, items []models.ParseRequest) ([]*models.ParsedScript, error) {
	results := make([]*models.ParsedScript, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BatchConcurrency)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parsed, err := s.Parse(item.Format, item.Content)
			if err != nil {
				return apperrors.WrapError(err, fmt.Sprintf("item %d", i), apperrors.ErrorTypeValidation)
			}
			results[i] = parsed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Validate scores a document the user edited by hand.
func (s *ScriptService) Validate(doc models.ScriptDocument) models.ValidationResult {
	return parser.ValidateDocument(doc)
}

// Generate asks the LLM for a script matching the briefing and parses the answer.
func (s *ScriptService) Generate(ctx context.Context, format string, briefing models.Briefing) (*models.ParsedScript, error) {
	scriptFormat, err := models.ParseScriptFormat(format)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid format", err)
	}
	if s.llm == nil || !s.llm.IsReady() {
		return nil, apperrors.NewLLMUnavailableError("LLM service not configured", nil)
	}

	system, prompt, err := BuildPrompt(scriptFormat, briefing)
	if err != nil {
		return nil, err
	}

	resp, err := s.llm.GenerateText(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("script generated", map[string]interface{}{
		"format":    scriptFormat,
		"procedure": briefing.Procedure,
		"tokens":    resp.TokensUsed,
	})
	return s.Parse(string(scriptFormat), resp.Text)
}

// SaveProject persists an approved script under scripts/<id>.json.
func (s *ScriptService) SaveProject(req models.SaveProjectRequest) (*models.ScriptProject, error) {
	var doc models.ScriptDocument
	if req.Document != nil {
		doc = *req.Document
		if doc.Format == "" && req.Format != "" {
			scriptFormat, err := models.ParseScriptFormat(req.Format)
			if err != nil {
				return nil, apperrors.NewValidationError("invalid format", err)
			}
			doc.Format = scriptFormat
		}
		if err := checkDocumentShape(doc); err != nil {
			return nil, err
		}
	} else {
		if strings.TrimSpace(req.Raw) == "" {
			return nil, apperrors.NewValidationError("either document or raw is required", nil)
		}
		parsed, err := s.Parse(req.Format, req.Raw)
		if err != nil {
			return nil, err
		}
		doc = parsed.Document
	}

	now := s.now().UTC()
	project := &models.ScriptProject{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(req.Title),
		Format:     doc.Format,
		Raw:        req.Raw,
		Briefing:   req.Briefing,
		Document:   doc,
		Validation: parser.ValidateDocument(doc),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if project.Title == "" {
		project.Title = defaultTitle(doc)
	}

	if err := s.storage.SaveJSONFile(scriptsDir, project.ID+".json", project); err != nil {
		return nil, apperrors.NewStorageError("failed to save script", err)
	}

	s.logger.Info("script saved", map[string]interface{}{
		"id":     project.ID,
		"format": project.Format,
		"score":  project.Validation.Score,
	})
	return project, nil
}

func (s *ScriptService) GetProject(id string) (*models.ScriptProject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFoundError("script not found", err)
	}

	var project models.ScriptProject
	if err := s.storage.LoadJSONFile(scriptsDir, id+".json", &project); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("script not found", err)
		}
		return nil, apperrors.NewStorageError("failed to load script", err)
	}
	return &project, nil
}

// ListProjects returns saved scripts, newest first. Unreadable files are skipped.
func (s *ScriptService) ListProjects() ([]models.ScriptProjectMeta, error) {
	files, err := s.storage.ListFiles(scriptsDir, ".json")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list scripts", err)
	}

	metas := make([]models.ScriptProjectMeta, 0, len(files))
	for _, f := range files {
		var project models.ScriptProject
		if err := s.storage.LoadJSONFile(scriptsDir, f.Name, &project); err != nil {
			s.logger.Warn("skipping unreadable script", map[string]interface{}{"file": f.Name, "error": err})
			continue
		}
		metas = append(metas, models.ScriptProjectMeta{
			ID:        project.ID,
			Title:     project.Title,
			Format:    project.Format,
			Score:     project.Validation.Score,
			CreatedAt: project.CreatedAt,
		})
	}
	return metas, nil
}

// DeleteProject removes the script and every export rendered from it.
func (s *ScriptService) DeleteProject(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFoundError("script not found", err)
	}

	return s.locks.WithLock(id, func() error {
		if err := s.storage.DeleteFile(scriptsDir, id+".json"); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.NewNotFoundError("script not found", err)
			}
			return apperrors.NewStorageError("failed to delete script", err)
		}

		removed := s.deleteExports(id)
		s.logger.Info("script deleted", map[string]interface{}{"id": id, "exports_removed": removed})
		return nil
	})
}

// Locks exposes the per-project locks so the export pipeline can share them.
func (s *ScriptService) Locks() *LockManager {
	return s.locks
}

// deleteExports removes exports/<id>_* files. Failures are logged, not returned.
func (s *ScriptService) deleteExports(id string) int {
	files, err := s.storage.ListFiles(exportsDir, "")
	if err != nil {
		s.logger.Warn("failed to list exports", map[string]interface{}{"id": id, "error": err})
		return 0
	}

	removed := 0
	for _, f := range files {
		if !strings.HasPrefix(f.Name, id+"_") {
			continue
		}
		if err := s.storage.DeleteFile(exportsDir, f.Name); err != nil {
			s.logger.Warn("failed to delete export", map[string]interface{}{"file": f.Name, "error": err})
			continue
		}
		removed++
	}
	return removed
}

// checkDocumentShape makes sure the part matching the format is present.
func checkDocumentShape(doc models.ScriptDocument) error {
	switch doc.Format {
	case models.FormatCarousel:
		if len(doc.Slides) == 0 {
			return apperrors.NewValidationError("carousel document has no slides", nil)
		}
	case models.FormatStories10x:
		if len(doc.Beats) == 0 {
			return apperrors.NewValidationError("stories document has no beats", nil)
		}
	case models.FormatGPSC:
		if doc.GPSC == nil {
			return apperrors.NewValidationError("gpsc document has no sections", nil)
		}
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown document format %q", doc.Format), nil)
	}
	return nil
}

// defaultTitle names a script after its opening line.
func defaultTitle(doc models.ScriptDocument) string {
	var opening string
	switch doc.Format {
	case models.FormatCarousel:
		if len(doc.Slides) > 0 {
			opening = doc.Slides[0].Title
		}
	case models.FormatStories10x:
		if len(doc.Beats) > 0 {
			opening = doc.Beats[0].Content
		}
	case models.FormatGPSC:
		if doc.GPSC != nil {
			opening = doc.GPSC.Hook
		}
	}
	opening = parser.CapWords(opening, 8)
	if opening == "" {
		return "Roteiro sem título"
	}
	return opening
}
