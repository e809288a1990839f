// internal/services/export_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/clinicflow/roteiros/internal/errors"
	"github.com/clinicflow/roteiros/internal/models"
	"github.com/clinicflow/roteiros/internal/storage"
	"github.com/clinicflow/roteiros/internal/utils"
	"gopkg.in/yaml.v3"
)

const exportsDir = "exports"

// ExportFormats lists the supported export formats with their file extensions.
var ExportFormats = map[string]string{
	"json":     ".json",
	"markdown": ".md",
	"txt":      ".txt",
	"yaml":     ".yaml",
}

// ExportService renders saved scripts into files under exports/.
type ExportService struct {
	scripts *ScriptService
	storage *storage.FileStorage
	metrics *utils.APIMetrics
	now     func() time.Time
}

func NewExportService(scripts *ScriptService, fs *storage.FileStorage) *ExportService {
	return &ExportService{
		scripts: scripts,
		storage: fs,
		metrics: utils.NewAPIMetrics(),
		now:     time.Now,
	}
}

// Export renders project projectID in format and writes the file.
func (s *ExportService) Export(ctx context.Context, projectID, format string) (*models.ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "md" {
		format = "markdown"
	}
	ext, ok := ExportFormats[format]
	if !ok {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("unsupported export format %q, use json, markdown, txt or yaml", format), nil)
	}

	var result *models.ExportResult
	err := s.scripts.Locks().WithReadLock(projectID, func() error {
		project, err := s.scripts.GetProject(projectID)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return apperrors.NewTimeoutError("export cancelled", err)
		}

		content, err := s.render(project, format)
		if err != nil {
			return apperrors.NewProcessingError("failed to render export", err)
		}

		result = &models.ExportResult{
			ProjectID:   project.ID,
			Title:       project.Title,
			Format:      format,
			ScriptType:  project.Format,
			Content:     content,
			GeneratedAt: s.now().UTC(),
		}

		filename := fmt.Sprintf("%s_%s%s", project.ID, result.GeneratedAt.Format("20060102_150405"), ext)
		if err := s.storage.SaveTextFile(exportsDir, filename, []byte(content)); err != nil {
			return apperrors.NewStorageError("failed to write export", err)
		}
		path, err := s.storage.Path(exportsDir, filename)
		if err != nil {
			return apperrors.NewStorageError("failed to resolve export path", err)
		}
		result.FilePath = path
		result.FileSize = int64(len(content))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordExport(format, result.FileSize)
	return result, nil
}

func (s *ExportService) render(project *models.ScriptProject, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(project, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "yaml":
		data, err := yaml.Marshal(project)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "markdown":
		return renderMarkdown(project), nil
	default:
		return renderText(project), nil
	}
}

func renderMarkdown(p *models.ScriptProject) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "**Formato:** %s  \n", formatLabel(p.Format))
	fmt.Fprintf(&b, "**Pontuação:** %d/100\n\n", p.Validation.Score)

	doc := p.Document
	switch doc.Format {
	case models.FormatCarousel:
		for _, slide := range doc.Slides {
			fmt.Fprintf(&b, "## Slide %d: %s\n\n%s\n\n> 📷 %s\n\n", slide.Index, slide.Title, slide.Body, slide.ImagePrompt)
		}
	case models.FormatStories10x:
		for _, beat := range doc.Beats {
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", beat.Title, beat.Content)
			fmt.Fprintf(&b, "- Duração: %ds\n", beat.DurationSeconds)
			if beat.EngagementDevice != models.DeviceNone {
				fmt.Fprintf(&b, "- Engajamento: %s\n", beat.EngagementDevice)
			}
			b.WriteString("\n")
		}
	case models.FormatGPSC:
		if doc.GPSC != nil {
			for _, bucket := range models.Buckets {
				fmt.Fprintf(&b, "## %s\n\n%s\n\n", bucket, doc.GPSC.Get(bucket))
			}
		}
	}

	if len(p.Validation.Issues) > 0 {
		b.WriteString("## Pontos de atenção\n\n")
		for _, issue := range p.Validation.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderText produces copy-ready text without markup.
func renderText(p *models.ScriptProject) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", p.Title, strings.Repeat("=", len([]rune(p.Title))))

	doc := p.Document
	switch doc.Format {
	case models.FormatCarousel:
		for _, slide := range doc.Slides {
			fmt.Fprintf(&b, "SLIDE %d - %s\n%s\nImagem: %s\n\n", slide.Index, slide.Title, slide.Body, slide.ImagePrompt)
		}
	case models.FormatStories10x:
		for _, beat := range doc.Beats {
			fmt.Fprintf(&b, "%s (%ds)\n%s\n\n", beat.Title, beat.DurationSeconds, beat.Content)
		}
	case models.FormatGPSC:
		if doc.GPSC != nil {
			for _, bucket := range models.Buckets {
				fmt.Fprintf(&b, "%s:\n%s\n\n", strings.ToUpper(bucket.String()), doc.GPSC.Get(bucket))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func formatLabel(f models.ScriptFormat) string {
	switch f {
	case models.FormatCarousel:
		return "Carrossel"
	case models.FormatStories10x:
		return "Stories 10x"
	case models.FormatGPSC:
		return "Vídeo GPSC"
	}
	return string(f)
}
