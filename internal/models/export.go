// internal/models/export.go
package models

import (
	"time"
)

// ExportResult is a rendered export of a saved script.
type ExportResult struct {
	ProjectID   string       `json:"project_id"`
	Title       string       `json:"title"`
	Format      string       `json:"format"`
	ScriptType  ScriptFormat `json:"script_type"`
	Content     string       `json:"content"`
	GeneratedAt time.Time    `json:"generated_at"`
	FilePath    string       `json:"file_path"`
	FileSize    int64        `json:"file_size"`
}
