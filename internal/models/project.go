// internal/models/project.go
package models

import (
	"time"
)

// Briefing holds the answers to the guided questions shown before generation.
type Briefing struct {
	ClinicName string `json:"clinic_name" yaml:"clinic_name"`
	Procedure  string `json:"procedure" yaml:"procedure"`
	Equipment  string `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Audience   string `json:"audience,omitempty" yaml:"audience,omitempty"`
	Objective  string `json:"objective,omitempty" yaml:"objective,omitempty"`
	Tone       string `json:"tone,omitempty" yaml:"tone,omitempty"`
	Extra      string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// ParsedScript is what the engine hands to a renderer: the structured document,
// its validation and which strategy produced it.
type ParsedScript struct {
	Format     ScriptFormat     `json:"format" yaml:"format"`
	Raw        string           `json:"raw" yaml:"raw"`
	Document   ScriptDocument   `json:"document" yaml:"document"`
	Validation ValidationResult `json:"validation" yaml:"validation"`
	Strategy   string           `json:"strategy" yaml:"strategy"`
	ParsedAt   time.Time        `json:"parsed_at" yaml:"parsed_at"`
}

// ScriptProject is an approved script persisted for later copy/export.
type ScriptProject struct {
	ID         string           `json:"id" yaml:"id"`
	Title      string           `json:"title" yaml:"title"`
	Format     ScriptFormat     `json:"format" yaml:"format"`
	Raw        string           `json:"raw,omitempty" yaml:"raw,omitempty"`
	Briefing   *Briefing        `json:"briefing,omitempty" yaml:"briefing,omitempty"`
	Document   ScriptDocument   `json:"document" yaml:"document"`
	Validation ValidationResult `json:"validation" yaml:"validation"`
	CreatedAt  time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" yaml:"updated_at"`
}

// ScriptProjectMeta is a lightweight view for listing saved scripts.
type ScriptProjectMeta struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Format    ScriptFormat `json:"format"`
	Score     int          `json:"score"`
	CreatedAt time.Time    `json:"created_at"`
}

// ParseRequest is one item of a batch parse.
type ParseRequest struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

// SaveProjectRequest stores an approved script. When Document is nil the raw text
// is parsed again.
type SaveProjectRequest struct {
	Title    string          `json:"title"`
	Format   string          `json:"format"`
	Raw      string          `json:"raw"`
	Briefing *Briefing       `json:"briefing,omitempty"`
	Document *ScriptDocument `json:"document,omitempty"`
}
