// internal/models/script.go
package models

import (
	"fmt"
	"strings"
)

// ScriptFormat identifies which renderer template a script targets.
type ScriptFormat string

const (
	FormatCarousel   ScriptFormat = "carousel"
	FormatStories10x ScriptFormat = "stories10x"
	FormatGPSC       ScriptFormat = "gpsc"
)

// ParseScriptFormat accepts the canonical names plus a few aliases used by the UI.
func ParseScriptFormat(s string) (ScriptFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "carousel", "carrossel", "instagram":
		return FormatCarousel, nil
	case "stories10x", "stories", "stories-10x", "stories_10x":
		return FormatStories10x, nil
	case "gpsc", "video", "reels", "shorts":
		return FormatGPSC, nil
	}
	return "", fmt.Errorf("unknown script format %q", s)
}

// TemporalBlock is a `[start-end s] label: content` section of a video script.
// An empty Time means the script carried no temporal structure.
type TemporalBlock struct {
	Time    string `json:"time"`
	Label   string `json:"label,omitempty"`
	Content string `json:"content"`
}

// Bucket is one of the four GPSC narrative sections.
type Bucket int

const (
	BucketHook Bucket = iota
	BucketProblem
	BucketSolution
	BucketCTA
)

// Buckets lists every bucket in the fixed Hook -> Problem -> Solution -> CTA order.
var Buckets = []Bucket{BucketHook, BucketProblem, BucketSolution, BucketCTA}

func (b Bucket) String() string {
	switch b {
	case BucketHook:
		return "Gancho"
	case BucketProblem:
		return "Problema"
	case BucketSolution:
		return "Solução"
	case BucketCTA:
		return "CTA"
	}
	return "Desconhecido"
}

// GPSCDocument always carries all four buckets; an absent section is "".
type GPSCDocument struct {
	Hook     string `json:"Gancho" yaml:"gancho"`
	Problem  string `json:"Problema" yaml:"problema"`
	Solution string `json:"Solução" yaml:"solucao"`
	CTA      string `json:"CTA" yaml:"cta"`
}

func (d GPSCDocument) Get(b Bucket) string {
	switch b {
	case BucketHook:
		return d.Hook
	case BucketProblem:
		return d.Problem
	case BucketSolution:
		return d.Solution
	case BucketCTA:
		return d.CTA
	}
	return ""
}

func (d *GPSCDocument) Set(b Bucket, s string) {
	switch b {
	case BucketHook:
		d.Hook = s
	case BucketProblem:
		d.Problem = s
	case BucketSolution:
		d.Solution = s
	case BucketCTA:
		d.CTA = s
	}
}

// CarouselSlide is one of the exactly five slides of an Instagram carousel.
type CarouselSlide struct {
	Index       int    `json:"index" yaml:"index"`
	Title       string `json:"title" yaml:"title"`
	Body        string `json:"body" yaml:"body"`
	ImagePrompt string `json:"image_prompt" yaml:"image_prompt"`
}

// StoryRole is the narrative role of a Stories 10x beat.
type StoryRole string

const (
	RoleHook    StoryRole = "hook"
	RoleMistake StoryRole = "mistake"
	RoleTurn    StoryRole = "turn"
	RoleCTA     StoryRole = "cta"
	RoleBonus   StoryRole = "bonus"
)

// CanonicalRoles are the four mandatory beats, in index order.
var CanonicalRoles = []StoryRole{RoleHook, RoleMistake, RoleTurn, RoleCTA}

// Label is the Portuguese name shown in synthesized titles.
func (r StoryRole) Label() string {
	switch r {
	case RoleHook:
		return "Gancho"
	case RoleMistake:
		return "Erro"
	case RoleTurn:
		return "Virada"
	case RoleCTA:
		return "CTA"
	case RoleBonus:
		return "Bônus"
	}
	return string(r)
}

// IsCanonical reports whether the role counts toward the four mandatory beats.
func (r StoryRole) IsCanonical() bool {
	return r == RoleHook || r == RoleMistake || r == RoleTurn || r == RoleCTA
}

// EngagementDevice is an interaction prompt detected inside a story beat.
type EngagementDevice string

const (
	DeviceNone        EngagementDevice = ""
	DeviceFire        EngagementDevice = "foguinho"
	DevicePoll        EngagementDevice = "enquete"
	DeviceQuestion    EngagementDevice = "pergunta_direta"
	DeviceShare       EngagementDevice = "compartilhamento"
	DeviceReciprocity EngagementDevice = "reciprocidade"
)

// StoryBeat is one slide of a Stories 10x sequence.
type StoryBeat struct {
	Index            int              `json:"index" yaml:"index"`
	Title            string           `json:"title" yaml:"title"`
	Content          string           `json:"content" yaml:"content"`
	DurationSeconds  int              `json:"duration_seconds" yaml:"duration_seconds"`
	Role             StoryRole        `json:"role" yaml:"role"`
	EngagementDevice EngagementDevice `json:"engagement_device,omitempty" yaml:"engagement_device,omitempty"`
	// Placeholder marks beats whose content is the fixed fallback sentence.
	Placeholder bool `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// ValidationResult is advisory: it feeds UI warning banners and never blocks rendering.
type ValidationResult struct {
	IsValid bool     `json:"is_valid" yaml:"is_valid"`
	Score   int      `json:"score" yaml:"score"`
	Issues  []string `json:"issues" yaml:"issues"`
}

// ScriptDocument is the structured output of one parse, tagged by format.
// Exactly one of Slides, Beats or GPSC is set.
type ScriptDocument struct {
	Format ScriptFormat    `json:"format" yaml:"format"`
	Slides []CarouselSlide `json:"slides,omitempty" yaml:"slides,omitempty"`
	Beats  []StoryBeat     `json:"beats,omitempty" yaml:"beats,omitempty"`
	GPSC   *GPSCDocument   `json:"gpsc,omitempty" yaml:"gpsc,omitempty"`
}
