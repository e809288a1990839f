// internal/parser/document.go

// Package parser turns the loosely structured scripts returned by the generative
// service into fixed-shape documents. Every function is pure and safe for concurrent use.
package parser

import (
	"github.com/clinicflow/roteiros/internal/models"
)

// ParseDocument runs the extractor for format and reports the strategy or tier that
// produced the result.
func ParseDocument(format models.ScriptFormat, raw string) (models.ScriptDocument, string) {
	doc := models.ScriptDocument{Format: format}
	switch format {
	case models.FormatCarousel:
		slides, strategy := ParseCarouselSlidesWithStrategy(raw)
		doc.Slides = slides
		return doc, strategy
	case models.FormatStories10x:
		beats, tier := ParseStories10xWithTier(raw)
		doc.Beats = beats
		return doc, string(tier)
	default:
		doc.Format = models.FormatGPSC
		gpsc, strategy := SegmentOrFallbackWithStrategy(raw)
		doc.GPSC = &gpsc
		return doc, string(strategy)
	}
}
