// internal/parser/gpsc.go
package parser

import (
	"strings"

	"github.com/clinicflow/roteiros/internal/models"
)

// Strategy names which GPSC segmentation path produced a document.
type Strategy string

const (
	StrategyMarkers    Strategy = "markers"
	StrategyTemporal   Strategy = "temporal"
	StrategyParagraphs Strategy = "paragraphs"
	StrategyPositional Strategy = "positional"
)

// minBucketRunes is the length under which a bucket counts as unfilled.
const minBucketRunes = 20

// SegmentOrFallback structures a video script into the four GPSC buckets. All four
// buckets are always present, possibly empty.
func SegmentOrFallback(raw string) models.GPSCDocument {
	doc, _ := SegmentOrFallbackWithStrategy(raw)
	return doc
}

// SegmentOrFallbackWithStrategy is SegmentOrFallback that also reports the winning path.
func SegmentOrFallbackWithStrategy(raw string) (models.GPSCDocument, Strategy) {
	text := Unwrap(raw).Text()
	structural := Normalize(text, ModeStructural)
	reading := Normalize(text, ModeReading)

	doc, strategy, ok := segmentStructured(structural)
	if !ok {
		parts := SplitIntoParts(reading, len(models.Buckets))
		for i, b := range models.Buckets {
			doc.Set(b, parts[i])
		}
		return Rebalance(doc), StrategyPositional
	}

	fillDeficientBuckets(&doc, reading)
	return Rebalance(doc), strategy
}

// segmentStructured tries the structure-aware strategies in priority order.
func segmentStructured(text string) (models.GPSCDocument, Strategy, bool) {
	if text == "" {
		return models.GPSCDocument{}, "", false
	}
	if doc, found := SegmentByExplicitMarkers(text); found {
		return doc, StrategyMarkers, true
	}
	if blocks := ExtractTemporalBlocks(text); hasTemporalStructure(blocks) {
		return bucketsFromTemporal(blocks), StrategyTemporal, true
	}
	if paras := paragraphs(text); len(paras) >= 2 {
		chunks := make(map[models.Bucket][]string, len(models.Buckets))
		for _, p := range paras {
			b := Classify(p)
			chunks[b] = append(chunks[b], p)
		}
		return joinChunks(chunks), StrategyParagraphs, true
	}
	return models.GPSCDocument{}, "", false
}

func bucketsFromTemporal(blocks []models.TemporalBlock) models.GPSCDocument {
	chunks := make(map[models.Bucket][]string, len(models.Buckets))
	for _, blk := range blocks {
		if blk.Content == "" {
			continue
		}
		b, ok := bucketForLabel(blk.Label)
		if !ok {
			b = Classify(blk.Content)
		}
		chunks[b] = append(chunks[b], blk.Content)
	}
	return joinChunks(chunks)
}

func joinChunks(chunks map[models.Bucket][]string) models.GPSCDocument {
	var doc models.GPSCDocument
	for _, b := range models.Buckets {
		doc.Set(b, strings.Join(chunks[b], "\n\n"))
	}
	return doc
}

// fillDeficientBuckets overwrites every short bucket with the matching slice of a
// positional split of the whole text. Filled buckets are left alone.
func fillDeficientBuckets(doc *models.GPSCDocument, text string) {
	var parts []string
	for i, b := range models.Buckets {
		if runeLen(strings.TrimSpace(doc.Get(b))) >= minBucketRunes {
			continue
		}
		if parts == nil {
			parts = SplitIntoParts(text, len(models.Buckets))
		}
		if parts[i] != "" {
			doc.Set(b, parts[i])
		}
	}
}
