// internal/parser/temporal.go
package parser

import (
	"regexp"
	"strings"

	"github.com/clinicflow/roteiros/internal/models"
)

// `[0-3s] Gancho: content` up to the next bracket. The label is optional.
var temporalBlockRe = regexp.MustCompile(`\[\s*(\d{1,3}(?:[.,]\d+)?)\s*s?\s*[-–—]\s*(\d{1,3}(?:[.,]\d+)?)\s*s\s*\]\s*(?:([^:\[\n]{1,40}):)?\s*([^\[]*)`)

// ExtractTemporalBlocks returns the time-tagged sections of a video script in order
// of appearance. Without any tag it returns one block with an empty Time holding the
// whole text.
func ExtractTemporalBlocks(text string) []models.TemporalBlock {
	matches := temporalBlockRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []models.TemporalBlock{{Time: "", Content: text}}
	}

	blocks := make([]models.TemporalBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, models.TemporalBlock{
			Time:    m[1] + "-" + m[2] + "s",
			Label:   strings.TrimSpace(strings.Trim(strings.TrimSpace(m[3]), "*_#")),
			Content: strings.TrimSpace(m[4]),
		})
	}
	return blocks
}

// hasTemporalStructure reports whether blocks came from real time tags.
func hasTemporalStructure(blocks []models.TemporalBlock) bool {
	return len(blocks) > 0 && blocks[0].Time != ""
}
