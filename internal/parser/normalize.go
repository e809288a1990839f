// internal/parser/normalize.go
package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// Mode selects how aggressively Normalize cleans a script.
type Mode int

const (
	// ModeStructural keeps every line boundary so marker detection still works.
	ModeStructural Mode = iota
	// ModeReading produces display text: tags, labels and decoration are removed.
	ModeReading
)

func (m Mode) String() string {
	if m == ModeReading {
		return "reading"
	}
	return "structural"
}

// ParseMode maps "reading"/"structural" to a Mode; anything else is structural.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "reading") {
		return ModeReading
	}
	return ModeStructural
}

// JSON round-trips leak escaped sequences into the text; `\\` is listed first so an
// escaped backslash is never read as the start of another escape.
var unescapeReplacer = strings.NewReplacer(
	`\\`, `\`,
	`\n`, "\n",
	`\"`, `"`,
	`\'`, `'`,
	"\r\n", "\n",
	"\r", "\n",
)

var (
	horizontalSpaceRe = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankLineRe       = regexp.MustCompile(`\n[ \t]*\n`)
	manyNewlinesRe    = regexp.MustCompile(`\n{3,}`) // two or more blank lines

	bracketTagRe   = regexp.MustCompile(`\[[^\]\n]*\]`)
	parenTimeRe    = regexp.MustCompile(`(?i)\(\s*\d{1,3}(?:[.,]\d+)?\s*s?\s*[-–—]\s*\d{1,3}(?:[.,]\d+)?\s*s(?:eg(?:undos)?)?\s*\)`)
	bareTimeRe     = regexp.MustCompile(`(?i)\b\d{1,3}(?:[.,]\d+)?\s*s?\s*[-–—]\s*\d{1,3}(?:[.,]\d+)?\s*s(?:eg(?:undos)?)?\b`)
	ruleLineRe     = regexp.MustCompile(`(?m)^[ \t]*[-=_]{3,}[ \t]*$`)
	sectionLabelRe = regexp.MustCompile(`(?im)(^|[ \t])[ \t]*(?:[#>*_-]+[ \t]*)*(?:🎯|⚠️|⚠|💡|🚀)?[ \t]*[*_]*(?:gancho|hook|problema|dor|agita[cç][aã]o|solu[cç][aã]o|cta|call to action|chamada para a[cç][aã]o|benef[ií]cios?|fechamento)[ \t]*[*_]*[ \t]*:[ \t]*[*_]*`)
)

// Normalize un-escapes and cleans a raw script. It never fails; empty input yields "".
func Normalize(raw string, mode Mode) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	text := unescapeReplacer.Replace(raw)

	if mode == ModeReading {
		text = bracketTagRe.ReplaceAllString(text, "")
		text = parenTimeRe.ReplaceAllString(text, "")
		text = bareTimeRe.ReplaceAllString(text, "")
		text = sectionLabelRe.ReplaceAllString(text, "$1")
		text = ruleLineRe.ReplaceAllString(text, "")
		text = dropTechnicalHeaders(text)
		text = strings.ReplaceAll(text, "|", "")
	}

	text = collapseLines(text)
	if mode == ModeReading {
		text = manyNewlinesRe.ReplaceAllString(text, "\n\n")
	}
	return strings.TrimSpace(text)
}

// collapseLines squeezes horizontal whitespace inside each line without touching
// the line breaks themselves.
func collapseLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpaceRe.ReplaceAllString(line, " "))
	}
	return strings.Join(lines, "\n")
}

// dropTechnicalHeaders removes ALL-CAPS lines with more than 12 letters.
func dropTechnicalHeaders(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !isShoutedHeader(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func isShoutedHeader(line string) bool {
	letters := 0
	for _, r := range line {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsLower(r) {
			return false
		}
		letters++
	}
	return letters > 12
}
