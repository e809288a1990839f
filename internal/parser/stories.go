// internal/parser/stories.go
package parser

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/clinicflow/roteiros/internal/models"
)

// StoriesTier names the deepest fallback tier a Stories 10x parse needed.
type StoriesTier string

const (
	TierStrict      StoriesTier = "strict"
	TierAlternative StoriesTier = "alternative"
	TierForced      StoriesTier = "forced"
)

const (
	canonicalBeatCount = 4
	bonusBeatIndex     = 5
	// minBeatsBeforeForcing is how many beats must be found for the headers to be trusted.
	minBeatsBeforeForcing = 2
	minSpanRunes          = 20
	maxTitleWords         = 8
	clauseCutRatio        = 0.6
	wordsPerSecond        = 2.5
	minBeatSeconds        = 3
	maxBeatSeconds        = 15
)

var beatRoles = map[int]models.StoryRole{
	1: models.RoleHook,
	2: models.RoleMistake,
	3: models.RoleTurn,
	4: models.RoleCTA,
	5: models.RoleBonus,
}

var wordBudgets = map[models.StoryRole]int{
	models.RoleHook:    20,
	models.RoleMistake: 20,
	models.RoleTurn:    25,
	models.RoleCTA:     15,
	models.RoleBonus:   20,
}

// fallbackSentences fill canonical beats the source gave no usable text for.
var fallbackSentences = map[models.StoryRole]string{
	models.RoleHook:    "Você sabia que a maioria das pessoas comete esse erro no cuidado com a pele?",
	models.RoleMistake: "O erro mais comum é achar que um único procedimento resolve tudo sozinho.",
	models.RoleTurn:    "A virada acontece quando você combina avaliação profissional e o protocolo certo.",
	models.RoleCTA:     "Manda um 🔥 aqui e agende sua avaliação com a nossa equipe!",
}

// FallbackSentence returns the fixed text used for a beat without usable content.
func FallbackSentence(role models.StoryRole) string {
	return fallbackSentences[role]
}

var (
	strictStoryRe = regexp.MustCompile(`(?i)(?:\*\*)?\bstory[ \t]*([1-5])[ \t]*(?:\([^)\n]{0,30}\))?[ \t]*(?:\*\*)?[ \t]*[:\-–—][ \t]*(?:\*\*)?`)
	altStoryRe    = regexp.MustCompile(`(?im)(?:^|[.!?…][ \t]+)[ \t]*((?:[#>*_-]+[ \t]*)?(?:\*\*)?(gancho|hook|erro|mito|virada|cta|b[ôo]nus)(?:\*\*)?[ \t]*(?:\([^)\n]{0,30}\))?[ \t]*(?:\*\*)?[ \t]*:(?:\*\*)?)`)
)

var altRoleIndex = map[string]int{
	"gancho": 1, "hook": 1,
	"erro": 2, "mito": 2,
	"virada": 3,
	"cta":    4,
	"bonus":  5,
}

// storyHeader is one recognized beat header and the span it occupies.
type storyHeader struct {
	start, end int
	index      int
	strict     bool
}

// ParseStories10xSlides structures a Stories 10x script. It always returns the four
// canonical beats in order, followed by a bonus beat only when the source has one.
func ParseStories10xSlides(raw string) []models.StoryBeat {
	beats, _ := ParseStories10xWithTier(raw)
	return beats
}

// ParseStories10xWithTier also reports the deepest fallback tier that was needed.
func ParseStories10xWithTier(raw string) ([]models.StoryBeat, StoriesTier) {
	text := Normalize(Unwrap(raw).Text(), ModeStructural)

	headers := findStoryHeaders(text, strictStoryRe, true)
	tier := TierStrict
	if countCanonical(assignBeats(text, headers)) < canonicalBeatCount {
		if alt := findAltHeaders(text, headers); len(alt) > 0 {
			headers = mergeHeaders(headers, alt)
			tier = TierAlternative
		}
	}
	found := assignBeats(text, headers)

	contents := make(map[int]string, bonusBeatIndex)
	placeholders := make(map[int]bool, canonicalBeatCount)

	if countCanonical(found) < minBeatsBeforeForcing {
		tier = TierForced
		spans := equalWordSpans(Normalize(stripHeaders(text, headers), ModeReading), canonicalBeatCount)
		for i := 1; i <= canonicalBeatCount; i++ {
			contents[i], placeholders[i] = spanOrFallback(spans[i-1], beatRoles[i])
		}
		if c, ok := found[bonusBeatIndex]; ok {
			contents[bonusBeatIndex] = c
		}
	} else {
		var spans []string
		for i := 1; i <= canonicalBeatCount; i++ {
			if c, ok := found[i]; ok {
				contents[i] = c
				continue
			}
			tier = TierForced
			if spans == nil {
				spans = equalWordSpans(Normalize(preamble(text, headers), ModeReading), canonicalBeatCount)
			}
			contents[i], placeholders[i] = spanOrFallback(spans[i-1], beatRoles[i])
		}
		if c, ok := found[bonusBeatIndex]; ok {
			contents[bonusBeatIndex] = c
		}
	}

	beats := make([]models.StoryBeat, 0, bonusBeatIndex)
	for i := 1; i <= bonusBeatIndex; i++ {
		c, ok := contents[i]
		if !ok {
			continue
		}
		beats = append(beats, buildBeat(i, c, placeholders[i]))
	}
	return beats, tier
}

func findStoryHeaders(text string, re *regexp.Regexp, strict bool) []storyHeader {
	var out []storyHeader
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		out = append(out, storyHeader{start: loc[0], end: loc[1], index: n, strict: strict})
	}
	return out
}

// findAltHeaders matches role-name headers ("Gancho:", "Virada:") that do not overlap
// a strict header.
func findAltHeaders(text string, strict []storyHeader) []storyHeader {
	var out []storyHeader
	for _, loc := range altStoryRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		if overlaps(start, end, strict) {
			continue
		}
		n := altRoleIndex[foldKey(text[loc[4]:loc[5]])]
		if n == 0 {
			continue
		}
		out = append(out, storyHeader{start: start, end: end, index: n})
	}
	return out
}

func overlaps(start, end int, headers []storyHeader) bool {
	for _, h := range headers {
		if start < h.end && h.start < end {
			return true
		}
	}
	return false
}

func mergeHeaders(a, b []storyHeader) []storyHeader {
	out := append(append([]storyHeader(nil), a...), b...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// assignBeats maps beat indices to the text under their header. Strict headers win
// over role-name headers, and the first occurrence of an index wins. A header whose
// text is empty after reading cleanup does not count.
func assignBeats(text string, headers []storyHeader) map[int]string {
	found := make(map[int]string, len(headers))
	for _, pass := range []bool{true, false} {
		for i, h := range headers {
			if h.strict != pass {
				continue
			}
			if _, ok := found[h.index]; ok {
				continue
			}
			end := len(text)
			if i+1 < len(headers) {
				end = headers[i+1].start
			}
			content := strings.TrimSpace(text[h.end:end])
			if Normalize(strings.ReplaceAll(content, "**", ""), ModeReading) == "" {
				continue
			}
			found[h.index] = content
		}
	}
	return found
}

func countCanonical(found map[int]string) int {
	n := 0
	for i := 1; i <= canonicalBeatCount; i++ {
		if _, ok := found[i]; ok {
			n++
		}
	}
	return n
}

// preamble is the text before the first beat header.
func preamble(text string, headers []storyHeader) string {
	if len(headers) == 0 {
		return text
	}
	return text[:headers[0].start]
}

// stripHeaders drops every header from text. The span under a bonus header is
// dropped too, since the bonus beat keeps its own text.
func stripHeaders(text string, headers []storyHeader) string {
	if len(headers) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for i, h := range headers {
		if h.start < last {
			continue
		}
		b.WriteString(text[last:h.start])
		b.WriteByte('\n')
		last = h.end
		if h.index == bonusBeatIndex {
			last = len(text)
			if i+1 < len(headers) {
				last = max(h.end, headers[i+1].start)
			}
		}
	}
	b.WriteString(text[last:])
	return b.String()
}

// equalWordSpans cuts text into n spans holding the same number of words; the last
// span takes the remainder.
func equalWordSpans(text string, n int) []string {
	words := strings.Fields(text)
	spans := make([]string, n)
	if len(words) == 0 {
		return spans
	}
	size := int(math.Ceil(float64(len(words)) / float64(n)))
	for i := 0; i < n; i++ {
		lo := i * size
		if lo >= len(words) {
			break
		}
		hi := min(lo+size, len(words))
		spans[i] = strings.Join(words[lo:hi], " ")
	}
	return spans
}

func spanOrFallback(span string, role models.StoryRole) (string, bool) {
	if runeLen(strings.TrimSpace(span)) < minSpanRunes {
		return fallbackSentences[role], true
	}
	return span, false
}

// buildBeat turns the raw text of a beat into its final form: title, capped content,
// engagement device and duration.
func buildBeat(index int, raw string, placeholder bool) models.StoryBeat {
	role := beatRoles[index]
	title, body := splitBeatTitle(Normalize(strings.ReplaceAll(raw, "**", ""), ModeReading))
	if title == "" {
		title = "Story " + strconv.Itoa(index) + ": " + role.Label()
	}
	if body == "" {
		body, placeholder = fallbackSentences[role], true
	}
	content := CapWords(body, wordBudgets[role])
	return models.StoryBeat{
		Index:            index,
		Title:            title,
		Content:          content,
		DurationSeconds:  beatDuration(content),
		Role:             role,
		EngagementDevice: DetectEngagementDevice(content),
		Placeholder:      placeholder,
	}
}

// splitBeatTitle takes a short first line without terminal punctuation as the title
// when more lines follow it.
func splitBeatTitle(text string) (string, string) {
	first, rest, ok := strings.Cut(text, "\n")
	if !ok {
		return "", text
	}
	first = strings.Trim(strings.TrimSpace(first), `*_#"“”:—–- `)
	rest = strings.TrimSpace(rest)
	if first == "" || rest == "" || wordCount(first) > maxTitleWords || endsSentence(first) {
		return "", text
	}
	return first, rest
}

// CapWords shortens s to at most budget words. Whole sentences are kept while they
// fit; when the first sentence alone is too long it is cut at a comma or semicolon
// past 60% of the budget, or hard-cut at the budget with an ellipsis.
func CapWords(s string, budget int) string {
	sentences := splitSentences(s)
	if len(sentences) == 0 || budget <= 0 {
		return ""
	}

	var kept []string
	used := 0
	for _, sent := range sentences {
		n := wordCount(sent)
		if used+n > budget {
			break
		}
		kept = append(kept, sent)
		used += n
	}
	if len(kept) > 0 {
		return strings.Join(kept, " ")
	}

	words := strings.Fields(sentences[0])
	from := int(math.Ceil(clauseCutRatio * float64(budget)))
	for i := from - 1; i < budget && i < len(words); i++ {
		if i < 0 {
			continue
		}
		if strings.HasSuffix(words[i], ",") || strings.HasSuffix(words[i], ";") {
			words[i] = strings.TrimRight(words[i], ",;")
			return strings.Join(words[:i+1], " ")
		}
	}
	return strings.Join(words[:budget], " ") + "…"
}

// beatDuration estimates on-screen seconds from the spoken word count.
func beatDuration(content string) int {
	secs := int(math.Ceil(float64(wordCount(content)) / wordsPerSecond))
	return max(minBeatSeconds, min(maxBeatSeconds, secs))
}
