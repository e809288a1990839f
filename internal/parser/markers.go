// internal/parser/markers.go
package parser

import (
	"regexp"
	"strings"

	"github.com/clinicflow/roteiros/internal/models"
)

// Synonym sets are stored folded (lower case, no diacritics).
var bucketSynonyms = []struct {
	bucket models.Bucket
	words  []string
}{
	{models.BucketHook, []string{"gancho", "hook", "headline", "abertura", "chamada", "teaser"}},
	{models.BucketProblem, []string{"problema", "dor", "agitacao", "obstaculo", "erro", "mito"}},
	{models.BucketSolution, []string{"solucao", "como", "passo", "dica", "metodo", "prova", "exemplo", "framework", "beneficio", "beneficios"}},
	{models.BucketCTA, []string{"cta", "call to action", "acao", "convite", "direcao", "oferta", "assine", "comente", "compartilhe", "salve", "siga", "inscreva", "clique", "acesse", "garanta", "link"}},
}

var bucketEmojis = []struct {
	prefix string
	bucket models.Bucket
}{
	{"🎯", models.BucketHook},
	{"⚠️", models.BucketProblem},
	{"⚠", models.BucketProblem},
	{"💡", models.BucketSolution},
	{"🚀", models.BucketCTA},
}

var (
	leadingTimeTagRe = regexp.MustCompile(`^\s*[\[(]\s*\d{1,3}(?:[.,]\d+)?\s*s?\s*[-–—]\s*\d{1,3}(?:[.,]\d+)?\s*s(?:eg)?\s*[\])]\s*`)
	labelLineRe      = regexp.MustCompile(`^[#>\-\s]*\[?\s*([^\]:\n]{1,40}?)\s*\]?\s*:\s*(.*)$`)
	headingLineRe    = regexp.MustCompile(`^(?:#+\s*)?\[?\s*([^\]:\n]{1,40}?)\s*\]?\s*:?\s*$`)
	labelNoiseRe     = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// labelQualifiers may follow a synonym inside a label ("CTA final", "Passo 2").
var labelQualifiers = map[string]bool{
	"final": true, "inicial": true, "principal": true, "extra": true, "bonus": true,
	"s": true, "seg": true, "segundos": true,
}

var qualifierNumberRe = regexp.MustCompile(`^\d{1,3}(?:s|seg)?$`)

// maxLabelQualifiers bounds the words allowed after the synonym.
const maxLabelQualifiers = 3

// bucketForLabel matches a section label against the synonym sets. The label must be
// a synonym, optionally followed by a short qualifier: a number, a time tag or
// "final" ("Gancho (0-3s)", "Passo 2", "CTA final"). Prose before a colon is rejected.
func bucketForLabel(label string) (models.Bucket, bool) {
	key := strings.TrimSpace(labelNoiseRe.ReplaceAllString(foldKey(label), " "))
	if key == "" {
		return 0, false
	}
	for _, set := range bucketSynonyms {
		for _, w := range set.words {
			if !hasWordPrefix(key, w) {
				continue
			}
			if isLabelQualifier(strings.TrimSpace(strings.TrimPrefix(key, w))) {
				return set.bucket, true
			}
		}
	}
	return 0, false
}

func isLabelQualifier(rest string) bool {
	words := strings.Fields(rest)
	if len(words) > maxLabelQualifiers {
		return false
	}
	for _, w := range words {
		if !labelQualifiers[w] && !qualifierNumberRe.MatchString(w) {
			return false
		}
	}
	return true
}

// isExactLabel reports whether s is nothing but a synonym, such as "GANCHO".
func isExactLabel(s string) bool {
	key := strings.TrimSpace(labelNoiseRe.ReplaceAllString(foldKey(s), " "))
	for _, set := range bucketSynonyms {
		for _, w := range set.words {
			if key == w {
				return true
			}
		}
	}
	return false
}

// markerLine reports whether line opens a bucket, plus any content that follows
// the marker on the same line.
func markerLine(line string) (models.Bucket, string, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
	s = leadingTimeTagRe.ReplaceAllString(s, "")
	if s == "" {
		return 0, "", false
	}

	for _, e := range bucketEmojis {
		if !strings.HasPrefix(s, e.prefix) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(s, e.prefix))
		rest = strings.TrimSpace(strings.TrimPrefix(rest, "\ufe0f"))
		// "🎯 GANCHO: text" carries a redundant label after the emoji.
		if m := labelLineRe.FindStringSubmatch(rest); m != nil {
			if _, ok := bucketForLabel(m[1]); ok {
				rest = strings.TrimSpace(m[2])
			}
		} else if isExactLabel(rest) {
			rest = ""
		}
		return e.bucket, rest, true
	}

	if m := labelLineRe.FindStringSubmatch(s); m != nil {
		if b, ok := bucketForLabel(m[1]); ok {
			return b, strings.TrimSpace(m[2]), true
		}
	}
	if m := headingLineRe.FindStringSubmatch(s); m != nil && strings.ContainsAny(s, "#[:") {
		if b, ok := bucketForLabel(m[1]); ok {
			return b, "", true
		}
	}
	if isShoutedLabel(s) {
		if b, ok := bucketForLabel(s); ok {
			return b, "", true
		}
	}
	return 0, "", false
}

// isShoutedLabel catches bare upper-case headings such as "GANCHO" on their own line.
func isShoutedLabel(s string) bool {
	return wordCount(s) <= 3 && s == strings.ToUpper(s) && strings.ToLower(s) != s
}

// SegmentByExplicitMarkers walks the script line by line and routes each line to the
// bucket opened by the most recent marker. found is false when no marker was seen,
// telling the caller to fall through to heuristic strategies.
func SegmentByExplicitMarkers(text string) (models.GPSCDocument, bool) {
	parts := make(map[models.Bucket][]string, len(models.Buckets))
	found := false
	var current models.Bucket
	open := false

	for _, line := range strings.Split(text, "\n") {
		if b, rest, ok := markerLine(line); ok {
			found = true
			current, open = b, true
			if rest != "" {
				parts[current] = append(parts[current], rest)
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !open {
			continue
		}
		parts[current] = append(parts[current], trimmed)
	}

	var doc models.GPSCDocument
	for _, b := range models.Buckets {
		doc.Set(b, strings.Join(parts[b], "\n\n"))
	}
	return doc, found
}
