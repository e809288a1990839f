// internal/parser/text.go
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldKey lower-cases s and strips diacritics so "Solução" and "solucao" compare equal.
// The transformer chain is stateful, so a fresh one is built per call.
func foldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// firstRunes returns at most n runes of s.
func firstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}

// splitSentences cuts text at terminal punctuation followed by whitespace and at
// line breaks. Decimal points ("1.5") and similar never split.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '\n' {
			flush()
			continue
		}
		cur.WriteRune(r)
		if !isTerminal(r) {
			continue
		}
		for i+1 < len(rs) && (isTerminal(rs[i+1]) || isCloser(rs[i+1])) {
			i++
			cur.WriteRune(rs[i])
		}
		if i+1 >= len(rs) || unicode.IsSpace(rs[i+1]) {
			flush()
		}
	}
	flush()
	return out
}

// joinSentences is the inverse of splitSentences: splitting the result yields the
// same sentences again.
func joinSentences(sentences []string) string {
	var b strings.Builder
	for i, s := range sentences {
		if i > 0 {
			if endsSentence(sentences[i-1]) {
				b.WriteByte(' ')
			} else {
				b.WriteByte('\n')
			}
		}
		b.WriteString(s)
	}
	return b.String()
}

// endsSentence reports whether s ends in terminal punctuation, ignoring closers.
func endsSentence(s string) bool {
	s = strings.TrimRightFunc(s, isCloser)
	r, _ := utf8.DecodeLastRuneInString(s)
	return isTerminal(r)
}

// sentenceKey is the equality key used by deduplication.
func sentenceKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// paragraphs splits on blank lines.
func paragraphs(text string) []string {
	var out []string
	for _, p := range blankLineRe.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// hasWordPrefix reports whether key equals word or starts with word followed by a space.
func hasWordPrefix(key, word string) bool {
	return key == word || strings.HasPrefix(key, word+" ")
}

// containsWord reports whether word appears in s as a whole word (s already lower-cased).
func containsWord(s, word string) bool {
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if w == word {
			return true
		}
	}
	return false
}
