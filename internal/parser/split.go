// internal/parser/split.go
package parser

import (
	"strings"
	"unicode"
)

const (
	// minSplitRunes is the shortest text that is still divided into parts.
	minSplitRunes = 40
	// cutSearchWindow bounds how far a cut may drift from its target to find whitespace.
	cutSearchWindow = 80
)

// SplitIntoParts divides text into n contiguous slices of roughly equal length, moving
// each cut to the nearest whitespace so no word is broken. It always returns n
// strings; text shorter than 40 runes stays whole in the first slot.
func SplitIntoParts(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	parts := make([]string, n)
	text = strings.TrimSpace(text)
	rs := []rune(text)
	if len(rs) < minSplitRunes || n == 1 {
		parts[0] = text
		return parts
	}

	target := len(rs) / n
	prev := 0
	cuts := make([]int, 0, n-1)
	for k := 1; k < n; k++ {
		cut := nearestSpace(rs, k*target, prev)
		cuts = append(cuts, cut)
		prev = cut
	}

	start := 0
	for i, cut := range cuts {
		parts[i] = strings.TrimSpace(string(rs[start:cut]))
		start = cut
	}
	parts[n-1] = strings.TrimSpace(string(rs[start:]))
	return parts
}

// nearestSpace searches outward from target for whitespace, staying after lowest.
// Without whitespace in the window the raw target is used.
func nearestSpace(rs []rune, target, lowest int) int {
	for d := 0; d <= cutSearchWindow; d++ {
		for _, i := range []int{target + d, target - d} {
			if i > lowest && i < len(rs) && unicode.IsSpace(rs[i]) {
				return i
			}
		}
	}
	if target <= lowest {
		return min(lowest+1, len(rs))
	}
	return min(target, len(rs))
}
