// internal/parser/rebalance.go
package parser

import (
	"regexp"

	"github.com/clinicflow/roteiros/internal/models"
)

var actionVerbRe = regexp.MustCompile(`(?i)\b(?:agende|marque|fale|whatsapp|clique|acesse|venha|garanta|baixe|inscreva|siga|compartilhe|comente|salve|assine|compre|confira|teste)`)

const (
	// minCTAWords below which the CTA bucket borrows action sentences from Solution.
	minCTAWords = 8
	// maxMovedSentences caps how many sentences one rebalance moves into CTA.
	maxMovedSentences = 2
)

// Rebalance removes sentences repeated across buckets and pulls trailing action
// sentences out of Solution when the CTA is too thin. Buckets it does not touch keep
// their text byte for byte, and a second call changes nothing.
func Rebalance(doc models.GPSCDocument) models.GPSCDocument {
	out := dedupBuckets(doc)
	moveActionSentences(&out)
	return out
}

// dedupBuckets drops every sentence already seen in an earlier bucket, or earlier in
// the same bucket, walking buckets in Hook, Problem, Solution, CTA order.
func dedupBuckets(doc models.GPSCDocument) models.GPSCDocument {
	seen := make(map[string]bool)
	out := doc
	for _, b := range models.Buckets {
		sentences := splitSentences(doc.Get(b))
		kept := sentences[:0:0]
		for _, s := range sentences {
			key := sentenceKey(s)
			if seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, s)
		}
		if len(kept) != len(sentences) {
			out.Set(b, joinSentences(kept))
		}
	}
	return out
}

func moveActionSentences(doc *models.GPSCDocument) {
	cta := splitSentences(doc.CTA)
	if wordCount(doc.CTA) >= minCTAWords || anyAction(cta) {
		return
	}

	solution := splitSentences(doc.Solution)
	moved := make(map[int]bool, maxMovedSentences)
	for i := len(solution) - 1; i >= 0 && len(moved) < maxMovedSentences; i-- {
		if actionVerbRe.MatchString(solution[i]) {
			moved[i] = true
		}
	}
	if len(moved) == 0 {
		return
	}

	var stay, lead []string
	for i, s := range solution {
		if moved[i] {
			lead = append(lead, s)
		} else {
			stay = append(stay, s)
		}
	}
	doc.Solution = joinSentences(stay)
	doc.CTA = joinSentences(append(lead, cta...))
}

func anyAction(sentences []string) bool {
	for _, s := range sentences {
		if actionVerbRe.MatchString(s) {
			return true
		}
	}
	return false
}
