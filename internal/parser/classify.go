// internal/parser/classify.go
package parser

import (
	"strings"

	"github.com/clinicflow/roteiros/internal/models"
)

var (
	hookPhrases = []string{
		"você sabia", "voce sabia", "imagine", "e se eu te dissesse",
		"pare tudo", "atenção", "atencao",
	}
	secondPersonStarts = []string{"você", "voce", "vocês", "voces", "vc", "tu"}

	problemTerms = []string{
		"problema", "dificuldade", "frustração", "frustracao", "não consegue", "nao consegue",
		"sofre", "luta", "desafio", "incomoda",
		// pain topics the clinics treat
		"celulite", "flacidez", "manchas", "rugas", "gordura localizada",
	}

	ctaTerms = []string{
		"clique", "acesse", "baixe", "inscreva", "siga", "compartilhe", "comenta", "link", "garanta",
	}
	imperativeStarts = []string{"vem", "vamos", "vai", "faça", "faca", "teste"}
)

// hookQuestionWindow is how far into a chunk a '?' still marks it as a hook.
const hookQuestionWindow = 150

// Classify assigns a marker-less chunk to a bucket. Rules are evaluated in order and
// the first match wins; anything unmatched is informational and lands in Solution.
func Classify(chunk string) models.Bucket {
	s := strings.ToLower(strings.TrimSpace(chunk))
	first := firstWord(s)

	if containsAny(s, hookPhrases) || inList(first, secondPersonStarts) ||
		strings.Contains(firstRunes(s, hookQuestionWindow), "?") {
		return models.BucketHook
	}
	if containsAny(s, problemTerms) {
		return models.BucketProblem
	}
	if containsAny(s, ctaTerms) || inList(first, imperativeStarts) {
		return models.BucketCTA
	}
	return models.BucketSolution
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func inList(s string, list []string) bool {
	for _, v := range list {
		if s == v {
			return true
		}
	}
	return false
}

// firstWord returns the first word of s with surrounding punctuation removed.
func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], `.,;:!?¿¡"'()*_-—–`)
}
