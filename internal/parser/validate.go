// internal/parser/validate.go
package parser

import (
	"fmt"
	"strings"

	"github.com/clinicflow/roteiros/internal/models"
)

const (
	slideBodyPoints  = 12
	slideImagePoints = 8

	storiesPassScore = 70
	maxScore         = 100
)

var (
	ctaVerbs = []string{
		"agende", "marque", "chama", "chame", "manda", "mande", "compartilha", "compartilhe",
		"comente", "comenta", "clique", "acesse", "salve", "siga", "responde", "responda",
		"vote", "garanta", "fale", "envie",
	}
	hookPronouns      = []string{"você", "voce", "vocês", "voces", "vc", "tu", "te", "seu", "sua"}
	interrogativeTerm = []string{"por que", "porque", "como", "qual", "quanto", "sabia", "já pensou", "ja pensou", "imagine"}
)

// ValidateCarouselSlides checks that a carousel has five filled slides indexed 1..5.
// Each slide is worth 12 points for its text and 8 for its image prompt.
func ValidateCarouselSlides(slides []models.CarouselSlide) models.ValidationResult {
	issues := []string{}
	if len(slides) != CarouselSlideCount {
		issues = append(issues, fmt.Sprintf("o carrossel deve ter exatamente %d slides (encontrados: %d)", CarouselSlideCount, len(slides)))
	}

	score := 0
	for i, s := range slides {
		if i >= CarouselSlideCount {
			break
		}
		if s.Index != i+1 {
			issues = append(issues, fmt.Sprintf("slide na posição %d tem índice %d", i+1, s.Index))
		}
		if body := strings.TrimSpace(s.Body); body == "" || body == CarouselBodyPlaceholder {
			issues = append(issues, fmt.Sprintf("slide %d sem texto (placeholder)", i+1))
		} else {
			score += slideBodyPoints
		}
		if img := strings.TrimSpace(s.ImagePrompt); img == "" || img == CarouselImagePlaceholder {
			issues = append(issues, fmt.Sprintf("slide %d sem descrição de imagem (placeholder)", i+1))
		} else {
			score += slideImagePoints
		}
	}

	return models.ValidationResult{IsValid: len(issues) == 0, Score: min(score, maxScore), Issues: issues}
}

// ValidateStories10x scores a Stories 10x sequence; it is valid from 70 points up.
// Beats holding fallback text earn nothing.
func ValidateStories10x(beats []models.StoryBeat) models.ValidationResult {
	issues := []string{}
	score := 0

	canonical := 0
	byRole := make(map[models.StoryRole]models.StoryBeat, len(beats))
	for _, b := range beats {
		if b.Role.IsCanonical() {
			canonical++
		}
		if _, ok := byRole[b.Role]; !ok {
			byRole[b.Role] = b
		}
	}
	if canonical == canonicalBeatCount && len(byRole) >= canonicalBeatCount {
		score += 20
	} else {
		issues = append(issues, fmt.Sprintf("a sequência deve ter exatamente %d stories principais (encontrados: %d)", canonicalBeatCount, canonical))
	}

	filled := 0
	devices := 0
	for _, b := range beats {
		if isPlaceholderBeat(b) {
			issues = append(issues, fmt.Sprintf("story %d usa texto genérico de reserva", b.Index))
			continue
		}
		if runeLen(strings.TrimSpace(b.Content)) >= minSpanRunes {
			filled++
		} else {
			issues = append(issues, fmt.Sprintf("story %d tem conteúdo curto demais", b.Index))
		}
		if beatDevice(b) != models.DeviceNone {
			devices++
		}
	}
	score += min(filled*10, 40)

	switch {
	case devices >= 2:
		score += 20
	case devices == 1:
		score += 15
	default:
		issues = append(issues, "nenhum gatilho de engajamento encontrado")
	}

	if turn, ok := byRole[models.RoleTurn]; ok && !isPlaceholderBeat(turn) && beatDevice(turn) != models.DeviceNone {
		score += 20
	} else {
		issues = append(issues, "story 3 (virada) sem gatilho de engajamento")
	}

	if hook, ok := byRole[models.RoleHook]; ok && !isPlaceholderBeat(hook) && isProvocative(hook.Content) {
		score += 15
	} else {
		issues = append(issues, "story 1 (gancho) não é provocativo")
	}

	if cta, ok := byRole[models.RoleCTA]; ok && !isPlaceholderBeat(cta) && hasCTAVerb(cta.Content) {
		score += 10
	} else {
		issues = append(issues, "story 4 (CTA) sem verbo de ação")
	}

	score = min(score, maxScore)
	return models.ValidationResult{IsValid: score >= storiesPassScore, Score: score, Issues: issues}
}

// ValidateGPSC gives 25 points per bucket holding at least 20 characters.
func ValidateGPSC(doc models.GPSCDocument) models.ValidationResult {
	issues := []string{}
	score := 0
	for _, b := range models.Buckets {
		text := strings.TrimSpace(doc.Get(b))
		switch {
		case text == "":
			issues = append(issues, fmt.Sprintf("seção %s vazia", b))
		case runeLen(text) < minBucketRunes:
			issues = append(issues, fmt.Sprintf("seção %s curta demais", b))
		default:
			score += 25
		}
	}
	return models.ValidationResult{IsValid: len(issues) == 0, Score: score, Issues: issues}
}

// ValidateDocument dispatches on the document format.
func ValidateDocument(doc models.ScriptDocument) models.ValidationResult {
	switch doc.Format {
	case models.FormatCarousel:
		return ValidateCarouselSlides(doc.Slides)
	case models.FormatStories10x:
		return ValidateStories10x(doc.Beats)
	case models.FormatGPSC:
		if doc.GPSC == nil {
			return ValidateGPSC(models.GPSCDocument{})
		}
		return ValidateGPSC(*doc.GPSC)
	}
	return models.ValidationResult{Issues: []string{fmt.Sprintf("formato desconhecido: %q", doc.Format)}}
}

func isPlaceholderBeat(b models.StoryBeat) bool {
	if b.Placeholder {
		return true
	}
	fb := fallbackSentences[b.Role]
	return fb != "" && strings.TrimSpace(b.Content) == fb
}

func beatDevice(b models.StoryBeat) models.EngagementDevice {
	if b.EngagementDevice != models.DeviceNone {
		return b.EngagementDevice
	}
	return DetectEngagementDevice(b.Content)
}

func isProvocative(content string) bool {
	s := strings.ToLower(content)
	if strings.Contains(s, "?") {
		return true
	}
	for _, p := range hookPronouns {
		if containsWord(s, p) {
			return true
		}
	}
	return containsAny(s, interrogativeTerm)
}

func hasCTAVerb(content string) bool {
	s := strings.ToLower(content)
	for _, v := range ctaVerbs {
		if containsWord(s, v) {
			return true
		}
	}
	return false
}
