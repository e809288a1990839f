// internal/parser/carousel.go
package parser

import (
	"regexp"
	"strings"

	"github.com/clinicflow/roteiros/internal/models"
)

// CarouselSlideCount is the fixed number of slides in a carousel.
const CarouselSlideCount = 5

const (
	CarouselBodyPlaceholder  = "Conteúdo do slide"
	CarouselImagePlaceholder = "Imagem clínica ilustrativa (placeholder)"

	synthesizedImagePrefix = "Imagem profissional de clínica estética ilustrando: "
	synthesizedImageWords  = 8
	minSynthesizeRunes     = 20
	maxHeaderTitleWords    = 10
)

// carouselDefaultTitles are used when a slide has no usable title of its own.
var carouselDefaultTitles = [CarouselSlideCount]string{
	"Gancho", "Problema", "Solução", "Benefícios", "Call to Action",
}

// rawBlock is the text found between two slide headers.
type rawBlock struct {
	title   string
	content string
}

// slideRecognizer finds slide blocks for one delimiter convention. It returns nil
// unless at least two blocks were found.
type slideRecognizer struct {
	name string
	find func(text string) []rawBlock
}

var (
	emojiHeaderRe      = regexp.MustCompile(`(?im)^[ \t]*🔹[ \t]*SLIDE[ \t]*(\d+)[ \t]*(?:[—–-][ \t]*(.*))?$`)
	dashHeaderRe       = regexp.MustCompile(`(?im)^[ \t]*Slide[ \t]*(\d+)[ \t]*[—–-][ \t]*(.+)$`)
	boldDashHeaderRe   = regexp.MustCompile(`(?im)^[ \t]*\*\*[ \t]*Slide[ \t]*(\d+)[ \t]*[—–-][ \t]*(.+?)[ \t]*\*\*[ \t]*(.*)$`)
	boldColonHeaderRe  = regexp.MustCompile(`(?im)^[ \t]*\*\*[ \t]*Slide[ \t]*(\d+)[ \t]*:[ \t]*(.*?)[ \t]*\*\*[ \t]*:?[ \t]*(.*)$`)
	plainColonHeaderRe = regexp.MustCompile(`(?im)^[ \t]*#*[ \t]*Slide[ \t]*(\d+)[ \t]*:[ \t]*(.*)$`)
	separatorLineRe    = regexp.MustCompile(`(?m)^[ \t]*-{3,}[ \t]*$`)

	textLabelRe  = regexp.MustCompile(`(?is)(?:^|\n)[^\p{L}\n]{0,6}(?:texto|text|legenda|conte[uú]do)[ \t]*:[ \t]*(.*?)(?:\n[^\p{L}\n]{0,6}(?:imagem|image|t[ií]tulo|title)[ \t]*:|\z)`)
	imageLabelRe = regexp.MustCompile(`(?is)(?:^|\n)[^\p{L}\n]{0,6}(?:imagem|image|visual)[ \t]*:[ \t]*(.*?)(?:\n[^\p{L}\n]{0,6}(?:texto|text|legenda|conte[uú]do|t[ií]tulo|title)[ \t]*:|\z)`)
	titleLabelRe = regexp.MustCompile(`(?im)^[^\p{L}\n]{0,6}(?:t[ií]tulo|title)[ \t]*:[ \t]*(.+)$`)
	anyLabelRe   = regexp.MustCompile(`(?i)^(?:texto|text|legenda|conte[uú]do|imagem|image|visual|t[ií]tulo|title)[ \t]*:`)
)

var slideRecognizers = []slideRecognizer{
	{name: "emoji_header", find: func(text string) []rawBlock {
		return splitByHeader(text, emojiHeaderRe, func(m []string) (string, string) { return m[2], "" })
	}},
	{name: "dash_header", find: func(text string) []rawBlock {
		return splitByHeader(separatorLineRe.ReplaceAllString(text, ""), dashHeaderRe,
			func(m []string) (string, string) { return m[2], "" })
	}},
	{name: "bold_dash_header", find: func(text string) []rawBlock {
		return splitByHeader(text, boldDashHeaderRe, func(m []string) (string, string) { return m[2], m[3] })
	}},
	{name: "bold_colon_header", find: func(text string) []rawBlock {
		return splitByHeader(text, boldColonHeaderRe, func(m []string) (string, string) {
			if strings.TrimSpace(m[2]) != "" {
				return m[2], m[3]
			}
			return titleOrBody(m[3])
		})
	}},
	{name: "colon_header", find: func(text string) []rawBlock {
		return splitByHeader(text, plainColonHeaderRe, func(m []string) (string, string) {
			return titleOrBody(m[2])
		})
	}},
}

// titleOrBody treats the rest of a header line as a title when it is short and is
// not itself a field label; otherwise it belongs to the body.
func titleOrBody(rest string) (string, string) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", ""
	}
	if anyLabelRe.MatchString(rest) || wordCount(rest) > maxHeaderTitleWords {
		return "", rest
	}
	return rest, ""
}

// splitByHeader cuts text at every header match. header maps the match groups to a
// title and any body text that shares the header line.
func splitByHeader(text string, re *regexp.Regexp, header func(m []string) (string, string)) []rawBlock {
	locs := re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) < 2 {
		return nil
	}
	blocks := make([]rawBlock, 0, len(locs))
	for i, loc := range locs {
		m := submatches(text, loc)
		title, inline := header(m)
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		content := text[loc[1]:end]
		if inline = strings.TrimSpace(inline); inline != "" {
			content = inline + "\n" + content
		}
		blocks = append(blocks, rawBlock{title: strings.TrimSpace(title), content: strings.TrimSpace(content)})
	}
	return blocks
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if a, b := loc[2*i], loc[2*i+1]; a >= 0 {
			out[i] = s[a:b]
		}
	}
	return out
}

// ParseCarouselSlides structures a carousel script into exactly five slides.
func ParseCarouselSlides(text string) []models.CarouselSlide {
	slides, _ := ParseCarouselSlidesWithStrategy(text)
	return slides
}

// ParseCarouselSlidesWithStrategy also reports which delimiter convention matched.
func ParseCarouselSlidesWithStrategy(raw string) ([]models.CarouselSlide, string) {
	payload := Unwrap(raw)
	if blocks, ok := jsonSlideBlocks(payload); ok {
		return finishSlides(blocks), "json_slides"
	}
	if payload.Kind == PayloadJSON && payload.Roteiro == "" {
		return finishSlides([]models.CarouselSlide{slideFromObject(payload.Object)}), "json_object"
	}

	text := Normalize(payload.Text(), ModeStructural)
	if text == "" {
		return finishSlides(nil), "empty"
	}
	for _, r := range slideRecognizers {
		if blocks := r.find(text); blocks != nil {
			return finishSlides(parseBlocks(blocks)), r.name
		}
	}
	return finishSlides(parseBlocks([]rawBlock{{content: text}})), "single_block"
}

// jsonSlideBlocks reads a top-level `slides` array.
func jsonSlideBlocks(p Payload) ([]models.CarouselSlide, bool) {
	if p.Kind != PayloadJSON {
		return nil, false
	}
	var items []any
	for k, v := range p.Object {
		if strings.EqualFold(k, "slides") {
			items, _ = v.([]any)
		}
	}
	if len(items) == 0 {
		return nil, false
	}

	slides := make([]models.CarouselSlide, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			slides = append(slides, slideFromObject(v))
		case string:
			slides = append(slides, parseBlock(rawBlock{content: v}))
		}
	}
	return slides, len(slides) > 0
}

func parseBlocks(blocks []rawBlock) []models.CarouselSlide {
	slides := make([]models.CarouselSlide, 0, len(blocks))
	for _, b := range blocks {
		slides = append(slides, parseBlock(b))
	}
	return slides
}

// parseBlock reads the title, body and image prompt of one slide block.
func parseBlock(b rawBlock) models.CarouselSlide {
	content := strings.TrimSpace(strings.ReplaceAll(b.content, "**", ""))
	if strings.HasPrefix(content, "{") {
		if obj, ok := decodeObject(content); ok {
			s := slideFromObject(obj)
			if s.Title == "" {
				s.Title = cleanTitle(b.title)
			}
			return s
		}
	}

	slide := models.CarouselSlide{Title: cleanTitle(b.title)}
	if m := titleLabelRe.FindStringSubmatch(content); m != nil {
		slide.Title = cleanTitle(m[1])
	}
	textMatch := textLabelRe.FindStringSubmatch(content)
	imageMatch := imageLabelRe.FindStringSubmatch(content)
	if textMatch == nil && imageMatch == nil {
		slide.Body = Normalize(titleLabelRe.ReplaceAllString(content, ""), ModeReading)
		if runeLen(slide.Body) > minSynthesizeRunes {
			slide.ImagePrompt = synthesizeImagePrompt(slide.Body)
		}
		return slide
	}
	if textMatch != nil {
		slide.Body = Normalize(textMatch[1], ModeReading)
	}
	if imageMatch != nil {
		slide.ImagePrompt = Normalize(imageMatch[1], ModeReading)
	}
	return slide
}

// slideFromObject reads a `{"texto", "imagem", "title"}` slide, recursing into a
// nested `roteiro` script when present.
func slideFromObject(obj map[string]any) models.CarouselSlide {
	if nested := lookupString(obj, "roteiro"); nested != "" {
		s := parseBlock(rawBlock{content: nested})
		if t := lookupString(obj, "title", "titulo", "título"); t != "" {
			s.Title = cleanTitle(t)
		}
		return s
	}
	return models.CarouselSlide{
		Title:       cleanTitle(lookupString(obj, "title", "titulo", "título")),
		Body:        Normalize(lookupString(obj, "texto", "text", "body"), ModeReading),
		ImagePrompt: Normalize(lookupString(obj, "imagem", "image", "image_prompt"), ModeReading),
	}
}

func cleanTitle(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `*_#"'“”:—–- `)
	return Normalize(s, ModeReading)
}

func synthesizeImagePrompt(body string) string {
	words := strings.Fields(body)
	if len(words) > synthesizedImageWords {
		words = words[:synthesizedImageWords]
	}
	return synthesizedImagePrefix + strings.TrimRight(strings.Join(words, " "), ".,;:!?…")
}

// finishSlides applies title fallbacks and truncates or pads to exactly five slides.
func finishSlides(parsed []models.CarouselSlide) []models.CarouselSlide {
	slides := make([]models.CarouselSlide, CarouselSlideCount)
	for i := range slides {
		var s models.CarouselSlide
		if i < len(parsed) {
			s = parsed[i]
		}
		s.Index = i + 1
		if strings.TrimSpace(s.Body) == "" {
			s.Body = CarouselBodyPlaceholder
		}
		if strings.TrimSpace(s.ImagePrompt) == "" {
			s.ImagePrompt = CarouselImagePlaceholder
		}
		if s.Title == "" || strings.EqualFold(s.Title, s.Body) || strings.EqualFold(s.Title, s.ImagePrompt) {
			s.Title = carouselDefaultTitles[i]
		}
		slides[i] = s
	}
	return slides
}
