package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/clinicflow/roteiros/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emojiCarousel(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "🔹 SLIDE %d — Título %d\nTexto: Corpo do slide número %d sobre pele.\nImagem: Foto de clínica %d\n\n", i, i, i, i)
	}
	return b.String()
}

func assertFiveIndexed(t *testing.T, slides []models.CarouselSlide) {
	t.Helper()
	require.Len(t, slides, CarouselSlideCount)
	for i, s := range slides {
		assert.Equal(t, i+1, s.Index)
	}
}

func TestParseCarouselSlides_EmojiHeaders(t *testing.T) {
	slides, strategy := ParseCarouselSlidesWithStrategy(emojiCarousel(5))
	assert.Equal(t, "emoji_header", strategy)
	assertFiveIndexed(t, slides)
	for i, s := range slides {
		assert.Equal(t, fmt.Sprintf("Título %d", i+1), s.Title)
		assert.Equal(t, fmt.Sprintf("Corpo do slide número %d sobre pele.", i+1), s.Body)
		assert.Equal(t, fmt.Sprintf("Foto de clínica %d", i+1), s.ImagePrompt)
	}

	result := ValidateCarouselSlides(slides)
	assert.True(t, result.IsValid)
	assert.Equal(t, 100, result.Score)
	assert.Empty(t, result.Issues)
}

func TestParseCarouselSlides_DelimiterConventions(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		strategy string
	}{
		{
			name:     "dash header with separators",
			raw:      "Slide 1 – Gancho\nTexto: Você sabia?\nImagem: Rosto\n---\nSlide 2 – Problema\nTexto: Flacidez.\nImagem: Pele",
			strategy: "dash_header",
		},
		{
			name:     "bold dash header",
			raw:      "**Slide 1 – Gancho**\nTexto: Você sabia?\nImagem: Rosto\n**Slide 2 – Problema**\nTexto: Flacidez.\nImagem: Pele",
			strategy: "bold_dash_header",
		},
		{
			name:     "bold colon header",
			raw:      "**Slide 1: Gancho**\nTexto: Você sabia?\nImagem: Rosto\n**Slide 2: Problema**\nTexto: Flacidez.\nImagem: Pele",
			strategy: "bold_colon_header",
		},
		{
			name:     "plain colon header",
			raw:      "Slide 1: Gancho\nTexto: Você sabia?\nImagem: Rosto\nSlide 2: Problema\nTexto: Flacidez.\nImagem: Pele",
			strategy: "colon_header",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slides, strategy := ParseCarouselSlidesWithStrategy(tt.raw)
			assert.Equal(t, tt.strategy, strategy)
			assertFiveIndexed(t, slides)
			assert.Equal(t, "Gancho", slides[0].Title)
			assert.Equal(t, "Você sabia?", slides[0].Body)
			assert.Equal(t, "Rosto", slides[0].ImagePrompt)
			assert.Equal(t, "Problema", slides[1].Title)
			assert.Equal(t, "Flacidez.", slides[1].Body)
			assert.Equal(t, "Pele", slides[1].ImagePrompt)
			assert.Equal(t, CarouselBodyPlaceholder, slides[2].Body)
			assert.Equal(t, CarouselImagePlaceholder, slides[4].ImagePrompt)
		})
	}
}

func TestParseCarouselSlides_LabelsInAnyOrder(t *testing.T) {
	raw := "🔹 SLIDE 1 — Gancho\nImagem: Close da pele\nTexto: A pele perde colágeno.\n🔹 SLIDE 2 — Dor\nTexto: Flacidez incomoda."
	slides := ParseCarouselSlides(raw)
	assert.Equal(t, "A pele perde colágeno.", slides[0].Body)
	assert.Equal(t, "Close da pele", slides[0].ImagePrompt)
	assert.Equal(t, "Flacidez incomoda.", slides[1].Body)
	assert.Equal(t, CarouselImagePlaceholder, slides[1].ImagePrompt)
}

func TestParseCarouselSlides_UnlabeledBlock(t *testing.T) {
	raw := "Slide 1:\nA flacidez aparece com o passar dos anos\nSlide 2:\nCurto"
	slides := ParseCarouselSlides(raw)
	assert.Equal(t, "A flacidez aparece com o passar dos anos", slides[0].Body)
	assert.Equal(t, "Imagem profissional de clínica estética ilustrando: A flacidez aparece com o passar dos anos", slides[0].ImagePrompt)
	assert.Equal(t, "Gancho", slides[0].Title)
	assert.Equal(t, "Curto", slides[1].Body)
	assert.Equal(t, CarouselImagePlaceholder, slides[1].ImagePrompt)
}

func TestParseCarouselSlides_ExtraSlidesDropped(t *testing.T) {
	slides := ParseCarouselSlides(emojiCarousel(7))
	assertFiveIndexed(t, slides)
	assert.Equal(t, "Título 5", slides[4].Title)
}

func TestParseCarouselSlides_JSON(t *testing.T) {
	t.Run("slides array", func(t *testing.T) {
		raw := `{"slides": [{"title": "Gancho", "texto": "Você sabia?", "imagem": "Close"}, "Texto: Segundo corpo\nImagem: Segunda foto"]}`
		slides, strategy := ParseCarouselSlidesWithStrategy(raw)
		assert.Equal(t, "json_slides", strategy)
		assertFiveIndexed(t, slides)
		assert.Equal(t, "Você sabia?", slides[0].Body)
		assert.Equal(t, "Close", slides[0].ImagePrompt)
		assert.Equal(t, "Segundo corpo", slides[1].Body)
		assert.Equal(t, "Segunda foto", slides[1].ImagePrompt)
	})

	t.Run("roteiro wrapper", func(t *testing.T) {
		raw := `{"roteiro": "🔹 SLIDE 1 — A\nTexto: um\nImagem: foto um\n🔹 SLIDE 2 — B\nTexto: dois\nImagem: foto dois"}`
		slides := ParseCarouselSlides(raw)
		assert.Equal(t, "um", slides[0].Body)
		assert.Equal(t, "foto dois", slides[1].ImagePrompt)
	})

	t.Run("json block recurses into roteiro", func(t *testing.T) {
		raw := "Slide 1:\n{\"roteiro\": \"Texto: aninhado\\nImagem: foto aninhada\"}\nSlide 2:\nTexto: dois"
		slides := ParseCarouselSlides(raw)
		assert.Equal(t, "aninhado", slides[0].Body)
		assert.Equal(t, "foto aninhada", slides[0].ImagePrompt)
	})
}

func TestParseCarouselSlides_TitleDedup(t *testing.T) {
	raw := `{"slides": [{"title": "Igual", "texto": "Igual", "imagem": "foto"}, {"title": "foto", "texto": "corpo", "imagem": "foto"}]}`
	slides := ParseCarouselSlides(raw)
	assert.Equal(t, "Gancho", slides[0].Title)
	assert.Equal(t, "Problema", slides[1].Title)
}

func TestParseCarouselSlides_EmptyInput(t *testing.T) {
	slides := ParseCarouselSlides("")
	assertFiveIndexed(t, slides)
	for i, s := range slides {
		assert.Equal(t, carouselDefaultTitles[i], s.Title)
		assert.Equal(t, CarouselBodyPlaceholder, s.Body)
		assert.Equal(t, CarouselImagePlaceholder, s.ImagePrompt)
	}

	result := ValidateCarouselSlides(slides)
	assert.False(t, result.IsValid)
	assert.Equal(t, 0, result.Score)
	assert.Len(t, result.Issues, 10)
}

func TestParseCarouselSlides_AlwaysFive(t *testing.T) {
	inputs := []string{"", "x", "Slide 1: só um", emojiCarousel(2), emojiCarousel(9), `{"slides": []}`, "{", "🔹🔹🔹"}
	for _, in := range inputs {
		slides := ParseCarouselSlides(in)
		assertFiveIndexed(t, slides)
		assert.Equal(t, slides, ParseCarouselSlides(in), "parsing must be deterministic")
	}
}
