package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Equal(t, "", Normalize("", ModeReading))
	assert.Equal(t, "", Normalize("   \n\t ", ModeStructural))
}

func TestNormalize_StructuralKeepsLines(t *testing.T) {
	got := Normalize("Gancho:   olá\\nmundo  \\\"aspas\\\"", ModeStructural)
	assert.Equal(t, "Gancho: olá\nmundo \"aspas\"", got)
}

func TestNormalize_StructuralCRLF(t *testing.T) {
	assert.Equal(t, "a\nb\nc", Normalize("a\r\nb\rc", ModeStructural))
}

func TestNormalize_ReadingStripsDecoration(t *testing.T) {
	raw := "[0-3s] GANCHO: Você sabia?\n\n\n\nPROTOCOLO TECNICO COMPLETO\n---\nProblema: pele | flácida"
	assert.Equal(t, "Você sabia?\n\npele flácida", Normalize(raw, ModeReading))
}

func TestNormalize_ReadingStripsTimeRanges(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"parenthesized", "(3-8s) Pele firme", "Pele firme"},
		{"bare", "12-18s Pele firme", "Pele firme"},
		{"bracket tag", "[CENA] Pele firme", "Pele firme"},
		{"inline label", "Resultado real. CTA: agende já", "Resultado real. agende já"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, ModeReading))
		})
	}
}

func TestNormalize_StructuralKeepsMarkers(t *testing.T) {
	raw := "🎯 Gancho: oi\n[0-3s] texto"
	assert.Equal(t, raw, Normalize(raw, ModeStructural))
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeReading, ParseMode("Reading"))
	assert.Equal(t, ModeStructural, ParseMode("structural"))
	assert.Equal(t, ModeStructural, ParseMode("qualquer"))
	assert.Equal(t, "reading", ModeReading.String())
}
