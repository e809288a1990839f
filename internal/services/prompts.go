// internal/services/prompts.go
package services

import (
	"fmt"
	"strings"

	apperrors "github.com/clinicflow/roteiros/internal/errors"
	"github.com/clinicflow/roteiros/internal/models"
)

const baseSystemPrompt = `Você é um roteirista especializado em marketing para clínicas de estética no Brasil.
Escreva em português do Brasil, com linguagem próxima, sem promessas de resultado garantido
e sem termos médicos que exijam prescrição. Responda SOMENTE com um objeto JSON no formato
{"roteiro": "<texto do roteiro>"} e nada mais.`

var formatInstructions = map[models.ScriptFormat]string{
	models.FormatCarousel: `Crie um carrossel de Instagram com exatamente 5 slides.
Use um cabeçalho por slide neste formato exato:
🔹 SLIDE N — <título curto>
Texto: <texto do slide, até 30 palavras>
Imagem: <descrição da imagem clínica sugerida>
O slide 1 é o gancho e o slide 5 é a chamada para ação.`,

	models.FormatStories10x: `Crie uma sequência de Stories no método 10x com exatamente 4 stories e,
se fizer sentido, um quinto story bônus. Use um cabeçalho por story neste formato exato:
Story N: <texto>
Story 1 é o gancho (até 20 palavras, com uma pergunta provocativa).
Story 2 é o erro comum (até 20 palavras).
Story 3 é a virada (até 25 palavras) e inclui um gatilho de engajamento: foguinho 🔥, enquete ou pergunta direta.
Story 4 é a chamada para ação (até 15 palavras) com um verbo como agende, chame ou clique.`,

	models.FormatGPSC: `Crie um roteiro de vídeo curto (Reels) no método GPSC, com 30 a 45 segundos.
Divida em blocos temporais neste formato exato, um por linha:
[0-5s] Gancho: <fala>
[5-15s] Problema: <fala>
[15-35s] Solução: <fala>
[35-45s] CTA: <fala>`,
}

// BuildPrompt returns the system and user prompts for a generation request.
func BuildPrompt(format models.ScriptFormat, briefing models.Briefing) (string, string, error) {
	instructions, ok := formatInstructions[format]
	if !ok {
		return "", "", apperrors.NewValidationError(fmt.Sprintf("unsupported format %q", format), nil)
	}
	if strings.TrimSpace(briefing.Procedure) == "" {
		return "", "", apperrors.NewValidationError("briefing.procedure is required", nil)
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nBriefing da clínica:\n")
	writeBriefingLine(&b, "Clínica", briefing.ClinicName)
	writeBriefingLine(&b, "Procedimento", briefing.Procedure)
	writeBriefingLine(&b, "Equipamento", briefing.Equipment)
	writeBriefingLine(&b, "Público", briefing.Audience)
	writeBriefingLine(&b, "Objetivo", briefing.Objective)
	writeBriefingLine(&b, "Tom de voz", briefing.Tone)
	writeBriefingLine(&b, "Observações", briefing.Extra)

	return baseSystemPrompt, strings.TrimRight(b.String(), "\n"), nil
}

func writeBriefingLine(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}
