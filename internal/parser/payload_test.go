package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrap(t *testing.T) {
	t.Run("roteiro wrapper", func(t *testing.T) {
		p := Unwrap(`{"roteiro": "Story 1: oi"}`)
		assert.Equal(t, PayloadJSON, p.Kind)
		assert.Equal(t, "Story 1: oi", p.Text())
	})

	t.Run("fenced with raw newlines", func(t *testing.T) {
		p := Unwrap("Aqui está:\n```json\n{\"roteiro\": \"linha1\nlinha2\"}\n```")
		require.Equal(t, PayloadJSON, p.Kind)
		assert.Equal(t, "linha1\nlinha2", p.Roteiro)
	})

	t.Run("case-insensitive key", func(t *testing.T) {
		p := Unwrap(`{"Content": "texto"}`)
		assert.Equal(t, "texto", p.Text())
	})

	t.Run("unknown keys stay text", func(t *testing.T) {
		raw := `{"foo": 1}`
		p := Unwrap(raw)
		assert.Equal(t, PayloadText, p.Kind)
		assert.Equal(t, raw, p.Text())
	})

	t.Run("malformed json stays text", func(t *testing.T) {
		raw := `{"roteiro": "abc"`
		p := Unwrap(raw)
		assert.Equal(t, PayloadText, p.Kind)
		assert.Equal(t, raw, p.Text())
	})

	t.Run("braces inside prose", func(t *testing.T) {
		raw := "Olá {nome}, tudo bem?"
		assert.Equal(t, raw, Unwrap(raw).Text())
	})

	t.Run("json without script key keeps raw text", func(t *testing.T) {
		raw := `{"texto": "corpo", "imagem": "foto"}`
		p := Unwrap(raw)
		assert.Equal(t, PayloadJSON, p.Kind)
		assert.Equal(t, raw, p.Text())
		assert.Equal(t, "corpo", p.Object["texto"])
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", Unwrap("").Text())
	})
}

func TestCleanJSONString(t *testing.T) {
	assert.Equal(t, `{"a":"}"}`, cleanJSONString("```json\n{\"a\":\"}\"} trailing"))
	assert.Equal(t, `[1,[2]]`, cleanJSONString("lista: [1,[2]] fim"))
	assert.Equal(t, "sem json", cleanJSONString("sem json"))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Olá. Tudo bem? Sim!\nLinha sem ponto")
	assert.Equal(t, []string{"Olá.", "Tudo bem?", "Sim!", "Linha sem ponto"}, got)

	assert.Equal(t, []string{"Foram 1.5 sessões.", "Ótimo."}, splitSentences("Foram 1.5 sessões. Ótimo."))
	assert.Equal(t, []string{`Ela disse "uau!"`, "Fim."}, splitSentences(`Ela disse "uau!" Fim.`))
}

func TestJoinSentencesRoundTrip(t *testing.T) {
	in := []string{"Olá.", "Linha sem ponto", "Tudo bem?", "(nota)", "Fim."}
	assert.Equal(t, in, splitSentences(joinSentences(in)))
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "solucao", foldKey("Solução"))
	assert.Equal(t, "agitacao", foldKey("AGITAÇÃO"))
	assert.Equal(t, "bonus", foldKey("Bônus"))
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("se você quiser, eu mando", "eu"))
	assert.False(t, containsWord("seu resultado", "se"))
}
