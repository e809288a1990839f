package parser

import (
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/clinicflow/roteiros/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTemporalBlocks(t *testing.T) {
	t.Run("tagged script", func(t *testing.T) {
		blocks := ExtractTemporalBlocks("[0-3s] Gancho: Você sabia? [3-8s] Problema: pele flácida")
		require.Len(t, blocks, 2)
		assert.Equal(t, models.TemporalBlock{Time: "0-3s", Label: "Gancho", Content: "Você sabia?"}, blocks[0])
		assert.Equal(t, models.TemporalBlock{Time: "3-8s", Label: "Problema", Content: "pele flácida"}, blocks[1])
	})

	t.Run("label is optional", func(t *testing.T) {
		blocks := ExtractTemporalBlocks("[10-15s] Olá mundo")
		require.Len(t, blocks, 1)
		assert.Equal(t, "", blocks[0].Label)
		assert.Equal(t, "Olá mundo", blocks[0].Content)
	})

	t.Run("no tags", func(t *testing.T) {
		blocks := ExtractTemporalBlocks("texto livre")
		assert.Equal(t, []models.TemporalBlock{{Time: "", Content: "texto livre"}}, blocks)
	})
}

func TestSegmentByExplicitMarkers(t *testing.T) {
	t.Run("emoji markers", func(t *testing.T) {
		text := "🎯 Você sabia que a celulite tem cura?\n⚠️ A maioria desiste cedo.\nContinua aqui.\n💡 Nosso protocolo combina laser.\n🚀 Agende hoje."
		doc, found := SegmentByExplicitMarkers(text)
		require.True(t, found)
		assert.Equal(t, "Você sabia que a celulite tem cura?", doc.Hook)
		assert.Equal(t, "A maioria desiste cedo.\n\nContinua aqui.", doc.Problem)
		assert.Equal(t, "Nosso protocolo combina laser.", doc.Solution)
		assert.Equal(t, "Agende hoje.", doc.CTA)
	})

	t.Run("emoji with redundant label", func(t *testing.T) {
		doc, found := SegmentByExplicitMarkers("🎯 GANCHO: Pare tudo\n🚀 CTA\nAgende")
		require.True(t, found)
		assert.Equal(t, "Pare tudo", doc.Hook)
		assert.Equal(t, "Agende", doc.CTA)
	})

	t.Run("label prefixes", func(t *testing.T) {
		text := "GANCHO: Você sabia?\n[Problema]: Pele flácida incomoda.\n**Solução:** Bioestimulador.\nCTA: Agende já."
		doc, found := SegmentByExplicitMarkers(text)
		require.True(t, found)
		assert.Equal(t, "Você sabia?", doc.Hook)
		assert.Equal(t, "Pele flácida incomoda.", doc.Problem)
		assert.Equal(t, "Bioestimulador.", doc.Solution)
		assert.Equal(t, "Agende já.", doc.CTA)
	})

	t.Run("synonyms and time tags", func(t *testing.T) {
		text := "[0-3s] Abertura: Olha isso\n## Mito\nCreme resolve tudo\nPasso 1: Avaliação\nConvite: Vem pra clínica"
		doc, found := SegmentByExplicitMarkers(text)
		require.True(t, found)
		assert.Equal(t, "Olha isso", doc.Hook)
		assert.Equal(t, "Creme resolve tudo", doc.Problem)
		assert.Equal(t, "Avaliação", doc.Solution)
		assert.Equal(t, "Vem pra clínica", doc.CTA)
	})

	t.Run("prose before a colon is not a label", func(t *testing.T) {
		for _, label := range []string{"Gancho (0-3s)", "Passo 2", "CTA final", "Solução"} {
			_, ok := bucketForLabel(label)
			assert.True(t, ok, label)
		}
		for _, label := range []string{"Como eu sempre digo", "Dica de ouro que ninguém conta", "Link para quem quiser saber mais"} {
			_, ok := bucketForLabel(label)
			assert.False(t, ok, label)
		}

		_, found := SegmentByExplicitMarkers("Como eu sempre digo: cuidar da pele é rotina diária.")
		assert.False(t, found)
	})

	t.Run("no markers", func(t *testing.T) {
		doc, found := SegmentByExplicitMarkers("Texto corrido sem marcação.")
		assert.False(t, found)
		assert.Equal(t, models.GPSCDocument{}, doc)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		chunk string
		want  models.Bucket
	}{
		{"Você já reparou nas olheiras", models.BucketHook},
		{"Imagine acordar com a pele lisa", models.BucketHook},
		{"Ela pergunta: funciona mesmo?", models.BucketHook},
		{"A flacidez incomoda muitas mulheres", models.BucketProblem},
		{"Clique no link da bio", models.BucketCTA},
		{"Vem conhecer a clínica", models.BucketCTA},
		{"O ultrassom microfocado estimula colágeno", models.BucketSolution},
		{"", models.BucketSolution},
	}
	for _, tt := range tests {
		t.Run(tt.chunk, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.chunk))
			assert.Equal(t, tt.want, Classify(tt.chunk), "classification must be deterministic")
		})
	}
}

func TestSplitIntoParts(t *testing.T) {
	t.Run("short text stays whole", func(t *testing.T) {
		assert.Equal(t, []string{"curto demais", "", "", ""}, SplitIntoParts("curto demais", 4))
	})

	t.Run("cuts on whitespace", func(t *testing.T) {
		text := strings.TrimSpace(strings.Repeat("palavra ", 50))
		parts := SplitIntoParts(text, 4)
		require.Len(t, parts, 4)
		for _, p := range parts {
			assert.InDelta(t, 100, runeLen(p), 20)
			for _, w := range strings.Fields(p) {
				assert.Equal(t, "palavra", w)
			}
		}
		assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(parts, " ")))
	})

	t.Run("no whitespace", func(t *testing.T) {
		text := strings.Repeat("a", 200)
		parts := SplitIntoParts(text, 4)
		require.Len(t, parts, 4)
		assert.Equal(t, text, strings.Join(parts, ""))
	})
}

func TestRebalance(t *testing.T) {
	t.Run("dedup across buckets", func(t *testing.T) {
		doc := models.GPSCDocument{
			Hook:     "Você sabia? Pele firme.",
			Problem:  "pele firme. A flacidez incomoda.",
			Solution: "Laser de última geração.",
			CTA:      "Agende já pelo WhatsApp da clínica hoje.",
		}
		got := Rebalance(doc)
		assert.Equal(t, doc.Hook, got.Hook)
		assert.Equal(t, "A flacidez incomoda.", got.Problem)
		assert.Equal(t, doc.Solution, got.Solution)
		assert.Equal(t, doc.CTA, got.CTA)
	})

	t.Run("moves action sentence into thin CTA", func(t *testing.T) {
		doc := models.GPSCDocument{
			Solution: "O laser estimula colágeno. Agende sua avaliação. Resultados em 30 dias.",
			CTA:      "Vem!",
		}
		got := Rebalance(doc)
		assert.Equal(t, "O laser estimula colágeno. Resultados em 30 dias.", got.Solution)
		assert.Equal(t, "Agende sua avaliação. Vem!", got.CTA)
	})

	t.Run("moves at most two in original order", func(t *testing.T) {
		doc := models.GPSCDocument{
			Solution: "Acesse o site. Fale conosco. Texto neutro. Agende agora.",
		}
		got := Rebalance(doc)
		assert.Equal(t, "Acesse o site. Texto neutro.", got.Solution)
		assert.Equal(t, "Fale conosco. Agende agora.", got.CTA)
	})

	t.Run("long CTA is left alone", func(t *testing.T) {
		doc := models.GPSCDocument{
			Solution: "Agende sua avaliação.",
			CTA:      "Venha conhecer a nossa clínica no centro da cidade hoje.",
		}
		assert.Equal(t, doc, Rebalance(doc))
	})

	t.Run("idempotent", func(t *testing.T) {
		docs := []models.GPSCDocument{
			{Hook: "A. A. B.", Problem: "b. C", Solution: "Clique aqui. Siga. Teste.", CTA: ""},
			{Hook: "Oi", Problem: "Oi", Solution: "Fale comigo\nAgende\nTexto", CTA: "ok"},
			{Solution: "Compre. Confira. Baixe.", CTA: "Curto."},
			{},
		}
		for _, d := range docs {
			once := Rebalance(d)
			assert.Equal(t, once, Rebalance(once))
		}
	})
}

func TestSegmentOrFallback(t *testing.T) {
	t.Run("all four keys always present", func(t *testing.T) {
		inputs := []string{"", "oi", "🎯 só gancho", `{"roteiro": "texto"}`, "[0-3s] x"}
		for _, in := range inputs {
			b, err := json.Marshal(SegmentOrFallback(in))
			require.NoError(t, err)
			var m map[string]string
			require.NoError(t, json.Unmarshal(b, &m))
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			assert.Equal(t, []string{"CTA", "Gancho", "Problema", "Solução"}, keys)
		}
	})

	t.Run("markers", func(t *testing.T) {
		raw := `{"roteiro": "🎯 Você sabia que a celulite tem tratamento?\n⚠️ Muita gente desiste antes da hora.\n💡 O protocolo combina radiofrequência e drenagem.\n🚀 Agende sua avaliação pelo WhatsApp hoje mesmo."}`
		doc, strategy := SegmentOrFallbackWithStrategy(raw)
		assert.Equal(t, StrategyMarkers, strategy)
		assert.Equal(t, "Você sabia que a celulite tem tratamento?", doc.Hook)
		assert.Equal(t, "Agende sua avaliação pelo WhatsApp hoje mesmo.", doc.CTA)
	})

	t.Run("temporal", func(t *testing.T) {
		raw := "[0-5s] Cena 1: Você já reparou que a pele perde firmeza?\n" +
			"[5-15s] Cena 2: A flacidez incomoda e parece não ter saída.\n" +
			"[15-25s] Cena 3: O ultrassom microfocado estimula colágeno novo.\n" +
			"[25-30s] Cena 4: Clique no link da bio e garanta sua vaga."
		doc, strategy := SegmentOrFallbackWithStrategy(raw)
		assert.Equal(t, StrategyTemporal, strategy)
		assert.Equal(t, "Você já reparou que a pele perde firmeza?", doc.Hook)
		assert.Equal(t, "A flacidez incomoda e parece não ter saída.", doc.Problem)
		assert.Equal(t, "O ultrassom microfocado estimula colágeno novo.", doc.Solution)
		assert.Equal(t, "Clique no link da bio e garanta sua vaga.", doc.CTA)
	})

	t.Run("paragraphs", func(t *testing.T) {
		raw := "Você sabia que a flacidez tem solução?\n\n" +
			"A flacidez incomoda e tira a confiança de muitas mulheres.\n\n" +
			"O bioestimulador de colágeno devolve firmeza à pele.\n\n" +
			"Clique no link e garanta sua avaliação."
		doc, strategy := SegmentOrFallbackWithStrategy(raw)
		assert.Equal(t, StrategyParagraphs, strategy)
		assert.Equal(t, "Você sabia que a flacidez tem solução?", doc.Hook)
		assert.Equal(t, "A flacidez incomoda e tira a confiança de muitas mulheres.", doc.Problem)
		assert.Equal(t, "O bioestimulador de colágeno devolve firmeza à pele.", doc.Solution)
		assert.Equal(t, "Clique no link e garanta sua avaliação.", doc.CTA)
	})

	t.Run("positional quarters for plain prose", func(t *testing.T) {
		prose := "A pele muda com o tempo e isso é natural para todo mundo. " +
			"O colágeno diminui a cada ano e a firmeza vai embora aos poucos. " +
			"Muitas pessoas tentam cremes caros sem ver diferença real no espelho. " +
			"O ultrassom microfocado age nas camadas profundas e estimula a produção natural de colágeno. " +
			"O resultado aparece de forma gradual e harmoniosa ao longo dos meses. " +
			"Converse com a nossa equipe e descubra o protocolo ideal para você."
		doc, strategy := SegmentOrFallbackWithStrategy(prose)
		assert.Equal(t, StrategyPositional, strategy)

		quarter := float64(runeLen(prose)) / 4
		var all []string
		for _, b := range models.Buckets {
			text := doc.Get(b)
			assert.NotEmpty(t, text, b.String())
			assert.InDelta(t, quarter, runeLen(text), 20, b.String())
			all = append(all, text)
		}
		assert.Equal(t, strings.Fields(prose), strings.Fields(strings.Join(all, " ")), "no word may be cut")
	})

	t.Run("short buckets are filled positionally", func(t *testing.T) {
		raw := "Gancho: Você sabia que a pele perde colágeno todo ano depois dos 25 anos de idade e isso afeta a firmeza do rosto?"
		doc, strategy := SegmentOrFallbackWithStrategy(raw)
		assert.Equal(t, StrategyMarkers, strategy)
		assert.Equal(t, "Você sabia que a pele perde colágeno todo ano depois dos 25 anos de idade e isso afeta a firmeza do rosto?", doc.Hook)
		assert.NotEmpty(t, doc.Problem)
		assert.NotEmpty(t, doc.Solution)
		assert.NotEmpty(t, doc.CTA)
	})

	t.Run("colon inside prose paragraphs", func(t *testing.T) {
		raw := "Você sabia que a flacidez aparece cedo?\n\n" +
			"Como eu sempre digo: cuidar da pele é rotina diária e constante.\n\n" +
			"Agende sua avaliação pelo link na bio hoje mesmo."
		doc, strategy := SegmentOrFallbackWithStrategy(raw)
		assert.Equal(t, StrategyParagraphs, strategy)
		assert.Equal(t, "Você sabia que a flacidez aparece cedo?", doc.Hook)
		assert.Contains(t, doc.Solution, "Como eu sempre digo: cuidar da pele é rotina diária e constante.")
		assert.Equal(t, "Agende sua avaliação pelo link na bio hoje mesmo.", doc.CTA)

		all := strings.Join([]string{doc.Hook, doc.Problem, doc.Solution, doc.CTA}, "\n")
		assert.Equal(t, 1, strings.Count(all, "link na bio"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, models.GPSCDocument{}, SegmentOrFallback(""))
	})

	t.Run("deterministic", func(t *testing.T) {
		raw := "Primeiro parágrafo sobre pele.\n\nSegundo parágrafo, clique no link."
		assert.Equal(t, SegmentOrFallback(raw), SegmentOrFallback(raw))
	})
}
