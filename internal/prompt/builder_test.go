package prompt_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devisflow/internal/domain"
	"devisflow/internal/prompt"
)

const sampleText = "MATELAS 1 PIÈCE - LATEX 79/198/20 - MME\nQuantité 2"

func TestExtraction_EmbedsSchemaAndText(t *testing.T) {
	p := prompt.NewBuilder(0).Extraction(sampleText)

	assert.Equal(t, domain.PromptExtraction, p.Variant)
	assert.Empty(t, p.System)
	assert.Contains(t, p.User, sampleText)
	for _, field := range []string{
		`"societe"`, `"client"`, `"commande"`, `"mode_mise_a_disposition"`, `"articles"`, `"paiement"`,
		`"titre_cote"`, `"emporte_client_C57"`, `"fourgon_C58"`, `"transporteur_C59"`,
		`"net_a_payer"`, `"autres_caracteristiques"`,
	} {
		assert.Contains(t, p.User, field)
	}
	for _, typ := range domain.ArticleTypes {
		assert.Contains(t, p.User, string(typ))
	}
	assert.Contains(t, p.User, "null pour les nombres")
	assert.Contains(t, p.User, "SAS Literie Westelynck")
	assert.Contains(t, p.User, "UNIQUEMENT avec un JSON")
}

func TestExtraction_EmptyTextSelectsDegraded(t *testing.T) {
	b := prompt.NewBuilder(0)

	for _, text := range []string{"", "   ", "\n\t"} {
		p := b.Extraction(text)
		assert.Equal(t, domain.PromptDegraded, p.Variant)
		assert.NotContains(t, p.User, `"societe"`)
		assert.NotEmpty(t, p.User)
	}
}

func TestSummary_Variants(t *testing.T) {
	b := prompt.NewBuilder(0)

	p := b.Summary(sampleText)
	assert.Equal(t, domain.PromptSummary, p.Variant)
	assert.Contains(t, p.User, "Produits commandés")
	assert.Contains(t, p.User, sampleText)

	d := b.Summary("")
	assert.Equal(t, domain.PromptDegraded, d.Variant)
	assert.Contains(t, d.User, "pas pu extraire")
}

func TestMessages_OmitsEmptySystem(t *testing.T) {
	msgs := prompt.NewBuilder(0).Extraction(sampleText).Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)

	msgs = prompt.NewBuilder(0).Summary(sampleText).Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
}

func TestTruncate(t *testing.T) {
	short := "matelas"
	assert.Equal(t, short, prompt.Truncate(short))

	long := strings.Repeat("é", prompt.MaxTextLength+10)
	got := prompt.Truncate(long)
	assert.Equal(t, prompt.MaxTextLength, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestBuilder_CustomLimit(t *testing.T) {
	p := prompt.NewBuilder(7).Summary("MATELAS LATEX")

	assert.True(t, strings.HasSuffix(p.User, "MATELAS"))
	assert.NotContains(t, p.User, "LATEX")
}

func TestBuilder_Clip(t *testing.T) {
	assert.Equal(t, "MATE", prompt.NewBuilder(4).Clip("MATELAS"))
	assert.Equal(t, "MATELAS", prompt.NewBuilder(0).Clip("MATELAS"))
}
