package renderer

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/quick-hb/internal/compiler"
	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/selector"
	"github.com/dpshade/quick-hb/internal/variables"
)

func testRecords() models.Collection {
	return models.Collection{
		{ID: "intro", Section: "Antrag", SpintaxM: "Der Antragsteller [Name]", SpintaxW: "Die Antragstellerin [Name]"},
		{ID: "gruss", Section: "", SpintaxM: "Mit freundlichen Grüßen"},
		{ID: "befund", Section: "Befund", SpintaxM: "{Befund|Diagnose}: [Diagnose]"},
	}
}

func TestFragment_GenderAndVariables(t *testing.T) {
	vars := models.VariableMap{"Name": "Schmidt"}
	r := NewRenderer(testRecords(), models.Feminine, vars)
	assert.Equal(t, "Die Antragstellerin Schmidt", r.Fragment(testRecords()[0]))

	r.Gender = models.Masculine
	assert.Equal(t, "Der Antragsteller Schmidt", r.Fragment(testRecords()[0]))

	// feminine falls back to the masculine variant when it is empty
	r.Gender = models.Feminine
	assert.Equal(t, "Mit freundlichen Grüßen", r.Fragment(testRecords()[1]))
}

func TestFragment_SpinsBeforeSubstituting(t *testing.T) {
	// brackets produced by a value must not be substituted again
	r := NewRenderer(nil, models.Masculine, models.VariableMap{"A": "[B]", "B": "nein"})
	assert.Equal(t, "[B]", r.Text("[A]"))
}

func TestVariants(t *testing.T) {
	r := NewRenderer(testRecords(), models.Masculine, models.VariableMap{"Diagnose": "Asthma"})
	assert.Equal(t, []string{"Befund: Asthma", "Diagnose: Asthma"}, r.Variants(testRecords()[2], 0))
	assert.Equal(t, []string{"Befund: Asthma"}, r.Variants(testRecords()[2], 1))
}

func TestRenderSection_CandidatesAndPicks(t *testing.T) {
	r := NewRenderer(testRecords(), models.Masculine, models.VariableMap{"Name": "Schmidt"})

	assert.Equal(t, "Der Antragsteller Schmidt\nMit freundlichen Grüßen", r.RenderSection("Antrag", nil))

	r.Policy = selector.PolicyStrict
	assert.Equal(t, "Der Antragsteller Schmidt", r.RenderSection("Antrag", nil))

	got := r.RenderSection("Antrag", []string{"gruss", "unbekannt", "intro"})
	assert.Equal(t, "Mit freundlichen Grüßen\nDer Antragsteller Schmidt", got)
}

func TestRenderSection_EmptyLibraryUsesDefaults(t *testing.T) {
	r := NewRenderer(nil, models.Masculine, nil)
	r.Rand = rand.New(rand.NewPCG(1, 1))
	body := r.RenderSection("Antrag", nil)
	assert.NotEmpty(t, body)
	assert.NotContains(t, body, "{")
}

func TestRenderText(t *testing.T) {
	r := NewRenderer(testRecords(), models.Masculine, models.VariableMap{"Name": "Schmidt", "Diagnose": "Asthma"})
	r.Policy = selector.PolicyStrict

	draft := &models.Draft{}
	draft.Pick("Befund", "gruss")

	text := r.RenderText(models.Structure{"Antrag", "Befund"}, draft, compiler.Options{Numbered: true})
	assert.Equal(t, "1. Antrag\n\nDer Antragsteller Schmidt\n\n2. Befund\n\nMit freundlichen Grüßen", text)
}

func TestRenderMarkdown(t *testing.T) {
	r := NewRenderer(testRecords(), models.Masculine, nil)
	r.Policy = selector.PolicyStrict
	md := r.RenderMarkdown(models.Structure{"Antrag"}, nil)
	assert.Equal(t, "## 1. Antrag\n\nDer Antragsteller [Name]", md)
}

func TestRenderJSON(t *testing.T) {
	r := NewRenderer(testRecords(), models.Feminine, nil)
	r.Policy = selector.PolicyStrict

	out, err := r.RenderJSON(models.Structure{"Antrag"}, nil, compiler.Options{})
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, models.Feminine, doc.Gender)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Antrag", doc.Sections[0].Header)
	assert.Equal(t, "Antrag\n\nDie Antragstellerin [Name]", doc.Text)
	assert.Equal(t, []string{"Name"}, doc.Unfilled)
}

func TestHTMLFormatter(t *testing.T) {
	r := NewRenderer(testRecords(), models.Masculine, models.VariableMap{"Name": "Schmidt"})
	r.Formatter = variables.HTML
	got := r.Fragment(testRecords()[0])
	assert.Equal(t, `Der Antragsteller <span title="siehe Tabelle [Name]" class="quick-variable" data-name="Name">Schmidt</span>`, got)
}

func TestBuildDocument_UnfilledIgnoresMarkup(t *testing.T) {
	records := models.Collection{
		{ID: "intro", Section: "Antrag", SpintaxM: "Herr [Name], [Alter] Jahre"},
		{ID: "ort", Section: "Antrag", SpintaxM: "wohnt in [Ort], [Name]"},
	}
	r := NewRenderer(records, models.Masculine, models.VariableMap{"Name": "Schmidt"})
	r.Formatter = variables.HTML

	doc := r.BuildDocument(models.Structure{"Antrag"}, nil, compiler.Options{})
	assert.Equal(t, []string{"Alter", "Ort"}, doc.Unfilled)
	assert.Contains(t, doc.Text, `data-name="Name">Schmidt</span>`)
	assert.Contains(t, doc.Text, `data-name="Ort">[Ort]</span>`)
}
