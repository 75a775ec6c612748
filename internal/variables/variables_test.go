package variables

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/spintax"
)

func TestSubstitute_LeavesMissingPlaceholders(t *testing.T) {
	got := Substitute("[X] and [Y]", models.VariableMap{"X": "foo"}, Plain)
	assert.Equal(t, "foo and [Y]", got)
}

func TestSubstitute_EmptyValueCountsAsMissing(t *testing.T) {
	got := Substitute("Name: [Name]", models.VariableMap{"Name": ""}, nil)
	assert.Equal(t, "Name: [Name]", got)
}

func TestSubstitute_NilMapAndEmptyText(t *testing.T) {
	assert.Equal(t, "", Substitute("", models.VariableMap{"X": "1"}, Plain))
	assert.Equal(t, "[X]", Substitute("[X]", nil, Plain))
}

func TestSubstitute_IgnoresEmptyAndNestedBrackets(t *testing.T) {
	vars := models.VariableMap{"A": "1"}
	assert.Equal(t, "[] x", Substitute("[] x", vars, Plain))
	assert.Equal(t, "[1]", Substitute("[[A]]", vars, Plain))
}

func TestSubstitute_HTMLMarker(t *testing.T) {
	vars := models.VariableMap{"Name": "Müller & Söhne"}
	got := Substitute("Herr [Name], [Ort]", vars, HTML)
	assert.Equal(t,
		`Herr <span title="siehe Tabelle [Name]" class="quick-variable" data-name="Name">Müller &amp; Söhne</span>, `+
			`<span title="siehe Tabelle [Ort]" class="quick-variable" data-name="Ort">[Ort]</span>`,
		got)
}

func TestSubstitute_CustomFormatter(t *testing.T) {
	upper := FormatterFunc(func(name, value string, filled bool) string {
		if filled {
			return "<" + value + ">"
		}
		return "?" + name
	})
	assert.Equal(t, "<a> ?B", Substitute("[A] [B]", models.VariableMap{"A": "a"}, upper))
}

func TestUnfilled(t *testing.T) {
	got := Unfilled("[A] [B] [A] [C]", models.VariableMap{"B": "x"})
	assert.Equal(t, []string{"A", "C"}, got)
}

func TestNames_FirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"Name", "Alter"}, Names("[Name] ist [Alter], [Name]!"))
	assert.Nil(t, Names("keine Variablen"))
}

func TestDiscover_DeduplicatedAndSorted(t *testing.T) {
	records := models.Collection{
		{ID: "1", SpintaxM: "[Name] ist [Alter]"},
		{ID: "2", SpintaxM: "[Name] wohnt in [Ort]"},
	}
	assert.Equal(t, []string{"Alter", "Name", "Ort"}, Discover(records, models.Masculine))
}

func TestDiscover_UsesGenderVariant(t *testing.T) {
	records := models.Collection{
		{ID: "1", SpintaxM: "Der [Antragsteller]", SpintaxW: "Die [Antragstellerin]"},
		{ID: "2", SpintaxM: "[Datum]"},
	}
	assert.Equal(t, []string{"Antragsteller", "Datum"}, Discover(records, models.Masculine))
	assert.Equal(t, []string{"Antragstellerin", "Datum"}, Discover(records, models.Feminine))
	assert.Empty(t, Discover(nil, models.Feminine))
}

func TestParity(t *testing.T) {
	onlyM, onlyW := Parity(models.Record{SpintaxM: "[A] [B]", SpintaxW: "[B] [C]"})
	assert.Equal(t, []string{"A"}, onlyM)
	assert.Equal(t, []string{"C"}, onlyW)

	onlyM, onlyW = Parity(models.Record{SpintaxM: "[A]"})
	assert.Nil(t, onlyM)
	assert.Nil(t, onlyW)
}

func TestSpinThenSubstitute(t *testing.T) {
	tmpl := "Der {Antragsteller|Kläger} heißt [Name]"
	vars := models.VariableMap{"Name": "Schmidt"}
	rng := rand.New(rand.NewPCG(3, 4))
	allowed := []string{"Der Antragsteller heißt Schmidt", "Der Kläger heißt Schmidt"}
	for i := 0; i < 50; i++ {
		got := Substitute(spintax.Spin(tmpl, rng), vars, Plain)
		require.Contains(t, allowed, got)
	}
}
