package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/quick-hb/internal/models"
)

func library() models.Collection {
	return models.Collection{
		{ID: "a", Section: "Anamnese", Name: "Vorgeschichte", Shortcut: "vg"},
		{ID: "b", Section: "", Name: "Allgemeiner Satz", Shortcut: "allg"},
		{ID: "c", Section: "Begründung", Name: "Medizinische Notwendigkeit", Shortcut: "mnw"},
		{ID: "d", Section: "Anamnese", Name: "Befund", Shortcut: "dia"},
	}
}

func TestSelectBySection_Wildcard(t *testing.T) {
	got := SelectBySection(library(), "Anamnese", PolicyWildcard)
	assert.Equal(t, []string{"a", "b", "d"}, got.IDs())
}

func TestSelectBySection_Strict(t *testing.T) {
	got := SelectBySection(library(), "Anamnese", PolicyStrict)
	assert.Equal(t, []string{"a", "d"}, got.IDs())

	got = SelectBySection(library(), "", PolicyStrict)
	assert.Equal(t, []string{"b"}, got.IDs())
}

func TestSelectBySection_LabelIsTrimmed(t *testing.T) {
	got := SelectBySection(library(), "  Begründung ", PolicyStrict)
	assert.Equal(t, []string{"c"}, got.IDs())
}

func TestSelectBySection_FallsBackToWholeCollection(t *testing.T) {
	records := models.Collection{
		{ID: "x", Section: "Eins"},
		{ID: "y", Section: "Zwei"},
	}
	got := SelectBySection(records, "Drei", PolicyWildcard)
	assert.Equal(t, []string{"x", "y"}, got.IDs())

	got[0].ID = "changed"
	assert.Equal(t, "x", records[0].ID, "result must not alias the input")
}

func TestSelectBySection_EmptyCollectionUsesDefaults(t *testing.T) {
	for _, records := range []models.Collection{nil, {}} {
		got := SelectBySection(records, "Antrag", PolicyStrict)
		require.NotNil(t, got)
		assert.Equal(t, DefaultCollection().IDs(), got.IDs())
	}
}

func TestDefaultCollection_IsUsable(t *testing.T) {
	defaults := DefaultCollection()
	require.NotEmpty(t, defaults)
	ids := map[string]bool{}
	for _, rec := range defaults {
		assert.NotEmpty(t, rec.SpintaxM, rec.ID)
		assert.True(t, rec.IsSectionAgnostic(), rec.ID)
		assert.False(t, ids[rec.ID], "duplicate id %s", rec.ID)
		ids[rec.ID] = true
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyWildcard, p)

	p, err = ParsePolicy(" Strict ")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)
	assert.Equal(t, "strict", p.String())

	_, err = ParsePolicy("loose")
	assert.Error(t, err)
}

func TestSections(t *testing.T) {
	assert.Equal(t, models.Structure{"Anamnese", "Begründung"}, Sections(library()))
	assert.Equal(t, models.Structure{"Antrag"}, Sections(nil))
	assert.Equal(t, models.Structure{"Antrag"}, Sections(models.Collection{{ID: "x"}}))
}

func TestSuggest(t *testing.T) {
	records := library()

	assert.Nil(t, Suggest(records, "d", 5), "single character")
	assert.Equal(t, []string{"d"}, Suggest(records, "DIA", 5).IDs(), "shortcut prefix, case-insensitive")
	assert.Equal(t, []string{"a"}, Suggest(records, "gesch", 5).IDs(), "title substring")
	assert.Empty(t, Suggest(records, "nw", 5).IDs(), "shortcut must be a prefix")
	assert.Equal(t, []string{"c"}, Suggest(records, "notw", 5).IDs())
}

func TestSuggest_Limit(t *testing.T) {
	var records models.Collection
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		records = append(records, models.Record{ID: id, Name: "Satz " + id})
	}
	assert.Len(t, Suggest(records, "satz", 0), DefaultSuggestLimit)
	assert.Equal(t, []string{"1", "2"}, Suggest(records, "satz", 2).IDs())
}

func TestLastWord(t *testing.T) {
	assert.Equal(t, "Kost", LastWord("Ich beantrage die Kost"))
	assert.Equal(t, "", LastWord("Ich beantrage "))
	assert.Equal(t, "", LastWord(""))
	assert.Equal(t, "med", LastWord("Zeile\nmed"))
	assert.Equal(t, "vg", LastWord("a vg"))
}
