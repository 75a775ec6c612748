package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/quick-hb/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.InitLibrary())
	return s
}

func TestRecordPath(t *testing.T) {
	assert.Equal(t, filepath.Join("records", "sach_007.yaml"), RecordPath("sach_007"))
	assert.Equal(t, filepath.Join("records", "a_b.yaml"), RecordPath("a/b"))
	assert.True(t, strings.HasPrefix(RecordPath("///"), filepath.Join("records", "record-")))
}

func TestSaveLoadRecord_RoundTripsAllFields(t *testing.T) {
	s := newTestStorage(t)
	rec := &models.Record{
		ID:       "sach_007",
		Section:  "Antrag",
		Category: "Einleitung",
		Name:     "Kostenübernahme",
		Shortcut: "ku",
		SpintaxM: "Der {Antragsteller|Versicherte} [Name]",
		SpintaxW: "Die {Antragstellerin|Versicherte} [Name]",
		SpintaxP: "Die {Antragsteller|Versicherten}",
		Position: 3,
	}
	require.NoError(t, s.SaveRecord(rec))
	assert.Equal(t, filepath.Join("records", "sach_007.yaml"), rec.FilePath)

	loaded, err := s.LoadRecord(rec.FilePath)
	require.NoError(t, err)
	assert.Equal(t, *rec, *loaded)
}

func TestListRecords_OrderAndCache(t *testing.T) {
	s := newTestStorage(t)
	for _, rec := range []models.Record{
		{ID: "z", Position: 1, SpintaxM: "erster"},
		{ID: "a", Position: 2, SpintaxM: "zweiter"},
		{ID: "m", SpintaxM: "ohne Position"},
	} {
		require.NoError(t, s.SaveRecord(&rec))
	}

	records, err := s.ListRecords()
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, records.IDs())
	assert.Equal(t, 3, s.cache.Len())

	// A second storage on the same root reads from the persisted cache
	s2, err := NewStorage(s.GetBaseDir())
	require.NoError(t, err)
	assert.Equal(t, 3, s2.cache.Len())
	again, err := s2.ListRecords()
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestListRecords_SkipsBrokenFiles(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.SaveRecord(&models.Record{ID: "ok", SpintaxM: "x"}))
	broken := filepath.Join(s.GetBaseDir(), "records", "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("id: [unclosed"), 0644))
	noID := filepath.Join(s.GetBaseDir(), "records", "noid.yaml")
	require.NoError(t, os.WriteFile(noID, []byte("title: ohne id\n"), 0644))

	records, err := s.ListRecords()
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, records.IDs())
}

func TestListRecords_EmptyLibrary(t *testing.T) {
	s, err := NewStorage(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	records, err := s.ListRecords()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteRecord(t *testing.T) {
	s := newTestStorage(t)
	rec := &models.Record{ID: "weg", SpintaxM: "x"}
	require.NoError(t, s.SaveRecord(rec))
	_, err := s.ListRecords()
	require.NoError(t, err)

	require.NoError(t, s.DeleteRecord(rec))
	records, err := s.ListRecords()
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, s.cache.Len())

	assert.Error(t, s.DeleteRecord(rec))
}

func TestVariablesStructureDraft(t *testing.T) {
	s := newTestStorage(t)

	vars, err := s.LoadVariables()
	require.NoError(t, err)
	assert.Empty(t, vars)
	require.NoError(t, s.SaveVariables(models.VariableMap{"Name": "Schmidt"}))
	vars, err = s.LoadVariables()
	require.NoError(t, err)
	assert.Equal(t, models.VariableMap{"Name": "Schmidt"}, vars)

	structure, err := s.LoadStructure()
	require.NoError(t, err)
	assert.Nil(t, structure)
	require.NoError(t, s.SaveStructure(models.Structure{"Anamnese", "Antrag"}))
	structure, err = s.LoadStructure()
	require.NoError(t, err)
	assert.Equal(t, models.Structure{"Anamnese", "Antrag"}, structure)

	draft, err := s.LoadDraft()
	require.NoError(t, err)
	assert.Empty(t, draft.PicksFor("Antrag"))
	draft.Gender = models.Feminine
	draft.Pick("Antrag", "b")
	draft.Pick("Antrag", "a")
	require.NoError(t, s.SaveDraft(draft))
	draft, err = s.LoadDraft()
	require.NoError(t, err)
	assert.Equal(t, models.Feminine, draft.Gender)
	assert.Equal(t, []string{"b", "a"}, draft.PicksFor("Antrag"))
}

const legacyExport = `[
  {"id": "sach_001", "section": "Antrag", "category": "", "title": "Einleitung", "shortcut": "ein",
   "spintax_m": "{Hiermit|Mit diesem Schreiben} beantrage ich", "spintax_w": "", "spintax_p": ""},
  {"id": "", "title": "ohne id"},
  {"id": "sach_002", "section": "", "title": "Gruß", "shortcut": "mfg",
   "spintax_m": "Mit freundlichen Grüßen", "spintax_w": "Mit freundlichen Grüßen", "spintax_p": "Mit freundlichen Grüßen"},
  {"id": "sach_001", "section": "Antrag", "title": "Einleitung neu", "spintax_m": "Hiermit"}
]`

func TestDecodeLegacyJSON(t *testing.T) {
	records, err := DecodeLegacyJSON(strings.NewReader(legacyExport))
	require.NoError(t, err)
	require.Equal(t, []string{"sach_001", "sach_002"}, records.IDs())
	assert.Equal(t, "Einleitung neu", records[0].Name)
	assert.Equal(t, "Mit freundlichen Grüßen", records[1].SpintaxP)

	_, err = DecodeLegacyJSON(strings.NewReader(`{"id": 1}`))
	assert.Error(t, err)
}

func TestImportExportJSON(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.SaveRecord(&models.Record{ID: "alt", Position: 1, SpintaxM: "alt"}))

	n, err := s.ImportJSON(strings.NewReader(legacyExport))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := s.ListRecords()
	require.NoError(t, err)
	assert.Equal(t, []string{"alt", "sach_001", "sach_002"}, records.IDs())

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(&buf))
	exported := buf.String()
	assert.NotContains(t, exported, "position")
	again, err := DecodeLegacyJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, records.IDs(), again.IDs())
	assert.Equal(t, "Mit freundlichen Grüßen", again[2].SpintaxP)

	// Re-importing keeps positions of known records
	_, err = s.ImportJSON(strings.NewReader(legacyExport))
	require.NoError(t, err)
	records, err = s.ListRecords()
	require.NoError(t, err)
	assert.Equal(t, []string{"alt", "sach_001", "sach_002"}, records.IDs())
}

func TestEncodeLegacyJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeLegacyJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
