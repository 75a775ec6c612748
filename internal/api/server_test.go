package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/quick-hb/internal/service"
)

type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Message  string          `json:"message"`
	Warnings []string        `json:"warnings"`
	Error    struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	t.Setenv("QUICK_HB_DIR", t.TempDir())
	t.Setenv("QUICK_HB_GENDER", "")
	t.Setenv("QUICK_HB_SECTION_POLICY", "strict")
	t.Setenv("QUICK_HB_PORT", "")

	svc, err := service.NewService()
	require.NoError(t, err)
	require.NoError(t, svc.InitLibrary())
	return NewAPIServer(svc, 8080).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func createRecords(t *testing.T, h http.Handler) {
	t.Helper()
	for _, body := range []string{
		`{"id": "anrede", "section": "Antrag", "title": "Anrede", "spintax_m": "Sehr geehrter Herr [Name],", "spintax_w": "Sehr geehrte Frau [Name],"}`,
		`{"id": "bitte", "section": "Antrag", "title": "Bitte", "shortcut": "bit", "spintax_m": "Wir bitten um {Prüfung|Genehmigung}."}`,
	} {
		code, env := do(t, h, http.MethodPost, "/api/v1/records", body)
		require.Equal(t, http.StatusCreated, code, env.Error.Message)
	}
}

func TestRecordsCRUD(t *testing.T) {
	h := newTestServer(t)
	createRecords(t, h)

	code, env := do(t, h, http.MethodGet, "/api/v1/records", "")
	require.Equal(t, http.StatusOK, code)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "anrede", records[0]["id"])

	code, env = do(t, h, http.MethodPost, "/api/v1/records", `{"id": "anrede", "spintax_m": "x"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)

	code, env = do(t, h, http.MethodPost, "/api/v1/records", `{"id": "leer"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "MISSING_FIELD", env.Error.Code)

	code, env = do(t, h, http.MethodPut, "/api/v1/records/bitte", `{"section": "Antrag", "spintax_m": "{offen"}`)
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	assert.NotEmpty(t, env.Warnings)

	code, _ = do(t, h, http.MethodDelete, "/api/v1/records/bitte", "")
	assert.Equal(t, http.StatusOK, code)
	code, env = do(t, h, http.MethodGet, "/api/v1/records/bitte", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestSpinEndpoints(t *testing.T) {
	h := newTestServer(t)
	createRecords(t, h)
	code, _ := do(t, h, http.MethodPut, "/api/v1/variables", `{"name": "Name", "value": "Schmidt"}`)
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, h, http.MethodGet, "/api/v1/records/anrede/spin?gender=w", "")
	require.Equal(t, http.StatusOK, code)
	var spin SpinResult
	require.NoError(t, json.Unmarshal(env.Data, &spin))
	assert.Equal(t, "Sehr geehrte Frau Schmidt,", spin.Text)

	code, env = do(t, h, http.MethodPost, "/api/v1/spin", `{"text": "{Hallo} [Name]"}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &spin))
	assert.Equal(t, "Hallo Schmidt", spin.Text)

	code, _ = do(t, h, http.MethodGet, "/api/v1/records/anrede/spin?gender=x", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodGet, "/api/v1/records/fehlt/spin", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, env = do(t, h, http.MethodGet, "/api/v1/records/bitte/variants?limit=1", "")
	require.Equal(t, http.StatusOK, code)
	var variants struct {
		Total    int      `json:"total"`
		Variants []string `json:"variants"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &variants))
	assert.Equal(t, 2, variants.Total)
	assert.Equal(t, []string{"Wir bitten um Prüfung."}, variants.Variants)
}

func TestVariantsLimitDefaults(t *testing.T) {
	h := newTestServer(t)
	body := `{"id": "lang", "title": "Lang", "spintax_m": "` + strings.Repeat("{a|b}", 40) + `"}`
	code, env := do(t, h, http.MethodPost, "/api/v1/records", body)
	require.Equal(t, http.StatusCreated, code, env.Error.Message)

	var variants struct {
		Total    int      `json:"total"`
		Variants []string `json:"variants"`
	}
	for _, target := range []string{"/api/v1/records/lang/variants", "/api/v1/records/lang/variants?limit=0"} {
		code, env = do(t, h, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, code, env.Error.Message)
		require.NoError(t, json.Unmarshal(env.Data, &variants))
		assert.Equal(t, 1<<40, variants.Total, target)
		assert.Len(t, variants.Variants, 100, target)
	}

	code, _ = do(t, h, http.MethodGet, "/api/v1/records/lang/variants?limit=20000", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSearchAndSuggest(t *testing.T) {
	h := newTestServer(t)
	createRecords(t, h)

	code, env := do(t, h, http.MethodGet, "/api/v1/suggest?word=bi", "")
	require.Equal(t, http.StatusOK, code)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "bitte", records[0]["id"])

	code, _ = do(t, h, http.MethodGet, "/api/v1/search", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = do(t, h, http.MethodGet, "/api/v1/search?q=Anrede", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &records))
	assert.NotEmpty(t, records)
}

func TestDocumentFlow(t *testing.T) {
	h := newTestServer(t)
	createRecords(t, h)
	do(t, h, http.MethodPut, "/api/v1/variables", `{"Name": "Schmidt"}`)

	code, env := do(t, h, http.MethodPut, "/api/v1/structure", `{"sections": ["Antrag", "Schluss"]}`)
	require.Equal(t, http.StatusOK, code, env.Error.Message)

	code, _ = do(t, h, http.MethodPost, "/api/v1/draft", `{"section": "Antrag", "id": "anrede"}`)
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, h, http.MethodGet, "/api/v1/document?format=text&numbered=false&gender=m", "")
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	var doc struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	// Schluss has no strict candidates, so the whole collection applies
	assert.True(t, strings.HasPrefix(doc.Text, "Antrag\n\nSehr geehrter Herr Schmidt,\n\nSchluss\n\n"), doc.Text)

	code, env = do(t, h, http.MethodGet, "/api/v1/document", "")
	require.Equal(t, http.StatusOK, code)
	var full struct {
		Sections []struct {
			Header string `json:"header"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &full))
	assert.Len(t, full.Sections, 2)

	code, env = do(t, h, http.MethodGet, "/api/v1/document?format=html&numbered=false&gender=m", "")
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Contains(t, doc.Text, `Sehr geehrter Herr <span title="siehe Tabelle [Name]" class="quick-variable" data-name="Name">Schmidt</span>,`)

	code, _ = do(t, h, http.MethodGet, "/api/v1/document?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodDelete, "/api/v1/draft", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestHealthAndDocs(t *testing.T) {
	h := newTestServer(t)

	code, env := do(t, h, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	req := httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	paths := doc["paths"].(map[string]interface{})
	assert.Contains(t, paths, "/records/{id}/spin")
	assert.Contains(t, paths, "/document")

	code, _ = do(t, h, http.MethodPatch, "/api/v1/records", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}
