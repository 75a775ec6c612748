package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/quick-hb/internal/errors"
	"github.com/dpshade/quick-hb/internal/service"
)

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("QUICK_HB_DIR", t.TempDir())
	t.Setenv("QUICK_HB_GENDER", "")
	t.Setenv("QUICK_HB_SECTION_POLICY", "strict")
	t.Setenv("QUICK_HB_PORT", "")
	t.Setenv("QUICK_HB_GIT_SYNC", "")

	svc, err := service.NewService()
	require.NoError(t, err)
	require.NoError(t, svc.InitLibrary())

	c := NewCLI(svc)
	var out bytes.Buffer
	c.SetOutput(&out)
	c.copy = func(string) (string, error) { return "Copied to clipboard!", nil }
	return c, &out
}

func run(t *testing.T, c *CLI, out *bytes.Buffer, args ...string) string {
	t.Helper()
	out.Reset()
	require.NoError(t, c.ExecuteCommand(args))
	return out.String()
}

func seed(t *testing.T, c *CLI, out *bytes.Buffer) {
	t.Helper()
	run(t, c, out, "add", "anrede", "--title", "Anrede", "--section", "Antrag",
		"--m", "Sehr geehrter Herr [Name],", "--w", "Sehr geehrte Frau [Name],")
	run(t, c, out, "add", "bitte", "--title", "Bitte", "--section", "Antrag", "--shortcut", "bit",
		"--m", "wir bitten um {Prüfung|Genehmigung}.")
	run(t, c, out, "add", "befund", "--title", "Befund", "--section", "Befund", "--m", "Befund: [Diagnose]")
}

func TestAddListShow(t *testing.T) {
	c, out := newTestCLI(t)
	seed(t, c, out)

	assert.Equal(t, "anrede\nbitte\nbefund\n", run(t, c, out, "list", "--format", "ids"))
	assert.Equal(t, "befund\n", run(t, c, out, "list", "--section", "Befund", "-f", "ids"))

	shown := run(t, c, out, "show", "bitte")
	assert.Contains(t, shown, "Shortcut: bit")
	assert.Contains(t, shown, "Variants: 2")

	run(t, c, out, "add", "gruss", "--title", "Gruß", "--m", "{Mit freundlichen Grüßen|Hochachtungsvoll}",
		"--w", "{Mit freundlichen Grüßen|Hochachtungsvoll|Beste Grüße}")
	assert.Contains(t, run(t, c, out, "show", "gruss"), "Variants: 2 (m), 3 (w)")

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(run(t, c, out, "list", "-f", "json")), &records))
	assert.Len(t, records, 3)
}

func TestAddReportsWarnings(t *testing.T) {
	c, out := newTestCLI(t)
	got := run(t, c, out, "add", "kaputt", "--m", "{offen")
	assert.Contains(t, got, "Warning:")
	assert.Contains(t, got, "Added record: kaputt")

	err := c.ExecuteCommand([]string{"add", "kaputt", "--m", "x"})
	assert.Error(t, err)
}

func TestSpinAndVariants(t *testing.T) {
	c, out := newTestCLI(t)
	seed(t, c, out)
	run(t, c, out, "set", "Name=Schmidt")

	assert.Equal(t, "Sehr geehrte Frau Schmidt,\n", run(t, c, out, "spin", "anrede", "-g", "w"))
	assert.Equal(t, "a\na\n", run(t, c, out, "spin", "--text", "{a}", "-n", "2"))

	assert.Equal(t, "1. wir bitten um Prüfung.\n2. wir bitten um Genehmigung.\n", run(t, c, out, "variants", "bitte"))
	assert.Equal(t, "1. wir bitten um Prüfung.\n... 1 of 2 variants shown\n", run(t, c, out, "variants", "bitte", "-n", "1"))

	assert.Error(t, c.ExecuteCommand([]string{"spin"}))
	assert.Error(t, c.ExecuteCommand([]string{"spin", "anrede", "-g", "x"}))
}

func TestVarsAndSet(t *testing.T) {
	c, out := newTestCLI(t)
	seed(t, c, out)

	run(t, c, out, "set", "Diagnose=Asthma")
	got := run(t, c, out, "vars")
	assert.Contains(t, got, "Diagnose")
	assert.Contains(t, got, "Asthma")
	assert.Contains(t, got, "(leer)")

	assert.Error(t, c.ExecuteCommand([]string{"set", "ohne-gleich"}))
}

func TestSuggestAndSearch(t *testing.T) {
	c, out := newTestCLI(t)
	seed(t, c, out)

	assert.Equal(t, "bitte\n", run(t, c, out, "suggest", "bi", "-f", "ids"))
	assert.Equal(t, "", run(t, c, out, "suggest", "b", "-f", "ids"))
	assert.Equal(t, "bitte\n", run(t, c, out, "suggest", "Wir bitten um bi", "-f", "ids"))
	assert.Equal(t, "", run(t, c, out, "suggest", "bi ", "-f", "ids"))
	assert.Contains(t, run(t, c, out, "search", "Befund", "-f", "ids"), "befund")
}

func TestSectionsAndCompile(t *testing.T) {
	c, out := newTestCLI(t)
	seed(t, c, out)
	run(t, c, out, "set", "Name=Schmidt", "Diagnose=Asthma")

	assert.Equal(t, "1. Antrag\n2. Befund\n", run(t, c, out, "sections"))
	assert.Equal(t, "1. Befund\n2. Antrag\n", run(t, c, out, "sections", "--set", "Befund, Antrag"))
	assert.Equal(t, "1. Antrag\n2. Befund\n", run(t, c, out, "sections", "--reset"))

	run(t, c, out, "pick", "Antrag", "anrede")
	doc := run(t, c, out, "compile", "--no-numbers", "-g", "m", "--copy")
	assert.Equal(t, "Antrag\n\nSehr geehrter Herr Schmidt,\n\nBefund\n\nBefund: Asthma\nCopied to clipboard!\n", doc)

	path := filepath.Join(t.TempDir(), "antrag.md")
	run(t, c, out, "compile", "-f", "markdown", "-o", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "## 1. Antrag\n\n"))

	run(t, c, out, "draft", "clear")
	assert.Contains(t, run(t, c, out, "draft"), "Antrag: (alle Kandidaten)")
}

func TestImportExport(t *testing.T) {
	c, out := newTestCLI(t)
	seed(t, c, out)

	path := filepath.Join(t.TempDir(), "data.json")
	run(t, c, out, "export", "-o", path)

	other, otherOut := newTestCLI(t)
	assert.Equal(t, "Imported 3 records\n", run(t, other, otherOut, "import", path))
	assert.Equal(t, "anrede\nbitte\nbefund\n", run(t, other, otherOut, "list", "-f", "ids"))
}

func TestDeleteAndUnknownCommand(t *testing.T) {
	c, out := newTestCLI(t)
	seed(t, c, out)

	run(t, c, out, "delete", "bitte")
	assert.Equal(t, "anrede\nbefund\n", run(t, c, out, "list", "-f", "ids"))
	assert.Error(t, c.ExecuteCommand([]string{"show", "bitte"}))
	err := c.ExecuteCommand([]string{"frobnicate"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCommandNotFound, errors.GetAppError(err).Code)

	err = c.ExecuteCommand([]string{"draft", "leeren"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidCommand, errors.GetAppError(err).Code)

	err = c.ExecuteCommand([]string{"import", filepath.Join(t.TempDir(), "fehlt.json")})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetAppError(err).Code)
	assert.Contains(t, run(t, c, out, "help"), "quick-hb <command>")
}

func TestSyncCommitsLibrary(t *testing.T) {
	c, out := newTestCLI(t)

	assert.Equal(t, "Git not initialized\n", run(t, c, out, "sync", "status"))
	assert.Error(t, c.ExecuteCommand([]string{"sync", "first"}))

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "quick-hb test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "quick-hb test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	seed(t, c, out)
	assert.Contains(t, run(t, c, out, "sync", "init"), "Initialized git repository")
	assert.Equal(t, "Committed locally (no remote)\n", run(t, c, out, "sync", "status"))

	run(t, c, out, "delete", "bitte")
	assert.Equal(t, "Uncommitted changes\n", run(t, c, out, "sync", "status"))
	assert.Equal(t, "Library synced\n", run(t, c, out, "sync", "Remove", "bitte"))
	assert.Equal(t, "Committed locally (no remote)\n", run(t, c, out, "sync", "status"))
}
