package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dpshade/quick-hb/internal/clipboard"
	"github.com/dpshade/quick-hb/internal/compiler"
	"github.com/dpshade/quick-hb/internal/errors"
	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/renderer"
	"github.com/dpshade/quick-hb/internal/selector"
	"github.com/dpshade/quick-hb/internal/service"
)

// CLI provides headless command-line interface functionality
type CLI struct {
	service *service.Service
	out     io.Writer
	copy    func(string) (string, error)
}

// NewCLI creates a new CLI instance writing to stdout
func NewCLI(svc *service.Service) *CLI {
	return &CLI{
		service: svc,
		out:     os.Stdout,
		copy:    clipboard.CopyWithFallback,
	}
}

// SetOutput redirects command output
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// ExecuteCommand processes a CLI command and returns the result
func (c *CLI) ExecuteCommand(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "list", "ls":
		return c.listRecords(commandArgs)
	case "get", "show":
		return c.showRecord(commandArgs)
	case "search":
		return c.searchRecords(commandArgs)
	case "suggest":
		return c.suggest(commandArgs)
	case "spin":
		return c.spin(commandArgs)
	case "variants":
		return c.variants(commandArgs)
	case "vars":
		return c.listVariables(commandArgs)
	case "set":
		return c.setVariables(commandArgs)
	case "sections":
		return c.handleSections(commandArgs)
	case "pick":
		return c.pick(commandArgs)
	case "draft":
		return c.handleDraft(commandArgs)
	case "compile":
		return c.compile(commandArgs)
	case "add", "new":
		return c.addRecord(commandArgs)
	case "edit":
		return c.editRecord(commandArgs)
	case "delete", "rm":
		return c.deleteRecord(commandArgs)
	case "import":
		return c.handleImport(commandArgs)
	case "export":
		return c.handleExport(commandArgs)
	case "stats":
		return c.stats(commandArgs)
	case "sync":
		return c.handleSync(commandArgs)
	case "help":
		return c.printHelp(commandArgs)
	default:
		return errors.CommandNotFoundError(command)
	}
}

// flags holds the parsed options of one command
type flags struct {
	values map[string]string
	bools  map[string]bool
	args   []string
}

// parseFlags splits args into positionals, valued options and switches.
// valued lists the options taking a value, with their short aliases.
func parseFlags(args []string, valued map[string]string, switches map[string]string) flags {
	f := flags{values: map[string]string{}, bools: map[string]bool{}}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if name, ok := valued[arg]; ok {
			if i+1 < len(args) {
				f.values[name] = args[i+1]
				i++
			}
			continue
		}
		if name, ok := switches[arg]; ok {
			f.bools[name] = true
			continue
		}
		f.args = append(f.args, arg)
	}
	return f
}

func (c *CLI) gender(f flags) (models.Gender, error) {
	if g := f.values["gender"]; g != "" {
		return models.ParseGender(g)
	}
	return c.service.DefaultGender(), nil
}

func (c *CLI) limit(f flags, def int) (int, error) {
	s := f.values["limit"]
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit: %s", s)
	}
	return n, nil
}

var (
	formatFlag = map[string]string{"--format": "format", "-f": "format"}
	genderFlag = map[string]string{"--gender": "gender", "-g": "gender"}
)

func merge(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// listRecords lists all records, optionally only one section's candidates
func (c *CLI) listRecords(args []string) error {
	f := parseFlags(args, merge(formatFlag, map[string]string{"--section": "section", "-s": "section"}), nil)

	var records models.Collection
	var err error
	if section, ok := f.values["section"]; ok {
		records, err = c.service.Sections(section)
	} else {
		records, err = c.service.ListRecords()
	}
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	return c.formatOutput(records, f.values["format"])
}

// showRecord displays a specific record
func (c *CLI) showRecord(args []string) error {
	f := parseFlags(args, formatFlag, nil)
	if len(f.args) == 0 {
		return fmt.Errorf("show requires a record ID")
	}

	rec, err := c.service.GetRecord(f.args[0])
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}

	return c.formatSingleRecord(rec, f.values["format"])
}

// searchRecords runs a fuzzy search over the library
func (c *CLI) searchRecords(args []string) error {
	f := parseFlags(args, formatFlag, nil)
	if len(f.args) == 0 {
		return fmt.Errorf("search requires a query")
	}

	records, err := c.service.SearchRecords(strings.Join(f.args, " "))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return c.formatOutput(records, f.values["format"])
}

// suggest applies the editor's autocomplete rule to the last word typed
func (c *CLI) suggest(args []string) error {
	f := parseFlags(args, merge(formatFlag, map[string]string{"--limit": "limit", "-n": "limit"}), nil)
	if len(f.args) == 0 {
		return fmt.Errorf("suggest requires a word")
	}
	limit, err := c.limit(f, 0)
	if err != nil {
		return err
	}

	records, err := c.service.Suggest(selector.LastWord(strings.Join(f.args, " ")), limit)
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}
	return c.formatOutput(records, f.values["format"])
}

// spin prints random resolutions of a record or an ad-hoc template
func (c *CLI) spin(args []string) error {
	f := parseFlags(args, merge(genderFlag, map[string]string{
		"--text":  "text",
		"-t":      "text",
		"--count": "count",
		"-n":      "count",
	}), nil)

	gender, err := c.gender(f)
	if err != nil {
		return err
	}
	count := 1
	if s := f.values["count"]; s != "" {
		if count, err = strconv.Atoi(s); err != nil || count < 1 {
			return fmt.Errorf("invalid count: %s", s)
		}
	}

	text, hasText := f.values["text"]
	if !hasText && len(f.args) == 0 {
		return fmt.Errorf("spin requires a record ID or --text")
	}

	for i := 0; i < count; i++ {
		var out string
		if hasText {
			out, err = c.service.SpinText(text, gender)
		} else {
			out, err = c.service.Spin(f.args[0], gender)
		}
		if err != nil {
			return fmt.Errorf("spin failed: %w", err)
		}
		fmt.Fprintln(c.out, out)
	}
	return nil
}

// variants lists the resolutions of a record in enumeration order
func (c *CLI) variants(args []string) error {
	f := parseFlags(args, merge(genderFlag, formatFlag, map[string]string{"--limit": "limit", "-n": "limit"}), nil)
	if len(f.args) == 0 {
		return fmt.Errorf("variants requires a record ID")
	}
	gender, err := c.gender(f)
	if err != nil {
		return err
	}
	limit, err := c.limit(f, 20)
	if err != nil {
		return err
	}

	texts, total, err := c.service.Variants(f.args[0], gender, limit)
	if err != nil {
		return fmt.Errorf("failed to enumerate variants: %w", err)
	}

	if f.values["format"] == "json" {
		return c.writeJSON(map[string]interface{}{
			"id":       f.args[0],
			"gender":   gender,
			"total":    total,
			"variants": texts,
		})
	}

	for i, text := range texts {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, text)
	}
	if total > len(texts) {
		fmt.Fprintf(c.out, "... %d of %d variants shown\n", len(texts), total)
	}
	return nil
}

// listVariables shows every placeholder of the library with its value
func (c *CLI) listVariables(args []string) error {
	f := parseFlags(args, merge(genderFlag, formatFlag), nil)
	gender, err := c.gender(f)
	if err != nil {
		return err
	}

	names, err := c.service.DiscoverVariables(gender)
	if err != nil {
		return fmt.Errorf("failed to discover variables: %w", err)
	}
	vars, err := c.service.Variables()
	if err != nil {
		return fmt.Errorf("failed to load variables: %w", err)
	}

	if f.values["format"] == "json" {
		out := make(map[string]string, len(names))
		for _, name := range names {
			out[name] = vars[name]
		}
		return c.writeJSON(out)
	}

	for _, name := range names {
		if value, ok := vars.Lookup(name); ok {
			fmt.Fprintf(c.out, "%-20s %s\n", name, value)
		} else {
			fmt.Fprintf(c.out, "%-20s (leer)\n", name)
		}
	}
	return nil
}

// setVariables stores name=value pairs
func (c *CLI) setVariables(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("set requires name=value pairs")
	}
	for _, pair := range args {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid assignment %q (use name=value)", pair)
		}
		if err := c.service.SetVariable(strings.TrimSpace(name), value); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
		fmt.Fprintf(c.out, "Set %s\n", strings.TrimSpace(name))
	}
	return nil
}

// handleSections shows or replaces the document structure
func (c *CLI) handleSections(args []string) error {
	f := parseFlags(args, map[string]string{"--set": "set"}, map[string]string{"--reset": "reset"})

	var structure models.Structure
	var err error
	switch {
	case f.bools["reset"]:
		structure, err = c.service.SetStructure(nil)
	case f.values["set"] != "":
		structure, err = c.service.SetStructure(strings.Split(f.values["set"], ","))
	default:
		structure, err = c.service.Structure()
	}
	if err != nil {
		return fmt.Errorf("failed to update sections: %w", err)
	}

	for i, header := range structure {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, header)
	}
	return nil
}

// pick inserts a record into a section of the draft
func (c *CLI) pick(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("pick requires a section and a record ID")
	}
	if err := c.service.PickRecord(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to pick record: %w", err)
	}
	fmt.Fprintf(c.out, "Picked %s for %s\n", args[1], args[0])
	return nil
}

// handleDraft shows or clears the record picks
func (c *CLI) handleDraft(args []string) error {
	if len(args) > 0 {
		if args[0] != "clear" {
			return errors.InvalidCommandError("draft "+args[0], "expected 'draft' or 'draft clear'")
		}
		if err := c.service.ClearDraft(); err != nil {
			return fmt.Errorf("failed to clear draft: %w", err)
		}
		fmt.Fprintln(c.out, "Draft cleared")
		return nil
	}

	draft, err := c.service.Draft()
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}
	structure, err := c.service.Structure()
	if err != nil {
		return err
	}
	for _, header := range structure {
		ids := draft.PicksFor(header)
		if len(ids) == 0 {
			fmt.Fprintf(c.out, "%s: (alle Kandidaten)\n", header)
			continue
		}
		fmt.Fprintf(c.out, "%s: %s\n", header, strings.Join(ids, ", "))
	}
	return nil
}

// compile renders the whole document
func (c *CLI) compile(args []string) error {
	f := parseFlags(args,
		merge(genderFlag, formatFlag, map[string]string{"--output": "output", "-o": "output"}),
		map[string]string{
			"--numbered":   "numbered",
			"--no-numbers": "plain",
			"--copy":       "copy",
			"-c":           "copy",
			"--pretty":     "pretty",
		})

	gender, err := c.gender(f)
	if err != nil {
		return err
	}
	opts := compiler.Options{Numbered: c.service.Config().NumberedHeaders}
	if f.bools["numbered"] {
		opts.Numbered = true
	}
	if f.bools["plain"] {
		opts.Numbered = false
	}

	format := f.values["format"]
	content, err := c.service.CompileDocument(gender, format, opts)
	if err != nil {
		return fmt.Errorf("failed to compile document: %w", err)
	}

	if output := f.values["output"]; output != "" {
		if err := os.WriteFile(output, []byte(content+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Fprintf(c.out, "Wrote %s\n", output)
	} else if f.bools["pretty"] && format == service.FormatMarkdown {
		fmt.Fprint(c.out, renderer.RenderTerminal(content, 80))
	} else {
		fmt.Fprintln(c.out, content)
	}

	if f.bools["copy"] {
		if statusMsg, err := c.copy(content); err != nil {
			// Print the helpful error message and continue without failing
			fmt.Fprintf(c.out, "Warning: %v\n", err)
			fmt.Fprintln(c.out, "Document compiled but not copied to clipboard.")
		} else {
			fmt.Fprintln(c.out, statusMsg)
		}
	}
	return nil
}

var recordFlags = map[string]string{
	"--title":    "title",
	"--section":  "section",
	"--category": "category",
	"--shortcut": "shortcut",
	"--m":        "m",
	"--w":        "w",
	"--p":        "p",
}

func applyRecordFlags(rec *models.Record, f flags) {
	for name, value := range f.values {
		switch name {
		case "title":
			rec.Name = value
		case "section":
			rec.Section = value
		case "category":
			rec.Category = value
		case "shortcut":
			rec.Shortcut = value
		case "m":
			rec.SpintaxM = value
		case "w":
			rec.SpintaxW = value
		case "p":
			rec.SpintaxP = value
		}
	}
}

func (c *CLI) printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(c.out, "Warning: %s\n", w)
	}
}

// addRecord creates a new record
func (c *CLI) addRecord(args []string) error {
	f := parseFlags(args, recordFlags, nil)
	if len(f.args) == 0 {
		return fmt.Errorf("add requires a record ID")
	}

	rec := &models.Record{ID: f.args[0]}
	applyRecordFlags(rec, f)

	warnings, err := c.service.AddRecord(rec)
	if err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}
	c.printWarnings(warnings)
	fmt.Fprintf(c.out, "Added record: %s\n", rec.ID)
	return nil
}

// editRecord updates fields of an existing record
func (c *CLI) editRecord(args []string) error {
	f := parseFlags(args, recordFlags, nil)
	if len(f.args) == 0 {
		return fmt.Errorf("edit requires a record ID")
	}

	rec, err := c.service.GetRecord(f.args[0])
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	applyRecordFlags(rec, f)

	warnings, err := c.service.UpdateRecord(rec)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	c.printWarnings(warnings)
	fmt.Fprintf(c.out, "Updated record: %s\n", rec.ID)
	return nil
}

// deleteRecord deletes a record
func (c *CLI) deleteRecord(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("delete requires a record ID")
	}
	if err := c.service.DeleteRecord(args[0]); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	fmt.Fprintf(c.out, "Deleted record: %s\n", args[0])
	return nil
}

// handleImport imports a legacy JSON export
func (c *CLI) handleImport(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("import requires a file path\n\nUsage:\n  quick-hb import <data.json>\n  quick-hb import -   # read from stdin")
	}

	var r io.Reader = os.Stdin
	if args[0] != "-" {
		file, err := os.Open(args[0])
		if os.IsNotExist(err) {
			return errors.FileNotFoundError(args[0], err)
		}
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer file.Close()
		r = file
	}

	n, err := c.service.Import(r)
	if err != nil {
		return fmt.Errorf("import failed after %d records: %w", n, err)
	}
	fmt.Fprintf(c.out, "Imported %d records\n", n)
	return nil
}

// handleExport writes the library in the legacy JSON format
func (c *CLI) handleExport(args []string) error {
	f := parseFlags(args, map[string]string{"--output": "output", "-o": "output"}, nil)

	output := f.values["output"]
	if output == "" {
		return c.service.Export(c.out)
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := c.service.Export(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(c.out, "Exported to %s\n", output)
	return nil
}

// stats prints a summary of the library
func (c *CLI) stats(args []string) error {
	f := parseFlags(args, merge(genderFlag, formatFlag), nil)
	gender, err := c.gender(f)
	if err != nil {
		return err
	}
	st, err := c.service.Stats(gender)
	if err != nil {
		return err
	}
	if f.values["format"] == "json" {
		return c.writeJSON(st)
	}
	fmt.Fprintf(c.out, "Library:  %s\n", c.service.BaseDir())
	fmt.Fprintf(c.out, "Records:  %d\n", st.Records)
	fmt.Fprintf(c.out, "Sections: %d\n", st.Sections)
	fmt.Fprintf(c.out, "Variants: %d (%s)\n", st.Variants, gender.Label())
	return nil
}

// handleSync manages the git history of the library
func (c *CLI) handleSync(args []string) error {
	ctx := context.Background()
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "init":
		if err := c.service.InitSync(ctx); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Initialized git repository in %s\n", c.service.BaseDir())
	case "status":
		status, err := c.service.SyncStatus(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, status)
	case "pull":
		if err := c.service.PullChanges(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Library up to date")
	default:
		message := strings.Join(args, " ")
		if message == "" {
			message = "Update library"
		}
		if err := c.service.Sync(ctx, message); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Library synced")
	}
	return nil
}

func (c *CLI) writeJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatOutput formats records for output
func (c *CLI) formatOutput(records models.Collection, format string) error {
	switch format {
	case "json":
		if records == nil {
			records = models.Collection{}
		}
		return c.writeJSON(records)
	case "ids":
		for _, r := range records {
			fmt.Fprintln(c.out, r.ID)
		}
	case "table":
		fmt.Fprintf(c.out, "%-20s %-30s %-20s %s\n", "ID", "Title", "Section", "Shortcut")
		fmt.Fprintln(c.out, strings.Repeat("-", 80))
		for _, r := range records {
			title := []rune(r.Name)
			if len(title) > 30 {
				title = append(title[:27], []rune("...")...)
			}
			fmt.Fprintf(c.out, "%-20s %-30s %-20s %s\n", r.ID, string(title), r.Section, r.Shortcut)
		}
	default:
		for _, r := range records {
			fmt.Fprintf(c.out, "%s - %s\n", r.ID, r.Title())
			fmt.Fprintf(c.out, "  %s\n\n", r.Description())
		}
	}
	return nil
}

// formatSingleRecord formats a single record for output
func (c *CLI) formatSingleRecord(rec *models.Record, format string) error {
	switch format {
	case "json":
		return c.writeJSON(rec)
	default:
		fmt.Fprintf(c.out, "ID: %s\n", rec.ID)
		fmt.Fprintf(c.out, "Title: %s\n", rec.Name)
		if rec.Section != "" {
			fmt.Fprintf(c.out, "Section: %s\n", rec.Section)
		}
		if rec.Category != "" {
			fmt.Fprintf(c.out, "Category: %s\n", rec.Category)
		}
		if rec.Shortcut != "" {
			fmt.Fprintf(c.out, "Shortcut: %s\n", rec.Shortcut)
		}
		if !rec.UpdatedAt.IsZero() {
			fmt.Fprintf(c.out, "Updated: %s\n", rec.UpdatedAt.Format("2006-01-02 15:04"))
		}
		variants := c.service.CountVariants(rec.Template(models.Masculine))
		if rec.SpintaxW != "" {
			fmt.Fprintf(c.out, "Variants: %d (m), %d (w)\n", variants, c.service.CountVariants(rec.Template(models.Feminine)))
		} else {
			fmt.Fprintf(c.out, "Variants: %d\n", variants)
		}
		fmt.Fprintf(c.out, "\nMännlich:\n%s\n", rec.SpintaxM)
		if rec.SpintaxW != "" {
			fmt.Fprintf(c.out, "\nWeiblich:\n%s\n", rec.SpintaxW)
		}
	}
	return nil
}

func (c *CLI) printUsage() error {
	fmt.Fprintln(c.out, `quick-hb - Headless CLI mode

Usage: quick-hb <command> [options]

Commands:
  list, ls              List all records
  get, show <id>        Show a specific record
  search <query>        Fuzzy search records
  suggest <word>        Autocomplete suggestions for a typed word
  spin <id>             Resolve a random variant of a record
  variants <id>         Enumerate all variants of a record
  vars                  List placeholders and their values
  set <name>=<value>    Set variable values
  sections              Show or edit the document structure
  pick <section> <id>   Insert a record into a section
  draft                 Show or clear the record picks
  compile               Compile the whole document
  add, new <id>         Add a record
  edit <id>             Edit a record
  delete, rm <id>       Delete a record
  import <file>         Import a legacy data.json export
  export                Export records as legacy JSON
  stats                 Library summary
  sync [init|status|pull|<message>]  Git history of the library
  help                  Show help

Use 'quick-hb help <command>' for detailed help on a specific command.`)
	return nil
}

func (c *CLI) printHelp(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	switch args[0] {
	case "list", "ls":
		fmt.Fprintln(c.out, `list - List all records

Usage: quick-hb list [options]

Options:
  --format, -f <format>   Output format (table, json, ids, default)
  --section, -s <header>  Only records that may appear under a section`)

	case "spin":
		fmt.Fprintln(c.out, `spin - Resolve random variants

Usage: quick-hb spin <id> [options]
       quick-hb spin --text "<template>" [options]

Options:
  --gender, -g <m|w>   Gender variant (default from draft or config)
  --count, -n <n>      Number of resolutions to print
  --text, -t <text>    Resolve an ad-hoc template instead of a record

Example:
  quick-hb spin --text "{Sehr geehrte|Liebe} [Name]" -n 3`)

	case "variants":
		fmt.Fprintln(c.out, `variants - Enumerate all variants of a record

Usage: quick-hb variants <id> [options]

Options:
  --gender, -g <m|w>     Gender variant
  --limit, -n <n>        Maximum variants to print (0 for all, default 20)
  --format, -f json      JSON output with the total count`)

	case "compile":
		fmt.Fprintln(c.out, `compile - Compile the whole document

Usage: quick-hb compile [options]

Options:
  --gender, -g <m|w>       Gender variant
  --format, -f <format>    text, markdown, json or html (placeholders marked for the editor)
  --numbered               Number the section headers
  --no-numbers             Plain section headers
  --pretty                 Render markdown for the terminal
  --output, -o <file>      Write to a file
  --copy, -c               Copy the result to the clipboard`)

	case "add", "new", "edit":
		fmt.Fprintln(c.out, `add / edit - Create or change a record

Usage: quick-hb add <id> [options]
       quick-hb edit <id> [options]

Options:
  --title <title>        Display title
  --section <header>     Section label (empty: usable in every section)
  --category <name>      Category
  --shortcut <word>      Autocomplete shortcut
  --m <spintax>          Masculine template
  --w <spintax>          Feminine template
  --p <spintax>          Plural template (stored only)

Example:
  quick-hb add gruss --title "Gruß" --m "{Mit freundlichen Grüßen|Freundliche Grüße}"`)

	case "sections":
		fmt.Fprintln(c.out, `sections - Show or edit the document structure

Usage: quick-hb sections [--set A,B,C] [--reset]

Without options the current structure is printed. --reset returns to the
structure derived from the record sections.`)

	case "sync":
		fmt.Fprintln(c.out, `sync - Keep the library under git

Usage: quick-hb sync init        Create a repository and commit the library
       quick-hb sync status      Show the repository state
       quick-hb sync pull        Merge remote changes
       quick-hb sync [message]   Commit pending changes and push

With git_sync: true in config.yaml (or QUICK_HB_GIT_SYNC=1) every record
change is committed automatically.`)

	default:
		return fmt.Errorf("no help available for command: %s", args[0])
	}
	return nil
}
