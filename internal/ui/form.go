package ui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/variables"
)

var (
	umlauts     = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")
	nonIDChars  = regexp.MustCompile(`[^a-z0-9]+`)
	maxIDLength = 50
)

// generateIDFromTitle creates a file-safe record id from a title
func generateIDFromTitle(title string) string {
	id := umlauts.Replace(strings.ToLower(title))
	id = strings.Trim(nonIDChars.ReplaceAllString(id, "-"), "-")
	if id == "" {
		return "baustein"
	}
	if len(id) > maxIDLength {
		id = strings.TrimSuffix(id[:maxIDLength], "-")
	}
	return id
}

// RecordForm handles record creation and editing
type RecordForm struct {
	inputs    []textinput.Model
	spintax   []textarea.Model
	focused   int
	submitted bool
	editing   bool
}

// Form field indices; the two spintax areas follow the text inputs
const (
	idField = iota
	titleField
	sectionField
	categoryField
	shortcutField
	spintaxMField
	spintaxWField
)

var recordFieldLabels = []string{"ID", "Titel", "Abschnitt", "Kategorie", "Kürzel", "Spintax (m)", "Spintax (w)"}

// NewRecordForm creates an empty record form
func NewRecordForm() *RecordForm {
	inputs := make([]textinput.Model, spintaxMField)
	placeholders := []string{"wird aus dem Titel erzeugt", "Vorgeschichte", "Anamnese", "optional", "vg"}
	limits := []int{200, 200, 100, 100, 30}
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[i]
		inputs[i].CharLimit = limits[i]
		inputs[i].Width = 50
	}

	areas := make([]textarea.Model, 2)
	for i := range areas {
		ta := textarea.New()
		ta.CharLimit = 0
		ta.MaxHeight = 0
		ta.ShowLineNumbers = false
		ta.SetWidth(80)
		ta.SetHeight(5)
		areas[i] = ta
	}
	areas[0].Placeholder = "{Der Patient|Herr [Name]} ..."
	areas[1].Placeholder = "leer lassen, um die männliche Variante zu verwenden"

	f := &RecordForm{inputs: inputs, spintax: areas, focused: titleField}
	f.inputs[titleField].Focus()
	return f
}

// LoadRecord fills the form for editing an existing record
func (f *RecordForm) LoadRecord(rec models.Record) {
	values := []string{rec.ID, rec.Name, rec.Section, rec.Category, rec.Shortcut}
	for i, v := range values {
		f.inputs[i].SetValue(v)
	}
	f.spintax[0].SetValue(rec.SpintaxM)
	f.spintax[1].SetValue(rec.SpintaxW)
	f.editing = true
}

// Update handles form updates
func (f *RecordForm) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab":
			f.moveFocus(1)
			return nil
		case "shift+tab":
			f.moveFocus(-1)
			return nil
		case "ctrl+s":
			f.submitted = true
			return nil
		case "down", "enter":
			if !f.IsInContentField() {
				f.moveFocus(1)
				return nil
			}
		case "up":
			if !f.IsInContentField() {
				f.moveFocus(-1)
				return nil
			}
		}
	}

	var cmd tea.Cmd
	if f.IsInContentField() {
		i := f.focused - spintaxMField
		f.spintax[i], cmd = f.spintax[i].Update(msg)
		return cmd
	}
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return cmd
}

// Resize updates the spintax area width
func (f *RecordForm) Resize(width, height int) {
	rows := (height - 24) / 2
	if rows < 3 {
		rows = 3
	}
	for i := range f.spintax {
		f.spintax[i].SetWidth(width - 10)
		f.spintax[i].SetHeight(rows)
	}
}

func (f *RecordForm) fieldCount() int {
	return len(f.inputs) + len(f.spintax)
}

func (f *RecordForm) moveFocus(delta int) {
	f.blur(f.focused)
	f.focused = (f.focused + delta + f.fieldCount()) % f.fieldCount()
	// the id of an existing record is fixed
	if f.editing && f.focused == idField {
		f.focused = (f.focused + delta + f.fieldCount()) % f.fieldCount()
	}
	f.focus(f.focused)
}

func (f *RecordForm) blur(i int) {
	if i >= spintaxMField {
		f.spintax[i-spintaxMField].Blur()
		return
	}
	f.inputs[i].Blur()
}

func (f *RecordForm) focus(i int) {
	if i >= spintaxMField {
		f.spintax[i-spintaxMField].Focus()
		return
	}
	f.inputs[i].Focus()
}

// IsInContentField returns true if one of the spintax areas is focused
func (f *RecordForm) IsInContentField() bool {
	return f.focused >= spintaxMField
}

// ToRecord converts form data to a record
func (f *RecordForm) ToRecord() *models.Record {
	value := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

	id := value(idField)
	if id == "" {
		id = generateIDFromTitle(value(titleField))
	}
	return &models.Record{
		ID:       id,
		Name:     value(titleField),
		Section:  value(sectionField),
		Category: value(categoryField),
		Shortcut: value(shortcutField),
		SpintaxM: strings.TrimSpace(f.spintax[0].Value()),
		SpintaxW: strings.TrimSpace(f.spintax[1].Value()),
	}
}

// IsEditing reports whether the form edits an existing record
func (f *RecordForm) IsEditing() bool {
	return f.editing
}

// IsSubmitted returns true if the form was submitted
func (f *RecordForm) IsSubmitted() bool {
	return f.submitted
}

// View renders the form fields
func (f *RecordForm) View() string {
	var b strings.Builder
	for i := 0; i < f.fieldCount(); i++ {
		label := recordFieldLabels[i]
		if i == f.focused {
			label = StyleFocused.Render(label)
		} else {
			label = StyleFormLabel.Render(label)
		}
		b.WriteString(label + "\n")
		if i >= spintaxMField {
			b.WriteString(f.spintax[i-spintaxMField].View())
		} else {
			b.WriteString(f.inputs[i].View())
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// VariableForm edits the values of the placeholders used by the collection
type VariableForm struct {
	names     []string
	inputs    []textinput.Model
	focused   int
	submitted bool
}

// NewVariableForm creates one input per placeholder name
func NewVariableForm(names []string, values models.VariableMap) *VariableForm {
	inputs := make([]textinput.Model, len(names))
	for i, name := range names {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = variables.Placeholder(name)
		inputs[i].CharLimit = 500
		inputs[i].Width = 50
		if v, ok := values.Lookup(name); ok {
			inputs[i].SetValue(v)
		}
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}
	return &VariableForm{names: names, inputs: inputs}
}

// Update handles form updates
func (f *VariableForm) Update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down", "enter":
			f.moveFocus(1)
			return nil
		case "shift+tab", "up":
			f.moveFocus(-1)
			return nil
		case "ctrl+s":
			f.submitted = true
			return nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return cmd
}

func (f *VariableForm) moveFocus(delta int) {
	f.inputs[f.focused].Blur()
	f.focused = (f.focused + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focused].Focus()
}

// Values returns the entered value per placeholder name
func (f *VariableForm) Values() models.VariableMap {
	values := make(models.VariableMap, len(f.names))
	for i, name := range f.names {
		values[name] = strings.TrimSpace(f.inputs[i].Value())
	}
	return values
}

// IsSubmitted returns true if the form was submitted
func (f *VariableForm) IsSubmitted() bool {
	return f.submitted
}

// View renders one labeled input per placeholder
func (f *VariableForm) View() string {
	if len(f.names) == 0 {
		return StyleTextDim.Render("Keine Platzhalter in der Sammlung.")
	}
	rows := make([]string, 0, len(f.names))
	for i, name := range f.names {
		label := StyleFormLabel.Width(18).Render(name)
		if i == f.focused {
			label = StyleFocused.Width(18).Render(name)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left, label, " ", f.inputs[i].View()))
	}
	return strings.Join(rows, "\n")
}
