package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/quick-hb/internal/clipboard"
	"github.com/dpshade/quick-hb/internal/compiler"
	"github.com/dpshade/quick-hb/internal/errors"
	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/renderer"
	"github.com/dpshade/quick-hb/internal/service"
	"github.com/dpshade/quick-hb/internal/spintax"
	"github.com/dpshade/quick-hb/internal/variables"
)

// Commands for async operations
type loadCompleteMsg struct {
	records models.Collection
	err     error
}

// loadRecordsCmd loads the collection (fast with the record cache)
func loadRecordsCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		records, err := svc.ListRecords()
		return loadCompleteMsg{records: records, err: err}
	}
}

// ViewMode represents the current view in the TUI
type ViewMode int

const (
	ViewLibrary ViewMode = iota
	ViewRecordDetail
	ViewDocument
	ViewVariables
	ViewEditRecord
)

// Model represents the TUI application state
type Model struct {
	service  *service.Service
	viewMode ViewMode

	// UI components
	recordList    list.Model
	viewport      viewport.Model
	help          help.Model
	keys          KeyMap
	sectionPicker *SectionPickerModal
	recordForm    *RecordForm
	variableForm  *VariableForm

	// Data
	records  models.Collection
	loading  bool
	selected *models.Record
	gender   models.Gender

	// Plain text of what the viewport shows, for copying
	renderedContent string
	glamourRenderer *glamour.TermRenderer

	width  int
	height int

	statusMsg     string
	statusType    string
	statusTimeout int

	showExpandedHelp bool
	errHandler       *errors.TUIErrorHandler
	copy             func(string) (string, error)
}

// KeyMap defines all key bindings
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Quit      key.Binding
	Help      key.Binding
	Search    key.Binding
	Gender    key.Binding
	Respin    key.Binding
	Variables key.Binding
	Document  key.Binding
	Copy      key.Binding
	Pick      key.Binding
	New       key.Binding
	Edit      key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.Gender, k.Respin, k.Copy, k.Pick},
		{k.Variables, k.Document, k.New, k.Edit},
		{k.Search, k.Help, k.Quit},
	}
}

var keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "hoch"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "runter"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "Vorschau"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "zurück"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "beenden"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "Hilfe"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filtern"),
	),
	Gender: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "m/w wechseln"),
	),
	Respin: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "neu würfeln"),
	),
	Variables: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "Variablen"),
	),
	Document: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "Dokument"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "kopieren"),
	),
	Pick: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "in Abschnitt einfügen"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "neuer Baustein"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "bearbeiten"),
	),
}

// NewModel creates a new TUI model
func NewModel(svc *service.Service) (*Model, error) {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 80, 20)
	l.Title = ""
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	keyMap := list.DefaultKeyMap()
	keyMap.Filter = keys.Search
	keyMap.Quit = key.NewBinding(key.WithDisabled())
	l.KeyMap = keyMap

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	r, err := renderer.NewTerminalRenderer(60)
	if err != nil {
		return nil, fmt.Errorf("failed to create glamour renderer: %w", err)
	}

	return &Model{
		service:         svc,
		viewMode:        ViewLibrary,
		recordList:      l,
		viewport:        vp,
		help:            help.New(),
		keys:            keys,
		sectionPicker:   NewSectionPickerModal(),
		loading:         true,
		gender:          svc.DefaultGender(),
		glamourRenderer: r,
		errHandler:      errors.NewTUIErrorHandler(false),
		copy:            clipboard.CopyWithFallback,
	}, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return loadRecordsCmd(m.service)
}

// tickMsg is sent to clear the status message
type tickMsg time.Time

// clearStatusCmd returns a command that clears the status message after a delay
func clearStatusCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) setStatus(text, statusType string) tea.Cmd {
	m.statusMsg = text
	m.statusType = statusType
	m.statusTimeout = 3
	return clearStatusCmd()
}

// showError logs the error and shows it in the status line
func (m *Model) showError(err error) tea.Cmd {
	m.errHandler.HandleError(err)
	icon, _ := m.errHandler.GetErrorStyle(err)
	return m.setStatus(icon+" "+m.errHandler.FormatError(err), "error")
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.statusTimeout > 0 {
			m.statusTimeout--
			if m.statusTimeout == 0 {
				m.statusMsg = ""
			} else {
				return m, clearStatusCmd()
			}
		}
		return m, nil

	case loadCompleteMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.showError(msg.err)
		}
		m.setRecords(msg.records)
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.sectionPicker.IsActive() {
			return m.updateSectionPicker(msg)
		}
		switch m.viewMode {
		case ViewEditRecord:
			return m.updateRecordForm(msg)
		case ViewVariables:
			return m.updateVariableForm(msg)
		case ViewRecordDetail:
			return m.updateRecordDetail(msg)
		case ViewDocument:
			return m.updateDocument(msg)
		default:
			return m.updateLibrary(msg)
		}
	}

	var cmd tea.Cmd
	if m.viewMode == ViewLibrary {
		m.recordList, cmd = m.recordList.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// title, gender, help and status lines
	const reservedHeight = 8
	available := height - reservedHeight
	if available < 5 {
		available = 5
	}

	m.recordList.SetSize(width-4, available)

	viewportWidth := width - 12
	if viewportWidth < 40 {
		viewportWidth = 40
	}
	m.viewport.Width = viewportWidth
	m.viewport.Height = available - 2
	if r, err := renderer.NewTerminalRenderer(viewportWidth); err == nil {
		m.glamourRenderer = r
	}

	if m.recordForm != nil {
		m.recordForm.Resize(width, available)
	}
	m.sectionPicker.SetSize(width, height)

	switch m.viewMode {
	case ViewRecordDetail:
		m.renderPreview()
	case ViewDocument:
		m.renderDocument()
	}
}

func (m *Model) setRecords(records models.Collection) {
	m.records = records
	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[i] = rec
	}
	m.recordList.SetItems(items)
}

func (m *Model) selectedRecord() *models.Record {
	if rec, ok := m.recordList.SelectedItem().(models.Record); ok {
		return &rec
	}
	return nil
}

func (m *Model) toggleGender() tea.Cmd {
	m.gender = m.gender.Toggle()
	if err := m.service.SaveGender(m.gender); err != nil {
		return m.showError(err)
	}
	return m.setStatus("Geschlecht: "+m.gender.Label(), "info")
}

func (m *Model) copyContent() tea.Cmd {
	if m.renderedContent == "" {
		return nil
	}
	status, err := m.copy(m.renderedContent)
	if err != nil {
		return m.showError(errors.Wrap(err, errors.ErrCodeInternalError, "Kopieren fehlgeschlagen"))
	}
	return m.setStatus(status, "success")
}

func (m *Model) openSectionPicker(rec *models.Record) tea.Cmd {
	structure, err := m.service.Structure()
	if err != nil {
		return m.showError(err)
	}
	draft, err := m.service.Draft()
	if err != nil {
		return m.showError(err)
	}
	m.sectionPicker.SetSize(m.width, m.height)
	m.sectionPicker.Show(rec.ID, structure, draft)
	return nil
}

func (m *Model) openRecordForm(rec *models.Record) {
	m.recordForm = NewRecordForm()
	if rec != nil {
		m.recordForm.LoadRecord(*rec)
	}
	m.recordForm.Resize(m.width, m.height-8)
	m.viewMode = ViewEditRecord
}

func (m *Model) openVariableForm() tea.Cmd {
	names, err := m.service.DiscoverVariables(m.gender)
	if err != nil {
		return m.showError(err)
	}
	values, err := m.service.Variables()
	if err != nil {
		return m.showError(err)
	}
	m.variableForm = NewVariableForm(names, values)
	m.viewMode = ViewVariables
	return nil
}

func (m Model) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.recordList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.recordList, cmd = m.recordList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showExpandedHelp = !m.showExpandedHelp
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		if rec := m.selectedRecord(); rec != nil {
			m.selected = rec
			m.viewMode = ViewRecordDetail
			m.renderPreview()
		}
		return m, nil
	case key.Matches(msg, m.keys.Gender):
		return m, m.toggleGender()
	case key.Matches(msg, m.keys.Variables):
		return m, m.openVariableForm()
	case key.Matches(msg, m.keys.Document):
		m.viewMode = ViewDocument
		m.renderDocument()
		return m, nil
	case key.Matches(msg, m.keys.New):
		m.openRecordForm(nil)
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		if rec := m.selectedRecord(); rec != nil {
			m.openRecordForm(rec)
		}
		return m, nil
	case key.Matches(msg, m.keys.Pick):
		if rec := m.selectedRecord(); rec != nil {
			return m, m.openSectionPicker(rec)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.recordList, cmd = m.recordList.Update(msg)
	return m, cmd
}

func (m Model) updateRecordDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.viewMode = ViewLibrary
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Respin):
		m.renderPreview()
		return m, nil
	case key.Matches(msg, m.keys.Gender):
		cmd := m.toggleGender()
		m.renderPreview()
		return m, cmd
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyContent()
	case key.Matches(msg, m.keys.Pick):
		return m, m.openSectionPicker(m.selected)
	case key.Matches(msg, m.keys.Edit):
		m.openRecordForm(m.selected)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateDocument(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.viewMode = ViewLibrary
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Respin):
		m.renderDocument()
		return m, nil
	case key.Matches(msg, m.keys.Gender):
		cmd := m.toggleGender()
		m.renderDocument()
		return m, cmd
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyContent()
	case key.Matches(msg, m.keys.Variables):
		return m, m.openVariableForm()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateSectionPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.sectionPicker, cmd = m.sectionPicker.Update(msg)
	if m.sectionPicker.IsActive() {
		return m, cmd
	}
	header, id, ok := m.sectionPicker.Picked()
	if !ok {
		return m, cmd
	}
	if err := m.service.PickRecord(header, id); err != nil {
		return m, m.showError(err)
	}
	return m, m.setStatus(fmt.Sprintf("%s → %s", id, header), "success")
}

func (m Model) updateRecordForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.recordForm = nil
		m.viewMode = ViewLibrary
		return m, nil
	}

	cmd := m.recordForm.Update(msg)
	if !m.recordForm.IsSubmitted() {
		return m, cmd
	}

	rec := m.recordForm.ToRecord()
	var warnings []string
	var err error
	if m.recordForm.IsEditing() {
		warnings, err = m.service.UpdateRecord(rec)
	} else {
		warnings, err = m.service.AddRecord(rec)
	}
	if err != nil {
		// keep the form open so the input is not lost
		m.recordForm.submitted = false
		return m, m.showError(err)
	}

	m.recordForm = nil
	m.viewMode = ViewLibrary
	reload := loadRecordsCmd(m.service)
	if len(warnings) > 0 {
		return m, tea.Batch(reload, m.setStatus("Gespeichert, aber: "+strings.Join(warnings, "; "), "warning"))
	}
	return m, tea.Batch(reload, m.setStatus("Baustein "+rec.ID+" gespeichert", "success"))
}

func (m Model) updateVariableForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.variableForm = nil
		m.viewMode = ViewLibrary
		return m, nil
	}

	cmd := m.variableForm.Update(msg)
	if !m.variableForm.IsSubmitted() {
		return m, cmd
	}

	for name, value := range m.variableForm.Values() {
		if err := m.service.SetVariable(name, value); err != nil {
			m.variableForm.submitted = false
			return m, m.showError(err)
		}
	}
	m.variableForm = nil
	m.viewMode = ViewLibrary
	return m, m.setStatus("Variablen gespeichert", "success")
}

// renderPreview spins the selected record once and shows it with
// highlighted placeholders
func (m *Model) renderPreview() {
	if m.selected == nil {
		return
	}
	vars, err := m.service.Variables()
	if err != nil {
		m.showError(err)
		return
	}

	template := m.selected.Template(m.gender)
	spun := spintax.Spin(template, nil)
	m.renderedContent = variables.Substitute(spun, vars, variables.Plain)

	highlighted := variables.Substitute(spun, vars, PlaceholderFormatter)
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(highlighted))
	m.viewport.GotoTop()
}

// renderDocument compiles the whole document once; the viewport shows the
// markdown rendering and copying uses the plain text of the same spin
func (m *Model) renderDocument() {
	opts := compiler.Options{Numbered: m.service.Config().NumberedHeaders}
	doc, err := m.service.BuildDocument(m.gender, opts)
	if err != nil {
		m.showError(err)
		return
	}
	m.renderedContent = doc.Text

	markdown := compiler.CompileMarkdown(doc.Sections)
	formatted, err := m.glamourRenderer.Render(markdown)
	if err != nil {
		formatted = markdown
	}
	if len(doc.Unfilled) > 0 {
		m.setStatus("Offene Platzhalter: "+strings.Join(doc.Unfilled, ", "), "warning")
	}
	m.viewport.SetContent(formatted)
	m.viewport.GotoTop()
}

// View renders the current view
func (m Model) View() string {
	if m.sectionPicker.IsActive() {
		return m.sectionPicker.View()
	}

	var mainView string
	switch m.viewMode {
	case ViewLibrary:
		mainView = m.renderLibraryView()
	case ViewRecordDetail:
		mainView = m.renderRecordDetailView()
	case ViewDocument:
		mainView = m.renderDocumentView()
	case ViewVariables:
		mainView = m.renderVariablesView()
	case ViewEditRecord:
		mainView = m.renderEditRecordView()
	default:
		mainView = "Unknown view mode"
	}

	if m.statusMsg != "" {
		return AddMainPadding(lipgloss.JoinVertical(lipgloss.Left, mainView, CreateStatus(m.statusMsg, m.statusType)))
	}
	return AddMainPadding(mainView)
}

func (m Model) footer(essential []string, additional []string) string {
	if m.showExpandedHelp {
		return lipgloss.JoinVertical(lipgloss.Left,
			CreateHelp(strings.Join(essential, " • ")),
			m.help.FullHelpView(m.keys.FullHelp()),
		)
	}
	return CreateContextualHelp(essential, additional, false, m.width)
}

func (m Model) renderLibraryView() string {
	header := CreateHeader("quick-hb", m.gender.Label())

	var body string
	if m.loading {
		body = StyleInfo.Render("Lade Bausteine...")
	} else if len(m.records) == 0 {
		body = StyleTextDim.Render("Noch keine Bausteine. n legt einen an, quick-hb import lädt eine data.json.")
	} else {
		body = m.recordList.View()
	}

	help := m.footer(
		[]string{"Enter Vorschau", "p einfügen", "d Dokument", "g m/w"},
		[]string{"v Variablen • n neu • e bearbeiten • / filtern • q beenden"},
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, help)
}

func (m Model) renderViewport() string {
	top, bottom := CreateScrollIndicators(!m.viewport.AtTop(), !m.viewport.AtBottom(), m.viewport.Width)
	return StyleContentContainer.Render(lipgloss.JoinVertical(lipgloss.Left, top, m.viewport.View(), bottom))
}

func (m Model) renderRecordDetailView() string {
	if m.selected == nil {
		return "Kein Baustein ausgewählt"
	}

	header := CreateHeader(m.selected.Title(), m.gender.Label())
	meta := fmt.Sprintf("ID: %s", m.selected.ID)
	if !m.selected.IsSectionAgnostic() {
		meta += " • Abschnitt: " + m.selected.Section
	}
	meta += fmt.Sprintf(" • %d Varianten", m.service.CountVariants(m.selected.Template(m.gender)))

	help := m.footer(
		[]string{"r neu würfeln", "c kopieren", "p einfügen", "g m/w"},
		[]string{"e bearbeiten • Esc zurück"},
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, StyleMetadata.Render(meta), m.renderViewport(), help)
}

func (m Model) renderDocumentView() string {
	header := CreateHeader("Dokument", m.gender.Label())
	help := m.footer(
		[]string{"c kopieren", "r neu würfeln", "g m/w"},
		[]string{"v Variablen • Esc zurück"},
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderViewport(), help)
}

func (m Model) renderVariablesView() string {
	header := CreateHeader("Variablen", m.gender.Label())
	help := CreateHelp("Tab/↓ weiter • Ctrl+s speichern • Esc abbrechen")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", m.variableForm.View(), "", help)
}

func (m Model) renderEditRecordView() string {
	title := "Neuer Baustein"
	if m.recordForm.IsEditing() {
		title = "Baustein bearbeiten"
	}
	help := CreateHelp("Tab weiter • Ctrl+s speichern • Esc abbrechen")
	return lipgloss.JoinVertical(lipgloss.Left, CreateHeader(title, ""), "", m.recordForm.View(), help)
}
