package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/quick-hb/internal/models"
)

// SectionPickerModal lets the user choose the section a record is inserted into
type SectionPickerModal struct {
	list     list.Model
	recordID string
	picked   string
	isActive bool
	width    int
	height   int
}

// sectionItem implements the list.Item interface for section selection
type sectionItem struct {
	header string
	picks  int
}

func (s sectionItem) FilterValue() string {
	return s.header
}

// sectionItemDelegate handles rendering of section items
type sectionItemDelegate struct{}

func (d sectionItemDelegate) Height() int                               { return 2 }
func (d sectionItemDelegate) Spacing() int                              { return 1 }
func (d sectionItemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d sectionItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(sectionItem)
	if !ok {
		return
	}

	title := fmt.Sprintf("%d. %s", index+1, item.header)
	desc := "alle Kandidaten"
	if item.picks > 0 {
		desc = fmt.Sprintf("%d ausgewählt", item.picks)
	}

	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).Render("▶ " + title)
	} else {
		title = lipgloss.NewStyle().Foreground(ColorText).Render("  " + title)
	}
	desc = StyleTextDim.Render("    " + desc)

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// NewSectionPickerModal creates a new section picker modal
func NewSectionPickerModal() *SectionPickerModal {
	l := list.New([]list.Item{}, sectionItemDelegate{}, 50, 15)
	l.Title = "Abschnitt wählen"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	keyMap := list.DefaultKeyMap()
	keyMap.ShowFullHelp = key.NewBinding(
		key.WithKeys("ctrl+h"),
		key.WithHelp("Ctrl+h", "toggle help"),
	)
	l.KeyMap = keyMap

	return &SectionPickerModal{list: l}
}

// SetSize updates the modal size
func (sp *SectionPickerModal) SetSize(width, height int) {
	sp.width = width
	sp.height = height
	sp.list.SetSize(min(width-4, 70), min(height-6, 20))
}

// Show activates the modal for a record with the current structure and draft
func (sp *SectionPickerModal) Show(recordID string, structure models.Structure, draft *models.Draft) {
	items := make([]list.Item, 0, len(structure))
	for _, header := range structure {
		items = append(items, sectionItem{header: header, picks: len(draft.PicksFor(header))})
	}
	sp.list.SetItems(items)
	sp.list.Select(0)
	sp.recordID = recordID
	sp.picked = ""
	sp.isActive = true
}

// Hide deactivates the modal
func (sp *SectionPickerModal) Hide() {
	sp.isActive = false
}

// IsActive returns whether the modal is active
func (sp *SectionPickerModal) IsActive() bool {
	return sp.isActive
}

// Picked returns the chosen section and record once the user confirmed
func (sp *SectionPickerModal) Picked() (header, recordID string, ok bool) {
	return sp.picked, sp.recordID, sp.picked != ""
}

// Update handles modal updates
func (sp *SectionPickerModal) Update(msg tea.Msg) (*SectionPickerModal, tea.Cmd) {
	if !sp.isActive {
		return sp, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			if item, ok := sp.list.SelectedItem().(sectionItem); ok {
				sp.picked = item.header
			}
			sp.isActive = false
			return sp, nil
		case "esc":
			sp.isActive = false
			return sp, nil
		}
	}

	var cmd tea.Cmd
	sp.list, cmd = sp.list.Update(msg)
	return sp, cmd
}

// View renders the modal
func (sp *SectionPickerModal) View() string {
	if !sp.isActive {
		return ""
	}

	instructions := StyleTextDim.Render("Enter: einfügen • Esc: abbrechen")
	modalContent := lipgloss.JoinVertical(
		lipgloss.Left,
		sp.list.View(),
		"",
		instructions,
	)

	return CenterModal(StyleModal.Render(modalContent), sp.width, sp.height)
}
