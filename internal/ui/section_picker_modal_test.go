package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpshade/quick-hb/internal/models"
)

func TestSectionPickerModal_Pick(t *testing.T) {
	modal := NewSectionPickerModal()
	modal.SetSize(80, 24)

	draft := &models.Draft{}
	draft.Pick("Befund", "bef")
	modal.Show("anrede", models.Structure{"Antrag", "Befund"}, draft)

	if !modal.IsActive() {
		t.Fatal("Expected modal to be active after Show")
	}
	if _, _, ok := modal.Picked(); ok {
		t.Error("Expected no pick before confirmation")
	}

	modal, _ = modal.Update(tea.KeyMsg{Type: tea.KeyDown})
	modal, _ = modal.Update(tea.KeyMsg{Type: tea.KeyEnter})

	header, id, ok := modal.Picked()
	if !ok {
		t.Fatal("Expected a pick after enter")
	}
	if header != "Befund" || id != "anrede" {
		t.Errorf("Expected anrede picked for Befund, got %s for %s", id, header)
	}
	if modal.IsActive() {
		t.Error("Expected modal to close after enter")
	}
}

func TestSectionPickerModal_Cancel(t *testing.T) {
	modal := NewSectionPickerModal()
	modal.Show("anrede", models.Structure{"Antrag"}, nil)

	modal, _ = modal.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if modal.IsActive() {
		t.Error("Expected modal to close on esc")
	}
	if _, _, ok := modal.Picked(); ok {
		t.Error("Expected no pick after esc")
	}
	if modal.View() != "" {
		t.Error("Expected empty view when inactive")
	}
}
