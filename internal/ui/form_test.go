package ui

import (
	"testing"

	"github.com/dpshade/quick-hb/internal/models"
)

func TestGenerateIDFromTitle(t *testing.T) {
	tests := map[string]string{
		"Ärztlicher Befund":    "aerztlicher-befund",
		"  Größe & Gewicht  ":  "groesse-gewicht",
		"":                     "baustein",
		"!!!":                  "baustein",
		"Vorgeschichte (kurz)": "vorgeschichte-kurz",
	}
	for title, want := range tests {
		if got := generateIDFromTitle(title); got != want {
			t.Errorf("generateIDFromTitle(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestRecordFormLoadRecord(t *testing.T) {
	f := NewRecordForm()
	f.LoadRecord(models.Record{ID: "vg", Name: "Vorgeschichte", Section: "Anamnese", SpintaxM: "a", SpintaxW: "b"})

	if !f.IsEditing() {
		t.Error("Expected edit mode")
	}
	rec := f.ToRecord()
	if rec.ID != "vg" || rec.Section != "Anamnese" || rec.SpintaxW != "b" {
		t.Errorf("Unexpected record %+v", rec)
	}

	// the id field is skipped while editing
	for i := 0; i < f.fieldCount(); i++ {
		f.moveFocus(1)
		if f.focused == idField {
			t.Fatal("Expected id field to be skipped while editing")
		}
	}
}

func TestVariableFormValues(t *testing.T) {
	f := NewVariableForm([]string{"Alter", "Name"}, models.VariableMap{"Name": "Schmidt"})

	values := f.Values()
	if values["Name"] != "Schmidt" || values["Alter"] != "" {
		t.Errorf("Unexpected values %v", values)
	}
	if f.View() == "" {
		t.Error("Expected form view")
	}
}
