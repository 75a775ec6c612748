package models

import (
	"strings"
	"time"
)

// Record is one reusable text block with gendered spintax variants.
// Field names follow the legacy browser export so data.json files load unchanged.
type Record struct {
	ID       string `yaml:"id" json:"id"`
	Section  string `yaml:"section,omitempty" json:"section"`
	Category string `yaml:"category,omitempty" json:"category"`
	Name     string `yaml:"title" json:"title"`
	Shortcut string `yaml:"shortcut,omitempty" json:"shortcut"`

	// Spintax variants. SpintaxP is carried for round-tripping only.
	SpintaxM string `yaml:"spintax_m" json:"spintax_m"`
	SpintaxW string `yaml:"spintax_w" json:"spintax_w"`
	SpintaxP string `yaml:"spintax_p,omitempty" json:"spintax_p,omitempty"`

	// Position keeps the collection order across one-file-per-record storage
	Position  int       `yaml:"position,omitempty" json:"-"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty" json:"-"`

	FilePath string `yaml:"-" json:"-"` // Path relative to the library root
}

// Template returns the spintax variant for the given gender.
// The feminine variant falls back to the masculine one when it is empty.
func (r Record) Template(g Gender) string {
	if g == Feminine && r.SpintaxW != "" {
		return r.SpintaxW
	}
	return r.SpintaxM
}

// IsSectionAgnostic reports whether the record carries no section label
func (r Record) IsSectionAgnostic() bool {
	return strings.TrimSpace(r.Section) == ""
}

// Implement list.Item interface for bubbles list component

// FilterValue returns the value used for filtering in lists
func (r Record) FilterValue() string {
	return cleanString(r.Name + " " + r.Shortcut)
}

// Title satisfies the list.Item interface
func (r Record) Title() string {
	if r.Name != "" {
		return cleanString(r.Name)
	}
	return cleanString(r.ID)
}

// Description satisfies the list.Item interface
func (r Record) Description() string {
	var parts []string

	if r.Shortcut != "" {
		parts = append(parts, "("+r.Shortcut+")")
	}
	if r.Section != "" {
		parts = append(parts, "Abschnitt: "+r.Section)
	}
	if r.Category != "" {
		parts = append(parts, r.Category)
	}

	preview := cleanString(r.SpintaxM)
	maxPreviewLength := 60
	if len([]rune(preview)) > maxPreviewLength {
		preview = string([]rune(preview)[:maxPreviewLength-3]) + "..."
	}
	if preview != "" {
		parts = append(parts, preview)
	}

	return cleanString(strings.Join(parts, " • "))
}

// Collection is an ordered list of records. Order drives display numbering
// and structure derivation, never resolution.
type Collection []Record

// ByID returns the record with the given id
func (c Collection) ByID(id string) (Record, bool) {
	for _, rec := range c {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// IDs returns all record ids in collection order
func (c Collection) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, rec := range c {
		ids = append(ids, rec.ID)
	}
	return ids
}

// Clone returns a shallow copy that can be filtered without touching c
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// cleanString removes problematic characters that might cause rendering issues
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
		} else if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
