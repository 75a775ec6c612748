package models

import (
	"fmt"
	"strings"
)

// Gender selects which spintax variant of a record is active
type Gender string

const (
	Masculine Gender = "m"
	Feminine  Gender = "w"
)

// ParseGender accepts the short codes and a few spelled-out forms
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "masculine", "männlich", "maennlich":
		return Masculine, nil
	case "w", "f", "female", "feminine", "weiblich":
		return Feminine, nil
	default:
		return "", fmt.Errorf("unknown gender %q (use m or w)", s)
	}
}

// Toggle returns the other gender
func (g Gender) Toggle() Gender {
	if g == Feminine {
		return Masculine
	}
	return Feminine
}

// Label returns the German display label used in the UI
func (g Gender) Label() string {
	if g == Feminine {
		return "weiblich"
	}
	return "männlich"
}

// VariableMap maps placeholder names to their current values.
// A missing key and an empty value both mean "not filled yet".
type VariableMap map[string]string

// Lookup returns the value and whether it counts as filled
func (v VariableMap) Lookup(name string) (string, bool) {
	if v == nil {
		return "", false
	}
	val, ok := v[name]
	return val, ok && val != ""
}

// Clone returns an independent copy
func (v VariableMap) Clone() VariableMap {
	out := make(VariableMap, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// DefaultSection is the header used when nothing else defines a structure
const DefaultSection = "Antrag"

// Structure is the ordered list of section headers of a document
type Structure []string

// DefaultStructure returns the single-section fallback structure
func DefaultStructure() Structure {
	return Structure{DefaultSection}
}

// Normalize trims headers, drops empty and duplicate ones and falls back
// to the default structure when nothing is left.
func (s Structure) Normalize() Structure {
	seen := make(map[string]bool, len(s))
	out := make(Structure, 0, len(s))
	for _, h := range s {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	if len(out) == 0 {
		return DefaultStructure()
	}
	return out
}

// Draft records which records the user inserted into which section
type Draft struct {
	Gender Gender              `yaml:"gender,omitempty" json:"gender,omitempty"`
	Picks  map[string][]string `yaml:"picks,omitempty" json:"picks,omitempty"` // section header -> record ids
}

// PicksFor returns the picked record ids of a section
func (d *Draft) PicksFor(header string) []string {
	if d == nil || d.Picks == nil {
		return nil
	}
	return d.Picks[header]
}

// Pick appends a record id to a section
func (d *Draft) Pick(header, id string) {
	if d.Picks == nil {
		d.Picks = make(map[string][]string)
	}
	d.Picks[header] = append(d.Picks[header], id)
}
