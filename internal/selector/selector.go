// Package selector picks the records that belong to a document section.
package selector

import (
	"fmt"
	"strings"

	"github.com/dpshade/quick-hb/internal/models"
)

// Policy decides how records without a section label are treated
type Policy int

const (
	// PolicyWildcard selects records whose section equals the label or is empty.
	// Section-agnostic records therefore appear in every section.
	PolicyWildcard Policy = iota
	// PolicyStrict selects records whose section equals the label exactly.
	// Section-agnostic records only match an empty label.
	PolicyStrict
)

// String returns the config spelling of the policy
func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "wildcard"
}

// ParsePolicy parses "wildcard" or "strict". An empty string means wildcard.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wildcard":
		return PolicyWildcard, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyWildcard, fmt.Errorf("unknown section policy %q (use wildcard or strict)", s)
	}
}

// Matches reports whether rec belongs to the section label under p
func (p Policy) Matches(rec models.Record, label string) bool {
	label = strings.TrimSpace(label)
	section := strings.TrimSpace(rec.Section)
	if section == label {
		return true
	}
	return p == PolicyWildcard && section == ""
}

// SelectBySection returns the records of the section label. When nothing
// matches it falls back to the whole collection, and when that is empty too,
// to DefaultCollection. The result is a fresh slice and never nil.
func SelectBySection(records models.Collection, label string, policy Policy) models.Collection {
	out := make(models.Collection, 0, len(records))
	for _, rec := range records {
		if policy.Matches(rec, label) {
			out = append(out, rec)
		}
	}
	if len(out) > 0 {
		return out
	}
	if len(records) > 0 {
		return records.Clone()
	}
	return DefaultCollection()
}

// DefaultCollection returns the built-in records used when no library exists
func DefaultCollection() models.Collection {
	return models.Collection{
		{
			ID:       "default-anrede",
			Category: "Anrede",
			Name:     "Anrede",
			Shortcut: "anr",
			SpintaxM: "{Sehr geehrte Damen und Herren|Guten Tag},",
			SpintaxW: "{Sehr geehrte Damen und Herren|Guten Tag},",
		},
		{
			ID:       "default-antrag",
			Category: "Antrag",
			Name:     "Antragstext",
			Shortcut: "ant",
			SpintaxM: "{hiermit|mit diesem Schreiben} {beantrage|stelle} ich{| für [Name]} {die Kostenübernahme|den Antrag auf Kostenübernahme}.",
			SpintaxW: "{hiermit|mit diesem Schreiben} {beantrage|stelle} ich{| für [Name]} {die Kostenübernahme|den Antrag auf Kostenübernahme}.",
		},
		{
			ID:       "default-gruss",
			Category: "Schluss",
			Name:     "Grußformel",
			Shortcut: "mfg",
			SpintaxM: "{Mit freundlichen Grüßen|Freundliche Grüße}",
			SpintaxW: "{Mit freundlichen Grüßen|Freundliche Grüße}",
		},
	}
}

// Sections derives the document structure from the distinct non-empty section
// labels in first-seen order, or the default structure when there are none.
func Sections(records models.Collection) models.Structure {
	labels := make(models.Structure, 0, len(records))
	for _, rec := range records {
		labels = append(labels, rec.Section)
	}
	return labels.Normalize()
}
