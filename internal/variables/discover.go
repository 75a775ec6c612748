package variables

import (
	"slices"

	"github.com/dpshade/quick-hb/internal/models"
)

// Names returns the distinct placeholder names of text in first-seen order
func Names(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}

// Discover collects every placeholder name referenced by the gender-appropriate
// template of the records. The result is sorted and free of duplicates.
func Discover(records models.Collection, gender models.Gender) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, name := range Names(rec.Template(gender)) {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parity compares the placeholders of the masculine and feminine variants.
// An empty feminine variant falls back to the masculine one and is never reported.
func Parity(rec models.Record) (onlyM, onlyW []string) {
	if rec.SpintaxW == "" {
		return nil, nil
	}
	m := Names(rec.SpintaxM)
	w := Names(rec.SpintaxW)
	for _, name := range m {
		if !slices.Contains(w, name) {
			onlyM = append(onlyM, name)
		}
	}
	for _, name := range w {
		if !slices.Contains(m, name) {
			onlyW = append(onlyW, name)
		}
	}
	return onlyM, onlyW
}
