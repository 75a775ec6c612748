package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dpshade/quick-hb/internal/models"
)

// DecodeLegacyJSON reads the array format exported by the browser editor.
// Entries without an id are skipped; later duplicates replace earlier ones.
func DecodeLegacyJSON(r io.Reader) (models.Collection, error) {
	var raw models.Collection
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse legacy JSON: %w", err)
	}

	out := make(models.Collection, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, rec := range raw {
		rec.ID = strings.TrimSpace(rec.ID)
		if rec.ID == "" {
			continue
		}
		if i, ok := index[rec.ID]; ok {
			out[i] = rec
			continue
		}
		index[rec.ID] = len(out)
		out = append(out, rec)
	}
	return out, nil
}

// ImportJSON stores every record of a legacy export and returns how many were
// written. Imported records keep the order of the file after any existing ones.
func (s *Storage) ImportJSON(r io.Reader) (int, error) {
	incoming, err := DecodeLegacyJSON(r)
	if err != nil {
		return 0, err
	}

	existing, err := s.ListRecords()
	if err != nil {
		return 0, fmt.Errorf("failed to list records: %w", err)
	}
	next := 1
	for _, rec := range existing {
		if rec.Position >= next {
			next = rec.Position + 1
		}
	}

	for i := range incoming {
		rec := incoming[i]
		if old, ok := existing.ByID(rec.ID); ok {
			rec.FilePath = old.FilePath
			rec.Position = old.Position
		} else {
			rec.Position = next
			next++
		}
		if err := s.SaveRecord(&rec); err != nil {
			return i, fmt.Errorf("failed to import record %s: %w", rec.ID, err)
		}
	}
	return len(incoming), nil
}

// ExportJSON writes all records in the legacy array format
func (s *Storage) ExportJSON(w io.Writer) error {
	records, err := s.ListRecords()
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	return EncodeLegacyJSON(w, records)
}

// EncodeLegacyJSON writes records as an indented JSON array
func EncodeLegacyJSON(w io.Writer, records models.Collection) error {
	if records == nil {
		records = models.Collection{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}
