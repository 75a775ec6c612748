package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dpshade/quick-hb/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	recordsDir = "records"
	recordExt  = ".yaml"
)

// Storage handles all file system operations for records and document state
type Storage struct {
	rootPath string
	cache    *RecordCache
}

// NewStorage creates a new storage instance
func NewStorage(rootPath string) (*Storage, error) {
	if rootPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		rootPath = filepath.Join(homeDir, ".quick-hb")
	}

	cache := NewRecordCache(rootPath)
	if err := cache.Load(); err != nil {
		// Log error but don't fail - cache is optional
		fmt.Fprintf(os.Stderr, "Warning: failed to load record cache: %v\n", err)
	}

	return &Storage{
		rootPath: rootPath,
		cache:    cache,
	}, nil
}

// InitLibrary creates the directory structure for a record library
func (s *Storage) InitLibrary() error {
	dirs := []string{
		s.rootPath,
		filepath.Join(s.rootPath, recordsDir),
		filepath.Join(s.rootPath, "logs"),
		filepath.Join(s.rootPath, ".quick-hb"),
		filepath.Join(s.rootPath, ".quick-hb", "cache"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetBaseDir returns the root path of the storage
func (s *Storage) GetBaseDir() string {
	return s.rootPath
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// RecordPath returns the library-relative file path used for a record id
func RecordPath(id string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(id, "_"), "._")
	if name == "" {
		sum := sha256.Sum256([]byte(id))
		name = "record-" + hex.EncodeToString(sum[:4])
	}
	return filepath.Join(recordsDir, name+recordExt)
}

// LoadRecord loads a record from a YAML file
func (s *Storage) LoadRecord(path string) (*models.Record, error) {
	fullPath := filepath.Join(s.rootPath, path)

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	rec, err := parseRecordFile(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}

	rec.FilePath = path
	return rec, nil
}

// SaveRecord writes a record to its YAML file. Records without a file path
// get one derived from their id.
func (s *Storage) SaveRecord(rec *models.Record) error {
	if rec.FilePath == "" {
		rec.FilePath = RecordPath(rec.ID)
	}
	fullPath := filepath.Join(s.rootPath, rec.FilePath)
	s.cache.Invalidate(rec.FilePath)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	content, err := serializeRecord(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write record file: %w", err)
	}

	return nil
}

// DeleteRecord deletes a record file from the file system
func (s *Storage) DeleteRecord(rec *models.Record) error {
	path := rec.FilePath
	if path == "" {
		path = RecordPath(rec.ID)
	}
	fullPath := filepath.Join(s.rootPath, path)
	s.cache.Invalidate(path)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("record file does not exist: %s", fullPath)
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete record file: %w", err)
	}

	return nil
}

// ListRecords returns all records of the library in collection order
func (s *Storage) ListRecords() (models.Collection, error) {
	dir := filepath.Join(s.rootPath, recordsDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return models.Collection{}, nil
	}

	var records models.Collection
	existingFiles := make(map[string]bool)
	cacheModified := false

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, recordExt) {
			return nil
		}

		relPath, _ := filepath.Rel(s.rootPath, path)
		existingFiles[relPath] = true

		// Try to get from cache first
		if cached, valid := s.cache.Get(relPath, info); valid {
			records = append(records, cached.ToRecord())
			return nil
		}

		rec, err := s.LoadRecord(relPath)
		if err != nil {
			// Log error but continue walking
			fmt.Fprintf(os.Stderr, "Warning: failed to load record %s: %v\n", relPath, err)
			return nil
		}

		s.cache.Set(relPath, filepath.Join(s.rootPath, relPath), info, rec)
		cacheModified = true

		records = append(records, *rec)
		return nil
	})

	// Cleanup cache entries for deleted files
	if s.cache.Cleanup(existingFiles) {
		cacheModified = true
	}

	if cacheModified {
		if err := s.cache.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save record cache: %v\n", err)
		}
	}

	sortRecords(records)
	return records, err
}

// sortRecords orders by position; records without one go last, by id
func sortRecords(records models.Collection) {
	sort.SliceStable(records, func(i, j int) bool {
		pi, pj := records[i].Position, records[j].Position
		switch {
		case pi == pj:
			return records[i].ID < records[j].ID
		case pi == 0:
			return false
		case pj == 0:
			return true
		default:
			return pi < pj
		}
	})
}

// Helper functions

func parseRecordFile(content []byte) (*models.Record, error) {
	var rec models.Record
	if err := yaml.Unmarshal(content, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record YAML: %w", err)
	}
	if strings.TrimSpace(rec.ID) == "" {
		return nil, fmt.Errorf("record has no id")
	}
	return &rec, nil
}

func serializeRecord(rec *models.Record) ([]byte, error) {
	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(rec); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	return buf.Bytes(), nil
}

func calculateHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
