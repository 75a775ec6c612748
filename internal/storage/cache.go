package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dpshade/quick-hb/internal/models"
)

// CachedRecord is a record as stored in the cache, with file validation data
type CachedRecord struct {
	Record    models.Record `json:"record"`
	Position  int           `json:"position"`
	UpdatedAt time.Time     `json:"updated_at"`
	FilePath  string        `json:"file_path"`
	ModTime   time.Time     `json:"mod_time"`
	FileHash  string        `json:"file_hash"`
}

// RecordCache avoids re-parsing record files whose mod time has not changed.
// Records are small, so the cache holds them in full.
type RecordCache struct {
	cacheDir  string
	cacheFile string
	records   map[string]*CachedRecord
	mu        sync.RWMutex // Protects records map from concurrent access
}

// NewRecordCache creates a new record cache
func NewRecordCache(baseDir string) *RecordCache {
	cacheDir := filepath.Join(baseDir, ".quick-hb", "cache")
	return &RecordCache{
		cacheDir:  cacheDir,
		cacheFile: filepath.Join(cacheDir, "records.json"),
		records:   make(map[string]*CachedRecord),
	}
}

// Load loads the record cache from disk
func (c *RecordCache) Load() error {
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if _, err := os.Stat(c.cacheFile); os.IsNotExist(err) {
		return nil // No cache file exists yet
	}

	data, err := os.ReadFile(c.cacheFile)
	if err != nil {
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	c.mu.Lock()
	if err := json.Unmarshal(data, &c.records); err != nil {
		// If cache is corrupted, start fresh
		c.records = make(map[string]*CachedRecord)
	}
	c.mu.Unlock()

	return nil
}

// Save saves the record cache to disk
func (c *RecordCache) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.records, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(c.cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Get retrieves a cached record, checking that the file is unchanged
func (c *RecordCache) Get(filePath string, fileInfo os.FileInfo) (*CachedRecord, bool) {
	c.mu.RLock()
	cached, exists := c.records[filePath]
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}

	if !fileInfo.ModTime().Equal(cached.ModTime) {
		return nil, false
	}

	return cached, true
}

// Set stores a record in the cache
func (c *RecordCache) Set(relPath string, fullPath string, fileInfo os.FileInfo, rec *models.Record) {
	fileHash := ""
	if data, err := os.ReadFile(fullPath); err == nil {
		fileHash = calculateHash(data)
	}

	c.mu.Lock()
	c.records[relPath] = &CachedRecord{
		Record:    *rec,
		Position:  rec.Position,
		UpdatedAt: rec.UpdatedAt,
		FilePath:  relPath,
		ModTime:   fileInfo.ModTime(),
		FileHash:  fileHash,
	}
	c.mu.Unlock()
}

// Invalidate drops the entry of a file that is about to change
func (c *RecordCache) Invalidate(relPath string) {
	c.mu.Lock()
	delete(c.records, relPath)
	c.mu.Unlock()
}

// ToRecord converts a cache entry back to a record
func (m *CachedRecord) ToRecord() models.Record {
	rec := m.Record
	rec.Position = m.Position
	rec.UpdatedAt = m.UpdatedAt
	rec.FilePath = m.FilePath
	return rec
}

// Cleanup removes cache entries for files that no longer exist and reports
// whether anything was removed
func (c *RecordCache) Cleanup(existingFiles map[string]bool) bool {
	removed := false
	c.mu.Lock()
	for filePath := range c.records {
		if !existingFiles[filePath] {
			delete(c.records, filePath)
			removed = true
		}
	}
	c.mu.Unlock()
	return removed
}

// Len returns the number of cached records
func (c *RecordCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
