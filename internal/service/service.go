package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sahilm/fuzzy"

	"github.com/dpshade/quick-hb/internal/compiler"
	"github.com/dpshade/quick-hb/internal/config"
	"github.com/dpshade/quick-hb/internal/errors"
	"github.com/dpshade/quick-hb/internal/git"
	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/renderer"
	"github.com/dpshade/quick-hb/internal/selector"
	"github.com/dpshade/quick-hb/internal/spintax"
	"github.com/dpshade/quick-hb/internal/storage"
	"github.com/dpshade/quick-hb/internal/validation"
	"github.com/dpshade/quick-hb/internal/variables"
)

// DateVariable is seeded with today's date when no value was entered
const DateVariable = "Datum"

// Service provides business logic for the record library and document
type Service struct {
	storage   *storage.Storage
	config    *config.Config
	validator *validation.Validator
	gitSync   *git.GitSync

	mu       sync.RWMutex
	records  models.Collection // Cached records for fast access
	loaded   bool
	revision uint64 // bumped whenever the cached records change

	discoverCache *lru.Cache[string, []string]
	countCache    *lru.Cache[string, int]

	now func() time.Time
}

// NewService creates a service from the configuration in QUICK_HB_DIR or ~/.quick-hb
func NewService() (*Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewServiceWithConfig(cfg)
}

// NewServiceWithConfig creates a service for an already loaded configuration
func NewServiceWithConfig(cfg *config.Config) (*Service, error) {
	store, err := storage.NewStorage(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	discoverCache, err := lru.New[string, []string](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create variable cache: %w", err)
	}
	countCache, err := lru.New[string, int](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create count cache: %w", err)
	}

	gitSync := git.NewGitSync(cfg.RootDir)
	if cfg.GitSync {
		gitSync.Initialize()
	}

	return &Service{
		storage:       store,
		config:        cfg,
		validator:     validation.NewValidator(),
		gitSync:       gitSync,
		discoverCache: discoverCache,
		countCache:    countCache,
		now:           time.Now,
	}, nil
}

// InitLibrary initializes a new record library
func (s *Service) InitLibrary() error {
	return s.storage.InitLibrary()
}

// Config returns the active configuration
func (s *Service) Config() *config.Config {
	return s.config
}

// BaseDir returns the library root
func (s *Service) BaseDir() string {
	return s.storage.GetBaseDir()
}

// loadRecords reads all records into memory for fast access
func (s *Service) loadRecords() error {
	records, err := s.storage.ListRecords()
	if err != nil {
		return errors.StorageError("list records", err)
	}
	s.mu.Lock()
	s.records = records
	s.loaded = true
	s.revision++
	s.mu.Unlock()
	return nil
}

// ListRecords returns all records in collection order
func (s *Service) ListRecords() (models.Collection, error) {
	records, _, err := s.snapshot()
	return records, err
}

// snapshot returns the records together with the revision they belong to.
// Both are read under one lock so cached results never mix revisions.
func (s *Service) snapshot() (models.Collection, uint64, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		if err := s.loadRecords(); err != nil {
			return nil, 0, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.Clone(), s.revision, nil
}

// GetRecord returns a record by ID
func (s *Service) GetRecord(id string) (*models.Record, error) {
	records, err := s.ListRecords()
	if err != nil {
		return nil, err
	}

	rec, ok := records.ByID(id)
	if !ok {
		return nil, errors.NotFoundError(fmt.Sprintf("record '%s'", id))
	}
	return &rec, nil
}

// AddRecord validates and stores a new record at the end of the collection.
// Authoring warnings are returned alongside a successful save.
func (s *Service) AddRecord(rec *models.Record) ([]string, error) {
	rec.ID = strings.TrimSpace(rec.ID)
	result := s.validator.ValidateRecord(*rec)
	if !result.Valid {
		return nil, result.ToAppError()
	}

	records, err := s.ListRecords()
	if err != nil {
		return nil, err
	}
	if _, exists := records.ByID(rec.ID); exists {
		return nil, errors.AlreadyExistsError(fmt.Sprintf("record '%s'", rec.ID))
	}
	path := storage.RecordPath(rec.ID)
	for _, other := range records {
		if other.FilePath == path {
			return nil, errors.AlreadyExistsError(fmt.Sprintf("record file '%s'", path)).
				WithDetails(fmt.Sprintf("id '%s' maps to the same file as '%s'", rec.ID, other.ID))
		}
	}

	rec.FilePath = path
	rec.Position = nextPosition(records)
	rec.UpdatedAt = s.now()
	if err := s.storage.SaveRecord(rec); err != nil {
		return nil, errors.StorageError("save record", err)
	}
	s.syncChanges("Add record " + rec.ID)

	return result.WarningMessages(), s.loadRecords()
}

// UpdateRecord validates and replaces an existing record, keeping its file
// and its place in the collection
func (s *Service) UpdateRecord(rec *models.Record) ([]string, error) {
	result := s.validator.ValidateRecord(*rec)
	if !result.Valid {
		return nil, result.ToAppError()
	}

	existing, err := s.GetRecord(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("cannot update non-existent record: %w", err)
	}

	rec.FilePath = existing.FilePath
	rec.Position = existing.Position
	rec.UpdatedAt = s.now()
	if err := s.storage.SaveRecord(rec); err != nil {
		return nil, errors.StorageError("save record", err)
	}
	s.syncChanges("Update record " + rec.ID)

	return result.WarningMessages(), s.loadRecords()
}

// DeleteRecord deletes a record by ID
func (s *Service) DeleteRecord(id string) error {
	rec, err := s.GetRecord(id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteRecord(rec); err != nil {
		return errors.StorageError("delete record", err)
	}
	s.syncChanges("Delete record " + id)

	return s.loadRecords()
}

// syncChanges commits the library after a write when git_sync is configured.
// Sync failures never fail the write itself.
func (s *Service) syncChanges(message string) {
	if !s.config.GitSync || !s.gitSync.IsEnabled() {
		return
	}
	if err := s.gitSync.SyncChanges(context.Background(), message); err != nil {
		log.Printf("Warning: git sync failed: %v", err)
	}
}

// InitSync puts the library under version control and enables syncing
func (s *Service) InitSync(ctx context.Context) error {
	if err := s.gitSync.Init(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageFailure, "Failed to initialize git repository")
	}
	return nil
}

// Sync commits pending library changes with message
func (s *Service) Sync(ctx context.Context, message string) error {
	if !s.gitSync.IsRepository() {
		return errors.InvalidInputError("Library is not a git repository (run 'quick-hb sync init')")
	}
	s.gitSync.Initialize()
	if err := s.gitSync.SyncChanges(ctx, message); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageFailure, "Git sync failed")
	}
	return nil
}

// PullChanges merges remote library changes and reloads the record cache
func (s *Service) PullChanges(ctx context.Context) error {
	if err := s.gitSync.PullChanges(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageFailure, "Git pull failed")
	}
	return s.loadRecords()
}

// SyncStatus describes the version control state of the library
func (s *Service) SyncStatus(ctx context.Context) (string, error) {
	return s.gitSync.Status(ctx)
}

// BackgroundSync pulls remote changes periodically until ctx is done
func (s *Service) BackgroundSync(ctx context.Context, interval time.Duration) {
	s.gitSync.BackgroundSync(ctx, interval, func() {
		if err := s.loadRecords(); err != nil {
			log.Printf("Warning: reload after pull failed: %v", err)
		}
	})
}

func nextPosition(records models.Collection) int {
	next := 1
	for _, rec := range records {
		if rec.Position >= next {
			next = rec.Position + 1
		}
	}
	return next
}

// SearchRecords searches records by query string
func (s *Service) SearchRecords(query string) (models.Collection, error) {
	records, err := s.ListRecords()
	if err != nil {
		return nil, err
	}

	if query == "" {
		return records, nil
	}

	// Create searchable strings for each record
	searchStrings := make([]string, 0, len(records))
	for _, r := range records {
		searchStrings = append(searchStrings, fmt.Sprintf("%s %s %s %s %s",
			r.Name,
			r.Shortcut,
			r.ID,
			r.Category,
			r.Section))
	}

	matches := fuzzy.Find(query, searchStrings)

	results := make(models.Collection, 0, len(matches))
	for _, match := range matches {
		results = append(results, records[match.Index])
	}

	return results, nil
}

// Suggest applies the editor's autocomplete rule to the library
func (s *Service) Suggest(word string, limit int) (models.Collection, error) {
	records, err := s.ListRecords()
	if err != nil {
		return nil, err
	}
	return selector.Suggest(records, word, limit), nil
}

// Sections returns the candidate records of a section under the configured policy
func (s *Service) Sections(header string) (models.Collection, error) {
	records, err := s.ListRecords()
	if err != nil {
		return nil, err
	}
	return selector.SelectBySection(records, header, s.config.Policy()), nil
}

// Structure returns the saved document structure, or the one derived from the
// section labels of the library
func (s *Service) Structure() (models.Structure, error) {
	stored, err := s.storage.LoadStructure()
	if err != nil {
		return nil, errors.FileCorruptedError("structure", err)
	}
	if len(stored) > 0 {
		return stored.Normalize(), nil
	}

	records, err := s.ListRecords()
	if err != nil {
		return nil, err
	}
	return selector.Sections(records), nil
}

// SetStructure stores a user-edited structure. An empty structure removes the
// override so the derived one applies again.
func (s *Service) SetStructure(structure models.Structure) (models.Structure, error) {
	var normalized models.Structure
	if len(structure) > 0 {
		normalized = structure.Normalize()
	}
	if err := s.storage.SaveStructure(normalized); err != nil {
		return nil, errors.StorageError("save structure", err)
	}
	return s.Structure()
}

// Variables returns the entered values. The date variable is filled with
// today's date when it has no value yet.
func (s *Service) Variables() (models.VariableMap, error) {
	vars, err := s.storage.LoadVariables()
	if err != nil {
		return nil, errors.FileCorruptedError("variables", err)
	}
	if _, ok := vars.Lookup(DateVariable); !ok {
		vars[DateVariable] = s.now().Format("02.01.2006")
	}
	return vars, nil
}

// SetVariable stores one value. An empty value clears the variable.
func (s *Service) SetVariable(name, value string) error {
	result := s.validator.Validate("set_variable", map[string]interface{}{"name": name, "value": value})
	if !result.Valid {
		return result.ToAppError()
	}

	vars, err := s.storage.LoadVariables()
	if err != nil {
		return errors.FileCorruptedError("variables", err)
	}
	if value == "" {
		delete(vars, name)
	} else {
		vars[name] = value
	}
	if err := s.storage.SaveVariables(vars); err != nil {
		return errors.StorageError("save variables", err)
	}
	return nil
}

// DiscoverVariables lists the placeholders referenced by the library for a gender
func (s *Service) DiscoverVariables(gender models.Gender) ([]string, error) {
	records, rev, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		records = selector.DefaultCollection()
	}

	key := fmt.Sprintf("%s/%d", gender, rev)
	if names, ok := s.discoverCache.Get(key); ok {
		return append([]string(nil), names...), nil
	}
	names := variables.Discover(records, gender)
	s.discoverCache.Add(key, names)
	return append([]string(nil), names...), nil
}

// CountVariants returns how many texts a template can produce
func (s *Service) CountVariants(template string) int {
	if n, ok := s.countCache.Get(template); ok {
		return n
	}
	n := spintax.Count(template)
	s.countCache.Add(template, n)
	return n
}

// Renderer returns a renderer over the current library and variables
func (s *Service) Renderer(gender models.Gender) (*renderer.Renderer, error) {
	records, err := s.ListRecords()
	if err != nil {
		return nil, err
	}
	vars, err := s.Variables()
	if err != nil {
		return nil, err
	}
	r := renderer.NewRenderer(records, gender, vars)
	r.Policy = s.config.Policy()
	return r, nil
}

// Spin resolves one random variant of a record
func (s *Service) Spin(id string, gender models.Gender) (string, error) {
	rec, err := s.GetRecord(id)
	if err != nil {
		return "", err
	}
	r, err := s.Renderer(gender)
	if err != nil {
		return "", err
	}
	return r.Fragment(*rec), nil
}

// SpinText resolves an ad-hoc template with the stored variables
func (s *Service) SpinText(text string, gender models.Gender) (string, error) {
	r, err := s.Renderer(gender)
	if err != nil {
		return "", err
	}
	return r.Text(text), nil
}

// Variants enumerates the resolutions of a record and reports the total count
func (s *Service) Variants(id string, gender models.Gender, limit int) ([]string, int, error) {
	rec, err := s.GetRecord(id)
	if err != nil {
		return nil, 0, err
	}
	r, err := s.Renderer(gender)
	if err != nil {
		return nil, 0, err
	}
	return r.Variants(*rec, limit), s.CountVariants(rec.Template(gender)), nil
}

// Draft returns the saved record picks
func (s *Service) Draft() (*models.Draft, error) {
	d, err := s.storage.LoadDraft()
	if err != nil {
		return nil, errors.FileCorruptedError("draft", err)
	}
	return d, nil
}

// PickRecord appends a record to a section of the draft
func (s *Service) PickRecord(header, id string) error {
	if _, err := s.GetRecord(id); err != nil {
		return err
	}
	d, err := s.Draft()
	if err != nil {
		return err
	}
	d.Pick(header, id)
	if err := s.storage.SaveDraft(d); err != nil {
		return errors.StorageError("save draft", err)
	}
	return nil
}

// ClearDraft removes all picks and keeps the gender
func (s *Service) ClearDraft() error {
	d, err := s.Draft()
	if err != nil {
		return err
	}
	d.Picks = nil
	if err := s.storage.SaveDraft(d); err != nil {
		return errors.StorageError("save draft", err)
	}
	return nil
}

// SaveGender remembers the gender last used for the draft
func (s *Service) SaveGender(gender models.Gender) error {
	d, err := s.Draft()
	if err != nil {
		return err
	}
	d.Gender = gender
	if err := s.storage.SaveDraft(d); err != nil {
		return errors.StorageError("save draft", err)
	}
	return nil
}

// DefaultGender returns the draft's gender, or the configured default
func (s *Service) DefaultGender() models.Gender {
	if d, err := s.Draft(); err == nil && d.Gender != "" {
		return d.Gender
	}
	return s.config.Gender()
}

// Output formats of CompileDocument
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// CompileDocument renders the whole document with the stored structure,
// draft and variables
func (s *Service) CompileDocument(gender models.Gender, format string, opts compiler.Options) (string, error) {
	r, err := s.Renderer(gender)
	if err != nil {
		return "", err
	}
	structure, err := s.Structure()
	if err != nil {
		return "", err
	}
	draft, err := s.Draft()
	if err != nil {
		return "", err
	}

	switch format {
	case "", FormatText:
		return r.RenderText(structure, draft, opts), nil
	case FormatMarkdown:
		return r.RenderMarkdown(structure, draft), nil
	case FormatJSON:
		return r.RenderJSON(structure, draft, opts)
	case FormatHTML:
		// placeholders carry the editor's span markers
		r.Formatter = variables.HTML
		return r.RenderText(structure, draft, opts), nil
	default:
		return "", errors.InvalidInputError(fmt.Sprintf("unknown format '%s'", format))
	}
}

// BuildDocument renders the document once and returns its structured form
func (s *Service) BuildDocument(gender models.Gender, opts compiler.Options) (renderer.Document, error) {
	r, err := s.Renderer(gender)
	if err != nil {
		return renderer.Document{}, err
	}
	structure, err := s.Structure()
	if err != nil {
		return renderer.Document{}, err
	}
	draft, err := s.Draft()
	if err != nil {
		return renderer.Document{}, err
	}
	return r.BuildDocument(structure, draft, opts), nil
}

// Import stores the records of a legacy JSON export
func (s *Service) Import(r io.Reader) (int, error) {
	n, err := s.storage.ImportJSON(r)
	if reloadErr := s.loadRecords(); err == nil {
		err = reloadErr
	}
	if err != nil {
		return n, errors.Wrap(err, errors.ErrCodeFileCorrupted, "Import failed")
	}
	s.syncChanges(fmt.Sprintf("Import %d records", n))
	return n, nil
}

// Export writes the library in the legacy JSON format
func (s *Service) Export(w io.Writer) error {
	records, err := s.ListRecords()
	if err != nil {
		return err
	}
	if err := storage.EncodeLegacyJSON(w, records); err != nil {
		return errors.StorageError("export records", err)
	}
	return nil
}

// Stats summarizes the library for status displays
type Stats struct {
	Records  int `json:"records"`
	Sections int `json:"sections"`
	// Variants is the total number of texts the library can produce; it
	// saturates at math.MaxInt
	Variants int `json:"variants"`
}

// Stats computes the library summary for a gender
func (s *Service) Stats(gender models.Gender) (Stats, error) {
	records, err := s.ListRecords()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Records: len(records), Sections: len(selector.Sections(records))}
	for _, rec := range records {
		n := s.CountVariants(rec.Template(gender))
		if st.Variants > math.MaxInt-n {
			st.Variants = math.MaxInt
			break
		}
		st.Variants += n
	}
	return st, nil
}
