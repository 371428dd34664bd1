package engine

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/algolite/algolite/config"
	apperrors "github.com/algolite/algolite/internal/errors"
	"github.com/algolite/algolite/internal/storage"
	"github.com/algolite/algolite/model"
	"github.com/algolite/algolite/services"
)

// Engine manages all indexes backed by one embedded database.
// It implements the services.IndexManager interface.
type Engine struct {
	mu       sync.RWMutex
	indexes  map[string]*IndexInstance
	settings map[string]config.Settings
	storage  *storage.Store
	log      zerolog.Logger
}

// NewEngine opens the database at dbPath and replays all persisted records
// into in-memory indexes.
func NewEngine(dbPath string, logger zerolog.Logger) (*Engine, error) {
	st, err := storage.Open(dbPath)
	if err != nil {
		return nil, err
	}

	eng := &Engine{
		indexes:  make(map[string]*IndexInstance),
		settings: make(map[string]config.Settings),
		storage:  st,
		log:      logger,
	}
	eng.loadIndexesFromStorage()
	return eng, nil
}

// Close releases the underlying database.
func (e *Engine) Close() error {
	return e.storage.Close()
}

func (e *Engine) loadIndexesFromStorage() {
	names, err := e.storage.ListIndexes()
	if err != nil {
		e.log.Warn().Err(err).Msg("failed to list persisted indexes, starting empty")
		return
	}

	for _, name := range names {
		instance := newIndexInstance(name, e.storage)
		loaded, skipped := 0, 0
		err := e.storage.LoadIndex(name, func(objectID string, body []byte) error {
			var rec model.Record
			if err := json.Unmarshal(body, &rec); err != nil {
				skipped++
				e.log.Warn().Err(err).Str("index", name).Str("objectID", objectID).Msg("skipping unreadable persisted record")
				return nil
			}
			instance.loadRecord(objectID, rec)
			loaded++
			return nil
		})
		if err != nil {
			e.log.Warn().Err(err).Str("index", name).Msg("failed to load index, skipping")
			continue
		}
		e.indexes[name] = instance
		e.loadSettingsFromStorage(name)
		e.log.Info().Str("index", name).Int("records", loaded).Int("skipped", skipped).Msg("index loaded")
	}
}

func (e *Engine) loadSettingsFromStorage(name string) {
	body, ok, err := e.storage.LoadSettings(name)
	if err != nil {
		e.log.Warn().Err(err).Str("index", name).Msg("failed to load persisted settings, using defaults")
		return
	}
	if !ok {
		return
	}
	var settings config.Settings
	if err := json.Unmarshal(body, &settings); err != nil {
		e.log.Warn().Err(err).Str("index", name).Msg("skipping unreadable persisted settings")
		return
	}
	e.settings[name] = settings
}

// GetIndex retrieves an index by its exact name.
func (e *Engine) GetIndex(name string) (services.IndexAccessor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.indexes[name]
	if !exists {
		return nil, apperrors.NewIndexNotFoundError(name)
	}
	return instance, nil
}

// GetOrCreateIndex returns the named index, creating an empty one when it
// does not exist. Write paths create indexes implicitly.
func (e *Engine) GetOrCreateIndex(name string) (services.IndexAccessor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if instance, exists := e.indexes[name]; exists {
		return instance, nil
	}
	instance := newIndexInstance(name, e.storage)
	e.indexes[name] = instance
	e.log.Info().Str("index", name).Msg("index created")
	return instance, nil
}

// ResolveIndex resolves a query-time index name. An exact match wins; failing
// that, a replica-style suffix ("<base>_<attr>_asc" or "_desc") routes to the
// base index with the corresponding sort hint.
func (e *Engine) ResolveIndex(name string) (services.IndexAccessor, services.SortHint, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if instance, exists := e.indexes[name]; exists {
		return instance, services.SortHint{}, nil
	}

	if base, attr, desc, ok := splitReplicaName(name); ok {
		if instance, exists := e.indexes[base]; exists {
			return instance, services.SortHint{Attribute: attr, Desc: desc}, nil
		}
	}
	return nil, services.SortHint{}, apperrors.NewIndexNotFoundError(name)
}

// DeleteIndex removes an index from memory and disk.
func (e *Engine) DeleteIndex(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indexes[name]; !exists {
		return apperrors.NewIndexNotFoundError(name)
	}
	if err := e.storage.ClearIndex(name); err != nil {
		return err
	}
	if err := e.storage.DeleteSettings(name); err != nil {
		return err
	}
	delete(e.indexes, name)
	delete(e.settings, name)
	e.log.Info().Str("index", name).Msg("index deleted")
	return nil
}

// ListIndexes returns the names of all existing indexes, sorted.
func (e *Engine) ListIndexes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.indexes))
	for name := range e.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSettings returns the settings of an existing index. Indexes that never
// had settings applied report the defaults.
func (e *Engine) GetSettings(name string) (config.Settings, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, exists := e.indexes[name]; !exists {
		return config.Settings{}, apperrors.NewIndexNotFoundError(name)
	}
	if settings, ok := e.settings[name]; ok {
		return settings, nil
	}
	return config.DefaultSettings(), nil
}

// SetSettings validates and persists settings, creating the index when it
// does not exist yet, matching the upstream setSettings behavior.
func (e *Engine) SetSettings(name string, settings config.Settings) error {
	if problems := settings.Validate(); len(problems) > 0 {
		return apperrors.NewInvalidSettingsError(problems)
	}

	body, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.storage.SaveSettings(name, body); err != nil {
		return err
	}
	if _, exists := e.indexes[name]; !exists {
		e.indexes[name] = newIndexInstance(name, e.storage)
		e.log.Info().Str("index", name).Msg("index created")
	}
	e.settings[name] = settings
	return nil
}

// splitReplicaName splits a replica-style name into base index, sort
// attribute and direction. The attribute is the last underscore-separated
// segment before the direction suffix.
func splitReplicaName(name string) (base, attr string, desc, ok bool) {
	switch {
	case strings.HasSuffix(name, "_asc"):
		name = strings.TrimSuffix(name, "_asc")
	case strings.HasSuffix(name, "_desc"):
		name = strings.TrimSuffix(name, "_desc")
		desc = true
	default:
		return "", "", false, false
	}

	i := strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", "", false, false
	}
	return name[:i], name[i+1:], desc, true
}
