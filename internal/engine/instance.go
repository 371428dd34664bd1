package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/algolite/algolite/index"
	"github.com/algolite/algolite/internal/storage"
	"github.com/algolite/algolite/model"
	"github.com/algolite/algolite/services"
	"github.com/algolite/algolite/store"
)

// IndexInstance holds all components of a single index: the term postings,
// the record store and the write-through persistence handle.
// It implements the services.IndexAccessor interface.
type IndexInstance struct {
	name      string
	mu        sync.RWMutex
	termIndex *index.TermIndex
	records   *store.RecordStore
	storage   *storage.Store
}

func newIndexInstance(name string, st *storage.Store) *IndexInstance {
	return &IndexInstance{
		name:      name,
		termIndex: index.NewTermIndex(),
		records:   store.NewRecordStore(),
		storage:   st,
	}
}

// Name returns the index name.
func (i *IndexInstance) Name() string {
	return i.name
}

// loadRecord puts a record into memory without touching persistence.
// Used by the engine while replaying storage at startup.
func (i *IndexInstance) loadRecord(objectID string, rec model.Record) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.applyRecord(objectID, rec)
}

// applyRecord indexes a record in memory. Callers hold mu.
func (i *IndexInstance) applyRecord(objectID string, rec model.Record) {
	id, previous, replaced := i.records.Put(objectID, rec)
	if replaced {
		i.termIndex.Remove(id, previous)
	}
	i.termIndex.Add(id, rec)
}

// SaveRecord persists and indexes a record under objectID, replacing any
// previous record with the same objectID. The storage write happens under
// the same lock as the in-memory apply so concurrent saves of one objectID
// commit to disk in the order they take effect in memory.
func (i *IndexInstance) SaveRecord(objectID string, rec model.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record '%s': %w", objectID, err)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.storage.SaveRecord(i.name, objectID, body); err != nil {
		return err
	}
	i.applyRecord(objectID, rec)
	return nil
}

// DeleteRecord removes a record. Deleting a missing record is a no-op so the
// operation stays idempotent.
func (i *IndexInstance) DeleteRecord(objectID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.storage.DeleteRecord(i.name, objectID); err != nil {
		return err
	}
	if id, rec, ok := i.records.Delete(objectID); ok {
		i.termIndex.Remove(id, rec)
	}
	return nil
}

// GetRecord returns the record stored under objectID.
func (i *IndexInstance) GetRecord(objectID string) (model.Record, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.records.Get(objectID)
}

// ClearRecords removes all records from the index, in memory and on disk.
func (i *IndexInstance) ClearRecords() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.storage.ClearIndex(i.name); err != nil {
		return err
	}
	i.records.Clear()
	i.termIndex.Clear()
	return nil
}

// RecordCount returns the number of records in the index.
func (i *IndexInstance) RecordCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.records.Count()
}

// AllRecords returns every record in ascending internal id order.
func (i *IndexInstance) AllRecords() []services.RawHit {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.collectHits(nil)
}

// Algebra returns the boolean combinator capability of this index.
func (i *IndexInstance) Algebra() services.QueryAlgebra {
	return index.Algebra{}
}

// Search evaluates the given expressions and intersects their results.
// No expressions means match-all. Hits come back in ascending internal id
// order, which is insertion order for never-replaced records.
func (i *IndexInstance) Search(exprs ...services.BoolExpr) ([]services.RawHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(exprs) == 0 {
		return i.collectHits(nil), nil
	}

	result, err := i.termIndex.Eval(exprs[0])
	if err != nil {
		return nil, err
	}
	for _, expr := range exprs[1:] {
		if len(result) == 0 {
			break
		}
		set, err := i.termIndex.Eval(expr)
		if err != nil {
			return nil, err
		}
		for id := range result {
			if _, ok := set[id]; !ok {
				delete(result, id)
			}
		}
	}
	return i.collectHits(result), nil
}

// collectHits maps a set of internal ids (nil for all) to RawHits sorted by
// internal id. Callers hold mu.
func (i *IndexInstance) collectHits(ids index.IDSet) []services.RawHit {
	ordered := make([]uint32, 0, len(i.records.Records))
	if ids == nil {
		for id := range i.records.Records {
			ordered = append(ordered, id)
		}
	} else {
		for id := range ids {
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(a, b int) bool { return ordered[a] < ordered[b] })

	hits := make([]services.RawHit, 0, len(ordered))
	for _, id := range ordered {
		objectID, rec, ok := i.records.GetByInternalID(id)
		if !ok {
			continue
		}
		hits = append(hits, services.RawHit{ID: objectID, Record: rec})
	}
	return hits
}
