// Package store holds the in-memory record storage for a single index.
package store

import (
	"github.com/algolite/algolite/model"
)

// RecordStore maps internal numeric ids to records and keeps the
// bidirectional mapping to the user-provided objectID. The index instance
// owning the store serializes access together with its term index.
type RecordStore struct {
	Records                map[uint32]model.Record
	ExternalIDtoInternalID map[string]uint32
	InternalIDtoExternalID map[uint32]string
	NextID                 uint32
}

// NewRecordStore creates an empty RecordStore.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		Records:                make(map[uint32]model.Record),
		ExternalIDtoInternalID: make(map[string]uint32),
		InternalIDtoExternalID: make(map[uint32]string),
	}
}

// Put stores a record under the given objectID and returns its internal id
// together with the record it replaced, if any.
func (rs *RecordStore) Put(objectID string, rec model.Record) (id uint32, previous model.Record, replaced bool) {
	if existing, ok := rs.ExternalIDtoInternalID[objectID]; ok {
		previous = rs.Records[existing]
		rs.Records[existing] = rec
		return existing, previous, true
	}

	id = rs.NextID
	rs.NextID++
	rs.Records[id] = rec
	rs.ExternalIDtoInternalID[objectID] = id
	rs.InternalIDtoExternalID[id] = objectID
	return id, nil, false
}

// Delete removes a record by objectID, returning it for unindexing.
func (rs *RecordStore) Delete(objectID string) (id uint32, rec model.Record, ok bool) {
	id, ok = rs.ExternalIDtoInternalID[objectID]
	if !ok {
		return 0, nil, false
	}
	rec = rs.Records[id]
	delete(rs.Records, id)
	delete(rs.ExternalIDtoInternalID, objectID)
	delete(rs.InternalIDtoExternalID, id)
	return id, rec, true
}

// Get returns the record stored under objectID.
func (rs *RecordStore) Get(objectID string) (model.Record, bool) {
	id, ok := rs.ExternalIDtoInternalID[objectID]
	if !ok {
		return nil, false
	}
	return rs.Records[id], true
}

// GetByInternalID returns the record and its objectID for an internal id.
func (rs *RecordStore) GetByInternalID(id uint32) (objectID string, rec model.Record, ok bool) {
	objectID, ok = rs.InternalIDtoExternalID[id]
	if !ok {
		return "", nil, false
	}
	return objectID, rs.Records[id], true
}

// Clear drops all records. Internal ids are not reused across a clear.
func (rs *RecordStore) Clear() {
	rs.Records = make(map[uint32]model.Record)
	rs.ExternalIDtoInternalID = make(map[string]uint32)
	rs.InternalIDtoExternalID = make(map[uint32]string)
}

// Count returns the number of stored records.
func (rs *RecordStore) Count() int {
	return len(rs.Records)
}
