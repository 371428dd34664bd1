package model

// ObjectIDField is the public identifier field every record carries in API
// responses. Internally records are keyed by a numeric id; the query layer
// attaches this field when shaping hits.
const ObjectIDField = "objectID"

// Record is a flexible map representing a JSON object stored in an index.
// The objectID is the only field with reserved meaning; everything else is
// schemaless and depends entirely on what the client indexes.
type Record map[string]interface{}

// ObjectID returns the record's objectID if it is present and a non-empty string.
func (r Record) ObjectID() (string, bool) {
	if id, ok := r[ObjectIDField]; ok {
		if str, sok := id.(string); sok && str != "" {
			return str, true
		}
	}
	return "", false
}

// Clone returns a shallow copy of the record. Hit shaping mutates the copy
// (attaching objectID) without touching the stored record.
func (r Record) Clone() Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}
