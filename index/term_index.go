// Package index implements the index capability: facet-term and free-text
// postings over records, plus the boolean expression algebra evaluated
// against them.
package index

import (
	"strconv"

	"github.com/algolite/algolite/internal/tokenizer"
	"github.com/algolite/algolite/model"
)

// IDSet is a set of internal record ids.
type IDSet map[uint32]struct{}

// Clone returns a copy of the set. Evaluation works on copies so expression
// combinators can mutate sets freely.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// TermIndex maps "field:value" facet terms and lowercased free-text tokens
// to the set of records carrying them. Docs is the universe of indexed ids.
// The owning index instance serializes access together with its record store.
type TermIndex struct {
	Terms  map[string]IDSet
	Tokens map[string]IDSet
	Docs   IDSet
}

// NewTermIndex creates an empty TermIndex.
func NewTermIndex() *TermIndex {
	return &TermIndex{
		Terms:  make(map[string]IDSet),
		Tokens: make(map[string]IDSet),
		Docs:   make(IDSet),
	}
}

// Add indexes a record under the given internal id.
func (ti *TermIndex) Add(id uint32, rec model.Record) {
	ti.Docs[id] = struct{}{}
	for field, value := range rec {
		for _, term := range facetTerms(field, value) {
			set, ok := ti.Terms[term]
			if !ok {
				set = make(IDSet)
				ti.Terms[term] = set
			}
			set[id] = struct{}{}
		}
		for _, token := range textTokens(value) {
			set, ok := ti.Tokens[token]
			if !ok {
				set = make(IDSet)
				ti.Tokens[token] = set
			}
			set[id] = struct{}{}
		}
	}
}

// Remove unindexes a record. The record must be the same one that was added.
func (ti *TermIndex) Remove(id uint32, rec model.Record) {
	delete(ti.Docs, id)
	for field, value := range rec {
		for _, term := range facetTerms(field, value) {
			if set, ok := ti.Terms[term]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(ti.Terms, term)
				}
			}
		}
		for _, token := range textTokens(value) {
			if set, ok := ti.Tokens[token]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(ti.Tokens, token)
				}
			}
		}
	}
}

// Clear drops all postings.
func (ti *TermIndex) Clear() {
	ti.Terms = make(map[string]IDSet)
	ti.Tokens = make(map[string]IDSet)
	ti.Docs = make(IDSet)
}

// facetTerms renders the "field:value" terms a field value produces. Array
// fields contribute one term per element; scalars are rendered the way their
// JSON form reads.
func facetTerms(field string, value interface{}) []string {
	values := facetValues(value)
	terms := make([]string, 0, len(values))
	for _, v := range values {
		terms = append(terms, field+":"+v)
	}
	return terms
}

func facetValues(value interface{}) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case bool:
		return []string{strconv.FormatBool(v)}
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case int:
		return []string{strconv.Itoa(v)}
	case int64:
		return []string{strconv.FormatInt(v, 10)}
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out
	case []interface{}:
		var out []string
		for _, item := range v {
			out = append(out, facetValues(item)...)
		}
		return out
	default:
		return nil
	}
}

// textTokens tokenizes the free-text content of a field value.
func textTokens(value interface{}) []string {
	switch v := value.(type) {
	case string:
		return tokenizer.Tokenize(v)
	case []string:
		var out []string
		for _, item := range v {
			out = append(out, tokenizer.Tokenize(item)...)
		}
		return out
	case []interface{}:
		var out []string
		for _, item := range v {
			out = append(out, textTokens(item)...)
		}
		return out
	default:
		return nil
	}
}
