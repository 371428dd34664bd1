package services

import (
	"github.com/algolite/algolite/config"
	"github.com/algolite/algolite/model"
)

// BoolExpr is an opaque boolean query value in the index's native algebra.
// The query layer only builds these values through a QueryAlgebra and hands
// them back to the index; it never inspects them.
type BoolExpr interface{}

// QueryAlgebra is the boolean combinator capability an index exposes.
// Injecting it keeps the filter compiler decoupled from any concrete index
// implementation, so tests can record expression shapes with a mock.
type QueryAlgebra interface {
	// Term produces a leaf expression matching records whose field carries the
	// value named by a "key:value" facet term.
	Term(term string) BoolExpr
	// Text produces an expression matching records containing every token of
	// the free-text query in some field.
	Text(query string) BoolExpr
	// Wildcard produces the match-all expression (the universe).
	Wildcard() BoolExpr
	And(left, right BoolExpr) BoolExpr
	Or(left, right BoolExpr) BoolExpr
	// Not matches everything universe matches except what expr matches.
	Not(universe, expr BoolExpr) BoolExpr
}

// RawHit is one record returned by the index capability before the query
// layer shapes it for the public API.
type RawHit struct {
	ID     string // external object identifier
	Record model.Record
}

// Searcher executes boolean queries against a single index. Expressions
// passed together in one Search call are implicitly intersected; logic within
// an expression follows the tree built through the algebra.
type Searcher interface {
	Algebra() QueryAlgebra
	Search(exprs ...BoolExpr) ([]RawHit, error)
}

// Writer mutates the records of a single index.
type Writer interface {
	SaveRecord(objectID string, record model.Record) error
	DeleteRecord(objectID string) error
	GetRecord(objectID string) (model.Record, bool)
	ClearRecords() error
	RecordCount() int
	AllRecords() []RawHit
}

// IndexAccessor combines read and write access to one index.
type IndexAccessor interface {
	Writer
	Searcher
	Name() string
}

// SortHint carries a client-requested ordering derived from replica-style
// index name routing (e.g. "products_price_asc").
type SortHint struct {
	Attribute string
	Desc      bool
}

// IndexManager manages the lifecycle of indexes.
type IndexManager interface {
	GetIndex(name string) (IndexAccessor, error)
	// GetOrCreateIndex returns the index, creating an empty one when it does
	// not exist yet (write paths create indexes implicitly).
	GetOrCreateIndex(name string) (IndexAccessor, error)
	// ResolveIndex resolves a query-time index name: an exact match wins;
	// otherwise a replica-style suffix routes to the base index with a sort hint.
	ResolveIndex(name string) (IndexAccessor, SortHint, error)
	DeleteIndex(name string) error
	ListIndexes() []string
	// GetSettings returns the stored settings of an existing index, falling
	// back to defaults when none were ever set.
	GetSettings(name string) (config.Settings, error)
	// SetSettings validates and stores settings, creating the index when it
	// does not exist yet.
	SetSettings(name string, settings config.Settings) error
}

// QueryRequest carries one search request against an index.
// Query distinguishes absent (nil) from present-but-empty: an empty query
// matches everything while an absent one contributes no text clause.
type QueryRequest struct {
	Query        *string
	Filters      string
	FacetFilters []interface{}
	Page         int
	HitsPerPage  int
	Sort         SortHint
}

// QueryResult is the Algolia-shaped response for one query.
type QueryResult struct {
	Hits             []model.Record `json:"hits"`
	NbHits           int            `json:"nbHits"`
	Page             int            `json:"page"`
	NbPages          int            `json:"nbPages"`
	HitsPerPage      int            `json:"hitsPerPage"`
	ProcessingTimeMS int64          `json:"processingTimeMS"`
	Query            string         `json:"query"`
}
