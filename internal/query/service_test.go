package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/algolite/algolite/internal/errors"
	"github.com/algolite/algolite/model"
	"github.com/algolite/algolite/services"
)

// fakeIndex is a canned IndexAccessor: it records the expressions passed to
// Search and returns a fixed hit list.
type fakeIndex struct {
	hits      []services.RawHit
	searchErr error
	gotExprs  []services.BoolExpr
}

func (f *fakeIndex) Name() string                   { return "fake" }
func (f *fakeIndex) Algebra() services.QueryAlgebra { return shapeAlgebra{} }
func (f *fakeIndex) RecordCount() int               { return len(f.hits) }
func (f *fakeIndex) AllRecords() []services.RawHit  { return f.hits }
func (f *fakeIndex) ClearRecords() error            { return nil }
func (f *fakeIndex) DeleteRecord(string) error      { return nil }
func (f *fakeIndex) SaveRecord(string, model.Record) error {
	return nil
}
func (f *fakeIndex) GetRecord(string) (model.Record, bool) { return nil, false }

func (f *fakeIndex) Search(exprs ...services.BoolExpr) ([]services.RawHit, error) {
	f.gotExprs = exprs
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func makeHits(n int) []services.RawHit {
	hits := make([]services.RawHit, n)
	for i := range hits {
		hits[i] = services.RawHit{
			ID:     fmt.Sprintf("obj-%03d", i),
			Record: model.Record{"rank": float64(i)},
		}
	}
	return hits
}

func strPtr(s string) *string { return &s }

func TestNewService_NilIndex(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestExecute_ClauseAssembly(t *testing.T) {
	tests := []struct {
		name string
		req  services.QueryRequest
		want []services.BoolExpr
	}{
		{
			name: "absent query contributes no clause",
			req:  services.QueryRequest{},
			want: nil,
		},
		{
			name: "empty query becomes the wildcard",
			req:  services.QueryRequest{Query: strPtr("")},
			want: []services.BoolExpr{"ALL"},
		},
		{
			name: "text query becomes a text clause",
			req:  services.QueryRequest{Query: strPtr("space opera")},
			want: []services.BoolExpr{"TEXT(space opera)"},
		},
		{
			name: "filters compile to one clause",
			req:  services.QueryRequest{Filters: "a:1 OR b:2"},
			want: []services.BoolExpr{"OR(TERM(a:1), TERM(b:2))"},
		},
		{
			name: "facet filters compile to one clause",
			req: services.QueryRequest{
				FacetFilters: []interface{}{[]interface{}{"a:1", "b:2"}, "c:3"},
			},
			want: []services.BoolExpr{"AND(OR(TERM(a:1), TERM(b:2)), TERM(c:3))"},
		},
		{
			name: "all three clauses in order",
			req: services.QueryRequest{
				Query:        strPtr("hello"),
				Filters:      "a:1",
				FacetFilters: []interface{}{"b:2"},
			},
			want: []services.BoolExpr{"TEXT(hello)", "TERM(a:1)", "TERM(b:2)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &fakeIndex{}
			service, err := NewService(idx)
			require.NoError(t, err)

			_, err = service.Execute(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, idx.gotExprs)
		})
	}
}

func TestExecute_Pagination(t *testing.T) {
	idx := &fakeIndex{hits: makeHits(25)}
	service, err := NewService(idx)
	require.NoError(t, err)

	// Default page size is 20.
	result, err := service.Execute(services.QueryRequest{})
	require.NoError(t, err)
	assert.Equal(t, 25, result.NbHits)
	assert.Equal(t, 2, result.NbPages)
	assert.Equal(t, 0, result.Page)
	assert.Equal(t, 20, result.HitsPerPage)
	assert.Len(t, result.Hits, 20)

	// Second page carries the remainder.
	result, err = service.Execute(services.QueryRequest{Page: 1})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 5)
	assert.Equal(t, "obj-020", result.Hits[0][model.ObjectIDField])

	// A page past the end is empty, never an error.
	result, err = service.Execute(services.QueryRequest{Page: 7})
	require.NoError(t, err)
	assert.NotNil(t, result.Hits)
	assert.Empty(t, result.Hits)
	assert.Equal(t, 25, result.NbHits)

	// nbPages rounds up.
	result, err = service.Execute(services.QueryRequest{HitsPerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, result.NbPages)
	assert.Len(t, result.Hits, 10)

	// Negative page clamps to zero.
	result, err = service.Execute(services.QueryRequest{Page: -3})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Page)
}

func TestExecute_EmptyResultHasZeroPages(t *testing.T) {
	idx := &fakeIndex{}
	service, err := NewService(idx)
	require.NoError(t, err)

	result, err := service.Execute(services.QueryRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.NbHits)
	assert.Equal(t, 0, result.NbPages)
	assert.NotNil(t, result.Hits)
}

func TestExecute_HitShaping(t *testing.T) {
	rec := model.Record{"title": "Alien"}
	idx := &fakeIndex{hits: []services.RawHit{{ID: "movie-1", Record: rec}}}
	service, err := NewService(idx)
	require.NoError(t, err)

	result, err := service.Execute(services.QueryRequest{})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "movie-1", result.Hits[0][model.ObjectIDField])
	assert.Equal(t, "Alien", result.Hits[0]["title"])

	// Shaping must not leak the objectID into the stored record.
	_, ok := rec[model.ObjectIDField]
	assert.False(t, ok)
}

func TestExecute_Sorting(t *testing.T) {
	hits := []services.RawHit{
		{ID: "a", Record: model.Record{"price": 30.0, "title": "c"}},
		{ID: "b", Record: model.Record{"price": 10.0, "title": "a"}},
		{ID: "c", Record: model.Record{"title": "no price"}},
		{ID: "d", Record: model.Record{"price": 20.0, "title": "b"}},
	}

	t.Run("ascending with missing values last", func(t *testing.T) {
		idx := &fakeIndex{hits: hits}
		service, err := NewService(idx)
		require.NoError(t, err)

		result, err := service.Execute(services.QueryRequest{
			Sort: services.SortHint{Attribute: "price"},
		})
		require.NoError(t, err)
		got := objectIDs(result.Hits)
		assert.Equal(t, []string{"b", "d", "a", "c"}, got)
	})

	t.Run("descending keeps missing values last", func(t *testing.T) {
		idx := &fakeIndex{hits: hits}
		service, err := NewService(idx)
		require.NoError(t, err)

		result, err := service.Execute(services.QueryRequest{
			Sort: services.SortHint{Attribute: "price", Desc: true},
		})
		require.NoError(t, err)
		got := objectIDs(result.Hits)
		assert.Equal(t, []string{"a", "d", "b", "c"}, got)
	})

	t.Run("stable for equal keys", func(t *testing.T) {
		equal := []services.RawHit{
			{ID: "x", Record: model.Record{"price": 5.0}},
			{ID: "y", Record: model.Record{"price": 5.0}},
			{ID: "z", Record: model.Record{"price": 5.0}},
		}
		idx := &fakeIndex{hits: equal}
		service, err := NewService(idx)
		require.NoError(t, err)

		result, err := service.Execute(services.QueryRequest{
			Sort: services.SortHint{Attribute: "price"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y", "z"}, objectIDs(result.Hits))
	})

	t.Run("mixed types rank numbers before strings before booleans", func(t *testing.T) {
		mixed := []services.RawHit{
			{ID: "bool", Record: model.Record{"v": true}},
			{ID: "str", Record: model.Record{"v": "zebra"}},
			{ID: "num", Record: model.Record{"v": 999.0}},
		}
		idx := &fakeIndex{hits: mixed}
		service, err := NewService(idx)
		require.NoError(t, err)

		result, err := service.Execute(services.QueryRequest{
			Sort: services.SortHint{Attribute: "v"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"num", "str", "bool"}, objectIDs(result.Hits))
	})
}

func TestExecute_ErrorMapping(t *testing.T) {
	t.Run("filter syntax error", func(t *testing.T) {
		service, err := NewService(&fakeIndex{})
		require.NoError(t, err)

		_, err = service.Execute(services.QueryRequest{Filters: "a:1 AND"})
		assert.ErrorIs(t, err, apperrors.ErrSyntax)
	})

	t.Run("unsupported filter", func(t *testing.T) {
		service, err := NewService(&fakeIndex{})
		require.NoError(t, err)

		_, err = service.Execute(services.QueryRequest{Filters: "NOT (a:1 AND b:2)"})
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedFilter)
	})

	t.Run("search failure maps to index unavailable", func(t *testing.T) {
		idx := &fakeIndex{searchErr: errors.New("backend down")}
		service, err := NewService(idx)
		require.NoError(t, err)

		_, err = service.Execute(services.QueryRequest{})
		assert.ErrorIs(t, err, apperrors.ErrIndexUnavailable)
	})

	t.Run("bad facet filter", func(t *testing.T) {
		service, err := NewService(&fakeIndex{})
		require.NoError(t, err)

		_, err = service.Execute(services.QueryRequest{
			FacetFilters: []interface{}{"no-colon-here"},
		})
		assert.ErrorIs(t, err, apperrors.ErrSyntax)
	})
}

func TestExecute_EchoesQuery(t *testing.T) {
	service, err := NewService(&fakeIndex{})
	require.NoError(t, err)

	result, err := service.Execute(services.QueryRequest{Query: strPtr("hello world")})
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Query)

	result, err = service.Execute(services.QueryRequest{})
	require.NoError(t, err)
	assert.Equal(t, "", result.Query)
}

func objectIDs(hits []model.Record) []string {
	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i], _ = hit.ObjectID()
	}
	return ids
}
