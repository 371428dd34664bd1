package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/algolite/algolite/internal/errors"
	"github.com/algolite/algolite/internal/filter"
	"github.com/algolite/algolite/model"
	"github.com/algolite/algolite/services"
)

const defaultHitsPerPage = 20

// Service executes queries against a single index: it assembles the clause
// expressions (text, filters, facetFilters), runs one search call, then
// shapes, sorts and paginates the hits.
type Service struct {
	index services.IndexAccessor
}

// NewService creates a new query Service for the given index.
func NewService(index services.IndexAccessor) (*Service, error) {
	if index == nil {
		return nil, fmt.Errorf("index accessor cannot be nil")
	}
	return &Service{index: index}, nil
}

// Execute runs one query request. Parse and compile failures surface as
// client errors (ErrSyntax / ErrUnsupportedFilter); a failed search call
// surfaces as ErrIndexUnavailable. Nothing is retried.
func (s *Service) Execute(req services.QueryRequest) (services.QueryResult, error) {
	startTime := time.Now()

	page := req.Page
	if page < 0 {
		page = 0
	}
	hitsPerPage := req.HitsPerPage
	if hitsPerPage <= 0 {
		hitsPerPage = defaultHitsPerPage
	}

	algebra := s.index.Algebra()
	var exprs []services.BoolExpr

	// Text clause: a present-but-empty query matches everything; an absent
	// query contributes no clause at all.
	if req.Query != nil {
		if *req.Query == "" {
			exprs = append(exprs, algebra.Wildcard())
		} else {
			exprs = append(exprs, algebra.Text(*req.Query))
		}
	}

	if req.Filters != "" {
		node, err := filter.Parse(req.Filters)
		if err != nil {
			return services.QueryResult{}, err
		}
		expr, err := Compile(node, algebra)
		if err != nil {
			return services.QueryResult{}, err
		}
		exprs = append(exprs, expr)
	}

	if len(req.FacetFilters) > 0 {
		node, err := NormalizeFacetFilters(req.FacetFilters)
		if err != nil {
			return services.QueryResult{}, err
		}
		if node != nil {
			expr, err := Compile(node, algebra)
			if err != nil {
				return services.QueryResult{}, err
			}
			exprs = append(exprs, expr)
		}
	}

	// Clauses passed together are intersected by the index capability.
	rawHits, err := s.index.Search(exprs...)
	if err != nil {
		return services.QueryResult{}, apperrors.NewIndexUnavailableError(s.index.Name(), err)
	}

	hits := make([]model.Record, len(rawHits))
	for i, raw := range rawHits {
		hit := raw.Record.Clone()
		hit[model.ObjectIDField] = raw.ID
		hits[i] = hit
	}

	if req.Sort.Attribute != "" {
		sortHits(hits, req.Sort)
	}

	nbHits := len(hits)
	nbPages := (nbHits + hitsPerPage - 1) / hitsPerPage

	start := page * hitsPerPage
	end := start + hitsPerPage
	var pageHits []model.Record
	if start < nbHits {
		if end > nbHits {
			end = nbHits
		}
		pageHits = hits[start:end]
	} else {
		pageHits = []model.Record{}
	}

	var echoedQuery string
	if req.Query != nil {
		echoedQuery = *req.Query
	}

	return services.QueryResult{
		Hits:             pageHits,
		NbHits:           nbHits,
		Page:             page,
		NbPages:          nbPages,
		HitsPerPage:      hitsPerPage,
		ProcessingTimeMS: time.Since(startTime).Milliseconds(),
		Query:            echoedQuery,
	}, nil
}

// sortHits stable-sorts hits by the given attribute. Records missing the
// attribute sort last in both directions.
func sortHits(hits []model.Record, hint services.SortHint) {
	sort.SliceStable(hits, func(i, j int) bool {
		va, aok := hits[i][hint.Attribute]
		vb, bok := hits[j][hint.Attribute]
		if !aok || !bok {
			return aok && !bok
		}
		cmp := compareValues(va, vb)
		if hint.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

const (
	rankNumber = iota
	rankString
	rankBool
	rankOther
)

// compareValues imposes a total order across mixed attribute types:
// numbers, then strings, then booleans, then everything else.
func compareValues(a, b interface{}) int {
	rankA, rankB := typeRank(a), typeRank(b)
	if rankA != rankB {
		return rankA - rankB
	}

	switch rankA {
	case rankNumber:
		fa, _ := toFloat64(a)
		fb, _ := toFloat64(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case !ba && bb:
			return -1
		case ba && !bb:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

func typeRank(v interface{}) int {
	if _, ok := toFloat64(v); ok {
		return rankNumber
	}
	switch v.(type) {
	case string:
		return rankString
	case bool:
		return rankBool
	default:
		return rankOther
	}
}

// toFloat64 converts the numeric types JSON decoding and Go callers produce.
func toFloat64(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}
