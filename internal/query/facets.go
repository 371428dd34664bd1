package query

import (
	"fmt"
	"strings"

	apperrors "github.com/algolite/algolite/internal/errors"
	"github.com/algolite/algolite/internal/filter"
)

// NormalizeFacetFilters converts the facetFilters structure into the same AST
// shape the compiler consumes. Each group is either a bare "key:value" string
// (a match) or a list of such strings (an OR-group); groups are combined with
// AND, left to right, so the resulting expression shape is deterministic.
func NormalizeFacetFilters(groups []interface{}) (filter.Node, error) {
	if len(groups) == 0 {
		return nil, nil
	}

	var root filter.Node
	for i, group := range groups {
		node, err := normalizeGroup(i, group)
		if err != nil {
			return nil, err
		}
		if root == nil {
			root = node
		} else {
			root = filter.AndExpr{Left: root, Right: node}
		}
	}
	return root, nil
}

func normalizeGroup(i int, group interface{}) (filter.Node, error) {
	switch g := group.(type) {
	case string:
		return matchFromTerm(g)

	case []interface{}:
		if len(g) == 0 {
			return nil, apperrors.NewSyntaxError(0, "", fmt.Sprintf("facetFilters[%d] is an empty group", i))
		}
		var chain filter.Node
		for _, member := range g {
			term, ok := member.(string)
			if !ok {
				return nil, apperrors.NewSyntaxError(0, "", fmt.Sprintf("facetFilters[%d] contains a non-string member", i))
			}
			match, err := matchFromTerm(term)
			if err != nil {
				return nil, err
			}
			if chain == nil {
				chain = match
			} else {
				chain = filter.OrExpr{Left: chain, Right: match}
			}
		}
		return chain, nil

	case []string:
		members := make([]interface{}, len(g))
		for j, s := range g {
			members[j] = s
		}
		return normalizeGroup(i, members)

	default:
		return nil, apperrors.NewSyntaxError(0, "", fmt.Sprintf("facetFilters[%d] must be a string or a list of strings", i))
	}
}

// matchFromTerm splits a "key:value" facet term on its first colon.
func matchFromTerm(term string) (filter.Node, error) {
	colon := strings.Index(term, ":")
	if colon <= 0 || colon == len(term)-1 {
		return nil, apperrors.NewSyntaxError(0, term, "facet filter must have the form key:value")
	}
	return filter.MatchExpr{Key: term[:colon], Value: term[colon+1:]}, nil
}
