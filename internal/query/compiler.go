// Package query lowers parsed filter expressions into the index's boolean
// algebra and orchestrates search execution: clause assembly, hit shaping,
// sorting and pagination.
package query

import (
	apperrors "github.com/algolite/algolite/internal/errors"
	"github.com/algolite/algolite/internal/filter"
	"github.com/algolite/algolite/services"
)

// Compile recursively lowers a filter AST into a boolean expression built
// through the injected algebra. It is pure and deterministic; the only
// failure modes are the two UnsupportedFilterError cases below.
func Compile(node filter.Node, algebra services.QueryAlgebra) (services.BoolExpr, error) {
	switch n := node.(type) {
	case filter.MatchExpr:
		return algebra.Term(n.Key + ":" + n.Value), nil

	case filter.AndExpr:
		left, err := Compile(n.Left, algebra)
		if err != nil {
			return nil, err
		}
		right, err := Compile(n.Right, algebra)
		if err != nil {
			return nil, err
		}
		return algebra.And(left, right), nil

	case filter.OrExpr:
		left, err := Compile(n.Left, algebra)
		if err != nil {
			return nil, err
		}
		right, err := Compile(n.Right, algebra)
		if err != nil {
			return nil, err
		}
		return algebra.Or(left, right), nil

	case filter.NotExpr:
		// Combined filters cannot be negated; only a plain match may follow NOT.
		match, ok := n.Operand.(filter.MatchExpr)
		if !ok {
			return nil, apperrors.NewUnsupportedFilterError("NOT only supports MATCH")
		}
		operand, err := Compile(match, algebra)
		if err != nil {
			return nil, err
		}
		return algebra.Not(algebra.Wildcard(), operand), nil

	default:
		return nil, apperrors.NewUnsupportedFilterError("UNKNOWN TOKEN")
	}
}
