package index

import (
	"fmt"

	"github.com/algolite/algolite/internal/tokenizer"
	"github.com/algolite/algolite/services"
)

// Algebra builds boolean expressions evaluated against a TermIndex.
// It implements services.QueryAlgebra; the expression values it returns are
// opaque to callers and only meaningful to TermIndex.Eval.
type Algebra struct{}

type termExpr struct{ term string }
type textExpr struct{ query string }
type wildcardExpr struct{}
type andExpr struct{ left, right services.BoolExpr }
type orExpr struct{ left, right services.BoolExpr }
type notExpr struct{ universe, operand services.BoolExpr }

// Term returns an expression matching records carrying the "key:value" facet term.
func (Algebra) Term(term string) services.BoolExpr { return termExpr{term: term} }

// Text returns an expression matching records containing every token of query.
func (Algebra) Text(query string) services.BoolExpr { return textExpr{query: query} }

// Wildcard returns the match-all expression.
func (Algebra) Wildcard() services.BoolExpr { return wildcardExpr{} }

// And returns the intersection of two expressions.
func (Algebra) And(left, right services.BoolExpr) services.BoolExpr {
	return andExpr{left: left, right: right}
}

// Or returns the union of two expressions.
func (Algebra) Or(left, right services.BoolExpr) services.BoolExpr {
	return orExpr{left: left, right: right}
}

// Not returns everything universe matches minus what operand matches.
func (Algebra) Not(universe, operand services.BoolExpr) services.BoolExpr {
	return notExpr{universe: universe, operand: operand}
}

// Eval resolves an expression to the set of matching record ids.
// The owning instance serializes access.
func (ti *TermIndex) Eval(expr services.BoolExpr) (IDSet, error) {
	switch e := expr.(type) {
	case termExpr:
		return ti.Terms[e.term].Clone(), nil

	case textExpr:
		tokens := tokenizer.Tokenize(e.query)
		if len(tokens) == 0 {
			return ti.Docs.Clone(), nil
		}
		result := ti.Tokens[tokens[0]].Clone()
		for _, token := range tokens[1:] {
			if len(result) == 0 {
				break
			}
			result = intersect(result, ti.Tokens[token])
		}
		return result, nil

	case wildcardExpr:
		return ti.Docs.Clone(), nil

	case andExpr:
		left, err := ti.Eval(e.left)
		if err != nil {
			return nil, err
		}
		right, err := ti.Eval(e.right)
		if err != nil {
			return nil, err
		}
		return intersect(left, right), nil

	case orExpr:
		left, err := ti.Eval(e.left)
		if err != nil {
			return nil, err
		}
		right, err := ti.Eval(e.right)
		if err != nil {
			return nil, err
		}
		for id := range right {
			left[id] = struct{}{}
		}
		return left, nil

	case notExpr:
		universe, err := ti.Eval(e.universe)
		if err != nil {
			return nil, err
		}
		operand, err := ti.Eval(e.operand)
		if err != nil {
			return nil, err
		}
		for id := range operand {
			delete(universe, id)
		}
		return universe, nil

	default:
		return nil, fmt.Errorf("unknown expression type %T", expr)
	}
}

// intersect keeps the ids of a that also appear in b. a is mutated.
func intersect(a, b IDSet) IDSet {
	for id := range a {
		if _, ok := b[id]; !ok {
			delete(a, id)
		}
	}
	return a
}
