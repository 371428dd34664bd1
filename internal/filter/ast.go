// Package filter parses Algolia-style filter expressions into an AST.
// The grammar covers equality matches (key:value) combined with AND, OR, NOT
// and parenthesized grouping. AND binds tighter than OR; NOT is a prefix
// operator. No comparison operators, ranges or geo predicates are recognized.
package filter

// Node is the interface implemented by all AST nodes.
type Node interface {
	node() // marker method
}

// MatchExpr represents a key:value equality constraint. Value holds the
// literal's text as written (strings, numbers and booleans are not coerced;
// the index matches facet terms textually).
type MatchExpr struct {
	Key   string
	Value string
}

func (MatchExpr) node() {}

// AndExpr represents the conjunction of two expressions.
type AndExpr struct {
	Left  Node
	Right Node
}

func (AndExpr) node() {}

// OrExpr represents the disjunction of two expressions.
type OrExpr struct {
	Left  Node
	Right Node
}

func (OrExpr) node() {}

// NotExpr negates its operand. The compiler only accepts a MatchExpr operand;
// negating a compound expression is rejected there, mirroring the documented
// restriction that combined filters cannot be negated.
type NotExpr struct {
	Operand Node
}

func (NotExpr) node() {}
