package filter

import (
	apperrors "github.com/algolite/algolite/internal/errors"
)

// Parser parses filter expressions into an AST.
type Parser struct {
	lexer   *Lexer
	current Token
}

// Parse parses a non-empty filter expression and returns the AST root.
// Callers handle the empty-filter case themselves; empty input here is a
// syntax error. Failures are *errors.SyntaxError values carrying the
// offending position and token.
func Parse(input string) (Node, error) {
	p := &Parser{lexer: NewLexer(input)}
	p.advance()

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenEOF {
		return nil, p.unexpected("expected end of expression")
	}
	return node, nil
}

func (p *Parser) advance() {
	p.current = p.lexer.NextToken()
}

func (p *Parser) unexpected(message string) error {
	return apperrors.NewSyntaxError(p.current.Pos, p.current.Value, message)
}

// parseOr handles OR expressions (lowest precedence, left-associative).
func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current.Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = OrExpr{Left: left, Right: right}
	}

	return left, nil
}

// parseAnd handles AND expressions, binding tighter than OR.
func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.current.Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = AndExpr{Left: left, Right: right}
	}

	return left, nil
}

// parseNot handles the prefix NOT operator.
func (p *Parser) parseNot() (Node, error) {
	if p.current.Type == TokenNot {
		p.advance()
		operand, err := p.parseNot() // NOT is right-associative
		if err != nil {
			return nil, err
		}
		return NotExpr{Operand: operand}, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles primary expressions: (expr) and key:value.
func (p *Parser) parsePrimary() (Node, error) {
	switch p.current.Type {
	case TokenLParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenRParen {
			return nil, p.unexpected("expected ')'")
		}
		p.advance()
		return expr, nil

	case TokenIdent, TokenString:
		key := p.current.Value
		p.advance()
		if p.current.Type != TokenColon {
			return nil, p.unexpected("expected ':' after attribute name")
		}
		p.advance()
		return p.parseValue(key)

	case TokenEOF:
		return nil, p.unexpected("unexpected end of expression")

	default:
		return nil, p.unexpected("unexpected token")
	}
}

// parseValue parses the literal after "key:". String, number and boolean
// literals are all captured as their text; the match term is textual.
func (p *Parser) parseValue(key string) (Node, error) {
	switch p.current.Type {
	case TokenIdent, TokenString:
		value := p.current.Value
		p.advance()
		return MatchExpr{Key: key, Value: value}, nil
	default:
		return nil, p.unexpected("expected value after ':'")
	}
}
