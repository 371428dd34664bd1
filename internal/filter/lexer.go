package filter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenString
	TokenColon
	TokenLParen
	TokenRParen
	TokenAnd
	TokenOr
	TokenNot
	TokenIllegal
)

// Token represents a lexical token with its starting byte position.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Lexer tokenizes filter expression input.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case ':':
		l.pos++
		return Token{Type: TokenColon, Value: ":", Pos: start}
	case '(':
		l.pos++
		return Token{Type: TokenLParen, Value: "(", Pos: start}
	case ')':
		l.pos++
		return Token{Type: TokenRParen, Value: ")", Pos: start}
	case '"', '\'':
		return l.readString(ch)
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if isIdentRune(r) {
		return l.readIdent()
	}

	l.pos += size
	return Token{Type: TokenIllegal, Value: string(r), Pos: start}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

// readString reads a quoted literal. The closing quote must be present;
// an unterminated string surfaces as an illegal token at the opening quote.
func (l *Lexer) readString(quote byte) Token {
	start := l.pos
	l.pos++ // skip opening quote
	var sb strings.Builder
	for l.pos < len(l.input) && l.input[l.pos] != quote {
		if l.input[l.pos] == '\\' && l.pos+1 < len(l.input) {
			l.pos++
		}
		sb.WriteByte(l.input[l.pos])
		l.pos++
	}
	if l.pos >= len(l.input) {
		return Token{Type: TokenIllegal, Value: l.input[start:], Pos: start}
	}
	l.pos++ // skip closing quote
	return Token{Type: TokenString, Value: sb.String(), Pos: start}
}

func (l *Lexer) readIdent() Token {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentRune(r) {
			break
		}
		l.pos += size
	}
	value := l.input[start:l.pos]

	switch strings.ToUpper(value) {
	case "AND":
		return Token{Type: TokenAnd, Value: "AND", Pos: start}
	case "OR":
		return Token{Type: TokenOr, Value: "OR", Pos: start}
	case "NOT":
		return Token{Type: TokenNot, Value: "NOT", Pos: start}
	}

	return Token{Type: TokenIdent, Value: value, Pos: start}
}

// isIdentRune covers keys and bare literal values: letters (any script),
// digits and the punctuation Algolia attribute paths and plain values use.
// Numbers and booleans lex as identifiers; the parser keeps their text
// verbatim.
func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.'
}
