package filter

import (
	"errors"
	"reflect"
	"testing"

	apperrors "github.com/algolite/algolite/internal/errors"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"genre:comedy", []TokenType{TokenIdent, TokenColon, TokenIdent, TokenEOF}},
		{`title:"The Office"`, []TokenType{TokenIdent, TokenColon, TokenString, TokenEOF}},
		{"a:1 AND b:2", []TokenType{TokenIdent, TokenColon, TokenIdent, TokenAnd, TokenIdent, TokenColon, TokenIdent, TokenEOF}},
		{"a:1 OR b:2", []TokenType{TokenIdent, TokenColon, TokenIdent, TokenOr, TokenIdent, TokenColon, TokenIdent, TokenEOF}},
		{"NOT a:1", []TokenType{TokenNot, TokenIdent, TokenColon, TokenIdent, TokenEOF}},
		{"(a:1)", []TokenType{TokenLParen, TokenIdent, TokenColon, TokenIdent, TokenRParen, TokenEOF}},
		{"available:true", []TokenType{TokenIdent, TokenColon, TokenIdent, TokenEOF}},
		{"price:12.5", []TokenType{TokenIdent, TokenColon, TokenIdent, TokenEOF}},
		{"city:münchen", []TokenType{TokenIdent, TokenColon, TokenIdent, TokenEOF}},
		{"市:東京", []TokenType{TokenIdent, TokenColon, TokenIdent, TokenEOF}},
		{"a:1 % b:2", []TokenType{TokenIdent, TokenColon, TokenIdent, TokenIllegal}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lexer := NewLexer(tt.input)
			for i, expected := range tt.expected {
				tok := lexer.NextToken()
				if tok.Type != expected {
					t.Errorf("token %d: expected %v, got %v (%q)", i, expected, tok.Type, tok.Value)
				}
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	lexer := NewLexer("genre:comedy AND year:2020")
	positions := []int{0, 5, 6, 13, 17, 21, 22}
	for i, want := range positions {
		tok := lexer.NextToken()
		if tok.Pos != want {
			t.Errorf("token %d (%q): expected pos %d, got %d", i, tok.Value, want, tok.Pos)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Node
	}{
		{
			input:    "genre:comedy",
			expected: MatchExpr{Key: "genre", Value: "comedy"},
		},
		{
			input: "a:1 AND b:2",
			expected: AndExpr{
				Left:  MatchExpr{Key: "a", Value: "1"},
				Right: MatchExpr{Key: "b", Value: "2"},
			},
		},
		{
			input: "a:1 OR b:2",
			expected: OrExpr{
				Left:  MatchExpr{Key: "a", Value: "1"},
				Right: MatchExpr{Key: "b", Value: "2"},
			},
		},
		{
			// AND binds tighter than OR
			input: "a:1 OR b:2 AND c:3",
			expected: OrExpr{
				Left: MatchExpr{Key: "a", Value: "1"},
				Right: AndExpr{
					Left:  MatchExpr{Key: "b", Value: "2"},
					Right: MatchExpr{Key: "c", Value: "3"},
				},
			},
		},
		{
			// parentheses override precedence
			input: "(a:1 OR b:2) AND c:3",
			expected: AndExpr{
				Left: OrExpr{
					Left:  MatchExpr{Key: "a", Value: "1"},
					Right: MatchExpr{Key: "b", Value: "2"},
				},
				Right: MatchExpr{Key: "c", Value: "3"},
			},
		},
		{
			// left-associativity
			input: "a:1 AND b:2 AND c:3",
			expected: AndExpr{
				Left: AndExpr{
					Left:  MatchExpr{Key: "a", Value: "1"},
					Right: MatchExpr{Key: "b", Value: "2"},
				},
				Right: MatchExpr{Key: "c", Value: "3"},
			},
		},
		{
			input:    "NOT a:1",
			expected: NotExpr{Operand: MatchExpr{Key: "a", Value: "1"}},
		},
		{
			// structurally fine here, rejected later by the compiler
			input: "NOT (a:1 AND b:2)",
			expected: NotExpr{Operand: AndExpr{
				Left:  MatchExpr{Key: "a", Value: "1"},
				Right: MatchExpr{Key: "b", Value: "2"},
			}},
		},
		{
			input:    `title:"The Office"`,
			expected: MatchExpr{Key: "title", Value: "The Office"},
		},
		{
			input:    "  genre :\tcomedy ",
			expected: MatchExpr{Key: "genre", Value: "comedy"},
		},
		{
			input:    "available:true",
			expected: MatchExpr{Key: "available", Value: "true"},
		},
		{
			// unquoted values are not limited to ASCII
			input:    "city:münchen",
			expected: MatchExpr{Key: "city", Value: "münchen"},
		},
		{
			input: "city:münchen OR city:zürich",
			expected: OrExpr{
				Left:  MatchExpr{Key: "city", Value: "münchen"},
				Right: MatchExpr{Key: "city", Value: "zürich"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if !reflect.DeepEqual(node, tt.expected) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.input, node, tt.expected)
			}
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	input := "a:1 AND (b:2 OR NOT c:3)"
	first, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	second, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two parses of %q differ: %#v vs %#v", input, first, second)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"bare identifier", "genre"},
		{"missing value", "genre:"},
		{"missing closing paren", "(a:1 AND b:2"},
		{"dangling operator", "a:1 AND"},
		{"leading operator", "AND a:1"},
		{"trailing garbage", "a:1 b:2"},
		{"illegal character", "a:1 & b:2"},
		{"unterminated string", `title:"The Office`},
		{"double colon", "a::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got nil", tt.input)
			}
			if !errors.Is(err, apperrors.ErrSyntax) {
				t.Errorf("Parse(%q) error = %v, want ErrSyntax", tt.input, err)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("a:1 AND AND b:2")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var syntaxErr *apperrors.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("error is %T, want *SyntaxError", err)
	}
	if syntaxErr.Pos != 8 {
		t.Errorf("SyntaxError.Pos = %d, want 8", syntaxErr.Pos)
	}
	if syntaxErr.Token != "AND" {
		t.Errorf("SyntaxError.Token = %q, want \"AND\"", syntaxErr.Token)
	}
}
