package compiler

import (
	"reflect"
	"testing"
)

// tok is a compact Type/Lexeme pair for table-driven lexer tests.
type tok struct {
	tt     TokenType
	lexeme string
}

func lexPairs(t *testing.T, input string) []tok {
	t.Helper()
	tokens, err := Lex(input)
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", input, err)
	}
	pairs := make([]tok, len(tokens))
	for i, tk := range tokens {
		pairs[i] = tok{tk.Type, tk.Lexeme}
	}
	return pairs
}

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tok
		wantErr  bool
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []tok{{EOF, ""}},
		},
		{
			name:  "Operators",
			input: "+ - * / % == != < > <= >= && || ! =",
			expected: []tok{
				{PLUS, "+"}, {MINUS, "-"}, {STAR, "*"}, {SLASH, "/"}, {PERCENT, "%"},
				{EQUALS, "=="}, {NOT_EQ, "!="}, {LESS, "<"}, {GREATER, ">"},
				{LESS_EQ, "<="}, {GREATER_EQ, ">="}, {AND_LOGICAL, "&&"}, {OR_LOGICAL, "||"},
				{NOT, "!"}, {ASSIGN, "="}, {EOF, ""},
			},
		},
		{
			name:  "Arrows and Ranges",
			input: "=> -> .. ..=",
			expected: []tok{
				{ARROW, "=>"}, {RARROW, "->"}, {RANGE, ".."}, {RANGE_INCL, "..="}, {EOF, ""},
			},
		},
		{
			name:  "Keywords and Identifiers",
			input: "fn type match if else for in return extern async true false shape _tmp",
			expected: []tok{
				{FN, "fn"}, {TYPE, "type"}, {MATCH, "match"}, {IF, "if"}, {ELSE, "else"},
				{FOR, "for"}, {IN, "in"}, {RETURN, "return"}, {EXTERN, "extern"},
				{ASYNC, "async"}, {TRUE, "true"}, {FALSE, "false"},
				{IDENTIFIER, "shape"}, {IDENTIFIER, "_tmp"}, {EOF, ""},
			},
		},
		{
			name:     "Bare underscore is its own token",
			input:    "_",
			expected: []tok{{UNDERSCORE, "_"}, {EOF, ""}},
		},
		{
			name:     "Float literal",
			input:    "3.14",
			expected: []tok{{NUMBER, "3.14"}, {EOF, ""}},
		},
		{
			name:  "Range between integers is not a float",
			input: "1..5",
			expected: []tok{
				{NUMBER, "1"}, {RANGE, ".."}, {NUMBER, "5"}, {EOF, ""},
			},
		},
		{
			name:  "Inclusive range between integers",
			input: "1..=5",
			expected: []tok{
				{NUMBER, "1"}, {RANGE_INCL, "..="}, {NUMBER, "5"}, {EOF, ""},
			},
		},
		{
			name:  "Stepped slice",
			input: "a[1..10:2]",
			expected: []tok{
				{IDENTIFIER, "a"}, {LBRACKET, "["}, {NUMBER, "1"}, {RANGE, ".."},
				{NUMBER, "10"}, {COLON, ":"}, {NUMBER, "2"}, {RBRACKET, "]"}, {EOF, ""},
			},
		},
		{
			name:  "Type declaration tokens",
			input: "type Shape = Circle(radius) | Point",
			expected: []tok{
				{TYPE, "type"}, {IDENTIFIER, "Shape"}, {ASSIGN, "="},
				{IDENTIFIER, "Circle"}, {LPAREN, "("}, {IDENTIFIER, "radius"}, {RPAREN, ")"},
				{PIPE, "|"}, {IDENTIFIER, "Point"}, {EOF, ""},
			},
		},
		{
			name:     "String with escapes",
			input:    `"a\n\t\"b\\"`,
			expected: []tok{{STRING, "a\n\t\"b\\"}, {EOF, ""}},
		},
		{
			name:  "Line comment",
			input: "x // ignored until eol\ny",
			expected: []tok{
				{IDENTIFIER, "x"}, {IDENTIFIER, "y"}, {EOF, ""},
			},
		},
		{
			name:    "Unterminated string",
			input:   `"abc`,
			wantErr: true,
		},
		{
			name:    "String broken by newline",
			input:   "\"abc\ndef\"",
			wantErr: true,
		},
		{
			name:    "Unknown escape",
			input:   `"\q"`,
			wantErr: true,
		},
		{
			name:    "Single ampersand",
			input:   "a & b",
			wantErr: true,
		},
		{
			name:    "Unexpected character",
			input:   "@",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr {
				if _, err := Lex(tt.input); err == nil {
					t.Fatalf("Lex(%q) expected an error, got none", tt.input)
				}
				return
			}
			got := lexPairs(t, tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lex(%q)\n got: %v\nwant: %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLexPositions(t *testing.T) {
	tokens, err := Lex("x = 1\n  y = 2")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	expected := []Token{
		{Type: IDENTIFIER, Lexeme: "x", Line: 1, Col: 1},
		{Type: ASSIGN, Lexeme: "=", Line: 1, Col: 3},
		{Type: NUMBER, Lexeme: "1", Line: 1, Col: 5},
		{Type: IDENTIFIER, Lexeme: "y", Line: 2, Col: 3},
		{Type: ASSIGN, Lexeme: "=", Line: 2, Col: 5},
		{Type: NUMBER, Lexeme: "2", Line: 2, Col: 7},
		{Type: EOF, Lexeme: "", Line: 2, Col: 8},
	}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("position mismatch\n got: %v\nwant: %v", tokens, expected)
	}
}

func TestLexErrorLocation(t *testing.T) {
	_, err := Lex("ok\n  @")
	lexErr, ok := err.(*LexError)
	if !ok {
		t.Fatalf("expected *LexError, got %T (%v)", err, err)
	}
	if lexErr.Line != 2 || lexErr.Col != 3 {
		t.Errorf("expected error at line 2 col 3, got line %d col %d", lexErr.Line, lexErr.Col)
	}
}
