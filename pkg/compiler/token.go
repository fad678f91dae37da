package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable / function / type name
	NUMBER     // integer or float literal
	STRING     // string literal "..."

	// Keywords
	FN     // "fn"
	TYPE   // "type"
	MATCH  // "match"
	IF     // "if"
	ELSE   // "else"
	FOR    // "for"
	IN     // "in"
	RETURN // "return"
	EXTERN // "extern"
	ASYNC  // "async"
	TRUE   // "true"
	FALSE  // "false"

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	DOT        // .
	COMMA      // ,
	COLON      // :
	PIPE       // | (variant separator in type declarations)
	UNDERSCORE // _ (wildcard pattern)

	// Range operators (order matters: "..=" is matched before "..")
	RANGE      // ..  (exclusive)
	RANGE_INCL // ..= (inclusive)

	ARROW  // =>
	RARROW // ->

	// Arithmetic operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %

	AND_LOGICAL // &&
	OR_LOGICAL  // ||
	NOT         // !

	// Assignment / comparison  (order matters: ASSIGN before EQUALS)
	ASSIGN  // =
	EQUALS  // ==
	NOT_EQ  // !=
	LESS    // <
	GREATER // >

	LESS_EQ    // <=
	GREATER_EQ // >=
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	NUMBER:      "NUMBER",
	STRING:      "STRING",
	FN:          "FN",
	TYPE:        "TYPE",
	MATCH:       "MATCH",
	IF:          "IF",
	ELSE:        "ELSE",
	FOR:         "FOR",
	IN:          "IN",
	RETURN:      "RETURN",
	EXTERN:      "EXTERN",
	ASYNC:       "ASYNC",
	TRUE:        "TRUE",
	FALSE:       "FALSE",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	LBRACKET:    "LBRACKET",
	RBRACKET:    "RBRACKET",
	DOT:         "DOT",
	COMMA:       "COMMA",
	COLON:       "COLON",
	PIPE:        "PIPE",
	UNDERSCORE:  "UNDERSCORE",
	RANGE:       "RANGE",
	RANGE_INCL:  "RANGE_INCL",
	ARROW:       "ARROW",
	RARROW:      "RARROW",
	PLUS:        "PLUS",
	MINUS:       "MINUS",
	STAR:        "STAR",
	SLASH:       "SLASH",
	PERCENT:     "PERCENT",
	AND_LOGICAL: "AND_LOGICAL",
	OR_LOGICAL:  "OR_LOGICAL",
	NOT:         "NOT",
	ASSIGN:      "ASSIGN",
	EQUALS:      "EQUALS",
	NOT_EQ:      "NOT_EQ",
	LESS:        "LESS",
	GREATER:     "GREATER",
	LESS_EQ:     "LESS_EQ",
	GREATER_EQ:  "GREATER_EQ",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
	Col    int    // 1-based source column
}

func (t Token) String() string {
	return fmt.Sprintf("%-11s %-14q  line %d col %d", t.Type, t.Lexeme, t.Line, t.Col)
}
