package compiler

import (
	"strings"
	"unicode"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar (statements are terminator-free):
//
//	program    = statement* EOF
//	statement  = typeDecl | externDecl | functionDecl | returnStmt | ifStmt
//	           | assignment | exprStmt
//	typeDecl   = "type" IDENTIFIER "=" variant ("|" variant)*
//	variant    = IDENTIFIER ["(" IDENTIFIER ("," IDENTIFIER)* ")"]
//	externDecl = "extern" ["async"] "fn" IDENTIFIER "(" params ")" ["->" IDENTIFIER]
//	functionDecl = "fn" IDENTIFIER "(" params ")" ["->" IDENTIFIER] block
//	assignment = target ("," target)* "=" expression ("," expression)*
//	expression = logical_or
//	logical_or = logical_and ("||" logical_and)*
//	logical_and = equality ("&&" equality)*
//	equality   = relational (("=="|"!=") relational)*
//	relational = additive (("<"|">"|"<="|">=") additive)*
//	additive   = multiplicative (("+"|"-") multiplicative)*
//	multiplicative = unary (("*"|"/"|"%") unary)*
//	unary      = ("-"|"!") unary | postfix
//	postfix    = primary ("(" args ")" | "." IDENTIFIER | "[" indexOrSlice "]")*
//	primary    = NUMBER | STRING | "true" | "false" | IDENTIFIER
//	           | "fn" "(" params ")" lambdaBody
//	           | "(" params ")" "=>" lambdaBody     (resolved speculatively)
//	           | "(" expression ")"
//	           | matchExpr | jsxElement
//
// Local ambiguities (lambda headers, UI-template blocks) are resolved by
// speculative parsing over the owned token slice: mark() saves the cursor,
// reset() restores it, and speculative attempts report failure through an
// ok bool instead of an error, so no diagnostics leak from abandoned paths.
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

// NewParser owns tokens for the duration of a single parse.
func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError builds a ParseError with the source line where the token appears.
func (p *Parser) fmtError(tok Token, msg string) error {
	lineIdx := tok.Line - 1 // lines are 1-based

	snippet := ""
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return &ParseError{Line: tok.Line, Col: tok.Col, Msg: msg, Snippet: snippet}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+offset]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected "+tt.String()+", got "+tok.Type.String()+" ("+tok.Lexeme+")")
	}
	return tok, nil
}

// mark saves the cursor for a speculative sub-parse.
func (p *Parser) mark() int { return p.pos }

// reset rewinds the cursor to a previously saved checkpoint.
func (p *Parser) reset(pos int) { p.pos = pos }

//  Expressions

func (p *Parser) parseExpression() (Expr, error) {
	return p.parseLogicalOr()
}

func (p *Parser) parseLogicalOr() (Expr, error) {
	expr, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR_LOGICAL {
		op := p.advance().Type
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseLogicalAnd() (Expr, error) {
	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND_LOGICAL {
		op := p.advance().Type
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseEquality() (Expr, error) {
	expr, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == EQUALS || p.peek().Type == NOT_EQ {
		op := p.advance().Type
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseRelational() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == LESS || p.peek().Type == GREATER ||
		p.peek().Type == LESS_EQ || p.peek().Type == GREATER_EQ {
		op := p.advance().Type
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		if tt != PLUS && tt != MINUS {
			break
		}
		op := p.advance().Type
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		if tt != STAR && tt != SLASH && tt != PERCENT {
			break
		}
		op := p.advance().Type
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.peek().Type == MINUS || p.peek().Type == NOT {
		op := p.advance().Type
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Right: right}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles call (), member access ., and index/slice [].
func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().Type {
		case LPAREN:
			line := p.advance().Line // (
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{Callee: expr, Args: args, Line: line}

		case DOT:
			p.advance() // .
			memberTok, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			expr = &MemberExpr{Left: expr, Member: memberTok.Lexeme}

		case LBRACKET:
			p.advance() // [
			expr, err = p.parseIndexOrSlice(expr)
			if err != nil {
				return nil, err
			}

		default:
			return expr, nil
		}
	}
}

// parseIndexOrSlice parses the bracketed suffix after '[' has been consumed.
// Forms: [i]  [a..b]  [a..=b]  [..b]  [a..]  [a..b:step]
func (p *Parser) parseIndexOrSlice(left Expr) (Expr, error) {
	var start Expr
	var err error

	if p.peek().Type != RANGE && p.peek().Type != RANGE_INCL {
		start, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.peek().Type == RBRACKET {
			p.advance()
			return &IndexExpr{Left: left, Index: start}, nil
		}
	}

	rangeTok := p.advance()
	if rangeTok.Type != RANGE && rangeTok.Type != RANGE_INCL {
		return nil, p.fmtError(rangeTok, "expected ']', '..', or '..=' in index expression")
	}
	slice := &SliceExpr{Left: left, Start: start, Inclusive: rangeTok.Type == RANGE_INCL}

	if p.peek().Type != RBRACKET && p.peek().Type != COLON {
		slice.End, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if p.peek().Type == COLON {
		p.advance()
		slice.Step, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	return slice, nil
}

func (p *Parser) parseCallArgs() ([]Expr, error) {
	var args []Expr
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePrimary handles literals, variables, lambdas, match expressions,
// UI-template elements, and parenthesised expressions.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return &NumberLit{Raw: tok.Lexeme, IsInt: !strings.Contains(tok.Lexeme, "."), Line: tok.Line}, nil

	case STRING:
		p.advance()
		return &StringLit{Value: tok.Lexeme, Line: tok.Line}, nil

	case TRUE:
		p.advance()
		return &BoolLit{Value: true, Line: tok.Line}, nil

	case FALSE:
		p.advance()
		return &BoolLit{Value: false, Line: tok.Line}, nil

	case IDENTIFIER:
		p.advance()
		return &VarRef{Name: tok.Lexeme, Line: tok.Line}, nil

	case FN:
		return p.parseFnLambda()

	case MATCH:
		return p.parseMatchExpr()

	case LESS:
		return p.parseJSXElement()

	case LPAREN:
		// Ambiguous: "(a, b) => ..." is a lambda header, "(a + b)" is a
		// parenthesised expression. Attempt the lambda form speculatively;
		// a failed attempt rewinds with no diagnostics.
		if lambda, ok, err := p.tryParseArrowLambda(); ok || err != nil {
			return lambda, err
		}
		p.advance() // (
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.fmtError(tok, "expected expression, got "+tok.Type.String()+" ("+tok.Lexeme+")")
	}
}

//  Lambdas

// tryParseArrowLambda speculatively parses "(params) => body" starting at the
// opening '('. On any mismatch before the '=>' it rewinds the cursor and
// reports ok=false without emitting a diagnostic. Once the '=>' introducer
// has been seen the parse is committed and body errors propagate normally.
func (p *Parser) tryParseArrowLambda() (Expr, bool, error) {
	cp := p.mark()
	line := p.advance().Line // (

	params, ok := p.tryParseParamList()
	if !ok {
		p.reset(cp)
		return nil, false, nil
	}
	if p.peek().Type != RPAREN {
		p.reset(cp)
		return nil, false, nil
	}
	p.advance() // )
	if p.peek().Type != ARROW {
		// No lambda introducer after ')': this was a parenthesised expression.
		p.reset(cp)
		return nil, false, nil
	}
	p.advance() // =>

	body, err := p.parseLambdaBody()
	if err != nil {
		return nil, true, err
	}
	return &Lambda{Params: params, Body: body, Line: line}, true, nil
}

// tryParseParamList speculatively parses "ident [: Type] (, ident [: Type])*".
// After a ':' the next token must itself look like a type reference
// (identifier-shaped); anything else abandons the attempt. The closing ')'
// is left unconsumed. An empty list is valid.
func (p *Parser) tryParseParamList() ([]Param, bool) {
	var params []Param
	if p.peek().Type == RPAREN {
		return params, true
	}
	for {
		if p.peek().Type != IDENTIFIER {
			return nil, false
		}
		param := Param{Name: p.advance().Lexeme}

		if p.peek().Type == COLON {
			p.advance()
			if p.peek().Type != IDENTIFIER {
				return nil, false
			}
			param.Type = p.advance().Lexeme
		}
		params = append(params, param)

		if p.peek().Type != COMMA {
			return params, true
		}
		p.advance()
	}
}

// parseFnLambda parses the committed form "fn(params) body". The leading FN
// token is still current. A name after "fn" belongs to a function
// declaration, which the statement parser intercepts before this runs.
func (p *Parser) parseFnLambda() (Expr, error) {
	fnTok := p.advance() // fn
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseLambdaBody()
	if err != nil {
		return nil, err
	}
	return &Lambda{Params: params, Body: body, Line: fnTok.Line}, nil
}

// parseParamList is the committed counterpart of tryParseParamList, used
// where the grammar already guarantees a parameter list (fn lambdas,
// function and extern declarations). The closing ')' is left unconsumed.
func (p *Parser) parseParamList() ([]Param, error) {
	var params []Param
	if p.peek().Type == RPAREN {
		return params, nil
	}
	for {
		nameTok, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		param := Param{Name: nameTok.Lexeme}

		if p.peek().Type == COLON {
			p.advance()
			typeTok, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, p.fmtError(typeTok, "expected type name after ':'")
			}
			param.Type = typeTok.Lexeme
		}
		params = append(params, param)

		if p.peek().Type != COMMA {
			return params, nil
		}
		p.advance()
	}
}

// parseLambdaBody parses the single expression forming a lambda body.
// A trailing '=' extends the body into an assignment only when the parsed
// expression is a bare identifier; for any other left-hand shape (e.g. a
// member access) the '=' is left unconsumed and the lambda ends, so the '='
// and its right-hand side fall through to the next statement.
func (p *Parser) parseLambdaBody() (Expr, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == ASSIGN {
		if ref, ok := expr.(*VarRef); ok {
			p.advance() // =
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &AssignExpr{Name: ref.Name, Value: value}, nil
		}
	}
	return expr, nil
}

//  Match expressions

// parseMatchExpr parses  match subject { pattern [if guard] => body, ... }
func (p *Parser) parseMatchExpr() (Expr, error) {
	matchTok := p.advance() // match
	subject, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}

	var arms []MatchArm
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		pattern, err := p.parsePattern()
		if err != nil {
			return nil, err
		}

		var guard Expr
		if p.peek().Type == IF {
			p.advance()
			guard, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}

		if _, err := p.expect(ARROW); err != nil {
			return nil, err
		}
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		arms = append(arms, MatchArm{Pattern: pattern, Guard: guard, Body: body})

		if p.peek().Type == COMMA {
			p.advance()
		}
	}

	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return &MatchExpr{Subject: subject, Arms: arms, Line: matchTok.Line}, nil
}

// parsePattern parses one of the five pattern kinds. An identifier with an
// uppercase initial is a variant pattern; a lowercase identifier binds.
func (p *Parser) parsePattern() (Pattern, error) {
	tok := p.peek()
	switch tok.Type {
	case UNDERSCORE:
		p.advance()
		return &WildcardPattern{}, nil

	case NUMBER, MINUS:
		lit, err := p.parsePatternLiteral()
		if err != nil {
			return nil, err
		}
		if p.peek().Type == RANGE || p.peek().Type == RANGE_INCL {
			inclusive := p.advance().Type == RANGE_INCL
			high, err := p.parsePatternLiteral()
			if err != nil {
				return nil, err
			}
			return &RangePattern{Low: lit, High: high, Inclusive: inclusive}, nil
		}
		return &LiteralPattern{Value: lit}, nil

	case STRING:
		p.advance()
		return &LiteralPattern{Value: &StringLit{Value: tok.Lexeme, Line: tok.Line}}, nil

	case TRUE:
		p.advance()
		return &LiteralPattern{Value: &BoolLit{Value: true, Line: tok.Line}}, nil

	case FALSE:
		p.advance()
		return &LiteralPattern{Value: &BoolLit{Value: false, Line: tok.Line}}, nil

	case IDENTIFIER:
		p.advance()
		if p.peek().Type == LPAREN {
			p.advance() // (
			var bindings []string
			if p.peek().Type != RPAREN {
				for {
					bindTok, err := p.expect(IDENTIFIER)
					if err != nil {
						return nil, err
					}
					bindings = append(bindings, bindTok.Lexeme)
					if p.peek().Type != COMMA {
						break
					}
					p.advance()
				}
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			return &VariantPattern{Name: tok.Lexeme, Bindings: bindings, Line: tok.Line, Col: tok.Col}, nil
		}
		if isVariantName(tok.Lexeme) {
			return &VariantPattern{Name: tok.Lexeme, Line: tok.Line, Col: tok.Col}, nil
		}
		return &BindingPattern{Name: tok.Lexeme}, nil

	default:
		return nil, p.fmtError(tok, "expected pattern, got "+tok.Type.String()+" ("+tok.Lexeme+")")
	}
}

// parsePatternLiteral parses a (possibly negated) numeric literal.
func (p *Parser) parsePatternLiteral() (Expr, error) {
	negative := false
	if p.peek().Type == MINUS {
		p.advance()
		negative = true
	}
	tok, err := p.expect(NUMBER)
	if err != nil {
		return nil, err
	}
	raw := tok.Lexeme
	if negative {
		raw = "-" + raw
	}
	return &NumberLit{Raw: raw, IsInt: !strings.Contains(raw, "."), Line: tok.Line}, nil
}

// isVariantName reports whether a bare identifier in pattern position names
// a variant. Variant names are uppercase-initial by convention; anything
// else is a binding.
func isVariantName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

//  UI-template (JSX-style) parsing

// parseJSXElement parses <tag attr="v" attr={e}> children </tag>.
// The '<' token is still current.
func (p *Parser) parseJSXElement() (Expr, error) {
	ltTok := p.advance() // <
	tagTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	el := &JSXElement{Tag: tagTok.Lexeme, Line: ltTok.Line}

	for p.peek().Type == IDENTIFIER {
		attr := JSXAttr{Name: p.advance().Lexeme}
		if _, err := p.expect(ASSIGN); err != nil {
			return nil, err
		}
		switch p.peek().Type {
		case STRING:
			strTok := p.advance()
			attr.Value = &StringLit{Value: strTok.Lexeme, Line: strTok.Line}
		case LBRACE:
			p.advance()
			attr.Value, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACE); err != nil {
				return nil, err
			}
		default:
			return nil, p.fmtError(p.peek(), "expected attribute value")
		}
		el.Attrs = append(el.Attrs, attr)
	}

	// Self-closing element: <br/>
	if p.peek().Type == SLASH {
		p.advance()
		if _, err := p.expect(GREATER); err != nil {
			return nil, err
		}
		return el, nil
	}

	if _, err := p.expect(GREATER); err != nil {
		return nil, err
	}

	el.Children, err = p.parseJSXChildren(true)
	if err != nil {
		return nil, err
	}

	// Closing tag </tag>
	if _, err := p.expect(LESS); err != nil {
		return nil, err
	}
	if _, err := p.expect(SLASH); err != nil {
		return nil, err
	}
	closeTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if closeTok.Lexeme != el.Tag {
		return nil, p.fmtError(closeTok, "mismatched closing tag </"+closeTok.Lexeme+">, expected </"+el.Tag+">")
	}
	if _, err := p.expect(GREATER); err != nil {
		return nil, err
	}
	return el, nil
}

// parseJSXChildren collects template child nodes. A child starts with an
// element-open '<', a string literal, or an interpolation '{'; element
// bodies additionally accept "for" blocks, but a for body does not (a
// repeated group must wrap its iteration in an element). The loop stops
// the moment none of the lead tokens match, which in well-formed input is
// the enclosing close token ('</' here, '}' inside a for block).
func (p *Parser) parseJSXChildren(allowFor bool) ([]Expr, error) {
	var children []Expr
	for {
		switch p.peek().Type {
		case LESS:
			if p.peekAt(1).Type == SLASH {
				return children, nil // closing tag
			}
			child, err := p.parseJSXElement()
			if err != nil {
				return nil, err
			}
			children = append(children, child)

		case STRING:
			strTok := p.advance()
			children = append(children, &StringLit{Value: strTok.Lexeme, Line: strTok.Line})

		case LBRACE:
			p.advance()
			child, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACE); err != nil {
				return nil, err
			}
			children = append(children, child)

		case FOR:
			if !allowFor {
				return children, nil
			}
			child, err := p.parseJSXFor()
			if err != nil {
				return nil, err
			}
			children = append(children, child)

		default:
			// Defensive: any non-child token ends the body. Under a
			// conforming grammar this is exactly the enclosing close token.
			return children, nil
		}
	}
}

// parseJSXFor parses  for x in iterable { children }  inside a template.
func (p *Parser) parseJSXFor() (Expr, error) {
	forTok := p.advance() // for
	iterTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IN); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}

	// The body accepts child nodes while the lead token is an element-open
	// marker, a string literal, or an interpolation brace; an empty body is
	// allowed. A directly nested "for" is rejected here because it has no
	// lowering outside an element body. The loop's fall-through stop lands
	// on the closing '}'.
	body, err := p.parseJSXChildren(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return &JSXFor{IterVar: iterTok.Lexeme, Iterable: iterable, Body: body, Line: forTok.Line}, nil
}

//  Statements

// parseStatement dispatches to the correct sub-parser based on the leading token.
func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {
	case TYPE:
		return p.parseTypeDecl()

	case EXTERN:
		return p.parseExternDecl()

	case FN:
		// "fn name(" is a declaration; "fn(" is a lambda expression.
		if p.peekAt(1).Type == IDENTIFIER {
			return p.parseFunctionDecl()
		}
		return p.parseExprOrAssignment()

	case RETURN:
		return p.parseReturn()

	case IF:
		return p.parseIf()

	case ASSIGN:
		// An orphaned '=' left behind by a lambda whose body ended before
		// it (see parseLambdaBody): the right-hand side becomes a statement
		// of its own.
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: value}, nil

	default:
		return p.parseExprOrAssignment()
	}
}

// parseExprOrAssignment parses either an expression statement or an
// assignment  target (, target)* = value (, value)*.
func (p *Parser) parseExprOrAssignment() (Stmt, error) {
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	targets := []Expr{first}
	for p.peek().Type == COMMA {
		p.advance()
		next, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		targets = append(targets, next)
	}

	if p.peek().Type != ASSIGN {
		if len(targets) > 1 {
			return nil, p.fmtError(p.peek(), "expected '=' after assignment targets")
		}
		return &ExprStmt{Expr: first}, nil
	}

	for _, target := range targets {
		switch target.(type) {
		case *VarRef, *MemberExpr, *IndexExpr:
		default:
			// Not an assignable shape. A single such expression is a
			// complete statement; the '=' is left for the next statement
			// (this is how a lambda whose body stopped short of the '='
			// sheds it, see parseLambdaBody).
			if len(targets) == 1 {
				return &ExprStmt{Expr: first}, nil
			}
			return nil, p.fmtError(p.peek(), "invalid assignment target")
		}
	}
	assignTok := p.advance() // =

	var values []Expr
	for {
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		if p.peek().Type != COMMA {
			break
		}
		p.advance()
	}

	return &Assignment{Targets: targets, Values: values, Line: assignTok.Line}, nil
}

// parseTypeDecl parses  type Name = Variant | Variant(fields) | ...
func (p *Parser) parseTypeDecl() (Stmt, error) {
	typeTok := p.advance() // type
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN); err != nil {
		return nil, err
	}

	var variants []Variant
	for {
		vTok, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		variant := Variant{Name: vTok.Lexeme}

		if p.peek().Type == LPAREN {
			p.advance()
			if p.peek().Type != RPAREN {
				for {
					fieldTok, err := p.expect(IDENTIFIER)
					if err != nil {
						return nil, err
					}
					variant.Fields = append(variant.Fields, fieldTok.Lexeme)
					if p.peek().Type != COMMA {
						break
					}
					p.advance()
				}
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
		}
		variants = append(variants, variant)

		if p.peek().Type != PIPE {
			break
		}
		p.advance()
	}

	return &TypeDecl{Name: nameTok.Lexeme, Variants: variants, Line: typeTok.Line}, nil
}

// parseExternDecl parses  extern [async] fn name(params) [-> Type]
func (p *Parser) parseExternDecl() (Stmt, error) {
	externTok := p.advance() // extern
	isAsync := false
	if p.peek().Type == ASYNC {
		p.advance()
		isAsync = true
	}
	if _, err := p.expect(FN); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	decl := &ExternDecl{Name: nameTok.Lexeme, Params: params, IsAsync: isAsync, Line: externTok.Line}
	if p.peek().Type == RARROW {
		p.advance()
		retTok, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		decl.ReturnType = retTok.Lexeme
	}
	return decl, nil
}

// parseFunctionDecl parses  fn name(params) [-> Type] { body }
func (p *Parser) parseFunctionDecl() (Stmt, error) {
	fnTok := p.advance() // fn
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	decl := &FunctionDecl{Name: nameTok.Lexeme, Params: params, Line: fnTok.Line}
	if p.peek().Type == RARROW {
		p.advance()
		retTok, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		decl.ReturnType = retTok.Lexeme
	}

	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	decl.Body, err = p.parseBlock()
	if err != nil {
		return nil, err
	}
	return decl, nil
}

// parseBlock parses statements until the closing '}'.
// The opening '{' has already been consumed.
func (p *Parser) parseBlock() ([]Stmt, error) {
	var stmts []Stmt
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseReturn parses  return [expr]
func (p *Parser) parseReturn() (Stmt, error) {
	retTok := p.advance() // return
	if p.peek().Type == RBRACE || p.peek().Type == EOF {
		return &ReturnStmt{Line: retTok.Line}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ReturnStmt{Expr: expr, Line: retTok.Line}, nil
}

// parseIf parses  if cond { body } [else { body } | else if ...]
func (p *Parser) parseIf() (Stmt, error) {
	ifTok := p.advance() // if
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Condition: cond, Body: body, Line: ifTok.Line}

	if p.peek().Type == ELSE {
		p.advance()
		if p.peek().Type == IF {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.ElseBody = []Stmt{elseIf}
		} else {
			if _, err := p.expect(LBRACE); err != nil {
				return nil, err
			}
			stmt.ElseBody, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return stmt, nil
}

// Parse builds the Program AST for one source unit.
func Parse(tokens []Token, rawSource string) (*Program, error) {
	p := NewParser(tokens, rawSource)
	prog := &Program{}
	for p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, stmt)
	}
	return prog, nil
}
