package compiler

import (
	"fmt"
	"strings"
)

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
}

// NumberLit is a numeric constant. Raw preserves the source spelling so
// code generation can reproduce it verbatim.
type NumberLit struct {
	Raw   string
	IsInt bool
	Line  int
}

func (*NumberLit) exprNode()        {}
func (n *NumberLit) String() string { return n.Raw }

// StringLit is a string constant "..."
type StringLit struct {
	Value string
	Line  int
}

func (*StringLit) exprNode()        {}
func (s *StringLit) String() string { return fmt.Sprintf("%q", s.Value) }

// BoolLit is true or false.
type BoolLit struct {
	Value bool
	Line  int
}

func (*BoolLit) exprNode()        {}
func (b *BoolLit) String() string { return fmt.Sprintf("%t", b.Value) }

// VarRef is a read of a named variable.
type VarRef struct {
	Name string
	Line int
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

// BinaryExpr represents a binary operation: Left Op Right.
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// LogicalExpr represents Left && Right or Left || Right. It is separate from
// BinaryExpr because generated code must preserve short-circuit order.
type LogicalExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*LogicalExpr) exprNode() {}
func (l *LogicalExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", l.Left, l.Op, l.Right)
}

// UnaryExpr represents Op Right (e.g. -x, !ok).
type UnaryExpr struct {
	Op    TokenType
	Right Expr
}

func (*UnaryExpr) exprNode()        {}
func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s %s)", u.Op, u.Right) }

// CallExpr represents callee(args).
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Line   int
}

func (*CallExpr) exprNode() {}
func (c *CallExpr) String() string {
	return fmt.Sprintf("Call(%s, args=%v)", c.Callee, c.Args)
}

// MemberExpr represents Left.Member
type MemberExpr struct {
	Left   Expr
	Member string
}

func (*MemberExpr) exprNode()        {}
func (e *MemberExpr) String() string { return fmt.Sprintf("(%s.%s)", e.Left, e.Member) }

// IndexExpr represents Left[Index]
type IndexExpr struct {
	Left  Expr
	Index Expr
}

func (*IndexExpr) exprNode()        {}
func (e *IndexExpr) String() string { return fmt.Sprintf("(%s[%s])", e.Left, e.Index) }

// SliceExpr represents Left[Start..End], Left[Start..=End], or the stepped
// form Left[Start..End:Step]. Start, End, and Step may each be nil; omitted
// bounds default to the subject's bounds.
type SliceExpr struct {
	Left      Expr
	Start     Expr // nil means from the beginning
	End       Expr // nil means to the end
	Step      Expr // nil means stride 1
	Inclusive bool // true for ..=
}

func (*SliceExpr) exprNode() {}
func (e *SliceExpr) String() string {
	op := ".."
	if e.Inclusive {
		op = "..="
	}
	s := fmt.Sprintf("(%s[%v%s%v", e.Left, e.Start, op, e.End)
	if e.Step != nil {
		s += fmt.Sprintf(":%s", e.Step)
	}
	return s + "])"
}

// Param is a single lambda/function parameter with an optional type annotation.
type Param struct {
	Name string
	Type string // "" when unannotated
}

func (p Param) String() string {
	if p.Type == "" {
		return p.Name
	}
	return p.Name + ": " + p.Type
}

// Lambda represents fn(params) body or (params) => body.
// The body is a single expression.
type Lambda struct {
	Params []Param
	Body   Expr
	Line   int
}

func (*Lambda) exprNode() {}
func (l *Lambda) String() string {
	return fmt.Sprintf("Lambda(%v, %s)", l.Params, l.Body)
}

// AssignExpr is the assignment-as-body form of a lambda: fn(x) acc = x + 1.
// Only a bare identifier on the left produces this node; any other left-hand
// shape ends the lambda body before the '='.
type AssignExpr struct {
	Name  string
	Value Expr
}

func (*AssignExpr) exprNode() {}
func (a *AssignExpr) String() string {
	return fmt.Sprintf("AssignExpr(%s = %s)", a.Name, a.Value)
}

// MatchExpr represents match Subject { arms... }
type MatchExpr struct {
	Subject Expr
	Arms    []MatchArm
	Line    int
}

func (*MatchExpr) exprNode() {}
func (m *MatchExpr) String() string {
	return fmt.Sprintf("Match(%s, arms=%d)", m.Subject, len(m.Arms))
}

// MatchArm is one pattern => body arm, with an optional guard.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil when unguarded
	Body    Expr
}

//  Pattern nodes

// Pattern is implemented by exactly the five match-pattern kinds.
type Pattern interface {
	patternNode()
	String() string
}

// LiteralPattern matches by equality against a literal value.
type LiteralPattern struct {
	Value Expr // NumberLit, StringLit, or BoolLit
}

func (*LiteralPattern) patternNode()     {}
func (p *LiteralPattern) String() string { return p.Value.String() }

// RangePattern matches Low..High (exclusive) or Low..=High (inclusive).
type RangePattern struct {
	Low       Expr
	High      Expr
	Inclusive bool
}

func (*RangePattern) patternNode() {}
func (p *RangePattern) String() string {
	op := ".."
	if p.Inclusive {
		op = "..="
	}
	return fmt.Sprintf("%s%s%s", p.Low, op, p.High)
}

// VariantPattern matches one ADT variant and binds its payload fields.
type VariantPattern struct {
	Name     string
	Bindings []string
	Line     int
	Col      int
}

func (*VariantPattern) patternNode() {}
func (p *VariantPattern) String() string {
	if len(p.Bindings) == 0 {
		return p.Name
	}
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(p.Bindings, ", "))
}

// BindingPattern is a catch-all that binds the subject to a name.
type BindingPattern struct {
	Name string
}

func (*BindingPattern) patternNode()     {}
func (p *BindingPattern) String() string { return p.Name }

// WildcardPattern is a catch-all that discards the subject.
type WildcardPattern struct{}

func (*WildcardPattern) patternNode()     {}
func (p *WildcardPattern) String() string { return "_" }

//  UI-template (JSX-style) nodes

// JSXAttr is a single name="value" or name={expr} attribute.
type JSXAttr struct {
	Name  string
	Value Expr
}

// JSXElement represents <tag attrs>children</tag> inside a UI template.
// Children are element, string, interpolation, or JSXFor nodes.
type JSXElement struct {
	Tag      string
	Attrs    []JSXAttr
	Children []Expr
	Line     int
}

func (*JSXElement) exprNode() {}
func (e *JSXElement) String() string {
	return fmt.Sprintf("<%s children=%d>", e.Tag, len(e.Children))
}

// JSXFor represents for x in iterable { children } inside a UI template.
type JSXFor struct {
	IterVar  string
	Iterable Expr
	Body     []Expr
	Line     int
}

func (*JSXFor) exprNode() {}
func (f *JSXFor) String() string {
	return fmt.Sprintf("JSXFor(%s in %s, body=%d)", f.IterVar, f.Iterable, len(f.Body))
}

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	String() string
}

// Program is the root node: an ordered sequence of statements.
type Program struct {
	Body []Stmt
}

func (p *Program) String() string {
	return fmt.Sprintf("Program(stmts=%d)", len(p.Body))
}

// Assignment represents  targets = values. Targets are identifiers, member
// accesses, or index expressions; multiple targets pair positionally with
// multiple values.
type Assignment struct {
	Targets []Expr
	Values  []Expr
	Line    int
}

func (*Assignment) stmtNode() {}
func (a *Assignment) String() string {
	return fmt.Sprintf("Assignment(%v = %v)", a.Targets, a.Values)
}

// ExprStmt represents an expression evaluated for its side effects.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode() {}
func (e *ExprStmt) String() string {
	return fmt.Sprintf("ExprStmt(%s)", e.Expr)
}

// Variant is one alternative of a declared algebraic data type.
type Variant struct {
	Name   string
	Fields []string
}

func (v Variant) String() string {
	if len(v.Fields) == 0 {
		return v.Name
	}
	return fmt.Sprintf("%s(%s)", v.Name, strings.Join(v.Fields, ", "))
}

// TypeDecl represents  type Name = Variant | Variant | ...
// Declaration order of variants is significant: it is the canonical order
// used when reporting missing variants.
type TypeDecl struct {
	Name     string
	Variants []Variant
	Line     int
}

func (*TypeDecl) stmtNode() {}
func (t *TypeDecl) String() string {
	return fmt.Sprintf("TypeDecl(%s, variants=%v)", t.Name, t.Variants)
}

// FunctionDecl represents  fn name(params) [-> Type] { body }
type FunctionDecl struct {
	Name       string
	Params     []Param
	ReturnType string // "" when unannotated
	Body       []Stmt
	Line       int
}

func (*FunctionDecl) stmtNode() {}
func (f *FunctionDecl) String() string {
	return fmt.Sprintf("FunctionDecl(%s, params=%v, body=%d)", f.Name, f.Params, len(f.Body))
}

// ExternDecl represents  extern [async] fn name(params) [-> Type]
// The function is supplied by the host environment; no body exists.
type ExternDecl struct {
	Name       string
	Params     []Param
	ReturnType string // "" when undeclared
	IsAsync    bool
	Line       int
}

func (*ExternDecl) stmtNode() {}
func (e *ExternDecl) String() string {
	kind := "extern fn"
	if e.IsAsync {
		kind = "extern async fn"
	}
	return fmt.Sprintf("ExternDecl(%s %s, params=%v)", kind, e.Name, e.Params)
}

// ReturnStmt represents  return expr
type ReturnStmt struct {
	Expr Expr // nil for a bare return
	Line int
}

func (*ReturnStmt) stmtNode() {}
func (r *ReturnStmt) String() string {
	return fmt.Sprintf("ReturnStmt(%s)", r.Expr)
}

// IfStmt represents  if cond { body } [else ...]
type IfStmt struct {
	Condition Expr
	Body      []Stmt
	ElseBody  []Stmt // nil when absent; a single nested IfStmt models else-if
	Line      int
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	if i.ElseBody != nil {
		return fmt.Sprintf("IfStmt(if %s then %d else %d)", i.Condition, len(i.Body), len(i.ElseBody))
	}
	return fmt.Sprintf("IfStmt(if %s then %d)", i.Condition, len(i.Body))
}
