package compiler

import "fmt"

// VariantInfo records one registered variant and its payload arity.
type VariantInfo struct {
	Name  string
	Arity int
}

// TypeRegistry maps a type name to its ordered variant list. It is built
// once per Analyze call and read-only afterwards; the exhaustiveness checker
// queries it. The built-in closed types Option and Result are pre-registered
// with fixed variant order.
type TypeRegistry struct {
	types map[string][]VariantInfo
	owner map[string]string // variant name -> owning type name
}

func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{
		types: make(map[string][]VariantInfo),
		owner: make(map[string]string),
	}
	r.Register("Option", []VariantInfo{{Name: "Some", Arity: 1}, {Name: "None"}})
	r.Register("Result", []VariantInfo{{Name: "Ok", Arity: 1}, {Name: "Err", Arity: 1}})
	return r
}

// Register records a type and its variants, preserving declaration order.
func (r *TypeRegistry) Register(name string, variants []VariantInfo) {
	r.types[name] = variants
	for _, v := range variants {
		r.owner[v.Name] = name
	}
}

// Variants returns the declared variant order for a type.
func (r *TypeRegistry) Variants(name string) ([]VariantInfo, bool) {
	vs, ok := r.types[name]
	return vs, ok
}

// OwnerOf returns the type a variant name belongs to.
func (r *TypeRegistry) OwnerOf(variant string) (string, bool) {
	t, ok := r.owner[variant]
	return t, ok
}

// Signature is the declared shape of a callable: extern functions, user
// functions, and variant constructors all register one.
type Signature struct {
	Name       string
	Params     []Param
	ReturnType string
	IsExtern   bool
	IsAsync    bool
}

// symbol is one scope-table entry: an identifier's inferred type and, for
// callables, its signature.
type symbol struct {
	typeName string
	sig      *Signature
	used     bool
}

// Options toggles the Analyzer's diagnostic categories.
type Options struct {
	Exhaustiveness bool // non-exhaustive match warnings
	Arity          bool // argument-count warnings
	UnusedBindings bool // unused lambda parameter hints
}

// DefaultOptions enables every diagnostic category.
func DefaultOptions() Options {
	return Options{Exhaustiveness: true, Arity: true, UnusedBindings: true}
}

// Analysis is the result of one Analyze call: the accumulated advisory
// diagnostics and the populated type registry. Both are fresh per call and
// never shared across runs.
type Analysis struct {
	Warnings []Diagnostic
	Types    *TypeRegistry
}

// Analyzer walks the AST top to bottom, maintaining lexical scope. Warnings
// accumulate and never stop the walk; the one fatal class (argument type
// mismatch against a declared parameter) aborts immediately.
type Analyzer struct {
	registry   *TypeRegistry
	scopes     []map[string]*symbol
	warnings   []Diagnostic
	opts       Options
	sourceName string
}

// Analyze runs all static checks over the program.
func Analyze(prog *Program, sourceName string, opts Options) (*Analysis, error) {
	a := &Analyzer{
		registry:   NewTypeRegistry(),
		scopes:     []map[string]*symbol{make(map[string]*symbol)},
		opts:       opts,
		sourceName: sourceName,
	}

	for _, stmt := range prog.Body {
		if err := a.checkStmt(stmt); err != nil {
			return nil, err
		}
	}
	return &Analysis{Warnings: a.warnings, Types: a.registry}, nil
}

func (a *Analyzer) pushScope() {
	a.scopes = append(a.scopes, make(map[string]*symbol))
}

func (a *Analyzer) popScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

func (a *Analyzer) define(name string, sym *symbol) {
	a.scopes[len(a.scopes)-1][name] = sym
}

// lookup searches scopes innermost-first.
func (a *Analyzer) lookup(name string) (*symbol, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if sym, ok := a.scopes[i][name]; ok {
			return sym, true
		}
	}
	return nil, false
}

func (a *Analyzer) warn(line, col int, severity Severity, format string, args ...any) {
	a.warnings = append(a.warnings, Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: severity,
		Source:   a.sourceName,
		Line:     line,
		Col:      col,
	})
}

//  Statements

func (a *Analyzer) checkStmt(s Stmt) error {
	switch n := s.(type) {
	case *TypeDecl:
		variants := make([]VariantInfo, len(n.Variants))
		for i, v := range n.Variants {
			variants[i] = VariantInfo{Name: v.Name, Arity: len(v.Fields)}
		}
		a.registry.Register(n.Name, variants)
		// Each variant is a callable constructor returning the declared type.
		for _, v := range n.Variants {
			params := make([]Param, len(v.Fields))
			for i, f := range v.Fields {
				params[i] = Param{Name: f}
			}
			a.define(v.Name, &symbol{
				typeName: n.Name,
				sig:      &Signature{Name: v.Name, Params: params, ReturnType: n.Name},
			})
		}
		return nil

	case *ExternDecl:
		// Registered externs are known callables: referencing one never
		// produces an undefined-identifier warning.
		a.define(n.Name, &symbol{sig: &Signature{
			Name:       n.Name,
			Params:     n.Params,
			ReturnType: n.ReturnType,
			IsExtern:   true,
			IsAsync:    n.IsAsync,
		}})
		return nil

	case *FunctionDecl:
		a.define(n.Name, &symbol{sig: &Signature{
			Name:       n.Name,
			Params:     n.Params,
			ReturnType: n.ReturnType,
		}})
		a.pushScope()
		for _, param := range n.Params {
			a.define(param.Name, &symbol{typeName: param.Type})
		}
		for _, stmt := range n.Body {
			if err := a.checkStmt(stmt); err != nil {
				return err
			}
		}
		a.popScope()
		return nil

	case *Assignment:
		for _, value := range n.Values {
			if err := a.checkExpr(value); err != nil {
				return err
			}
		}
		for i, target := range n.Targets {
			ref, ok := target.(*VarRef)
			if !ok {
				continue // member/index targets do not introduce bindings
			}
			typeName := ""
			if i < len(n.Values) {
				typeName = a.inferType(n.Values[i])
			}
			a.define(ref.Name, &symbol{typeName: typeName})
		}
		return nil

	case *ExprStmt:
		return a.checkExpr(n.Expr)

	case *ReturnStmt:
		if n.Expr != nil {
			return a.checkExpr(n.Expr)
		}
		return nil

	case *IfStmt:
		if err := a.checkExpr(n.Condition); err != nil {
			return err
		}
		a.pushScope()
		for _, stmt := range n.Body {
			if err := a.checkStmt(stmt); err != nil {
				return err
			}
		}
		a.popScope()
		a.pushScope()
		for _, stmt := range n.ElseBody {
			if err := a.checkStmt(stmt); err != nil {
				return err
			}
		}
		a.popScope()
		return nil
	}
	return nil
}

//  Expressions

func (a *Analyzer) checkExpr(e Expr) error {
	switch n := e.(type) {
	case *VarRef:
		if sym, ok := a.lookup(n.Name); ok {
			sym.used = true
		}
		return nil

	case *BinaryExpr:
		if err := a.checkExpr(n.Left); err != nil {
			return err
		}
		return a.checkExpr(n.Right)

	case *LogicalExpr:
		if err := a.checkExpr(n.Left); err != nil {
			return err
		}
		return a.checkExpr(n.Right)

	case *UnaryExpr:
		return a.checkExpr(n.Right)

	case *MemberExpr:
		return a.checkExpr(n.Left)

	case *IndexExpr:
		if err := a.checkExpr(n.Left); err != nil {
			return err
		}
		return a.checkExpr(n.Index)

	case *SliceExpr:
		for _, part := range []Expr{n.Left, n.Start, n.End, n.Step} {
			if part == nil {
				continue
			}
			if err := a.checkExpr(part); err != nil {
				return err
			}
		}
		return nil

	case *AssignExpr:
		if err := a.checkExpr(n.Value); err != nil {
			return err
		}
		a.define(n.Name, &symbol{typeName: a.inferType(n.Value)})
		return nil

	case *CallExpr:
		return a.checkCall(n)

	case *Lambda:
		a.pushScope()
		params := make([]*symbol, len(n.Params))
		for i, param := range n.Params {
			params[i] = &symbol{typeName: param.Type}
			a.define(param.Name, params[i])
		}
		if err := a.checkExpr(n.Body); err != nil {
			return err
		}
		if a.opts.UnusedBindings {
			for i, param := range n.Params {
				if !params[i].used {
					a.warn(n.Line, 0, SeverityHint, "unused parameter '%s'", param.Name)
				}
			}
		}
		a.popScope()
		return nil

	case *MatchExpr:
		return a.checkMatch(n)

	case *JSXElement:
		for _, attr := range n.Attrs {
			if err := a.checkExpr(attr.Value); err != nil {
				return err
			}
		}
		for _, child := range n.Children {
			if err := a.checkExpr(child); err != nil {
				return err
			}
		}
		return nil

	case *JSXFor:
		if err := a.checkExpr(n.Iterable); err != nil {
			return err
		}
		a.pushScope()
		a.define(n.IterVar, &symbol{})
		for _, child := range n.Body {
			if err := a.checkExpr(child); err != nil {
				return err
			}
		}
		a.popScope()
		return nil
	}
	return nil
}

// checkCall verifies a call against a registered signature: an argument
// count mismatch is advisory, but an argument type mismatch against a
// declared parameter type is fatal, because declared signatures are the
// contract crossing the FFI boundary.
func (a *Analyzer) checkCall(call *CallExpr) error {
	for _, arg := range call.Args {
		if err := a.checkExpr(arg); err != nil {
			return err
		}
	}
	ref, ok := call.Callee.(*VarRef)
	if !ok {
		return a.checkExpr(call.Callee)
	}
	sym, ok := a.lookup(ref.Name)
	if !ok {
		// Pre-registered constructors (Some, Ok, ...) are callable without
		// a declaration in scope.
		if owner, isVariant := a.registry.OwnerOf(ref.Name); isVariant {
			if a.opts.Arity {
				if variants, ok := a.registry.Variants(owner); ok {
					for _, v := range variants {
						if v.Name == ref.Name && len(call.Args) != v.Arity {
							a.warn(call.Line, 0, SeverityWarning, "%s expects %d arguments, got %d",
								ref.Name, v.Arity, len(call.Args))
						}
					}
				}
			}
			return nil
		}
		a.warn(call.Line, 0, SeverityWarning, "call to undefined function '%s'", ref.Name)
		return nil
	}
	sym.used = true
	if sym.sig == nil {
		return nil
	}

	if a.opts.Arity && len(call.Args) != len(sym.sig.Params) {
		a.warn(call.Line, 0, SeverityWarning, "%s expects %d arguments, got %d",
			ref.Name, len(sym.sig.Params), len(call.Args))
	}

	for i, arg := range call.Args {
		if i >= len(sym.sig.Params) {
			break
		}
		param := sym.sig.Params[i]
		if param.Type == "" {
			continue
		}
		actual := a.inferType(arg)
		if actual == "" || actual == param.Type {
			continue
		}
		return &AnalysisError{
			Source:   a.sourceName,
			Function: ref.Name,
			Param:    param.Name,
			Expected: param.Type,
			Actual:   actual,
			Line:     call.Line,
		}
	}
	return nil
}

// checkMatch runs the exhaustiveness checker over one match expression.
//
// Coverage rules: only unguarded variant arms contribute (a guarded arm can
// reject at runtime); an unguarded binding or wildcard arm makes coverage
// total; literal and range arms never count toward ADT-variant coverage.
// If the subject's type cannot be statically resolved, or an arm names a
// variant not registered under it, no diagnostic is produced.
func (a *Analyzer) checkMatch(m *MatchExpr) error {
	if err := a.checkExpr(m.Subject); err != nil {
		return err
	}

	subjectType := a.inferType(m.Subject)
	variants, known := a.registry.Variants(subjectType)

	covered := make(map[string]bool)
	total := false

	for _, arm := range m.Arms {
		// Arm bindings are visible to the guard and the body.
		a.pushScope()
		switch pat := arm.Pattern.(type) {
		case *VariantPattern:
			for _, binding := range pat.Bindings {
				a.define(binding, &symbol{})
			}
			if owner, ok := a.registry.OwnerOf(pat.Name); !ok || (known && owner != subjectType) {
				// Unknown variant for the subject: treat the subject type as
				// unresolved rather than reporting a false positive.
				known = false
			} else if arm.Guard == nil {
				covered[pat.Name] = true
			}
		case *BindingPattern:
			a.define(pat.Name, &symbol{typeName: subjectType})
			if arm.Guard == nil {
				total = true
			}
		case *WildcardPattern:
			if arm.Guard == nil {
				total = true
			}
		}

		if arm.Guard != nil {
			if err := a.checkExpr(arm.Guard); err != nil {
				a.popScope()
				return err
			}
		}
		if err := a.checkExpr(arm.Body); err != nil {
			a.popScope()
			return err
		}
		a.popScope()
	}

	if !a.opts.Exhaustiveness || !known || total {
		return nil
	}
	for _, v := range variants {
		if !covered[v.Name] {
			a.warn(m.Line, 0, SeverityWarning, "Non-exhaustive match: missing '%s'", v.Name)
		}
	}
	return nil
}

// inferType resolves an expression's static type name where possible,
// returning "" when it cannot. Inference is deliberately shallow: a value
// whose type is unknown simply opts out of extern type checks and
// exhaustiveness checking.
func (a *Analyzer) inferType(e Expr) string {
	switch n := e.(type) {
	case *NumberLit:
		if n.IsInt {
			return "Int"
		}
		return "Float"
	case *StringLit:
		return "String"
	case *BoolLit:
		return "Bool"
	case *VarRef:
		if sym, ok := a.lookup(n.Name); ok {
			return sym.typeName
		}
		if owner, ok := a.registry.OwnerOf(n.Name); ok {
			return owner // bare variant reference, e.g. None
		}
		return ""
	case *CallExpr:
		if ref, ok := n.Callee.(*VarRef); ok {
			if sym, ok := a.lookup(ref.Name); ok && sym.sig != nil {
				return sym.sig.ReturnType
			}
			if owner, ok := a.registry.OwnerOf(ref.Name); ok {
				return owner // constructor call, e.g. Ok(value)
			}
		}
		return ""
	case *UnaryExpr:
		if n.Op == MINUS {
			return a.inferType(n.Right)
		}
		if n.Op == NOT {
			return "Bool"
		}
		return ""
	case *LogicalExpr:
		return "Bool"
	}
	return ""
}
