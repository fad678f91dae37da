package compiler

import (
	"fmt"
	"strings"
)

// BaseCodegen is the shared statement/expression emitter. CodeGen builds on
// it for whole-program output; it is also usable directly for incremental
// single-statement emission via GenerateStatement. It walks raw or analyzed
// ASTs identically and never mutates the tree.
type BaseCodegen struct {
	out     strings.Builder
	indent  int
	nextTmp int
	// declScopes tracks names already introduced with let/function/const,
	// innermost scope last. Function bodies push a scope seeded with their
	// parameter names, so a parameter is never redeclared with let and a
	// local of one function never suppresses the declaration of an
	// identically named local elsewhere.
	declScopes []map[string]bool
}

func NewBaseCodegen() *BaseCodegen {
	return &BaseCodegen{declScopes: []map[string]bool{make(map[string]bool)}}
}

func (b *BaseCodegen) pushDeclScope() {
	b.declScopes = append(b.declScopes, make(map[string]bool))
}

func (b *BaseCodegen) popDeclScope() {
	b.declScopes = b.declScopes[:len(b.declScopes)-1]
}

// declare records a name in the innermost scope.
func (b *BaseCodegen) declare(name string) {
	b.declScopes[len(b.declScopes)-1][name] = true
}

// isDeclared reports whether a name is visible in any enclosing scope.
func (b *BaseCodegen) isDeclared(name string) bool {
	for i := len(b.declScopes) - 1; i >= 0; i-- {
		if b.declScopes[i][name] {
			return true
		}
	}
	return false
}

// newTmp returns a fresh temporary name for match subjects.
func (b *BaseCodegen) newTmp() string {
	t := fmt.Sprintf("__m%d", b.nextTmp)
	b.nextTmp++
	return t
}

// line writes one indented line of target text.
func (b *BaseCodegen) line(format string, args ...any) {
	b.out.WriteString(strings.Repeat("  ", b.indent))
	fmt.Fprintf(&b.out, format+"\n", args...)
}

// comment writes a target-language comment line.
func (b *BaseCodegen) comment(format string, args ...any) {
	b.line("// "+format, args...)
}

// GenerateStatement emits one statement and returns its generated text.
// External tooling uses this for partial output, e.g. showing how a single
// extern declaration lowers.
func (b *BaseCodegen) GenerateStatement(s Stmt) (string, error) {
	start := b.out.Len()
	if err := b.emitStmt(s); err != nil {
		return "", err
	}
	return b.out.String()[start:], nil
}

// opStrings maps source operators to their target spelling. Equality uses
// the strict forms so generated comparisons never coerce.
var opStrings = map[TokenType]string{
	PLUS:        "+",
	MINUS:       "-",
	STAR:        "*",
	SLASH:       "/",
	PERCENT:     "%",
	EQUALS:      "===",
	NOT_EQ:      "!==",
	LESS:        "<",
	GREATER:     ">",
	LESS_EQ:     "<=",
	GREATER_EQ:  ">=",
	AND_LOGICAL: "&&",
	OR_LOGICAL:  "||",
	NOT:         "!",
}

//  Statements

func (b *BaseCodegen) emitStmt(s Stmt) error {
	switch n := s.(type) {
	case *Assignment:
		return b.emitAssignment(n)

	case *ExprStmt:
		text, err := b.exprString(n.Expr)
		if err != nil {
			return err
		}
		b.line("%s;", text)
		return nil

	case *TypeDecl:
		return b.emitTypeDecl(n)

	case *ExternDecl:
		// Extern functions are supplied by the host environment at run
		// time; only a documentation marker is emitted, never a body.
		kind := "fn"
		if n.IsAsync {
			kind = "async fn"
		}
		b.comment("extern %s: %s is provided by the host environment", kind, n.Name)
		b.declare(n.Name)
		return nil

	case *FunctionDecl:
		return b.emitFunctionDecl(n)

	case *ReturnStmt:
		if n.Expr == nil {
			b.line("return;")
			return nil
		}
		text, err := b.exprString(n.Expr)
		if err != nil {
			return err
		}
		b.line("return %s;", text)
		return nil

	case *IfStmt:
		return b.emitIf(n)

	default:
		return &CodegenError{Msg: fmt.Sprintf("no lowering for statement %T", s)}
	}
}

func (b *BaseCodegen) emitAssignment(n *Assignment) error {
	if len(n.Targets) != len(n.Values) {
		return &CodegenError{Msg: fmt.Sprintf("line %d: %d assignment targets but %d values",
			n.Line, len(n.Targets), len(n.Values))}
	}
	for i, target := range n.Targets {
		value, err := b.exprString(n.Values[i])
		if err != nil {
			return err
		}
		if ref, ok := target.(*VarRef); ok {
			if !b.isDeclared(ref.Name) {
				b.declare(ref.Name)
				b.line("let %s = %s;", ref.Name, value)
				continue
			}
			b.line("%s = %s;", ref.Name, value)
			continue
		}
		dest, err := b.exprString(target)
		if err != nil {
			return err
		}
		b.line("%s = %s;", dest, value)
	}
	return nil
}

// emitTypeDecl lowers an ADT declaration to one tagged constructor per
// variant. Fieldless variants become singleton values.
func (b *BaseCodegen) emitTypeDecl(n *TypeDecl) error {
	names := make([]string, len(n.Variants))
	for i, v := range n.Variants {
		names[i] = v.Name
	}
	b.comment("type %s = %s", n.Name, strings.Join(names, " | "))
	for _, v := range n.Variants {
		b.declare(v.Name)
		if len(v.Fields) == 0 {
			b.line("const %s = { tag: %q, values: [] };", v.Name, v.Name)
			continue
		}
		fields := strings.Join(v.Fields, ", ")
		b.line("function %s(%s) { return { tag: %q, values: [%s] }; }",
			v.Name, fields, v.Name, fields)
	}
	return nil
}

func (b *BaseCodegen) emitFunctionDecl(n *FunctionDecl) error {
	b.declare(n.Name)
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Name
	}
	b.line("function %s(%s) {", n.Name, strings.Join(params, ", "))
	b.indent++
	// The body declares into its own scope; parameters are already bound.
	b.pushDeclScope()
	for _, p := range n.Params {
		b.declare(p.Name)
	}
	for _, stmt := range n.Body {
		if err := b.emitStmt(stmt); err != nil {
			b.popDeclScope()
			return err
		}
	}
	b.popDeclScope()
	b.indent--
	b.line("}")
	return nil
}

// emitIf recurses structurally: nested conditionals in the source become
// nested conditional blocks in the output, never flattened logic.
func (b *BaseCodegen) emitIf(n *IfStmt) error {
	cond, err := b.exprString(n.Condition)
	if err != nil {
		return err
	}
	b.line("if (%s) {", cond)
	b.indent++
	for _, stmt := range n.Body {
		if err := b.emitStmt(stmt); err != nil {
			return err
		}
	}
	b.indent--
	if n.ElseBody == nil {
		b.line("}")
		return nil
	}
	b.line("} else {")
	b.indent++
	for _, stmt := range n.ElseBody {
		if err := b.emitStmt(stmt); err != nil {
			return err
		}
	}
	b.indent--
	b.line("}")
	return nil
}

//  Expressions

func (b *BaseCodegen) exprString(e Expr) (string, error) {
	switch n := e.(type) {
	case *NumberLit:
		return n.Raw, nil

	case *StringLit:
		return fmt.Sprintf("%q", n.Value), nil

	case *BoolLit:
		return fmt.Sprintf("%t", n.Value), nil

	case *VarRef:
		return n.Name, nil

	case *BinaryExpr:
		left, err := b.exprString(n.Left)
		if err != nil {
			return "", err
		}
		right, err := b.exprString(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, opStrings[n.Op], right), nil

	case *LogicalExpr:
		// Left-to-right with native short-circuit: evaluation order in the
		// emitted text matches source order.
		left, err := b.exprString(n.Left)
		if err != nil {
			return "", err
		}
		right, err := b.exprString(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, opStrings[n.Op], right), nil

	case *UnaryExpr:
		right, err := b.exprString(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s%s)", opStrings[n.Op], right), nil

	case *CallExpr:
		callee, err := b.exprString(n.Callee)
		if err != nil {
			return "", err
		}
		args := make([]string, len(n.Args))
		for i, arg := range n.Args {
			if args[i], err = b.exprString(arg); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", ")), nil

	case *MemberExpr:
		left, err := b.exprString(n.Left)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s", left, n.Member), nil

	case *IndexExpr:
		left, err := b.exprString(n.Left)
		if err != nil {
			return "", err
		}
		index, err := b.exprString(n.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", left, index), nil

	case *SliceExpr:
		return b.sliceString(n)

	case *Lambda:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Name
		}
		body, err := b.exprString(n.Body)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), body), nil

	case *AssignExpr:
		value, err := b.exprString(n.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s = %s)", n.Name, value), nil

	case *MatchExpr:
		return b.matchString(n)

	case *JSXElement:
		return b.jsxString(n)

	case *JSXFor:
		return "", &CodegenError{Msg: "template 'for' outside an element body"}

	default:
		return "", &CodegenError{Msg: fmt.Sprintf("no lowering for expression %T", e)}
	}
}

// sliceString lowers a slice expression. The plain forms map onto the
// target's native slice call; a stepped slice has no native equivalent and
// lowers to an explicit counting loop.
func (b *BaseCodegen) sliceString(n *SliceExpr) (string, error) {
	left, err := b.exprString(n.Left)
	if err != nil {
		return "", err
	}
	start := "0"
	if n.Start != nil {
		if start, err = b.exprString(n.Start); err != nil {
			return "", err
		}
	}
	end := ""
	if n.End != nil {
		if end, err = b.exprString(n.End); err != nil {
			return "", err
		}
	}

	if n.Step == nil {
		if end == "" {
			return fmt.Sprintf("%s.slice(%s)", left, start), nil
		}
		if n.Inclusive {
			return fmt.Sprintf("%s.slice(%s, (%s) + 1)", left, start, end), nil
		}
		return fmt.Sprintf("%s.slice(%s, %s)", left, start, end), nil
	}

	step, err := b.exprString(n.Step)
	if err != nil {
		return "", err
	}
	cmp := "<"
	if n.Inclusive {
		cmp = "<="
	}
	if end == "" {
		end = "__src.length"
		cmp = "<"
	}
	return fmt.Sprintf(
		"((__src) => { const __out = []; for (let __i = %s; __i %s %s; __i += %s) { __out.push(__src[__i]); } return __out; })(%s)",
		start, cmp, end, step, left), nil
}

// matchString lowers a match expression to an immediately invoked function.
// The subject is evaluated exactly once into a temporary; arms are tested
// strictly in source order and the first structurally-and-guard matching arm
// returns. Guards evaluate only after the pattern itself has matched, as a
// single-parameter function applied to the bound value.
func (b *BaseCodegen) matchString(m *MatchExpr) (string, error) {
	subject, err := b.exprString(m.Subject)
	if err != nil {
		return "", err
	}
	tmp := b.newTmp()

	pad := strings.Repeat("  ", b.indent+1)
	inner := strings.Repeat("  ", b.indent+2)
	var sb strings.Builder
	sb.WriteString("(() => {\n")
	fmt.Fprintf(&sb, "%sconst %s = %s;\n", pad, tmp, subject)

	for _, arm := range m.Arms {
		body, err := b.exprString(arm.Body)
		if err != nil {
			return "", err
		}

		switch pat := arm.Pattern.(type) {
		case *LiteralPattern:
			lit, err := b.exprString(pat.Value)
			if err != nil {
				return "", err
			}
			cond := fmt.Sprintf("%s === %s", tmp, lit)
			if err := b.writeGuardedArm(&sb, pad, inner, cond, nil, tmp, arm.Guard, body); err != nil {
				return "", err
			}

		case *RangePattern:
			low, err := b.exprString(pat.Low)
			if err != nil {
				return "", err
			}
			high, err := b.exprString(pat.High)
			if err != nil {
				return "", err
			}
			cmp := "<"
			if pat.Inclusive {
				cmp = "<="
			}
			cond := fmt.Sprintf("%s >= %s && %s %s %s", tmp, low, tmp, cmp, high)
			if err := b.writeGuardedArm(&sb, pad, inner, cond, nil, tmp, arm.Guard, body); err != nil {
				return "", err
			}

		case *VariantPattern:
			cond := fmt.Sprintf("%s.tag === %q", tmp, pat.Name)
			var binds []string
			for i, binding := range pat.Bindings {
				binds = append(binds, fmt.Sprintf("const %s = %s.values[%d];", binding, tmp, i))
			}
			guardParam := tmp
			if len(pat.Bindings) > 0 {
				guardParam = pat.Bindings[0]
			}
			if err := b.writeGuardedArm(&sb, pad, inner, cond, binds, guardParam, arm.Guard, body); err != nil {
				return "", err
			}

		case *BindingPattern:
			binds := []string{fmt.Sprintf("const %s = %s;", pat.Name, tmp)}
			if err := b.writeGuardedArm(&sb, pad, inner, "", binds, pat.Name, arm.Guard, body); err != nil {
				return "", err
			}

		case *WildcardPattern:
			if err := b.writeGuardedArm(&sb, pad, inner, "", nil, tmp, arm.Guard, body); err != nil {
				return "", err
			}
		}
	}

	fmt.Fprintf(&sb, "%sreturn undefined;\n", pad)
	fmt.Fprintf(&sb, "%s})()", strings.Repeat("  ", b.indent))
	return sb.String(), nil
}

// writeGuardedArm emits one arm. cond may be empty for catch-all arms;
// binds are const lines extracting pattern bindings; guardParam is the name
// the guard closure receives.
func (b *BaseCodegen) writeGuardedArm(sb *strings.Builder, pad, inner, cond string, binds []string, guardParam string, guard Expr, body string) error {
	if cond != "" {
		fmt.Fprintf(sb, "%sif (%s) {\n", pad, cond)
	} else {
		fmt.Fprintf(sb, "%s{\n", pad)
	}
	for _, bind := range binds {
		fmt.Fprintf(sb, "%s%s\n", inner, bind)
	}
	if guard != nil {
		guardText, err := b.exprString(guard)
		if err != nil {
			return err
		}
		param := guardParam
		if strings.HasPrefix(param, "__m") {
			// A guard on an arm that binds nothing still receives the
			// subject value through a throwaway parameter.
			param = "_"
		}
		fmt.Fprintf(sb, "%sif (((%s) => %s)(%s)) { return %s; }\n",
			inner, param, guardText, guardParam, body)
	} else {
		fmt.Fprintf(sb, "%sreturn %s;\n", inner, body)
	}
	fmt.Fprintf(sb, "%s}\n", pad)
	return nil
}

// jsxString lowers a template element to an __el(tag, props, children) call.
// A "for" child expands to a spread over the iterable's map.
func (b *BaseCodegen) jsxString(el *JSXElement) (string, error) {
	props := make([]string, len(el.Attrs))
	for i, attr := range el.Attrs {
		value, err := b.exprString(attr.Value)
		if err != nil {
			return "", err
		}
		props[i] = fmt.Sprintf("%s: %s", attr.Name, value)
	}

	children := make([]string, 0, len(el.Children))
	for _, child := range el.Children {
		if forNode, ok := child.(*JSXFor); ok {
			spread, err := b.jsxForString(forNode)
			if err != nil {
				return "", err
			}
			children = append(children, spread)
			continue
		}
		text, err := b.exprString(child)
		if err != nil {
			return "", err
		}
		children = append(children, text)
	}

	return fmt.Sprintf("__el(%q, { %s }, [%s])",
		el.Tag, strings.Join(props, ", "), strings.Join(children, ", ")), nil
}

func (b *BaseCodegen) jsxForString(f *JSXFor) (string, error) {
	iterable, err := b.exprString(f.Iterable)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(f.Body))
	for i, child := range f.Body {
		if parts[i], err = b.exprString(child); err != nil {
			return "", err
		}
	}
	if len(parts) == 1 {
		return fmt.Sprintf("...(%s).map((%s) => %s)", iterable, f.IterVar, parts[0]), nil
	}
	return fmt.Sprintf("...(%s).map((%s) => [%s]).flat()",
		iterable, f.IterVar, strings.Join(parts, ", ")), nil
}
