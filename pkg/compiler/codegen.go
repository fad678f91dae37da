package compiler

// CodeGen walks a Program and emits target source text per compilation
// section. It runs identically on raw or analyzed ASTs: analysis attaches
// diagnostics, never shape.
type CodeGen struct {
	BaseCodegen
}

func NewCodeGen() *CodeGen {
	return &CodeGen{BaseCodegen: *NewBaseCodegen()}
}

// SectionShared is the section shared by every deployment target.
const SectionShared = "shared"

// prelude is emitted once at the top of the shared section: the template
// element helper and the constructors for the built-in Option and Result
// types, which exist without a declaration.
func (cg *CodeGen) prelude() {
	cg.comment("Generated by tovac. Do not edit.")
	cg.line("const __el = (tag, props, children) => ({ tag, props, children });")
	cg.line("function Some(value) { return { tag: \"Some\", values: [value] }; }")
	cg.line("const None = { tag: \"None\", values: [] };")
	cg.line("function Ok(value) { return { tag: \"Ok\", values: [value] }; }")
	cg.line("function Err(error) { return { tag: \"Err\", values: [error] }; }")
	cg.line("")
	// Prelude names are bound; a later top-level use must not redeclare them.
	for _, name := range []string{"__el", "Some", "None", "Ok", "Err"} {
		cg.declare(name)
	}
}

// Generate lowers the whole program and returns the generated text keyed by
// section name.
func (cg *CodeGen) Generate(prog *Program) (map[string]string, error) {
	cg.prelude()
	for _, stmt := range prog.Body {
		if err := cg.emitStmt(stmt); err != nil {
			return nil, err
		}
	}
	return map[string]string{SectionShared: cg.out.String()}, nil
}

// Generate is the package-level convenience form with a fresh generator.
func Generate(prog *Program) (map[string]string, error) {
	return NewCodeGen().Generate(prog)
}
