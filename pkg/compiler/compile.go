package compiler

// Result carries everything one pipeline run produces: the generated text
// per section and the analyzer's advisory diagnostics.
type Result struct {
	Sections map[string]string
	Warnings []Diagnostic
}

// Compile runs the full pipeline over one source unit:
// Lex -> Parse -> Analyze -> Generate. Every stage constructs its state
// fresh, so concurrent compilations of independent units never share
// anything. Warnings accumulate; any fatal stage error aborts with no
// partial output.
func Compile(src string, sourceName string, opts Options) (*Result, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}

	prog, err := Parse(tokens, src)
	if err != nil {
		return nil, err
	}

	analysis, err := Analyze(prog, sourceName, opts)
	if err != nil {
		return nil, err
	}

	sections, err := Generate(prog)
	if err != nil {
		return nil, err
	}

	return &Result{Sections: sections, Warnings: analysis.Warnings}, nil
}
