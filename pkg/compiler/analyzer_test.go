package compiler

import (
	"strings"
	"testing"
)

// analyzeSrc runs the front half of the pipeline with the given options.
func analyzeSrc(t *testing.T, src string, opts Options) (*Analysis, error) {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	prog, err := Parse(tokens, src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return Analyze(prog, "test.tova", opts)
}

func mustAnalyze(t *testing.T, src string) *Analysis {
	t.Helper()
	analysis, err := analyzeSrc(t, src, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return analysis
}

func assertWarning(t *testing.T, analysis *Analysis, substr string) {
	t.Helper()
	for _, w := range analysis.Warnings {
		if strings.Contains(w.Message, substr) {
			return
		}
	}
	t.Errorf("expected a warning containing %q, got %v", substr, analysis.Warnings)
}

func assertNoWarnings(t *testing.T, analysis *Analysis) {
	t.Helper()
	if len(analysis.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", analysis.Warnings)
	}
}

func TestAnalyzeUndefinedCall(t *testing.T) {
	analysis := mustAnalyze(t, `frobnicate(1)`)
	assertWarning(t, analysis, "call to undefined function 'frobnicate'")
}

func TestAnalyzeExternIsDefined(t *testing.T) {
	analysis := mustAnalyze(t, `extern fn log(msg)
log("hello")`)
	assertNoWarnings(t, analysis)
}

func TestAnalyzeArityWarning(t *testing.T) {
	analysis := mustAnalyze(t, `fn add(a, b) { return a + b }
add(1)`)
	assertWarning(t, analysis, "add expects 2 arguments, got 1")
}

func TestAnalyzeConstructorArity(t *testing.T) {
	analysis := mustAnalyze(t, `type Shape = Circle(radius) | Point
s = Circle(1, 2)`)
	assertWarning(t, analysis, "Circle expects 1 arguments, got 2")
}

func TestAnalyzeBuiltinConstructorCalls(t *testing.T) {
	analysis := mustAnalyze(t, `r = Ok(1)
o = Some("x")
n = None`)
	assertNoWarnings(t, analysis)

	analysis = mustAnalyze(t, `o = Some(1, 2)`)
	assertWarning(t, analysis, "Some expects 1 arguments, got 2")
}

func TestAnalyzeArityDisabled(t *testing.T) {
	opts := Options{Exhaustiveness: true, Arity: false, UnusedBindings: true}
	analysis, err := analyzeSrc(t, `fn add(a, b) { return a + b }
add(1)`, opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	assertNoWarnings(t, analysis)
}

// An argument whose inferred type contradicts a declared parameter type is
// the one fatal analysis outcome.
func TestAnalyzeDeclaredTypeMismatchIsFatal(t *testing.T) {
	_, err := analyzeSrc(t, `extern fn fetch(url: String) -> Response
fetch(42)`, DefaultOptions())
	if err == nil {
		t.Fatal("expected a fatal analysis error")
	}
	analysisErr, ok := err.(*AnalysisError)
	if !ok {
		t.Fatalf("expected *AnalysisError, got %T (%v)", err, err)
	}
	if analysisErr.Function != "fetch" || analysisErr.Param != "url" {
		t.Errorf("unexpected error target %s/%s", analysisErr.Function, analysisErr.Param)
	}
	if analysisErr.Expected != "String" || analysisErr.Actual != "Int" {
		t.Errorf("expected String vs Int, got %s vs %s", analysisErr.Expected, analysisErr.Actual)
	}
	if analysisErr.Source != "test.tova" {
		t.Errorf("expected the source unit on the error, got %q", analysisErr.Source)
	}
	if !strings.Contains(err.Error(), `test.tova:2: call to fetch: parameter "url" expects String, got Int`) {
		t.Errorf("unexpected message %q", err.Error())
	}
}

// Diagnostics name the source unit they were produced for.
func TestAnalyzeDiagnosticsCarrySource(t *testing.T) {
	analysis := mustAnalyze(t, `frobnicate(1)`)
	if len(analysis.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", analysis.Warnings)
	}
	w := analysis.Warnings[0]
	if w.Source != "test.tova" {
		t.Errorf("expected source test.tova, got %q", w.Source)
	}
	if !strings.Contains(w.String(), "warning: test.tova:1:") {
		t.Errorf("expected the source in the rendered form, got %q", w.String())
	}
}

func TestAnalyzeDeclaredTypeMatchPasses(t *testing.T) {
	analysis := mustAnalyze(t, `extern fn fetch(url: String) -> Response
fetch("https://example.com")`)
	assertNoWarnings(t, analysis)
}

// A value of unknown type opts out of declared-type checking rather than
// producing a false positive.
func TestAnalyzeUnknownArgTypeSkipsCheck(t *testing.T) {
	analysis := mustAnalyze(t, `extern fn fetch(url: String) -> Response
extern fn pick()
fetch(pick())`)
	assertNoWarnings(t, analysis)
}

func TestAnalyzeUnusedLambdaParamHint(t *testing.T) {
	analysis := mustAnalyze(t, `f = fn(x) 1`)
	if len(analysis.Warnings) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", analysis.Warnings)
	}
	hint := analysis.Warnings[0]
	if hint.Severity != SeverityHint {
		t.Errorf("expected hint severity, got %v", hint.Severity)
	}
	if !strings.Contains(hint.Message, "unused parameter 'x'") {
		t.Errorf("unexpected message %q", hint.Message)
	}
}

func TestAnalyzeUsedLambdaParamNoHint(t *testing.T) {
	analysis := mustAnalyze(t, `f = fn(x) x + 1`)
	assertNoWarnings(t, analysis)
}

func TestAnalyzeAssignmentInference(t *testing.T) {
	analysis := mustAnalyze(t, `extern fn fetch(url: String) -> Response
addr = "https://example.com"
fetch(addr)`)
	assertNoWarnings(t, analysis)
}

func TestAnalyzeAssignmentInferenceMismatch(t *testing.T) {
	_, err := analyzeSrc(t, `extern fn fetch(url: String) -> Response
count = 3
fetch(count)`, DefaultOptions())
	if err == nil {
		t.Fatal("expected a fatal analysis error through an inferred binding")
	}
}

func TestAnalyzeDeclaredParamTypesInBody(t *testing.T) {
	// A declared function parameter carries its annotation into the body.
	_, err := analyzeSrc(t, `extern fn fetch(url: String) -> Response
fn load(n: Int) {
	fetch(n)
}`, DefaultOptions())
	if err == nil {
		t.Fatal("expected a fatal analysis error from an annotated parameter")
	}
}

func TestAnalyzeTypeRegistryPopulated(t *testing.T) {
	analysis := mustAnalyze(t, `type Shape = Circle(radius) | Square(side) | Point`)
	variants, ok := analysis.Types.Variants("Shape")
	if !ok {
		t.Fatal("expected Shape in the registry")
	}
	if len(variants) != 3 || variants[0].Name != "Circle" || variants[0].Arity != 1 {
		t.Errorf("unexpected variants %v", variants)
	}
	if owner, ok := analysis.Types.OwnerOf("Square"); !ok || owner != "Shape" {
		t.Errorf("expected Square owned by Shape, got %q", owner)
	}
}

func TestAnalyzeBuiltinTypesPreRegistered(t *testing.T) {
	analysis := mustAnalyze(t, ``)
	for _, want := range []struct {
		typeName string
		variants []string
	}{
		{"Option", []string{"Some", "None"}},
		{"Result", []string{"Ok", "Err"}},
	} {
		variants, ok := analysis.Types.Variants(want.typeName)
		if !ok {
			t.Fatalf("expected built-in type %s", want.typeName)
		}
		for i, name := range want.variants {
			if variants[i].Name != name {
				t.Errorf("%s: expected variant %s at %d, got %s", want.typeName, name, i, variants[i].Name)
			}
		}
	}
}
