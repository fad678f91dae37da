package compiler

import "testing"

func TestGenPlainSlices(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Exclusive", "b = a[1..5]", "let b = a.slice(1, 5);"},
		{"Inclusive", "b = a[1..=5]", "let b = a.slice(1, (5) + 1);"},
		{"Open start", "b = a[..5]", "let b = a.slice(0, 5);"},
		{"Open end", "b = a[2..]", "let b = a.slice(2);"},
		{"Expression bounds", "b = a[i..i + 3]", "let b = a.slice(i, (i + 3));"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			js := compileJS(t, tt.input)
			assertContains(t, js, tt.expected)
		})
	}
}

// A stepped slice has no native slice equivalent; it lowers to an explicit
// counting loop over the source.
func TestGenSteppedSlice(t *testing.T) {
	js := compileJS(t, "b = a[1..10:2]")
	assertContains(t, js, "for (let __i = 1; __i < 10; __i += 2)")
	assertContains(t, js, "__out.push(__src[__i]);")
	assertContains(t, js, "})(a);")
	assertNotContains(t, js, ".slice(")
}

func TestGenSteppedSliceInclusive(t *testing.T) {
	js := compileJS(t, "b = a[1..=10:3]")
	assertContains(t, js, "for (let __i = 1; __i <= 10; __i += 3)")
}

func TestGenSteppedSliceOpenEnd(t *testing.T) {
	js := compileJS(t, "b = a[0..:4]")
	assertContains(t, js, "for (let __i = 0; __i < __src.length; __i += 4)")
}

func TestGenIndexStaysIndex(t *testing.T) {
	js := compileJS(t, "b = a[2]")
	assertContains(t, js, "let b = a[2];")
	assertNotContains(t, js, ".slice")
}
