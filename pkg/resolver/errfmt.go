package resolver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// FailureReport carries the structured facts of one resolution failure.
// Rendering is centralised here; neither the compiler nor the resolver core
// constructs or parses this text.
type FailureReport struct {
	Package    string
	Constraint string
	SHA        string
	Cached     []string // versions available in the local package cache
}

// String renders the report as plain human-readable text.
func (r *FailureReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cannot resolve package %q\n", r.Package)
	if r.Constraint != "" {
		fmt.Fprintf(&sb, "  constraint:      %s\n", r.Constraint)
	}
	if r.SHA != "" {
		fmt.Fprintf(&sb, "  pinned revision: %s\n", r.SHA)
	}
	if len(r.Cached) > 0 {
		fmt.Fprintf(&sb, "  cached versions: %s\n", strings.Join(r.Cached, ", "))
	} else {
		sb.WriteString("  cached versions: none\n")
	}
	fmt.Fprintf(&sb, "run 'tovac fetch %s' to refresh the package cache\n", r.Package)
	return sb.String()
}

// Render writes the report to w, with the headline in red when w is a
// terminal.
func (r *FailureReport) Render(w io.Writer) {
	text := r.String()
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		headline, rest, _ := strings.Cut(text, "\n")
		fmt.Fprintf(w, "\x1b[31m%s\x1b[0m\n%s", headline, rest)
		return
	}
	io.WriteString(w, text)
}
