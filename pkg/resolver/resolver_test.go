package resolver

import (
	"testing"
)

func versions(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.Version.String()
	}
	return out
}

// An annotated tag appears twice in a listing: once as the tag object and
// once dereferenced ("^{}") to the commit it annotates. The dereferenced
// SHA is the one a build must pin.
func TestParseTagListDereferencePreferred(t *testing.T) {
	listing := "sha-tag-object\trefs/tags/v1.0.0\nsha-commit\trefs/tags/v1.0.0^{}\n"
	tags := ParseTagList(listing)
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d: %v", len(tags), tags)
	}
	if got := tags[0].Version.String(); got != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", got)
	}
	if tags[0].SHA != "sha-commit" {
		t.Errorf("expected the dereferenced SHA, got %s", tags[0].SHA)
	}
}

func TestParseTagListDereferenceFirst(t *testing.T) {
	// Same preference regardless of line order.
	listing := "sha-commit\trefs/tags/v2.1.0^{}\nsha-tag-object\trefs/tags/v2.1.0\n"
	tags := ParseTagList(listing)
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if tags[0].SHA != "sha-commit" {
		t.Errorf("expected the dereferenced SHA, got %s", tags[0].SHA)
	}
}

func TestParseTagListSortsAscending(t *testing.T) {
	listing := "c\trefs/tags/v2.0.0\na\trefs/tags/v0.9.0\nb\trefs/tags/v1.2.3\n"
	tags := ParseTagList(listing)
	got := versions(tags)
	want := []string{"0.9.0", "1.2.3", "2.0.0"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParseTagListSkipsNonSemver(t *testing.T) {
	listing := "a\trefs/tags/nightly\n" +
		"b\trefs/heads/main\n" +
		"not-a-tag-line\n" +
		"c\trefs/tags/v1.0.0\n" +
		"\n"
	tags := ParseTagList(listing)
	if len(tags) != 1 || tags[0].SHA != "c" {
		t.Errorf("expected only the semver tag, got %v", tags)
	}
}

func TestParseTagListWithoutVPrefix(t *testing.T) {
	tags := ParseTagList("a\trefs/tags/1.2.3\n")
	if len(tags) != 1 || tags[0].Version.String() != "1.2.3" {
		t.Errorf("expected bare 1.2.3 to parse, got %v", tags)
	}
}

func TestParseTagListPrereleaseOrdering(t *testing.T) {
	listing := "a\trefs/tags/v1.0.0\nb\trefs/tags/v1.0.0-rc.1\n"
	tags := ParseTagList(listing)
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	// Prerelease sorts before the release it precedes.
	if tags[0].SHA != "b" || tags[1].SHA != "a" {
		t.Errorf("expected rc.1 before 1.0.0, got %v", versions(tags))
	}
}

func TestParseTagListEmpty(t *testing.T) {
	if tags := ParseTagList(""); len(tags) != 0 {
		t.Errorf("expected no tags, got %v", tags)
	}
}

func TestLatest(t *testing.T) {
	tags := ParseTagList("a\trefs/tags/v0.1.0\nb\trefs/tags/v3.0.0\nc\trefs/tags/v2.5.1\n")
	best, ok := Latest(tags)
	if !ok {
		t.Fatal("expected a latest tag")
	}
	if best.SHA != "b" {
		t.Errorf("expected v3.0.0 (b), got %s %s", best.SHA, best.Version)
	}
}

func TestLatestEmpty(t *testing.T) {
	if _, ok := Latest(nil); ok {
		t.Error("expected ok=false for an empty tag set")
	}
}
