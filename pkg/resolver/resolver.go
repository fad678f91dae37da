// Package resolver picks package versions from a source-control remote's
// tag listing. The compiler itself is agnostic to how resolution happened;
// it only loads whichever version text this package selects.
package resolver

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Tag is one resolvable release: the commit it points at and its parsed
// semantic version.
type Tag struct {
	SHA     string
	Version *semver.Version
}

// ParseTagList extracts semantic-version tags from a remote tag listing:
// lines of "<sha>\trefs/tags/<tag>". A line suffixed "^{}" is the
// dereferenced form of an annotated tag; its SHA is preferred over the
// lightweight one for the same tag name. Tags that do not parse as semantic
// versions are skipped; a leading "v" is tolerated. The result is sorted
// ascending by semantic-version order.
func ParseTagList(listing string) []Tag {
	type entry struct {
		sha     string
		version *semver.Version
		deref   bool
	}
	entries := make(map[string]*entry)

	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sha, ref, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(ref, "refs/tags/")
		if !ok {
			continue
		}
		deref := strings.HasSuffix(name, "^{}")
		name = strings.TrimSuffix(name, "^{}")

		version, err := semver.NewVersion(strings.TrimPrefix(name, "v"))
		if err != nil {
			continue // not a semver tag
		}

		prev, seen := entries[name]
		if !seen {
			entries[name] = &entry{sha: sha, version: version, deref: deref}
			continue
		}
		// The dereferenced SHA wins over the lightweight one.
		if deref && !prev.deref {
			prev.sha = sha
			prev.deref = true
		}
	}

	tags := make([]Tag, 0, len(entries))
	for _, e := range entries {
		tags = append(tags, Tag{SHA: e.sha, Version: e.version})
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Version.LessThan(tags[j].Version)
	})
	return tags
}

// Latest picks the highest version from a sorted-or-not tag set.
func Latest(tags []Tag) (Tag, bool) {
	if len(tags) == 0 {
		return Tag{}, false
	}
	best := tags[0]
	for _, tag := range tags[1:] {
		if best.Version.LessThan(tag.Version) {
			best = tag
		}
	}
	return best, true
}
