package kickstart

import (
	"fmt"
	"sort"
	"strings"
)

// ParseResult accumulates the package tokens collected from a KS script and
// everything it transitively includes. Includes/Excludes/Groups are sets;
// Sources preserves the order in which resources were actually parsed.
type ParseResult struct {
	Includes map[string]struct{}
	Excludes map[string]struct{}
	Groups   map[string]struct{}
	Sources  []string
}

// NewParseResult returns an empty result.
func NewParseResult() *ParseResult {
	return &ParseResult{
		Includes: make(map[string]struct{}),
		Excludes: make(map[string]struct{}),
		Groups:   make(map[string]struct{}),
	}
}

// Merge folds a child result (from an %include) into r.
func (r *ParseResult) Merge(other *ParseResult) {
	for k := range other.Includes {
		r.Includes[k] = struct{}{}
	}
	for k := range other.Excludes {
		r.Excludes[k] = struct{}{}
	}
	for k := range other.Groups {
		r.Groups[k] = struct{}{}
	}
	r.Sources = append(r.Sources, other.Sources...)
}

// PackageNames returns the sorted include list with excluded names and group
// pseudo-tokens filtered out.
func (r *ParseResult) PackageNames() []string {
	var out []string
	for name := range r.Includes {
		if strings.HasPrefix(name, "@") {
			continue
		}
		if _, excluded := r.Excludes[name]; excluded {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// GroupNames returns the sorted group tokens.
func (r *ParseResult) GroupNames() []string {
	return sortedKeys(r.Groups)
}

// ExcludeNames returns the sorted exclude tokens.
func (r *ParseResult) ExcludeNames() []string {
	return sortedKeys(r.Excludes)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FatalError marks a KS resource that could not be read at all. The closure
// cannot be trusted with a partial seed set, so callers abort on it.
type FatalError struct {
	Resource string
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("failed to read KS %s: %v", e.Resource, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
