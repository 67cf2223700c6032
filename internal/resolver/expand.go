package resolver

import (
	"sort"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/logger"
)

// ExpandGroups replaces every token that names a known comps group with
// that group's package list; other tokens pass through as literal package
// names. Expansion is one level deep. The returned list is deduplicated
// and sorted.
func ExpandGroups(names []string, groups map[string][]string) []string {
	log := logger.Logger()

	seen := make(map[string]struct{})
	var expandedTokens []string
	for _, name := range names {
		if pkgs, ok := groups[name]; ok {
			expandedTokens = append(expandedTokens, name)
			for _, p := range pkgs {
				seen[p] = struct{}{}
			}
			continue
		}
		seen[name] = struct{}{}
	}
	if len(expandedTokens) > 0 {
		log.Infof("expanded %d preset/group token(s) via comps: %v", len(expandedTokens), expandedTokens)
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
