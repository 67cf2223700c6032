package resolver

import (
	"sort"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/rpmmd"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/logger"
)

// PackageKey identifies a resolved package.
type PackageKey struct {
	Name string
	Arch string
}

// Result is the outcome of one closure pass: every package the seeds pull
// in, and every capability nothing provides.
type Result struct {
	Visited []PackageKey // sorted by name, then arch
	Missing []string     // sorted, unique
}

// Resolve computes the dependency closure of the seed package names over
// the merged index. It runs single-threaded on purpose: provider selection
// order decides which of several duplicate providers wins, and that choice
// must be reproducible.
//
// Seeding prefers an exact arch match, then the first noarch entry, then
// the first entry found. A capability without any provider is recorded as
// missing and resolution continues; cycles in the requires graph are
// absorbed by the visited set.
func Resolve(idx *rpmmd.RepoIndex, seeds []string, arch string) *Result {
	log := logger.Logger()

	var queue []*rpmmd.PackageMeta
	for _, name := range seeds {
		picked := idx.SelectByArch(name, arch)
		if picked == nil {
			log.Warnf("package not found in repo: %s", name)
			continue
		}
		queue = append(queue, picked)
	}

	visited := make(map[PackageKey]struct{})
	missing := make(map[string]struct{})

	for i := 0; i < len(queue); i++ {
		pkg := queue[i]
		key := PackageKey{pkg.Name, pkg.Arch}
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}

		prefArch := arch
		if prefArch == "" {
			prefArch = pkg.Arch
		}
		if prefArch == "" {
			prefArch = "noarch"
		}

		// Requires are stored sorted; iterating them in order keeps the
		// provider choices deterministic.
		for _, cap := range pkg.Requires {
			prov := idx.PickProvider(cap, prefArch)
			if prov == nil {
				missing[cap] = struct{}{}
				continue
			}
			if _, seen := visited[PackageKey{prov.Name, prov.Arch}]; !seen {
				queue = append(queue, prov)
			}
		}
	}

	res := &Result{}
	for key := range visited {
		res.Visited = append(res.Visited, key)
	}
	sort.Slice(res.Visited, func(i, j int) bool {
		if res.Visited[i].Name != res.Visited[j].Name {
			return res.Visited[i].Name < res.Visited[j].Name
		}
		return res.Visited[i].Arch < res.Visited[j].Arch
	})
	for cap := range missing {
		res.Missing = append(res.Missing, cap)
	}
	sort.Strings(res.Missing)
	return res
}
