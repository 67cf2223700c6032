package rpmmd

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

type primaryDoc struct {
	XMLName  xml.Name         `xml:"metadata"`
	Packages []primaryPackage `xml:"package"`
}

type primaryPackage struct {
	Name     string `xml:"name"`
	Arch     string `xml:"arch"`
	Location struct {
		Href string `xml:"href,attr"`
	} `xml:"location"`
	Format struct {
		Provides []rpmEntry `xml:"provides>entry"`
		Requires []rpmEntry `xml:"requires>entry"`
	} `xml:"format"`
}

type rpmEntry struct {
	Name string `xml:"name,attr"`
}

// pkgKey identifies a package across metadata files.
type pkgKey struct {
	name string
	arch string
}

// parsePrimary builds a RepoIndex from decoded primary metadata. rpmlib(...)
// pseudo-requirements denote packaging-tool features, not packages, and are
// dropped. pkgids is the optional (name,arch)->pkgid map from other
// metadata; nil is fine.
func parsePrimary(data []byte, repoBase string, pkgids map[pkgKey]string) (*RepoIndex, error) {
	var doc primaryDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing primary metadata: %w", err)
	}

	idx := NewRepoIndex()
	for _, pkg := range doc.Packages {
		name := strings.TrimSpace(pkg.Name)
		if name == "" {
			continue
		}
		meta := &PackageMeta{
			Name:     name,
			Arch:     strings.TrimSpace(pkg.Arch),
			Href:     pkg.Location.Href,
			RepoBase: repoBase,
			Provides: entryNames(pkg.Format.Provides, false),
			Requires: entryNames(pkg.Format.Requires, true),
		}
		if pkgids != nil {
			meta.PkgID = pkgids[pkgKey{meta.Name, meta.Arch}]
		}
		idx.Add(meta)
	}
	return idx, nil
}

// entryNames collects unique, sorted capability names from rpm entries.
func entryNames(entries []rpmEntry, skipRpmlib bool) []string {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		n := strings.TrimSpace(e.Name)
		if n == "" {
			continue
		}
		if skipRpmlib && strings.HasPrefix(n, "rpmlib(") {
			continue
		}
		seen[n] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
