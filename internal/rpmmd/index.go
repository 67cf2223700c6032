package rpmmd

// PackageMeta holds everything the resolver and downloader need about one
// <package> entry from primary metadata. A package can only ever be
// downloaded relative to the repo it was parsed from, so RepoBase travels
// with it. Instances are immutable once the loader returns them.
type PackageMeta struct {
	Name     string
	Arch     string   // e.g. "aarch64", "noarch"
	Href     string   // repo-relative RPM path from <location href=...>
	RepoBase string   // base URL of the owning repo
	Provides []string // capabilities, sorted; file paths get registered separately
	Requires []string // capabilities, sorted; rpmlib(...) entries already dropped
	PkgID    string   // optional checksum id from other metadata, "" when absent
}

// RepoIndex is the in-memory view of one repo's primary+filelists metadata,
// or of several repos merged together. Duplicate providers across mirrored
// repos are expected; provider-selection heuristics deal with them, the
// index never dedups.
type RepoIndex struct {
	ByName    map[string][]*PackageMeta
	ByProvide map[string][]*PackageMeta
	ByFile    map[string][]*PackageMeta // subset mirrored into ByProvide
}

// NewRepoIndex returns an empty index.
func NewRepoIndex() *RepoIndex {
	return &RepoIndex{
		ByName:    make(map[string][]*PackageMeta),
		ByProvide: make(map[string][]*PackageMeta),
		ByFile:    make(map[string][]*PackageMeta),
	}
}

// Add registers a package under its name and all its provides.
func (ix *RepoIndex) Add(p *PackageMeta) {
	ix.ByName[p.Name] = append(ix.ByName[p.Name], p)
	for _, cap := range p.Provides {
		ix.ByProvide[cap] = append(ix.ByProvide[cap], p)
	}
}

// AddFileProvide registers an absolute file path from filelists metadata as
// a synthetic capability of p, so requirements like "/usr/bin/awk" resolve.
func (ix *RepoIndex) AddFileProvide(path string, p *PackageMeta) {
	ix.ByFile[path] = append(ix.ByFile[path], p)
	ix.ByProvide[path] = append(ix.ByProvide[path], p)
}

// PickProvider chooses one provider for cap. Preference order: exact arch
// match with the package named like the capability itself, then any exact
// arch match, then the same two steps over noarch candidates, then the first
// candidate. Deterministic for a given index and arch.
func (ix *RepoIndex) PickProvider(cap, arch string) *PackageMeta {
	cands := ix.ByProvide[cap]
	if len(cands) == 0 {
		return nil
	}
	if arch != "" {
		if p := pickPreferred(cands, cap, arch); p != nil {
			return p
		}
	}
	if p := pickPreferred(cands, cap, "noarch"); p != nil {
		return p
	}
	return cands[0]
}

// pickPreferred filters cands to the given arch, preferring the self-named
// package (the common RPM convention of a package providing a capability
// equal to its own name).
func pickPreferred(cands []*PackageMeta, cap, arch string) *PackageMeta {
	var first *PackageMeta
	for _, c := range cands {
		if c.Arch != arch {
			continue
		}
		if c.Name == cap {
			return c
		}
		if first == nil {
			first = c
		}
	}
	return first
}

// FindPackage returns the entry for (name, arch), falling back to the first
// entry with that name on an arch miss. Nil when the name is unknown.
func (ix *RepoIndex) FindPackage(name, arch string) *PackageMeta {
	lst := ix.ByName[name]
	for _, p := range lst {
		if p.Arch == arch {
			return p
		}
	}
	if len(lst) > 0 {
		return lst[0]
	}
	return nil
}

// SelectByArch applies the seeding preference: exact arch, else first
// noarch, else first entry. Nil when the name is unknown.
func (ix *RepoIndex) SelectByArch(name, arch string) *PackageMeta {
	lst := ix.ByName[name]
	if arch != "" {
		for _, p := range lst {
			if p.Arch == arch {
				return p
			}
		}
	}
	for _, p := range lst {
		if p.Arch == "noarch" {
			return p
		}
	}
	if len(lst) > 0 {
		return lst[0]
	}
	return nil
}

// MergeFrom concatenates other's entries into ix. Pure concatenation; no
// dedup.
func (ix *RepoIndex) MergeFrom(other *RepoIndex) {
	for name, lst := range other.ByName {
		ix.ByName[name] = append(ix.ByName[name], lst...)
	}
	for cap, lst := range other.ByProvide {
		ix.ByProvide[cap] = append(ix.ByProvide[cap], lst...)
	}
	for path, lst := range other.ByFile {
		ix.ByFile[path] = append(ix.ByFile[path], lst...)
	}
}
