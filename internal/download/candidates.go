package download

import (
	"strings"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/system"
)

// AbsoluteHref joins a repo base with a primary-metadata href without
// doubling the arch directory: when the base already ends in the arch
// segment the href starts with, the href's copy is dropped.
func AbsoluteHref(repoBase, href string) string {
	rb := strings.TrimRight(repoBase, "/")
	hrefClean := strings.TrimLeft(href, "/")

	if suffix := archSuffix(rb); suffix != "" && strings.HasPrefix(hrefClean, suffix+"/") {
		return rb + "/" + hrefClean[len(suffix)+1:]
	}
	return rb + "/" + hrefClean
}

// URLCandidates builds the ordered download URL candidates for one RPM.
// Repo mirrors disagree about the arch directory: some keep an arch
// subdirectory per file, some flatten everything even though the metadata
// href still carries an "<arch>/" prefix. The list starts with the plain
// join and then strips the arch segment from the href, from the repo base,
// or from both, deduplicated in order. Trying these in sequence covers
// every layout observed in the wild.
func URLCandidates(repoBase, href string) []string {
	urls := []string{AbsoluteHref(repoBase, href)}

	rb := strings.TrimRight(repoBase, "/")
	hrefClean := strings.TrimLeft(href, "/")
	hrefArch := archPrefix(hrefClean)
	baseArch := archSuffix(rb)

	if hrefArch != "" {
		stripped := hrefClean[len(hrefArch)+1:]
		urls = append(urls, rb+"/"+stripped)
		if baseArch != "" {
			parent := rb[:len(rb)-len(baseArch)-1]
			urls = append(urls, parent+"/"+stripped)
		}
	} else if baseArch != "" {
		parent := rb[:len(rb)-len(baseArch)-1]
		urls = append(urls, parent+"/"+hrefClean)
	}

	seen := make(map[string]struct{}, len(urls))
	var uniq []string
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		uniq = append(uniq, u)
	}
	return uniq
}

// archSuffix returns the arch directory the base URL ends with, if any.
func archSuffix(base string) string {
	if i := strings.LastIndex(base, "/"); i >= 0 {
		if seg := base[i+1:]; system.IsKnownArchDir(seg) {
			return seg
		}
	}
	return ""
}

// archPrefix returns the arch directory the href starts with, if any.
func archPrefix(href string) string {
	if i := strings.Index(href, "/"); i > 0 {
		if seg := href[:i]; system.IsKnownArchDir(seg) {
			return seg
		}
	}
	return ""
}
