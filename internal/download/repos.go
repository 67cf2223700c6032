package download

import "strings"

// Tizen-style repo trees keep base RPMs and debug RPMs in sibling
// directories that differ by one path segment.
const (
	packagesSegment = "/repos/standard/packages/"
	debugSegment    = "/repos/standard/debug/"
)

// DerivePackagesRepo maps a debug repo URL to its sibling packages repo.
// Non-debug URLs come back unchanged. The substitution is invertible with
// DeriveDebugRepo.
func DerivePackagesRepo(debugRepo string) string {
	return strings.Replace(normalizeRepo(debugRepo), debugSegment, packagesSegment, 1)
}

// DeriveDebugRepo maps a packages repo URL to its sibling debug repo.
func DeriveDebugRepo(packagesRepo string) string {
	return strings.Replace(normalizeRepo(packagesRepo), packagesSegment, debugSegment, 1)
}

// SplitRepoRoles sorts user-supplied repo bases into the two roles:
// packages-role repos feed dependency resolution, debug-role repos are only
// consulted for -debuginfo/-debugsource lookups. With derive set, each
// entry's missing sibling is derived; without it, every entry serves both
// roles verbatim.
func SplitRepoRoles(repoBases []string, derive bool) (packages, debug []string) {
	for _, r := range repoBases {
		r = normalizeRepo(r)
		switch {
		case strings.Contains(r, debugSegment):
			if derive {
				packages = append(packages, DerivePackagesRepo(r))
			} else {
				packages = append(packages, r)
			}
			debug = append(debug, r)
		case strings.Contains(r, packagesSegment):
			packages = append(packages, r)
			if derive {
				debug = append(debug, DeriveDebugRepo(r))
			} else {
				debug = append(debug, r)
			}
		default:
			// unrecognized layout: let it serve both roles
			packages = append(packages, r)
			debug = append(debug, r)
		}
	}
	return packages, debug
}

func normalizeRepo(r string) string {
	return strings.TrimRight(r, "/") + "/"
}
