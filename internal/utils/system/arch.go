package system

import (
	"runtime"
	"strings"
)

// DetectHostArch maps the Go runtime architecture to the directory names
// used by RPM repositories.
func DetectHostArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "arm":
		return "armv7l"
	case "riscv64":
		return "riscv64"
	default:
		return runtime.GOARCH
	}
}

// KnownArchDirs lists the architecture directory names that appear in repo
// layouts, in the order candidate matching should try them.
var KnownArchDirs = []string{"aarch64", "x86_64", "armv7l", "riscv64", "noarch"}

// IsKnownArchDir reports whether s is one of the recognized arch directories.
func IsKnownArchDir(s string) bool {
	for _, a := range KnownArchDirs {
		if s == a {
			return true
		}
	}
	return false
}

// NormalizeArch lowercases and canonicalizes a user-supplied arch string.
func NormalizeArch(s string) string {
	a := strings.ToLower(strings.TrimSpace(s))
	switch a {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	}
	return a
}
