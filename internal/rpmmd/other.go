package rpmmd

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type otherDoc struct {
	XMLName  xml.Name       `xml:"otherdata"`
	Packages []otherPackage `xml:"package"`
}

type otherPackage struct {
	PkgID string `xml:"pkgid,attr"`
	Name  string `xml:"name,attr"`
	Arch  string `xml:"arch,attr"`
}

// parseOther extracts the (name,arch)->pkgid map from other metadata. The
// pkgid attribute is the most portable identifier; packages without one are
// simply skipped.
func parseOther(data []byte) (map[pkgKey]string, error) {
	var doc otherDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing other metadata: %w", err)
	}
	out := make(map[pkgKey]string, len(doc.Packages))
	for _, pkg := range doc.Packages {
		name := strings.TrimSpace(pkg.Name)
		arch := strings.TrimSpace(pkg.Arch)
		id := strings.TrimSpace(pkg.PkgID)
		if name == "" || arch == "" || id == "" {
			continue
		}
		out[pkgKey{name, arch}] = id
	}
	return out, nil
}
