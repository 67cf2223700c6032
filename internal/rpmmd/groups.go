package rpmmd

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// comps group metadata. Schemas vary between distros; we only rely on the
// stable core: <group><id> plus <packagereq type="mandatory|default">.
type compsDoc struct {
	XMLName xml.Name     `xml:"comps"`
	Groups  []compsGroup `xml:"group"`
}

type compsGroup struct {
	ID          string            `xml:"id"`
	PackageReqs []compsPackageReq `xml:"packagelist>packagereq"`
}

type compsPackageReq struct {
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

// parseGroups returns group id -> mandatory/default package names.
func parseGroups(data []byte) (map[string][]string, error) {
	var doc compsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing group metadata: %w", err)
	}
	out := make(map[string][]string)
	for _, g := range doc.Groups {
		gid := strings.TrimSpace(g.ID)
		if gid == "" {
			continue
		}
		var pkgs []string
		for _, req := range g.PackageReqs {
			t := strings.ToLower(strings.TrimSpace(req.Type))
			if t != "mandatory" && t != "default" {
				continue
			}
			name := strings.TrimSpace(req.Name)
			if name != "" {
				pkgs = append(pkgs, name)
			}
		}
		if len(pkgs) > 0 {
			out[gid] = pkgs
		}
	}
	return out, nil
}
