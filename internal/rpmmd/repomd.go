package rpmmd

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// XML namespace URIs from the RPM-MD (yum/createrepo) metadata schema. These
// are identifiers embedded in the documents, not network endpoints; element
// names in the metadata are bound to exactly these strings.
const (
	nsRepo     = "http://linux.duke.edu/metadata/repo"
	nsCommon   = "http://linux.duke.edu/metadata/common"
	nsRPM      = "http://linux.duke.edu/metadata/rpm"
	nsFilelist = "http://linux.duke.edu/metadata/filelists"
)

// Metadata data types listed in repomd.xml that this loader consumes.
const (
	typePrimary     = "primary"
	typeFilelists   = "filelists"
	typeFilelistsDB = "filelists_db"
	typeOther       = "other"
	typeOtherDB     = "other_db"
	typeGroup       = "group"
	typeGroupGz     = "group_gz"
)

type repomdDoc struct {
	XMLName xml.Name     `xml:"repomd"`
	Data    []repomdData `xml:"data"`
}

type repomdData struct {
	Type     string `xml:"type,attr"`
	Location struct {
		Href string `xml:"href,attr"`
	} `xml:"location"`
}

// locateRepomd probes the two candidate repomd.xml locations for a repo
// base: directly under base, then one level above it. Callers may hand us
// either the directory containing repodata/ or its parent (the typical
// .../packages vs .../packages/<arch> split).
func (l *Loader) locateRepomd(ctx context.Context, repoBase string) (string, []byte, error) {
	base := strings.TrimRight(repoBase, "/")
	candidates := []string{
		base + "/repodata/repomd.xml",
		parentDir(base) + "/repodata/repomd.xml",
	}
	var lastErr error
	for _, cand := range candidates {
		data, err := l.fetcher.Fetch(ctx, cand)
		if err == nil {
			return cand, data, nil
		}
		lastErr = err
	}
	return "", nil, fmt.Errorf("no repomd.xml under %s: %w", repoBase, lastErr)
}

// parseRepomd maps metadata type -> absolute location URL.
func parseRepomd(repomdURL string, data []byte) (map[string]string, error) {
	var doc repomdDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing repomd.xml: %w", err)
	}
	locations := make(map[string]string)
	for _, d := range doc.Data {
		if d.Location.Href == "" {
			continue
		}
		if _, dup := locations[d.Type]; dup {
			continue
		}
		locations[d.Type] = resolveLocation(repomdURL, d.Location.Href)
	}
	return locations, nil
}

// resolveLocation turns a repomd <location href> into an absolute URL.
// An href beginning with "repodata/" is relative to the repo root (one
// directory above repodata/); anything else is relative to the directory
// containing repomd.xml. Both rules are needed, or locations resolve with a
// doubled or missing repodata segment.
func resolveLocation(repomdURL, href string) string {
	repodir := parentDir(repomdURL)
	base := repodir
	if strings.HasPrefix(href, "repodata/") {
		base = parentDir(repodir)
	}
	return base + "/" + strings.TrimLeft(href, "/")
}

// firstLocation returns the location for the first present type.
func firstLocation(locations map[string]string, types ...string) string {
	for _, t := range types {
		if loc, ok := locations[t]; ok {
			return loc
		}
	}
	return ""
}

func parentDir(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[:i]
	}
	return s
}
