package rpmmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/network"
)

const sampleRepomd = `<?xml version="1.0" encoding="UTF-8"?>
<repomd xmlns="http://linux.duke.edu/metadata/repo">
  <data type="primary">
    <location href="repodata/primary.xml.gz"/>
  </data>
  <data type="filelists_db">
    <location href="repodata/filelists.sqlite.bz2"/>
  </data>
  <data type="group">
    <location href="repodata/comps.xml"/>
  </data>
  <data type="primary">
    <location href="repodata/duplicate.xml.gz"/>
  </data>
</repomd>`

func TestParseRepomd(t *testing.T) {
	locs, err := parseRepomd("http://host/repo/repodata/repomd.xml", []byte(sampleRepomd))
	if err != nil {
		t.Fatalf("parseRepomd: %v", err)
	}
	if got := locs[typePrimary]; got != "http://host/repo/repodata/primary.xml.gz" {
		t.Errorf("primary = %q (duplicate must not win)", got)
	}
	if got := locs[typeFilelistsDB]; got != "http://host/repo/repodata/filelists.sqlite.bz2" {
		t.Errorf("filelists_db = %q", got)
	}
}

func TestResolveLocation(t *testing.T) {
	repomdURL := "http://host/repo/repodata/repomd.xml"
	tests := []struct {
		href string
		want string
	}{
		{"repodata/primary.xml.gz", "http://host/repo/repodata/primary.xml.gz"},
		{"media/comps.xml", "http://host/repo/repodata/media/comps.xml"},
	}
	for _, tc := range tests {
		if got := resolveLocation(repomdURL, tc.href); got != tc.want {
			t.Errorf("resolveLocation(%q) = %q, want %q", tc.href, got, tc.want)
		}
	}
}

func TestFirstLocation(t *testing.T) {
	locs := map[string]string{typeFilelistsDB: "db-url"}
	if got := firstLocation(locs, typeFilelists, typeFilelistsDB); got != "db-url" {
		t.Errorf("firstLocation = %q, want db-url", got)
	}
	if got := firstLocation(locs, typeGroup, typeGroupGz); got != "" {
		t.Errorf("absent types should yield empty, got %q", got)
	}
}

func TestLocateRepomdFallsBackToParent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repo/repodata/repomd.xml" {
			w.Write([]byte(sampleRepomd))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := NewLoader(network.NewFetcher(5*time.Second, 0))
	url, data, err := l.locateRepomd(context.Background(), srv.URL+"/repo/x86_64/")
	if err != nil {
		t.Fatalf("locateRepomd: %v", err)
	}
	if url != srv.URL+"/repo/repodata/repomd.xml" {
		t.Errorf("url = %q, want the parent candidate", url)
	}
	if len(data) == 0 {
		t.Error("no data returned")
	}
}

func TestLocateRepomdAllCandidatesFail(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l := NewLoader(network.NewFetcher(5*time.Second, 0))
	if _, _, err := l.locateRepomd(context.Background(), srv.URL+"/repo/"); err == nil {
		t.Fatal("expected error when no candidate exists")
	}
}
