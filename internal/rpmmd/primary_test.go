package rpmmd

import (
	"reflect"
	"testing"
)

const samplePrimary = `<?xml version="1.0" encoding="UTF-8"?>
<metadata xmlns="http://linux.duke.edu/metadata/common" xmlns:rpm="http://linux.duke.edu/metadata/rpm" packages="2">
  <package type="rpm">
    <name>foo</name>
    <arch>x86_64</arch>
    <location href="x86_64/foo-1.0-1.x86_64.rpm"/>
    <format>
      <rpm:provides>
        <rpm:entry name="foo"/>
        <rpm:entry name="libfoo.so.1"/>
        <rpm:entry name="libfoo.so.1"/>
      </rpm:provides>
      <rpm:requires>
        <rpm:entry name="bar"/>
        <rpm:entry name="rpmlib(CompressedFileNames)"/>
        <rpm:entry name="/bin/sh"/>
      </rpm:requires>
    </format>
  </package>
  <package type="rpm">
    <name></name>
    <arch>x86_64</arch>
  </package>
</metadata>`

func TestParsePrimary(t *testing.T) {
	pkgids := map[pkgKey]string{{"foo", "x86_64"}: "abc123"}
	idx, err := parsePrimary([]byte(samplePrimary), "http://host/repo/", pkgids)
	if err != nil {
		t.Fatalf("parsePrimary: %v", err)
	}

	if len(idx.ByName) != 1 {
		t.Fatalf("indexed %d names, want 1 (nameless entry skipped)", len(idx.ByName))
	}
	meta := idx.FindPackage("foo", "x86_64")
	if meta == nil {
		t.Fatal("foo not indexed")
	}
	if meta.Href != "x86_64/foo-1.0-1.x86_64.rpm" {
		t.Errorf("href = %q", meta.Href)
	}
	if meta.RepoBase != "http://host/repo/" {
		t.Errorf("repo base = %q", meta.RepoBase)
	}
	if meta.PkgID != "abc123" {
		t.Errorf("pkgid = %q, want abc123", meta.PkgID)
	}
	if want := []string{"foo", "libfoo.so.1"}; !reflect.DeepEqual(meta.Provides, want) {
		t.Errorf("provides = %v, want %v (sorted, deduplicated)", meta.Provides, want)
	}
	if want := []string{"/bin/sh", "bar"}; !reflect.DeepEqual(meta.Requires, want) {
		t.Errorf("requires = %v, want %v (rpmlib dropped)", meta.Requires, want)
	}
}

func TestParsePrimaryRejectsGarbage(t *testing.T) {
	if _, err := parsePrimary([]byte("not xml"), "http://host/", nil); err == nil {
		t.Fatal("expected error on malformed input")
	}
}

const sampleOther = `<?xml version="1.0" encoding="UTF-8"?>
<otherdata xmlns="http://linux.duke.edu/metadata/other" packages="2">
  <package pkgid="abc123" name="foo" arch="x86_64"/>
  <package pkgid="" name="bar" arch="x86_64"/>
</otherdata>`

func TestParseOther(t *testing.T) {
	ids, err := parseOther([]byte(sampleOther))
	if err != nil {
		t.Fatalf("parseOther: %v", err)
	}
	if got := ids[pkgKey{"foo", "x86_64"}]; got != "abc123" {
		t.Errorf("foo pkgid = %q, want abc123", got)
	}
	if _, ok := ids[pkgKey{"bar", "x86_64"}]; ok {
		t.Error("entry without pkgid should be skipped")
	}
}
