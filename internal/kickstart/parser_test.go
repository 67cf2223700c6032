package kickstart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/network"
)

func newTestParser(arch string) *Parser {
	return NewParser(network.NewFetcher(5*time.Second, 0), arch)
}

func writeKS(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseCollectsPackageTokens(t *testing.T) {
	ks := writeKS(t, t.TempDir(), "main.ks", `
lang en_US.UTF-8

%packages
foo
+bar
-baz
@core
-@games
--nobase
%end
`)

	res, err := newTestParser("x86_64").Parse(context.Background(), ks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := res.PackageNames(); !reflect.DeepEqual(got, []string{"bar", "foo"}) {
		t.Errorf("packages = %v, want [bar foo]", got)
	}
	if got := res.GroupNames(); !reflect.DeepEqual(got, []string{"core"}) {
		t.Errorf("groups = %v, want [core]", got)
	}
	if got := res.ExcludeNames(); !reflect.DeepEqual(got, []string{"@games", "baz"}) {
		t.Errorf("excludes = %v, want [@games baz]", got)
	}
}

func TestParseExcludeWinsOverInclude(t *testing.T) {
	ks := writeKS(t, t.TempDir(), "main.ks", `
%packages
foo
-foo
bar
%end
`)
	res, err := newTestParser("x86_64").Parse(context.Background(), ks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := res.PackageNames(); !reflect.DeepEqual(got, []string{"bar"}) {
		t.Errorf("packages = %v, want [bar]", got)
	}
}

func TestParseIfarch(t *testing.T) {
	content := `
%packages
common
%ifarch x86_64
intel-pkg
%else
other-pkg
%endif
%end
`
	tests := []struct {
		arch string
		want []string
	}{
		{"x86_64", []string{"common", "intel-pkg"}},
		{"aarch64", []string{"common", "other-pkg"}},
	}
	for _, tc := range tests {
		ks := writeKS(t, t.TempDir(), "main.ks", content)
		res, err := newTestParser(tc.arch).Parse(context.Background(), ks)
		if err != nil {
			t.Fatalf("parse(%s): %v", tc.arch, err)
		}
		if got := res.PackageNames(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("arch %s: packages = %v, want %v", tc.arch, got, tc.want)
		}
	}
}

func TestParseNumericIf(t *testing.T) {
	ks := writeKS(t, t.TempDir(), "main.ks", `
%packages
%if 1
enabled
%endif
%if 0
disabled
%endif
%if garbage
alsodisabled
%endif
%end
`)
	res, err := newTestParser("x86_64").Parse(context.Background(), ks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := res.PackageNames(); !reflect.DeepEqual(got, []string{"enabled"}) {
		t.Errorf("packages = %v, want [enabled]", got)
	}
}

func TestParseFollowsIncludes(t *testing.T) {
	dir := t.TempDir()
	writeKS(t, dir, "extra.ks", `
%packages
extra-pkg
%end
`)
	main := writeKS(t, dir, "main.ks", `
%include extra.ks
%packages
main-pkg
%end
`)

	res, err := newTestParser("x86_64").Parse(context.Background(), main)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := res.PackageNames(); !reflect.DeepEqual(got, []string{"extra-pkg", "main-pkg"}) {
		t.Errorf("packages = %v, want [extra-pkg main-pkg]", got)
	}
	if len(res.Sources) != 2 {
		t.Errorf("sources = %v, want 2 entries", res.Sources)
	}
}

func TestParseIncludeCycleTerminates(t *testing.T) {
	dir := t.TempDir()
	writeKS(t, dir, "a.ks", "%include b.ks\n%packages\npkg-a\n%end\n")
	writeKS(t, dir, "b.ks", "%include a.ks\n%packages\npkg-b\n%end\n")

	res, err := newTestParser("x86_64").Parse(context.Background(), filepath.Join(dir, "a.ks"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := res.PackageNames(); !reflect.DeepEqual(got, []string{"pkg-a", "pkg-b"}) {
		t.Errorf("packages = %v, want [pkg-a pkg-b]", got)
	}
	if len(res.Sources) != 2 {
		t.Errorf("each file should be parsed once, sources = %v", res.Sources)
	}
}

func TestParseInactiveIncludeSkipped(t *testing.T) {
	dir := t.TempDir()
	writeKS(t, dir, "skipped.ks", "%packages\nshould-not-appear\n%end\n")
	main := writeKS(t, dir, "main.ks", `
%ifarch aarch64
%include skipped.ks
%endif
%packages
kept
%end
`)

	res, err := newTestParser("x86_64").Parse(context.Background(), main)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := res.PackageNames(); !reflect.DeepEqual(got, []string{"kept"}) {
		t.Errorf("packages = %v, want [kept]", got)
	}
}

func TestParseMissingResourceIsFatal(t *testing.T) {
	_, err := newTestParser("x86_64").Parse(context.Background(), "/nonexistent/path.ks")
	if err == nil {
		t.Fatal("expected error for missing resource")
	}
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected *FatalError, got %T: %v", err, err)
	}
}

func TestParseMissingIncludeIsFatal(t *testing.T) {
	dir := t.TempDir()
	main := writeKS(t, dir, "main.ks", "%include missing.ks\n")
	_, err := newTestParser("x86_64").Parse(context.Background(), main)
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected *FatalError for missing include, got %v", err)
	}
}

func TestParseIdempotent(t *testing.T) {
	ks := writeKS(t, t.TempDir(), "main.ks", "%packages\nfoo\nbar\n%end\n")
	p := newTestParser("x86_64")

	first, err := p.Parse(context.Background(), ks)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, err := p.Parse(context.Background(), ks)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !reflect.DeepEqual(first.PackageNames(), second.PackageNames()) {
		t.Errorf("parses differ: %v vs %v", first.PackageNames(), second.PackageNames())
	}
}

func TestLogicalLines(t *testing.T) {
	got := logicalLines([]string{"foo \\", "bar", "plain"})
	if len(got) != 2 {
		t.Fatalf("logicalLines = %v, want 2 lines", got)
	}
	if got[1] != "plain" {
		t.Errorf("second line = %q, want plain", got[1])
	}
}

func TestStripInlineComment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"foo # comment", "foo "},
		{"# all comment", ""},
		{"no comment", "no comment"},
		{`escaped \# hash`, `escaped \# hash`},
	}
	for _, tc := range tests {
		if got := stripInlineComment(tc.in); got != tc.want {
			t.Errorf("stripInlineComment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassifyToken(t *testing.T) {
	tests := []struct {
		tok  string
		kind tokenKind
		name string
	}{
		{"foo", tokenInclude, "foo"},
		{"+foo", tokenInclude, "foo"},
		{"-foo", tokenExclude, "foo"},
		{"@grp", tokenGroup, "grp"},
		{"-@grp", tokenExclude, "@grp"},
		{"", tokenInclude, ""},
	}
	for _, tc := range tests {
		kind, name := classifyToken(tc.tok)
		if kind != tc.kind || name != tc.name {
			t.Errorf("classifyToken(%q) = (%v, %q), want (%v, %q)", tc.tok, kind, name, tc.kind, tc.name)
		}
	}
}
