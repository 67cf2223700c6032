package kickstart

import (
	"context"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/network"
)

// Parser reads a KS entry point (URL or file path) and collects the package,
// group and exclude tokens from its %packages blocks, following %include
// recursively. One Parser is good for any number of Parse calls.
type Parser struct {
	fetcher *network.Fetcher
	arch    string
}

// NewParser returns a Parser that evaluates %ifarch directives against arch.
func NewParser(fetcher *network.Fetcher, arch string) *Parser {
	return &Parser{fetcher: fetcher, arch: arch}
}

// Parse parses resource and everything it includes. An unreadable resource
// is a *FatalError: the seed set would be incomplete and the dependency
// closure built from it meaningless.
func (p *Parser) Parse(ctx context.Context, resource string) (*ParseResult, error) {
	visited := make(map[string]struct{})
	return p.parse(ctx, resource, visited)
}

func (p *Parser) parse(ctx context.Context, resource string, visited map[string]struct{}) (*ParseResult, error) {
	res := NewParseResult()

	key := resourceKey(resource)
	if _, seen := visited[key]; seen {
		// Include cycle; each file is counted exactly once.
		return res, nil
	}
	visited[key] = struct{}{}

	lines, base, err := p.readResource(ctx, resource)
	if err != nil {
		return nil, &FatalError{Resource: resource, Err: err}
	}
	res.Sources = append(res.Sources, resource)

	cond := newConditionalState()
	inPackages := false

	for _, raw := range logicalLines(lines) {
		line := strings.TrimSpace(stripInlineComment(raw))

		switch {
		case strings.HasPrefix(line, "%include"):
			if !cond.active() {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			incPath := resolveInclude(fields[1], base)
			child, err := p.parse(ctx, incPath, visited)
			if err != nil {
				return nil, err
			}
			res.Merge(child)

		case strings.HasPrefix(line, "%ifarch"):
			cond.pushIfArch(strings.Fields(line)[1:], p.arch)

		case strings.HasPrefix(line, "%if "):
			rest := strings.TrimSpace(line[len("%if "):])
			// Auto-detected base: 0x.. hex, 0.. octal, else decimal.
			// Anything unparseable counts as false.
			num, err := strconv.ParseInt(rest, 0, 64)
			if err != nil {
				num = 0
			}
			cond.pushIf(num)

		case line == "%else":
			cond.elseBranch()

		case line == "%endif":
			cond.endif()

		case strings.HasPrefix(line, "%packages"):
			// Block markers toggle regardless of conditional state.
			inPackages = true

		case line == "%end":
			inPackages = false

		default:
			if !inPackages || !cond.active() {
				continue
			}
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			for _, tok := range strings.Fields(line) {
				kind, name := classifyToken(tok)
				if name == "" {
					continue
				}
				switch kind {
				case tokenInclude:
					res.Includes[name] = struct{}{}
				case tokenExclude:
					res.Excludes[name] = struct{}{}
				case tokenGroup:
					res.Groups[name] = struct{}{}
				}
			}
		}
	}

	return res, nil
}

// readResource returns the resource content as lines plus the base (URL
// prefix or directory) against which relative %include paths resolve.
func (p *Parser) readResource(ctx context.Context, resource string) ([]string, string, error) {
	data, err := p.fetcher.Fetch(ctx, resource)
	if err != nil {
		return nil, "", err
	}
	var base string
	if network.IsURL(resource) {
		if i := strings.LastIndex(resource, "/"); i >= 0 {
			base = resource[:i+1]
		}
	} else {
		abs, err := filepath.Abs(resource)
		if err != nil {
			abs = resource
		}
		base = filepath.Dir(abs)
	}
	return strings.Split(string(data), "\n"), base, nil
}

func resourceKey(resource string) string {
	if network.IsURL(resource) {
		return resource
	}
	if abs, err := filepath.Abs(resource); err == nil {
		return abs
	}
	return resource
}

// resolveInclude resolves an %include target against the including
// resource's base: URL join for URL-sourced KS, path join otherwise.
func resolveInclude(inc, base string) string {
	if network.IsURL(inc) {
		return inc
	}
	if network.IsURL(base) {
		bu, err := url.Parse(base)
		if err != nil {
			return inc
		}
		ref, err := url.Parse(inc)
		if err != nil {
			return inc
		}
		return bu.ResolveReference(ref).String()
	}
	if base != "" && !filepath.IsAbs(inc) {
		return filepath.Join(base, inc)
	}
	return inc
}

type tokenKind int

const (
	tokenInclude tokenKind = iota
	tokenExclude
	tokenGroup
)

// classifyToken sorts a %packages token: "-name" excludes, "-@g" excludes a
// group (kept with its @ marker), "@g" references a group, a leading "+" is
// an explicit include marker and is stripped.
func classifyToken(tok string) (tokenKind, string) {
	switch {
	case tok == "":
		return tokenInclude, ""
	case strings.HasPrefix(tok, "-"):
		name := strings.TrimSpace(tok[1:])
		if strings.HasPrefix(name, "@") {
			return tokenExclude, "@" + strings.TrimSpace(name[1:])
		}
		return tokenExclude, name
	case strings.HasPrefix(tok, "@"):
		return tokenGroup, strings.TrimSpace(tok[1:])
	case strings.HasPrefix(tok, "+"):
		return tokenInclude, strings.TrimSpace(tok[1:])
	default:
		return tokenInclude, strings.TrimSpace(tok)
	}
}

// logicalLines joins backslash-continued physical lines.
func logicalLines(lines []string) []string {
	var out []string
	var cur strings.Builder
	for _, ln := range lines {
		trimmed := strings.TrimRight(ln, " \t\r")
		if strings.HasSuffix(trimmed, "\\") {
			cur.WriteString(trimmed[:len(trimmed)-1])
			continue
		}
		cur.WriteString(ln)
		out = append(out, cur.String())
		cur.Reset()
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// stripInlineComment drops everything from the first unescaped '#'.
func stripInlineComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || line[i-1] != '\\') {
			return line[:i]
		}
	}
	return line
}
