package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/download"
)

// PackageList is the report payload: the resolved package names plus the
// group/exclude tokens and the KS sources they came from.
type PackageList struct {
	Packages []string `json:"packages" yaml:"packages"`
	Groups   []string `json:"groups" yaml:"groups"`
	Excludes []string `json:"excludes" yaml:"excludes"`
	Sources  []string `json:"sources" yaml:"sources"`
}

// FormatList renders the package list in the requested format: plain
// (names only, one per line), json, yaml, or markdown. showGroups controls
// whether group tokens appear in the structured formats.
func FormatList(list PackageList, format string, showGroups bool) (string, error) {
	if !showGroups {
		list.Groups = []string{}
	}

	switch strings.ToLower(format) {
	case "", "plain":
		return strings.Join(list.Packages, "\n"), nil

	case "json":
		b, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal json: %w", err)
		}
		return string(b), nil

	case "yaml":
		b, err := yaml.Marshal(list)
		if err != nil {
			return "", fmt.Errorf("marshal yaml: %w", err)
		}
		return string(b), nil

	case "markdown":
		return formatMarkdown(list), nil

	default:
		return "", fmt.Errorf("invalid format %q (expected plain|json|yaml|markdown)", format)
	}
}

func formatMarkdown(list PackageList) string {
	var b strings.Builder
	b.WriteString("# KS Package List\n\n")
	b.WriteString("## Packages (resolved)\n")
	for _, p := range list.Packages {
		fmt.Fprintf(&b, "- `%s`\n", p)
	}
	if len(list.Groups) > 0 {
		b.WriteString("\n## Groups / Patterns (@)\n")
		for _, g := range list.Groups {
			fmt.Fprintf(&b, "- `@%s`\n", g)
		}
	}
	if len(list.Excludes) > 0 {
		b.WriteString("\n## Excludes\n")
		for _, e := range list.Excludes {
			fmt.Fprintf(&b, "- `%s`\n", e)
		}
	}
	quoted := make([]string, len(list.Sources))
	for i, s := range list.Sources {
		quoted[i] = "`" + s + "`"
	}
	b.WriteString("\n**Parsed files:** " + strings.Join(quoted, ", ") + "\n")
	return b.String()
}

// WriteProvenanceCSV writes the (file, url) provenance rows for audit. The
// first row tags the run, so rows from re-runs into the same file stay
// attributable.
func WriteProvenanceCSV(path, runID string, provenance []download.Provenance) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"# run-id", runID}); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	if err := w.Write([]string{"file", "url"}); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	for _, p := range provenance {
		if err := w.Write([]string{p.Dest, p.URL}); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
