package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"sigs.k8s.io/yaml"
)

// Config holds every tunable of a run. A config file (JSON or YAML) fills
// it in; CLI flags override individual fields afterwards. All fields are
// optional in the file.
type Config struct {
	KS              string   `json:"ks"`               // KS entry point (URL or path)
	Repos           []string `json:"repos"`            // repo base URLs (.../packages or .../debug)
	Arch            string   `json:"arch"`             // target arch; host arch when empty
	OutDir          string   `json:"out"`              // download directory
	Format          string   `json:"format"`           // plain | json | yaml | markdown
	ShowGroups      bool     `json:"show_groups"`      // include @groups in structured output
	Mode            string   `json:"mode"`             // base | debug | both
	DerivePairs     bool     `json:"derive_pairs"`     // derive sibling packages/debug repos
	WithDebugsource bool     `json:"with_debugsource"` // fetch -debugsource next to -debuginfo
	IncludeNoarch   bool     `json:"include_noarch"`   // download noarch RPMs too
	Workers         int      `json:"parallel"`         // worker pool size
	TimeoutSeconds  float64  `json:"timeout"`          // per-request HTTP timeout
	Retries         int      `json:"retries"`          // retry count per URL
	CSVOut          string   `json:"csv_out"`          // provenance CSV path, "" disables
}

// Default returns the built-in defaults flags and config files layer over.
func Default() Config {
	return Config{
		OutDir:         "./rpms",
		Format:         "plain",
		Mode:           defaultMode,
		DerivePairs:    true,
		Workers:        DefaultWorkers(),
		TimeoutSeconds: 30,
		Retries:        2,
	}
}

const defaultMode = "debug"

// DefaultWorkers sizes the worker pool from the host: twice the CPU count,
// clamped to [4, 16].
func DefaultWorkers() int {
	n := runtime.NumCPU() * 2
	if n < 4 {
		n = 4
	}
	if n > 16 {
		n = 16
	}
	return n
}

// Load reads a JSON or YAML config file over the defaults and validates it
// against the embedded schema. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	data := raw
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.YAMLToJSON(raw)
		if err != nil {
			return cfg, fmt.Errorf("converting %s to JSON: %w", path, err)
		}
	}

	if err := ValidateConfigJSON(data); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// NormalizedRepos returns the repo list with trailing slashes normalized.
func (c *Config) NormalizedRepos() []string {
	out := make([]string, 0, len(c.Repos))
	for _, r := range c.Repos {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, strings.TrimRight(r, "/")+"/")
	}
	return out
}
