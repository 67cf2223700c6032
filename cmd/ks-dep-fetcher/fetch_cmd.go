package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/config"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/download"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/kickstart"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/report"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/resolver"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/rpmmd"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/logger"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/network"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/system"
)

// modeFlag makes download.Mode usable as a flag with validation at parse
// time instead of deep in the run.
type modeFlag struct {
	mode download.Mode
}

var _ pflag.Value = (*modeFlag)(nil)

func (m *modeFlag) String() string { return string(m.mode) }

func (m *modeFlag) Set(s string) error {
	mode, err := download.ParseMode(s)
	if err != nil {
		return err
	}
	m.mode = mode
	return nil
}

func (m *modeFlag) Type() string { return "mode" }

// createFetchCommand creates the fetch subcommand: the full parse, resolve
// and download pipeline.
func createFetchCommand() *cobra.Command {
	var (
		ksPath          string
		repos           []string
		arch            string
		outDir          string
		mode            = modeFlag{mode: download.ModeDebug}
		derivePairs     bool
		withDebugsource bool
		includeNoarch   bool
		workers         int
		timeout         float64
		retries         int
		csvOut          string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Resolve the KS dependency closure and download the RPMs",
		Long: `Fetch parses the KS file, indexes the repo metadata, resolves
the full dependency closure of the requested packages and downloads the
matching RPMs under a bounded worker pool. Mode selects what gets
downloaded: the resolved RPMs themselves (base), their
-debuginfo/-debugsource siblings (debug) or both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("ks") {
				cfg.KS = ksPath
			}
			if flags.Changed("repo") {
				cfg.Repos = repos
			}
			if flags.Changed("arch") {
				cfg.Arch = arch
			}
			if flags.Changed("out") {
				cfg.OutDir = outDir
			}
			if flags.Changed("mode") {
				cfg.Mode = string(mode.mode)
			}
			if flags.Changed("no-derive-pairs") {
				cfg.DerivePairs = !derivePairs
			}
			if flags.Changed("with-debugsource") {
				cfg.WithDebugsource = withDebugsource
			}
			if flags.Changed("include-noarch") {
				cfg.IncludeNoarch = includeNoarch
			}
			if flags.Changed("parallel") {
				cfg.Workers = workers
			}
			if flags.Changed("timeout") {
				cfg.TimeoutSeconds = timeout
			}
			if flags.Changed("retries") {
				cfg.Retries = retries
			}
			if flags.Changed("csv-out") {
				cfg.CSVOut = csvOut
			}
			return runFetch(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&ksPath, "ks", "", "KS file path or URL")
	cmd.Flags().StringArrayVar(&repos, "repo", nil, "Repo base URL (repeatable)")
	cmd.Flags().StringVar(&arch, "arch", "", "Target architecture (default: host)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "./rpms", "Download directory")
	cmd.Flags().Var(&mode, "mode", "What to download: base, debug or both")
	cmd.Flags().BoolVar(&derivePairs, "no-derive-pairs", false, "Do not derive sibling packages/debug repos")
	cmd.Flags().BoolVar(&withDebugsource, "with-debugsource", false, "Also fetch -debugsource next to -debuginfo")
	cmd.Flags().BoolVar(&includeNoarch, "include-noarch", false, "Download noarch RPMs too")
	cmd.Flags().IntVarP(&workers, "parallel", "j", config.DefaultWorkers(), "Download worker count")
	cmd.Flags().Float64Var(&timeout, "timeout", 30, "Per-request HTTP timeout in seconds")
	cmd.Flags().IntVar(&retries, "retries", 2, "Retry count per URL")
	cmd.Flags().StringVar(&csvOut, "csv-out", "", "Write (file, url) provenance CSV to this path")
	return cmd
}

func runFetch(cmd *cobra.Command, cfg config.Config) error {
	log := logger.Logger()
	ctx := cmd.Context()

	if cfg.KS == "" {
		return fmt.Errorf("no KS file given (--ks or config)")
	}
	if len(cfg.Repos) == 0 {
		return fmt.Errorf("no repos given (--repo or config)")
	}
	mode, err := download.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	arch := system.NormalizeArch(cfg.Arch)
	if arch == "" {
		arch = system.DetectHostArch()
		log.Infof("no architecture given, using host: %s", arch)
	}

	runID := uuid.NewString()
	log.Infof("run %s: ks=%s arch=%s mode=%s", runID, cfg.KS, arch, mode)

	fetcher := network.NewFetcher(cfg.Timeout(), cfg.Retries)

	parsed, err := kickstart.NewParser(fetcher, arch).Parse(ctx, cfg.KS)
	if err != nil {
		return err
	}
	log.Infof("KS requests %d package(s), %d group(s), %d exclude(s) from %d file(s)",
		len(parsed.PackageNames()), len(parsed.Groups), len(parsed.Excludes), len(parsed.Sources))

	pkgRepos, dbgRepos := download.SplitRepoRoles(cfg.NormalizedRepos(), cfg.DerivePairs)
	log.Infof("repos: %d packages-role, %d debug-role", len(pkgRepos), len(dbgRepos))

	loader := rpmmd.NewLoader(fetcher)
	pkgIdx, groups := loader.BuildMergedIndex(ctx, pkgRepos, cfg.Workers)
	if len(pkgIdx.ByName) == 0 {
		return fmt.Errorf("no usable repo metadata found in any of %d repo(s)", len(pkgRepos))
	}

	dbgIdx := rpmmd.NewRepoIndex()
	if mode == download.ModeDebug || mode == download.ModeBoth {
		dbgIdx, _ = loader.BuildMergedIndex(ctx, dbgRepos, cfg.Workers)
	}

	seeds := seedNames(parsed, groups)
	if err := printExpandedList(cmd.OutOrStdout(), parsed, seeds, cfg.Format, cfg.ShowGroups); err != nil {
		return err
	}

	res := resolver.Resolve(pkgIdx, seeds, arch)
	log.Infof("resolved %d package(s) from %d seed(s)", len(res.Visited), len(seeds))
	for _, cap := range res.Missing {
		log.Warnf("no provider for capability: %s", cap)
	}

	opts := download.Options{
		Mode:            mode,
		WithDebugsource: cfg.WithDebugsource,
		IncludeNoarch:   cfg.IncludeNoarch,
		Workers:         cfg.Workers,
	}
	tasks := download.BuildTasks(pkgIdx, dbgIdx, res.Visited, arch, cfg.OutDir, opts)
	provenance := download.Run(ctx, fetcher, tasks, cfg.Workers)
	log.Infof("materialized %d of %d file(s) in %s", len(provenance), len(tasks), cfg.OutDir)

	verified := download.VerifyDownloads(provenance)
	log.Infof("verified %d RPM file(s)", verified)

	if cfg.CSVOut != "" {
		if err := report.WriteProvenanceCSV(cfg.CSVOut, runID, provenance); err != nil {
			return err
		}
		log.Infof("provenance written to %s", cfg.CSVOut)
	}
	return nil
}

// printExpandedList renders the group-expanded seed list before any
// downloads start, so the requested set is visible even when a later stage
// fails.
func printExpandedList(w io.Writer, parsed *kickstart.ParseResult, seeds []string, format string, showGroups bool) error {
	list := report.PackageList{
		Packages: seeds,
		Groups:   parsed.GroupNames(),
		Excludes: parsed.ExcludeNames(),
		Sources:  parsed.Sources,
	}
	out, err := report.FormatList(list, format, showGroups)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, out)
	return nil
}

// seedNames builds the resolver seed list: requested packages plus group
// members, minus everything excluded. Excluded groups carry their @ marker.
func seedNames(parsed *kickstart.ParseResult, groups map[string][]string) []string {
	tokens := parsed.PackageNames()
	for _, g := range parsed.GroupNames() {
		if _, excluded := parsed.Excludes["@"+g]; excluded {
			continue
		}
		tokens = append(tokens, g)
	}

	expanded := resolver.ExpandGroups(tokens, groups)

	seeds := expanded[:0]
	for _, name := range expanded {
		if _, excluded := parsed.Excludes[name]; excluded {
			continue
		}
		seeds = append(seeds, name)
	}
	return seeds
}
