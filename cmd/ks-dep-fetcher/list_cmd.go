package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/config"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/kickstart"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/report"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/network"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/system"
)

// createListCommand creates the list subcommand: parse only, no downloads.
func createListCommand() *cobra.Command {
	var (
		ksPath     string
		arch       string
		format     string
		showGroups bool
	)

	cmd := &cobra.Command{
		Use:   "list [KS_FILE]",
		Short: "Parse a KS file and print the requested package list",
		Long: `List parses a KS file (following %include recursively and
evaluating %ifarch/%if conditionals against the target architecture)
and prints the packages its %packages sections request. Nothing is
resolved or downloaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if len(args) == 1 {
				cfg.KS = args[0]
			} else if flags.Changed("ks") {
				cfg.KS = ksPath
			}
			if flags.Changed("arch") {
				cfg.Arch = arch
			}
			if flags.Changed("format") {
				cfg.Format = format
			}
			if flags.Changed("show-groups") {
				cfg.ShowGroups = showGroups
			}
			return runList(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&ksPath, "ks", "", "KS file path or URL")
	cmd.Flags().StringVar(&arch, "arch", "", "Target architecture (default: host)")
	cmd.Flags().StringVar(&format, "format", "plain", "Output format: plain, json, yaml or markdown")
	cmd.Flags().BoolVar(&showGroups, "show-groups", false, "Include @group tokens in structured output")
	return cmd
}

func runList(cmd *cobra.Command, cfg config.Config) error {
	if cfg.KS == "" {
		return fmt.Errorf("no KS file given (positional argument, --ks or config)")
	}
	arch := system.NormalizeArch(cfg.Arch)
	if arch == "" {
		arch = system.DetectHostArch()
	}

	fetcher := network.NewFetcher(cfg.Timeout(), cfg.Retries)
	parsed, err := kickstart.NewParser(fetcher, arch).Parse(cmd.Context(), cfg.KS)
	if err != nil {
		return err
	}

	list := report.PackageList{
		Packages: parsed.PackageNames(),
		Groups:   parsed.GroupNames(),
		Excludes: parsed.ExcludeNames(),
		Sources:  parsed.Sources,
	}
	out, err := report.FormatList(list, cfg.Format, cfg.ShowGroups)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
