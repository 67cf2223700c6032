package download

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/resolver"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/rpmmd"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/logger"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/network"
)

// Mode selects which RPMs get downloaded for the resolved set.
type Mode string

const (
	ModeBase  Mode = "base"  // the resolved RPMs themselves
	ModeDebug Mode = "debug" // their -debuginfo/-debugsource siblings
	ModeBoth  Mode = "both"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBase, ModeDebug, ModeBoth:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode %q (expected base|debug|both)", s)
}

// Task is one file to download: an ordered candidate URL list and a
// destination. Tasks are built fresh per run and never persisted.
type Task struct {
	Name       string
	Arch       string
	Candidates []string
	Dest       string
}

// Provenance records where a materialized file actually came from.
type Provenance struct {
	Dest string
	URL  string
}

// Options tunes task construction and execution.
type Options struct {
	Mode            Mode
	WithDebugsource bool // also fetch -debugsource next to -debuginfo
	IncludeNoarch   bool // fetch noarch RPMs too (resolution uses them regardless)
	Workers         int
}

// BuildTasks turns a resolution result into the download task list.
// Base-mode tasks come from the packages-role index, debug-mode tasks from
// the debug-role index via the <name>-debuginfo/-debugsource convention.
func BuildTasks(pkgIdx, dbgIdx *rpmmd.RepoIndex, visited []resolver.PackageKey, arch, outDir string, opts Options) []Task {
	var tasks []Task

	if opts.Mode == ModeBase || opts.Mode == ModeBoth {
		for _, key := range visited {
			meta := pkgIdx.FindPackage(key.Name, key.Arch)
			if meta == nil || meta.Href == "" {
				continue
			}
			// Resolution may legitimately traverse noarch providers even
			// when their files are not wanted.
			if meta.Arch == "noarch" && !opts.IncludeNoarch {
				continue
			}
			tasks = append(tasks, Task{
				Name:       meta.Name,
				Arch:       meta.Arch,
				Candidates: URLCandidates(meta.RepoBase, meta.Href),
				Dest:       filepath.Join(outDir, path.Base(meta.Href)),
			})
		}
	}

	if opts.Mode == ModeDebug || opts.Mode == ModeBoth {
		suffixes := []string{"-debuginfo"}
		if opts.WithDebugsource {
			suffixes = append(suffixes, "-debugsource")
		}
		for _, baseName := range uniqueNames(visited) {
			for _, suffix := range suffixes {
				meta := dbgIdx.SelectByArch(baseName+suffix, arch)
				if meta == nil || meta.Href == "" {
					continue
				}
				if meta.Arch == "noarch" && !opts.IncludeNoarch {
					continue
				}
				tasks = append(tasks, Task{
					Name:       meta.Name,
					Arch:       meta.Arch,
					Candidates: URLCandidates(meta.RepoBase, meta.Href),
					Dest:       filepath.Join(outDir, path.Base(meta.Href)),
				})
			}
		}
	}

	return tasks
}

// Run executes the task list under a bounded worker pool. Tasks are
// independent; completion order carries no meaning. Every successfully
// materialized file (downloaded now or already present) ends up in the
// returned provenance list, sorted by destination.
func Run(ctx context.Context, fetcher *network.Fetcher, tasks []Task, workers int) []Provenance {
	log := logger.Logger()
	if len(tasks) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	log.Infof("starting downloads: %d file(s), %d worker(s)", len(tasks), workers)

	bar := progressbar.NewOptions(len(tasks),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	jobs := make(chan Task, len(tasks))
	var mu sync.Mutex
	var done []Provenance
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				bar.Describe(fmt.Sprintf("downloading %s", filepath.Base(task.Dest)))
				if url, ok := runOne(ctx, fetcher, task); ok {
					mu.Lock()
					done = append(done, Provenance{Dest: task.Dest, URL: url})
					mu.Unlock()
				}
				_ = bar.Add(1)
			}
		}()
	}

	for _, t := range tasks {
		jobs <- t
	}
	close(jobs)
	wg.Wait()
	_ = bar.Finish()

	sort.Slice(done, func(i, j int) bool { return done[i].Dest < done[j].Dest })
	return done
}

// runOne tries a task's candidates strictly in order; the first success
// wins. A destination that already exists short-circuits the network but
// still counts for provenance (reported against the first candidate, since
// where the file actually came from is unknowable). Exhausting all
// candidates drops the task with a warning; partial results are acceptable.
func runOne(ctx context.Context, fetcher *network.Fetcher, task Task) (string, bool) {
	log := logger.Logger()

	if _, err := os.Stat(task.Dest); err == nil {
		log.Infof("already exists: %s", filepath.Base(task.Dest))
		if len(task.Candidates) == 0 {
			return "", false
		}
		return task.Candidates[0], true
	}

	for i, url := range task.Candidates {
		log.Infof("downloading %s.%s -> %s [try %d/%d]",
			task.Name, task.Arch, filepath.Base(task.Dest), i+1, len(task.Candidates))
		if err := fetcher.Save(ctx, url, task.Dest); err != nil {
			log.Warnf("download failed: %s: %v", url, err)
			continue
		}
		return url, true
	}
	log.Warnf("all candidates failed for %s.%s -> %s", task.Name, task.Arch, filepath.Base(task.Dest))
	return "", false
}

func uniqueNames(visited []resolver.PackageKey) []string {
	seen := make(map[string]struct{}, len(visited))
	var names []string
	for _, key := range visited {
		if _, dup := seen[key.Name]; dup {
			continue
		}
		seen[key.Name] = struct{}{}
		names = append(names, key.Name)
	}
	sort.Strings(names)
	return names
}
