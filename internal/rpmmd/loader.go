package rpmmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/logger"
	"github.com/open-edge-platform/ks-dep-fetcher/internal/utils/network"
)

// Loader fetches and decodes repo metadata into RepoIndex structures.
type Loader struct {
	fetcher *network.Fetcher
}

// NewLoader returns a Loader using the given fetcher for all metadata I/O.
func NewLoader(fetcher *network.Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// repoResult is what one repo contributes to a merged index.
type repoResult struct {
	index  *RepoIndex
	groups map[string][]string
}

// LoadRepo ingests one repo's metadata. Primary is required; filelists,
// other and group metadata are optional extras that degrade to warnings.
func (l *Loader) LoadRepo(ctx context.Context, repoBase string) (*RepoIndex, map[string][]string, error) {
	log := logger.Logger()

	repomdURL, repomdData, err := l.locateRepomd(ctx, repoBase)
	if err != nil {
		return nil, nil, err
	}
	locations, err := parseRepomd(repomdURL, repomdData)
	if err != nil {
		return nil, nil, err
	}

	primaryURL := firstLocation(locations, typePrimary)
	if primaryURL == "" {
		return nil, nil, fmt.Errorf("primary metadata not found in %s", repomdURL)
	}

	// other metadata first, so pkgids can be attached while parsing primary
	var pkgids map[pkgKey]string
	if otherURL := firstLocation(locations, typeOther, typeOtherDB); otherURL != "" {
		if ids, err := l.loadOther(ctx, otherURL); err != nil {
			log.Warnf("other metadata not available for %s: %v", repoBase, err)
		} else {
			pkgids = ids
		}
	}

	log.Infof("fetching primary metadata: %s", primaryURL)
	raw, err := l.fetcher.Fetch(ctx, primaryURL)
	if err != nil {
		return nil, nil, err
	}
	data, err := decodePayload(primaryURL, raw)
	if err != nil {
		return nil, nil, err
	}
	idx, err := parsePrimary(data, repoBase, pkgids)
	if err != nil {
		return nil, nil, err
	}

	if furl := firstLocation(locations, typeFilelists, typeFilelistsDB); furl != "" {
		log.Infof("fetching filelists metadata: %s", furl)
		if entries, err := l.loadFilelists(ctx, furl); err != nil {
			log.Warnf("filelists metadata not available for %s: %v", repoBase, err)
		} else {
			augmentWithFilelists(idx, entries)
		}
	}

	groups := make(map[string][]string)
	if gurl := firstLocation(locations, typeGroup, typeGroupGz); gurl != "" {
		log.Infof("fetching group metadata: %s", gurl)
		if g, err := l.loadGroups(ctx, gurl); err != nil {
			log.Warnf("group metadata not available for %s: %v", repoBase, err)
		} else {
			groups = g
		}
	}

	return idx, groups, nil
}

// BuildMergedIndex loads every repo base under a bounded worker pool and
// merges the results in input order, so duplicate-provider tie-breaking
// stays deterministic regardless of fetch completion order. A repo whose
// metadata cannot be loaded contributes nothing; the run continues.
func (l *Loader) BuildMergedIndex(ctx context.Context, repoBases []string, workers int) (*RepoIndex, map[string][]string) {
	log := logger.Logger()

	if workers < 1 {
		workers = 1
	}
	results := make([]*repoResult, len(repoBases))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, base := range repoBases {
		wg.Add(1)
		go func(i int, base string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			idx, groups, err := l.LoadRepo(ctx, base)
			if err != nil {
				log.Warnf("failed to index repo %s: %v", base, err)
				return
			}
			results[i] = &repoResult{index: idx, groups: groups}
		}(i, base)
	}
	wg.Wait()

	merged := NewRepoIndex()
	mergedGroups := make(map[string][]string)
	for _, res := range results {
		if res == nil {
			continue
		}
		merged.MergeFrom(res.index)
		// first repo wins per group id
		for gid, pkgs := range res.groups {
			if _, ok := mergedGroups[gid]; !ok {
				mergedGroups[gid] = pkgs
			}
		}
	}
	return merged, mergedGroups
}

func (l *Loader) loadOther(ctx context.Context, otherURL string) (map[pkgKey]string, error) {
	raw, err := l.fetcher.Fetch(ctx, otherURL)
	if err != nil {
		return nil, err
	}
	data, err := decodePayload(otherURL, raw)
	if err != nil {
		return nil, err
	}
	return parseOther(data)
}

func (l *Loader) loadFilelists(ctx context.Context, filelistsURL string) ([]fileEntry, error) {
	raw, err := l.fetcher.Fetch(ctx, filelistsURL)
	if err != nil {
		return nil, err
	}
	return parseFilelists(filelistsURL, raw)
}

func (l *Loader) loadGroups(ctx context.Context, groupsURL string) (map[string][]string, error) {
	raw, err := l.fetcher.Fetch(ctx, groupsURL)
	if err != nil {
		return nil, err
	}
	data, err := decodePayload(groupsURL, raw)
	if err != nil {
		return nil, err
	}
	return parseGroups(data)
}
