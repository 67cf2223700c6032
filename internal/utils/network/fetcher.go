package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Fetcher reads resources from http(s) URLs or the local filesystem.
// Network requests carry a per-request timeout and a bounded retry with
// exponential backoff.
type Fetcher struct {
	client  *http.Client
	retries int
}

// NewFetcher returns a Fetcher with the given per-request timeout and
// retry count. A retry count of 2 means up to 3 attempts total.
func NewFetcher(timeout time.Duration, retries int) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return &Fetcher{
		client: &http.Client{
			Transport: newSecureTransport(),
			Timeout:   timeout,
		},
		retries: retries,
	}
}

// IsURL reports whether s looks like an http(s) URL rather than a local path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch returns the full contents of resource, which may be an http(s) URL
// or a filesystem path.
func (f *Fetcher) Fetch(ctx context.Context, resource string) ([]byte, error) {
	if !IsURL(resource) {
		data, err := os.ReadFile(resource)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", resource, err)
		}
		return data, nil
	}

	var body []byte
	op := func() error {
		resp, err := f.get(ctx, resource)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err
	}
	if err := f.withRetry(ctx, op); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", resource, err)
	}
	return body, nil
}

// Save streams url into destPath. Parent directories are created, the body
// is written to a temporary sibling first and renamed into place on success,
// so a failed download never leaves a truncated destination behind.
func (f *Fetcher) Save(ctx context.Context, url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", destPath, err)
	}

	op := func() error {
		resp, err := f.get(ctx, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		part := destPath + ".part"
		out, err := os.Create(part)
		if err != nil {
			return backoff.Permanent(err)
		}
		if _, err := io.Copy(out, resp.Body); err != nil {
			out.Close()
			os.Remove(part)
			return err
		}
		if err := out.Close(); err != nil {
			os.Remove(part)
			return err
		}
		return os.Rename(part, destPath)
	}
	if err := f.withRetry(ctx, op); err != nil {
		return fmt.Errorf("saving %s: %w", url, err)
	}
	return nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		err := fmt.Errorf("bad status: %s", resp.Status)
		// Client errors (404 on a probe, 403, ...) will not get better
		// with retries; let the caller move on to its next candidate.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	return resp, nil
}

func (f *Fetcher) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(f.retries)), ctx))
}
