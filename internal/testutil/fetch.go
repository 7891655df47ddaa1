package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/velvet-lang/weave/internal/ports"
)

// FakeHTTP is an in-memory ports.HTTPFetcher. Unknown URLs fail.
type FakeHTTP struct {
	Responses map[string][]byte
	Errs      map[string]error

	mu       sync.Mutex
	requests []string
}

// NewFakeHTTP returns a fake with all maps initialized.
func NewFakeHTTP() *FakeHTTP {
	return &FakeHTTP{
		Responses: map[string][]byte{},
		Errs:      map[string]error{},
	}
}

var _ ports.HTTPFetcher = (*FakeHTTP)(nil)

// Get implements ports.HTTPFetcher.
func (f *FakeHTTP) Get(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, url)
	f.mu.Unlock()

	if err := f.Errs[url]; err != nil {
		return nil, err
	}
	body, ok := f.Responses[url]
	if !ok {
		return nil, fmt.Errorf("dial %s: network unreachable", url)
	}
	return body, nil
}

// Requests returns the URLs requested so far.
func (f *FakeHTTP) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// FakeArchive is an in-memory ports.ArchiveFetcher. Each URL maps to the
// files its archive would extract to.
type FakeArchive struct {
	Archives map[string]map[string]string
	Errs     map[string]error

	mu      sync.Mutex
	fetched []string
}

// NewFakeArchive returns a fake with all maps initialized.
func NewFakeArchive() *FakeArchive {
	return &FakeArchive{
		Archives: map[string]map[string]string{},
		Errs:     map[string]error{},
	}
}

var _ ports.ArchiveFetcher = (*FakeArchive)(nil)

// FetchArchive implements ports.ArchiveFetcher.
func (f *FakeArchive) FetchArchive(ctx context.Context, url, destDir string) (string, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	if err := f.Errs[url]; err != nil {
		return "", err
	}
	files, ok := f.Archives[url]
	if !ok {
		return "", fmt.Errorf("GET %s: 404 not found", url)
	}
	for name, content := range files {
		path := filepath.Join(destDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return "", err
		}
	}
	return destDir, nil
}

// Fetched returns the URLs fetched so far.
func (f *FakeArchive) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}
