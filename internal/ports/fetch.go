package ports

import "context"

// HTTPFetcher performs a single GET and returns the full body.
type HTTPFetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// ArchiveFetcher downloads an archive and extracts it.
type ArchiveFetcher interface {
	// FetchArchive downloads url and extracts it into destDir, returning destDir.
	FetchArchive(ctx context.Context, url, destDir string) (string, error)
}
