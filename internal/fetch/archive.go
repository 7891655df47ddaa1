package fetch

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/velvet-lang/weave/internal/ports"
)

// ArchiveSuffixes are the recognised archive extensions, longest first.
var ArchiveSuffixes = []string{".tar.gz", ".tgz", ".zip"}

// ArchiveSuffix returns the archive suffix of name, or "" if it has none.
func ArchiveSuffix(name string) string {
	for _, s := range ArchiveSuffixes {
		if strings.HasSuffix(name, s) {
			return s
		}
	}
	return ""
}

// IsArchive reports whether name ends in a recognised archive suffix.
func IsArchive(name string) bool {
	return ArchiveSuffix(name) != ""
}

// ArchiveBaseName returns the last path element of an archive URL with its
// suffix removed: https://host/pkg/json-1.0.tar.gz -> json-1.0. It returns ""
// when nothing usable as a directory name remains (https://host/.zip).
func ArchiveBaseName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	name := strings.TrimSuffix(base, ArchiveSuffix(base))
	if name == "." || name == ".." || name == "/" || strings.Contains(name, "\\") {
		return ""
	}
	return name
}

// ArchiveFetcher downloads archives with a Client and extracts them.
type ArchiveFetcher struct {
	Client *Client
}

var _ ports.ArchiveFetcher = (*ArchiveFetcher)(nil)

// NewArchiveFetcher creates an ArchiveFetcher using client.
func NewArchiveFetcher(client *Client) *ArchiveFetcher {
	return &ArchiveFetcher{Client: client}
}

// FetchArchive implements ports.ArchiveFetcher.
func (a *ArchiveFetcher) FetchArchive(ctx context.Context, rawURL, destDir string) (string, error) {
	suffix := ArchiveSuffix(rawURL)
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		suffix = ArchiveSuffix(u.Path)
	}
	if suffix == "" {
		return "", fmt.Errorf("unsupported archive type: %s", rawURL)
	}

	tmp, err := a.download(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}
	if err := Extract(tmp, suffix, destDir); err != nil {
		return "", err
	}
	return destDir, nil
}

// download writes the response body to a temporary file and returns its path.
func (a *ArchiveFetcher) download(ctx context.Context, rawURL string) (string, error) {
	client := a.Client
	if client == nil {
		client = NewClient(0)
	}

	body, err := client.open(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	file, err := os.CreateTemp("", "weave-archive-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return file.Name(), nil
}

// Extract unpacks the archive at archivePath into destDir. suffix selects
// the format. Entries that would land outside destDir are rejected.
func Extract(archivePath, suffix, destDir string) error {
	switch suffix {
	case ".zip":
		return extractZip(archivePath, destDir)
	case ".tar.gz", ".tgz":
		return extractTarGz(archivePath, destDir)
	default:
		return fmt.Errorf("unsupported archive type: %s", suffix)
	}
}

// safeJoin joins name onto root, failing if the result escapes root.
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if mode&0600 == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func extractTarGz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(header.Mode)); err != nil {
				return err
			}
		default:
			// Links and devices are not materialized.
			continue
		}
	}
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
