package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/velvet-lang/weave/internal/cachelock"
	"github.com/velvet-lang/weave/internal/config"
	weaveerrors "github.com/velvet-lang/weave/internal/errors"
	"github.com/velvet-lang/weave/internal/fetch"
	"github.com/velvet-lang/weave/internal/logging"
	"github.com/velvet-lang/weave/internal/materialize"
	"github.com/velvet-lang/weave/internal/ports"
	"github.com/velvet-lang/weave/internal/registry"
)

// Resolver classifies declarations against a registry snapshot and
// materializes libraries, local paths, and archives into the cache.
type Resolver struct {
	registry     *registry.Snapshot
	materializer *materialize.Materializer
	archives     ports.ArchiveFetcher
	fs           afero.Fs
	cacheDir     string
	locking      bool
	logger       *logging.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCacheDir sets the cache directory, relative to the source file's
// directory unless absolute (default: weave-library).
func WithCacheDir(dir string) Option {
	return func(r *Resolver) { r.cacheDir = dir }
}

// WithFs sets the filesystem used to read sources and copy local paths.
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) { r.fs = fs }
}

// WithLocking enables the cache lock around mutating resolutions (default: true).
func WithLocking(enabled bool) Option {
	return func(r *Resolver) { r.locking = enabled }
}

// WithLogger sets the logger. Nil uses the global logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// New creates a Resolver. The snapshot is used as is; refresh it from the
// network with registry.Loader before calling New.
func New(snapshot *registry.Snapshot, scm ports.SourceControl, archives ports.ArchiveFetcher, opts ...Option) *Resolver {
	r := &Resolver{
		registry: snapshot,
		archives: archives,
		fs:       afero.NewOsFs(),
		cacheDir: config.DefaultCacheDir,
		locking:  true,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.materializer = materialize.New(scm, r.logger)
	return r
}

// CacheRoot returns the cache directory used for sources at filePath.
func (r *Resolver) CacheRoot(filePath string) string {
	if filepath.IsAbs(r.cacheDir) {
		return r.cacheDir
	}
	return filepath.Join(filepath.Dir(filePath), r.cacheDir)
}

// Classify determines the kind of a single token without side effects.
// Errors carry no position.
func (r *Resolver) Classify(token string) (Dependency, error) {
	switch {
	case token == "":
		return Dependency{}, weaveerrors.EmptyDeclaration("", 0)
	case IsBuiltin(token):
		return Dependency{Kind: Builtin, Name: token}, nil
	}
	if _, ok := r.registry.Lookup(token); ok {
		return Dependency{Kind: Library, Name: token}, nil
	}
	if strings.HasPrefix(token, LocalPrefix) {
		return Dependency{Kind: Local, Name: strings.TrimPrefix(token, LocalPrefix)}, nil
	}
	if fetch.IsArchive(token) {
		return Dependency{Kind: RemoteArchive, Name: token}, nil
	}
	return Dependency{}, weaveerrors.UnknownDependency("", 0, token)
}

// ResolveFile reads path and resolves it.
func (r *Resolver) ResolveFile(ctx context.Context, path string) ([]Dependency, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, weaveerrors.ReadFailure(path, err)
	}
	return r.Resolve(ctx, string(data), path)
}

// Resolve classifies every declaration in source in order and materializes
// libraries, local paths, and archives under CacheRoot(filePath). The first
// error stops resolution and no partial result is returned. Errors carry
// filePath and the declaration line.
func (r *Resolver) Resolve(ctx context.Context, source, filePath string) ([]Dependency, error) {
	ctx = logging.WithSourceFile(ctx, filePath)
	log := logging.OrGlobal(r.logger).WithContext(ctx)
	cacheRoot := r.CacheRoot(filePath)

	var lock *cachelock.Lock
	defer func() { _ = lock.Release() }()
	acquire := func() error {
		if !r.locking || lock != nil {
			return nil
		}
		l, err := cachelock.Acquire(cacheRoot)
		if err != nil {
			return err
		}
		lock = l
		return nil
	}

	decls := Scan(source)
	deps := make([]Dependency, 0, len(decls))
	for _, decl := range decls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dep, err := r.Classify(decl.Token)
		if err != nil {
			return nil, at(err, filePath, decl.Line)
		}
		dep.Line = decl.Line

		if dep.Kind != Builtin {
			if err := acquire(); err != nil {
				return nil, at(err, filePath, decl.Line)
			}
			if err := r.materialize(ctx, &dep, cacheRoot, filePath); err != nil {
				return nil, at(err, filePath, decl.Line)
			}
		}

		log.Debug("resolved dependency", "kind", dep.Kind.String(), "name", dep.Name, "line", dep.Line)
		deps = append(deps, dep)
	}
	return deps, nil
}

func (r *Resolver) materialize(ctx context.Context, dep *Dependency, cacheRoot, filePath string) error {
	switch dep.Kind {
	case Library:
		entry, _ := r.registry.Lookup(dep.Name)
		ctx = logging.WithLibrary(ctx, dep.Name)
		if err := r.materializer.Materialize(ctx, entry.Name, entry.URL, entry.Version, cacheRoot); err != nil {
			return err
		}
		dep.Path = materialize.Target(cacheRoot, entry.Name)
	case Local:
		path, err := r.copyLocal(dep.Name, cacheRoot, filePath)
		if err != nil {
			return err
		}
		dep.Path = path
	case RemoteArchive:
		path, err := r.fetchArchive(ctx, dep.Name, cacheRoot)
		if err != nil {
			return err
		}
		dep.Path = path
	}
	return nil
}

// copyLocal copies a local: path into the cache under its basename.
// Relative paths are taken from the source file's directory.
func (r *Resolver) copyLocal(path, cacheRoot, filePath string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", weaveerrors.LocalCopyFailed(path, errors.New("empty path"))
	}

	src := path
	if !filepath.IsAbs(src) {
		src = filepath.Join(filepath.Dir(filePath), src)
	}
	name := filepath.Base(src)
	dst := filepath.Join(cacheRoot, name)

	if err := r.checkTarget(cacheRoot, name); err != nil {
		return "", weaveerrors.LocalCopyFailed(path, err)
	}
	if err := r.fs.MkdirAll(cacheRoot, 0755); err != nil {
		return "", weaveerrors.LocalCopyFailed(path, err)
	}
	if err := copyPath(r.fs, src, dst); err != nil {
		return "", weaveerrors.LocalCopyFailed(path, err)
	}
	logging.OrGlobal(r.logger).Debug("copied local dependency", "src", src, "dst", dst)
	return dst, nil
}

// fetchArchive extracts url into the cache under the archive's base name.
// An existing extraction is reused.
func (r *Resolver) fetchArchive(ctx context.Context, url, cacheRoot string) (string, error) {
	log := logging.OrGlobal(r.logger)
	name := fetch.ArchiveBaseName(url)
	if name == "" {
		return "", weaveerrors.ArchiveFailed(url, errors.New("archive URL has no usable base name"))
	}
	if err := r.checkTarget(cacheRoot, name); err != nil {
		return "", weaveerrors.ArchiveFailed(url, err)
	}
	target := filepath.Join(cacheRoot, name)

	if _, err := os.Stat(target); err == nil {
		log.Debug("archive already extracted", "url", url, "path", target)
		return target, nil
	}
	if r.archives == nil {
		return "", weaveerrors.ArchiveFailed(url, errors.New("no archive fetcher configured"))
	}

	log.Info("fetching archive", "url", url, "path", target)
	if _, err := r.archives.FetchArchive(ctx, url, target); err != nil {
		_ = os.RemoveAll(target)
		return "", weaveerrors.ArchiveFailed(url, err)
	}
	return target, nil
}

// checkTarget reports whether a local copy or an archive may occupy
// cacheRoot/name. Registry names and existing repositories belong to
// libraries.
func (r *Resolver) checkTarget(cacheRoot, name string) error {
	if !registry.ValidName(name) {
		return fmt.Errorf("%q cannot be used as a cache entry", name)
	}
	if _, ok := r.registry.Lookup(name); ok {
		return fmt.Errorf("%s is reserved for registry library %s", filepath.Join(cacheRoot, name), name)
	}
	if info, err := r.fs.Stat(filepath.Join(cacheRoot, name, ".git")); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a library repository", filepath.Join(cacheRoot, name))
	}
	return nil
}

// at attaches a source position to err when it is a WeaveError.
func at(err error, file string, line int) error {
	if we, ok := weaveerrors.As(err); ok {
		return we.At(file, line)
	}
	return err
}
