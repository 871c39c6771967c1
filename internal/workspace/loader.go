package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// Loader discovers and loads a workspace: classify the root, expand the
// member globs, then read every manifest with bounded parallelism.
type Loader struct {
	registry *ProberRegistry
}

// NewLoader creates a loader backed by the given prober registry.
func NewLoader(registry *ProberRegistry) *Loader {
	return &Loader{registry: registry}
}

type loadOptions struct {
	globs []string
}

// LoadOption customizes a single Load call.
type LoadOption func(*loadOptions)

// WithGlobs bypasses layout detection with explicit member globs; the
// resulting workspace is classified as custom.
func WithGlobs(globs []string) LoadOption {
	return func(o *loadOptions) { o.globs = globs }
}

// Load builds the workspace for a root directory.
func (l *Loader) Load(ctx context.Context, root string, opts ...LoadOption) (*entities.Workspace, error) {
	var options loadOptions
	for _, opt := range opts {
		opt(&options)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, entities.NewIOError("resolve", root, err)
	}

	classification, err := l.classify(root, options)
	if err != nil {
		return nil, err
	}

	if classification.Kind == entities.WorkspaceSinglePackage {
		pkg, err := packageFromManifest(classification.RootManifest)
		if err != nil {
			return nil, err
		}
		return entities.NewWorkspace(root, classification.Kind, classification.RootManifest, []*entities.Package{pkg}), nil
	}

	dirs, err := ExpandGlobs(root, classification.Globs)
	if err != nil {
		return nil, err
	}

	packages, err := l.loadPackages(ctx, dirs)
	if err != nil {
		return nil, err
	}
	return entities.NewWorkspace(root, classification.Kind, classification.RootManifest, packages), nil
}

func (l *Loader) classify(root string, options loadOptions) (*Classification, error) {
	if len(options.globs) > 0 {
		rootManifest, err := readManifestIfPresent(filepath.Join(root, entities.ManifestFileName))
		if err != nil {
			return nil, err
		}
		return &Classification{
			Kind:         entities.WorkspaceCustom,
			Globs:        options.globs,
			RootManifest: rootManifest,
		}, nil
	}
	return l.registry.Classify(root)
}

// loadPackages reads member manifests in parallel while keeping the
// discovery order of dirs in the result.
func (l *Loader) loadPackages(ctx context.Context, dirs []string) ([]*entities.Package, error) {
	loaded := make([]*entities.Package, len(dirs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, dir := range dirs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, entities.ManifestFileName)
			data, err := os.ReadFile(path)
			if err != nil {
				return entities.NewIOError("read", path, err)
			}
			manifest, err := entities.ParseManifest(path, data)
			if err != nil {
				return err
			}
			pkg, err := packageFromManifest(manifest)
			if err != nil {
				return err
			}
			loaded[i] = pkg
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	packages := make([]*entities.Package, 0, len(loaded))
	seen := make(map[string]string, len(loaded))
	for _, pkg := range loaded {
		if first, duplicate := seen[pkg.Name]; duplicate {
			logger.Warnf("[workspace] duplicate package name %q in %s, keeping %s", pkg.Name, pkg.Dir, first)
			continue
		}
		seen[pkg.Name] = pkg.Dir
		packages = append(packages, pkg)
	}
	return packages, nil
}

// packageFromManifest wraps a manifest into a Package. A missing name
// falls back to the directory base name; a missing version is treated as
// 0.0.0 so private tooling packages stay in the graph.
func packageFromManifest(manifest *entities.Manifest) (*entities.Package, error) {
	name := manifest.Name()
	if name == "" {
		name = filepath.Base(manifest.Dir)
		logger.Warnf("[workspace] manifest %s has no name, using %q", manifest.Path, name)
	}

	raw := manifest.Version()
	if raw == "" {
		raw = "0.0.0"
		logger.Warnf("[workspace] package %q has no version, assuming %s", name, raw)
	}
	version, err := entities.ParseVersion(raw)
	if err != nil {
		return nil, entities.NewManifestParseError(manifest.Path, err)
	}

	return &entities.Package{
		Name:     name,
		Dir:      manifest.Dir,
		Manifest: manifest,
		Version:  version,
	}, nil
}
