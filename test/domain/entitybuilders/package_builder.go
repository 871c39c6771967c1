//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"encoding/json"
	"path/filepath"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// PackageBuilder helps create workspace packages with a fluent interface.
type PackageBuilder struct {
	*testkit.BaseBuilder
	name         string
	version      string
	dir          string
	private      bool
	dependencies map[entities.DependencyKind]map[string]string
}

// NewPackageBuilder creates a new package builder with sensible defaults.
func NewPackageBuilder() *PackageBuilder {
	return &PackageBuilder{
		BaseBuilder:  testkit.NewBaseBuilder(),
		name:         "test-package",
		version:      "1.0.0",
		dir:          "",
		dependencies: make(map[entities.DependencyKind]map[string]string),
	}
}

// WithName sets the package name.
func (b *PackageBuilder) WithName(name string) *PackageBuilder {
	b.name = name
	return b
}

// WithVersion sets the declared version.
func (b *PackageBuilder) WithVersion(version string) *PackageBuilder {
	b.version = version
	return b
}

// WithDir sets the package directory. Defaults to /repo/packages/<name>.
func (b *PackageBuilder) WithDir(dir string) *PackageBuilder {
	b.dir = dir
	return b
}

// WithPrivate marks the package private.
func (b *PackageBuilder) WithPrivate() *PackageBuilder {
	b.private = true
	return b
}

// WithDependency declares a regular dependency.
func (b *PackageBuilder) WithDependency(name, spec string) *PackageBuilder {
	return b.WithTypedDependency(entities.KindRegular, name, spec)
}

// WithDevDependency declares a dev dependency.
func (b *PackageBuilder) WithDevDependency(name, spec string) *PackageBuilder {
	return b.WithTypedDependency(entities.KindDev, name, spec)
}

// WithPeerDependency declares a peer dependency.
func (b *PackageBuilder) WithPeerDependency(name, spec string) *PackageBuilder {
	return b.WithTypedDependency(entities.KindPeer, name, spec)
}

// WithTypedDependency declares a dependency in the given manifest map.
func (b *PackageBuilder) WithTypedDependency(kind entities.DependencyKind, name, spec string) *PackageBuilder {
	if b.dependencies[kind] == nil {
		b.dependencies[kind] = make(map[string]string)
	}
	b.dependencies[kind][name] = spec
	return b
}

// Build creates the package (satisfies testkit.Builder interface).
func (b *PackageBuilder) Build() interface{} {
	return b.BuildPackage()
}

// BuildPackage creates the package with a concrete return type. The
// manifest is synthesized as real two-space-indented JSON so graph and
// engine tests exercise the same parse path as production code.
func (b *PackageBuilder) BuildPackage() *entities.Package {
	dir := b.dir
	if dir == "" {
		dir = filepath.Join("/repo/packages", b.name)
	}

	doc := map[string]any{
		"name":    b.name,
		"version": b.version,
	}
	if b.private {
		doc["private"] = true
	}
	for kind, deps := range b.dependencies {
		doc[kind.String()] = deps
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		panic(err)
	}
	manifest, err := entities.ParseManifest(filepath.Join(dir, entities.ManifestFileName), append(data, '\n'))
	if err != nil {
		panic(err)
	}

	return &entities.Package{
		Name:     b.name,
		Dir:      dir,
		Manifest: manifest,
		Version:  entities.MustParseVersion(b.version),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *PackageBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-package"
	b.version = "1.0.0"
	b.dir = ""
	b.private = false
	b.dependencies = make(map[entities.DependencyKind]map[string]string)
	return b
}

// Clone creates a deep copy of the PackageBuilder.
func (b *PackageBuilder) Clone() testkit.Builder {
	dependencies := make(map[entities.DependencyKind]map[string]string, len(b.dependencies))
	for kind, deps := range b.dependencies {
		copied := make(map[string]string, len(deps))
		for name, spec := range deps {
			copied[name] = spec
		}
		dependencies[kind] = copied
	}
	return &PackageBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:         b.name,
		version:      b.version,
		dir:          b.dir,
		private:      b.private,
		dependencies: dependencies,
	}
}
