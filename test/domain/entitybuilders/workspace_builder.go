//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/relforge/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// WorkspaceBuilder helps create workspaces with a fluent interface.
type WorkspaceBuilder struct {
	*testkit.BaseBuilder
	root         string
	kind         entities.WorkspaceKind
	rootManifest *entities.Manifest
	packages     []*entities.Package
}

// NewWorkspaceBuilder creates a new workspace builder with sensible defaults.
func NewWorkspaceBuilder() *WorkspaceBuilder {
	return &WorkspaceBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		root:        "/repo",
		kind:        entities.WorkspaceNpm,
	}
}

// WithRoot sets the workspace root directory.
func (b *WorkspaceBuilder) WithRoot(root string) *WorkspaceBuilder {
	b.root = root
	return b
}

// WithKind sets the workspace kind.
func (b *WorkspaceBuilder) WithKind(kind entities.WorkspaceKind) *WorkspaceBuilder {
	b.kind = kind
	return b
}

// WithRootManifest sets the root manifest.
func (b *WorkspaceBuilder) WithRootManifest(manifest *entities.Manifest) *WorkspaceBuilder {
	b.rootManifest = manifest
	return b
}

// WithPackage appends a member package.
func (b *WorkspaceBuilder) WithPackage(pkg *entities.Package) *WorkspaceBuilder {
	b.packages = append(b.packages, pkg)
	return b
}

// WithPackages replaces the member list.
func (b *WorkspaceBuilder) WithPackages(packages ...*entities.Package) *WorkspaceBuilder {
	b.packages = packages
	return b
}

// Build creates the workspace (satisfies testkit.Builder interface).
func (b *WorkspaceBuilder) Build() interface{} {
	return b.BuildWorkspace()
}

// BuildWorkspace creates the workspace with a concrete return type.
func (b *WorkspaceBuilder) BuildWorkspace() *entities.Workspace {
	rootManifest := b.rootManifest
	if rootManifest == nil && len(b.packages) > 0 {
		rootManifest = b.packages[0].Manifest
	}
	return entities.NewWorkspace(b.root, b.kind, rootManifest, b.packages)
}

// Reset clears the builder state, allowing it to be reused.
func (b *WorkspaceBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.root = "/repo"
	b.kind = entities.WorkspaceNpm
	b.rootManifest = nil
	b.packages = nil
	return b
}

// Clone creates a deep copy of the WorkspaceBuilder.
func (b *WorkspaceBuilder) Clone() testkit.Builder {
	packages := make([]*entities.Package, len(b.packages))
	copy(packages, b.packages)
	return &WorkspaceBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		root:         b.root,
		kind:         b.kind,
		rootManifest: b.rootManifest,
		packages:     packages,
	}
}
