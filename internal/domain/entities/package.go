package entities

import (
	"path/filepath"
	"sort"
)

// WorkspaceKind classifies how a repository lays out its packages.
type WorkspaceKind string

const (
	WorkspaceSinglePackage WorkspaceKind = "single-package"
	WorkspaceNpm           WorkspaceKind = "npm-workspaces"
	WorkspaceYarn          WorkspaceKind = "yarn-workspaces"
	WorkspacePnpm          WorkspaceKind = "pnpm-workspaces"
	WorkspaceBun           WorkspaceKind = "bun"
	WorkspaceDeno          WorkspaceKind = "deno"
	WorkspaceLerna         WorkspaceKind = "lerna"
	WorkspaceCustom        WorkspaceKind = "custom"
)

// IsMonorepo reports whether the kind manages more than one package root.
func (k WorkspaceKind) IsMonorepo() bool { return k != WorkspaceSinglePackage }

// Package is one workspace member, uniquely keyed by its manifest name.
type Package struct {
	Name     string
	Dir      string // absolute package directory
	Manifest *Manifest
	Version  Version
}

// Workspace is the discovered set of packages under one root configuration.
// Packages keeps the discovery order: workspace patterns in declaration
// order, lexicographic within each pattern expansion.
type Workspace struct {
	Root         string
	Kind         WorkspaceKind
	RootManifest *Manifest
	Packages     []*Package

	byName map[string]*Package
}

// NewWorkspace indexes the packages by name.
func NewWorkspace(root string, kind WorkspaceKind, rootManifest *Manifest, packages []*Package) *Workspace {
	byName := make(map[string]*Package, len(packages))
	for _, pkg := range packages {
		byName[pkg.Name] = pkg
	}
	return &Workspace{
		Root:         root,
		Kind:         kind,
		RootManifest: rootManifest,
		Packages:     packages,
		byName:       byName,
	}
}

// Package returns the member with the given name, nil when unknown.
func (w *Workspace) Package(name string) *Package {
	return w.byName[name]
}

// Has reports whether a package name belongs to the workspace.
func (w *Workspace) Has(name string) bool {
	_, ok := w.byName[name]
	return ok
}

// RelDir returns a package's directory relative to the workspace root, in
// slash form, suitable as a git path filter. The root package itself yields
// the empty string, which git treats as no filter.
func (w *Workspace) RelDir(pkg *Package) string {
	rel, err := filepath.Rel(w.Root, pkg.Dir)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// PackageNames returns all member names sorted lexicographically.
func (w *Workspace) PackageNames() []string {
	names := make([]string, 0, len(w.Packages))
	for _, pkg := range w.Packages {
		names = append(names, pkg.Name)
	}
	sort.Strings(names)
	return names
}
