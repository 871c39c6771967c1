// Package workspace discovers the packages managed by a repository root:
// it classifies the workspace layout (npm, yarn, pnpm, bun, deno, lerna or
// a plain single package), expands the configured workspace globs and
// loads every member manifest.
package workspace

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// Prober detects one workspace layout and yields its member globs.
type Prober interface {
	Kind() entities.WorkspaceKind
	Detect(root string, rootManifest *entities.Manifest) bool
	Globs(root string, rootManifest *entities.Manifest) ([]string, error)
}

// ProberRegistry holds probers in detection-priority order: explicit
// workspace files (pnpm, lerna, deno) win over lockfile heuristics
// (bun, yarn), with npm workspaces as the fallback monorepo kind.
type ProberRegistry struct {
	ordered []Prober
}

// NewProberRegistry creates a registry with the built-in probers.
func NewProberRegistry() *ProberRegistry {
	registry := &ProberRegistry{}
	registry.Register(&pnpmProber{})
	registry.Register(&lernaProber{})
	registry.Register(&denoProber{})
	registry.Register(&bunProber{})
	registry.Register(&yarnProber{})
	registry.Register(&npmProber{})
	return registry
}

// Register appends a prober at the end of the detection order.
func (r *ProberRegistry) Register(p Prober) {
	r.ordered = append(r.ordered, p)
}

// All returns the probers in detection order.
func (r *ProberRegistry) All() []Prober {
	return append([]Prober(nil), r.ordered...)
}

// Names returns the workspace kinds the registry can detect.
func (r *ProberRegistry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, prober := range r.ordered {
		names = append(names, string(prober.Kind()))
	}
	return names
}

// Classification is the probe result for one root directory.
type Classification struct {
	Kind         entities.WorkspaceKind
	Globs        []string
	RootManifest *entities.Manifest // nil when the root carries no package.json
}

// Classify determines the workspace kind of a root directory. A root with
// a manifest but no matching monorepo layout is a single package; a root
// with neither fails with an invalid-workspace-root error.
func (r *ProberRegistry) Classify(root string) (*Classification, error) {
	rootManifest, err := readManifestIfPresent(filepath.Join(root, entities.ManifestFileName))
	if err != nil {
		return nil, err
	}

	for _, prober := range r.ordered {
		if !prober.Detect(root, rootManifest) {
			continue
		}
		globs, err := prober.Globs(root, rootManifest)
		if err != nil {
			return nil, err
		}
		logger.Debugf("[workspace] classified %s as %s (%d patterns)", root, prober.Kind(), len(globs))
		return &Classification{Kind: prober.Kind(), Globs: globs, RootManifest: rootManifest}, nil
	}

	if rootManifest != nil {
		return &Classification{Kind: entities.WorkspaceSinglePackage, RootManifest: rootManifest}, nil
	}
	return nil, entities.NewInvalidWorkspaceRoot(root)
}

func readManifestIfPresent(path string) (*entities.Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, entities.NewIOError("read", path, err)
	}
	return entities.ParseManifest(path, data)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func managerIs(rootManifest *entities.Manifest, name string) bool {
	if rootManifest == nil {
		return false
	}
	return strings.HasPrefix(rootManifest.PackageManager(), name+"@")
}

// --- pnpm ---

const pnpmWorkspaceFile = "pnpm-workspace.yaml"

type pnpmProber struct{}

func (p *pnpmProber) Kind() entities.WorkspaceKind { return entities.WorkspacePnpm }

func (p *pnpmProber) Detect(root string, _ *entities.Manifest) bool {
	return fileExists(filepath.Join(root, pnpmWorkspaceFile))
}

func (p *pnpmProber) Globs(root string, _ *entities.Manifest) ([]string, error) {
	path := filepath.Join(root, pnpmWorkspaceFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, entities.NewIOError("read", path, err)
	}
	var config struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, entities.NewConfigError("failed to parse "+pnpmWorkspaceFile, err)
	}
	return config.Packages, nil
}

// --- lerna ---

const lernaConfigFile = "lerna.json"

type lernaProber struct{}

func (p *lernaProber) Kind() entities.WorkspaceKind { return entities.WorkspaceLerna }

func (p *lernaProber) Detect(root string, _ *entities.Manifest) bool {
	return fileExists(filepath.Join(root, lernaConfigFile))
}

func (p *lernaProber) Globs(root string, rootManifest *entities.Manifest) ([]string, error) {
	path := filepath.Join(root, lernaConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, entities.NewIOError("read", path, err)
	}
	var config struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, entities.NewConfigError("failed to parse "+lernaConfigFile, err)
	}
	if len(config.Packages) > 0 {
		return config.Packages, nil
	}
	// lerna defers to package.json workspaces when its own list is empty,
	// defaulting to packages/* otherwise.
	if rootManifest != nil && len(rootManifest.WorkspaceGlobs()) > 0 {
		return rootManifest.WorkspaceGlobs(), nil
	}
	return []string{"packages/*"}, nil
}

// --- deno ---

type denoProber struct{}

func (p *denoProber) Kind() entities.WorkspaceKind { return entities.WorkspaceDeno }

func (p *denoProber) Detect(root string, _ *entities.Manifest) bool {
	return fileExists(filepath.Join(root, "deno.json")) || fileExists(filepath.Join(root, "deno.jsonc"))
}

// Globs reads the "workspace" array from deno.json. The jsonc variant is
// detected but not parsed; members there are loaded only via package.json
// compatibility manifests.
func (p *denoProber) Globs(root string, _ *entities.Manifest) ([]string, error) {
	path := filepath.Join(root, "deno.json")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warnf("[workspace] deno.jsonc is not parsed; declare workspace members in deno.json")
		return nil, nil
	}
	if err != nil {
		return nil, entities.NewIOError("read", path, err)
	}
	var config struct {
		Workspace []string `json:"workspace"`
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, entities.NewConfigError("failed to parse deno.json", err)
	}
	return config.Workspace, nil
}

// --- bun ---

type bunProber struct{}

func (p *bunProber) Kind() entities.WorkspaceKind { return entities.WorkspaceBun }

func (p *bunProber) Detect(root string, rootManifest *entities.Manifest) bool {
	if rootManifest == nil || len(rootManifest.WorkspaceGlobs()) == 0 {
		return false
	}
	return fileExists(filepath.Join(root, "bun.lockb")) ||
		fileExists(filepath.Join(root, "bun.lock")) ||
		managerIs(rootManifest, "bun")
}

func (p *bunProber) Globs(_ string, rootManifest *entities.Manifest) ([]string, error) {
	return rootManifest.WorkspaceGlobs(), nil
}

// --- yarn ---

type yarnProber struct{}

func (p *yarnProber) Kind() entities.WorkspaceKind { return entities.WorkspaceYarn }

func (p *yarnProber) Detect(root string, rootManifest *entities.Manifest) bool {
	if rootManifest == nil || len(rootManifest.WorkspaceGlobs()) == 0 {
		return false
	}
	return fileExists(filepath.Join(root, "yarn.lock")) || managerIs(rootManifest, "yarn")
}

func (p *yarnProber) Globs(_ string, rootManifest *entities.Manifest) ([]string, error) {
	return rootManifest.WorkspaceGlobs(), nil
}

// --- npm ---

type npmProber struct{}

func (p *npmProber) Kind() entities.WorkspaceKind { return entities.WorkspaceNpm }

func (p *npmProber) Detect(_ string, rootManifest *entities.Manifest) bool {
	return rootManifest != nil && len(rootManifest.WorkspaceGlobs()) > 0
}

func (p *npmProber) Globs(_ string, rootManifest *entities.Manifest) ([]string, error) {
	return rootManifest.WorkspaceGlobs(), nil
}
