package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// Init is the interface for the init command.
type Init interface {
	Execute(ctx context.Context, opts InitOptions) error
}

// InitOptions holds the runtime options for scaffolding.
type InitOptions struct {
	Root string
}

// InitCommand scaffolds the relforge layout: a commented configuration file
// with the built-in defaults and the two changeset directories.
type InitCommand struct{}

// NewInitCommand creates the command.
func NewInitCommand() *InitCommand {
	return &InitCommand{}
}

// Execute writes repo.config.yaml and the changeset directories. It refuses
// to overwrite an existing configuration in any supported format.
func (it *InitCommand) Execute(_ context.Context, opts InitOptions) error {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return entities.NewIOError("resolve", opts.Root, err)
	}
	for _, extension := range []string{"toml", "json", "yaml", "yml"} {
		path := filepath.Join(root, config.ConfigName+"."+extension)
		if _, statErr := os.Stat(path); statErr == nil {
			return entities.NewConfigError(fmt.Sprintf("configuration already exists at %s", path), nil)
		}
	}

	configPath := filepath.Join(root, config.ConfigName+".yaml")
	if writeErr := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); writeErr != nil {
		return entities.NewIOError("write", configPath, writeErr)
	}

	settings := config.Default()
	for _, dir := range []string{settings.Changeset.Path, settings.Changeset.HistoryPath} {
		target := filepath.Join(root, dir)
		if mkdirErr := os.MkdirAll(target, 0o755); mkdirErr != nil {
			return entities.NewIOError("mkdir", target, mkdirErr)
		}
		keep := filepath.Join(target, ".gitkeep")
		if writeErr := os.WriteFile(keep, nil, 0o644); writeErr != nil {
			return entities.NewIOError("write", keep, writeErr)
		}
	}

	logger.Infof("[init] wrote %s and created the changeset directories", configPath)
	return nil
}

// defaultConfigYAML mirrors the defaults in config.setDefaults. Every value
// here matches what the tool uses when no file exists, so a fresh scaffold
// changes nothing until edited.
const defaultConfigYAML = `# relforge configuration. Every value below is the built-in default; delete
# what you do not change. Environment variables override the file, e.g.
# RELFORGE_UPGRADE_CONCURRENCY=4.

changeset:
  path: .changesets
  history_path: .changesets/history
  available_environments:
    - development
    - staging
    - production

version:
  # Branches that produce full releases; everything else gets snapshots.
  release_branches:
    - main
    - master
  allow_snapshot_on_release_branch: false
  snapshot_hash_length: 7
  # Bump applied to internal dependents of a released package.
  propagation_bump: patch
  max_propagation_depth: 100
  include_dev_dependencies: false

dependency:
  # Kinds that propagate version bumps and participate in cycle detection.
  kinds:
    - dependencies
    - peerDependencies

upgrade:
  concurrency: 10
  timeout_seconds: 30
  registry_url: https://registry.npmjs.org
  allow_major: true
  allow_minor: true
  allow_patch: true
  include_kinds:
    - dependencies
    - devDependencies
  # Fold applied upgrades into the branch changeset automatically.
  auto_changeset: false
  changeset_bump: patch

changelog:
  filename: CHANGELOG.md
  # keepachangelog, conventional or custom.
  format: keepachangelog
  custom_template: ""
  custom_version_template: ""
  custom_section_template: ""
  custom_header: ""
  exclude_patterns:
    - "^chore"
    - "^Merge "
  exclude_authors: []

git:
  version_tag_format: "{name}@{version}"
  root_tag_format: "v{version}"

audit:
  weight_critical: 15.0
  weight_warning: 5.0
  weight_info: 1.0
  multiplier_security: 1.5
  multiplier_breaking: 1.3
  multiplier_dependencies: 1.2
  multiplier_upgrades: 0.8
`
