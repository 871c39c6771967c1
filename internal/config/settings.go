// Package config loads and validates the relforge settings file. A single
// repo.config.{toml,json,yaml,yml} at the workspace root configures every
// subsystem; a missing file yields pure defaults so the tool works out of
// the box on any repository.
package config

import (
	"errors"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// ConfigName is the settings file base name, resolved against the
// workspace root with any of the supported extensions.
const ConfigName = "repo.config"

// envPrefix namespaces environment overrides, e.g. RELFORGE_UPGRADE_CONCURRENCY.
const envPrefix = "RELFORGE"

// ChangesetSettings configures the pending and history partitions.
type ChangesetSettings struct {
	Path                  string   `mapstructure:"path"`
	HistoryPath           string   `mapstructure:"history_path"`
	AvailableEnvironments []string `mapstructure:"available_environments"`
}

// VersionSettings configures the version engine.
type VersionSettings struct {
	ReleaseBranches              []string `mapstructure:"release_branches"`
	AllowSnapshotOnReleaseBranch bool     `mapstructure:"allow_snapshot_on_release_branch"`
	SnapshotHashLength           int      `mapstructure:"snapshot_hash_length"`
	PropagationBump              string   `mapstructure:"propagation_bump"`
	MaxPropagationDepth          int      `mapstructure:"max_propagation_depth"`
	IncludeDevDependencies       bool     `mapstructure:"include_dev_dependencies"`
}

// DependencySettings selects which manifest maps participate in propagation.
type DependencySettings struct {
	Kinds []string `mapstructure:"kinds"`
}

// UpgradeSettings configures the upgrade planner and its registry client.
type UpgradeSettings struct {
	Concurrency    int      `mapstructure:"concurrency"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	RegistryURL    string   `mapstructure:"registry_url"`
	AllowMajor     bool     `mapstructure:"allow_major"`
	AllowMinor     bool     `mapstructure:"allow_minor"`
	AllowPatch     bool     `mapstructure:"allow_patch"`
	IncludeKinds   []string `mapstructure:"include_kinds"`
	AutoChangeset  bool     `mapstructure:"auto_changeset"`
	ChangesetBump  string   `mapstructure:"changeset_bump"`
}

// ChangelogSettings configures collection filters and rendering.
type ChangelogSettings struct {
	Filename              string   `mapstructure:"filename"`
	Format                string   `mapstructure:"format"`
	CustomTemplate        string   `mapstructure:"custom_template"`
	CustomVersionTemplate string   `mapstructure:"custom_version_template"`
	CustomSectionTemplate string   `mapstructure:"custom_section_template"`
	CustomHeader          string   `mapstructure:"custom_header"`
	ExcludePatterns       []string `mapstructure:"exclude_patterns"`
	ExcludeAuthors        []string `mapstructure:"exclude_authors"`
}

// GitSettings configures tag formats. Both templates must contain {version};
// the package template additionally supports {name}.
type GitSettings struct {
	VersionTagFormat string `mapstructure:"version_tag_format"`
	RootTagFormat    string `mapstructure:"root_tag_format"`
}

// AuditSettings configures health-score weights and category multipliers.
type AuditSettings struct {
	WeightCritical         float64 `mapstructure:"weight_critical"`
	WeightWarning          float64 `mapstructure:"weight_warning"`
	WeightInfo             float64 `mapstructure:"weight_info"`
	MultiplierSecurity     float64 `mapstructure:"multiplier_security"`
	MultiplierBreaking     float64 `mapstructure:"multiplier_breaking"`
	MultiplierDependencies float64 `mapstructure:"multiplier_dependencies"`
	MultiplierUpgrades     float64 `mapstructure:"multiplier_upgrades"`
}

// Settings is the complete relforge configuration.
type Settings struct {
	Changeset  ChangesetSettings  `mapstructure:"changeset"`
	Version    VersionSettings    `mapstructure:"version"`
	Dependency DependencySettings `mapstructure:"dependency"`
	Upgrade    UpgradeSettings    `mapstructure:"upgrade"`
	Changelog  ChangelogSettings  `mapstructure:"changelog"`
	Git        GitSettings        `mapstructure:"git"`
	Audit      AuditSettings      `mapstructure:"audit"`
}

// Load resolves the settings for a workspace root. The file is optional;
// when present it must parse and validate and a malformed file is a
// configuration error, not a silent fallback.
func Load(root string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.AddConfigPath(root)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, entities.NewConfigError("failed to read configuration file", err)
		}
		logger.Debugf("[config] no %s.* in %s, using defaults", ConfigName, root)
	} else {
		logger.Debugf("[config] using configuration file %s", v.ConfigFileUsed())
	}

	settings := &Settings{}
	if unmarshalErr := v.Unmarshal(settings); unmarshalErr != nil {
		return nil, entities.NewConfigError("failed to decode configuration", unmarshalErr)
	}
	if validateErr := settings.Validate(); validateErr != nil {
		return nil, validateErr
	}
	return settings, nil
}

// Default returns the built-in settings, the same ones Load yields when no
// configuration file exists.
func Default() *Settings {
	v := viper.New()
	setDefaults(v)
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		panic(err) // defaults are static and always decode
	}
	return settings
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("changeset.path", ".changesets")
	v.SetDefault("changeset.history_path", ".changesets/history")
	v.SetDefault("changeset.available_environments", []string{"development", "staging", "production"})

	v.SetDefault("version.release_branches", []string{"main", "master"})
	v.SetDefault("version.allow_snapshot_on_release_branch", false)
	v.SetDefault("version.snapshot_hash_length", entities.DefaultShortHashLength)
	v.SetDefault("version.propagation_bump", "patch")
	v.SetDefault("version.max_propagation_depth", 100)
	v.SetDefault("version.include_dev_dependencies", false)

	v.SetDefault("dependency.kinds", []string{
		string(entities.KindRegular), string(entities.KindPeer),
	})

	v.SetDefault("upgrade.concurrency", 10)
	v.SetDefault("upgrade.timeout_seconds", 30)
	v.SetDefault("upgrade.registry_url", "https://registry.npmjs.org")
	v.SetDefault("upgrade.allow_major", true)
	v.SetDefault("upgrade.allow_minor", true)
	v.SetDefault("upgrade.allow_patch", true)
	v.SetDefault("upgrade.include_kinds", []string{
		string(entities.KindRegular), string(entities.KindDev),
	})
	v.SetDefault("upgrade.auto_changeset", false)
	v.SetDefault("upgrade.changeset_bump", "patch")

	v.SetDefault("changelog.filename", "CHANGELOG.md")
	v.SetDefault("changelog.format", "keepachangelog")
	v.SetDefault("changelog.custom_template", "")
	v.SetDefault("changelog.custom_version_template", "")
	v.SetDefault("changelog.custom_section_template", "")
	v.SetDefault("changelog.custom_header", "")
	v.SetDefault("changelog.exclude_patterns", []string{"^chore", "^Merge "})
	v.SetDefault("changelog.exclude_authors", []string{})

	v.SetDefault("git.version_tag_format", "{name}@{version}")
	v.SetDefault("git.root_tag_format", "v{version}")

	v.SetDefault("audit.weight_critical", 15.0)
	v.SetDefault("audit.weight_warning", 5.0)
	v.SetDefault("audit.weight_info", 1.0)
	v.SetDefault("audit.multiplier_security", 1.5)
	v.SetDefault("audit.multiplier_breaking", 1.3)
	v.SetDefault("audit.multiplier_dependencies", 1.2)
	v.SetDefault("audit.multiplier_upgrades", 0.8)
}

// IsReleaseBranch reports whether the branch produces full releases rather
// than snapshot versions.
func (s *Settings) IsReleaseBranch(branch string) bool {
	for _, release := range s.Version.ReleaseBranches {
		if branch == release {
			return true
		}
	}
	return false
}

// PropagationBump returns the parsed bump applied to internal dependents.
func (s *Settings) PropagationBump() entities.Bump {
	bump, err := entities.ParseBump(s.Version.PropagationBump)
	if err != nil {
		return entities.BumpPatch // enforced valid by Validate
	}
	return bump
}

// UpgradeChangesetBump returns the parsed bump for auto-created changesets.
func (s *Settings) UpgradeChangesetBump() entities.Bump {
	bump, err := entities.ParseBump(s.Upgrade.ChangesetBump)
	if err != nil {
		return entities.BumpPatch
	}
	return bump
}

// PropagationKinds returns the dependency kinds that participate in
// propagation and cycle detection. Dev dependencies join only when
// version.include_dev_dependencies is set.
func (s *Settings) PropagationKinds() []entities.DependencyKind {
	kinds := make([]entities.DependencyKind, 0, len(s.Dependency.Kinds)+1)
	for _, raw := range s.Dependency.Kinds {
		kind, err := entities.ParseDependencyKind(raw)
		if err != nil {
			continue // enforced valid by Validate
		}
		kinds = append(kinds, kind)
	}
	if s.Version.IncludeDevDependencies && !containsKind(kinds, entities.KindDev) {
		kinds = append(kinds, entities.KindDev)
	}
	return kinds
}

// UpgradeKinds returns the dependency kinds the upgrade planner inspects.
func (s *Settings) UpgradeKinds() []entities.DependencyKind {
	kinds := make([]entities.DependencyKind, 0, len(s.Upgrade.IncludeKinds))
	for _, raw := range s.Upgrade.IncludeKinds {
		kind, err := entities.ParseDependencyKind(raw)
		if err != nil {
			continue
		}
		kinds = append(kinds, kind)
	}
	return kinds
}

// UpgradeTimeout returns the per-query registry timeout.
func (s *Settings) UpgradeTimeout() time.Duration {
	return time.Duration(s.Upgrade.TimeoutSeconds) * time.Second
}

// TagFormatFor picks the tag template for a workspace kind: the package
// template for monorepos, the root template for single-package repositories.
func (s *Settings) TagFormatFor(kind entities.WorkspaceKind) string {
	if kind.IsMonorepo() {
		return s.Git.VersionTagFormat
	}
	return s.Git.RootTagFormat
}

func containsKind(kinds []entities.DependencyKind, kind entities.DependencyKind) bool {
	for _, candidate := range kinds {
		if candidate == kind {
			return true
		}
	}
	return false
}
