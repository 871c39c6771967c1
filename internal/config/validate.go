package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// rule is one declarative validation check: a field path for the message,
// a predicate over the settings, and the violation text.
type rule struct {
	field   string
	valid   func(*Settings) bool
	message string
}

// rules lists every validation check in evaluation order. Violations are
// aggregated so a broken file reports all of its problems at once.
var rules = []rule{
	{
		field:   "changeset.path",
		valid:   func(s *Settings) bool { return strings.TrimSpace(s.Changeset.Path) != "" },
		message: "must not be empty",
	},
	{
		field:   "changeset.history_path",
		valid:   func(s *Settings) bool { return strings.TrimSpace(s.Changeset.HistoryPath) != "" },
		message: "must not be empty",
	},
	{
		field:   "changeset.history_path",
		valid:   func(s *Settings) bool { return s.Changeset.HistoryPath != s.Changeset.Path },
		message: "must differ from changeset.path",
	},
	{
		field:   "changeset.available_environments",
		valid:   func(s *Settings) bool { return allNonEmpty(s.Changeset.AvailableEnvironments) },
		message: "entries must not be empty",
	},
	{
		field:   "version.release_branches",
		valid:   func(s *Settings) bool { return len(s.Version.ReleaseBranches) > 0 },
		message: "must name at least one branch",
	},
	{
		field: "version.snapshot_hash_length",
		valid: func(s *Settings) bool {
			return s.Version.SnapshotHashLength >= 1 && s.Version.SnapshotHashLength <= 40
		},
		message: "must be between 1 and 40",
	},
	{
		field:   "version.propagation_bump",
		valid:   func(s *Settings) bool { return validBump(s.Version.PropagationBump) },
		message: "must be major, minor, patch or none",
	},
	{
		field:   "version.max_propagation_depth",
		valid:   func(s *Settings) bool { return s.Version.MaxPropagationDepth > 0 },
		message: "must be greater than zero",
	},
	{
		field:   "dependency.kinds",
		valid:   func(s *Settings) bool { return len(s.Dependency.Kinds) > 0 },
		message: "must name at least one dependency kind",
	},
	{
		field:   "dependency.kinds",
		valid:   func(s *Settings) bool { return allValidKinds(s.Dependency.Kinds) },
		message: "entries must be manifest dependency maps",
	},
	{
		field:   "upgrade.concurrency",
		valid:   func(s *Settings) bool { return s.Upgrade.Concurrency > 0 },
		message: "must be greater than zero",
	},
	{
		field:   "upgrade.timeout_seconds",
		valid:   func(s *Settings) bool { return s.Upgrade.TimeoutSeconds > 0 },
		message: "must be greater than zero",
	},
	{
		field: "upgrade.registry_url",
		valid: func(s *Settings) bool {
			return strings.HasPrefix(s.Upgrade.RegistryURL, "http://") ||
				strings.HasPrefix(s.Upgrade.RegistryURL, "https://")
		},
		message: "must start with http:// or https://",
	},
	{
		field:   "upgrade.include_kinds",
		valid:   func(s *Settings) bool { return allValidKinds(s.Upgrade.IncludeKinds) },
		message: "entries must be manifest dependency maps",
	},
	{
		field:   "upgrade.changeset_bump",
		valid:   func(s *Settings) bool { return validBump(s.Upgrade.ChangesetBump) },
		message: "must be major, minor, patch or none",
	},
	{
		field:   "changelog.filename",
		valid:   func(s *Settings) bool { return strings.TrimSpace(s.Changelog.Filename) != "" },
		message: "must not be empty",
	},
	{
		field: "changelog.format",
		valid: func(s *Settings) bool {
			switch s.Changelog.Format {
			case "keepachangelog", "conventional", "custom":
				return true
			default:
				return false
			}
		},
		message: "must be keepachangelog, conventional or custom",
	},
	{
		field: "changelog.custom_template",
		valid: func(s *Settings) bool {
			return s.Changelog.Format != "custom" || strings.TrimSpace(s.Changelog.CustomTemplate) != ""
		},
		message: "required when changelog.format is custom",
	},
	{
		field:   "changelog.exclude_patterns",
		valid:   func(s *Settings) bool { return allValidPatterns(s.Changelog.ExcludePatterns) },
		message: "entries must be valid regular expressions",
	},
	{
		field:   "git.version_tag_format",
		valid:   func(s *Settings) bool { return strings.Contains(s.Git.VersionTagFormat, "{version}") },
		message: "must contain {version}",
	},
	{
		field:   "git.root_tag_format",
		valid:   func(s *Settings) bool { return strings.Contains(s.Git.RootTagFormat, "{version}") },
		message: "must contain {version}",
	},
	{
		field: "audit",
		valid: func(s *Settings) bool {
			return s.Audit.WeightCritical >= 0 && s.Audit.WeightWarning >= 0 && s.Audit.WeightInfo >= 0
		},
		message: "severity weights must not be negative",
	},
	{
		field: "audit",
		valid: func(s *Settings) bool {
			return s.Audit.MultiplierSecurity >= 0 && s.Audit.MultiplierBreaking >= 0 &&
				s.Audit.MultiplierDependencies >= 0 && s.Audit.MultiplierUpgrades >= 0
		},
		message: "category multipliers must not be negative",
	},
}

// Validate runs every rule and aggregates the violations into a single
// configuration error.
func (s *Settings) Validate() error {
	var violations []string
	for _, r := range rules {
		if !r.valid(s) {
			violations = append(violations, fmt.Sprintf("%s: %s", r.field, r.message))
		}
	}
	if len(violations) > 0 {
		return entities.NewConfigError(
			"invalid configuration: "+strings.Join(violations, "; "), nil,
		)
	}
	return nil
}

func validBump(raw string) bool {
	_, err := entities.ParseBump(raw)
	return err == nil
}

func allValidKinds(raws []string) bool {
	for _, raw := range raws {
		if _, err := entities.ParseDependencyKind(raw); err != nil {
			return false
		}
	}
	return true
}

func allNonEmpty(values []string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return false
		}
	}
	return true
}

func allValidPatterns(patterns []string) bool {
	for _, pattern := range patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return false
		}
	}
	return true
}
