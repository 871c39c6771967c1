// Package upgrade plans and applies dependency upgrades against a package
// registry. Classification works on raw version strings so it tolerates
// the loose payloads found in manifest specs.
package upgrade

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// Class partitions an upgrade by the version component it crosses.
type Class int

const (
	ClassNone Class = iota
	ClassPatch
	ClassMinor
	ClassMajor
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassMajor:
		return "major"
	case ClassMinor:
		return "minor"
	case ClassPatch:
		return "patch"
	default:
		return "none"
	}
}

// Bump maps an upgrade class to the changeset bump it would justify.
func (c Class) Bump() entities.Bump {
	switch c {
	case ClassMajor:
		return entities.BumpMajor
	case ClassMinor:
		return entities.BumpMinor
	case ClassPatch:
		return entities.BumpPatch
	default:
		return entities.BumpNone
	}
}

// VersionDiff describes one dependency's distance from the registry.
type VersionDiff struct {
	Current   string
	Available string
	Class     Class
}

// IsNewer reports whether candidate is newer than current. Valid semver
// pairs compare by precedence; anything else falls back to string order.
func IsNewer(current, candidate string) bool {
	currentNorm := normalizeVersion(current)
	candidateNorm := normalizeVersion(candidate)
	if semver.IsValid(currentNorm) && semver.IsValid(candidateNorm) {
		return semver.Compare(candidateNorm, currentNorm) > 0
	}
	return candidate > current
}

// AnalyzeDiff classifies the jump between two version strings. A candidate
// that is not strictly newer, or a pair that does not parse, yields
// ClassNone.
func AnalyzeDiff(current, available string) VersionDiff {
	diff := VersionDiff{Current: current, Available: available}

	currentNorm := normalizeVersion(current)
	availableNorm := normalizeVersion(available)
	if !semver.IsValid(currentNorm) || !semver.IsValid(availableNorm) {
		return diff
	}
	if semver.Compare(availableNorm, currentNorm) <= 0 {
		return diff
	}

	if semver.Major(currentNorm) != semver.Major(availableNorm) {
		diff.Class = ClassMajor
		return diff
	}
	if minorComponent(currentNorm) != minorComponent(availableNorm) {
		diff.Class = ClassMinor
		return diff
	}
	diff.Class = ClassPatch
	return diff
}

// Allowed reports whether the class passes the caller's filter flags.
// ClassNone never passes; there is nothing to apply.
func (c Class) Allowed(major, minor, patch bool) bool {
	switch c {
	case ClassMajor:
		return major
	case ClassMinor:
		return minor
	case ClassPatch:
		return patch
	default:
		return false
	}
}

// normalizeVersion ensures the 'v' prefix golang.org/x/mod/semver expects.
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// minorComponent extracts the minor number; x/mod/semver has no Minor.
func minorComponent(normalized string) string {
	parts := strings.Split(strings.TrimPrefix(semver.Canonical(normalized), "v"), ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
