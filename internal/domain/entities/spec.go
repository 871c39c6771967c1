package entities

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// specPrefixRunes are the range operators that survive a payload rewrite.
var specPrefixRunes = map[rune]bool{'^': true, '~': true, '>': true, '=': true}

// workspaceProtocol marks pnpm/yarn workspace-internal dependency specs.
const workspaceProtocol = "workspace:"

// SplitSpecPrefix splits a dependency spec into its leading operator run
// ("^", "~", ">=", ">", "=" or empty) and the remaining payload.
func SplitSpecPrefix(spec string) (prefix, payload string) {
	for i, r := range spec {
		if !specPrefixRunes[r] {
			return spec[:i], spec[i:]
		}
	}
	return spec, ""
}

// IsSemverResolvable reports whether the spec carries a numeric version
// payload that a rewrite may replace. Protocol specs (workspace:, file:,
// git+https:, link:) and wildcard specs ("*", "latest") are not resolvable.
func IsSemverResolvable(spec string) bool {
	spec = strings.TrimSpace(spec)
	if rest, ok := strings.CutPrefix(spec, workspaceProtocol); ok {
		return IsSemverResolvable(rest)
	}
	if strings.Contains(spec, ":") {
		return false
	}
	_, payload := SplitSpecPrefix(spec)
	if payload == "" {
		return false
	}
	return unicode.IsDigit(rune(payload[0]))
}

// RewriteSpec replaces the version payload of a dependency spec while
// preserving its prefix verbatim. Specs without a resolvable payload
// (workspace:*, file:, git URLs, wildcards) are returned unchanged, so a
// rewrite of those edges is a no-op rather than an error.
func RewriteSpec(oldSpec string, newVersion Version) string {
	if rest, ok := strings.CutPrefix(oldSpec, workspaceProtocol); ok {
		return workspaceProtocol + RewriteSpec(rest, newVersion)
	}
	if !IsSemverResolvable(oldSpec) {
		return oldSpec
	}
	prefix, _ := SplitSpecPrefix(oldSpec)
	return prefix + newVersion.String()
}

// SpecVersion extracts the declared version from a resolvable spec,
// coercing partial versions such as ">=1.2" to "1.2.0". The second return
// is false when the spec has no extractable version.
func SpecVersion(spec string) (Version, bool) {
	if rest, ok := strings.CutPrefix(strings.TrimSpace(spec), workspaceProtocol); ok {
		return SpecVersion(rest)
	}
	if !IsSemverResolvable(spec) {
		return Version{}, false
	}
	_, payload := SplitSpecPrefix(spec)
	parsed, err := semver.NewVersion(strings.TrimSpace(payload))
	if err != nil {
		return Version{}, false
	}
	return Version{v: parsed}, true
}

// DependencyKind identifies which manifest map declares an edge.
type DependencyKind string

const (
	KindRegular  DependencyKind = "dependencies"
	KindDev      DependencyKind = "devDependencies"
	KindPeer     DependencyKind = "peerDependencies"
	KindOptional DependencyKind = "optionalDependencies"
)

// AllDependencyKinds lists the four manifest maps in their conventional order.
func AllDependencyKinds() []DependencyKind {
	return []DependencyKind{KindRegular, KindDev, KindPeer, KindOptional}
}

// ParseDependencyKind converts a manifest key into a DependencyKind.
func ParseDependencyKind(raw string) (DependencyKind, error) {
	switch DependencyKind(raw) {
	case KindRegular, KindDev, KindPeer, KindOptional:
		return DependencyKind(raw), nil
	default:
		return "", fmt.Errorf("unknown dependency kind %q", raw)
	}
}

// String returns the manifest key for the kind.
func (k DependencyKind) String() string { return string(k) }
