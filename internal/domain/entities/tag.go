package entities

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	versionPlaceholder = "{version}"
	namePlaceholder    = "{name}"

	// semverPattern matches the version payload inside a tag.
	semverPattern = `\d+\.\d+\.\d+(?:-[a-zA-Z0-9.-]+)?(?:\+[a-zA-Z0-9.-]+)?`
)

// VersionTag is a git tag carrying a package version, parsed from a
// configurable format such as "{name}@{version}" or "v{version}".
type VersionTag struct {
	Tag         string
	Version     Version
	PackageName string // empty for root tags
}

// FormatVersionTag renders a tag string from a format template.
func FormatVersionTag(format, packageName string, version Version) string {
	tag := strings.ReplaceAll(format, namePlaceholder, packageName)
	return strings.ReplaceAll(tag, versionPlaceholder, version.String())
}

// TagParser matches tag strings against one format template. The template
// is compiled once: literal characters are escaped, {version} becomes a
// semver capture group and {name} a non-greedy capture group.
type TagParser struct {
	format  string
	re      *regexp.Regexp
	hasName bool
}

// NewTagParser compiles a tag format. The format must contain {version}.
func NewTagParser(format string) (*TagParser, error) {
	if !strings.Contains(format, versionPlaceholder) {
		return nil, fmt.Errorf("tag format %q must contain %s", format, versionPlaceholder)
	}

	var pattern strings.Builder
	pattern.WriteString("^")
	rest := format
	for rest != "" {
		nameAt := strings.Index(rest, namePlaceholder)
		versionAt := strings.Index(rest, versionPlaceholder)
		next, placeholder := nameAt, namePlaceholder
		if nameAt < 0 || (versionAt >= 0 && versionAt < nameAt) {
			next, placeholder = versionAt, versionPlaceholder
		}
		if next < 0 {
			pattern.WriteString(regexp.QuoteMeta(rest))
			break
		}
		pattern.WriteString(regexp.QuoteMeta(rest[:next]))
		if placeholder == namePlaceholder {
			pattern.WriteString(`(?P<name>.+?)`)
		} else {
			pattern.WriteString(`(?P<version>` + semverPattern + `)`)
		}
		rest = rest[next+len(placeholder):]
	}
	pattern.WriteString("$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, fmt.Errorf("failed to compile tag format %q: %w", format, err)
	}
	return &TagParser{
		format:  format,
		re:      re,
		hasName: strings.Contains(format, namePlaceholder),
	}, nil
}

// Format returns the template this parser was compiled from.
func (p *TagParser) Format() string { return p.format }

// HasName reports whether the format embeds a package name.
func (p *TagParser) HasName() bool { return p.hasName }

// Parse matches a tag string, returning false when the tag does not follow
// the format or its version payload is not a valid semver.
func (p *TagParser) Parse(tag string) (VersionTag, bool) {
	match := p.re.FindStringSubmatch(tag)
	if match == nil {
		return VersionTag{}, false
	}
	parsed := VersionTag{Tag: tag}
	for i, group := range p.re.SubexpNames() {
		switch group {
		case "version":
			version, err := ParseVersion(match[i])
			if err != nil {
				return VersionTag{}, false
			}
			parsed.Version = version
		case "name":
			parsed.PackageName = match[i]
		}
	}
	return parsed, true
}

// ParseAll filters a tag list down to the ones matching the format,
// optionally restricted to a single package name.
func (p *TagParser) ParseAll(tags []string, packageName string) []VersionTag {
	var parsed []VersionTag
	for _, tag := range tags {
		versionTag, ok := p.Parse(tag)
		if !ok {
			continue
		}
		if packageName != "" && versionTag.PackageName != packageName {
			continue
		}
		parsed = append(parsed, versionTag)
	}
	return parsed
}
