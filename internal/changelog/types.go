// Package changelog collects commit history between two release points and
// renders it as markdown. Collection walks git through the repository
// abstraction; rendering supports Keep-a-Changelog, conventional-changelog
// and fully custom templates.
package changelog

import (
	"time"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// Supported render formats.
const (
	FormatKeepAChangelog = "keepachangelog"
	FormatConventional   = "conventional"
	FormatCustom         = "custom"
)

// Options configure one collection run.
type Options struct {
	// Package scopes the collection to one workspace member; empty means
	// the repository root.
	Package string

	// PathFilter restricts the commit walk to a directory, usually the
	// package directory relative to the repository root.
	PathFilter string

	// FromRef and ToRef bound the commit range (FromRef, ToRef]. An empty
	// FromRef triggers tag discovery; an empty ToRef means HEAD.
	FromRef string
	ToRef   string

	// Version is the version the collected entries will be released as.
	// Tag discovery picks the newest tag strictly below it; a zero version
	// lifts the ceiling.
	Version entities.Version

	// Date stamps the rendered release heading.
	Date time.Time

	// TagFormat is the template tags are parsed through during discovery.
	TagFormat string

	ExcludePatterns []string
	ExcludeAuthors  []string
	ShortHashLength int
}

// RenderOptions select the output format and its templates. The template
// fields apply to FormatCustom only; empty ones fall back to the
// Keep-a-Changelog shapes.
type RenderOptions struct {
	Format          string
	Header          string
	VersionTemplate string
	SectionTemplate string
	EntryTemplate   string
}
