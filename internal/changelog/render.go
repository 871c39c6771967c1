package changelog

import (
	"fmt"
	"strings"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// defaultHeader starts changelog files created from scratch.
const defaultHeader = `# Changelog

All notable changes to this project will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.1.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).
`

// Default templates for the custom format when individual pieces are left
// unset.
const (
	defaultVersionTemplate = "## [{version}] - {date}"
	defaultSectionTemplate = "### {title}"
	defaultEntryTemplate   = "- {description} ({short_hash})"
)

// Render produces the markdown block for one release, ending with a single
// trailing newline and no blank line after the last entry.
func Render(log *entities.Changelog, opts RenderOptions) (string, error) {
	switch opts.Format {
	case FormatKeepAChangelog, "":
		return renderBlock(log,
			defaultVersionTemplate,
			defaultSectionTemplate,
			keepAChangelogEntry), nil
	case FormatConventional:
		return renderBlock(log,
			"# {version} ({date})",
			defaultSectionTemplate,
			conventionalEntry), nil
	case FormatCustom:
		return renderBlock(log,
			orDefault(opts.VersionTemplate, defaultVersionTemplate),
			orDefault(opts.SectionTemplate, defaultSectionTemplate),
			templateEntry(orDefault(opts.EntryTemplate, defaultEntryTemplate))), nil
	default:
		return "", entities.NewConfigError(fmt.Sprintf("unknown changelog format %q", opts.Format), nil)
	}
}

// Header returns the text new changelog files start with.
func Header(opts RenderOptions) string {
	if opts.Header != "" {
		return opts.Header
	}
	return defaultHeader
}

// HeadingPrefix identifies release headings in an existing file, used to
// locate the insertion point for a new block.
func HeadingPrefix(opts RenderOptions) string {
	switch opts.Format {
	case FormatConventional:
		return "# "
	case FormatCustom:
		template := orDefault(opts.VersionTemplate, defaultVersionTemplate)
		prefix, _, _ := strings.Cut(template, "{")
		if strings.TrimSpace(prefix) != "" {
			return prefix
		}
	}
	return "## ["
}

// entryRenderer turns one entry into its bullet line.
type entryRenderer func(log *entities.Changelog, section entities.ChangelogSection, entry entities.ChangelogEntry) string

func renderBlock(log *entities.Changelog, versionTemplate, sectionTemplate string, renderEntry entryRenderer) string {
	var b strings.Builder
	b.WriteString(expand(versionTemplate, versionValues(log)))
	b.WriteString("\n")
	for _, section := range log.Sections {
		b.WriteString("\n")
		b.WriteString(expand(sectionTemplate, sectionValues(log, section)))
		b.WriteString("\n\n")
		for _, entry := range section.Entries {
			b.WriteString(renderEntry(log, section, entry))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func keepAChangelogEntry(_ *entities.Changelog, _ entities.ChangelogSection, entry entities.ChangelogEntry) string {
	var b strings.Builder
	b.WriteString("- ")
	if entry.Scope != "" {
		b.WriteString("**" + entry.Scope + "**: ")
	}
	b.WriteString(entry.Description)
	if len(entry.References) > 0 {
		b.WriteString(" (" + strings.Join(entry.References, ", ") + ")")
	}
	if entry.ShortHash != "" {
		b.WriteString(" (" + entry.ShortHash + ")")
	}
	return b.String()
}

func conventionalEntry(_ *entities.Changelog, _ entities.ChangelogSection, entry entities.ChangelogEntry) string {
	var b strings.Builder
	b.WriteString("* ")
	if entry.Scope != "" {
		b.WriteString("**" + entry.Scope + ":** ")
	}
	b.WriteString(entry.Description)
	if entry.ShortHash != "" {
		b.WriteString(" (" + entry.ShortHash + ")")
	}
	return b.String()
}

func templateEntry(template string) entryRenderer {
	return func(log *entities.Changelog, section entities.ChangelogSection, entry entities.ChangelogEntry) string {
		return expand(template, entryValues(log, section, entry))
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
