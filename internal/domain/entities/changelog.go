package entities

import "time"

// SectionKind orders changelog sections by priority. Lower is rendered first.
type SectionKind int

const (
	SectionBreaking SectionKind = iota
	SectionFeatures
	SectionFixes
	SectionPerformance
	SectionDeprecations
	SectionDocumentation
	SectionRefactoring
	SectionBuild
	SectionCI
	SectionTests
	SectionOther
)

// AllSectionKinds lists the sections in render order.
func AllSectionKinds() []SectionKind {
	return []SectionKind{
		SectionBreaking,
		SectionFeatures,
		SectionFixes,
		SectionPerformance,
		SectionDeprecations,
		SectionDocumentation,
		SectionRefactoring,
		SectionBuild,
		SectionCI,
		SectionTests,
		SectionOther,
	}
}

// Title returns the section heading.
func (k SectionKind) Title() string {
	switch k {
	case SectionBreaking:
		return "Breaking Changes"
	case SectionFeatures:
		return "Features"
	case SectionFixes:
		return "Fixes"
	case SectionPerformance:
		return "Performance"
	case SectionDeprecations:
		return "Deprecations"
	case SectionDocumentation:
		return "Documentation"
	case SectionRefactoring:
		return "Refactoring"
	case SectionBuild:
		return "Build"
	case SectionCI:
		return "CI"
	case SectionTests:
		return "Tests"
	default:
		return "Other"
	}
}

// SectionForType maps a conventional commit type to its section. Breaking
// commits always land in the Breaking section regardless of type.
func SectionForType(commitType string, breaking bool) SectionKind {
	if breaking {
		return SectionBreaking
	}
	switch commitType {
	case "feat":
		return SectionFeatures
	case "fix":
		return SectionFixes
	case "perf":
		return SectionPerformance
	case "deprecate":
		return SectionDeprecations
	case "docs":
		return SectionDocumentation
	case "refactor":
		return SectionRefactoring
	case "build":
		return SectionBuild
	case "ci":
		return SectionCI
	case "test":
		return SectionTests
	default:
		return SectionOther
	}
}

// ChangelogEntry is one commit rendered into a changelog.
type ChangelogEntry struct {
	Description string
	CommitHash  string
	ShortHash   string
	CommitType  string // empty when the message was not conventional
	Scope       string
	Breaking    bool
	Author      string
	References  []string
	Date        time.Time
}

// ChangelogSection groups entries under one heading, newest first.
type ChangelogSection struct {
	Kind    SectionKind
	Entries []ChangelogEntry
}

// Changelog is the collected history for one release of one package
// (or of the repository root when PackageName is empty).
type Changelog struct {
	PackageName string
	Version     Version
	Date        time.Time
	FromRef     string
	ToRef       string
	Sections    []ChangelogSection
}

// EntryCount returns the total number of entries across sections.
func (c *Changelog) EntryCount() int {
	total := 0
	for _, section := range c.Sections {
		total += len(section.Entries)
	}
	return total
}
