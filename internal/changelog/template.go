package changelog

import (
	"strings"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// dateLayout stamps release headings.
const dateLayout = "2006-01-02"

// expand replaces {placeholder} occurrences with their values. Unknown
// placeholders stay verbatim so typos surface in the output.
func expand(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for name, value := range values {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// versionValues are the placeholders available on version lines.
func versionValues(log *entities.Changelog) map[string]string {
	return map[string]string{
		"version": log.Version.String(),
		"date":    log.Date.Format(dateLayout),
		"package": log.PackageName,
	}
}

// sectionValues add the section heading placeholders.
func sectionValues(log *entities.Changelog, section entities.ChangelogSection) map[string]string {
	values := versionValues(log)
	values["title"] = section.Kind.Title()
	values["section"] = section.Kind.Title()
	return values
}

// entryValues add the per-commit placeholders.
func entryValues(log *entities.Changelog, section entities.ChangelogSection, entry entities.ChangelogEntry) map[string]string {
	breaking := ""
	if entry.Breaking {
		breaking = "BREAKING"
	}
	values := sectionValues(log, section)
	values["description"] = entry.Description
	values["hash"] = entry.CommitHash
	values["short_hash"] = entry.ShortHash
	values["author"] = entry.Author
	values["type"] = entry.CommitType
	values["scope"] = entry.Scope
	values["references"] = strings.Join(entry.References, ", ")
	values["breaking"] = breaking
	return values
}
