package changelog

import (
	"context"
	"regexp"
	"sort"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// Collector gathers the commits of one release range and classifies them
// into changelog sections.
type Collector struct {
	git repositories.GitRepository
}

// NewCollector wires a collector over the git abstraction.
func NewCollector(git repositories.GitRepository) *Collector {
	return &Collector{git: git}
}

// Collect resolves the commit range, retrieves and filters the commits and
// groups the surviving entries into priority-ordered sections with entries
// newest first. Output is deterministic for a given repository state.
func (c *Collector) Collect(ctx context.Context, opts Options) (*entities.Changelog, error) {
	excludes, err := compilePatterns(opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	fromRef := opts.FromRef
	if fromRef == "" {
		fromRef, err = c.discoverFromTag(opts)
		if err != nil {
			return nil, err
		}
	}
	logger.Debugf("[changelog] collecting %q commits in (%s, %s]", opts.Package, fromRef, opts.ToRef)

	commits, err := c.git.CommitsBetween(ctx, fromRef, opts.ToRef, opts.PathFilter)
	if err != nil {
		return nil, err
	}

	excludedAuthors := make(map[string]bool, len(opts.ExcludeAuthors))
	for _, author := range opts.ExcludeAuthors {
		excludedAuthors[author] = true
	}

	buckets := make(map[entities.SectionKind][]entities.ChangelogEntry)
	for i := len(commits) - 1; i >= 0; i-- { // newest first
		commit := commits[i]
		if excludedAuthors[commit.AuthorName] || matchesAny(excludes, commit.Message) {
			continue
		}
		entry := classify(commit, opts.ShortHashLength)
		kind := entities.SectionForType(entry.CommitType, entry.Breaking)
		buckets[kind] = append(buckets[kind], entry)
	}

	result := &entities.Changelog{
		PackageName: opts.Package,
		Version:     opts.Version,
		Date:        opts.Date,
		FromRef:     fromRef,
		ToRef:       opts.ToRef,
	}
	for _, kind := range entities.AllSectionKinds() {
		entries := buckets[kind]
		if len(entries) == 0 {
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Date.After(entries[j].Date)
		})
		result.Sections = append(result.Sections, entities.ChangelogSection{
			Kind:    kind,
			Entries: entries,
		})
	}
	return result, nil
}

// discoverFromTag picks the starting point of the range: the newest tag of
// the package whose version sits strictly below the version being
// released. No matching tag means the walk starts at the root commit.
func (c *Collector) discoverFromTag(opts Options) (string, error) {
	parser, err := entities.NewTagParser(opts.TagFormat)
	if err != nil {
		return "", entities.NewConfigError("invalid tag format", err)
	}
	tags, err := c.git.ListTags()
	if err != nil {
		return "", err
	}

	ceiling := opts.Version
	unbounded := ceiling.Equal(entities.Version{})
	var best *entities.VersionTag
	for _, candidate := range parser.ParseAll(tags, opts.Package) {
		if !unbounded && candidate.Version.Compare(ceiling) >= 0 {
			continue
		}
		if best == nil || best.Version.LessThan(candidate.Version) {
			best = &candidate
		}
	}
	if best == nil {
		logger.Debugf("[changelog] no prior tag for %q, starting at root commit", opts.Package)
		return "", nil
	}
	return best.Tag, nil
}

// classify parses one commit into an entry, falling back to the raw
// subject when the message is not conventional.
func classify(commit entities.Commit, hashLength int) entities.ChangelogEntry {
	entry := entities.ChangelogEntry{
		CommitHash: commit.Hash,
		ShortHash:  commit.ShortHash(hashLength),
		Author:     commit.AuthorName,
		References: entities.ExtractReferences(commit.Message),
		Date:       commit.AuthorDate,
	}
	if parsed, ok := entities.ParseConventionalCommit(commit.Message); ok {
		entry.CommitType = parsed.Type
		entry.Scope = parsed.Scope
		entry.Description = parsed.Description
		entry.Breaking = parsed.Breaking
		return entry
	}
	entry.Description = commit.Subject()
	entry.Breaking = entities.HasBreakingFooter(commit.Message)
	return entry
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, entities.NewConfigError("invalid changelog exclude pattern "+pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchesAny(patterns []*regexp.Regexp, message string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(message) {
			return true
		}
	}
	return false
}
