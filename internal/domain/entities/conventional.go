package entities

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// conventionalRe matches the first line of a conventional commit:
// type(scope)!: description, with scope and bang optional.
var conventionalRe = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^)]*)\))?(!)?:\s+(.+)$`)

// referenceRe finds issue references such as "#42", "closes #7", "Fixes: #9".
var referenceRe = regexp.MustCompile(`(?i)(?:close[sd]?|fix(?:e[sd])?|resolve[sd]?)?[:\s]*#(\d+)`)

// breakingFooter marks a breaking change in the commit body.
const breakingFooter = "BREAKING CHANGE:"

// ConventionalCommit is the parsed form of a conventional commit message.
type ConventionalCommit struct {
	Type        string
	Scope       string
	Description string
	Breaking    bool
}

// ParseConventionalCommit parses a commit message's first line. The second
// return is false when the message does not follow the convention; callers
// then fall back to the raw subject. Breaking is set by a "!" after the
// type or scope, or by a BREAKING CHANGE: footer anywhere in the body.
func ParseConventionalCommit(message string) (ConventionalCommit, bool) {
	subject, _, _ := strings.Cut(message, "\n")
	match := conventionalRe.FindStringSubmatch(strings.TrimSpace(subject))
	if match == nil {
		return ConventionalCommit{}, false
	}
	return ConventionalCommit{
		Type:        strings.ToLower(match[1]),
		Scope:       match[2],
		Description: strings.TrimSpace(match[4]),
		Breaking:    match[3] == "!" || strings.Contains(message, breakingFooter),
	}, true
}

// HasBreakingFooter reports a BREAKING CHANGE: marker anywhere in the
// message, which flags a breaking change even without a conventional subject.
func HasBreakingFooter(message string) bool {
	return strings.Contains(message, breakingFooter)
}

// ExtractReferences collects issue references from a commit message,
// deduplicated and sorted numerically.
func ExtractReferences(message string) []string {
	matches := referenceRe.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(matches))
	numbers := make([]int, 0, len(matches))
	for _, match := range matches {
		number, err := strconv.Atoi(match[1])
		if err != nil || seen[number] {
			continue
		}
		seen[number] = true
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)
	references := make([]string, 0, len(numbers))
	for _, number := range numbers {
		references = append(references, "#"+strconv.Itoa(number))
	}
	return references
}
