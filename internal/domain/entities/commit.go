package entities

import (
	"strings"
	"time"
)

// DefaultShortHashLength matches git's default abbreviation.
const DefaultShortHashLength = 7

// Commit is the slice of git commit data the core consumes.
type Commit struct {
	Hash       string
	Message    string
	AuthorName string
	AuthorDate time.Time
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// ShortHash abbreviates the commit hash to the given length.
func (c Commit) ShortHash(length int) string {
	if length <= 0 {
		length = DefaultShortHashLength
	}
	if len(c.Hash) <= length {
		return c.Hash
	}
	return c.Hash[:length]
}
