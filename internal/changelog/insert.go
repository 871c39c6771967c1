package changelog

import "strings"

// InsertRelease splices a rendered release block into an existing
// changelog, keeping releases newest first. The block lands right before
// the first release heading; an Unreleased section stays above it. Empty
// or blank content starts a fresh file from the header.
func InsertRelease(content, block, header, headingPrefix string) string {
	blockLines := strings.Split(strings.TrimRight(block, "\n"), "\n")

	if strings.TrimSpace(content) == "" {
		merged := strings.Split(strings.TrimRight(header, "\n"), "\n")
		merged = append(merged, "")
		merged = append(merged, blockLines...)
		return strings.Join(merged, "\n") + "\n"
	}

	lines := strings.Split(content, "\n")
	at := releaseInsertIndex(lines, headingPrefix)
	head := trimTrailingBlank(lines[:at])
	tail := lines[at:]

	merged := make([]string, 0, len(lines)+len(blockLines)+2)
	merged = append(merged, head...)
	merged = append(merged, "")
	merged = append(merged, blockLines...)
	if len(tail) > 0 {
		merged = append(merged, "")
		merged = append(merged, tail...)
	}

	out := strings.Join(merged, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// releaseInsertIndex returns the line index of the first release heading,
// or len(lines) when the file has none yet. A release heading carries a
// version, so digit-free headings (the file header, Unreleased) never match.
func releaseInsertIndex(lines []string, headingPrefix string) int {
	prefix := strings.TrimRight(headingPrefix, " ")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, prefix) {
			continue
		}
		if strings.Contains(trimmed, "Unreleased") || !strings.ContainsAny(trimmed, "0123456789") {
			continue
		}
		return i
	}
	return len(lines)
}

// trimTrailingBlank drops blank lines from the end of a slice.
func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[:end]
}
