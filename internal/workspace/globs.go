package workspace

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// ExpandGlobs evaluates workspace glob patterns against the root and
// returns the package directories that contain a manifest. Order is:
// patterns in declaration order, matches sorted lexicographically within
// each pattern. Patterns prefixed with "!" exclude earlier matches, the
// way npm workspaces treat negations. node_modules is never traversed.
func ExpandGlobs(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)

	var ordered []string
	included := make(map[string]bool)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(strings.TrimSuffix(pattern, "/"))
		if pattern == "" {
			continue
		}
		if negated, ok := strings.CutPrefix(pattern, "!"); ok {
			for dir := range included {
				if match, _ := doublestar.Match(negated, dir); match {
					included[dir] = false
				}
			}
			continue
		}

		matches, err := doublestar.Glob(fsys, path.Join(pattern, entities.ManifestFileName))
		if err != nil {
			return nil, entities.NewIOError("expand workspace pattern", pattern, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			dir := path.Dir(match)
			if underNodeModules(dir) || included[dir] {
				continue
			}
			if _, seen := included[dir]; !seen {
				ordered = append(ordered, dir)
			}
			included[dir] = true
		}
	}

	dirs := make([]string, 0, len(ordered))
	for _, dir := range ordered {
		if included[dir] {
			dirs = append(dirs, filepath.Join(root, filepath.FromSlash(dir)))
		}
	}
	return dirs, nil
}

func underNodeModules(dir string) bool {
	for _, segment := range strings.Split(dir, "/") {
		if segment == "node_modules" {
			return true
		}
	}
	return false
}
