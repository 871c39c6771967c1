package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/relforge/internal/changelog"
	"github.com/rios0rios0/relforge/internal/config"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// Changelog is the interface for the changelog command.
type Changelog interface {
	Execute(ctx context.Context, settings *config.Settings, opts ChangelogOptions) error
}

// ChangelogOptions scope one changelog generation run.
type ChangelogOptions struct {
	Root    string
	Package string // required in a monorepo with more than one member
	Version string // heading version; empty uses the package's current version
	FromRef string
	ToRef   string
	Stdout  bool
}

// ChangelogCommand collects the commit history for one package and either
// prints the rendered release block or folds it into the changelog file.
type ChangelogCommand struct {
	loader WorkspaceLoader
	git    repositories.GitRepositoryOpener
	clock  repositories.Clock
}

// NewChangelogCommand creates the command with its dependencies.
func NewChangelogCommand(
	loader WorkspaceLoader,
	git repositories.GitRepositoryOpener,
	clock repositories.Clock,
) *ChangelogCommand {
	return &ChangelogCommand{loader: loader, git: git, clock: clock}
}

// Execute collects, renders and writes the changelog for the target package.
func (it *ChangelogCommand) Execute(
	ctx context.Context,
	settings *config.Settings,
	opts ChangelogOptions,
) error {
	ws, err := it.loader.Load(ctx, opts.Root)
	if err != nil {
		return err
	}
	pkg, err := targetPackage(ws, opts.Package)
	if err != nil {
		return err
	}

	version := pkg.Version
	if opts.Version != "" {
		version, err = entities.ParseVersion(opts.Version)
		if err != nil {
			return err
		}
	}

	gitRepo, err := it.git.Open(ws.Root)
	if err != nil {
		return err
	}
	log, err := changelog.NewCollector(gitRepo).Collect(ctx, changelog.Options{
		Package:         pkg.Name,
		PathFilter:      ws.RelDir(pkg),
		FromRef:         opts.FromRef,
		ToRef:           opts.ToRef,
		Version:         version,
		Date:            it.clock.Now(),
		TagFormat:       settings.TagFormatFor(ws.Kind),
		ExcludePatterns: settings.Changelog.ExcludePatterns,
		ExcludeAuthors:  settings.Changelog.ExcludeAuthors,
	})
	if err != nil {
		return err
	}

	renderOpts := changelogRenderOptions(settings)
	block, err := changelog.Render(log, renderOpts)
	if err != nil {
		return err
	}

	if opts.Stdout {
		fmt.Fprint(os.Stdout, block)
		return nil
	}

	path := filepath.Join(pkg.Dir, settings.Changelog.Filename)
	existing, readErr := os.ReadFile(path)
	if readErr != nil && !errors.Is(readErr, fs.ErrNotExist) {
		return entities.NewIOError("read", path, readErr)
	}
	updated := changelog.InsertRelease(
		string(existing), block,
		changelog.Header(renderOpts), changelog.HeadingPrefix(renderOpts),
	)
	if writeErr := os.WriteFile(path, []byte(updated), 0o644); writeErr != nil {
		return entities.NewIOError("write", path, writeErr)
	}

	logger.Infof("[changelog] updated %s with %d entries for %s %s",
		path, log.EntryCount(), pkg.Name, version)
	return nil
}

// targetPackage resolves which member the changelog is for. A single-member
// workspace needs no flag; a monorepo requires one.
func targetPackage(ws *entities.Workspace, name string) (*entities.Package, error) {
	if name != "" {
		pkg := ws.Package(name)
		if pkg == nil {
			return nil, entities.NewPackageNotFound(name)
		}
		return pkg, nil
	}
	if len(ws.Packages) == 1 {
		return ws.Packages[0], nil
	}
	return nil, entities.NewInvalidArgument(fmt.Sprintf(
		"a package must be named in a monorepo (members: %s)",
		strings.Join(ws.PackageNames(), ", "),
	))
}

func changelogRenderOptions(settings *config.Settings) changelog.RenderOptions {
	return changelog.RenderOptions{
		Format:          settings.Changelog.Format,
		Header:          settings.Changelog.CustomHeader,
		VersionTemplate: settings.Changelog.CustomVersionTemplate,
		SectionTemplate: settings.Changelog.CustomSectionTemplate,
		EntryTemplate:   settings.Changelog.CustomTemplate,
	}
}
