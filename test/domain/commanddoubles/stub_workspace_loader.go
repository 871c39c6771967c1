//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/workspace"
)

// StubWorkspaceLoader returns a prebuilt workspace, recording the requested
// roots.
type StubWorkspaceLoader struct {
	Workspace *entities.Workspace
	LoadErr   error

	Roots []string
}

var _ commands.WorkspaceLoader = (*StubWorkspaceLoader)(nil)

func (l *StubWorkspaceLoader) Load(
	_ context.Context,
	root string,
	_ ...workspace.LoadOption,
) (*entities.Workspace, error) {
	l.Roots = append(l.Roots, root)
	if l.LoadErr != nil {
		return nil, l.LoadErr
	}
	return l.Workspace, nil
}
