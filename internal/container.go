package internal

import (
	"github.com/rios0rios0/relforge/internal/domain/commands"
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/infrastructure/controllers"
	"github.com/rios0rios0/relforge/internal/infrastructure/repositories"
	"github.com/rios0rios0/relforge/internal/workspace"
	"go.uber.org/dig"
)

// RegisterProviders registers all internal providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register all layers (bottom-up: infrastructure repos -> workspace -> domain commands -> controllers)
	if err := repositories.RegisterProviders(container); err != nil {
		return err
	}
	if err := entities.RegisterProviders(container); err != nil {
		return err
	}
	if err := registerWorkspaceProviders(container); err != nil {
		return err
	}
	if err := commands.RegisterProviders(container); err != nil {
		return err
	}
	if err := controllers.RegisterProviders(container); err != nil {
		return err
	}

	// Register the main app internal
	if err := container.Provide(NewAppInternal); err != nil {
		return err
	}

	return nil
}

// registerWorkspaceProviders wires the workspace discovery package, which
// carries no container of its own.
func registerWorkspaceProviders(container *dig.Container) error {
	if err := container.Provide(workspace.NewProberRegistry); err != nil {
		return err
	}
	if err := container.Provide(workspace.NewLoader); err != nil {
		return err
	}
	return container.Provide(func(loader *workspace.Loader) commands.WorkspaceLoader {
		return loader
	})
}
