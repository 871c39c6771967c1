package controllers

import (
	"github.com/rios0rios0/relforge/internal/domain/entities"
	"go.uber.org/dig"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	constructors := []any{
		NewInitController,
		NewStatusController,
		NewChangesetCreateController,
		NewChangesetAddController,
		NewChangesetListController,
		NewChangesetDeleteController,
		NewReleaseController,
		NewChangelogController,
		NewUpgradeController,
		NewAuditController,
		NewControllers,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
// The order here is the order of the CLI help output.
func NewControllers(
	initController *InitController,
	statusController *StatusController,
	createController *ChangesetCreateController,
	addController *ChangesetAddController,
	listController *ChangesetListController,
	deleteController *ChangesetDeleteController,
	releaseController *ReleaseController,
	changelogController *ChangelogController,
	upgradeController *UpgradeController,
	auditController *AuditController,
) *[]entities.Controller {
	return &[]entities.Controller{
		initController,
		statusController,
		createController,
		addController,
		listController,
		deleteController,
		releaseController,
		changelogController,
		upgradeController,
		auditController,
	}
}
