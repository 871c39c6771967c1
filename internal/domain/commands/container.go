package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	constructors := []any{
		NewInitCommand,
		NewStatusCommand,
		NewChangesetCreateCommand,
		NewChangesetAddCommand,
		NewChangesetListCommand,
		NewChangesetDeleteCommand,
		NewReleaseCommand,
		NewChangelogCommand,
		NewUpgradeCommand,
		NewAuditCommand,

		// interface bindings
		func(impl *InitCommand) Init { return impl },
		func(impl *StatusCommand) Status { return impl },
		func(impl *ChangesetCreateCommand) ChangesetCreate { return impl },
		func(impl *ChangesetAddCommand) ChangesetAdd { return impl },
		func(impl *ChangesetListCommand) ChangesetList { return impl },
		func(impl *ChangesetDeleteCommand) ChangesetDelete { return impl },
		func(impl *ReleaseCommand) Release { return impl },
		func(impl *ChangelogCommand) Changelog { return impl },
		func(impl *UpgradeCommand) Upgrade { return impl },
		func(impl *AuditCommand) Audit { return impl },
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}
