package repositories

import (
	domainRepos "github.com/rios0rios0/relforge/internal/domain/repositories"
	"go.uber.org/dig"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	constructors := []any{
		NewFilesystemManifestRepository,
		NewFilesystemChangesetStoreOpener,
		NewGitGoOpener,
		NewNpmRegistryGatewayFactory,
		NewSystemClock,

		// interface bindings
		func(impl *FilesystemManifestRepository) domainRepos.ManifestRepository { return impl },
		func(impl *FilesystemChangesetStoreOpener) domainRepos.ChangesetStoreOpener { return impl },
		func(impl *GitGoOpener) domainRepos.GitRepositoryOpener { return impl },
		func(impl *NpmRegistryGatewayFactory) domainRepos.RegistryGatewayFactory { return impl },
		func(impl *SystemClock) domainRepos.Clock { return impl },
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}
