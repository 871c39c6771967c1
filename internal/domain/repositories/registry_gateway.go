package repositories

import (
	"context"
	"time"

	"github.com/rios0rios0/relforge/internal/domain/entities"
)

// RegistryMetadata is the package-level registry data the planner and the
// audit aggregator consume.
type RegistryMetadata struct {
	Deprecated bool
	LatestTag  entities.Version
}

// RegistryGateway is the injected registry oracle. The core never resolves
// versions itself; it only asks what has been published.
type RegistryGateway interface {
	// LatestVersions returns the published versions of a package, sorted
	// ascending by semver precedence.
	LatestVersions(ctx context.Context, name string) ([]entities.Version, error)

	// Metadata returns deprecation state and the dist-tags latest version.
	Metadata(ctx context.Context, name string) (*RegistryMetadata, error)
}

// RegistryGatewayFactory builds a gateway for one registry endpoint with a
// per-call timeout, both taken from the settings.
type RegistryGatewayFactory interface {
	New(baseURL string, timeout time.Duration) RegistryGateway
}
