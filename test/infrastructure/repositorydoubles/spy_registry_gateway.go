//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sort"
	"sync"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// SpyRegistryGateway implements repositories.RegistryGateway from canned
// packument data, recording which names were queried.
type SpyRegistryGateway struct {
	mu sync.Mutex

	// Versions maps a package name to its published versions, ascending.
	Versions map[string][]entities.Version

	// Meta maps a package name to its canned metadata; absent names
	// synthesize one from the newest version.
	Meta map[string]*repositories.RegistryMetadata

	// Errs fails individual names.
	Errs map[string]error

	Queried []string
}

var _ repositories.RegistryGateway = (*SpyRegistryGateway)(nil)

func (g *SpyRegistryGateway) LatestVersions(_ context.Context, name string) ([]entities.Version, error) {
	g.record(name)
	if err := g.Errs[name]; err != nil {
		return nil, err
	}
	return g.Versions[name], nil
}

func (g *SpyRegistryGateway) Metadata(_ context.Context, name string) (*repositories.RegistryMetadata, error) {
	if err := g.Errs[name]; err != nil {
		return nil, err
	}
	if metadata, ok := g.Meta[name]; ok {
		return metadata, nil
	}
	metadata := &repositories.RegistryMetadata{}
	if versions := g.Versions[name]; len(versions) > 0 {
		metadata.LatestTag = versions[len(versions)-1]
	}
	return metadata, nil
}

// QueriedNames returns the recorded names sorted, since parallel planners
// query in arbitrary order.
func (g *SpyRegistryGateway) QueriedNames() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	sorted := append([]string(nil), g.Queried...)
	sort.Strings(sorted)
	return sorted
}

func (g *SpyRegistryGateway) record(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Queried = append(g.Queried, name)
}
