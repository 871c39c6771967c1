//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// StubRegistryGatewayFactory hands out a fixed gateway, recording how it
// was configured.
type StubRegistryGatewayFactory struct {
	Gateway repositories.RegistryGateway

	BaseURLs []string
	Timeouts []time.Duration
}

var _ repositories.RegistryGatewayFactory = (*StubRegistryGatewayFactory)(nil)

func (f *StubRegistryGatewayFactory) New(baseURL string, timeout time.Duration) repositories.RegistryGateway {
	f.BaseURLs = append(f.BaseURLs, baseURL)
	f.Timeouts = append(f.Timeouts, timeout)
	return f.Gateway
}
