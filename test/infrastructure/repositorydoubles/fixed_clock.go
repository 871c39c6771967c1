//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// FixedClock always returns the same instant.
type FixedClock struct {
	Time time.Time
}

var _ repositories.Clock = (*FixedClock)(nil)

func (c *FixedClock) Now() time.Time {
	return c.Time
}
