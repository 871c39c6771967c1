package repositories

import (
	"time"

	domainRepos "github.com/rios0rios0/relforge/internal/domain/repositories"
)

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

var _ domainRepos.Clock = (*SystemClock)(nil)

// NewSystemClock creates the clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current UTC time.
func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}
