package repositories

import "time"

// Clock supplies the current UTC time. Changeset and archive timestamps
// flow through this interface so tests control them.
type Clock interface {
	Now() time.Time
}
