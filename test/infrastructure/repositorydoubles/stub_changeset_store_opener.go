//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/relforge/internal/domain/repositories"
)

// StubChangesetStoreOpener hands out a fixed store, recording the partition
// directories it was asked to open.
type StubChangesetStoreOpener struct {
	Store repositories.ChangesetRepository

	PendingDirs []string
	HistoryDirs []string
}

var _ repositories.ChangesetStoreOpener = (*StubChangesetStoreOpener)(nil)

func (o *StubChangesetStoreOpener) Open(pendingDir, historyDir string) repositories.ChangesetRepository {
	o.PendingDirs = append(o.PendingDirs, pendingDir)
	o.HistoryDirs = append(o.HistoryDirs, historyDir)
	return o.Store
}
