// Package scriptstore abstracts the external store that holds script rows and
// their pipeline status.
//
// Two implementations exist: a Google Sheets store matching the spreadsheet
// the batches are tracked in, and a local adapter over the SQLite queue for
// offline batches and tests. Status writes are idempotent overwrites so the
// orchestrator can safely retry its final flush.
package scriptstore

import (
	"context"

	"github.com/saadbenchakroun/auto-video-generator/internal/queue"
)

// PendingScript is one row fetched from the external store. RowHandle is an
// opaque writeback handle; it carries no ordering meaning.
type PendingScript struct {
	ID        string
	RowHandle int64
	Text      string
}

// Store is the external collaborator contract used by the orchestrator.
type Store interface {
	// FetchPending returns up to limit scripts awaiting processing.
	FetchPending(ctx context.Context, limit int) ([]PendingScript, error)
	// PersistStatus overwrites the status for a row, plus any extra fields
	// keyed by column name. Calling it again with the same arguments must
	// have no additional effect.
	PersistStatus(ctx context.Context, rowHandle int64, status queue.Status, extra map[string]string) error
}

// ExtraFailureReason is the conventional extra-field key for failure details.
const ExtraFailureReason = "failure_reason"
