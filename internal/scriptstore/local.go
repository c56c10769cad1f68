package scriptstore

import (
	"context"
	"fmt"

	"github.com/saadbenchakroun/auto-video-generator/internal/queue"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

// LocalStore adapts the SQLite queue to the Store contract so batches can run
// without a spreadsheet. The queue item ID doubles as the row handle.
type LocalStore struct {
	store *queue.Store
}

// NewLocalStore wraps an open queue store.
func NewLocalStore(store *queue.Store) *LocalStore {
	return &LocalStore{store: store}
}

// FetchPending returns pending queue items in creation order.
func (l *LocalStore) FetchPending(ctx context.Context, limit int) ([]PendingScript, error) {
	items, err := l.store.FetchPending(ctx, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scriptstore", "fetch", "read local queue", err)
	}
	pending := make([]PendingScript, 0, len(items))
	for _, item := range items {
		pending = append(pending, PendingScript{
			ID:        item.ScriptID,
			RowHandle: item.ID,
			Text:      item.ScriptText,
		})
	}
	return pending, nil
}

// PersistStatus overwrites the status for a queue item. Repeated calls with
// the same status are no-ops beyond a timestamp refresh.
func (l *LocalStore) PersistStatus(ctx context.Context, rowHandle int64, status queue.Status, extra map[string]string) error {
	item, err := l.store.GetByID(ctx, rowHandle)
	if err != nil {
		return services.Wrap(services.ErrTransient, "scriptstore", "persist", "load local item", err)
	}
	if item == nil {
		return services.Wrap(services.ErrPermanent, "scriptstore", "persist",
			fmt.Sprintf("no local item with id %d", rowHandle), nil)
	}
	item.Status = status
	if reason, ok := extra[ExtraFailureReason]; ok && item.FailureReason == "" {
		item.FailureReason = reason
	}
	if err := l.store.Update(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, "scriptstore", "persist", "update local item", err)
	}
	return nil
}
