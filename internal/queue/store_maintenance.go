package queue

import (
	"context"
	"fmt"
	"time"
)

var failureStatuses = []Status{
	StatusFailedAudio,
	StatusFailedSRT,
	StatusFailedImages,
	StatusFailedAssembly,
}

// RetryFailed moves failed items back to pending for reprocessing. With no
// ids, every failed item is requeued.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	failurePlaceholders := makePlaceholders(len(failureStatuses))

	if len(ids) == 0 {
		args := make([]any, 0, len(failureStatuses)+2)
		args = append(args, StatusPending, timestamp)
		for _, status := range failureStatuses {
			args = append(args, status)
		}
		res, err := s.execWithRetry(
			ctx,
			`UPDATE script_items
            SET status = ?, failure_reason = NULL, artifacts_json = NULL, updated_at = ?
            WHERE status IN (`+failurePlaceholders+`)`,
			args...,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		return res.RowsAffected()
	}

	idPlaceholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+len(failureStatuses)+2)
	args = append(args, StatusPending, timestamp)
	for _, id := range ids {
		args = append(args, id)
	}
	for _, status := range failureStatuses {
		args = append(args, status)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE script_items
        SET status = ?, failure_reason = NULL, artifacts_json = NULL, updated_at = ?
        WHERE id IN (`+idPlaceholders+`) AND status IN (`+failurePlaceholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckProcessing resets items left in processing by an interrupted run
// back to pending.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE script_items
         SET status = ?, failure_reason = NULL, artifacts_json = NULL, updated_at = ?
         WHERE status = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

// Remove deletes an item by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM script_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearCompleted removes only done items from the queue.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM script_items WHERE status = ?`, StatusDone)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed items from the queue.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	placeholders := makePlaceholders(len(failureStatuses))
	args := make([]any, len(failureStatuses))
	for i, status := range failureStatuses {
		args[i] = status
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM script_items WHERE status IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all items from the queue.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM script_items`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}
