package testsupport

import (
	"context"
	"testing"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddScript inserts a pending script item for tests using the provided store.
func AddScript(t testing.TB, store *queue.Store, scriptID, text string) *queue.Item {
	t.Helper()

	item, err := store.Add(context.Background(), scriptID, text)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return item
}
