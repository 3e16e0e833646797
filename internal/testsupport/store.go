package testsupport

import (
	"context"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/queue"
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

// AddTopic enqueues a single topic and returns it.
func AddTopic(t testing.TB, store *queue.Store, topic string) *queue.Topic {
	t.Helper()

	result, err := store.Add(context.Background(), topic)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	if len(result.Added) != 1 {
		t.Fatalf("store.Add(%q): expected one topic added, got %+v", topic, result)
	}
	return result.Added[0]
}
