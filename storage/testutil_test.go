package storage

import (
	"path/filepath"
	"testing"
	"time"

	"peerchat/message"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "messenger.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close test store: %v", err)
		}
	})

	return store
}

func newTestMessage(t *testing.T, content, conversationID, senderID string, seconds int64) *message.Plain {
	t.Helper()

	m, err := message.Restore(content, conversationID, senderID, false,
		time.Unix(seconds, 0), message.UnassignedDatabaseID, 0, message.DefaultLimits())
	if err != nil {
		t.Fatalf("restore test message: %v", err)
	}
	return m
}
