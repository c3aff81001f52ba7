package storage

import (
	"testing"

	"peerchat/message"
)

func TestSeenMessageDeduplication(t *testing.T) {
	store := newTestStore(t)

	m := newTestMessage(t, "hello", "conv-1", "alice", 1700000000)

	seen, err := store.HasSeen(m)
	if err != nil {
		t.Fatalf("HasSeen failed: %v", err)
	}
	if seen {
		t.Fatalf("expected fresh message to be unseen")
	}

	if err := store.MarkSeen(m, 1700000001); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	// Re-decoding the wire line yields an equal message with the same digest.
	duplicate, err := message.Decode(m.Encode(), message.DefaultLimits())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	duplicate.SetSent(5)

	seen, err = store.HasSeen(duplicate)
	if err != nil {
		t.Fatalf("HasSeen after MarkSeen failed: %v", err)
	}
	if !seen {
		t.Fatalf("expected re-delivered duplicate to be seen")
	}

	other := newTestMessage(t, "different", "conv-1", "alice", 1700000000)
	seen, err = store.HasSeen(other)
	if err != nil {
		t.Fatalf("HasSeen for other message failed: %v", err)
	}
	if seen {
		t.Fatalf("expected distinct message to be unseen")
	}
}

func TestPruneSeen(t *testing.T) {
	store := newTestStore(t)

	old := newTestMessage(t, "old", "conv-1", "alice", 1700000000)
	recent := newTestMessage(t, "recent", "conv-1", "alice", 1700005000)

	if err := store.MarkSeen(old, 1700000000); err != nil {
		t.Fatalf("MarkSeen old failed: %v", err)
	}
	if err := store.MarkSeen(recent, 1700005000); err != nil {
		t.Fatalf("MarkSeen recent failed: %v", err)
	}

	pruned, err := store.PruneSeen(1700001000)
	if err != nil {
		t.Fatalf("PruneSeen failed: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned row, got %d", pruned)
	}

	seen, err := store.HasSeen(recent)
	if err != nil {
		t.Fatalf("HasSeen after prune failed: %v", err)
	}
	if !seen {
		t.Fatalf("expected recent message to survive the prune")
	}
}
