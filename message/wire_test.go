package message

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func mustRestore(t *testing.T, content, conversationID, senderID string, command bool, seconds int64) *Plain {
	t.Helper()

	m, err := Restore(content, conversationID, senderID, command, time.Unix(seconds, 0),
		UnassignedDatabaseID, 0, DefaultLimits())
	if err != nil {
		t.Fatalf("restore message: %v", err)
	}
	return m
}

func TestEncodeDecodeScenario(t *testing.T) {
	m := mustRestore(t, "hello", "c1", "s1", false, 1700000000)

	encoded := m.Encode()
	want := "\x1d\x1d6553f100\x1dc1\x1ds1\x1d0\x1dhello"
	if encoded != want {
		t.Fatalf("Encode() = %q, want %q", encoded, want)
	}

	decoded, err := Decode(encoded, DefaultLimits())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.Content() != "hello" {
		t.Fatalf("content = %q, want %q", decoded.Content(), "hello")
	}
	if decoded.ConversationID() != "c1" {
		t.Fatalf("conversation id = %q, want %q", decoded.ConversationID(), "c1")
	}
	if decoded.SenderID() != "s1" {
		t.Fatalf("sender id = %q, want %q", decoded.SenderID(), "s1")
	}
	if decoded.IsCommand() {
		t.Fatalf("expected command flag to be false")
	}
	if got := decoded.Timestamp().Unix(); got != 1700000000 {
		t.Fatalf("timestamp = %d, want 1700000000", got)
	}
}

func TestDecodeEncodeRoundTripEquality(t *testing.T) {
	cases := []struct {
		name    string
		content string
		command bool
	}{
		{"plain text", "hello world", false},
		{"command", "/quit", true},
		{"unicode", "héllo ünicode ≈", false},
		{"single char", "x", false},
		{"max length", strings.Repeat("a", DefaultLimits().MaxContentLen), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := mustRestore(t, tc.content, "11e98e24-8f94-4868-b7e4-2a3b1d2b3c4d", "alice", tc.command, 1700000000)

			decoded, err := Decode(m.Encode(), DefaultLimits())
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !Equal(m, decoded) {
				t.Fatalf("decoded message is not equal to original:\n%q\n%q", m.Encode(), decoded.Encode())
			}
		})
	}
}

func TestContentLengthBoundaries(t *testing.T) {
	limits := DefaultLimits()

	if _, err := Restore("", "c1", "s1", false, time.Unix(1700000000, 0), UnassignedDatabaseID, 0, limits); err == nil {
		t.Fatalf("expected empty content to be rejected")
	}

	exact := strings.Repeat("a", limits.MaxContentLen)
	if _, err := Restore(exact, "c1", "s1", false, time.Unix(1700000000, 0), UnassignedDatabaseID, 0, limits); err != nil {
		t.Fatalf("content of exactly the limit rejected: %v", err)
	}

	over := strings.Repeat("a", limits.MaxContentLen+1)
	_, err := Restore(over, "c1", "s1", false, time.Unix(1700000000, 0), UnassignedDatabaseID, 0, limits)
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError for oversized content, got %v", err)
	}
}

func TestHeaderLengthBound(t *testing.T) {
	limits := Limits{MaxContentLen: 4096, MaxHeaderLen: 32}

	longSender := strings.Repeat("s", 64)
	_, err := Restore("hello", "c1", longSender, false, time.Unix(1700000000, 0), UnassignedDatabaseID, 0, limits)
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError for oversized header, got %v", err)
	}
}

func TestDecodeRejectsMalformedLines(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"no delimiters", "hello"},
		{"single leading delimiter", "\x1d6553f100\x1dc1\x1ds1\x1d0\x1dhello"},
		{"missing field", "\x1d\x1d6553f100\x1dc1\x1d0\x1dhello"},
		{"extra field", "\x1d\x1d6553f100\x1dc1\x1ds1\x1dx\x1d0\x1dhello"},
		{"uppercase hex timestamp", "\x1d\x1d6553F100\x1dc1\x1ds1\x1d0\x1dhello"},
		{"non-hex timestamp", "\x1d\x1dzzzz\x1dc1\x1ds1\x1d0\x1dhello"},
		{"bad flag", "\x1d\x1d6553f100\x1dc1\x1ds1\x1d2\x1dhello"},
		{"empty content", "\x1d\x1d6553f100\x1dc1\x1ds1\x1d0\x1d"},
		{"empty sender", "\x1d\x1d6553f100\x1dc1\x1d\x1d0\x1dhello"},
		{"newline in content", "\x1d\x1d6553f100\x1dc1\x1ds1\x1d0\x1dhe\nllo"},
		{"timestamp overflow", "\x1d\x1dffffffffffffffff\x1dc1\x1ds1\x1d0\x1dhello"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.line, DefaultLimits())
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected FormatError for %q, got %v", tc.line, err)
			}
		})
	}
}

func TestEqualityIsDefinedByEncoding(t *testing.T) {
	viaFields := mustRestore(t, "hello", "c1", "s1", false, 1700000000)

	viaWire, err := Decode(viaFields.Encode(), DefaultLimits())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	// Sent counters and database IDs do not participate in equality.
	viaWire.SetSent(3)
	viaWire.SetDatabaseID(42)

	if !Equal(viaFields, viaWire) {
		t.Fatalf("messages with identical encodings must be equal")
	}
	if Hash(viaFields) != Hash(viaWire) {
		t.Fatalf("messages with identical encodings must hash identically")
	}

	other := mustRestore(t, "hello!", "c1", "s1", false, 1700000000)
	if Equal(viaFields, other) {
		t.Fatalf("messages with different encodings must not be equal")
	}
}
