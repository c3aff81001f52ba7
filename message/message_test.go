package message

import (
	"errors"
	"testing"
	"time"
)

func TestNewDerivesCommandFlag(t *testing.T) {
	plain, err := New("hello", "c1", "s1", DefaultLimits())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if plain.IsCommand() {
		t.Fatalf("expected plain text message not to be a command")
	}

	command, err := New("/quit", "c1", "s1", DefaultLimits())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !command.IsCommand() {
		t.Fatalf("expected leading '/' to derive the command flag")
	}
}

func TestCommandFlagRequiresSlash(t *testing.T) {
	_, err := Restore("hello", "c1", "s1", true, time.Unix(1700000000, 0), UnassignedDatabaseID, 0, DefaultLimits())
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError for command flag without '/', got %v", err)
	}
}

func TestTimestampSecondResolution(t *testing.T) {
	stamp := time.Unix(1700000000, 0).Add(650 * time.Millisecond)
	m, err := Restore("hello", "c1", "s1", false, stamp, UnassignedDatabaseID, 0, DefaultLimits())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if got := m.Timestamp(); !got.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("timestamp = %v, want truncation to whole seconds", got)
	}
}

func TestSentAndDatabaseIDClamping(t *testing.T) {
	m, err := Restore("hello", "c1", "s1", false, time.Unix(1700000000, 0), -42, -7, DefaultLimits())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if m.DatabaseID() != UnassignedDatabaseID {
		t.Fatalf("database id = %d, want %d", m.DatabaseID(), UnassignedDatabaseID)
	}
	if m.HasDatabaseID() {
		t.Fatalf("expected no database id")
	}
	if m.Sent() != 0 || m.IsSent() {
		t.Fatalf("expected unsent message, got sent=%d", m.Sent())
	}

	m.SetSent(2)
	if !m.IsSent() || m.Sent() != 2 {
		t.Fatalf("expected sent counter 2, got %d", m.Sent())
	}
	m.SetSent(-1)
	if m.Sent() != 0 {
		t.Fatalf("expected negative sent counter to clamp to 0, got %d", m.Sent())
	}

	m.SetDatabaseID(7)
	if !m.HasDatabaseID() || m.DatabaseID() != 7 {
		t.Fatalf("expected database id 7, got %d", m.DatabaseID())
	}
	m.SetDatabaseID(-3)
	if m.DatabaseID() != UnassignedDatabaseID {
		t.Fatalf("expected negative database id to clamp to unassigned, got %d", m.DatabaseID())
	}
}

func TestSetContentValidates(t *testing.T) {
	m := mustRestore(t, "hello", "c1", "s1", false, 1700000000)

	if err := m.SetContent("updated"); err != nil {
		t.Fatalf("SetContent failed: %v", err)
	}
	if m.Content() != "updated" {
		t.Fatalf("content = %q, want %q", m.Content(), "updated")
	}

	if err := m.SetContent(""); err == nil {
		t.Fatalf("expected empty content to be rejected")
	}
	if err := m.SetContent("bad\x1dcontent"); err == nil {
		t.Fatalf("expected reserved delimiter in content to be rejected")
	}
	if m.Content() != "updated" {
		t.Fatalf("failed SetContent must not mutate the message")
	}
}

func TestSetCommandRequiresSlash(t *testing.T) {
	m := mustRestore(t, "hello", "c1", "s1", false, 1700000000)

	if err := m.SetCommand(true); err == nil {
		t.Fatalf("expected SetCommand(true) to fail without leading '/'")
	}

	cmd := mustRestore(t, "/quit", "c1", "s1", true, 1700000000)
	if err := cmd.SetCommand(false); err != nil {
		t.Fatalf("clearing the command flag failed: %v", err)
	}
	if err := cmd.SetCommand(true); err != nil {
		t.Fatalf("restoring the command flag failed: %v", err)
	}
}

func TestSetSenderIDChecksHeaderBound(t *testing.T) {
	limits := Limits{MaxContentLen: 4096, MaxHeaderLen: 40}
	m, err := Restore("hello", "c1", "s1", false, time.Unix(1700000000, 0), UnassignedDatabaseID, 0, limits)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if err := m.SetSenderID("s2"); err != nil {
		t.Fatalf("SetSenderID failed: %v", err)
	}
	if m.SenderID() != "s2" {
		t.Fatalf("sender id = %q, want %q", m.SenderID(), "s2")
	}

	if err := m.SetSenderID("this-sender-id-overflows-the-header-limit"); err == nil {
		t.Fatalf("expected oversized sender id to be rejected")
	}
	if m.SenderID() != "s2" {
		t.Fatalf("failed SetSenderID must not mutate the message")
	}

	if err := m.SetSenderID("bad\x1did"); err == nil {
		t.Fatalf("expected reserved delimiter in sender id to be rejected")
	}
}

func TestPlainToPlainIsIdentity(t *testing.T) {
	m := mustRestore(t, "hello", "c1", "s1", false, 1700000000)

	back, err := m.ToPlain(nil)
	if err != nil {
		t.Fatalf("ToPlain failed: %v", err)
	}
	if back != m {
		t.Fatalf("expected ToPlain on a plaintext message to return itself")
	}
}
