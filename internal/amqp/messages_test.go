package amqp

import (
	"testing"
	"time"

	"floosafandy/internal/core"
)

func TestSyncMessageRoundTrip(t *testing.T) {
	msg := NewSyncMessage(42, 3)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := MessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Kind != KindSync {
		t.Fatalf("kind = %q, want %q", got.Kind, KindSync)
	}
	if got.ID != 42 || got.Version != 3 {
		t.Fatalf("id/version = %d/%d, want 42/3", got.ID, got.Version)
	}
	if got.Tombstone != nil {
		t.Fatalf("sync message should carry no tombstone")
	}
}

func TestDeleteMessageRoundTrip(t *testing.T) {
	tx := core.Transaction{
		ID:          7,
		Owner:       "alice",
		AccountID:   2,
		Date:        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Direction:   core.DirectionOut,
		Amount:      core.Money{Cents: 1250},
		Description: "groceries",
		Category:    "Food",
	}
	msg := NewDeleteMessage(tx)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := MessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Kind != KindDelete || got.ID != 7 {
		t.Fatalf("kind/id = %q/%d", got.Kind, got.ID)
	}
	ts := got.Tombstone
	if ts == nil {
		t.Fatalf("delete message lost its tombstone")
	}
	if ts.Owner != "alice" || ts.AccountID != 2 || ts.AmountCents != 1250 {
		t.Fatalf("tombstone fields mismatch: %+v", ts)
	}
	if ts.Direction != core.DirectionOut || ts.Category != "Food" {
		t.Fatalf("tombstone fields mismatch: %+v", ts)
	}
	if !ts.Date.Equal(tx.Date) {
		t.Fatalf("tombstone date = %v, want %v", ts.Date, tx.Date)
	}
}

func TestMessageFromJSONInvalid(t *testing.T) {
	if _, err := MessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid body")
	}
}
