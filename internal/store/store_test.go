package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rahul/vela/internal/events"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "vela.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_MessageHistoryRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddMessage("7", "human", "open calculator"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMessage("7", "ai", "Opening calculator"); err != nil {
		t.Fatal(err)
	}

	history, err := s.GetHistory("7", 10)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(history))
	}
	// Chronological order: human first.
	if history[0].Role != "human" {
		t.Errorf("First message role = %v", history[0].Role)
	}
}

func TestStore_DueReminders(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddReminder("7", "stand up", 60); err != nil {
		t.Fatal(err)
	}

	due, err := s.GetDueReminders()
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].Description != "stand up" {
		t.Fatalf("Expected the fresh reminder to be due, got %v", due)
	}

	if err := s.UpdateReminderLastRun(due[0].ID); err != nil {
		t.Fatal(err)
	}
	due, err = s.GetDueReminders()
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("Reminder should not be due right after running, got %v", due)
	}
}

func TestStore_ClearReminders(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddReminder("7", "water plants", 3600); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearReminders("7"); err != nil {
		t.Fatal(err)
	}
	due, err := s.GetDueReminders()
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("Expected no reminders after clear, got %v", due)
	}
}

func TestAuditWriter_PersistsActionCompleted(t *testing.T) {
	s := newTestStore(t)
	bus := events.NewBus()
	NewAuditWriter(s).Attach(bus)

	bus.Publish(events.ActionCompleted, AuditRecord{
		ID:         "rec-1",
		ChatID:     "7",
		Capability: "open_app",
		Params:     `{"app_name":"calculator"}`,
		Outcome:    "completed",
		Result:     "Opening calculator",
		Timestamp:  time.Now(),
	})

	records, err := s.RecentAudit(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 audit record, got %d", len(records))
	}
	if records[0].Capability != "open_app" || records[0].Outcome != "completed" {
		t.Errorf("Unexpected record: %+v", records[0])
	}
}

func TestAuditWriter_IgnoresForeignPayloads(t *testing.T) {
	s := newTestStore(t)
	bus := events.NewBus()
	NewAuditWriter(s).Attach(bus)

	// A foreign payload must be dropped, not crash the publisher.
	bus.Publish(events.ActionCompleted, "not a record")

	records, err := s.RecentAudit(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %v", records)
	}
}
