package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/rahul/vela/internal/capability"
	"github.com/rahul/vela/internal/store"
)

type recordingInvoker struct {
	invocations []Invocation
	chatIDs     []string
	outcome     Outcome
}

func (r *recordingInvoker) Invoke(ctx context.Context, name, params string) Invocation {
	chatID, _ := capability.ChatID(ctx)
	r.chatIDs = append(r.chatIDs, chatID)
	inv := Invocation{Capability: name, Params: params, Outcome: r.outcome}
	r.invocations = append(r.invocations, inv)
	return inv
}

func (r *recordingInvoker) InvokeApproved(ctx context.Context, name, params string) Invocation {
	return r.Invoke(ctx, name, params)
}

type fakeReminderStore struct {
	due     []store.Reminder
	updated []int64
	deleted []int64
}

func (f *fakeReminderStore) GetDueReminders() ([]store.Reminder, error) { return f.due, nil }
func (f *fakeReminderStore) UpdateReminderLastRun(id int64) error {
	f.updated = append(f.updated, id)
	return nil
}
func (f *fakeReminderStore) DeleteReminder(id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestScheduler_FiresDueRemindersThroughDispatcher(t *testing.T) {
	invoker := &recordingInvoker{outcome: OutcomeCompleted}
	st := &fakeReminderStore{due: []store.Reminder{
		{ID: 1, ChatID: "7", Description: "stand up", IntervalSec: 3600},
		{ID: 2, ChatID: "9", Description: "one-off ping", IntervalSec: 0},
	}}
	NewScheduler(invoker, st).Poll(context.Background())

	if len(invoker.invocations) != 2 {
		t.Fatalf("Expected 2 notify invocations, got %d", len(invoker.invocations))
	}
	for _, inv := range invoker.invocations {
		if inv.Capability != "notify" {
			t.Errorf("Reminders must deliver via notify, got %s", inv.Capability)
		}
	}
	if !strings.Contains(invoker.invocations[0].Params, "stand up") {
		t.Errorf("Reminder text missing from params: %s", invoker.invocations[0].Params)
	}
	if invoker.chatIDs[0] != "7" || invoker.chatIDs[1] != "9" {
		t.Errorf("Chat IDs must travel on the context, got %v", invoker.chatIDs)
	}
}

func TestScheduler_OneShotDeletedAfterFiring(t *testing.T) {
	invoker := &recordingInvoker{outcome: OutcomeCompleted}
	st := &fakeReminderStore{due: []store.Reminder{
		{ID: 1, ChatID: "7", Description: "recurring", IntervalSec: 60},
		{ID: 2, ChatID: "7", Description: "one-shot", IntervalSec: 0},
	}}
	NewScheduler(invoker, st).Poll(context.Background())

	if len(st.updated) != 2 {
		t.Errorf("Both reminders should record a last run, got %v", st.updated)
	}
	if len(st.deleted) != 1 || st.deleted[0] != 2 {
		t.Errorf("Only the one-shot reminder should be deleted, got %v", st.deleted)
	}
}
