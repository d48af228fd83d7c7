package agent

import (
	"context"
	"encoding/json"
	"log"

	"github.com/rahul/vela/internal/capability"
	"github.com/rahul/vela/internal/store"
)

// SchedulerStore is the slice of persistence the scheduler needs.
type SchedulerStore interface {
	GetDueReminders() ([]store.Reminder, error)
	UpdateReminderLastRun(id int64) error
	DeleteReminder(id int64) error
}

// Scheduler fires due reminders through the dispatcher, never around it:
// a reminder's notification is an action like any other and leaves the same
// audit trail.
type Scheduler struct {
	Dispatcher Invoker
	Store      SchedulerStore
}

func NewScheduler(dispatcher Invoker, st SchedulerStore) *Scheduler {
	return &Scheduler{Dispatcher: dispatcher, Store: st}
}

// Poll delivers every due reminder. Interval zero means one-shot: the
// reminder is deleted after firing instead of rescheduled.
func (s *Scheduler) Poll(ctx context.Context) {
	due, err := s.Store.GetDueReminders()
	if err != nil {
		log.Printf("Scheduler: failed to fetch due reminders: %v", err)
		return
	}

	for _, r := range due {
		params, _ := json.Marshal(map[string]string{
			"title":   "Reminder",
			"message": r.Description,
		})
		inv := s.Dispatcher.Invoke(capability.WithChatID(ctx, r.ChatID), "notify", string(params))
		if inv.Outcome != OutcomeCompleted {
			log.Printf("Scheduler: reminder %d delivery failed: %s", r.ID, inv.Result)
		}

		if err := s.Store.UpdateReminderLastRun(r.ID); err != nil {
			log.Printf("Scheduler: failed to update reminder %d: %v", r.ID, err)
		}
		if r.IntervalSec == 0 {
			if err := s.Store.DeleteReminder(r.ID); err != nil {
				log.Printf("Scheduler: failed to delete one-shot reminder %d: %v", r.ID, err)
			}
		}
	}
}
