package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rahul/vela/internal/governance"
)

type ReminderStore interface {
	AddReminder(chatID string, description string, intervalSeconds int) error
	ClearReminders(chatID string) error
}

// ScheduleTask manages the user's recurring reminders. The background
// scheduler polls the store and fires them.
type ScheduleTask struct {
	Store ReminderStore
}

func NewScheduleTask(store ReminderStore) *ScheduleTask {
	return &ScheduleTask{Store: store}
}

func (s *ScheduleTask) Name() string { return "schedule_task" }

func (s *ScheduleTask) Description() string {
	return "Manage recurring reminders: 'schedule' a new one or 'clear' all current ones."
}

func (s *ScheduleTask) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"schedule", "clear"},
				"description": "The action to perform: 'schedule' a new reminder or 'clear' all of them.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "What to remind the user about (only for 'schedule' action)",
			},
			"interval_seconds": map[string]any{
				"type":        "integer",
				"description": "The interval in seconds (minimum 60s, only for 'schedule' action)",
			},
		},
		"required": []string{"action"},
	}
}

func (s *ScheduleTask) Authorization() governance.Level { return governance.LevelOpen }

func (s *ScheduleTask) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Action   string `json:"action"`
		Desc     string `json:"description"`
		Interval int    `json:"interval_seconds"`
	}

	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	chatID, ok := ChatID(ctx)
	if !ok {
		return "", fmt.Errorf("missing chat id in context")
	}

	switch args.Action {
	case "clear":
		if err := s.Store.ClearReminders(chatID); err != nil {
			return "", fmt.Errorf("failed to clear reminders: %v", err)
		}
		return "Successfully cleared all your reminders.", nil

	case "schedule":
		if args.Interval < 60 {
			return "Error: Minimum interval is 60 seconds to prevent spamming.", nil
		}
		if err := s.Store.AddReminder(chatID, args.Desc, args.Interval); err != nil {
			return "", fmt.Errorf("failed to schedule reminder: %v", err)
		}
		return fmt.Sprintf("Successfully scheduled reminder: '%s' every %d seconds.", args.Desc, args.Interval), nil

	default:
		return "Invalid action. Use 'schedule' or 'clear'.", nil
	}
}
