package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/rahul/vela/internal/governance"
)

// Notifier delivers a message to the user over whatever channel is active.
type Notifier interface {
	Send(chatID string, text string) error
}

// Notify pushes an alert to the user. Background tasks reach the user
// through this capability only; they have no privileged path into the
// engine.
type Notify struct {
	messenger Notifier
}

func NewNotify() *Notify { return &Notify{} }

// Bind attaches the delivery channel. The gateway is constructed after the
// registry, so the channel arrives late; until then alerts fall back to the
// log.
func (n *Notify) Bind(m Notifier) {
	n.messenger = m
}

func (n *Notify) Name() string { return "notify" }

func (n *Notify) Description() string {
	return "Send a notification message to the user."
}

func (n *Notify) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short headline for the notification",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "The notification body",
			},
		},
		"required": []string{"message"},
	}
}

func (n *Notify) Authorization() governance.Level { return governance.LevelOpen }

func (n *Notify) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	text := args.Message
	if args.Title != "" {
		text = fmt.Sprintf("*%s*\n\n%s", args.Title, args.Message)
	}

	chatID, ok := ChatID(ctx)
	if !ok || n.messenger == nil {
		log.Printf("NOTIFICATION: %s", text)
		return "Notification logged.", nil
	}
	if err := n.messenger.Send(chatID, text); err != nil {
		return "", fmt.Errorf("failed to deliver notification: %w", err)
	}
	return "Notification sent.", nil
}
