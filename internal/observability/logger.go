package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan         EventType = "plan"
	EventTypeCritique     EventType = "critique"
	EventTypeStep         EventType = "step"
	EventTypePolicyCheck  EventType = "policy_check"
	EventTypeConfirmation EventType = "confirmation"
	EventTypeVerification EventType = "verification"
	EventTypeTask         EventType = "task"
	EventTypeHeartbeat    EventType = "heartbeat"
	EventTypeLLM          EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	ChatID    string    `json:"chat_id,omitempty"`
	TurnID    string    `json:"turn_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to stdout.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(chatID, turnID string, stepCount int, capabilities []string) {
	l.Log(Event{
		Type:   EventTypePlan,
		ChatID: chatID,
		TurnID: turnID,
		Data: map[string]any{
			"steps":        stepCount,
			"capabilities": capabilities,
		},
	})
}

func (l *Logger) LogCritique(chatID, turnID string, approved bool, message string) {
	l.Log(Event{
		Type:   EventTypeCritique,
		ChatID: chatID,
		TurnID: turnID,
		Data: map[string]any{
			"approved": approved,
			"message":  message,
		},
	})
}

func (l *Logger) LogPolicyCheck(chatID, capability string, allowed bool, reason string) {
	l.Log(Event{
		Type:   EventTypePolicyCheck,
		ChatID: chatID,
		Data: map[string]any{
			"capability": capability,
			"allowed":    allowed,
			"reason":     reason,
		},
	})
}

func (l *Logger) LogStep(chatID, turnID, capability, outcome string) {
	l.Log(Event{
		Type:   EventTypeStep,
		ChatID: chatID,
		TurnID: turnID,
		Data: map[string]string{
			"capability": capability,
			"outcome":    outcome,
		},
	})
}

func (l *Logger) LogConfirmation(chatID, capability, response string) {
	l.Log(Event{
		Type:   EventTypeConfirmation,
		ChatID: chatID,
		Data: map[string]string{
			"capability": capability,
			"response":   response,
		},
	})
}

func (l *Logger) LogVerification(chatID, capability, annotation string) {
	l.Log(Event{
		Type:   EventTypeVerification,
		ChatID: chatID,
		Data: map[string]string{
			"capability": capability,
			"annotation": annotation,
		},
	})
}

func (l *Logger) LogTask(name string, fault string) {
	l.Log(Event{
		Type: EventTypeTask,
		Data: map[string]any{
			"task":  name,
			"fault": fault,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(chatID, turnID string, prompt any, response string, toolCalls any) {
	l.Log(Event{
		Type:   EventTypeLLM,
		ChatID: chatID,
		TurnID: turnID,
		Data: map[string]any{
			"prompt":     prompt,
			"response":   response,
			"tool_calls": toolCalls,
		},
	})
}
