package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/rahul/vela/internal/observability"
)

// HistoryStore persists conversational turns per chat.
type HistoryStore interface {
	AddMessage(chatID, role, content string) error
	GetHistory(chatID string, limit int) ([]llms.MessageContent, error)
}

const historyWindow = 10

// Responder handles requests that carry no actionable intent: plain
// conversation, grounded in recent per-chat history.
type Responder struct {
	Model   llms.Model
	History HistoryStore
	Prompts *PromptManager
	Logger  *observability.Logger
}

func NewResponder(model llms.Model, history HistoryStore, prompts *PromptManager, logger *observability.Logger) *Responder {
	return &Responder{Model: model, History: history, Prompts: prompts, Logger: logger}
}

func (r *Responder) Reply(ctx context.Context, chatID, input string) (string, error) {
	turnID := uuid.NewString()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, r.Prompts.GetPersonaPrompt()),
	}
	history, err := r.History.GetHistory(chatID, historyWindow)
	if err == nil {
		messages = append(messages, history...)
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, input))

	resp, err := r.Model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("model generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	content := resp.Choices[0].Content

	r.Logger.LogLLM(chatID, turnID, input, content, nil)
	if err := r.History.AddMessage(chatID, "human", input); err == nil {
		_ = r.History.AddMessage(chatID, "ai", content)
	}

	return content, nil
}
