package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/rahul/vela/internal/capability"
	"github.com/rahul/vela/internal/observability"
)

var plannerTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "propose_plan",
			Description: "Submit an ordered list of capability invocations that fulfills the user's request.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"steps": map[string]any{
						"type":        "array",
						"description": "Steps in execution order.",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"capability": map[string]any{
									"type":        "string",
									"description": "Name of a registered capability.",
								},
								"params": map[string]any{
									"type":                 "object",
									"description":          "Arguments for the capability, matching its parameter schema.",
									"additionalProperties": true,
								},
							},
							"required": []string{"capability"},
						},
					},
				},
				"required": []string{"steps"},
			},
		},
	},
}

// Planner turns free-form user text into a validated Plan via the model's
// function-calling interface.
type Planner struct {
	Model    llms.Model
	Registry *capability.Registry
	Prompts  *PromptManager
	Logger   *observability.Logger
}

func NewPlanner(model llms.Model, registry *capability.Registry, prompts *PromptManager, logger *observability.Logger) *Planner {
	return &Planner{Model: model, Registry: registry, Prompts: prompts, Logger: logger}
}

// GeneratePlan asks the model for a plan. When the model answers in prose
// instead of calling propose_plan, the prose comes back as a conversational
// reply alongside an empty plan. Planning failures also yield an empty plan;
// the caller decides how to degrade.
func (p *Planner) GeneratePlan(ctx context.Context, chatID, input string) (Plan, string) {
	turnID := uuid.NewString()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, p.systemPrompt()),
		llms.TextParts(llms.ChatMessageTypeHuman, input),
	}

	resp, err := p.Model.GenerateContent(ctx, messages,
		llms.WithTools(plannerTools),
		llms.WithTemperature(0),
	)
	if err != nil {
		p.Logger.Log(observability.Event{
			Type:   observability.EventTypePlan,
			ChatID: chatID,
			TurnID: turnID,
			Data:   map[string]any{"error": err.Error()},
		})
		return Plan{}, ""
	}
	if len(resp.Choices) == 0 {
		return Plan{}, ""
	}

	choice := resp.Choices[0]
	p.Logger.LogLLM(chatID, turnID, input, choice.Content, choice.ToolCalls)

	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil || tc.FunctionCall.Name != "propose_plan" {
			continue
		}
		var plan Plan
		if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &plan); err != nil {
			p.Logger.Log(observability.Event{
				Type:   observability.EventTypePlan,
				ChatID: chatID,
				TurnID: turnID,
				Data:   map[string]any{"error": fmt.Sprintf("malformed plan arguments: %v", err)},
			})
			return Plan{}, ""
		}
		return p.prune(chatID, turnID, plan), ""
	}

	return Plan{}, choice.Content
}

// prune drops steps naming capabilities that are not registered. A model
// hallucinating a capability must not reach the dispatcher as anything but
// a no-op.
func (p *Planner) prune(chatID, turnID string, plan Plan) Plan {
	kept := make([]Step, 0, len(plan.Steps))
	caps := make([]string, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		if !p.Registry.Has(step.Capability) {
			p.Logger.Log(observability.Event{
				Type:   observability.EventTypePlan,
				ChatID: chatID,
				TurnID: turnID,
				Data:   map[string]any{"dropped": step.Capability},
			})
			continue
		}
		kept = append(kept, step)
		caps = append(caps, step.Capability)
	}
	p.Logger.LogPlan(chatID, turnID, len(kept), caps)
	return Plan{Steps: kept}
}

func (p *Planner) systemPrompt() string {
	var b strings.Builder
	b.WriteString(p.Prompts.GetPlannerPrompt())
	b.WriteString("\n\nAvailable capabilities:\n")
	for _, cap := range p.Registry.All() {
		params, _ := json.Marshal(cap.Parameters())
		fmt.Fprintf(&b, "- %s: %s Parameters: %s\n", cap.Name(), cap.Description(), params)
	}
	return b.String()
}
