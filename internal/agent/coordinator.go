package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/rahul/vela/internal/capability"
	"github.com/rahul/vela/internal/events"
	"github.com/rahul/vela/internal/observability"
)

// PlanSource produces a plan (or a conversational reply) for a request.
type PlanSource interface {
	GeneratePlan(ctx context.Context, chatID, input string) (Plan, string)
}

// Invoker dispatches capability invocations.
type Invoker interface {
	Invoke(ctx context.Context, name, params string) Invocation
	InvokeApproved(ctx context.Context, name, params string) Invocation
}

// ReplySource answers requests that carry no actionable intent.
type ReplySource interface {
	Reply(ctx context.Context, chatID, input string) (string, error)
}

var affirmativeWords = []string{"yes", "confirm", "proceed", "do it"}
var negativeWords = []string{"no", "cancel", "abort", "don't"}

// pendingConfirmation holds the one step paused for user approval, captured
// at pause time so later policy changes cannot alter what was asked about.
type pendingConfirmation struct {
	capability string
	params     string
}

type executedStep struct {
	capability string
	params     string
}

// Coordinator owns the execute-or-pause state machine. It drains one plan's
// queue in order, pauses on steps the gate wants confirmed, and resolves the
// user's next message as a confirmation answer while a step is pending.
// Turns are serialized: a second request waits for the current one.
type Coordinator struct {
	Planner    PlanSource
	Critic     *Critic
	Dispatcher Invoker
	Responder  ReplySource
	Bus        *events.Bus
	Logger     *observability.Logger

	mu      sync.Mutex
	pending *pendingConfirmation
	queue   []Step
	last    *executedStep
}

func NewCoordinator(planner PlanSource, critic *Critic, dispatcher Invoker, responder ReplySource, bus *events.Bus, logger *observability.Logger) *Coordinator {
	return &Coordinator{
		Planner:    planner,
		Critic:     critic,
		Dispatcher: dispatcher,
		Responder:  responder,
		Bus:        bus,
		Logger:     logger,
	}
}

// Think is the single entry point for gateway traffic.
func (c *Coordinator) Think(ctx context.Context, chatID string, input string) (string, error) {
	ctx = capability.WithChatID(ctx, chatID)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.Bus.Publish(events.UserInput, map[string]string{"chat_id": chatID, "text": input})

	if c.pending != nil {
		return c.resolveConfirmation(ctx, chatID, input)
	}

	observability.SetStatus(observability.StatePlanning, truncate(input, 48))
	plan, reply := c.Planner.GeneratePlan(ctx, chatID, input)

	if plan.Empty() {
		observability.SetStatus(observability.StateIdle, "")
		if reply != "" {
			return c.respond(chatID, reply)
		}
		answer, err := c.Responder.Reply(ctx, chatID, input)
		if err != nil {
			log.Printf("Responder error: %v", err)
			return c.respond(chatID, "I'm having trouble reaching my reasoning service right now. Please try again in a moment.")
		}
		return c.respond(chatID, answer)
	}

	approved, verdict := c.Critic.Critique(plan)
	c.Logger.LogCritique(chatID, "", approved, verdict)
	if !approved {
		observability.SetStatus(observability.StateIdle, "")
		return c.respond(chatID, fmt.Sprintf("Planning Error: %s", verdict))
	}

	c.queue = plan.Steps
	return c.drain(ctx, chatID, "")
}

// drain pops the queue front-first, stopping only for a confirmation pause.
// Denied, faulted, and unrecognized steps record their result and execution
// moves on.
func (c *Coordinator) drain(ctx context.Context, chatID, lastResult string) (string, error) {
	for len(c.queue) > 0 {
		step := c.queue[0]
		c.queue = c.queue[1:]
		observability.SetQueueDepth(len(c.queue))
		observability.SetStatus(observability.StateExecuting, step.Capability)

		inv := c.Dispatcher.Invoke(ctx, step.Capability, step.ParamsJSON())
		c.Logger.LogStep(chatID, "", step.Capability, string(inv.Outcome))

		switch inv.Outcome {
		case OutcomeConfirmationRequired:
			c.pending = &pendingConfirmation{capability: step.Capability, params: step.ParamsJSON()}
			observability.SetStatus(observability.StateAwaiting, step.Capability)
			c.Bus.Publish(events.StateChange, string(observability.StateAwaiting))
			return c.respond(chatID, fmt.Sprintf("Security check: '%s' requires confirmation. Shall I proceed?", step.Capability))
		case OutcomeCompleted:
			lastResult = inv.Result
			c.last = &executedStep{capability: step.Capability, params: inv.Params}
		default:
			lastResult = inv.Result
		}
	}
	return c.finish(ctx, chatID, lastResult)
}

// resolveConfirmation interprets the user's message as an answer to the
// standing security check. Negatives are matched first so a phrase holding
// both ("don't do it") reads as a refusal; anything that is neither clearly
// affirmative nor clearly negative re-prompts and leaves the pause in place.
func (c *Coordinator) resolveConfirmation(ctx context.Context, chatID, input string) (string, error) {
	lower := strings.ToLower(input)

	if containsAny(lower, negativeWords) {
		c.Logger.LogConfirmation(chatID, c.pending.capability, "rejected")
		c.pending = nil
		c.queue = nil
		c.last = nil
		observability.SetQueueDepth(0)
		observability.SetStatus(observability.StateIdle, "")
		c.Bus.Publish(events.StateChange, string(observability.StateIdle))
		return c.respond(chatID, "Action aborted. Task queue cleared.")
	}

	if containsAny(lower, affirmativeWords) {
		p := c.pending
		c.pending = nil
		c.Logger.LogConfirmation(chatID, p.capability, "approved")

		inv := c.Dispatcher.InvokeApproved(ctx, p.capability, p.params)
		c.Logger.LogStep(chatID, "", p.capability, string(inv.Outcome))
		lastResult := inv.Result
		if inv.Outcome == OutcomeCompleted {
			c.last = &executedStep{capability: p.capability, params: p.params}
		}
		return c.drain(ctx, chatID, lastResult)
	}

	c.Logger.LogConfirmation(chatID, c.pending.capability, "ambiguous")
	return c.respond(chatID, fmt.Sprintf("Awaiting confirmation for '%s'. Please reply yes or no.", c.pending.capability))
}

// finish closes out a fully drained plan: verify the last completed action,
// reset status, and hand the final step's result back as the response.
func (c *Coordinator) finish(ctx context.Context, chatID, lastResult string) (string, error) {
	if c.last != nil {
		if annotation := verifyStep(ctx, c.last.capability, c.last.params); annotation != "" {
			c.Logger.LogVerification(chatID, c.last.capability, annotation)
			lastResult += annotation
		}
		c.last = nil
	}
	observability.SetQueueDepth(0)
	observability.SetStatus(observability.StateIdle, "")
	c.Bus.Publish(events.StateChange, string(observability.StateIdle))
	if lastResult == "" {
		lastResult = "Done."
	}
	return c.respond(chatID, lastResult)
}

func (c *Coordinator) respond(chatID, text string) (string, error) {
	c.Bus.Publish(events.AssistantResponse, map[string]string{"chat_id": chatID, "text": text})
	return text, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
