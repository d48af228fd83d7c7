package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rahul/vela/internal/capability"
	"github.com/rahul/vela/internal/events"
	"github.com/rahul/vela/internal/governance"
	"github.com/rahul/vela/internal/observability"
	"github.com/rahul/vela/internal/store"
)

// Outcome classifies what happened to one dispatched step.
type Outcome string

const (
	OutcomeCompleted            Outcome = "completed"
	OutcomeDenied               Outcome = "denied"
	OutcomeConfirmationRequired Outcome = "confirmation_required"
	OutcomeFault                Outcome = "fault"
	OutcomeUnknownCapability    Outcome = "unknown_capability"
)

// Invocation is the full account of one dispatch attempt.
type Invocation struct {
	Capability string
	Params     string
	Outcome    Outcome
	Result     string
	Decision   governance.Decision
}

// Dispatcher is the single choke point for side-effecting actions: every
// capability handler runs through it, behind the authorization gate, with
// panic containment and completion events. No component calls a handler
// directly.
type Dispatcher struct {
	Registry *capability.Registry
	Gate     *governance.Gate
	Bus      *events.Bus
	Logger   *observability.Logger
}

func NewDispatcher(registry *capability.Registry, gate *governance.Gate, bus *events.Bus, logger *observability.Logger) *Dispatcher {
	return &Dispatcher{
		Registry: registry,
		Gate:     gate,
		Bus:      bus,
		Logger:   logger,
	}
}

// Invoke authorizes and runs a capability. A denial for any reason other
// than "confirmation required" returns immediately without touching the
// handler; the confirmation case returns with the capability still bound so
// the coordinator can pause and later approve it.
func (d *Dispatcher) Invoke(ctx context.Context, name string, params string) Invocation {
	cap, err := d.Registry.Lookup(name)
	if err != nil {
		return Invocation{
			Capability: name,
			Params:     params,
			Outcome:    OutcomeUnknownCapability,
			Result:     fmt.Sprintf("Error: capability '%s' is not recognized.", name),
		}
	}

	chatID, _ := capability.ChatID(ctx)
	decision := d.Gate.Authorize(name, cap.Authorization(), params)
	d.Logger.LogPolicyCheck(chatID, name, decision.Allowed, decision.Reason)

	if decision.RequiresConfirmation() {
		return Invocation{
			Capability: name,
			Params:     params,
			Outcome:    OutcomeConfirmationRequired,
			Decision:   decision,
		}
	}
	if !decision.Allowed {
		return Invocation{
			Capability: name,
			Params:     params,
			Outcome:    OutcomeDenied,
			Result:     fmt.Sprintf("Not permitted: %s.", decision.Reason),
			Decision:   decision,
		}
	}

	return d.run(ctx, cap, params)
}

// InvokeApproved runs a capability the user has just confirmed, skipping
// re-authorization. The grant is single-use: it applies only to the stored
// pending step.
func (d *Dispatcher) InvokeApproved(ctx context.Context, name string, params string) Invocation {
	cap, err := d.Registry.Lookup(name)
	if err != nil {
		return Invocation{
			Capability: name,
			Params:     params,
			Outcome:    OutcomeUnknownCapability,
			Result:     fmt.Sprintf("Error: capability '%s' is not recognized.", name),
		}
	}
	return d.run(ctx, cap, params)
}

func (d *Dispatcher) run(ctx context.Context, cap capability.Capability, params string) (inv Invocation) {
	inv = Invocation{Capability: cap.Name(), Params: params}

	defer func() {
		if r := recover(); r != nil {
			inv.Outcome = OutcomeFault
			inv.Result = fmt.Sprintf("System Error: %v", r)
			d.publish(ctx, inv)
		}
	}()

	result, err := cap.Execute(ctx, params)
	if err != nil {
		inv.Outcome = OutcomeFault
		inv.Result = fmt.Sprintf("System Error: %v", err)
	} else {
		inv.Outcome = OutcomeCompleted
		inv.Result = result
	}
	d.publish(ctx, inv)
	return inv
}

func (d *Dispatcher) publish(ctx context.Context, inv Invocation) {
	chatID, _ := capability.ChatID(ctx)
	outcome := "completed"
	if inv.Outcome != OutcomeCompleted {
		outcome = "failure"
	}
	d.Bus.Publish(events.ActionCompleted, store.AuditRecord{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		Capability: inv.Capability,
		Params:     inv.Params,
		Outcome:    outcome,
		Result:     inv.Result,
		Timestamp:  time.Now(),
	})
}
