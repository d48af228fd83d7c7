package agent

import (
	"fmt"

	"github.com/rahul/vela/internal/governance"
)

// Critic vets a plan before any step executes. It is deterministic: the
// same plan always gets the same verdict.
type Critic struct {
	irreversible map[string]bool
	limit        int
}

func NewCritic(policy governance.Policy) *Critic {
	irr := make(map[string]bool, len(policy.IrreversibleCapabilities))
	for _, name := range policy.IrreversibleCapabilities {
		irr[name] = true
	}
	return &Critic{irreversible: irr, limit: policy.IrreversibleLimit}
}

// Critique approves or rejects a plan with a human-readable verdict.
func (c *Critic) Critique(plan Plan) (bool, string) {
	if plan.Empty() {
		return false, "Empty plan."
	}

	count := 0
	for _, step := range plan.Steps {
		if c.irreversible[step.Capability] {
			count++
		}
	}
	if count > c.limit {
		return false, fmt.Sprintf("Plan contains %d irreversible actions; refusing to run more than %d in a single request.", count, c.limit)
	}

	return true, "Plan approved."
}
