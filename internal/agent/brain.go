package agent

import (
	"context"
	"encoding/json"
)

// Brain defines the request-intake interface gateways talk to.
type Brain interface {
	Think(ctx context.Context, chatID string, input string) (string, error)
}

// Step is a single capability invocation inside a plan.
type Step struct {
	Capability string         `json:"capability"`
	Params     map[string]any `json:"params"`
}

// ParamsJSON encodes the step's parameters for the capability contract.
func (s Step) ParamsJSON() string {
	if len(s.Params) == 0 {
		return "{}"
	}
	data, err := json.Marshal(s.Params)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Plan is an ordered sequence of steps produced from one user request and
// consumed exactly once by the coordinator.
type Plan struct {
	Steps []Step `json:"steps"`
}

// Empty reports whether the plan carries no actionable intent.
func (p Plan) Empty() bool {
	return len(p.Steps) == 0
}
