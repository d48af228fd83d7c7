package agent

import (
	"context"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/rahul/vela/internal/capability"
	"github.com/rahul/vela/internal/governance"
	"github.com/rahul/vela/internal/observability"
)

// fakeModel returns a canned response for every GenerateContent call.
type fakeModel struct {
	resp *llms.ContentResponse
	err  error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

func planResponse(arguments string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				ToolCalls: []llms.ToolCall{
					{
						ID:   "call-1",
						Type: "function",
						FunctionCall: &llms.FunctionCall{
							Name:      "propose_plan",
							Arguments: arguments,
						},
					},
				},
			},
		},
	}
}

func testPlanner(model llms.Model) *Planner {
	registry := capability.NewRegistry()
	registry.Register(&fakeCapability{name: "open_app", level: governance.LevelOpen})
	registry.Register(&fakeCapability{name: "delete_item", level: governance.LevelConfirm})
	return NewPlanner(model, registry, NewPromptManager("prompts"), observability.NewLogger())
}

func TestPlanner_ParsesProposedPlan(t *testing.T) {
	model := &fakeModel{resp: planResponse(`{"steps":[{"capability":"open_app","params":{"app_name":"firefox"}},{"capability":"delete_item","params":{"path":"old.txt"}}]}`)}
	plan, reply := testPlanner(model).GeneratePlan(context.Background(), "1", "open firefox then delete old.txt")

	if reply != "" {
		t.Errorf("Tool-call response should not yield a conversational reply: %s", reply)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(plan.Steps))
	}
	if plan.Steps[0].Capability != "open_app" || plan.Steps[1].Capability != "delete_item" {
		t.Errorf("Step order must follow the proposal: %+v", plan.Steps)
	}
	if plan.Steps[0].Params["app_name"] != "firefox" {
		t.Errorf("Step params lost: %+v", plan.Steps[0].Params)
	}
}

func TestPlanner_PrunesUnknownCapabilities(t *testing.T) {
	model := &fakeModel{resp: planResponse(`{"steps":[{"capability":"teleport","params":{}},{"capability":"open_app","params":{}}]}`)}
	plan, _ := testPlanner(model).GeneratePlan(context.Background(), "1", "teleport me")

	if len(plan.Steps) != 1 || plan.Steps[0].Capability != "open_app" {
		t.Fatalf("Unregistered capabilities must be pruned, got %+v", plan.Steps)
	}
}

func TestPlanner_ProseBecomesReply(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "The capital of France is Paris."}},
	}}
	plan, reply := testPlanner(model).GeneratePlan(context.Background(), "1", "what is the capital of France?")

	if !plan.Empty() {
		t.Error("Prose response must not produce steps")
	}
	if reply != "The capital of France is Paris." {
		t.Errorf("Prose should come back as the reply, got: %s", reply)
	}
}

func TestPlanner_ModelErrorYieldsEmptyPlan(t *testing.T) {
	model := &fakeModel{err: context.DeadlineExceeded}
	plan, reply := testPlanner(model).GeneratePlan(context.Background(), "1", "open firefox")

	if !plan.Empty() || reply != "" {
		t.Errorf("Model failure must degrade to an empty plan, got %+v / %q", plan, reply)
	}
}

func TestPlanner_MalformedArgumentsYieldEmptyPlan(t *testing.T) {
	model := &fakeModel{resp: planResponse(`{"steps": [`)}
	plan, _ := testPlanner(model).GeneratePlan(context.Background(), "1", "open firefox")

	if !plan.Empty() {
		t.Error("Malformed tool arguments must degrade to an empty plan")
	}
}
