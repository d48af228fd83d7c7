package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rahul/vela/internal/capability"
	"github.com/rahul/vela/internal/events"
	"github.com/rahul/vela/internal/governance"
	"github.com/rahul/vela/internal/observability"
	"github.com/rahul/vela/internal/store"
)

type fakeCapability struct {
	name  string
	level governance.Level
	run   func(ctx context.Context, input string) (string, error)
}

func (f *fakeCapability) Name() string                    { return f.name }
func (f *fakeCapability) Description() string             { return "fake" }
func (f *fakeCapability) Parameters() map[string]any      { return map[string]any{} }
func (f *fakeCapability) Authorization() governance.Level { return f.level }
func (f *fakeCapability) Execute(ctx context.Context, input string) (string, error) {
	return f.run(ctx, input)
}

func testDispatcher(t *testing.T, caps ...*fakeCapability) (*Dispatcher, *events.Bus) {
	t.Helper()
	registry := capability.NewRegistry()
	for _, c := range caps {
		if err := registry.Register(c); err != nil {
			t.Fatal(err)
		}
	}
	gate, err := governance.NewGate(governance.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	bus := events.NewBus()
	return NewDispatcher(registry, gate, bus, observability.NewLogger()), bus
}

func collectAudit(bus *events.Bus) *[]store.AuditRecord {
	var got []store.AuditRecord
	bus.Subscribe(events.ActionCompleted, func(payload any) {
		if rec, ok := payload.(store.AuditRecord); ok {
			got = append(got, rec)
		}
	})
	return &got
}

func TestDispatcher_UnknownCapability(t *testing.T) {
	d, _ := testDispatcher(t)
	inv := d.Invoke(context.Background(), "teleport", "{}")
	if inv.Outcome != OutcomeUnknownCapability {
		t.Fatalf("Expected unknown capability, got %s", inv.Outcome)
	}
	if !strings.Contains(inv.Result, "teleport") {
		t.Errorf("Result should name the capability: %s", inv.Result)
	}
}

func TestDispatcher_OpenRunsImmediately(t *testing.T) {
	cap := &fakeCapability{name: "greet", level: governance.LevelOpen, run: func(ctx context.Context, input string) (string, error) {
		return "hello", nil
	}}
	d, bus := testDispatcher(t, cap)
	got := collectAudit(bus)

	inv := d.Invoke(context.Background(), "greet", "{}")
	if inv.Outcome != OutcomeCompleted || inv.Result != "hello" {
		t.Fatalf("Unexpected invocation: %+v", inv)
	}
	if len(*got) != 1 || (*got)[0].Outcome != "completed" {
		t.Fatalf("Expected exactly one completed audit event, got %+v", *got)
	}
}

func TestDispatcher_ConfirmPausesWithoutExecuting(t *testing.T) {
	ran := false
	cap := &fakeCapability{name: "delete_item", level: governance.LevelConfirm, run: func(ctx context.Context, input string) (string, error) {
		ran = true
		return "", nil
	}}
	d, bus := testDispatcher(t, cap)
	got := collectAudit(bus)

	inv := d.Invoke(context.Background(), "delete_item", `{"path":"notes.txt"}`)
	if inv.Outcome != OutcomeConfirmationRequired {
		t.Fatalf("Expected confirmation required, got %s", inv.Outcome)
	}
	if ran {
		t.Error("Handler must not run before confirmation")
	}
	if len(*got) != 0 {
		t.Error("No completion event before the action actually runs")
	}
}

func TestDispatcher_RestrictedDenied(t *testing.T) {
	cap := &fakeCapability{name: "run_command", level: governance.LevelRestricted, run: func(ctx context.Context, input string) (string, error) {
		return "", nil
	}}
	d, _ := testDispatcher(t, cap)

	inv := d.Invoke(context.Background(), "run_command", "{}")
	if inv.Outcome != OutcomeDenied {
		t.Fatalf("Expected denial, got %s", inv.Outcome)
	}
}

func TestDispatcher_BlockedBeforeLevel(t *testing.T) {
	cap := &fakeCapability{name: "greet", level: governance.LevelOpen, run: func(ctx context.Context, input string) (string, error) {
		return "hello", nil
	}}
	d, _ := testDispatcher(t, cap)
	d.Gate.BlockCapability("greet")

	inv := d.Invoke(context.Background(), "greet", "{}")
	if inv.Outcome != OutcomeDenied {
		t.Fatalf("Blocklisted capability must be denied, got %s", inv.Outcome)
	}
}

func TestDispatcher_FaultContained(t *testing.T) {
	errCap := &fakeCapability{name: "flaky", level: governance.LevelOpen, run: func(ctx context.Context, input string) (string, error) {
		return "", errors.New("disk on fire")
	}}
	panicCap := &fakeCapability{name: "boom", level: governance.LevelOpen, run: func(ctx context.Context, input string) (string, error) {
		panic("unexpected")
	}}
	d, bus := testDispatcher(t, errCap, panicCap)
	got := collectAudit(bus)

	inv := d.Invoke(context.Background(), "flaky", "{}")
	if inv.Outcome != OutcomeFault || !strings.Contains(inv.Result, "disk on fire") {
		t.Fatalf("Expected contained fault, got %+v", inv)
	}

	inv = d.Invoke(context.Background(), "boom", "{}")
	if inv.Outcome != OutcomeFault {
		t.Fatalf("Panic must surface as a fault, got %s", inv.Outcome)
	}

	if len(*got) != 2 {
		t.Fatalf("Both faults should publish completion events, got %d", len(*got))
	}
	for _, rec := range *got {
		if rec.Outcome != "failure" {
			t.Errorf("Fault events must be marked failure: %+v", rec)
		}
	}
}

func TestDispatcher_InvokeApprovedBypassesGate(t *testing.T) {
	cap := &fakeCapability{name: "delete_item", level: governance.LevelConfirm, run: func(ctx context.Context, input string) (string, error) {
		return "Deleted.", nil
	}}
	d, _ := testDispatcher(t, cap)
	d.Gate.BlockCapability("delete_item")

	inv := d.InvokeApproved(context.Background(), "delete_item", "{}")
	if inv.Outcome != OutcomeCompleted {
		t.Fatalf("Approved invocation must skip the gate, got %s", inv.Outcome)
	}
}

func TestDispatcher_ChatIDOnAuditRecord(t *testing.T) {
	cap := &fakeCapability{name: "greet", level: governance.LevelOpen, run: func(ctx context.Context, input string) (string, error) {
		return "ok", nil
	}}
	d, bus := testDispatcher(t, cap)
	got := collectAudit(bus)

	d.Invoke(capability.WithChatID(context.Background(), "42"), "greet", "{}")
	if len(*got) != 1 || (*got)[0].ChatID != "42" {
		t.Fatalf("Audit record should carry the chat ID, got %+v", *got)
	}
}
