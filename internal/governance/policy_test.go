package governance

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGate_Authorize_Levels(t *testing.T) {
	gate, err := NewGate(Policy{})
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}

	d := gate.Authorize("web_search", LevelOpen, "{}")
	if !d.Allowed {
		t.Errorf("Expected open capability to be allowed, got %q", d.Reason)
	}

	d = gate.Authorize("delete_item", LevelConfirm, "{}")
	if d.Allowed {
		t.Error("Expected confirm-level capability to be denied")
	}
	if !d.RequiresConfirmation() {
		t.Errorf("Expected confirmation-required denial, got %q", d.Reason)
	}

	d = gate.Authorize("run_command", LevelRestricted, "{}")
	if d.Allowed || d.Reason != ReasonElevationRequired {
		t.Errorf("Expected elevation denial, got %+v", d)
	}
	if d.RequiresConfirmation() {
		t.Error("Restricted denial must not be treated as a confirmation pause")
	}
}

func TestGate_Authorize_BlockListWinsFirst(t *testing.T) {
	gate, err := NewGate(Policy{BlockedCapabilities: []string{"browser"}})
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}

	// Block-list beats the declared level, even for open capabilities.
	d := gate.Authorize("browser", LevelOpen, "{}")
	if d.Allowed || d.Reason != ReasonPolicyViolation {
		t.Errorf("Expected policy violation, got %+v", d)
	}
}

func TestGate_Authorize_DeniedArguments(t *testing.T) {
	gate, err := NewGate(DefaultPolicy())
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}

	d := gate.Authorize("run_command", LevelOpen, `{"command":"rm -rf /"}`)
	if d.Allowed || d.Reason != ReasonPolicyViolation {
		t.Errorf("Expected denial for destructive arguments, got %+v", d)
	}
}

func TestGate_Authorize_StableWithinPolicyEpoch(t *testing.T) {
	gate, err := NewGate(Policy{})
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}

	first := gate.Authorize("open_app", LevelOpen, "{}")
	second := gate.Authorize("open_app", LevelOpen, "{}")
	if first != second {
		t.Errorf("Same inputs produced different decisions: %+v vs %+v", first, second)
	}

	gate.BlockCapability("open_app")
	third := gate.Authorize("open_app", LevelOpen, "{}")
	if third.Allowed {
		t.Error("Expected denial after policy swap")
	}
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	body := `
blocked_capabilities:
  - run_command
irreversible_capabilities:
  - delete_item
  - shred
  - purge_workspace
irreversible_limit: 1
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy failed: %v", err)
	}
	if len(p.BlockedCapabilities) != 1 || p.BlockedCapabilities[0] != "run_command" {
		t.Errorf("Unexpected block-list: %v", p.BlockedCapabilities)
	}
	if p.IrreversibleLimit != 1 {
		t.Errorf("Expected limit 1, got %d", p.IrreversibleLimit)
	}
	if len(p.IrreversibleCapabilities) != 3 {
		t.Errorf("Unexpected irreversible set: %v", p.IrreversibleCapabilities)
	}
}

func TestLoadPolicy_MissingFileFallsBackToDefaults(t *testing.T) {
	p, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("Expected an error for a missing policy file")
	}
	if p.IrreversibleLimit != 2 {
		t.Errorf("Expected default limit, got %d", p.IrreversibleLimit)
	}
}

func TestGate_DenyArgumentsTightensAtRuntime(t *testing.T) {
	gate, err := NewGate(Policy{})
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}

	params := `{"command":"rm -rf /"}`
	if d := gate.Authorize("run_command", LevelOpen, params); !d.Allowed {
		t.Fatalf("Empty policy should allow before tightening, got %+v", d)
	}

	if err := gate.DenyArguments(`rm\s+-rf`); err != nil {
		t.Fatal(err)
	}
	if d := gate.Authorize("run_command", LevelOpen, params); d.Allowed || d.Reason != ReasonPolicyViolation {
		t.Errorf("Runtime pattern must deny on top of the loaded policy, got %+v", d)
	}

	if err := gate.DenyArguments(`[`); err == nil {
		t.Error("Invalid pattern must be rejected, not installed")
	}
}
