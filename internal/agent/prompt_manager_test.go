package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPromptManager_GetPersonaPrompt(t *testing.T) {
	tempDir := t.TempDir()

	files := map[string]string{
		"persona.md":      "Persona Content",
		"capabilities.md": "Capabilities Content",
		"user.md":         "User Content",
		"extra.md":        "Extra Content",
		"planner.md":      "Planner Content",
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	pm := NewPromptManager(tempDir)
	prompt := pm.GetPersonaPrompt()

	for _, part := range []string{"Persona Content", "Capabilities Content", "User Content", "Extra Content"} {
		if !strings.Contains(prompt, part) {
			t.Errorf("Prompt missing expected part: %s", part)
		}
	}
	if strings.Contains(prompt, "Planner Content") {
		t.Error("planner.md must not leak into the persona prompt")
	}

	// Verify order
	if strings.Index(prompt, "Persona Content") >= strings.Index(prompt, "Capabilities Content") {
		t.Error("Persona should be before Capabilities")
	}
	if strings.Index(prompt, "Capabilities Content") >= strings.Index(prompt, "User Content") {
		t.Error("Capabilities should be before User")
	}
}

func TestPromptManager_FallbackDefaults(t *testing.T) {
	pm := NewPromptManager(filepath.Join(t.TempDir(), "missing"))

	if got := pm.GetPersonaPrompt(); got != defaultPersonaPrompt {
		t.Errorf("Expected default persona prompt, got: %s", got)
	}
	if got := pm.GetPlannerPrompt(); got != defaultPlannerPrompt {
		t.Errorf("Expected default planner prompt, got: %s", got)
	}
}

func TestPromptManager_GetPlannerPrompt(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "planner.md"), []byte("Custom planner"), 0644); err != nil {
		t.Fatal(err)
	}

	pm := NewPromptManager(tempDir)
	if got := pm.GetPlannerPrompt(); got != "Custom planner" {
		t.Errorf("Expected custom planner prompt, got: %s", got)
	}
}
