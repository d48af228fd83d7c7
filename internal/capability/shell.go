package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rahul/vela/internal/governance"
)

// CommandRunner executes raw shell commands. Full shell access is never
// grantable from conversation alone, so it sits at the restricted tier; the
// dispatcher will refuse it until policy elevates the session.
type CommandRunner struct{}

func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

func (c *CommandRunner) Name() string { return "run_command" }

func (c *CommandRunner) Description() string {
	return "Execute a system shell command with full shell access."
}

func (c *CommandRunner) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The shell command to execute",
			},
		},
		"required": []string{"command"},
	}
}

func (c *CommandRunner) Authorization() governance.Level { return governance.LevelRestricted }

func (c *CommandRunner) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Command string `json:"command"`
	}

	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	if args.Command == "" {
		return "Error: empty command", nil
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", args.Command)
	output, err := cmd.CombinedOutput()

	result := strings.TrimSpace(string(output))
	if result == "" {
		result = "(no output)"
	}

	if err != nil {
		return fmt.Sprintf("Command failed with error: %v\nOutput: %s", err, result), nil
	}

	return result, nil
}
