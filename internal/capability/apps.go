package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rahul/vela/internal/governance"
)

// appAliases maps spoken application names to launchable commands.
var appAliases = map[string]string{
	"calculator": "gnome-calculator",
	"browser":    "xdg-open https://duckduckgo.com",
	"files":      "nautilus",
	"terminal":   "gnome-terminal",
	"editor":     "gedit",
}

// OpenApp launches a desktop application by name.
type OpenApp struct{}

func NewOpenApp() *OpenApp { return &OpenApp{} }

func (o *OpenApp) Name() string { return "open_app" }

func (o *OpenApp) Description() string {
	return "Open a desktop application by name (e.g. calculator, browser, terminal)."
}

func (o *OpenApp) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"app_name": map[string]any{
				"type":        "string",
				"description": "The application to open",
			},
		},
		"required": []string{"app_name"},
	}
}

func (o *OpenApp) Authorization() governance.Level { return governance.LevelOpen }

func (o *OpenApp) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		AppName string `json:"app_name"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}
	if args.AppName == "" {
		return "Error: app_name is required", nil
	}

	command := args.AppName
	if alias, ok := appAliases[strings.ToLower(args.AppName)]; ok {
		command = alias
	}

	parts := strings.Fields(command)
	cmd := exec.Command(parts[0], parts[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Sprintf("Failed to open %s: %v", args.AppName, err), nil
	}
	// Detach: the app outlives this invocation.
	go cmd.Wait()

	return fmt.Sprintf("Opening %s", args.AppName), nil
}

// CloseApp terminates a running application by process name. Closing can
// lose unsaved work, so it requires confirmation.
type CloseApp struct{}

func NewCloseApp() *CloseApp { return &CloseApp{} }

func (c *CloseApp) Name() string { return "close_app" }

func (c *CloseApp) Description() string {
	return "Close a running application by name. May discard unsaved work."
}

func (c *CloseApp) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"app_name": map[string]any{
				"type":        "string",
				"description": "The application to close",
			},
		},
		"required": []string{"app_name"},
	}
}

func (c *CloseApp) Authorization() governance.Level { return governance.LevelConfirm }

func (c *CloseApp) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		AppName string `json:"app_name"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}
	if args.AppName == "" {
		return "Error: app_name is required", nil
	}

	out, err := exec.CommandContext(ctx, "pkill", "-if", args.AppName).CombinedOutput()
	if err != nil {
		return fmt.Sprintf("Could not close %s: %v\nOutput: %s", args.AppName, err, strings.TrimSpace(string(out))), nil
	}
	return fmt.Sprintf("Closing %s", args.AppName), nil
}
