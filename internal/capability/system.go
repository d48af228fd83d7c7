package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/rahul/vela/internal/governance"
)

// SystemInfo reports basic machine health: uptime, load, disk usage.
type SystemInfo struct {
	started time.Time
}

func NewSystemInfo() *SystemInfo {
	return &SystemInfo{started: time.Now()}
}

func (s *SystemInfo) Name() string { return "system_info" }

func (s *SystemInfo) Description() string {
	return "Report assistant uptime, memory usage, and disk space."
}

func (s *SystemInfo) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (s *SystemInfo) Authorization() governance.Level { return governance.LevelOpen }

func (s *SystemInfo) Execute(ctx context.Context, input string) (string, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var report strings.Builder
	fmt.Fprintf(&report, "Uptime: %v\n", time.Since(s.started).Round(time.Second))
	fmt.Fprintf(&report, "Memory: %.1f MB in use\n", float64(m.Alloc)/1024/1024)
	fmt.Fprintf(&report, "Goroutines: %d\n", runtime.NumGoroutine())

	if out, err := exec.CommandContext(ctx, "df", "-h", "/").CombinedOutput(); err == nil {
		report.WriteString("Disk:\n")
		report.Write(out)
	}
	return report.String(), nil
}

// SetVolume adjusts the master audio level, best effort via amixer.
type SetVolume struct{}

func NewSetVolume() *SetVolume { return &SetVolume{} }

func (v *SetVolume) Name() string { return "set_volume" }

func (v *SetVolume) Description() string {
	return "Set the system master volume to a percentage between 0 and 100."
}

func (v *SetVolume) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"level": map[string]any{
				"type":        "integer",
				"description": "Volume percentage (0-100)",
			},
		},
		"required": []string{"level"},
	}
}

func (v *SetVolume) Authorization() governance.Level { return governance.LevelOpen }

func (v *SetVolume) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Level int `json:"level"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}
	if args.Level < 0 || args.Level > 100 {
		return "Error: level must be between 0 and 100", nil
	}

	out, err := exec.CommandContext(ctx, "amixer", "set", "Master", fmt.Sprintf("%d%%", args.Level)).CombinedOutput()
	if err != nil {
		return fmt.Sprintf("Failed to set volume: %v\nOutput: %s", err, strings.TrimSpace(string(out))), nil
	}
	return fmt.Sprintf("Volume set to %d percent", args.Level), nil
}

// LockScreen locks the session. Locking mid-task is disruptive, so it asks
// first.
type LockScreen struct{}

func NewLockScreen() *LockScreen { return &LockScreen{} }

func (l *LockScreen) Name() string { return "lock_screen" }

func (l *LockScreen) Description() string {
	return "Lock the desktop session immediately."
}

func (l *LockScreen) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (l *LockScreen) Authorization() governance.Level { return governance.LevelConfirm }

func (l *LockScreen) Execute(ctx context.Context, input string) (string, error) {
	out, err := exec.CommandContext(ctx, "loginctl", "lock-session").CombinedOutput()
	if err != nil {
		return fmt.Sprintf("Failed to lock the session: %v\nOutput: %s", err, strings.TrimSpace(string(out))), nil
	}
	return "Locking the session", nil
}
