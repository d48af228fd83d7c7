package agent

import (
	"context"
	"encoding/json"
	"os/exec"
)

// processRunning reports whether a process matching name currently exists.
// Package-level so tests can stand in for the OS probe.
var processRunning = func(ctx context.Context, name string) bool {
	return exec.CommandContext(ctx, "pgrep", "-if", name).Run() == nil
}

// verifyStep checks, after the fact, whether an action observably took
// effect. Only app launches are verifiable today; everything else returns
// no annotation. The check is advisory: it annotates the result and can
// never turn a completed action into a failure.
func verifyStep(ctx context.Context, capabilityName, paramsJSON string) string {
	if capabilityName != "open_app" {
		return ""
	}
	var params struct {
		AppName string `json:"app_name"`
	}
	if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil || params.AppName == "" {
		return ""
	}
	if !processRunning(ctx, params.AppName) {
		return " [unverified: no matching process found]"
	}
	return " [verified: process is running]"
}
