package observability

import (
	"sync"
	"time"
)

// State mirrors the coordinator's externally visible state for the
// dashboard.
type State string

const (
	StateIdle      State = "IDLE"
	StatePlanning  State = "PLANNING"
	StateExecuting State = "EXECUTING"
	StateAwaiting  State = "AWAITING"
)

type SystemStatus struct {
	mu            sync.RWMutex
	CurrentState  State
	ActiveTask    string
	QueueDepth    int
	LastHeartbeat time.Time
}

var globalStatus = &SystemStatus{
	CurrentState:  StateIdle,
	LastHeartbeat: time.Now(),
}

// SetStatus updates the global system status.
func SetStatus(state State, task string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.CurrentState = state
	globalStatus.ActiveTask = task
}

// SetQueueDepth records how many plan steps remain to drain.
func SetQueueDepth(n int) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.QueueDepth = n
}

// GetStatus retrieves a copy of the global system status.
func GetStatus() (State, string, int, time.Time) {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.CurrentState, globalStatus.ActiveTask, globalStatus.QueueDepth, globalStatus.LastHeartbeat
}

// Heartbeat updates the last heartbeat time.
func Heartbeat() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.LastHeartbeat = time.Now()
}
