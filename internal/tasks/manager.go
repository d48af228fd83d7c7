package tasks

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rahul/vela/internal/observability"
)

// Fn is one unit of supervised background work.
type Fn func(ctx context.Context)

// Manager supervises named background tasks. Task names are unique while a
// task runs; starting a second task under a running name is a warning no-op,
// which keeps repeated triggers (a gateway reconnect, a dashboard redraw)
// from accumulating duplicate loops.
type Manager struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *observability.Logger

	mu      sync.Mutex
	running map[string]bool
}

func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		ctx:     ctx,
		cancel:  cancel,
		logger:  observability.NewLogger(),
		running: make(map[string]bool),
	}
}

// RunPeriodic starts a supervised loop: call fn, sleep interval, repeat. A
// panic inside fn is logged and the loop restarts on the next tick rather
// than taking the process down.
func (m *Manager) RunPeriodic(name string, fn Fn, interval time.Duration) {
	if !m.claim(name) {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.release(name)
		log.Printf("Background process '%s' initiated (every %v)", name, interval)
		for {
			m.supervise(name, fn)
			select {
			case <-m.ctx.Done():
				return
			case <-time.After(interval):
			}
		}
	}()
}

// RunOnce starts a supervised fire-and-forget task. The name frees up again
// when the task returns.
func (m *Manager) RunOnce(name string, fn Fn) {
	if !m.claim(name) {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.release(name)
		log.Printf("Background process '%s' initiated", name)
		m.supervise(name, fn)
	}()
}

// Running reports whether a task currently holds the given name.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running[name]
}

// Stop cancels every task and waits for the loops to drain.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) claim(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running[name] {
		log.Printf("Warning: background task '%s' is already running", name)
		return false
	}
	m.running[name] = true
	return true
}

func (m *Manager) release(name string) {
	m.mu.Lock()
	delete(m.running, name)
	m.mu.Unlock()
}

func (m *Manager) supervise(name string, fn Fn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Background task '%s' fault: %v", name, r)
			m.logger.LogTask(name, fmt.Sprintf("%v", r))
		}
	}()
	fn(m.ctx)
}
