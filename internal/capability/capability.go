package capability

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rahul/vela/internal/governance"
)

// Capability defines the interface for every unit of side-effecting work
// the engine can invoke. Params arrive as a JSON object string matching the
// schema returned by Parameters.
type Capability interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema for the capability's inputs
	Authorization() governance.Level
	Execute(ctx context.Context, input string) (string, error)
}

var (
	// ErrDuplicateCapability rejects a second registration under a claimed
	// name. Last-writer-wins is deliberately not supported; silent shadowing
	// of a provider is worse than a loud boot failure.
	ErrDuplicateCapability = errors.New("capability name already registered")
	// ErrUnknownCapability is returned by Lookup for names nobody registered.
	ErrUnknownCapability = errors.New("unknown capability")
)

// Registry maps capability names to their providers. Registration happens
// once at boot; lookups dominate afterwards.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]Capability
}

func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

func (r *Registry) Register(c Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caps[c.Name()]; exists {
		return ErrDuplicateCapability
	}
	r.caps[c.Name()] = c
	return nil
}

func (r *Registry) Lookup(name string) (Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[name]
	if !ok {
		return nil, ErrUnknownCapability
	}
	return c, nil
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.caps[name]
	return ok
}

// Names returns every registered name, sorted so the planner's grounding
// context is deterministic across runs.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.caps))
	for name := range r.caps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered capabilities in name order.
func (r *Registry) All() []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps := make([]Capability, 0, len(r.caps))
	for _, c := range r.caps {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i].Name() < caps[j].Name() })
	return caps
}

type ctxKey string

const chatIDKey ctxKey = "chat_id"

// WithChatID tags a context with the originating conversation so
// capabilities like schedule_task and notify can route their output.
func WithChatID(ctx context.Context, chatID string) context.Context {
	return context.WithValue(ctx, chatIDKey, chatID)
}

// ChatID extracts the conversation tag, if any.
func ChatID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(chatIDKey).(string)
	return id, ok
}
