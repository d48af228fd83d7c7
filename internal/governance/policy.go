package governance

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// Level is the authorization tier a capability declares at registration.
type Level int

const (
	// LevelOpen capabilities run unconditionally.
	LevelOpen Level = iota
	// LevelConfirm capabilities pause execution until the user approves.
	LevelConfirm
	// LevelRestricted capabilities require elevation that cannot be granted
	// through conversation.
	LevelRestricted
)

func (l Level) String() string {
	switch l {
	case LevelOpen:
		return "open"
	case LevelConfirm:
		return "confirm_required"
	case LevelRestricted:
		return "restricted"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a single authorization check. It is computed
// fresh for every step and never cached.
type Decision struct {
	Allowed bool
	Reason  string
}

// Canonical denial reasons. The coordinator matches on these to decide
// between pausing for confirmation and recording an outright block.
const (
	ReasonPolicyViolation      = "policy violation"
	ReasonConfirmationRequired = "user confirmation required"
	ReasonElevationRequired    = "elevated authorization required"
	ReasonAuthorized           = "authorized"
)

// Policy is the on-disk rule set, hot-swappable at runtime.
type Policy struct {
	BlockedCapabilities      []string `yaml:"blocked_capabilities"`
	DeniedArgumentPatterns   []string `yaml:"denied_argument_patterns"`
	IrreversibleCapabilities []string `yaml:"irreversible_capabilities"`
	IrreversibleLimit        int      `yaml:"irreversible_limit"`
}

// DefaultPolicy mirrors the safety rules the assistant ships with.
func DefaultPolicy() Policy {
	return Policy{
		DeniedArgumentPatterns: []string{
			`rm\s+-rf`,
			`mkfs`,
			`shutdown`,
			`reboot`,
		},
		IrreversibleCapabilities: []string{"delete_item", "shred"},
		IrreversibleLimit:        2,
	}
}

// LoadPolicy reads a YAML policy file, falling back to defaults for any
// field the file leaves unset.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if p.IrreversibleLimit <= 0 {
		p.IrreversibleLimit = DefaultPolicy().IrreversibleLimit
	}
	return p, nil
}

// Gate decides whether a capability may run. Authorize mutates nothing; the
// policy snapshot is guarded so it can be replaced while requests are in
// flight without torn reads.
type Gate struct {
	mu      sync.RWMutex
	blocked map[string]bool
	denied  []*regexp.Regexp
}

func NewGate(p Policy) (*Gate, error) {
	g := &Gate{}
	if err := g.SetPolicy(p); err != nil {
		return nil, err
	}
	return g, nil
}

// SetPolicy swaps the active policy snapshot.
func (g *Gate) SetPolicy(p Policy) error {
	blocked := make(map[string]bool, len(p.BlockedCapabilities))
	for _, name := range p.BlockedCapabilities {
		blocked[name] = true
	}
	denied := make([]*regexp.Regexp, 0, len(p.DeniedArgumentPatterns))
	for _, pattern := range p.DeniedArgumentPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid denied argument pattern %q: %w", pattern, err)
		}
		denied = append(denied, re)
	}

	g.mu.Lock()
	g.blocked = blocked
	g.denied = denied
	g.mu.Unlock()
	return nil
}

// BlockCapability adds a single name to the block-list of the current
// policy epoch.
func (g *Gate) BlockCapability(name string) {
	g.mu.Lock()
	g.blocked[name] = true
	g.mu.Unlock()
}

// DenyArguments adds a regex that denies any invocation whose raw
// parameters match it.
func (g *Gate) DenyArguments(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.denied = append(g.denied, re)
	g.mu.Unlock()
	return nil
}

// Authorize evaluates one step. Rule order, first match wins: block-list,
// denied argument patterns, then the declared level.
func (g *Gate) Authorize(name string, level Level, params string) Decision {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.blocked[name] {
		return Decision{Allowed: false, Reason: ReasonPolicyViolation}
	}
	for _, re := range g.denied {
		if re.MatchString(params) {
			return Decision{Allowed: false, Reason: ReasonPolicyViolation}
		}
	}

	switch level {
	case LevelOpen:
		return Decision{Allowed: true, Reason: ReasonAuthorized}
	case LevelConfirm:
		return Decision{Allowed: false, Reason: ReasonConfirmationRequired}
	case LevelRestricted:
		return Decision{Allowed: false, Reason: ReasonElevationRequired}
	default:
		return Decision{Allowed: false, Reason: ReasonPolicyViolation}
	}
}

// RequiresConfirmation reports whether a denial should pause the plan for
// user approval rather than fail the step.
func (d Decision) RequiresConfirmation() bool {
	return !d.Allowed && d.Reason == ReasonConfirmationRequired
}
