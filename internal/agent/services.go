package agent

import (
	"github.com/tmc/langchaingo/llms"

	"github.com/rahul/vela/internal/capability"
	"github.com/rahul/vela/internal/events"
	"github.com/rahul/vela/internal/governance"
	"github.com/rahul/vela/internal/observability"
	"github.com/rahul/vela/internal/store"
	"github.com/rahul/vela/internal/tasks"
	"github.com/rahul/vela/pkg/config"
)

// Services is the explicit directory of process-wide singletons. Everything
// is wired once at startup and handed down; nothing reaches for a global.
type Services struct {
	Config   *config.Config
	Registry *capability.Registry
	Gate     *governance.Gate
	Bus      *events.Bus
	Store    *store.Store
	Tasks    *tasks.Manager
	Logger   *observability.Logger
	Model    llms.Model
}
