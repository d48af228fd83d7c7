package agent

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rahul/vela/internal/events"
	"github.com/rahul/vela/internal/observability"
)

// HealthMonitor probes the model provider endpoint and raises a system
// alert on the bus when the assistant's reasoning service is unreachable.
type HealthMonitor struct {
	Endpoint string
	Bus      *events.Bus
	Logger   *observability.Logger

	client  *http.Client
	wasDown bool
}

func NewHealthMonitor(endpoint string, bus *events.Bus, logger *observability.Logger) *HealthMonitor {
	return &HealthMonitor{
		Endpoint: endpoint,
		Bus:      bus,
		Logger:   logger,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Check runs one probe. Alerts fire on state transitions only, so a long
// outage does not flood the bus every tick.
func (h *HealthMonitor) Check(ctx context.Context) {
	observability.Heartbeat()
	h.Logger.LogHeartbeat()

	down := h.probe(ctx)
	if down && !h.wasDown {
		h.Bus.Publish(events.SystemAlert, fmt.Sprintf("Reasoning service at %s is unreachable.", h.Endpoint))
	}
	if !down && h.wasDown {
		h.Bus.Publish(events.SystemAlert, "Reasoning service is back online.")
	}
	h.wasDown = down
}

func (h *HealthMonitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.Endpoint, nil)
	if err != nil {
		return true
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return true
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 500
}
