package store

import (
	"log"

	"github.com/rahul/vela/internal/events"
)

// AuditWriter persists action_completed events. It is a pure observer: a
// write failure is logged and dropped, it never reaches back into execution.
type AuditWriter struct {
	Store *Store
}

func NewAuditWriter(s *Store) *AuditWriter {
	return &AuditWriter{Store: s}
}

// Attach subscribes the writer to the bus.
func (w *AuditWriter) Attach(bus *events.Bus) {
	bus.Subscribe(events.ActionCompleted, w.handle)
}

func (w *AuditWriter) handle(payload any) {
	rec, ok := payload.(AuditRecord)
	if !ok {
		log.Printf("audit: unexpected payload type %T", payload)
		return
	}
	if err := w.Store.AppendAudit(rec); err != nil {
		log.Printf("audit: failed to append record for %s: %v", rec.Capability, err)
	}
}
