// Package worker consumes ledger events off the broker and writes the
// audit trail.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Arpanmondalz/zen-spend/internal/amqp"
	"github.com/Arpanmondalz/zen-spend/internal/log"
)

// AuditWorker records every ledger mutation as a structured log line.
// It is intentionally append-only: the ledger itself stays the source
// of truth, the audit trail is for looking back at spending behavior.
type AuditWorker struct {
	events *amqp.Client
	logger *log.Logger

	processed atomic.Int64
}

func NewAuditWorker(events *amqp.Client, logger *log.Logger) *AuditWorker {
	return &AuditWorker{
		events: events,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Processed returns how many events this worker has handled.
func (w *AuditWorker) Processed() int64 {
	return w.processed.Load()
}

// Handle records one ledger event. Unknown event names are rejected so
// they stay on the queue for a newer worker build to pick up.
func (w *AuditWorker) Handle(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	switch msg.Event {
	case amqp.EventExpenseCreated, amqp.EventExpenseDeleted,
		amqp.EventItemParked, amqp.EventItemConverted, amqp.EventItemUnparked,
		amqp.EventBudgetChanged, amqp.EventLedgerCleared, amqp.EventBackupRestored:
	default:
		return fmt.Errorf("unknown ledger event %q", msg.Event)
	}

	w.logger.InfoContext(ctx, "Ledger event",
		"event", msg.Event,
		"record_id", msg.RecordID,
		log.FieldAmountCents, msg.AmountCents,
		"occurred_at", msg.Timestamp.Format(time.RFC3339))

	w.processed.Add(1)
	return nil
}

// Run consumes events until the context is cancelled, reconnecting with
// backoff when the broker connection drops.
func (w *AuditWorker) Run(ctx context.Context) error {
	for {
		err := w.events.ConsumeEvents(ctx, w.Handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			w.logger.Error("Consumer stopped, reconnecting", log.FieldError, err)
		}
		if err := w.events.Reconnect(ctx); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
	}
}
