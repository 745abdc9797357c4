package worker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Arpanmondalz/zen-spend/internal/amqp"
	"github.com/Arpanmondalz/zen-spend/internal/log"
)

func TestHandleCountsKnownEvents(t *testing.T) {
	w := NewAuditWorker(nil, log.New(slog.LevelError, log.ComponentWorker))
	ctx := context.Background()

	events := []string{
		amqp.EventExpenseCreated,
		amqp.EventItemParked,
		amqp.EventItemConverted,
		amqp.EventBudgetChanged,
		amqp.EventBackupRestored,
	}
	for _, event := range events {
		msg := &amqp.LedgerEventMessage{Event: event, RecordID: 1, AmountCents: 4500, Timestamp: time.Now()}
		if err := w.Handle(ctx, msg); err != nil {
			t.Errorf("Handle(%s): %v", event, err)
		}
	}

	if w.Processed() != int64(len(events)) {
		t.Errorf("processed = %d, want %d", w.Processed(), len(events))
	}
}

func TestHandleRejectsUnknownEvent(t *testing.T) {
	w := NewAuditWorker(nil, log.New(slog.LevelError, log.ComponentWorker))

	msg := &amqp.LedgerEventMessage{Event: "expense.vaporized", Timestamp: time.Now()}
	if err := w.Handle(context.Background(), msg); err == nil {
		t.Error("unknown events must be rejected so they get requeued")
	}
	if w.Processed() != 0 {
		t.Errorf("processed = %d, want 0", w.Processed())
	}
}
