package audit

import (
	"context"
	"log/slog"
)

// Sink receives events after they are persisted, e.g. a Kafka topic.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker consumes audit events from a channel and hands them to a sink. It
// keeps slow sinks off the request path.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run forwards events until ctx is cancelled or the inbox is closed.
// Sink failures are logged and do not stop the worker.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to forward audit event",
					"error", err,
					"action", event.Action,
					"event_id", event.ID,
				)
			}
		}
	}
}
