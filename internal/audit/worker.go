package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the publisher's channel, persists them,
// and forwards them to the optional external sink. It keeps background
// processing testable without wiring queue infrastructure into services.
type Worker struct {
	store  Store
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is cancelled. Persistence and sink
// failures are logged, never fatal: a lost audit event must not take the
// pipeline down.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "failed to append audit event",
					"type", string(event.Type),
					"error", err.Error(),
				)
			}
			if w.sink != nil {
				if err := w.sink.Publish(ctx, event); err != nil {
					w.logger.WarnContext(ctx, "failed to publish audit event",
						"type", string(event.Type),
						"error", err.Error(),
					)
				}
			}
		}
	}
}
