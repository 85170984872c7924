package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily. Events are
// also offered to a forwarding queue when one is attached.
type Publisher struct {
	store  Store
	queue  chan<- Event
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithForwarding attaches the inbox of a Worker.
func WithForwarding(queue chan<- Event) Option {
	return func(p *Publisher) {
		p.queue = queue
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps the event with request metadata and persists it.
// Forwarding never blocks the caller; a full queue drops the copy.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.Device(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		return err
	}

	if p.queue != nil {
		select {
		case p.queue <- event:
		default:
			if p.logger != nil {
				p.logger.WarnContext(ctx, "audit forwarding queue full, event not forwarded",
					"action", event.Action,
					"request_id", event.RequestID,
				)
			}
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

func (p *Publisher) ListAll(ctx context.Context) ([]Event, error) {
	return p.store.ListAll(ctx)
}
