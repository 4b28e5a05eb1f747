package service

import (
	"context"

	"asset-marketplace/internal/core/domain"
	"asset-marketplace/internal/core/ports"

	"github.com/rs/zerolog"
)

// Broadcaster pushes events to connected live subscribers.
type Broadcaster interface {
	Broadcast(event domain.Event)
}

// EventFanout implements ports.EventSink. It persists the event to the
// journal, pushes it to live subscribers and mirrors it to the external
// broker when one is configured. Delivery is best-effort: failures are
// logged and never propagate to the operation that emitted the event.
type EventFanout struct {
	journal     ports.EventJournal
	broadcaster Broadcaster
	publisher   ports.EventPublisher
	log         zerolog.Logger
}

// NewEventFanout creates an event fanout. broadcaster and publisher may
// be nil when the corresponding outlet is disabled.
func NewEventFanout(
	journal ports.EventJournal,
	broadcaster Broadcaster,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *EventFanout {
	return &EventFanout{
		journal:     journal,
		broadcaster: broadcaster,
		publisher:   publisher,
		log:         log,
	}
}

// Emit fans the event out to all configured outlets.
func (s *EventFanout) Emit(ctx context.Context, event domain.Event) {
	if s.journal != nil {
		if err := s.journal.Append(ctx, event); err != nil {
			s.log.Warn().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", string(event.Type)).
				Msg("event: journal append failed")
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(event)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warn().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", string(event.Type)).
				Msg("event: broker publish failed")
		}
	}
}
