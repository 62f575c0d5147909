package email

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Domenick1991/boatbooking/internal/events"
)

// Sender turns booking events into passenger notifications. Delivery is a
// log line until a mail provider is wired in.
type Sender struct {
	log *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event events.BookingEvent) error {
	var total, penalties int64
	for _, b := range event.Beds {
		total += b.PriceCents
		penalties += b.PenaltyCents
	}
	s.log.InfoContext(ctx, "send booking notification",
		slog.String("type", event.Type),
		slog.Int64("trip_id", event.TripID),
		slog.String("status", event.Status),
		slog.Int("beds", len(event.Beds)),
		slog.Int64("total_cents", total),
		slog.Int64("penalty_cents", penalties),
	)
	return nil
}

// Handle decodes a raw broker payload and sends it. Undecodable payloads are
// logged and skipped so one bad message does not stall the consumer.
func (s *Sender) Handle(ctx context.Context, payload []byte) error {
	var event events.BookingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.log.Warn("decode event error", slog.String("error", err.Error()))
		return nil
	}
	return s.Send(ctx, event)
}
