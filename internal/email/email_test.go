package email

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/Domenick1991/boatbooking/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender_Handle(t *testing.T) {
	var buf bytes.Buffer
	s := NewSender(slog.New(slog.NewTextHandler(&buf, nil)))

	payload, err := json.Marshal(events.BookingEvent{
		Type:   events.TypeBookingCancelled,
		TripID: 7,
		Status: "confirmed",
		Beds: []events.Bed{
			{BookingID: 1, PriceCents: 1000, PenaltyCents: 1000},
			{BookingID: 2, PriceCents: 3000, PenaltyCents: 3000},
		},
	})
	require.NoError(t, err)

	require.NoError(t, s.Handle(context.Background(), payload))
	out := buf.String()
	assert.Contains(t, out, "type=booking_cancelled")
	assert.Contains(t, out, "trip_id=7")
	assert.Contains(t, out, "total_cents=4000")
	assert.Contains(t, out, "penalty_cents=4000")
}

func TestSender_HandleSkipsGarbage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSender(slog.New(slog.NewTextHandler(&buf, nil)))

	assert.NoError(t, s.Handle(context.Background(), []byte("{not json")))
	assert.Contains(t, buf.String(), "decode event error")
}
