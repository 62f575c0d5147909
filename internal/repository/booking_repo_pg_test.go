package repository

import (
	"errors"
	"testing"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}
	assert.NotNil(t, NewBookingRepository(pool))
	assert.NotNil(t, NewTripRepository(pool))
	assert.NotNil(t, NewBoatRepository(pool))
	assert.NotNil(t, NewCabinRepository(pool))
}

func TestPickBookings(t *testing.T) {
	found := map[int64]domain.CabinBooking{
		1: {ID: 1, PriceCents: 100},
		2: {ID: 2, PriceCents: 200},
	}

	got, err := pickBookings(7, []int64{2, 1}, found)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, []int64{got[0].ID, got[1].ID})

	_, err = pickBookings(7, []int64{1, 3}, found)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = pickBookings(7, []int64{5}, map[int64]domain.CabinBooking{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPGErrorHelpers(t *testing.T) {
	wrapped := storeErr("insert booking", &pgconn.PgError{Code: pgUniqueViolation})
	assert.ErrorIs(t, wrapped, domain.ErrStore)
	assert.Equal(t, pgUniqueViolation, pgCode(wrapped))
	assert.Equal(t, "", pgCode(errors.New("boom")))

	assert.True(t, isNoRows(pgx.ErrNoRows))
	assert.False(t, isNoRows(errors.New("boom")))
}
