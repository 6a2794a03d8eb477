package model

import (
	"testing"

	apperrors "event-ticketing/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		booking, err := NewBooking(1, 2, 3, decimal.NewFromInt(30))

		require.NoError(t, err)
		assert.Equal(t, 1, booking.UserID)
		assert.Equal(t, 2, booking.EventID)
		assert.Equal(t, 3, booking.Quantity)
		assert.Equal(t, BookingStatusConfirmed, booking.Status)
		assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(30)))
	})

	t.Run("Failed - invalid quantity", func(t *testing.T) {
		_, err := NewBooking(1, 2, 0, decimal.NewFromInt(10))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = NewBooking(1, 2, -1, decimal.NewFromInt(10))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Failed - non-positive amount", func(t *testing.T) {
		_, err := NewBooking(1, 2, 1, decimal.Zero)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Failed - invalid references", func(t *testing.T) {
		_, err := NewBooking(0, 2, 1, decimal.NewFromInt(10))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = NewBooking(1, 0, 1, decimal.NewFromInt(10))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestBookingStatusTransitions(t *testing.T) {
	// confirmed 只能轉 cancelled；cancelled 為終態
	assert.True(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusCancelled))
	assert.False(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusConfirmed))
	assert.False(t, BookingStatusCancelled.CanTransitionTo(BookingStatusConfirmed))
	assert.False(t, BookingStatusCancelled.CanTransitionTo(BookingStatusCancelled))
}

func TestBookingStatusIsValid(t *testing.T) {
	assert.True(t, BookingStatusConfirmed.IsValid())
	assert.True(t, BookingStatusCancelled.IsValid())
	assert.False(t, BookingStatus("pending").IsValid())
	assert.False(t, BookingStatus("").IsValid())
}
