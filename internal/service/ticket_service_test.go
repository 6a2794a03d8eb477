package service

import (
	"context"
	"sync"
	"testing"

	"event-ticketing/internal/model"
	"event-ticketing/internal/repository"
	apperrors "event-ticketing/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createConfirmedBooking(t *testing.T, s *testStack, quantity int) (*model.Booking, []*model.Ticket) {
	t.Helper()
	ctx := context.Background()
	user := createTestUser(t, s, "Alice", "0912345678", model.UserRoleCustomer)
	event := createTestEvent(t, s, 100, "10.00")

	booking, err := s.bookings.CreateBooking(ctx, user.ID, event.ID, quantity)
	require.NoError(t, err)

	tickets, err := s.store.Tickets().FindByBookingID(ctx, booking.ID)
	require.NoError(t, err)
	return booking, tickets
}

func TestTicketService_GenerateTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - one ticket per seat with unique codes", func(t *testing.T) {
		s := newTestStack(t)
		_, tickets := createConfirmedBooking(t, s, 5)

		require.Len(t, tickets, 5)
		seen := make(map[string]bool)
		for _, ticket := range tickets {
			assert.Equal(t, model.TicketStatusActive, ticket.Status)
			assert.Len(t, ticket.TicketCode, 12)
			for _, ch := range ticket.TicketCode {
				assert.Contains(t, ticketCodeCharset, string(ch))
			}
			assert.False(t, seen[ticket.TicketCode], "duplicate code %s", ticket.TicketCode)
			seen[ticket.TicketCode] = true
		}
	})

	t.Run("Failed - non-positive quantity", func(t *testing.T) {
		s := newTestStack(t)
		_, err := s.tickets.GenerateTickets(ctx, 1, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Failed - code space exhausted after bounded retries", func(t *testing.T) {
		s := newTestStack(t)
		// 所有候選碼都回報已存在，重試到上限後放棄
		saturated := &saturatedTicketRepo{TicketRepository: s.store.Tickets()}
		tickets := NewTicketService(saturated, s.store.Bookings(), s.store.Events(), s.store.Users())

		issued, err := tickets.GenerateTickets(ctx, 1, 2)
		assert.ErrorIs(t, err, apperrors.ErrCodeSpaceExhausted)
		assert.Empty(t, issued)
		assert.Equal(t, maxCodeAttempts, saturated.existsCalls)
	})
}

// saturatedTicketRepo 讓每個產生的票券代碼都撞碼
type saturatedTicketRepo struct {
	repository.TicketRepository
	existsCalls int
}

func (r *saturatedTicketRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	r.existsCalls++
	return true, nil
}

func TestTicketService_CancelTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("Cancels active tickets only", func(t *testing.T) {
		s := newTestStack(t)
		booking, tickets := createConfirmedBooking(t, s, 3)

		// 其中一張已入場
		_, err := s.store.Tickets().UpdateStatus(ctx, tickets[0].ID, model.TicketStatusUsed)
		require.NoError(t, err)

		cancelled, err := s.tickets.CancelTickets(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, cancelled)

		used, err := s.store.Tickets().FindByCode(ctx, tickets[0].TicketCode)
		require.NoError(t, err)
		assert.Equal(t, model.TicketStatusUsed, used.Status, "used tickets keep their status")
	})

	t.Run("No active tickets yields zero", func(t *testing.T) {
		s := newTestStack(t)
		booking, _ := createConfirmedBooking(t, s, 2)

		_, err := s.tickets.CancelTickets(ctx, booking.ID)
		require.NoError(t, err)

		cancelled, err := s.tickets.CancelTickets(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, cancelled)
	})
}

func TestTicketService_ValidateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid active ticket with details", func(t *testing.T) {
		s := newTestStack(t)
		booking, tickets := createConfirmedBooking(t, s, 1)

		result, err := s.tickets.ValidateTicket(ctx, tickets[0].TicketCode)
		require.NoError(t, err)
		assert.True(t, result.IsValid)
		assert.Equal(t, "Ticket is valid and ready to use", result.Message)
		assert.Equal(t, booking.ID, result.BookingID)
		assert.Equal(t, "Concert", result.EventName)
		assert.Equal(t, "Alice", result.UserName)
		require.NotNil(t, result.EventDate)
	})

	t.Run("Unknown code reports not found without error", func(t *testing.T) {
		s := newTestStack(t)

		result, err := s.tickets.ValidateTicket(ctx, "NOSUCHCODE99")
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Equal(t, "Ticket not found", result.Message)
	})

	t.Run("Cancelled ticket is invalid", func(t *testing.T) {
		s := newTestStack(t)
		booking, tickets := createConfirmedBooking(t, s, 1)

		_, err := s.bookings.CancelBooking(ctx, booking.ID)
		require.NoError(t, err)

		result, err := s.tickets.ValidateTicket(ctx, tickets[0].TicketCode)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Equal(t, "Ticket has been cancelled", result.Message)
	})

	t.Run("Active ticket for cancelled event is invalid", func(t *testing.T) {
		s := newTestStack(t)
		booking, tickets := createConfirmedBooking(t, s, 1)

		status := model.EventStatusCancelled
		_, err := s.store.Events().Update(ctx, booking.EventID, model.UpdateEventParams{Status: &status})
		require.NoError(t, err)

		result, err := s.tickets.ValidateTicket(ctx, tickets[0].TicketCode)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Equal(t, "Event is cancelled, ticket cannot be used", result.Message)
	})
}

func TestTicketService_UseTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - single use", func(t *testing.T) {
		s := newTestStack(t)
		_, tickets := createConfirmedBooking(t, s, 1)

		result, err := s.tickets.UseTicket(ctx, tickets[0].TicketCode)
		require.NoError(t, err)
		assert.Equal(t, model.TicketStatusUsed, result.Status)
		assert.Equal(t, "Ticket has been successfully used", result.Message)

		stored, err := s.store.Tickets().FindByCode(ctx, tickets[0].TicketCode)
		require.NoError(t, err)
		assert.Equal(t, model.TicketStatusUsed, stored.Status)
	})

	t.Run("Failed - second use rejected", func(t *testing.T) {
		s := newTestStack(t)
		_, tickets := createConfirmedBooking(t, s, 1)

		_, err := s.tickets.UseTicket(ctx, tickets[0].TicketCode)
		require.NoError(t, err)

		result, err := s.tickets.UseTicket(ctx, tickets[0].TicketCode)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotActive)
		require.NotNil(t, result)
		assert.Equal(t, "Ticket has already been used", result.Message)
	})

	t.Run("Failed - unknown code", func(t *testing.T) {
		s := newTestStack(t)

		result, err := s.tickets.UseTicket(ctx, "NOSUCHCODE99")
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
		require.NotNil(t, result)
		assert.False(t, result.IsValid)
	})

	t.Run("Failed - cancelled ticket", func(t *testing.T) {
		s := newTestStack(t)
		booking, tickets := createConfirmedBooking(t, s, 1)

		_, err := s.bookings.CancelBooking(ctx, booking.ID)
		require.NoError(t, err)

		_, err = s.tickets.UseTicket(ctx, tickets[0].TicketCode)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotActive)
	})
}

// Simulates multiple gate scanners racing on the same code
func TestTicketService_UseTicket_ConcurrentRedemption(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t)
	user := createTestUser(t, s, "Alice", "0912345678", model.UserRoleCustomer)
	event := createTestEvent(t, s, 100, "10.00")

	rounds := 50
	scanners := 4
	for round := 0; round < rounds; round++ {
		booking, err := s.bookings.CreateBooking(ctx, user.ID, event.ID, 1)
		require.NoError(t, err)
		tickets, err := s.store.Tickets().FindByBookingID(ctx, booking.ID)
		require.NoError(t, err)
		code := tickets[0].TicketCode

		var wg sync.WaitGroup
		var mu sync.Mutex
		successCount := 0
		for i := 0; i < scanners; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.tickets.UseTicket(ctx, code); err == nil {
					mu.Lock()
					successCount++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, successCount, "round %d: exactly one redemption must win", round)

		stored, err := s.store.Tickets().FindByCode(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, model.TicketStatusUsed, stored.Status)
	}
}
