package service

import (
	"context"
	"testing"
	"time"

	"event-ticketing/internal/model"
	"event-ticketing/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testStack 以記憶體儲存組裝完整服務堆疊，測試不需要外部資料庫
type testStack struct {
	store     *memory.Store
	users     UserService
	events    EventService
	tickets   TicketService
	admission AdmissionService
	bookings  BookingService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	store := memory.NewStore()
	admission := NewAdmissionService(store.Events(), store.Bookings())
	tickets := NewTicketService(store.Tickets(), store.Bookings(), store.Events(), store.Users())
	bookings := NewBookingService(store.Users(), store.Events(), store.Bookings(), store.Tickets(),
		admission, tickets, nil, nil)

	return &testStack{
		store:     store,
		users:     NewUserService(store.Users()),
		events:    NewEventService(store.Events(), store.Bookings(), nil),
		tickets:   tickets,
		admission: admission,
		bookings:  bookings,
	}
}

func createTestUser(t *testing.T, s *testStack, name, phone string, role model.UserRole) *model.User {
	t.Helper()
	user, err := s.users.CreateUser(context.Background(), name, phone, role)
	require.NoError(t, err)
	return user
}

func createTestEvent(t *testing.T, s *testStack, capacity int, price string) *model.Event {
	t.Helper()
	event, err := s.events.CreateEvent(context.Background(), "Concert", "desc", "Arena",
		time.Now().Add(24*time.Hour), capacity, decimal.RequireFromString(price), model.EventStatusActive)
	require.NoError(t, err)
	return event
}

func createTestEventWithStatus(t *testing.T, s *testStack, capacity int, price string, status model.EventStatus) *model.Event {
	t.Helper()
	dateTime := time.Now().Add(24 * time.Hour)
	if status == model.EventStatusCompleted {
		dateTime = time.Now().Add(-24 * time.Hour)
	}
	event, err := s.events.CreateEvent(context.Background(), "Concert", "desc", "Arena",
		dateTime, capacity, decimal.RequireFromString(price), status)
	require.NoError(t, err)
	return event
}
