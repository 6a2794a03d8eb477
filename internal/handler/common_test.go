package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"event-ticketing/internal/model"
	"event-ticketing/internal/repository/memory"
	"event-ticketing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testEnv 以記憶體儲存組裝完整 HTTP 層，測試不需要外部資料庫
type testEnv struct {
	router   *gin.Engine
	store    *memory.Store
	users    service.UserService
	events   service.EventService
	bookings service.BookingService
	tickets  service.TicketService
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	admission := service.NewAdmissionService(store.Events(), store.Bookings())
	tickets := service.NewTicketService(store.Tickets(), store.Bookings(), store.Events(), store.Users())
	users := service.NewUserService(store.Users())
	events := service.NewEventService(store.Events(), store.Bookings(), nil)
	bookings := service.NewBookingService(store.Users(), store.Events(), store.Bookings(), store.Tickets(),
		admission, tickets, nil, nil)

	router := gin.New()
	NewUserHandler(users).RegisterRoutes(router)
	NewEventHandler(events).RegisterRoutes(router)
	NewBookingHandler(bookings).RegisterRoutes(router)
	NewTicketHandler(tickets).RegisterRoutes(router)

	return &testEnv{
		router:   router,
		store:    store,
		users:    users,
		events:   events,
		bookings: bookings,
		tickets:  tickets,
	}
}

func createJSONHTTPRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func seedUser(t *testing.T, env *testEnv, name, phone string, role model.UserRole) *model.User {
	t.Helper()
	user, err := env.users.CreateUser(context.Background(), name, phone, role)
	require.NoError(t, err)
	return user
}

func seedEvent(t *testing.T, env *testEnv, capacity int, price string) *model.Event {
	t.Helper()
	event, err := env.events.CreateEvent(context.Background(), "Concert", "desc", "Arena",
		time.Now().Add(24*time.Hour), capacity, decimal.RequireFromString(price), model.EventStatusActive)
	require.NoError(t, err)
	return event
}
