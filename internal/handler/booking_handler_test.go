package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"event-ticketing/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupTestRouter(t)
		user := seedUser(t, env, "Alice", "0912345678", model.UserRoleCustomer)
		event := seedEvent(t, env, 5, "10.00")

		req := createJSONHTTPRequest("POST", "/api/v1/bookings", model.CreateBookingRequest{
			UserID: user.ID, EventID: event.ID, Quantity: 3,
		})
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var booking model.Booking
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
		assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, "30", booking.TotalAmount.String())
	})

	t.Run("Failed - insufficient capacity returns counts", func(t *testing.T) {
		env := setupTestRouter(t)
		user := seedUser(t, env, "Alice", "0912345678", model.UserRoleCustomer)
		event := seedEvent(t, env, 2, "10.00")

		req := createJSONHTTPRequest("POST", "/api/v1/bookings", model.CreateBookingRequest{
			UserID: user.ID, EventID: event.ID, Quantity: 3,
		})
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusConflict, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Insufficient capacity", body["error"])
		assert.Equal(t, float64(2), body["available"])
		assert.Equal(t, float64(3), body["requested"])
	})

	t.Run("Failed - user not found", func(t *testing.T) {
		env := setupTestRouter(t)
		event := seedEvent(t, env, 5, "10.00")

		req := createJSONHTTPRequest("POST", "/api/v1/bookings", model.CreateBookingRequest{
			UserID: 999, EventID: event.ID, Quantity: 1,
		})
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Failed - binding error", func(t *testing.T) {
		env := setupTestRouter(t)

		req := createJSONHTTPRequest("POST", "/api/v1/bookings", map[string]interface{}{"user_id": 1})
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookingHandler_Cancel(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupTestRouter(t)
		user := seedUser(t, env, "Alice", "0912345678", model.UserRoleCustomer)
		event := seedEvent(t, env, 5, "10.00")
		booking, err := env.bookings.CreateBooking(context.Background(), user.ID, event.ID, 2)
		require.NoError(t, err)

		req := createJSONHTTPRequest("PUT", fmt.Sprintf("/api/v1/bookings/%d/cancel", booking.ID), nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var cancelled model.Booking
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
		assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	})

	t.Run("Failed - already cancelled", func(t *testing.T) {
		env := setupTestRouter(t)
		user := seedUser(t, env, "Alice", "0912345678", model.UserRoleCustomer)
		event := seedEvent(t, env, 5, "10.00")
		booking, err := env.bookings.CreateBooking(context.Background(), user.ID, event.ID, 1)
		require.NoError(t, err)
		_, err = env.bookings.CancelBooking(context.Background(), booking.ID)
		require.NoError(t, err)

		req := createJSONHTTPRequest("PUT", fmt.Sprintf("/api/v1/bookings/%d/cancel", booking.ID), nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		env := setupTestRouter(t)

		req := createJSONHTTPRequest("PUT", "/api/v1/bookings/999/cancel", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Failed - invalid id", func(t *testing.T) {
		env := setupTestRouter(t)

		req := createJSONHTTPRequest("PUT", "/api/v1/bookings/abc/cancel", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookingHandler_UpdateStatus(t *testing.T) {
	env := setupTestRouter(t)
	user := seedUser(t, env, "Alice", "0912345678", model.UserRoleCustomer)
	event := seedEvent(t, env, 5, "10.00")
	booking, err := env.bookings.CreateBooking(context.Background(), user.ID, event.ID, 1)
	require.NoError(t, err)

	t.Run("Cancel via status update", func(t *testing.T) {
		req := createJSONHTTPRequest("PATCH", fmt.Sprintf("/api/v1/bookings/%d/status", booking.ID),
			model.UpdateBookingStatusRequest{Status: "cancelled"})
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Failed - unknown status", func(t *testing.T) {
		req := createJSONHTTPRequest("PATCH", fmt.Sprintf("/api/v1/bookings/%d/status", booking.ID),
			model.UpdateBookingStatusRequest{Status: "pending"})
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookingHandler_ListByUser(t *testing.T) {
	env := setupTestRouter(t)
	user := seedUser(t, env, "Alice", "0912345678", model.UserRoleCustomer)
	event := seedEvent(t, env, 5, "10.00")
	_, err := env.bookings.CreateBooking(context.Background(), user.ID, event.ID, 2)
	require.NoError(t, err)

	req := createJSONHTTPRequest("GET", fmt.Sprintf("/api/v1/users/%d/bookings", user.ID), nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var details []model.BookingWithDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	require.Len(t, details, 1)
	assert.Equal(t, "Alice", details[0].User.Name)
	assert.Len(t, details[0].Tickets, 2)
}

func TestBookingHandler_ListByEvent(t *testing.T) {
	env := setupTestRouter(t)
	customer := seedUser(t, env, "Alice", "0912345678", model.UserRoleCustomer)
	admin := seedUser(t, env, "Root", "0900000000", model.UserRoleAdmin)
	event := seedEvent(t, env, 5, "10.00")
	_, err := env.bookings.CreateBooking(context.Background(), customer.ID, event.ID, 1)
	require.NoError(t, err)

	t.Run("Success - admin", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/events/%d/bookings?requesting_user_id=%d", event.ID, admin.ID)
		req := createJSONHTTPRequest("GET", path, nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Failed - customer forbidden", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/events/%d/bookings?requesting_user_id=%d", event.ID, customer.ID)
		req := createJSONHTTPRequest("GET", path, nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Failed - missing requesting_user_id", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/events/%d/bookings", event.ID)
		req := createJSONHTTPRequest("GET", path, nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
