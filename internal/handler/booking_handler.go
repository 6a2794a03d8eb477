package handler

import (
	"errors"
	"net/http"
	"strconv"

	"event-ticketing/internal/model"
	"event-ticketing/internal/service"
	apperrors "event-ticketing/pkg/apperrors"
	"event-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service service.BookingService
}

func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("bookings", h.Create)
		router.PUT("bookings/:id/cancel", h.Cancel)
		router.PATCH("bookings/:id/status", h.UpdateStatus)
		router.GET("users/:id/bookings", h.ListByUser)
		router.GET("events/:id/bookings", h.ListByEvent)
	}
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.CreateBooking(c, req.UserID, req.EventID, req.Quantity)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}
	cancelled, err := h.service.CancelBooking(c, id)
	if err != nil {
		h.handleError(c, err, "Cancel")
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}
	var req model.UpdateBookingStatusRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	updated, err := h.service.UpdateStatus(c, id, model.BookingStatus(req.Status))
	if err != nil {
		h.handleError(c, err, "UpdateStatus")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) ListByUser(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}
	bookings, err := h.service.GetUserBookings(c, id)
	if err != nil {
		h.handleError(c, err, "ListByUser")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// ListByEvent 需要 admin 身分；requesting_user_id 由呼叫方帶入
func (h *BookingHandler) ListByEvent(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}
	requestingUserID, err := strconv.Atoi(c.Query("requesting_user_id"))
	if err != nil || requestingUserID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requesting_user_id"})
		return
	}

	bookings, err := h.service.GetEventBookings(c, id, requestingUserID)
	if err != nil {
		h.handleError(c, err, "ListByEvent")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	var capErr *apperrors.InsufficientCapacityError
	switch {
	case errors.As(err, &capErr):
		log.Warn("Insufficient capacity",
			zap.Int("available", capErr.Available),
			zap.Int("requested", capErr.Requested))
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Insufficient capacity",
			"available": capErr.Available,
			"requested": capErr.Requested,
		})
	case errors.Is(err, apperrors.ErrEventNotBookable):
		log.Warn("Event not bookable")
		c.JSON(http.StatusConflict, gin.H{"error": "Event is not open for booking"})
	case errors.Is(err, apperrors.ErrBookingAlreadyCancelled):
		log.Warn("Booking already cancelled")
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is already cancelled"})
	case errors.Is(err, apperrors.ErrBookingNotFound):
		log.Warn("Booking not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		log.Warn("Forbidden")
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
