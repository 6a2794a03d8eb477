package handler

import (
	"errors"
	"net/http"

	"event-ticketing/internal/model"
	"event-ticketing/internal/service"
	apperrors "event-ticketing/pkg/apperrors"
	"event-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.List)
		router.GET("events/:id", h.GetByID)
		router.POST("events", h.Create)
		router.PUT("events/:id", h.Update)
		router.DELETE("events/:id", h.Delete)
		router.GET("events/:id/availability", h.GetAvailability)
		router.GET("events/availability", h.GetAllAvailability)
	}
}

func (h *EventHandler) List(c *gin.Context) {
	status := model.EventStatus(c.Query("status"))
	events, err := h.service.ListEvents(c, status)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByID(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}
	event, err := h.service.GetEvent(c, id)
	if err != nil {
		h.handleError(c, err, "GetByID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req model.CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return
	}

	created, err := h.service.CreateEvent(c, req.Title, req.Description, req.Venue,
		req.DateTime, req.Capacity, price, model.EventStatus(req.Status))
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Update(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}
	var req model.UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := &model.UpdateEventParams{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		DateTime:    req.DateTime,
		Capacity:    req.Capacity,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}
		params.Price = &price
	}
	if req.Status != nil {
		status := model.EventStatus(*req.Status)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		params.Status = &status
	}

	updated, err := h.service.UpdateEvent(c, id, params)
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteEvent(c, id); err != nil {
		h.handleError(c, err, "Delete")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) GetAvailability(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}
	availability, err := h.service.GetAvailability(c, id)
	if err != nil {
		h.handleError(c, err, "GetAvailability")
		return
	}
	c.JSON(http.StatusOK, availability)
}

func (h *EventHandler) GetAllAvailability(c *gin.Context) {
	availability, err := h.service.GetAllActiveAvailability(c)
	if err != nil {
		h.handleError(c, err, "GetAllAvailability")
		return
	}
	c.JSON(http.StatusOK, availability)
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
