package handler

import (
	"errors"
	"net/http"

	"event-ticketing/internal/service"
	apperrors "event-ticketing/pkg/apperrors"
	"event-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketHandler struct {
	service service.TicketService
}

func NewTicketHandler(service service.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("tickets/:code/validate", h.Validate)
		router.PUT("tickets/:code/use", h.Use)
	}
}

// Validate 只檢查不改狀態，供入場前查驗
func (h *TicketHandler) Validate(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code"})
		return
	}

	result, err := h.service.ValidateTicket(c, code)
	if err != nil {
		h.handleError(c, err, "Validate")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Use 入場核銷：驗證通過才轉 used，同一張票只能核銷一次
func (h *TicketHandler) Use(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code"})
		return
	}

	result, err := h.service.UseTicket(c, code)
	if err != nil {
		// 帶上驗證明細讓入場端知道拒絕原因
		if result != nil && (errors.Is(err, apperrors.ErrTicketNotActive) || errors.Is(err, apperrors.ErrTicketNotFound)) {
			status := http.StatusConflict
			if errors.Is(err, apperrors.ErrTicketNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, result)
			return
		}
		h.handleError(c, err, "Use")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TicketHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
	case errors.Is(err, apperrors.ErrTicketNotActive):
		log.Warn("Ticket not active")
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket cannot be used"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
