package model

import (
	"math"
	"strings"
	"time"

	apperrors "event-ticketing/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// EventStatus 活動狀態類型
type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusActive, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// Event 活動模型
type Event struct {
	ID          int             `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Venue       string          `json:"venue" db:"venue"`
	DateTime    time.Time       `json:"date_time" db:"date_time"`
	Capacity    int             `json:"capacity" db:"capacity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Status      EventStatus     `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// NewEvent validates a not-yet-persisted event. The future-start check applies
// only here; events loaded from the store skip it.
func NewEvent(title, description, venue string, dateTime time.Time, capacity int, price decimal.Decimal, status EventStatus) (*Event, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(venue) == "" {
		return nil, apperrors.ErrInvalidInput
	}
	if capacity <= 0 {
		return nil, apperrors.ErrInvalidInput
	}
	if !price.IsPositive() {
		return nil, apperrors.ErrInvalidInput
	}
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	if status != EventStatusCompleted && !dateTime.After(time.Now()) {
		return nil, apperrors.ErrInvalidInput
	}
	return &Event{
		Title:       title,
		Description: description,
		Venue:       venue,
		DateTime:    dateTime,
		Capacity:    capacity,
		Price:       price,
		Status:      status,
	}, nil
}

// IsBookable 檢查活動是否可接受新訂位
func (e *Event) IsBookable() bool {
	return e.Status == EventStatusActive && e.DateTime.After(time.Now())
}

// TotalPrice 計算指定數量的總金額
func (e *Event) TotalPrice(quantity int) decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

// PotentialRevenue 完售時的總營收
func (e *Event) PotentialRevenue() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Capacity)))
}

// EventAvailability 活動即時剩餘量（推導值，不落地）
type EventAvailability struct {
	EventID          int         `json:"event_id"`
	TotalCapacity    int         `json:"total_capacity"`
	BookedTickets    int         `json:"booked_tickets"`
	AvailableTickets int         `json:"available_tickets"`
	OccupancyPct     float64     `json:"occupancy_percentage"`
	IsSoldOut        bool        `json:"is_sold_out"`
	IsAlmostSoldOut  bool        `json:"is_almost_sold_out"`
	EventStatus      EventStatus `json:"event_status"`
}

// BuildAvailability derives the full snapshot from the stored facts. The 10%
// threshold marks an event as almost sold out.
func BuildAvailability(eventID, capacity, booked int, status EventStatus) *EventAvailability {
	available := capacity - booked
	pct := 0.0
	if capacity > 0 {
		pct = math.Round(float64(booked)/float64(capacity)*100*100) / 100
	}
	return &EventAvailability{
		EventID:          eventID,
		TotalCapacity:    capacity,
		BookedTickets:    booked,
		AvailableTickets: available,
		OccupancyPct:     pct,
		IsSoldOut:        available <= 0,
		IsAlmostSoldOut:  float64(available) <= float64(capacity)*0.1,
		EventStatus:      status,
	}
}

// CreateEventRequest 建立活動請求
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Venue       string    `json:"venue" binding:"required"`
	DateTime    time.Time `json:"date_time" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,min=1"`
	Price       string    `json:"price" binding:"required"`
	Status      string    `json:"status"`
}

// UpdateEventRequest 更新活動請求
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Venue       *string    `json:"venue"`
	DateTime    *time.Time `json:"date_time"`
	Capacity    *int       `json:"capacity"`
	Price       *string    `json:"price"`
	Status      *string    `json:"status"`
}

type UpdateEventParams struct {
	Title       *string
	Description *string
	Venue       *string
	DateTime    *time.Time
	Capacity    *int
	Price       *decimal.Decimal
	Status      *EventStatus
}
