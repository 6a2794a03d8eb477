package model

import (
	"time"

	apperrors "event-ticketing/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// BookingStatus 訂位狀態類型
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	transitions := map[BookingStatus][]BookingStatus{
		BookingStatusConfirmed: {BookingStatusCancelled},
		BookingStatusCancelled: {}, // cancelled 為終態
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Booking 訂位模型
type Booking struct {
	ID          int             `json:"id" db:"id"`
	UserID      int             `json:"user_id" db:"user_id"`
	EventID     int             `json:"event_id" db:"event_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	BookingDate time.Time       `json:"booking_date" db:"booking_date"`
	Status      BookingStatus   `json:"status" db:"status"`
}

func NewBooking(userID, eventID, quantity int, totalAmount decimal.Decimal) (*Booking, error) {
	if userID <= 0 || eventID <= 0 {
		return nil, apperrors.ErrInvalidInput
	}
	if quantity <= 0 {
		return nil, apperrors.ErrInvalidInput
	}
	if !totalAmount.IsPositive() {
		return nil, apperrors.ErrInvalidInput
	}
	return &Booking{
		UserID:      userID,
		EventID:     eventID,
		Quantity:    quantity,
		TotalAmount: totalAmount,
		Status:      BookingStatusConfirmed,
	}, nil
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// CreateBookingRequest 建立訂位請求
type CreateBookingRequest struct {
	UserID   int `json:"user_id" binding:"required"`
	EventID  int `json:"event_id" binding:"required"`
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// UpdateBookingStatusRequest 更新訂位狀態請求
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BookingWithDetails 訂位含關聯明細（使用者、活動、票券）
type BookingWithDetails struct {
	Booking
	User    *User     `json:"user"`
	Event   *Event    `json:"event"`
	Tickets []*Ticket `json:"tickets"`
}
