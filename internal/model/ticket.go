package model

import (
	"strings"
	"time"

	apperrors "event-ticketing/pkg/apperrors"
)

// TicketStatus 票券狀態類型
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusActive, TicketStatusUsed, TicketStatusCancelled:
		return true
	}
	return false
}

// Ticket 票券模型
type Ticket struct {
	ID         int          `json:"id" db:"id"`
	BookingID  int          `json:"booking_id" db:"booking_id"`
	TicketCode string       `json:"ticket_code" db:"ticket_code"`
	Status     TicketStatus `json:"status" db:"status"`
}

func NewTicket(bookingID int, ticketCode string) (*Ticket, error) {
	if bookingID <= 0 {
		return nil, apperrors.ErrInvalidInput
	}
	if len(strings.TrimSpace(ticketCode)) < 8 {
		return nil, apperrors.ErrInvalidInput
	}
	return &Ticket{
		BookingID:  bookingID,
		TicketCode: ticketCode,
		Status:     TicketStatusActive,
	}, nil
}

func (t *Ticket) IsActive() bool {
	return t.Status == TicketStatusActive
}

func (t *Ticket) IsUsed() bool {
	return t.Status == TicketStatusUsed
}

// TicketValidationResult 驗票結果
type TicketValidationResult struct {
	TicketCode string       `json:"ticket_code"`
	Status     TicketStatus `json:"status"`
	IsValid    bool         `json:"is_valid"`
	Message    string       `json:"message"`
	BookingID  int          `json:"booking_id,omitempty"`
	EventName  string       `json:"event_name,omitempty"`
	EventDate  *time.Time   `json:"event_date,omitempty"`
	UserName   string       `json:"user_name,omitempty"`
}
