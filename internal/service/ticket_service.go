package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"event-ticketing/internal/model"
	"event-ticketing/internal/monitoring"
	"event-ticketing/internal/repository"
	apperrors "event-ticketing/pkg/apperrors"
)

const (
	ticketCodeLength  = 12
	ticketCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// maxCodeAttempts caps the generate-check loop per ticket so a degenerate
	// store cannot spin it forever.
	maxCodeAttempts = 5
)

type TicketService interface {
	GenerateTickets(ctx context.Context, bookingID, quantity int) ([]*model.Ticket, error)
	CancelTickets(ctx context.Context, bookingID int) (int, error)
	ValidateTicket(ctx context.Context, ticketCode string) (*model.TicketValidationResult, error)
	UseTicket(ctx context.Context, ticketCode string) (*model.TicketValidationResult, error)
}

type TicketServiceImpl struct {
	ticketRepo  repository.TicketRepository
	bookingRepo repository.BookingRepository
	eventRepo   repository.EventRepository
	userRepo    repository.UserRepository
}

func NewTicketService(
	ticketRepo repository.TicketRepository,
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
) TicketService {
	return &TicketServiceImpl{
		ticketRepo:  ticketRepo,
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
	}
}

// generateTicketCode 以加密安全亂數產生 12 碼大寫英數票券代碼
func generateTicketCode() (string, error) {
	code := make([]byte, ticketCodeLength)
	max := big.NewInt(int64(len(ticketCodeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate ticket code: %w", err)
		}
		code[i] = ticketCodeCharset[n.Int64()]
	}
	return string(code), nil
}

func (s *TicketServiceImpl) uniqueTicketCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateTicketCode()
		if err != nil {
			return "", err
		}

		exists, err := s.ticketRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		monitoring.RecordTicketCodeCollision()
	}
	return "", apperrors.ErrCodeSpaceExhausted
}

func (s *TicketServiceImpl) GenerateTickets(ctx context.Context, bookingID, quantity int) ([]*model.Ticket, error) {
	if quantity <= 0 {
		return nil, apperrors.ErrInvalidInput
	}

	tickets := make([]*model.Ticket, 0, quantity)
	for i := 0; i < quantity; i++ {
		code, err := s.uniqueTicketCode(ctx)
		if err != nil {
			return tickets, err
		}

		ticket, err := model.NewTicket(bookingID, code)
		if err != nil {
			return tickets, err
		}

		created, err := s.ticketRepo.Create(ctx, ticket)
		if err != nil {
			return tickets, err
		}
		tickets = append(tickets, created)
	}

	monitoring.RecordTicketsIssued(len(tickets))
	return tickets, nil
}

// CancelTickets 批次取消該訂位下的 active 票券。used 票券代表已入場，
// 不會被覆寫；回傳值只計實際轉換的張數。
func (s *TicketServiceImpl) CancelTickets(ctx context.Context, bookingID int) (int, error) {
	return s.ticketRepo.CancelActiveByBookingID(ctx, bookingID)
}

func (s *TicketServiceImpl) ValidateTicket(ctx context.Context, ticketCode string) (*model.TicketValidationResult, error) {
	ticket, err := s.ticketRepo.FindByCode(ctx, ticketCode)
	if err != nil {
		if err == apperrors.ErrTicketNotFound {
			return &model.TicketValidationResult{
				TicketCode: ticketCode,
				Status:     model.TicketStatusCancelled,
				IsValid:    false,
				Message:    "Ticket not found",
			}, nil
		}
		return nil, err
	}

	result := &model.TicketValidationResult{
		TicketCode: ticket.TicketCode,
		Status:     ticket.Status,
		BookingID:  ticket.BookingID,
	}

	var event *model.Event
	if booking, err := s.bookingRepo.FindByID(ctx, ticket.BookingID); err == nil {
		if event, err = s.eventRepo.FindByID(ctx, booking.EventID); err == nil {
			result.EventName = event.Title
			date := event.DateTime
			result.EventDate = &date
		}
		if user, err := s.userRepo.FindByID(ctx, booking.UserID); err == nil {
			result.UserName = user.Name
		}
	}

	switch ticket.Status {
	case model.TicketStatusActive:
		result.IsValid = true
		result.Message = "Ticket is valid and ready to use"
	case model.TicketStatusUsed:
		result.Message = "Ticket has already been used"
	case model.TicketStatusCancelled:
		result.Message = "Ticket has been cancelled"
	}

	// 活動已取消或結束時，active 票券也不可入場
	if result.IsValid && event != nil && event.Status != model.EventStatusActive {
		result.IsValid = false
		result.Message = fmt.Sprintf("Event is %s, ticket cannot be used", event.Status)
	}

	return result, nil
}

func (s *TicketServiceImpl) UseTicket(ctx context.Context, ticketCode string) (*model.TicketValidationResult, error) {
	result, err := s.ValidateTicket(ctx, ticketCode)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		if result.Message == "Ticket not found" {
			return result, apperrors.ErrTicketNotFound
		}
		return result, apperrors.ErrTicketNotActive
	}

	ticket, err := s.ticketRepo.FindByCode(ctx, ticketCode)
	if err != nil {
		return nil, err
	}

	// 核銷是條件式轉換：兩個請求同時核銷同一張票時只有一個會成功，
	// 輸的一方以最新狀態回報。
	updated, err := s.ticketRepo.MarkUsed(ctx, ticket.ID)
	if err != nil {
		if err == apperrors.ErrTicketNotActive {
			if fresh, verr := s.ValidateTicket(ctx, ticketCode); verr == nil {
				return fresh, err
			}
		}
		return nil, err
	}

	monitoring.RecordTicketUsed()

	result.Status = updated.Status
	result.IsValid = false // 已入場，之後不再有效
	result.Message = "Ticket has been successfully used"
	return result, nil
}
