package service

import (
	"context"
	"time"

	"event-ticketing/internal/cache"
	"event-ticketing/internal/lock"
	"event-ticketing/internal/model"
	"event-ticketing/internal/monitoring"
	"event-ticketing/internal/queue"
	"event-ticketing/internal/repository"
	apperrors "event-ticketing/pkg/apperrors"
	"event-ticketing/pkg/logger"

	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, userID, eventID, quantity int) (*model.Booking, error)
	CancelBooking(ctx context.Context, bookingID int) (*model.Booking, error)
	UpdateStatus(ctx context.Context, bookingID int, status model.BookingStatus) (*model.Booking, error)
	GetUserBookings(ctx context.Context, userID int) ([]*model.BookingWithDetails, error)
	GetEventBookings(ctx context.Context, eventID, requestingUserID int) ([]*model.BookingWithDetails, error)
}

type BookingServiceImpl struct {
	userRepo    repository.UserRepository
	eventRepo   repository.EventRepository
	bookingRepo repository.BookingRepository
	ticketRepo  repository.TicketRepository
	admission   AdmissionService
	tickets     TicketService
	eventLocks  *lock.KeyedMutex

	// bookingMQ 與 avCache 可為 nil，發佈與快取失效皆為 best-effort
	bookingMQ queue.BookingQueue
	avCache   cache.AvailabilityCache
}

func NewBookingService(
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
	bookingRepo repository.BookingRepository,
	ticketRepo repository.TicketRepository,
	admission AdmissionService,
	tickets TicketService,
	bookingMQ queue.BookingQueue,
	avCache cache.AvailabilityCache,
) BookingService {
	return &BookingServiceImpl{
		userRepo:    userRepo,
		eventRepo:   eventRepo,
		bookingRepo: bookingRepo,
		ticketRepo:  ticketRepo,
		admission:   admission,
		tickets:     tickets,
		eventLocks:  lock.NewKeyedMutex(),
		bookingMQ:   bookingMQ,
		avCache:     avCache,
	}
}

// CreateBooking admits, persists and issues tickets as one unit. The per-event
// lock spans the availability check and the booking insert: two requests for
// the same event can never both read the same booked total and both pass.
func (s *BookingServiceImpl) CreateBooking(ctx context.Context, userID, eventID, quantity int) (*model.Booking, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	s.eventLocks.Lock(eventID)
	defer s.eventLocks.Unlock(eventID)

	if err := s.admission.ValidateAvailability(ctx, eventID, quantity); err != nil {
		return nil, err
	}

	booking, err := model.NewBooking(userID, eventID, quantity, event.TotalPrice(quantity))
	if err != nil {
		return nil, err
	}
	booking.BookingDate = time.Now().UTC()

	created, err := s.bookingRepo.Create(ctx, booking)
	if err != nil {
		return nil, err
	}

	// 出票失敗必須補償：已落地的 booking 會佔用容量，不能留下半發券的確認訂位。
	// 補償使用 context.Background()，確保用戶斷線也會執行。
	if _, err := s.tickets.GenerateTickets(ctx, created.ID, quantity); err != nil {
		s.compensateFailedIssuance(created.ID, err)
		return nil, err
	}

	monitoring.RecordBookingCreated()
	s.notifyBookingChanged(created, queue.BookingEventCreated)
	return created, nil
}

func (s *BookingServiceImpl) compensateFailedIssuance(bookingID int, cause error) {
	log := logger.WithComponent("booking").With(zap.Int("booking_id", bookingID), zap.Error(cause))
	log.Error("ticket issuance failed after booking insert, compensating")

	ctx := context.Background()
	if _, err := s.tickets.CancelTickets(ctx, bookingID); err != nil {
		log.Error("failed to cancel partially issued tickets", zap.Error(err))
	}
	if _, err := s.bookingRepo.UpdateStatus(ctx, bookingID, model.BookingStatusCancelled); err != nil {
		// 補償也失敗時訂位佔著容量卻沒有票，必須人工介入
		log.Error("failed to cancel booking during compensation, manual reconciliation required", zap.Error(err))
	}
}

func (s *BookingServiceImpl) CancelBooking(ctx context.Context, bookingID int) (*model.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, apperrors.ErrBookingAlreadyCancelled
	}

	updated, err := s.bookingRepo.UpdateStatus(ctx, bookingID, model.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	// 取消與連動取消票券是一個邏輯單位：連動失敗就把訂位復原，
	// 不能釋放容量卻留下 active 票券。
	if _, err := s.tickets.CancelTickets(ctx, bookingID); err != nil {
		s.compensateFailedCascade(bookingID, err)
		return nil, err
	}

	monitoring.RecordBookingCancelled()
	s.notifyBookingChanged(updated, queue.BookingEventCancelled)
	return updated, nil
}

func (s *BookingServiceImpl) compensateFailedCascade(bookingID int, cause error) {
	log := logger.WithComponent("booking").With(zap.Int("booking_id", bookingID), zap.Error(cause))
	log.Error("ticket cascade failed after booking cancel, restoring booking")

	if _, err := s.bookingRepo.UpdateStatus(context.Background(), bookingID, model.BookingStatusConfirmed); err != nil {
		// 復原也失敗時容量已釋放而票券仍然 active，必須人工介入
		log.Error("failed to restore booking during compensation, manual reconciliation required", zap.Error(err))
	}
}

// UpdateStatus 路由到 CancelBooking 取得連動取消；其他轉換直接落地。
func (s *BookingServiceImpl) UpdateStatus(ctx context.Context, bookingID int, status model.BookingStatus) (*model.Booking, error) {
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	if status == model.BookingStatusCancelled {
		return s.CancelBooking(ctx, bookingID)
	}

	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(status) {
		return nil, apperrors.ErrInvalidInput
	}

	return s.bookingRepo.UpdateStatus(ctx, bookingID, status)
}

func (s *BookingServiceImpl) GetUserBookings(ctx context.Context, userID int) ([]*model.BookingWithDetails, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.withDetails(ctx, bookings)
}

// GetEventBookings 僅限 admin 查詢
func (s *BookingServiceImpl) GetEventBookings(ctx context.Context, eventID, requestingUserID int) ([]*model.BookingWithDetails, error) {
	requester, err := s.userRepo.FindByID(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return s.withDetails(ctx, bookings)
}

func (s *BookingServiceImpl) withDetails(ctx context.Context, bookings []*model.Booking) ([]*model.BookingWithDetails, error) {
	result := make([]*model.BookingWithDetails, 0, len(bookings))
	for _, booking := range bookings {
		user, err := s.userRepo.FindByID(ctx, booking.UserID)
		if err != nil {
			return nil, err
		}
		event, err := s.eventRepo.FindByID(ctx, booking.EventID)
		if err != nil {
			return nil, err
		}
		tickets, err := s.ticketRepo.FindByBookingID(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &model.BookingWithDetails{
			Booking: *booking,
			User:    user,
			Event:   event,
			Tickets: tickets,
		})
	}
	return result, nil
}

// notifyBookingChanged 發佈事件給 worker 更新快取並使舊快照失效。
// 兩者都是 best-effort：失敗只記錄，不影響已完成的訂位。
func (s *BookingServiceImpl) notifyBookingChanged(booking *model.Booking, kind string) {
	log := logger.WithComponent("booking").With(
		zap.Int("booking_id", booking.ID),
		zap.Int("event_id", booking.EventID),
		zap.String("kind", kind),
	)

	ctx := context.Background()
	if s.avCache != nil {
		if err := s.avCache.Invalidate(ctx, booking.EventID); err != nil {
			log.Warn("failed to invalidate availability cache", zap.Error(err))
		}
	}
	if s.bookingMQ != nil {
		if err := s.bookingMQ.Publish(ctx, &queue.BookingEvent{
			BookingID: booking.ID,
			EventID:   booking.EventID,
			Kind:      kind,
		}); err != nil {
			log.Warn("failed to publish booking event", zap.Error(err))
		}
	}
}
