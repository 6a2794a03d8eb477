package service

import (
	"context"
	"time"

	"event-ticketing/internal/cache"
	"event-ticketing/internal/model"
	"event-ticketing/internal/repository"
	apperrors "event-ticketing/pkg/apperrors"
	"event-ticketing/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// availabilityCacheTTL 快取快照的存活時間；worker 與失效機制會更早刷新
const availabilityCacheTTL = 30 * time.Second

type EventService interface {
	CreateEvent(ctx context.Context, title, description, venue string, dateTime time.Time, capacity int, price decimal.Decimal, status model.EventStatus) (*model.Event, error)
	GetEvent(ctx context.Context, id int) (*model.Event, error)
	ListEvents(ctx context.Context, status model.EventStatus) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, id int, params *model.UpdateEventParams) (*model.Event, error)
	DeleteEvent(ctx context.Context, id int) error
	GetAvailability(ctx context.Context, eventID int) (*model.EventAvailability, error)
	GetAllActiveAvailability(ctx context.Context) ([]*model.EventAvailability, error)
	RefreshAvailability(ctx context.Context, eventID int) error
}

type EventServiceImpl struct {
	eventRepo   repository.EventRepository
	bookingRepo repository.BookingRepository
	avCache     cache.AvailabilityCache // optional
}

func NewEventService(eventRepo repository.EventRepository, bookingRepo repository.BookingRepository, avCache cache.AvailabilityCache) EventService {
	return &EventServiceImpl{
		eventRepo:   eventRepo,
		bookingRepo: bookingRepo,
		avCache:     avCache,
	}
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, title, description, venue string, dateTime time.Time, capacity int, price decimal.Decimal, status model.EventStatus) (*model.Event, error) {
	if status == "" {
		status = model.EventStatusActive
	}
	event, err := model.NewEvent(title, description, venue, dateTime, capacity, price, status)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.Create(ctx, event)
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, id int) (*model.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}

func (s *EventServiceImpl) ListEvents(ctx context.Context, status model.EventStatus) ([]*model.Event, error) {
	if status == "" {
		return s.eventRepo.List(ctx)
	}
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	return s.eventRepo.ListByStatus(ctx, status)
}

func (s *EventServiceImpl) UpdateEvent(ctx context.Context, id int, params *model.UpdateEventParams) (*model.Event, error) {
	if params == nil {
		return nil, apperrors.ErrInvalidInput
	}
	updated, err := s.eventRepo.Update(ctx, id, *params)
	if err != nil {
		return nil, err
	}

	// capacity 或 status 變動會讓快照失真
	if s.avCache != nil && (params.Capacity != nil || params.Status != nil) {
		if err := s.avCache.Invalidate(ctx, id); err != nil {
			logger.WithComponent("event").Warn("failed to invalidate availability cache",
				zap.Int("event_id", id), zap.Error(err))
		}
	}
	return updated, nil
}

func (s *EventServiceImpl) DeleteEvent(ctx context.Context, id int) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.avCache != nil {
		if err := s.avCache.Invalidate(ctx, id); err != nil {
			logger.WithComponent("event").Warn("failed to invalidate availability cache",
				zap.Int("event_id", id), zap.Error(err))
		}
	}
	return nil
}

// GetAvailability 採 cache-aside：先讀快取，miss 再從資料庫推導並回填。
// 快取故障時降級直讀資料庫，不影響讀取路徑可用性。
func (s *EventServiceImpl) GetAvailability(ctx context.Context, eventID int) (*model.EventAvailability, error) {
	if s.avCache != nil {
		availability, err := s.avCache.Get(ctx, eventID)
		if err == nil {
			return availability, nil
		}
		if err != cache.ErrMiss {
			logger.WithComponent("event").Warn("availability cache read failed",
				zap.Int("event_id", eventID), zap.Error(err))
		}
	}

	availability, err := s.buildAvailability(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.avCache != nil {
		if err := s.avCache.Set(ctx, availability, availabilityCacheTTL); err != nil {
			logger.WithComponent("event").Warn("availability cache write failed",
				zap.Int("event_id", eventID), zap.Error(err))
		}
	}
	return availability, nil
}

func (s *EventServiceImpl) GetAllActiveAvailability(ctx context.Context) ([]*model.EventAvailability, error) {
	events, err := s.eventRepo.ListByStatus(ctx, model.EventStatusActive)
	if err != nil {
		return nil, err
	}

	result := make([]*model.EventAvailability, 0, len(events))
	for _, event := range events {
		availability, err := s.GetAvailability(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, availability)
	}
	return result, nil
}

// RefreshAvailability 由 worker 呼叫：重新推導並覆寫快取
func (s *EventServiceImpl) RefreshAvailability(ctx context.Context, eventID int) error {
	availability, err := s.buildAvailability(ctx, eventID)
	if err != nil {
		return err
	}
	if s.avCache == nil {
		return nil
	}
	return s.avCache.Set(ctx, availability, availabilityCacheTTL)
}

func (s *EventServiceImpl) buildAvailability(ctx context.Context, eventID int) (*model.EventAvailability, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	booked, err := s.bookingRepo.SumConfirmedQuantityByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return model.BuildAvailability(event.ID, event.Capacity, booked, event.Status), nil
}
