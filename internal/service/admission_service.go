package service

import (
	"context"

	"event-ticketing/internal/monitoring"
	"event-ticketing/internal/repository"
	apperrors "event-ticketing/pkg/apperrors"
)

// AdmissionService decides whether a booking request may proceed. It is pure
// read-and-decide; the booking service is responsible for making the decision
// and the subsequent insert one atomic unit (per-event serialization).
type AdmissionService interface {
	ValidateAvailability(ctx context.Context, eventID, requestedQuantity int) error
	AvailableCapacity(ctx context.Context, eventID int) (int, error)
}

type AdmissionServiceImpl struct {
	eventRepo   repository.EventRepository
	bookingRepo repository.BookingRepository
}

func NewAdmissionService(eventRepo repository.EventRepository, bookingRepo repository.BookingRepository) AdmissionService {
	return &AdmissionServiceImpl{eventRepo: eventRepo, bookingRepo: bookingRepo}
}

func (s *AdmissionServiceImpl) ValidateAvailability(ctx context.Context, eventID, requestedQuantity int) error {
	if requestedQuantity <= 0 {
		return apperrors.ErrInvalidInput
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}

	if !event.IsBookable() {
		monitoring.RecordAdmissionRejected("not_bookable")
		return apperrors.ErrEventNotBookable
	}

	totalBooked, err := s.bookingRepo.SumConfirmedQuantityByEvent(ctx, eventID)
	if err != nil {
		return err
	}

	available := event.Capacity - totalBooked
	if requestedQuantity > available {
		monitoring.RecordAdmissionRejected("insufficient_capacity")
		return &apperrors.InsufficientCapacityError{
			Available: available,
			Requested: requestedQuantity,
		}
	}

	return nil
}

func (s *AdmissionServiceImpl) AvailableCapacity(ctx context.Context, eventID int) (int, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return 0, err
	}

	totalBooked, err := s.bookingRepo.SumConfirmedQuantityByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	return event.Capacity - totalBooked, nil
}
