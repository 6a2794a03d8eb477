package memory

import (
	"context"
	"sort"

	"event-ticketing/internal/model"
	apperrors "event-ticketing/pkg/apperrors"
)

type bookingRow struct {
	booking model.Booking
}

type BookingRepository struct {
	store *Store
	byID  map[int]*bookingRow
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	created := *booking
	created.ID = r.store.nextBookingID
	r.store.nextBookingID++
	if created.BookingDate.IsZero() {
		created.BookingDate = now()
	}
	r.byID[created.ID] = &bookingRow{booking: created}

	out := created
	return &out, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id int) (*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	b := row.booking
	return &b, nil
}

func (r *BookingRepository) FindByUserID(ctx context.Context, userID int) ([]*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	bookings := make([]*model.Booking, 0)
	for _, row := range r.byID {
		if row.booking.UserID == userID {
			b := row.booking
			bookings = append(bookings, &b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func (r *BookingRepository) FindByEventID(ctx context.Context, eventID int) ([]*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	bookings := make([]*model.Booking, 0)
	for _, row := range r.byID {
		if row.booking.EventID == eventID {
			b := row.booking
			bookings = append(bookings, &b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int, status model.BookingStatus) (*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	row.booking.Status = status

	b := row.booking
	return &b, nil
}

func (r *BookingRepository) SumConfirmedQuantityByEvent(ctx context.Context, eventID int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	total := 0
	for _, row := range r.byID {
		if row.booking.EventID == eventID && row.booking.Status == model.BookingStatusConfirmed {
			total += row.booking.Quantity
		}
	}
	return total, nil
}
