package repository

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/model"
	apperrors "event-ticketing/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	FindByID(ctx context.Context, id int) (*model.Booking, error)
	FindByUserID(ctx context.Context, userID int) ([]*model.Booking, error)
	FindByEventID(ctx context.Context, eventID int) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id int, status model.BookingStatus) (*model.Booking, error)
	// SumConfirmedQuantityByEvent 回傳該活動所有 confirmed 訂位的數量總和，
	// 必須是單一聚合查詢，供入場檢查使用。
	SumConfirmedQuantityByEvent(ctx context.Context, eventID int) (int, error)
}

type BookingRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &BookingRepositoryImpl{
		pool: pool,
	}
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	query := `
		INSERT INTO bookings (user_id, event_id, quantity, total_amount, booking_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, event_id, quantity, total_amount, booking_date, status
	`

	if booking.BookingDate.IsZero() {
		booking.BookingDate = time.Now().UTC()
	}

	err := r.pool.QueryRow(ctx, query,
		booking.UserID, booking.EventID, booking.Quantity,
		booking.TotalAmount, booking.BookingDate, booking.Status,
	).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.Quantity,
		&booking.TotalAmount,
		&booking.BookingDate,
		&booking.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return booking, nil
}

func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Booking, error) {
	query := `
		SELECT id, user_id, event_id, quantity, total_amount, booking_date, status
		FROM bookings
		WHERE id = $1
	`

	var booking model.Booking
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.Quantity,
		&booking.TotalAmount,
		&booking.BookingDate,
		&booking.Status,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *BookingRepositoryImpl) FindByUserID(ctx context.Context, userID int) ([]*model.Booking, error) {
	query := `
		SELECT id, user_id, event_id, quantity, total_amount, booking_date, status
		FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date DESC
	`
	return r.queryBookings(ctx, query, userID)
}

func (r *BookingRepositoryImpl) FindByEventID(ctx context.Context, eventID int) ([]*model.Booking, error) {
	query := `
		SELECT id, user_id, event_id, quantity, total_amount, booking_date, status
		FROM bookings
		WHERE event_id = $1
		ORDER BY booking_date DESC
	`
	return r.queryBookings(ctx, query, eventID)
}

func (r *BookingRepositoryImpl) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*model.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		var booking model.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.EventID,
			&booking.Quantity,
			&booking.TotalAmount,
			&booking.BookingDate,
			&booking.Status,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepositoryImpl) UpdateStatus(ctx context.Context, id int, status model.BookingStatus) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1
		WHERE id = $2
		RETURNING id, user_id, event_id, quantity, total_amount, booking_date, status
	`

	var booking model.Booking
	err := r.pool.QueryRow(ctx, query, status, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.Quantity,
		&booking.TotalAmount,
		&booking.BookingDate,
		&booking.Status,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return &booking, nil
}

func (r *BookingRepositoryImpl) SumConfirmedQuantityByEvent(ctx context.Context, eventID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM bookings
		WHERE event_id = $1
		  AND status = $2
	`

	var totalQuantity int
	err := r.pool.QueryRow(ctx, query, eventID, model.BookingStatusConfirmed).Scan(&totalQuantity)
	if err != nil {
		return 0, err
	}

	return totalQuantity, nil
}
