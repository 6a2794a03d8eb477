package repository

import (
	"context"
	"fmt"

	"event-ticketing/internal/model"
	apperrors "event-ticketing/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)
	FindByCode(ctx context.Context, code string) (*model.Ticket, error)
	FindByBookingID(ctx context.Context, bookingID int) ([]*model.Ticket, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	UpdateStatus(ctx context.Context, id int, status model.TicketStatus) (*model.Ticket, error)
	// MarkUsed 只在票券仍為 active 時轉為 used。同一張票被同時核銷時，
	// 只有一個呼叫會成功，其餘收到 ErrTicketNotActive。
	MarkUsed(ctx context.Context, id int) (*model.Ticket, error)
	// CancelActiveByBookingID 將該訂位下所有 active 票券轉為 cancelled，
	// 回傳實際轉換的張數。used 票券不受影響。
	CancelActiveByBookingID(ctx context.Context, bookingID int) (int, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (booking_id, ticket_code, status)
		VALUES ($1, $2, $3)
		RETURNING id, booking_id, ticket_code, status
	`

	err := r.pool.QueryRow(ctx, query,
		ticket.BookingID, ticket.TicketCode, ticket.Status,
	).Scan(
		&ticket.ID,
		&ticket.BookingID,
		&ticket.TicketCode,
		&ticket.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByCode(ctx context.Context, code string) (*model.Ticket, error) {
	query := `
		SELECT id, booking_id, ticket_code, status
		FROM tickets
		WHERE ticket_code = $1
	`

	var ticket model.Ticket
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&ticket.ID,
		&ticket.BookingID,
		&ticket.TicketCode,
		&ticket.Status,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return &ticket, nil
}

func (r *TicketRepositoryImpl) FindByBookingID(ctx context.Context, bookingID int) ([]*model.Ticket, error) {
	query := `
		SELECT id, booking_id, ticket_code, status
		FROM tickets
		WHERE booking_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		var ticket model.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.BookingID,
			&ticket.TicketCode,
			&ticket.Status,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) ExistsByCode(ctx context.Context, code string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM tickets WHERE ticket_code = $1)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, code).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, id int, status model.TicketStatus) (*model.Ticket, error) {
	query := `
		UPDATE tickets
		SET status = $1
		WHERE id = $2
		RETURNING id, booking_id, ticket_code, status
	`

	var ticket model.Ticket
	err := r.pool.QueryRow(ctx, query, status, id).Scan(
		&ticket.ID,
		&ticket.BookingID,
		&ticket.TicketCode,
		&ticket.Status,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}

	return &ticket, nil
}

// MarkUsed 以條件式更新搶佔 active -> used 的轉換，
// 沒搶到的一方在 WHERE 條件落空後拿到零列。
func (r *TicketRepositoryImpl) MarkUsed(ctx context.Context, id int) (*model.Ticket, error) {
	query := `
		UPDATE tickets
		SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING id, booking_id, ticket_code, status
	`

	var ticket model.Ticket
	err := r.pool.QueryRow(ctx, query,
		model.TicketStatusUsed, id, model.TicketStatusActive,
	).Scan(
		&ticket.ID,
		&ticket.BookingID,
		&ticket.TicketCode,
		&ticket.Status,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotActive
		}
		return nil, fmt.Errorf("failed to mark ticket used: %w", err)
	}

	return &ticket, nil
}

func (r *TicketRepositoryImpl) CancelActiveByBookingID(ctx context.Context, bookingID int) (int, error) {
	query := `
		UPDATE tickets
		SET status = $1
		WHERE booking_id = $2 AND status = $3
	`

	result, err := r.pool.Exec(ctx, query,
		model.TicketStatusCancelled, bookingID, model.TicketStatusActive,
	)
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}
