package repository

import (
	"context"
	"fmt"
	"strings"

	"event-ticketing/internal/model"
	apperrors "event-ticketing/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	ListByStatus(ctx context.Context, status model.EventStatus) ([]*model.Event, error)
	FindByID(ctx context.Context, id int) (*model.Event, error)
	Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error)
	Delete(ctx context.Context, id int) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := `
		INSERT INTO events (title, description, venue, date_time, capacity, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, title, description, venue, date_time, capacity, price, status, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		event.Title, event.Description, event.Venue,
		event.DateTime, event.Capacity, event.Price, event.Status,
	).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Venue,
		&event.DateTime,
		&event.Capacity,
		&event.Price,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context) ([]*model.Event, error) {
	query := `
		SELECT id, title, description, venue, date_time, capacity, price, status, created_at
		FROM events
		ORDER BY created_at DESC
	`
	return r.queryEvents(ctx, query)
}

func (r *EventRepositoryImpl) ListByStatus(ctx context.Context, status model.EventStatus) ([]*model.Event, error) {
	query := `
		SELECT id, title, description, venue, date_time, capacity, price, status, created_at
		FROM events
		WHERE status = $1
		ORDER BY date_time ASC
	`
	return r.queryEvents(ctx, query, status)
}

func (r *EventRepositoryImpl) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*model.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		var event model.Event
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.Venue,
			&event.DateTime,
			&event.Capacity,
			&event.Price,
			&event.Status,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Event, error) {
	query := `
		SELECT id, title, description, venue, date_time, capacity, price, status, created_at
		FROM events
		WHERE id = $1
	`

	var event model.Event
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Venue,
		&event.DateTime,
		&event.Capacity,
		&event.Price,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argPos))
		args = append(args, *params.Title)
		argPos++
	}

	if params.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argPos))
		args = append(args, *params.Description)
		argPos++
	}

	if params.Venue != nil {
		sets = append(sets, fmt.Sprintf("venue = $%d", argPos))
		args = append(args, *params.Venue)
		argPos++
	}

	if params.DateTime != nil {
		sets = append(sets, fmt.Sprintf("date_time = $%d", argPos))
		args = append(args, *params.DateTime)
		argPos++
	}

	if params.Capacity != nil {
		sets = append(sets, fmt.Sprintf("capacity = $%d", argPos))
		args = append(args, *params.Capacity)
		argPos++
	}

	if params.Price != nil {
		sets = append(sets, fmt.Sprintf("price = $%d", argPos))
		args = append(args, *params.Price)
		argPos++
	}

	if params.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE id = $%d
		RETURNING id, title, description, venue, date_time, capacity, price, status, created_at
	`, strings.Join(sets, ", "), argPos)

	var event model.Event
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Venue,
		&event.DateTime,
		&event.Capacity,
		&event.Price,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		DELETE FROM events
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}
