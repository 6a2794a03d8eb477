package memory

import (
	"context"
	"sort"

	"event-ticketing/internal/model"
	apperrors "event-ticketing/pkg/apperrors"
)

type eventRow struct {
	event model.Event
}

type EventRepository struct {
	store *Store
	byID  map[int]*eventRow
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	created := *event
	created.ID = r.store.nextEventID
	r.store.nextEventID++
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now()
	}
	r.byID[created.ID] = &eventRow{event: created}

	out := created
	return &out, nil
}

func (r *EventRepository) List(ctx context.Context) ([]*model.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	events := make([]*model.Event, 0, len(r.byID))
	for _, row := range r.byID {
		e := row.event
		events = append(events, &e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (r *EventRepository) ListByStatus(ctx context.Context, status model.EventStatus) ([]*model.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	events := make([]*model.Event, 0)
	for _, row := range r.byID {
		if row.event.Status == status {
			e := row.event
			events = append(events, &e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (r *EventRepository) FindByID(ctx context.Context, id int) (*model.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	e := row.event
	return &e, nil
}

func (r *EventRepository) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}

	changed := false
	if params.Title != nil {
		row.event.Title = *params.Title
		changed = true
	}
	if params.Description != nil {
		row.event.Description = *params.Description
		changed = true
	}
	if params.Venue != nil {
		row.event.Venue = *params.Venue
		changed = true
	}
	if params.DateTime != nil {
		row.event.DateTime = *params.DateTime
		changed = true
	}
	if params.Capacity != nil {
		row.event.Capacity = *params.Capacity
		changed = true
	}
	if params.Price != nil {
		row.event.Price = *params.Price
		changed = true
	}
	if params.Status != nil {
		row.event.Status = *params.Status
		changed = true
	}
	if !changed {
		return nil, apperrors.ErrInvalidInput
	}

	e := row.event
	return &e, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(r.byID, id)
	return nil
}
