package memory

import (
	"context"
	"sort"

	"event-ticketing/internal/model"
	apperrors "event-ticketing/pkg/apperrors"
)

type ticketRow struct {
	ticket model.Ticket
}

type TicketRepository struct {
	store  *Store
	byID   map[int]*ticketRow
	byCode map[string]int
}

func (r *TicketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.byCode[ticket.TicketCode]; exists {
		return nil, apperrors.ErrInvalidInput
	}

	created := *ticket
	created.ID = r.store.nextTicketID
	r.store.nextTicketID++
	r.byID[created.ID] = &ticketRow{ticket: created}
	r.byCode[created.TicketCode] = created.ID

	out := created
	return &out, nil
}

func (r *TicketRepository) FindByCode(ctx context.Context, code string) (*model.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, ok := r.byCode[code]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	t := r.byID[id].ticket
	return &t, nil
}

func (r *TicketRepository) FindByBookingID(ctx context.Context, bookingID int) ([]*model.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tickets := make([]*model.Ticket, 0)
	for _, row := range r.byID {
		if row.ticket.BookingID == bookingID {
			t := row.ticket
			tickets = append(tickets, &t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}

func (r *TicketRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	_, ok := r.byCode[code]
	return ok, nil
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id int, status model.TicketStatus) (*model.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	row.ticket.Status = status

	t := row.ticket
	return &t, nil
}

// MarkUsed 在 store 鎖內檢查再轉換，與 SQL 的條件式更新等價
func (r *TicketRepository) MarkUsed(ctx context.Context, id int) (*model.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	if row.ticket.Status != model.TicketStatusActive {
		return nil, apperrors.ErrTicketNotActive
	}
	row.ticket.Status = model.TicketStatusUsed

	t := row.ticket
	return &t, nil
}

func (r *TicketRepository) CancelActiveByBookingID(ctx context.Context, bookingID int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for _, row := range r.byID {
		if row.ticket.BookingID == bookingID && row.ticket.Status == model.TicketStatusActive {
			row.ticket.Status = model.TicketStatusCancelled
			count++
		}
	}
	return count, nil
}
