// Package memory provides thread-safe in-memory implementations of the
// repository interfaces. They back the service-level and concurrency tests and
// can serve local development without Postgres.
package memory

import (
	"sync"
	"time"
)

// Store groups the four repositories over one shared mutex so cross-entity
// reads observe a consistent snapshot.
type Store struct {
	mu sync.Mutex

	users         *UserRepository
	events        *EventRepository
	bookings      *BookingRepository
	tickets       *TicketRepository
	nextUserID    int
	nextEventID   int
	nextBookingID int
	nextTicketID  int
}

func NewStore() *Store {
	s := &Store{
		nextUserID:    1,
		nextEventID:   1,
		nextBookingID: 1,
		nextTicketID:  1,
	}
	s.users = &UserRepository{store: s, byID: map[int]*userRow{}}
	s.events = &EventRepository{store: s, byID: map[int]*eventRow{}}
	s.bookings = &BookingRepository{store: s, byID: map[int]*bookingRow{}}
	s.tickets = &TicketRepository{store: s, byID: map[int]*ticketRow{}, byCode: map[string]int{}}
	return s
}

func (s *Store) Users() *UserRepository       { return s.users }
func (s *Store) Events() *EventRepository     { return s.events }
func (s *Store) Bookings() *BookingRepository { return s.bookings }
func (s *Store) Tickets() *TicketRepository   { return s.tickets }

func now() time.Time {
	return time.Now().UTC()
}
