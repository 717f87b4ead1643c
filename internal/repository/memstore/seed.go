package memstore

import (
	"sort"

	"github.com/nikolaygtitov/hotel-ops/internal/model"
)

// The Add* helpers seed reference data outside the engines.  They assign
// an id when the given one is zero and return the stored row.

func (s *Store) AddZip(z model.ZipToCityState) model.ZipToCityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.zips[z.Zip] = z
	return z
}

func (s *Store) AddHotel(h model.Hotel) model.Hotel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == 0 {
		h.ID = s.d.id()
	} else if h.ID > s.d.nextID {
		s.d.nextID = h.ID
	}
	s.d.hotels[h.ID] = h
	return h
}

func (s *Store) AddRoom(r model.Room) model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.rooms[r.Key()] = r
	return r
}

func (s *Store) AddStaff(st model.Staff) model.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = s.d.id()
	} else if st.ID > s.d.nextID {
		s.d.nextID = st.ID
	}
	s.d.staff[st.ID] = st
	return st
}

func (s *Store) AddCustomer(c model.Customer) model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.d.id()
	} else if c.ID > s.d.nextID {
		s.d.nextID = c.ID
	}
	s.d.customers[c.ID] = c
	return c
}

// AddReservation stores r as-is, bypassing the engines and their side
// effects.
func (s *Store) AddReservation(r model.Reservation) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.d.id()
	} else if r.ID > s.d.nextID {
		s.d.nextID = r.ID
	}
	s.d.reservations[r.ID] = r
	return r
}

// AddTransaction stores a service charge such as a phone bill.
func (s *Store) AddTransaction(t model.Transaction) model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.d.id()
	s.d.transactions[t.ID] = t
	return t
}

// Staff returns a copy of one staff row.
func (s *Store) Staff(id int64) (model.Staff, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.d.staff[id]
	return st, ok
}

// Serves lists the serves rows ordered by staff then reservation.
func (s *Store) Serves() []model.Serves {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Serves, 0, len(s.d.serves))
	for sv := range s.d.serves {
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StaffID != out[j].StaffID {
			return out[i].StaffID < out[j].StaffID
		}
		return out[i].ReservationID < out[j].ReservationID
	})
	return out
}

// Reservations counts stored reservations.
func (s *Store) Reservations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.d.reservations)
}
