// Package memstore is an in-process repository.Store.  Transactions are
// serialized by one mutex and rolled back by restoring a snapshot, which
// gives the same observable semantics as the SQL store's row locks and
// constraints for a single process.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nikolaygtitov/hotel-ops/internal/interval"
	"github.com/nikolaygtitov/hotel-ops/internal/model"
	"github.com/nikolaygtitov/hotel-ops/internal/repository"
)

type data struct {
	zips         map[string]model.ZipToCityState
	hotels       map[int64]model.Hotel
	rooms        map[model.RoomKey]model.Room
	staff        map[int64]model.Staff
	customers    map[int64]model.Customer
	reservations map[int64]model.Reservation
	transactions map[int64]model.Transaction
	serves       map[model.Serves]struct{}
	nextID       int64
}

func newData() *data {
	return &data{
		zips:         map[string]model.ZipToCityState{},
		hotels:       map[int64]model.Hotel{},
		rooms:        map[model.RoomKey]model.Room{},
		staff:        map[int64]model.Staff{},
		customers:    map[int64]model.Customer{},
		reservations: map[int64]model.Reservation{},
		transactions: map[int64]model.Transaction{},
		serves:       map[model.Serves]struct{}{},
	}
}

// clone copies every table.  Values are structs, so copying the maps is
// enough; pointer fields are never mutated in place.
func (d *data) clone() *data {
	c := newData()
	for k, v := range d.zips {
		c.zips[k] = v
	}
	for k, v := range d.hotels {
		c.hotels[k] = v
	}
	for k, v := range d.rooms {
		c.rooms[k] = v
	}
	for k, v := range d.staff {
		c.staff[k] = v
	}
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.reservations {
		c.reservations[k] = v
	}
	for k, v := range d.transactions {
		c.transactions[k] = v
	}
	for k := range d.serves {
		c.serves[k] = struct{}{}
	}
	c.nextID = d.nextID
	return c
}

func (d *data) id() int64 {
	d.nextID++
	return d.nextID
}

// Store implements repository.Store in memory.
type Store struct {
	mu sync.Mutex
	d  *data
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store { return &Store{d: newData()} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// InTx implements repository.Store.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	committed := false
	defer func() {
		if !committed {
			s.d = snapshot
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(&tx{d: s.d}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) read() *tx {
	return &tx{d: s.d}
}

// ReservationByID implements repository.Queries.
func (s *Store) ReservationByID(ctx context.Context, id int64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().ReservationByID(ctx, id)
}

// RoomByKey implements repository.Queries.
func (s *Store) RoomByKey(ctx context.Context, key model.RoomKey) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().RoomByKey(ctx, key)
}

// CustomerByID implements repository.Queries.
func (s *Store) CustomerByID(ctx context.Context, id int64) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().CustomerByID(ctx, id)
}

// TransactionsByReservation implements repository.Queries.
func (s *Store) TransactionsByReservation(ctx context.Context, id int64) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().TransactionsByReservation(ctx, id)
}

// Hotels implements repository.ReportReader.
func (s *Store) Hotels(context.Context) ([]model.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Hotel, 0, len(s.d.hotels))
	for _, h := range s.d.hotels {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// RoomLocations implements repository.ReportReader.
func (s *Store) RoomLocations(_ context.Context, hotelID int64) ([]model.RoomLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.RoomLocation{}
	for _, r := range s.d.rooms {
		if hotelID > 0 && r.HotelID != hotelID {
			continue
		}
		h, ok := s.d.hotels[r.HotelID]
		if !ok {
			continue
		}
		z := s.d.zips[h.Zip]
		out = append(out, model.RoomLocation{
			HotelID: h.ID, HotelName: h.Name, Street: h.Street, Zip: h.Zip,
			City: z.City, State: z.State, HotelPhone: h.PhoneNumber,
			RoomNumber: r.RoomNumber, Category: r.Category, Occupancy: r.Occupancy,
			NightlyRateCents: r.NightlyRateCents,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out, nil
}

// ReservationsOverlapping implements repository.ReportReader.
func (s *Store) ReservationsOverlapping(_ context.Context, span interval.Span) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range s.d.reservations {
		if r.Span().Overlaps(span) {
			out = append(out, r)
		}
	}
	sortReservations(out)
	return out, nil
}

// HotelTransactions implements repository.ReportReader.
func (s *Store) HotelTransactions(_ context.Context, from, to time.Time) ([]model.HotelTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.HotelTransaction{}
	for _, t := range s.d.transactions {
		if t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		r, ok := s.d.reservations[t.ReservationID]
		if !ok {
			continue
		}
		out = append(out, model.HotelTransaction{Transaction: t, HotelID: r.HotelID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func sortReservations(rs []model.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.RoomKey() != b.RoomKey() {
			return a.RoomKey().Less(b.RoomKey())
		}
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.ID < b.ID
	})
}
