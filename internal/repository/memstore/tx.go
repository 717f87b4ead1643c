package memstore

import (
	"context"
	"sort"

	"github.com/nikolaygtitov/hotel-ops/internal/interval"
	"github.com/nikolaygtitov/hotel-ops/internal/model"
	"github.com/nikolaygtitov/hotel-ops/internal/repository"
)

// tx operates on the live tables while the store mutex is held.  The
// constraint checks mirror the SQL schema.
type tx struct {
	d *data
}

func (t *tx) ReservationByID(_ context.Context, id int64) (*model.Reservation, error) {
	r, ok := t.d.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (t *tx) RoomByKey(_ context.Context, key model.RoomKey) (*model.Room, error) {
	r, ok := t.d.rooms[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (t *tx) CustomerByID(_ context.Context, id int64) (*model.Customer, error) {
	c, ok := t.d.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (t *tx) TransactionsByReservation(_ context.Context, id int64) ([]model.Transaction, error) {
	out := []model.Transaction{}
	for _, tr := range t.d.transactions {
		if tr.ReservationID == id {
			out = append(out, tr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LockRoom is a lookup; the store mutex already serializes writers.
func (t *tx) LockRoom(ctx context.Context, key model.RoomKey) (*model.Room, error) {
	return t.RoomByKey(ctx, key)
}

func (t *tx) LockReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	return t.ReservationByID(ctx, id)
}

func (t *tx) OverlappingReservations(_ context.Context, key model.RoomKey, span interval.Span, excludeID int64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range t.d.reservations {
		if r.ID == excludeID || r.RoomKey() != key {
			continue
		}
		if r.Span().Overlaps(span) {
			out = append(out, r)
		}
	}
	sortReservations(out)
	return out, nil
}

// checkReservation applies the reservations table constraints.
func (t *tx) checkReservation(r *model.Reservation) error {
	if r.NumberOfGuests < 1 || r.NumberOfGuests > 9 || !r.StartDate.Before(r.EndDate) {
		return repository.ErrCheck
	}
	if r.CheckOutTime != nil && r.CheckInTime == nil {
		return repository.ErrCheck
	}
	if _, ok := t.d.rooms[r.RoomKey()]; !ok {
		return repository.ErrForeignKey
	}
	if _, ok := t.d.customers[r.CustomerID]; !ok {
		return repository.ErrForeignKey
	}
	return nil
}

func (t *tx) InsertReservation(_ context.Context, r *model.Reservation) error {
	if err := t.checkReservation(r); err != nil {
		return err
	}
	r.ID = t.d.id()
	t.d.reservations[r.ID] = *r
	return nil
}

func (t *tx) UpdateReservation(_ context.Context, r *model.Reservation) error {
	if _, ok := t.d.reservations[r.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := t.checkReservation(r); err != nil {
		return err
	}
	t.d.reservations[r.ID] = *r
	return nil
}

// DeleteReservation cascades to transactions and serves rows.
func (t *tx) DeleteReservation(_ context.Context, id int64) error {
	if _, ok := t.d.reservations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.d.reservations, id)
	for k, tr := range t.d.transactions {
		if tr.ReservationID == id {
			delete(t.d.transactions, k)
		}
	}
	for s := range t.d.serves {
		if s.ReservationID == id {
			delete(t.d.serves, s)
		}
	}
	return nil
}

func (t *tx) FirstAvailableStaff(_ context.Context, hotelID int64, title string) (*model.Staff, error) {
	var best *model.Staff
	for _, s := range t.d.staff {
		if s.WorksForHotelID != hotelID || s.Title != title || s.Assigned() {
			continue
		}
		if best == nil || s.ID < best.ID {
			s := s
			best = &s
		}
	}
	return best, nil
}

func (t *tx) LockStaff(_ context.Context, id int64) (*model.Staff, error) {
	s, ok := t.d.staff[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (t *tx) StaffAssignedTo(_ context.Context, key model.RoomKey) ([]model.Staff, error) {
	var out []model.Staff
	for _, s := range t.d.staff {
		if s.Assigned() && *s.AssignedHotelID == key.HotelID && *s.AssignedRoomNumber == key.RoomNumber {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) AssignStaff(_ context.Context, staffID int64, key model.RoomKey) error {
	s, ok := t.d.staff[staffID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, ok := t.d.rooms[key]; !ok {
		return repository.ErrForeignKey
	}
	hotel, room := key.HotelID, key.RoomNumber
	s.AssignedHotelID, s.AssignedRoomNumber = &hotel, &room
	t.d.staff[staffID] = s
	return nil
}

func (t *tx) ClearStaffAssignment(_ context.Context, staffID int64) error {
	s, ok := t.d.staff[staffID]
	if !ok {
		return nil
	}
	s.AssignedHotelID, s.AssignedRoomNumber = nil, nil
	t.d.staff[staffID] = s
	return nil
}

func (t *tx) InsertServes(_ context.Context, s model.Serves) error {
	if _, ok := t.d.staff[s.StaffID]; !ok {
		return repository.ErrForeignKey
	}
	if _, ok := t.d.reservations[s.ReservationID]; !ok {
		return repository.ErrForeignKey
	}
	t.d.serves[s] = struct{}{}
	return nil
}

func (t *tx) InsertTransaction(_ context.Context, tr *model.Transaction) error {
	if tr.AmountCents < 0 || tr.Type == "" {
		return repository.ErrCheck
	}
	if _, ok := t.d.reservations[tr.ReservationID]; !ok {
		return repository.ErrForeignKey
	}
	tr.ID = t.d.id()
	t.d.transactions[tr.ID] = *tr
	return nil
}
