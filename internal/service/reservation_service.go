package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/interval"
	"github.com/nikolaygtitov/hotel-ops/internal/model"
	"github.com/nikolaygtitov/hotel-ops/internal/queue"
	"github.com/nikolaygtitov/hotel-ops/internal/repository"
)

// CreateReservationRequest is the input of ReservationService.Create.
// Dates are YYYY-MM-DD; times accept RFC 3339 or "YYYY-MM-DD HH:MM:SS".
type CreateReservationRequest struct {
	NumberOfGuests int     `json:"number_of_guests" validate:"min=1,max=9"`
	StartDate      string  `json:"start_date" validate:"required"`
	EndDate        string  `json:"end_date" validate:"required"`
	HotelID        int64   `json:"hotel_id" validate:"required,gt=0"`
	RoomNumber     int64   `json:"room_number" validate:"required,gt=0"`
	CustomerID     int64   `json:"customer_id" validate:"required,gt=0"`
	CheckInTime    *string `json:"check_in_time,omitempty"`
	CheckOutTime   *string `json:"check_out_time,omitempty"`
}

// UpdateReservationRequest carries the fields to change; nil leaves a
// field as it is.
type UpdateReservationRequest struct {
	NumberOfGuests *int    `json:"number_of_guests,omitempty" validate:"omitempty,min=1,max=9"`
	StartDate      *string `json:"start_date,omitempty"`
	EndDate        *string `json:"end_date,omitempty"`
	HotelID        *int64  `json:"hotel_id,omitempty" validate:"omitempty,gt=0"`
	RoomNumber     *int64  `json:"room_number,omitempty" validate:"omitempty,gt=0"`
	CustomerID     *int64  `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	CheckInTime    *string `json:"check_in_time,omitempty"`
	CheckOutTime   *string `json:"check_out_time,omitempty"`
}

// EffectKind names a cascading change made alongside a reservation write.
type EffectKind string

const (
	EffectStaffAssigned EffectKind = "staff_assigned"
	EffectServes        EffectKind = "serves"
	EffectTransaction   EffectKind = "transaction"
	EffectStaffReleased EffectKind = "staff_released"
)

// Effect is one row touched as a side effect.  Exactly one of the pointer
// fields is set, matching Kind.
type Effect struct {
	Kind        EffectKind         `json:"kind"`
	Staff       *model.Staff       `json:"staff,omitempty"`
	Serves      *model.Serves      `json:"serves,omitempty"`
	Transaction *model.Transaction `json:"transaction,omitempty"`
}

// ReservationResult is the persisted reservation followed by its side
// effects in the order they happened.
type ReservationResult struct {
	Reservation model.Reservation `json:"reservation"`
	Effects     []Effect          `json:"effects"`
}

// ReservationService validates and persists reservations and drives the
// check-in/check-out transitions.
type ReservationService struct {
	store     repository.Store
	staffing  *StaffingService
	billing   *BillingService
	publisher Publisher
	logger    *logrus.Logger
}

// NewReservationService wires the engine.  publisher may be nil.
func NewReservationService(store repository.Store, staffing *StaffingService, billing *BillingService, publisher Publisher, logger *logrus.Logger) *ReservationService {
	return &ReservationService{
		store:     store,
		staffing:  staffing,
		billing:   billing,
		publisher: publisher,
		logger:    logger,
	}
}

// Get returns one reservation.
func (s *ReservationService) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	r, err := s.store.ReservationByID(ctx, id)
	if err != nil {
		return nil, lookup("reservation", id, err)
	}
	return r, nil
}

// Create validates req, checks the room for overlapping stays and inserts
// the reservation.  A check-in time assigns staff; a check-out time then
// bills the stay and frees the staff again.  Everything happens in one
// transaction.
func (s *ReservationService) Create(ctx context.Context, req CreateReservationRequest) (*ReservationResult, error) {
	r, err := req.reservation()
	if err != nil {
		return nil, err
	}

	res := &ReservationResult{Effects: []Effect{}}
	var events []queue.StayEvent
	err = s.store.InTx(ctx, func(tx repository.Tx) error {
		room, err := tx.LockRoom(ctx, r.RoomKey())
		if err != nil {
			return lookup("room", roomLabel(r.RoomKey()), err)
		}
		if r.NumberOfGuests > room.Occupancy {
			return invalid("number_of_guests", fmt.Sprintf("exceeds room occupancy of %d", room.Occupancy))
		}
		if _, err := tx.CustomerByID(ctx, r.CustomerID); err != nil {
			return lookup("customer", r.CustomerID, err)
		}
		if err := checkOverlap(ctx, tx, r, 0); err != nil {
			return err
		}
		if err := tx.InsertReservation(ctx, &r); err != nil {
			return wrapStore("insert reservation", err)
		}

		effects, evs, err := s.transition(ctx, tx, nil, r, *room)
		if err != nil {
			return err
		}
		res.Reservation, res.Effects, events = r, effects, evs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": r.ID,
		"hotel_id":       r.HotelID,
		"room_number":    r.RoomNumber,
		"span":           r.Span().String(),
		"effects":        len(res.Effects),
	}).Info("reservation created")
	s.publish(ctx, events)
	return res, nil
}

// reservationPatch is an UpdateReservationRequest with parsed values.
type reservationPatch struct {
	guests     *int
	start, end *time.Time
	hotelID    *int64
	roomNumber *int64
	customerID *int64
	checkIn    *time.Time
	checkOut   *time.Time
}

// Update applies req to reservation id.  The overlap check is repeated
// only when the room or the dates change.  Side effects fire only when a
// check-in or check-out time goes from unset to set; correcting a time
// that is already set changes the row and nothing else.
func (s *ReservationService) Update(ctx context.Context, id int64, req UpdateReservationRequest) (*ReservationResult, error) {
	p, err := req.patch()
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, id, p)
}

// CheckIn records the guest's arrival at at.
func (s *ReservationService) CheckIn(ctx context.Context, id int64, at time.Time) (*ReservationResult, error) {
	at = at.UTC()
	return s.apply(ctx, id, reservationPatch{checkIn: &at})
}

// CheckOut records the guest's departure at at, billing the stay the first
// time it is called.
func (s *ReservationService) CheckOut(ctx context.Context, id int64, at time.Time) (*ReservationResult, error) {
	at = at.UTC()
	return s.apply(ctx, id, reservationPatch{checkOut: &at})
}

func (s *ReservationService) apply(ctx context.Context, id int64, p reservationPatch) (*ReservationResult, error) {
	res := &ReservationResult{Effects: []Effect{}}
	var events []queue.StayEvent
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		prev, err := tx.LockReservation(ctx, id)
		if err != nil {
			return lookup("reservation", id, err)
		}
		cur := *prev
		p.applyTo(&cur)
		if err := validateReservation(cur); err != nil {
			return err
		}

		room, err := lockRooms(ctx, tx, prev.RoomKey(), cur.RoomKey())
		if err != nil {
			return err
		}
		if cur.NumberOfGuests > room.Occupancy {
			return invalid("number_of_guests", fmt.Sprintf("exceeds room occupancy of %d", room.Occupancy))
		}
		if cur.CustomerID != prev.CustomerID {
			if _, err := tx.CustomerByID(ctx, cur.CustomerID); err != nil {
				return lookup("customer", cur.CustomerID, err)
			}
		}
		moved := cur.RoomKey() != prev.RoomKey() ||
			!cur.StartDate.Equal(prev.StartDate) || !cur.EndDate.Equal(prev.EndDate)
		if moved {
			if err := checkOverlap(ctx, tx, cur, cur.ID); err != nil {
				return err
			}
		}
		if err := tx.UpdateReservation(ctx, &cur); err != nil {
			return wrapStore("update reservation", err)
		}

		effects := []Effect{}
		if cur.RoomKey() != prev.RoomKey() && prev.CheckInTime != nil && prev.CheckOutTime == nil {
			if effects, err = s.moveStaff(ctx, tx, *prev, cur, *room); err != nil {
				return err
			}
		}
		more, evs, err := s.transition(ctx, tx, prev, cur, *room)
		if err != nil {
			return err
		}
		res.Reservation, res.Effects, events = cur, append(effects, more...), evs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": id,
		"effects":        len(res.Effects),
	}).Info("reservation updated")
	s.publish(ctx, events)
	return res, nil
}

// Delete removes a reservation together with its transactions and serves
// rows.  Staff still dedicated to an occupied room are released first.
func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	var released int
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		r, err := tx.LockReservation(ctx, id)
		if err != nil {
			return lookup("reservation", id, err)
		}
		if r.CheckInTime != nil && r.CheckOutTime == nil {
			freed, err := s.staffing.ReleaseOnCheckout(ctx, tx, *r)
			if err != nil {
				return err
			}
			released = len(freed)
		}
		if err := tx.DeleteReservation(ctx, id); err != nil {
			return lookup("reservation", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"reservation_id": id,
		"staff_released": released,
	}).Info("reservation deleted")
	return nil
}

// transition runs the one-shot side effects of prev -> cur.  prev is nil
// for a new reservation.
func (s *ReservationService) transition(ctx context.Context, tx repository.Tx, prev *model.Reservation, cur model.Reservation, room model.Room) ([]Effect, []queue.StayEvent, error) {
	effects := []Effect{}
	var events []queue.StayEvent

	checkedIn := cur.CheckInTime != nil && (prev == nil || prev.CheckInTime == nil)
	checkedOut := cur.CheckOutTime != nil && (prev == nil || prev.CheckOutTime == nil)

	if checkedIn {
		staff, err := s.staffing.AssignForCheckIn(ctx, tx, cur, room)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]int64, 0, len(staff))
		for _, st := range staff {
			ids = append(ids, st.ID)
		}
		effects = append(effects, assignedEffects(staff, cur.ID)...)
		events = append(events, stayEvent(queue.EventCheckedIn, cur, ids, 0, *cur.CheckInTime))
	}

	if checkedOut {
		charge, err := s.billing.ChargeOnCheckout(ctx, tx, cur, room, *cur.CheckOutTime)
		if err != nil {
			return nil, nil, err
		}
		effects = append(effects, Effect{Kind: EffectTransaction, Transaction: charge})

		freed, err := s.staffing.ReleaseOnCheckout(ctx, tx, cur)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]int64, 0, len(freed))
		for i := range freed {
			st := freed[i]
			effects = append(effects, Effect{Kind: EffectStaffReleased, Staff: &st})
			ids = append(ids, st.ID)
		}
		events = append(events, stayEvent(queue.EventCheckedOut, cur, ids, charge.AmountCents, *cur.CheckOutTime))
	}
	return effects, events, nil
}

// moveStaff follows an occupied stay to its new room: the old room's
// dedicated staff are freed and the policy is applied again to the new
// room, which may be in another hotel.
func (s *ReservationService) moveStaff(ctx context.Context, tx repository.Tx, prev, cur model.Reservation, room model.Room) ([]Effect, error) {
	freed, err := s.staffing.ReleaseOnCheckout(ctx, tx, prev)
	if err != nil {
		return nil, err
	}
	effects := make([]Effect, 0, len(freed))
	for i := range freed {
		st := freed[i]
		effects = append(effects, Effect{Kind: EffectStaffReleased, Staff: &st})
	}
	staff, err := s.staffing.AssignForCheckIn(ctx, tx, cur, room)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"reservation_id": cur.ID,
		"from_room":      roomLabel(prev.RoomKey()),
		"to_room":        roomLabel(cur.RoomKey()),
		"released":       len(freed),
		"assigned":       len(staff),
	}).Info("staff moved with stay")
	return append(effects, assignedEffects(staff, cur.ID)...), nil
}

func assignedEffects(staff []model.Staff, reservationID int64) []Effect {
	effects := make([]Effect, 0, 2*len(staff))
	for i := range staff {
		st := staff[i]
		effects = append(effects,
			Effect{Kind: EffectStaffAssigned, Staff: &st},
			Effect{Kind: EffectServes, Serves: &model.Serves{StaffID: st.ID, ReservationID: reservationID}},
		)
	}
	return effects
}

// checkOverlap fails with a ConflictError when another reservation of the
// room shares a night with r.  The room row must already be locked.
func checkOverlap(ctx context.Context, tx repository.Tx, r model.Reservation, excludeID int64) error {
	clash, err := tx.OverlappingReservations(ctx, r.RoomKey(), r.Span(), excludeID)
	if err != nil {
		return wrapStore("check overlap", err)
	}
	if len(clash) > 0 {
		return &ConflictError{Message: fmt.Sprintf("room %s is already reserved for %s by reservation %d",
			roomLabel(r.RoomKey()), clash[0].Span(), clash[0].ID)}
	}
	return nil
}

// lockRooms locks the old and new room of a reservation in key order and
// returns the new one.
func lockRooms(ctx context.Context, tx repository.Tx, prev, cur model.RoomKey) (*model.Room, error) {
	keys := []model.RoomKey{cur}
	if prev != cur {
		keys = append(keys, prev)
		sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	}
	var target *model.Room
	for _, k := range keys {
		room, err := tx.LockRoom(ctx, k)
		if err != nil {
			return nil, lookup("room", roomLabel(k), err)
		}
		if k == cur {
			target = room
		}
	}
	return target, nil
}

func roomLabel(k model.RoomKey) string { return fmt.Sprintf("%d/%d", k.HotelID, k.RoomNumber) }

// validateReservation checks the row-level rules shared by create and
// update.
func validateReservation(r model.Reservation) error {
	if r.NumberOfGuests < 1 || r.NumberOfGuests > 9 {
		return invalid("number_of_guests", "must be between 1 and 9")
	}
	if !r.StartDate.Before(r.EndDate) {
		return invalid("end_date", "must be after start_date")
	}
	if r.CheckOutTime != nil && r.CheckInTime == nil {
		return invalid("check_out_time", "requires check_in_time")
	}
	if r.CheckOutTime != nil && r.CheckOutTime.Before(*r.CheckInTime) {
		return invalid("check_out_time", "must not be before check_in_time")
	}
	return nil
}

func (req CreateReservationRequest) reservation() (model.Reservation, error) {
	r := model.Reservation{
		NumberOfGuests: req.NumberOfGuests,
		HotelID:        req.HotelID,
		RoomNumber:     req.RoomNumber,
		CustomerID:     req.CustomerID,
	}
	var err error
	if r.StartDate, err = ParseDate("start_date", req.StartDate); err != nil {
		return r, err
	}
	if r.EndDate, err = ParseDate("end_date", req.EndDate); err != nil {
		return r, err
	}
	if req.CheckInTime != nil {
		t, err := ParseDateTime("check_in_time", *req.CheckInTime)
		if err != nil {
			return r, err
		}
		r.CheckInTime = &t
	}
	if req.CheckOutTime != nil {
		t, err := ParseDateTime("check_out_time", *req.CheckOutTime)
		if err != nil {
			return r, err
		}
		r.CheckOutTime = &t
	}
	if r.HotelID <= 0 || r.RoomNumber <= 0 {
		return r, invalid("room", "hotel_id and room_number are required")
	}
	if r.CustomerID <= 0 {
		return r, invalid("customer_id", "is required")
	}
	return r, validateReservation(r)
}

func (req UpdateReservationRequest) patch() (reservationPatch, error) {
	p := reservationPatch{
		guests:     req.NumberOfGuests,
		hotelID:    req.HotelID,
		roomNumber: req.RoomNumber,
		customerID: req.CustomerID,
	}
	if req.StartDate != nil {
		t, err := ParseDate("start_date", *req.StartDate)
		if err != nil {
			return p, err
		}
		p.start = &t
	}
	if req.EndDate != nil {
		t, err := ParseDate("end_date", *req.EndDate)
		if err != nil {
			return p, err
		}
		p.end = &t
	}
	if req.CheckInTime != nil {
		t, err := ParseDateTime("check_in_time", *req.CheckInTime)
		if err != nil {
			return p, err
		}
		p.checkIn = &t
	}
	if req.CheckOutTime != nil {
		t, err := ParseDateTime("check_out_time", *req.CheckOutTime)
		if err != nil {
			return p, err
		}
		p.checkOut = &t
	}
	return p, nil
}

func (p reservationPatch) applyTo(r *model.Reservation) {
	if p.guests != nil {
		r.NumberOfGuests = *p.guests
	}
	if p.start != nil {
		r.StartDate = interval.Day(*p.start)
	}
	if p.end != nil {
		r.EndDate = interval.Day(*p.end)
	}
	if p.hotelID != nil {
		r.HotelID = *p.hotelID
	}
	if p.roomNumber != nil {
		r.RoomNumber = *p.roomNumber
	}
	if p.customerID != nil {
		r.CustomerID = *p.customerID
	}
	if p.checkIn != nil {
		r.CheckInTime = p.checkIn
	}
	if p.checkOut != nil {
		r.CheckOutTime = p.checkOut
	}
}
