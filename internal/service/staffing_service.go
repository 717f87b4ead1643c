package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/model"
	"github.com/nikolaygtitov/hotel-ops/internal/repository"
)

// StaffingPolicy decides who is dedicated to a room on check-in.  Each
// role in Roles gets one staff member (matched on title).  Categories
// restricts the policy to some room categories; empty means all.
type StaffingPolicy struct {
	Roles      []string
	Categories []string
}

// Applies reports whether rooms of category get dedicated staff.
func (p StaffingPolicy) Applies(category string) bool {
	if len(p.Categories) == 0 {
		return true
	}
	for _, c := range p.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// StaffingService assigns dedicated staff on check-in and frees them on
// check-out.  Assignment is opportunistic: a role with nobody available is
// skipped, never an error.
type StaffingService struct {
	store  repository.Store
	policy StaffingPolicy
	logger *logrus.Logger
}

// NewStaffingService creates a new staffing service.
func NewStaffingService(store repository.Store, policy StaffingPolicy, logger *logrus.Logger) *StaffingService {
	return &StaffingService{store: store, policy: policy, logger: logger}
}

// AssignForCheckIn dedicates the first available staff member of every
// policy role to the reservation's room and records a serves row for each.
// It returns the newly assigned staff in role order.
func (s *StaffingService) AssignForCheckIn(ctx context.Context, tx repository.Tx, r model.Reservation, room model.Room) ([]model.Staff, error) {
	if !s.policy.Applies(room.Category) {
		return nil, nil
	}
	var assigned []model.Staff
	for _, role := range s.policy.Roles {
		st, err := tx.FirstAvailableStaff(ctx, r.HotelID, role)
		if err != nil {
			return nil, wrapStore("select staff", err)
		}
		if st == nil {
			s.logger.WithFields(logrus.Fields{
				"reservation_id": r.ID,
				"hotel_id":       r.HotelID,
				"role":           role,
			}).Debug("no staff available for role")
			continue
		}
		key := r.RoomKey()
		if err := tx.AssignStaff(ctx, st.ID, key); err != nil {
			return nil, wrapStore("assign staff", err)
		}
		if err := tx.InsertServes(ctx, model.Serves{StaffID: st.ID, ReservationID: r.ID}); err != nil {
			return nil, wrapStore("record serves", err)
		}
		st.AssignedHotelID, st.AssignedRoomNumber = &key.HotelID, &key.RoomNumber
		assigned = append(assigned, *st)
	}
	return assigned, nil
}

// ReleaseOnCheckout frees every staff member dedicated to the reservation's
// room.  Serves rows are kept.  It returns the freed rows as they are after
// the release.
func (s *StaffingService) ReleaseOnCheckout(ctx context.Context, tx repository.Tx, r model.Reservation) ([]model.Staff, error) {
	staff, err := tx.StaffAssignedTo(ctx, r.RoomKey())
	if err != nil {
		return nil, wrapStore("list assigned staff", err)
	}
	for i := range staff {
		if err := tx.ClearStaffAssignment(ctx, staff[i].ID); err != nil {
			return nil, wrapStore("release staff", err)
		}
		staff[i].AssignedHotelID, staff[i].AssignedRoomNumber = nil, nil
	}
	return staff, nil
}

// Release frees one staff member on demand.  Releasing a member who is not
// assigned returns the row unchanged.
func (s *StaffingService) Release(ctx context.Context, staffID int64) (*model.Staff, error) {
	var out *model.Staff
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		st, err := tx.LockStaff(ctx, staffID)
		if err != nil {
			return lookup("staff", staffID, err)
		}
		if st.Assigned() {
			if err := tx.ClearStaffAssignment(ctx, st.ID); err != nil {
				return wrapStore("release staff", err)
			}
			s.logger.WithFields(logrus.Fields{
				"staff_id":    st.ID,
				"hotel_id":    *st.AssignedHotelID,
				"room_number": *st.AssignedRoomNumber,
			}).Info("staff released")
			st.AssignedHotelID, st.AssignedRoomNumber = nil, nil
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
