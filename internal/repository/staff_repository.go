package repository

import (
	"context"
	"errors"

	"github.com/nikolaygtitov/hotel-ops/internal/model"
)

const staffColumns = `id, name, title, date_of_birth, department, phone_number, street, zip,
       works_for_hotel_id, assigned_hotel_id, assigned_room_number`

// FirstAvailableStaff picks by id so that assignment is deterministic.
// SKIP LOCKED lets two concurrent check-ins at the same hotel pick
// different people instead of waiting on each other.
func (t *sqlTx) FirstAvailableStaff(ctx context.Context, hotelID int64, title string) (*model.Staff, error) {
	const sel = `SELECT ` + staffColumns + `
FROM staff
WHERE works_for_hotel_id = ? AND title = ?
  AND assigned_hotel_id IS NULL AND assigned_room_number IS NULL
ORDER BY id
LIMIT 1
FOR UPDATE SKIP LOCKED`
	var s model.Staff
	if err := t.get(ctx, &s, sel, hotelID, title); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// LockStaff selects one staff row FOR UPDATE.
func (t *sqlTx) LockStaff(ctx context.Context, id int64) (*model.Staff, error) {
	var s model.Staff
	if err := t.get(ctx, &s, `SELECT `+staffColumns+` FROM staff WHERE id = ? FOR UPDATE`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// StaffAssignedTo lists, and locks, the staff dedicated to a room.
func (t *sqlTx) StaffAssignedTo(ctx context.Context, key model.RoomKey) ([]model.Staff, error) {
	const sel = `SELECT ` + staffColumns + `
FROM staff
WHERE assigned_hotel_id = ? AND assigned_room_number = ?
ORDER BY id
FOR UPDATE`
	var out []model.Staff
	if err := t.selectAll(ctx, &out, sel, key.HotelID, key.RoomNumber); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignStaff dedicates the staff member to the room.
func (t *sqlTx) AssignStaff(ctx context.Context, staffID int64, key model.RoomKey) error {
	n, err := t.exec(ctx, `UPDATE staff SET assigned_hotel_id = ?, assigned_room_number = ? WHERE id = ?`,
		key.HotelID, key.RoomNumber, staffID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearStaffAssignment frees the staff member.  Clearing an unassigned
// member is not an error.
func (t *sqlTx) ClearStaffAssignment(ctx context.Context, staffID int64) error {
	_, err := t.exec(ctx, `UPDATE staff SET assigned_hotel_id = NULL, assigned_room_number = NULL WHERE id = ?`, staffID)
	return err
}

// InsertServes ignores a duplicate (staff_id, reservation_id) pair.
func (t *sqlTx) InsertServes(ctx context.Context, s model.Serves) error {
	ins := `INSERT IGNORE INTO serves (staff_id, reservation_id) VALUES (?, ?)`
	if t.postgres() {
		ins = `INSERT INTO serves (staff_id, reservation_id) VALUES (?, ?) ON CONFLICT DO NOTHING`
	}
	_, err := t.exec(ctx, ins, s.StaffID, s.ReservationID)
	return err
}
