package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolaygtitov/hotel-ops/internal/model"
)

func TestStaffingPolicy_Applies(t *testing.T) {
	all := StaffingPolicy{Roles: []string{"Room Service"}}
	assert.True(t, all.Applies("Economy"))

	suites := StaffingPolicy{Roles: []string{"Room Service"}, Categories: []string{"Presidential", "Suite"}}
	assert.True(t, suites.Applies("suite"))
	assert.False(t, suites.Applies("Economy"))
}

func TestStaffingService_SecondRoomGetsNextFree(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.request(100, "2018-04-11", "2018-04-15")
	first.CheckInTime = str("2018-04-11 15:00:00")
	_, err := f.res.Create(ctx, first)
	require.NoError(t, err)

	second := f.request(101, "2018-04-11", "2018-04-15")
	second.CheckInTime = str("2018-04-11 16:00:00")
	res, err := f.res.Create(ctx, second)
	require.NoError(t, err)

	// Ron is the only free room service member; catering has nobody left.
	require.Len(t, res.Effects, 2)
	assert.Equal(t, int64(22), res.Effects[0].Staff.ID)
	assert.Equal(t, int64(101), *res.Effects[0].Staff.AssignedRoomNumber)

	mona, _ := f.store.Staff(23)
	assert.False(t, mona.Assigned(), "titles outside the policy are never dedicated")
}

func TestStaffingService_NobodyAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	staffing := NewStaffingService(f.store, StaffingPolicy{Roles: []string{"Sommelier"}}, quietLogger())
	svc := NewReservationService(f.store, staffing, f.billing, nil, quietLogger())

	req := f.request(100, "2018-04-11", "2018-04-15")
	req.CheckInTime = str("2018-04-11 15:00:00")
	res, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, res.Effects)
	assert.NotNil(t, res.Reservation.CheckInTime)
}

func TestStaffingService_CategoryOutsidePolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	staffing := NewStaffingService(f.store, StaffingPolicy{
		Roles:      []string{"Room Service", "Catering"},
		Categories: []string{"Presidential"},
	}, quietLogger())
	svc := NewReservationService(f.store, staffing, f.billing, nil, quietLogger())

	res, err := svc.Create(ctx, f.request(100, "2018-04-11", "2018-04-15"))
	require.NoError(t, err)
	in, err := svc.CheckIn(ctx, res.Reservation.ID, time.Date(2018, 4, 11, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, in.Effects)
	assert.Empty(t, f.store.Serves())
}

func TestStaffingService_Release(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hotel, room := int64(9), int64(100)
	f.store.AddStaff(model.Staff{ID: 40, Name: "Ann", Title: "Room Service", WorksForHotelID: 9,
		AssignedHotelID: &hotel, AssignedRoomNumber: &room})

	st, err := f.staffing.Release(ctx, 40)
	require.NoError(t, err)
	assert.False(t, st.Assigned())
	stored, _ := f.store.Staff(40)
	assert.False(t, stored.Assigned())

	again, err := f.staffing.Release(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, st, again)

	_, err = f.staffing.Release(ctx, 404)
	var ne *NotFoundError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "staff", ne.Entity)
}
