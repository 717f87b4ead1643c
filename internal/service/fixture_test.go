package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/model"
	"github.com/nikolaygtitov/hotel-ops/internal/queue"
	"github.com/nikolaygtitov/hotel-ops/internal/repository/memstore"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.StayEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.StayEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	store     *memstore.Store
	pub       *recordingPublisher
	staffing  *StaffingService
	billing   *BillingService
	res       *ReservationService
	reports   *ReportService
	hotel     model.Hotel
	customer  model.Customer
	cardHoldr model.Customer
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newFixture seeds one hotel (id 9) with rooms 100 (Suite, 4 guests,
// 100.00/night) and 101 (Economy, 2 guests, 80.00/night), two customers and
// dedicated staff.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	s.AddZip(model.ZipToCityState{Zip: "27601", City: "Raleigh", State: "NC"})
	h := s.AddHotel(model.Hotel{ID: 9, Name: "Sheraton", Street: "1 Hillsborough", Zip: "27601", PhoneNumber: "919-555-0000"})
	s.AddRoom(model.Room{HotelID: 9, RoomNumber: 100, Category: "Suite", Occupancy: 4, NightlyRateCents: 10000})
	s.AddRoom(model.Room{HotelID: 9, RoomNumber: 101, Category: "Economy", Occupancy: 2, NightlyRateCents: 8000})

	s.AddStaff(model.Staff{ID: 20, Name: "Rita", Title: "Room Service", WorksForHotelID: 9})
	s.AddStaff(model.Staff{ID: 21, Name: "Carl", Title: "Catering", WorksForHotelID: 9})
	s.AddStaff(model.Staff{ID: 22, Name: "Ron", Title: "Room Service", WorksForHotelID: 9})
	s.AddStaff(model.Staff{ID: 23, Name: "Mona", Title: "Manager", WorksForHotelID: 9})

	card := true
	acct := "4111-0000"
	c := s.AddCustomer(model.Customer{ID: 30, SSN: "111-11-1111", Name: "Alice"})
	cc := s.AddCustomer(model.Customer{ID: 31, SSN: "222-22-2222", Name: "Bob", AccountNumber: &acct, IsHotelCard: &card})

	logger := quietLogger()
	pub := &recordingPublisher{}
	staffing := NewStaffingService(s, StaffingPolicy{Roles: []string{"Room Service", "Catering"}}, logger)
	billing := NewBillingService(s, DefaultHotelCardDiscountBP, logger)
	return &fixture{
		store:     s,
		pub:       pub,
		staffing:  staffing,
		billing:   billing,
		res:       NewReservationService(s, staffing, billing, pub, logger),
		reports:   NewReportService(s),
		hotel:     h,
		customer:  c,
		cardHoldr: cc,
	}
}

func (f *fixture) request(room int64, start, end string) CreateReservationRequest {
	return CreateReservationRequest{
		NumberOfGuests: 2,
		StartDate:      start,
		EndDate:        end,
		HotelID:        f.hotel.ID,
		RoomNumber:     room,
		CustomerID:     f.customer.ID,
	}
}

func str(s string) *string { return &s }

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
