package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/nikolaygtitov/hotel-ops/internal/interval"
	"github.com/nikolaygtitov/hotel-ops/internal/model"
	"github.com/nikolaygtitov/hotel-ops/internal/repository"
)

// Occupancy counts the occupied rooms of one group on one day.
type Occupancy struct {
	OccupiedRooms int     `json:"occupied_rooms"`
	TotalRooms    int     `json:"total_rooms"`
	OccupancyPct  float64 `json:"occupancy_pct"`
}

func newOccupancy(occupied, total int) Occupancy {
	return Occupancy{
		OccupiedRooms: occupied,
		TotalRooms:    total,
		OccupancyPct:  interval.Percent(float64(occupied), float64(total)),
	}
}

// HotelOccupancy is one row of the by-hotel report.
type HotelOccupancy struct {
	HotelID   int64  `json:"hotel_id"`
	HotelName string `json:"hotel_name"`
	Occupancy
}

// RoomTypeOccupancy is one row of the by-category report.
type RoomTypeOccupancy struct {
	Category string `json:"category"`
	Occupancy
}

// CityOccupancy is one row of the by-city report.
type CityOccupancy struct {
	City  string `json:"city"`
	State string `json:"state"`
	Occupancy
}

// RangeOccupancy compares booked room-nights with the room-nights
// available over a date range.
type RangeOccupancy struct {
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	ActualBookings int     `json:"actual_bookings"`
	TotalPossible  int     `json:"total_possible"`
	OccupancyPct   float64 `json:"occupancy_pct"`
}

// HotelRevenue is the transaction total of one hotel over a range.
type HotelRevenue struct {
	HotelID      int64  `json:"hotel_id"`
	HotelName    string `json:"hotel_name"`
	RevenueCents int64  `json:"revenue_cents"`
}

// ReportService computes read-only occupancy, revenue and availability
// figures over committed state.
type ReportService struct {
	store repository.Store
}

// NewReportService creates a new report service.
func NewReportService(store repository.Store) *ReportService {
	return &ReportService{store: store}
}

// occupiedOn returns the rooms with a reservation active on day, i.e.
// start_date <= day < end_date.
func (s *ReportService) occupiedOn(ctx context.Context, day time.Time) (map[model.RoomKey]bool, error) {
	d := interval.Day(day)
	active, err := s.store.ReservationsOverlapping(ctx, interval.Span{Start: d, End: d.AddDate(0, 0, 1)})
	if err != nil {
		return nil, wrapStore("list reservations", err)
	}
	occupied := make(map[model.RoomKey]bool, len(active))
	for _, r := range active {
		occupied[r.RoomKey()] = true
	}
	return occupied, nil
}

// tally counts occupied and total rooms per group key.
type tally struct{ occupied, total int }

func (s *ReportService) tallyBy(ctx context.Context, day time.Time, key func(model.RoomLocation) string) (map[string]*tally, error) {
	rooms, err := s.store.RoomLocations(ctx, 0)
	if err != nil {
		return nil, wrapStore("list rooms", err)
	}
	occupied, err := s.occupiedOn(ctx, day)
	if err != nil {
		return nil, err
	}
	groups := map[string]*tally{}
	for _, room := range rooms {
		k := key(room)
		g := groups[k]
		if g == nil {
			g = &tally{}
			groups[k] = g
		}
		g.total++
		if occupied[room.Key()] {
			g.occupied++
		}
	}
	return groups, nil
}

// OccupancyByHotel reports every hotel, including hotels without rooms,
// ordered by hotel id.
func (s *ReportService) OccupancyByHotel(ctx context.Context, day time.Time) ([]HotelOccupancy, error) {
	hotels, err := s.store.Hotels(ctx)
	if err != nil {
		return nil, wrapStore("list hotels", err)
	}
	groups, err := s.tallyBy(ctx, day, func(l model.RoomLocation) string { return hotelKey(l.HotelID) })
	if err != nil {
		return nil, err
	}
	out := make([]HotelOccupancy, 0, len(hotels))
	for _, h := range hotels {
		row := HotelOccupancy{HotelID: h.ID, HotelName: h.Name, Occupancy: newOccupancy(0, 0)}
		if g := groups[hotelKey(h.ID)]; g != nil {
			row.Occupancy = newOccupancy(g.occupied, g.total)
		}
		out = append(out, row)
	}
	return out, nil
}

// OccupancyByRoomType groups rooms by category, ordered by category.
func (s *ReportService) OccupancyByRoomType(ctx context.Context, day time.Time) ([]RoomTypeOccupancy, error) {
	groups, err := s.tallyBy(ctx, day, func(l model.RoomLocation) string { return l.Category })
	if err != nil {
		return nil, err
	}
	out := make([]RoomTypeOccupancy, 0, len(groups))
	for cat, g := range groups {
		out = append(out, RoomTypeOccupancy{Category: cat, Occupancy: newOccupancy(g.occupied, g.total)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// OccupancyByCity groups rooms by the city and state of their hotel,
// ordered by state then city.
func (s *ReportService) OccupancyByCity(ctx context.Context, day time.Time) ([]CityOccupancy, error) {
	type place struct{ city, state string }
	places := map[string]place{}
	groups, err := s.tallyBy(ctx, day, func(l model.RoomLocation) string {
		k := l.State + "\x00" + l.City
		places[k] = place{city: l.City, state: l.State}
		return k
	})
	if err != nil {
		return nil, err
	}
	out := make([]CityOccupancy, 0, len(groups))
	for k, g := range groups {
		p := places[k]
		out = append(out, CityOccupancy{City: p.city, State: p.state, Occupancy: newOccupancy(g.occupied, g.total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		return out[i].City < out[j].City
	})
	return out, nil
}

// OccupancyByDateRange sums the nights every reservation shares with
// [start, end) and divides by rooms x nights in the range.  The percentage
// is rounded to 4 decimals and is 0 when nothing could be booked.
func (s *ReportService) OccupancyByDateRange(ctx context.Context, start, end time.Time) (*RangeOccupancy, error) {
	span := interval.Span{Start: interval.Day(start), End: interval.Day(end)}
	if span.End.Before(span.Start) {
		return nil, invalid("end_date", "must not be before start_date")
	}
	rooms, err := s.store.RoomLocations(ctx, 0)
	if err != nil {
		return nil, wrapStore("list rooms", err)
	}
	out := &RangeOccupancy{
		StartDate:     span.Start.Format(interval.DateLayout),
		EndDate:       span.End.Format(interval.DateLayout),
		TotalPossible: len(rooms) * span.Nights(),
	}
	if out.TotalPossible == 0 {
		return out, nil
	}
	reservations, err := s.store.ReservationsOverlapping(ctx, span)
	if err != nil {
		return nil, wrapStore("list reservations", err)
	}
	for _, r := range reservations {
		out.ActualBookings += r.Span().OverlapNights(span)
	}
	out.OccupancyPct = interval.Round(interval.Percent(float64(out.ActualBookings), float64(out.TotalPossible)), 4)
	return out, nil
}

// revenue sums transactions dated within [start, end], both days
// inclusive, per hotel.
func (s *ReportService) revenue(ctx context.Context, start, end time.Time) (map[int64]int64, error) {
	from, to := interval.Day(start), interval.Day(end)
	if to.Before(from) {
		return nil, invalid("end_date", "must not be before start_date")
	}
	txs, err := s.store.HotelTransactions(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, wrapStore("list transactions", err)
	}
	sums := map[int64]int64{}
	for _, t := range txs {
		sums[t.HotelID] += t.AmountCents
	}
	return sums, nil
}

// RevenueSingleHotel totals one hotel's transactions in [start, end].
func (s *ReportService) RevenueSingleHotel(ctx context.Context, start, end time.Time, hotelID int64) (*HotelRevenue, error) {
	hotel, err := s.hotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	sums, err := s.revenue(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &HotelRevenue{HotelID: hotel.ID, HotelName: hotel.Name, RevenueCents: sums[hotel.ID]}, nil
}

// RevenueAllHotels lists every hotel, zero when it had no transactions in
// range, sorted by hotel name.
func (s *ReportService) RevenueAllHotels(ctx context.Context, start, end time.Time) ([]HotelRevenue, error) {
	sums, err := s.revenue(ctx, start, end)
	if err != nil {
		return nil, err
	}
	hotels, err := s.store.Hotels(ctx)
	if err != nil {
		return nil, wrapStore("list hotels", err)
	}
	out := make([]HotelRevenue, 0, len(hotels))
	for _, h := range hotels {
		out = append(out, HotelRevenue{HotelID: h.ID, HotelName: h.Name, RevenueCents: sums[h.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HotelName != out[j].HotelName {
			return out[i].HotelName < out[j].HotelName
		}
		return out[i].HotelID < out[j].HotelID
	})
	return out, nil
}

// RoomAvailability lists the rooms without a reservation overlapping
// [start, end), optionally for one hotel (hotelID 0 = all), ordered by
// hotel id then room number.
func (s *ReportService) RoomAvailability(ctx context.Context, start, end time.Time, hotelID int64) ([]model.RoomLocation, error) {
	span, err := interval.New(start, end)
	if err != nil {
		return nil, invalid("end_date", "must be after start_date")
	}
	if hotelID > 0 {
		if _, err := s.hotel(ctx, hotelID); err != nil {
			return nil, err
		}
	}
	rooms, err := s.store.RoomLocations(ctx, hotelID)
	if err != nil {
		return nil, wrapStore("list rooms", err)
	}
	booked, err := s.store.ReservationsOverlapping(ctx, span)
	if err != nil {
		return nil, wrapStore("list reservations", err)
	}
	taken := make(map[model.RoomKey]bool, len(booked))
	for _, r := range booked {
		taken[r.RoomKey()] = true
	}
	out := []model.RoomLocation{}
	for _, room := range rooms {
		if !taken[room.Key()] {
			out = append(out, room)
		}
	}
	return out, nil
}

func (s *ReportService) hotel(ctx context.Context, id int64) (*model.Hotel, error) {
	hotels, err := s.store.Hotels(ctx)
	if err != nil {
		return nil, wrapStore("list hotels", err)
	}
	for i := range hotels {
		if hotels[i].ID == id {
			return &hotels[i], nil
		}
	}
	return nil, notFound("hotel", id)
}

func hotelKey(id int64) string { return strconv.FormatInt(id, 10) }
