package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/export"
	"github.com/nikolaygtitov/hotel-ops/internal/service"
)

// ReportHandler serves availability, occupancy and revenue reports.  The
// occupancy snapshots default to today when ?date is absent.
type ReportHandler struct {
	reports *service.ReportService
	logger  *logrus.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports *service.ReportService, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

func list[T any](c echo.Context, items []T) error {
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// dateRange reads the required start_date and end_date parameters.
func dateRange(c echo.Context) (time.Time, time.Time, error) {
	start, err := queryDate(c, "start_date", time.Time{})
	if err != nil {
		return start, start, err
	}
	end, err := queryDate(c, "end_date", time.Time{})
	return start, end, err
}

// Availability handles GET /v1/availability?start_date&end_date[&hotel_id].
func (h *ReportHandler) Availability(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	hotelID, err := queryID(c, "hotel_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	rooms, err := h.reports.RoomAvailability(c.Request().Context(), start, end, hotelID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return list(c, rooms)
}

// OccupancyByHotel handles GET /v1/reports/occupancy/hotels[?date].
func (h *ReportHandler) OccupancyByHotel(c echo.Context) error {
	day, err := queryDate(c, "date", today())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	rows, err := h.reports.OccupancyByHotel(c.Request().Context(), day)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return list(c, rows)
}

// OccupancyByRoomType handles GET /v1/reports/occupancy/room-types[?date].
func (h *ReportHandler) OccupancyByRoomType(c echo.Context) error {
	day, err := queryDate(c, "date", today())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	rows, err := h.reports.OccupancyByRoomType(c.Request().Context(), day)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return list(c, rows)
}

// OccupancyByCity handles GET /v1/reports/occupancy/cities[?date].
func (h *ReportHandler) OccupancyByCity(c echo.Context) error {
	day, err := queryDate(c, "date", today())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	rows, err := h.reports.OccupancyByCity(c.Request().Context(), day)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return list(c, rows)
}

// OccupancyByDateRange handles GET /v1/reports/occupancy/range?start_date&end_date.
func (h *ReportHandler) OccupancyByDateRange(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	out, err := h.reports.OccupancyByDateRange(c.Request().Context(), start, end)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Revenue handles GET /v1/reports/revenue?start_date&end_date[&hotel_id].
// With hotel_id it returns one item, otherwise every hotel.
func (h *ReportHandler) Revenue(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	hotelID, err := queryID(c, "hotel_id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	ctx := c.Request().Context()
	if hotelID > 0 {
		rev, err := h.reports.RevenueSingleHotel(ctx, start, end, hotelID)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"item": rev})
	}
	rows, err := h.reports.RevenueAllHotels(ctx, start, end)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return list(c, rows)
}

// Export handles GET /v1/reports/export?start_date&end_date[&date].  The
// workbook has an occupancy sheet for date and a revenue sheet for the
// range.
func (h *ReportHandler) Export(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	day, err := queryDate(c, "date", today())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	ctx := c.Request().Context()
	occupancy, err := h.reports.OccupancyByHotel(ctx, day)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	revenue, err := h.reports.RevenueAllHotels(ctx, start, end)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	occ := export.Sheet{
		Name:   "Occupancy",
		Header: []string{"hotel_id", "hotel_name", "occupied_rooms", "total_rooms", "occupancy_pct"},
	}
	for _, r := range occupancy {
		occ.Rows = append(occ.Rows, []any{r.HotelID, r.HotelName, r.OccupiedRooms, r.TotalRooms, r.OccupancyPct})
	}
	rev := export.Sheet{
		Name:   "Revenue",
		Header: []string{"hotel_id", "hotel_name", "revenue"},
	}
	for _, r := range revenue {
		rev.Rows = append(rev.Rows, []any{r.HotelID, r.HotelName, float64(r.RevenueCents) / 100})
	}
	data, err := export.Workbook(occ, rev)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	name := fmt.Sprintf("hotel-report-%s-%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, export.ContentType, data)
}
