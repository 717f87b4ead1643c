package router

import (
	"github.com/labstack/echo/v4"

	"github.com/nikolaygtitov/hotel-ops/internal/handler"
)

// RegisterReports registers availability and the read-only reports on g.
// cache wraps the JSON reports; pass nil for none.
func RegisterReports(g *echo.Group, h *handler.ReportHandler, cache echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if cache != nil {
		mw = append(mw, cache)
	}
	g.GET("/availability", h.Availability)

	reports := g.Group("/reports", mw...)
	reports.GET("/occupancy/hotels", h.OccupancyByHotel)
	reports.GET("/occupancy/room-types", h.OccupancyByRoomType)
	reports.GET("/occupancy/cities", h.OccupancyByCity)
	reports.GET("/occupancy/range", h.OccupancyByDateRange)
	reports.GET("/revenue", h.Revenue)
	// exports are binary and regenerated on every request
	g.GET("/reports/export", h.Export)
}
