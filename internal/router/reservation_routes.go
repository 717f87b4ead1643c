package router

import (
	"github.com/labstack/echo/v4"

	"github.com/nikolaygtitov/hotel-ops/internal/handler"
)

// RegisterReservations registers the reservation engine endpoints and
// on-demand staff release on g.
func RegisterReservations(g *echo.Group, r *handler.ReservationHandler, s *handler.StaffHandler) {
	g.POST("/reservations", r.Create)
	g.GET("/reservations/:id", r.Get)
	g.PATCH("/reservations/:id", r.Update)
	g.DELETE("/reservations/:id", r.Delete)

	// transitions take an optional {"at": "..."} body
	g.POST("/reservations/:id/check-in", r.CheckIn)
	g.POST("/reservations/:id/check-out", r.CheckOut)
	g.GET("/reservations/:id/bill", r.Bill)

	g.POST("/staff/:id/release", s.Release)
}
