package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/handler"
)

// RegisterRoutes registers routes that sit outside /v1.  Currently it
// exposes only the health check.
func RegisterRoutes(e *echo.Echo, store handler.Pinger) {
	// Load balancers poll /healthz; it fails while the database is down.
	e.GET("/healthz", handler.Health(store))
}

// RegisterTables registers list/get/create/update/delete for every
// reference-data collection on g.
func RegisterTables(g *echo.Group, gw handler.TableGateway, logger *logrus.Logger) {
	for _, res := range handler.Resources {
		h := handler.NewTableHandler(gw, res, logger)
		g.GET(res.Path, h.List)
		g.POST(res.Path, h.Create)
		g.GET(res.ItemPath(), h.Get)
		g.PATCH(res.ItemPath(), h.Update)
		g.DELETE(res.ItemPath(), h.Delete)
	}
}
