package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/service"
)

// StaffHandler exposes on-demand staff release.
type StaffHandler struct {
	staffing *service.StaffingService
	logger   *logrus.Logger
}

// NewStaffHandler creates a new staff handler.
func NewStaffHandler(staffing *service.StaffingService, logger *logrus.Logger) *StaffHandler {
	return &StaffHandler{staffing: staffing, logger: logger}
}

// Release handles POST /v1/staff/:id/release.
func (h *StaffHandler) Release(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	st, err := h.staffing.Release(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": st})
}
