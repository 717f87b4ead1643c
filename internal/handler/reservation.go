package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/service"
)

// ReservationHandler exposes the reservation engine and billing over
// /v1/reservations.
type ReservationHandler struct {
	reservations *service.ReservationService
	billing      *service.BillingService
	logger       *logrus.Logger
}

// NewReservationHandler constructs a ReservationHandler and panics if a
// service is nil.
func NewReservationHandler(reservations *service.ReservationService, billing *service.BillingService, logger *logrus.Logger) *ReservationHandler {
	if reservations == nil || billing == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{reservations: reservations, billing: billing, logger: logger}
}

// transitionRequest is the optional body of check-in and check-out.  An
// empty At means now.
type transitionRequest struct {
	At string `json:"at"`
}

// Create handles POST /v1/reservations.  It returns 201 with the stored
// reservation and the side effects that ran with it.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req service.CreateReservationRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	res, err := h.reservations.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	r, err := h.reservations.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": r})
}

// Update handles PATCH /v1/reservations/:id.  Setting check_in_time or
// check_out_time for the first time runs the matching transition.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req service.UpdateReservationRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	res, err := h.reservations.Update(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.reservations.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckIn handles POST /v1/reservations/:id/check-in.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	return h.transition(c, "check_in_time", h.reservations.CheckIn)
}

// CheckOut handles POST /v1/reservations/:id/check-out.  Repeating it
// never bills twice.
func (h *ReservationHandler) CheckOut(c echo.Context) error {
	return h.transition(c, "check_out_time", h.reservations.CheckOut)
}

type transitionFunc func(ctx context.Context, id int64, at time.Time) (*service.ReservationResult, error)

func (h *ReservationHandler) transition(c echo.Context, field string, run transitionFunc) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req transitionRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	at := time.Now().UTC()
	if req.At != "" {
		if at, err = service.ParseDateTime(field, req.At); err != nil {
			return respondError(c, h.logger, err)
		}
	}
	res, err := run(c.Request().Context(), id, at)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Bill handles GET /v1/reservations/:id/bill.
func (h *ReservationHandler) Bill(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	bill, err := h.billing.GenerateBill(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, bill)
}
