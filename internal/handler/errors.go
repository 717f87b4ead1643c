package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/repository"
	"github.com/nikolaygtitov/hotel-ops/internal/service"
)

// respondError writes err as {"error": ...} with the status matching its
// type.  Storage and unknown errors are logged and hidden behind a generic
// message.
func respondError(c echo.Context, logger *logrus.Logger, err error) error {
	var (
		ve *service.ValidationError
		ne *service.NotFoundError
		ce *service.ConflictError
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &ne):
		return c.JSON(http.StatusNotFound, echo.Map{"error": ne.Error()})
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, echo.Map{"error": ce.Error()})
	case errors.As(err, &he):
		return c.JSON(he.Code, echo.Map{"error": he.Message})

	// table gateway
	case errors.Is(err, repository.ErrInvalidTable),
		errors.Is(err, repository.ErrInvalidColumn),
		errors.Is(err, repository.ErrEmptyFilter),
		errors.Is(err, repository.ErrCheck):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrForeignKey):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"route":  c.Path(),
	}).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
