package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nikolaygtitov/hotel-ops/internal/service"
)

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter; absent is 0.
func queryID(c echo.Context, name string) (int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// queryDate parses a YYYY-MM-DD query parameter.  An absent parameter is
// def, or an error when def is zero.
func queryDate(c echo.Context, name string, def time.Time) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		if def.IsZero() {
			return time.Time{}, &service.ValidationError{Field: name, Message: "is required"}
		}
		return def, nil
	}
	return service.ParseDate(name, raw)
}

func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
