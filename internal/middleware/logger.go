package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request after the handler ran.  Server
// errors log at error level, client errors at warn.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the status before it is logged
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			entry := logger.WithFields(logrus.Fields{
				"status":     status,
				"method":     req.Method,
				"path":       req.URL.Path,
				"route":      c.Path(),
				"query":      req.URL.RawQuery,
				"ip":         c.RealIP(),
				"latency_ms": time.Since(start).Milliseconds(),
				"bytes_out":  c.Response().Size,
			})
			if cache := c.Response().Header().Get("X-Cache"); cache != "" {
				entry = entry.WithField("cache", cache)
			}
			switch {
			case status >= 500:
				if err != nil {
					entry = entry.WithError(err)
				}
				entry.Error("request failed")
			case status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request")
			}
			return nil
		}
	}
}
