package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/nikolaygtitov/hotel-ops/internal/service"
)

// RequestValidator adapts validator/v10 to echo.Validator.  Failures come
// back as *service.ValidationError named after the JSON field.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator returns a validator reporting JSON field names.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return &service.ValidationError{Field: "body", Message: err.Error()}
	}
	f := fields[0]
	return &service.ValidationError{Field: f.Field(), Message: describe(f)}
}

func describe(f validator.FieldError) string {
	switch f.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + f.Param()
	case "max", "lte":
		return "must be at most " + f.Param()
	case "gt":
		return "must be greater than " + f.Param()
	}
	return "failed " + f.Tag() + " check"
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return &service.ValidationError{Field: "body", Message: "malformed request body"}
	}
	return c.Validate(req)
}

var _ echo.Validator = (*RequestValidator)(nil)
