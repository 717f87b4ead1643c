package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/repository"
	"github.com/nikolaygtitov/hotel-ops/internal/service"
)

// TableGateway is the CRUD surface TableHandler needs.
// *repository.Gateway implements it.
type TableGateway interface {
	Query(ctx context.Context, table string, filter repository.Row) ([]repository.Row, error)
	Insert(ctx context.Context, table string, fields repository.Row) (int64, error)
	Update(ctx context.Context, table string, set, filter repository.Row) (int64, error)
	Delete(ctx context.Context, table string, filter repository.Row) (int64, error)
}

// TableResource maps a URL collection onto a gateway table.  Keys are the
// key columns, in path order, addressing one row.
type TableResource struct {
	Path  string
	Table string
	Keys  []string
}

// Resources are the reference-data collections served under /v1.
var Resources = []TableResource{
	{Path: "/zips", Table: "zip_to_city_state", Keys: []string{"zip"}},
	{Path: "/hotels", Table: "hotels", Keys: []string{"id"}},
	{Path: "/rooms", Table: "rooms", Keys: []string{"hotel_id", "room_number"}},
	{Path: "/staff", Table: "staff", Keys: []string{"id"}},
	{Path: "/customers", Table: "customers", Keys: []string{"id"}},
	{Path: "/transactions", Table: "transactions", Keys: []string{"id"}},
}

// ItemPath is the route of one row, e.g. /rooms/:hotel_id/:room_number.
func (r TableResource) ItemPath() string {
	p := r.Path
	for _, k := range r.Keys {
		p += "/:" + k
	}
	return p
}

// TableHandler is the generic JSON CRUD handler over the table gateway.
type TableHandler struct {
	gw     TableGateway
	res    TableResource
	logger *logrus.Logger
}

// NewTableHandler creates a handler for one resource.
func NewTableHandler(gw TableGateway, res TableResource, logger *logrus.Logger) *TableHandler {
	return &TableHandler{gw: gw, res: res, logger: logger}
}

func (h *TableHandler) keyFilter(c echo.Context) repository.Row {
	f := repository.Row{}
	for _, k := range h.res.Keys {
		f[k] = c.Param(k)
	}
	return f
}

// decodeRow reads a JSON object body.  Numbers stay json.Number so that
// large ids and cents survive intact.
func decodeRow(c echo.Context) (repository.Row, error) {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	row := repository.Row{}
	if err := dec.Decode(&row); err != nil {
		return nil, &service.ValidationError{Field: "body", Message: "expected a JSON object"}
	}
	for k, v := range row {
		if n, ok := v.(json.Number); ok {
			row[k] = n.String()
		}
	}
	return row, nil
}

// List handles GET <path>.  Every query parameter is an equality filter.
func (h *TableHandler) List(c echo.Context) error {
	filter := repository.Row{}
	for k, vals := range c.QueryParams() {
		if len(vals) > 0 {
			filter[k] = vals[0]
		}
	}
	rows, err := h.gw.Query(c.Request().Context(), h.res.Table, filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return list(c, rows)
}

// Get handles GET <item path>.
func (h *TableHandler) Get(c echo.Context) error {
	return h.one(c, h.keyFilter(c))
}

func (h *TableHandler) one(c echo.Context, filter repository.Row) error {
	rows, err := h.gw.Query(c.Request().Context(), h.res.Table, filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if len(rows) == 0 {
		return respondError(c, h.logger, repository.ErrNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": rows[0]})
}

// Create handles POST <path>.  The response echoes the stored fields plus
// the generated id.
func (h *TableHandler) Create(c echo.Context) error {
	row, err := decodeRow(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := h.gw.Insert(c.Request().Context(), h.res.Table, row)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if id > 0 {
		row["id"] = id
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": row})
}

// Update handles PATCH <item path>.
func (h *TableHandler) Update(c echo.Context) error {
	set, err := decodeRow(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	filter := h.keyFilter(c)
	n, err := h.gw.Update(c.Request().Context(), h.res.Table, set, filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if n == 0 {
		return respondError(c, h.logger, repository.ErrNotFound)
	}
	// the row may have moved to a new key
	for _, k := range h.res.Keys {
		if v, ok := set[k]; ok {
			filter[k] = v
		}
	}
	return h.one(c, filter)
}

// Delete handles DELETE <item path>.  Rows still referenced elsewhere
// answer 409.
func (h *TableHandler) Delete(c echo.Context) error {
	n, err := h.gw.Delete(c.Request().Context(), h.res.Table, h.keyFilter(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if n == 0 {
		return respondError(c, h.logger, repository.ErrNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}
