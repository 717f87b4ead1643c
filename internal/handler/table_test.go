package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolaygtitov/hotel-ops/internal/repository"
)

// fakeGateway records calls and replays canned results.
type fakeGateway struct {
	rows     []repository.Row
	id       int64
	affected int64
	err      error

	table  string
	filter repository.Row
	fields repository.Row
}

func (f *fakeGateway) Query(_ context.Context, table string, filter repository.Row) ([]repository.Row, error) {
	f.table, f.filter = table, filter
	return f.rows, f.err
}

func (f *fakeGateway) Insert(_ context.Context, table string, fields repository.Row) (int64, error) {
	f.table, f.fields = table, fields
	return f.id, f.err
}

func (f *fakeGateway) Update(_ context.Context, table string, set, filter repository.Row) (int64, error) {
	f.table, f.fields, f.filter = table, set, filter
	return f.affected, f.err
}

func (f *fakeGateway) Delete(_ context.Context, table string, filter repository.Row) (int64, error) {
	f.table, f.filter = table, filter
	return f.affected, f.err
}

func tableAPI(gw TableGateway) *echo.Echo {
	logger, _ := test.NewNullLogger()
	e := echo.New()
	for _, res := range Resources {
		h := NewTableHandler(gw, res, logger)
		e.GET("/v1"+res.Path, h.List)
		e.POST("/v1"+res.Path, h.Create)
		e.GET("/v1"+res.ItemPath(), h.Get)
		e.PATCH("/v1"+res.ItemPath(), h.Update)
		e.DELETE("/v1"+res.ItemPath(), h.Delete)
	}
	return e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestItemPath(t *testing.T) {
	assert.Equal(t, "/rooms/:hotel_id/:room_number", TableResource{Path: "/rooms", Keys: []string{"hotel_id", "room_number"}}.ItemPath())
}

func TestTableHandler_List(t *testing.T) {
	gw := &fakeGateway{rows: []repository.Row{{"id": int64(1), "name": "Sheraton"}}}
	rec := serve(tableAPI(gw), http.MethodGet, "/v1/hotels?zip=27601", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[{"id":1,"name":"Sheraton"}],"count":1}`, rec.Body.String())
	assert.Equal(t, "hotels", gw.table)
	assert.Equal(t, repository.Row{"zip": "27601"}, gw.filter)
}

func TestTableHandler_GetCompositeKey(t *testing.T) {
	gw := &fakeGateway{rows: []repository.Row{{"hotel_id": int64(9), "room_number": int64(100)}}}
	rec := serve(tableAPI(gw), http.MethodGet, "/v1/rooms/9/100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rooms", gw.table)
	assert.Equal(t, repository.Row{"hotel_id": "9", "room_number": "100"}, gw.filter)

	gw.rows = nil
	rec = serve(tableAPI(gw), http.MethodGet, "/v1/rooms/9/404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTableHandler_Create(t *testing.T) {
	gw := &fakeGateway{id: 12}
	rec := serve(tableAPI(gw), http.MethodPost, "/v1/customers", `{"ssn":"123-45-6789","name":"Alice","account_number":null,"is_hotel_card":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "customers", gw.table)
	assert.Equal(t, "1", gw.fields["is_hotel_card"], "numbers reach the gateway as decimal strings")
	assert.Nil(t, gw.fields["account_number"])
	assert.JSONEq(t, `{"item":{"id":12,"ssn":"123-45-6789","name":"Alice","account_number":null,"is_hotel_card":"1"}}`, rec.Body.String())

	rec = serve(tableAPI(gw), http.MethodPost, "/v1/customers", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTableHandler_Update(t *testing.T) {
	gw := &fakeGateway{affected: 1, rows: []repository.Row{{"zip": "27602"}}}
	rec := serve(tableAPI(gw), http.MethodPatch, "/v1/zips/27601", `{"zip":"27602"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repository.Row{"zip": "27602"}, gw.filter, "reloaded under the new key")

	gw.affected = 0
	rec = serve(tableAPI(gw), http.MethodPatch, "/v1/zips/00000", `{"city":"Cary"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTableHandler_Errors(t *testing.T) {
	restricted := fmt.Errorf("%w: %w", repository.ErrForeignKey, &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})
	tests := []struct {
		name   string
		err    error
		method string
		target string
		status int
	}{
		{"unknown column", fmt.Errorf("%w: hotels.owner", repository.ErrInvalidColumn), http.MethodGet, "/v1/hotels?owner=me", http.StatusBadRequest},
		{"restricted delete", restricted, http.MethodDelete, "/v1/hotels/1", http.StatusConflict},
		{"duplicate", repository.ErrConflict, http.MethodPost, "/v1/hotels", http.StatusConflict},
		{"check", repository.ErrCheck, http.MethodPost, "/v1/hotels", http.StatusBadRequest},
		{"driver failure", assert.AnError, http.MethodGet, "/v1/staff", http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(tableAPI(&fakeGateway{err: tc.err}), tc.method, tc.target, `{"name":"x"}`)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	rec := serve(tableAPI(&fakeGateway{}), http.MethodDelete, "/v1/staff/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
