package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Row is a column-name to value mapping used by the Gateway.
type Row map[string]any

// TableDef whitelists one table for the Gateway.
type TableDef struct {
	Name    string
	Columns  []string // every selectable column
	ReadOnly []string // columns only the engines write
	AutoID   bool     // id is generated by the database
}

func (d TableDef) has(col string) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// GatewayTables are the tables reachable through the raw CRUD passthrough.
// Reservations are deliberately absent: they only change through the
// reservation engine.
var GatewayTables = map[string]TableDef{
	"zip_to_city_state": {
		Name:    "zip_to_city_state",
		Columns: []string{"zip", "city", "state"},
	},
	"hotels": {
		Name:    "hotels",
		Columns: []string{"id", "name", "street", "zip", "phone_number"},
		AutoID:  true,
	},
	"rooms": {
		Name:    "rooms",
		Columns: []string{"hotel_id", "room_number", "category", "occupancy", "nightly_rate_cents"},
	},
	"staff": {
		Name: "staff",
		Columns: []string{"id", "name", "title", "date_of_birth", "department", "phone_number",
			"street", "zip", "works_for_hotel_id", "assigned_hotel_id", "assigned_room_number"},
		ReadOnly: []string{"assigned_hotel_id", "assigned_room_number"},
		AutoID:   true,
	},
	"customers": {
		Name: "customers",
		Columns: []string{"id", "ssn", "name", "date_of_birth", "phone_number", "email",
			"street", "zip", "account_number", "is_hotel_card"},
		AutoID: true,
	},
	"transactions": {
		Name:    "transactions",
		Columns: []string{"id", "amount_cents", "type", "date", "reservation_id"},
		AutoID:  true,
	},
}

// Gateway is the generic parameterized CRUD surface over whitelisted
// tables.  Table and column names are checked against GatewayTables and
// never interpolated from input otherwise; values are always bound.
type Gateway struct {
	q sqlQueries
}

// NewGateway returns a Gateway bound to db.
func NewGateway(db *sqlx.DB) *Gateway { return &Gateway{q: sqlQueries{x: db}} }

func (d TableDef) readOnly(col string) bool {
	for _, c := range d.ReadOnly {
		if c == col {
			return true
		}
	}
	return false
}

func lookup(table string) (TableDef, error) {
	def, ok := GatewayTables[table]
	if !ok {
		return TableDef{}, fmt.Errorf("%w: %s", ErrInvalidTable, table)
	}
	return def, nil
}

// sortedKeys validates the columns of r and returns them in a stable order
// so that generated SQL is deterministic.
func sortedKeys(def TableDef, r Row) ([]string, error) {
	keys := make([]string, 0, len(r))
	for k := range r {
		if !def.has(k) {
			return nil, fmt.Errorf("%w: %s.%s", ErrInvalidColumn, def.Name, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// writableKeys is sortedKeys for values being stored.  Staff assignments
// follow check-in and check-out, so they are refused here.
func writableKeys(def TableDef, r Row) ([]string, error) {
	keys, err := sortedKeys(def, r)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if def.readOnly(k) {
			return nil, fmt.Errorf("%w: %s.%s is read-only", ErrInvalidColumn, def.Name, k)
		}
	}
	return keys, nil
}

// where renders "a = ? AND b = ?" for filter.  A nil value matches NULL.
func where(keys []string, filter Row) (string, []any) {
	parts := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		if filter[k] == nil {
			parts = append(parts, k+" IS NULL")
			continue
		}
		parts = append(parts, k+" = ?")
		args = append(args, filter[k])
	}
	return strings.Join(parts, " AND "), args
}

// Query returns the rows of table matching every equality in filter.  An
// empty filter returns the whole table.
func (g *Gateway) Query(ctx context.Context, table string, filter Row) ([]Row, error) {
	def, err := lookup(table)
	if err != nil {
		return nil, err
	}
	keys, err := sortedKeys(def, filter)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + strings.Join(def.Columns, ", ") + " FROM " + def.Name
	var args []any
	if len(keys) > 0 {
		var cond string
		cond, args = where(keys, filter)
		query += " WHERE " + cond
	}
	query += " ORDER BY " + def.Columns[0]

	rows, err := g.q.x.QueryxContext(ctx, g.q.x.Rebind(query), args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			return nil, err
		}
		for k, v := range m {
			// MySQL text protocol returns strings as []byte
			if b, ok := v.([]byte); ok {
				m[k] = string(b)
			}
		}
		out = append(out, Row(m))
	}
	return out, rows.Err()
}

// Insert adds one row and returns the generated id, or 0 for tables keyed
// by natural columns.
func (g *Gateway) Insert(ctx context.Context, table string, fields Row) (int64, error) {
	def, err := lookup(table)
	if err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: no fields to insert", ErrInvalidColumn)
	}
	keys, err := writableKeys(def, fields)
	if err != nil {
		return 0, err
	}
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		args = append(args, fields[k])
	}
	query := "INSERT INTO " + def.Name + " (" + strings.Join(keys, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ") + ")"
	if def.AutoID && fields["id"] == nil {
		return g.q.insertID(ctx, query, args...)
	}
	_, err = g.q.exec(ctx, query, args...)
	return 0, err
}

// Update sets the columns in set on the rows matching filter and returns
// the number of affected rows.  An empty filter is refused.
func (g *Gateway) Update(ctx context.Context, table string, set, filter Row) (int64, error) {
	def, err := lookup(table)
	if err != nil {
		return 0, err
	}
	if len(filter) == 0 {
		return 0, ErrEmptyFilter
	}
	if len(set) == 0 {
		return 0, fmt.Errorf("%w: no fields to update", ErrInvalidColumn)
	}
	setKeys, err := writableKeys(def, set)
	if err != nil {
		return 0, err
	}
	filterKeys, err := sortedKeys(def, filter)
	if err != nil {
		return 0, err
	}
	assign := make([]string, 0, len(setKeys))
	args := make([]any, 0, len(setKeys)+len(filterKeys))
	for _, k := range setKeys {
		assign = append(assign, k+" = ?")
		args = append(args, set[k])
	}
	cond, condArgs := where(filterKeys, filter)
	args = append(args, condArgs...)
	query := "UPDATE " + def.Name + " SET " + strings.Join(assign, ", ") + " WHERE " + cond
	return g.q.exec(ctx, query, args...)
}

// Delete removes the rows matching filter and returns how many were
// removed.  An empty filter is refused.
func (g *Gateway) Delete(ctx context.Context, table string, filter Row) (int64, error) {
	def, err := lookup(table)
	if err != nil {
		return 0, err
	}
	if len(filter) == 0 {
		return 0, ErrEmptyFilter
	}
	keys, err := sortedKeys(def, filter)
	if err != nil {
		return 0, err
	}
	cond, args := where(keys, filter)
	return g.q.exec(ctx, "DELETE FROM "+def.Name+" WHERE "+cond, args...)
}
