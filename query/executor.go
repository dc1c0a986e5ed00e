/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/tomoncle/easydao/database"
	"github.com/tomoncle/easydao/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Executor compiles named, entity and native queries and runs them on a bun
// connection or transaction.
type Executor struct {
	db       bun.IDB
	registry *database.NamedQueryRegistry
	logger   database.Logger
}

type Option func(*Executor)

// WithRegistry resolves named queries from r instead of the process-wide
// registry.
func WithRegistry(r *database.NamedQueryRegistry) Option {
	return func(e *Executor) { e.registry = r }
}

func WithLogger(l database.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor returns an Executor running on db.
func NewExecutor(db bun.IDB, opts ...Option) *Executor {
	e := &Executor{db: db, registry: database.DefaultNamedQueries()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = database.NewLogger("QUERY")
	}
	return e
}

// DB returns the connection or transaction the executor runs on.
func (e *Executor) DB() bun.IDB { return e.db }

// WithDB returns a copy of e running on db, typically a bun.Tx.
func (e *Executor) WithDB(db bun.IDB) *Executor {
	c := *e
	c.db = db
	return &c
}

func (e *Executor) Registry() *database.NamedQueryRegistry { return e.registry }

func (e *Executor) Logger() database.Logger { return e.logger }

// Table returns bun's metadata for the struct type E.
func Table[E any](db bun.IDB) *schema.Table {
	return db.Dialect().Tables().Get(reflect.TypeOf((*E)(nil)).Elem())
}

// Compile resolves and binds q. table describes the entity the query is
// about and may be nil for native queries. The returned error wraps
// ErrNamedQueryNotFound or ErrUnboundParameter when the query must not run.
func (e *Executor) Compile(table *schema.Table, q string, kind types.QueryKind, params types.Params) (*Statement, error) {
	bindParams, window, err := params.Split()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnboundParameter, err)
	}

	stmt := &Statement{Kind: kind, Source: q, Window: window}
	text := q
	switch kind {
	case types.QueryNamed:
		var model any
		if table != nil {
			model = reflect.New(table.Type).Interface()
		}
		resolved, ok := e.registry.Resolve(model, q)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNamedQueryNotFound, q)
		}
		stmt.Source = resolved
		text = rewriteEntityQuery(resolved, table)
	case types.QueryEntity:
		text = rewriteEntityQuery(q, table)
	case types.QueryNative:
	default:
		return nil, fmt.Errorf("unsupported query kind: %d", kind)
	}

	stmt.SQL, stmt.Args, err = bind(text, bindParams)
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

// compileSelect compiles q and applies the pagination window. A nil
// statement with a nil error means the query was skipped.
func (e *Executor) compileSelect(table *schema.Table, q string, kind types.QueryKind, params types.Params, single bool) (*Statement, error) {
	stmt, err := e.Compile(table, q, kind, params)
	if err != nil {
		return nil, e.skip(q, kind, err)
	}
	window := stmt.Window
	if single && window.MaxResults == 0 {
		// two rows are enough to tell a unique result from a non-unique one
		window.MaxResults = 2
	}
	stmt.SQL = paginate(e.db.Dialect().Name(), stmt.SQL, window)
	return stmt, nil
}

// skip logs why a query was not run. Lookup and binding failures yield an
// empty result; anything else is returned.
func (e *Executor) skip(q string, kind types.QueryKind, err error) error {
	switch {
	case errors.Is(err, ErrNamedQueryNotFound):
		e.logger.Error("Named query is not registered", "name", q)
		return nil
	case errors.Is(err, ErrUnboundParameter):
		e.logger.Debug("Query skipped, parameters could not be bound", "kind", kind.String(), "query", q, "reason", err.Error())
		return nil
	}
	return err
}

func (e *Executor) failed(stmt *Statement, err error) error {
	e.logger.Error("Query execution failed", "kind", stmt.Kind.String(), "sql", stmt.SQL, "error", err)
	return err
}

// List runs a select query and scans every row into E. Lookup and binding
// failures return an empty list.
func List[E any](ctx context.Context, e *Executor, q string, kind types.QueryKind, params types.Params) ([]*E, error) {
	items := make([]*E, 0)
	stmt, err := e.compileSelect(Table[E](e.db), q, kind, params, false)
	if stmt == nil {
		return items, err
	}
	if err := e.db.NewRaw(stmt.SQL, stmt.Args...).Scan(ctx, &items); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return items, e.failed(stmt, err)
	}
	return items, nil
}

// One runs a select query expected to match a single row. No row and more
// than one row both return nil; the latter is logged as an error.
func One[E any](ctx context.Context, e *Executor, q string, kind types.QueryKind, params types.Params) (*E, error) {
	stmt, err := e.compileSelect(Table[E](e.db), q, kind, params, true)
	if stmt == nil {
		return nil, err
	}
	var items []*E
	if err := e.db.NewRaw(stmt.SQL, stmt.Args...).Scan(ctx, &items); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, e.failed(stmt, err)
	}
	switch len(items) {
	case 0:
		e.logger.Debug("No entity found for query", "query", q)
		return nil, nil
	case 1:
		return items[0], nil
	default:
		e.logger.Error("Query did not return a unique result", "query", q, "rows", len(items))
		return nil, nil
	}
}

// Rows runs a select query and returns each row as a column map. It serves
// native queries whose columns do not map onto E.
func Rows[E any](ctx context.Context, e *Executor, q string, kind types.QueryKind, params types.Params) ([]map[string]any, error) {
	rows := make([]map[string]any, 0)
	var table *schema.Table
	if kind != types.QueryNative {
		table = Table[E](e.db)
	}
	stmt, err := e.compileSelect(table, q, kind, params, false)
	if stmt == nil {
		return rows, err
	}
	if err := e.db.NewRaw(stmt.SQL, stmt.Args...).Scan(ctx, &rows); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return rows, e.failed(stmt, err)
	}
	return rows, nil
}

// Exec runs an insert, update or delete statement and returns the number of
// affected rows, or -1 when the statement was skipped.
func Exec[E any](ctx context.Context, e *Executor, q string, kind types.QueryKind, params types.Params) (int64, error) {
	stmt, err := e.Compile(Table[E](e.db), q, kind, params)
	if err != nil {
		return -1, e.skip(q, kind, err)
	}
	if stmt.Window != (types.Window{}) {
		e.logger.Debug("Pagination ignored for update statement", "query", strings.TrimSpace(q))
	}
	res, err := e.db.NewRaw(stmt.SQL, stmt.Args...).Exec(ctx)
	if err != nil {
		return -1, e.failed(stmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return -1, e.failed(stmt, err)
	}
	return n, nil
}
