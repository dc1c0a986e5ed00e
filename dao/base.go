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

package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/tomoncle/easydao/database"
	"github.com/tomoncle/easydao/query"
	"github.com/tomoncle/easydao/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// alias used by generated entity queries
const entityAlias = "c"

type baseDaoImpl[E any, ID comparable] struct {
	db     bun.IDB
	exec   *query.Executor
	table  *schema.Table
	name   string
	logger database.Logger
}

// NewDao returns a generic DAO for E backed by db. Options configure the
// underlying query executor; the default logger is named "DAO".
func NewDao[E any, ID comparable](db bun.IDB, opts ...query.Option) Dao[E, ID] {
	opts = append([]query.Option{query.WithLogger(database.NewLogger("DAO"))}, opts...)
	exec := query.NewExecutor(db, opts...)
	return &baseDaoImpl[E, ID]{
		db:     db,
		exec:   exec,
		table:  query.Table[E](db),
		name:   reflect.TypeOf((*E)(nil)).Elem().Name(),
		logger: exec.Logger(),
	}
}

func (d *baseDaoImpl[E, ID]) WithTx(db bun.IDB) Dao[E, ID] {
	c := *d
	c.db = db
	c.exec = d.exec.WithDB(db)
	return &c
}

func (d *baseDaoImpl[E, ID]) EntityName() string { return d.name }

func (d *baseDaoImpl[E, ID]) NamedQuery(name string) (string, bool) {
	return d.exec.Registry().Resolve(new(E), name)
}

func (d *baseDaoImpl[E, ID]) Table() *schema.Table { return d.table }

func (d *baseDaoImpl[E, ID]) DB() bun.IDB { return d.db }

func (d *baseDaoImpl[E, ID]) Dialect() schema.Dialect { return d.db.Dialect() }

func (d *baseDaoImpl[E, ID]) NewSelect() *bun.SelectQuery { return d.db.NewSelect() }

func (d *baseDaoImpl[E, ID]) NewInsert() *bun.InsertQuery { return d.db.NewInsert() }

func (d *baseDaoImpl[E, ID]) NewUpdate() *bun.UpdateQuery { return d.db.NewUpdate() }

func (d *baseDaoImpl[E, ID]) NewDelete() *bun.DeleteQuery { return d.db.NewDelete() }

func (d *baseDaoImpl[E, ID]) primaryKey() (*schema.Field, error) {
	if len(d.table.PKs) != 1 {
		return nil, fmt.Errorf("%w: %s has %d", ErrNoPrimaryKey, d.name, len(d.table.PKs))
	}
	return d.table.PKs[0], nil
}

func (d *baseDaoImpl[E, ID]) Save(ctx context.Context, entity *E) (*E, error) {
	if entity == nil {
		return nil, nil
	}
	pk, err := d.primaryKey()
	if err != nil {
		return nil, err
	}

	merged := new(E)
	*merged = *entity
	if reflect.ValueOf(merged).Elem().FieldByIndex(pk.Index).IsZero() {
		if _, err := d.db.NewInsert().Model(merged).Exec(ctx); err != nil {
			return nil, translateSaveError(d.logger, d.name, err)
		}
		return merged, nil
	}

	// existence decides, not rows affected: mysql counts changed rows only
	err = d.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model(merged).WherePK().Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			_, err = tx.NewUpdate().Model(merged).WherePK().Exec(ctx)
		} else {
			_, err = tx.NewInsert().Model(merged).Exec(ctx)
		}
		return err
	})
	if err != nil {
		return nil, translateSaveError(d.logger, d.name, err)
	}
	return merged, nil
}

func (d *baseDaoImpl[E, ID]) Update(ctx context.Context, entity *E) (*E, error) {
	if entity == nil {
		return nil, nil
	}
	if _, err := d.primaryKey(); err != nil {
		return nil, err
	}
	err := d.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model(entity).WherePK().Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return ErrEntityNotFound
		}
		_, err = tx.NewUpdate().Model(entity).WherePK().Exec(ctx)
		return err
	})
	if errors.Is(err, ErrEntityNotFound) {
		d.logger.Debug("Entity to update not found", "entity", d.name)
		return nil, err
	}
	if err != nil {
		return nil, translateSaveError(d.logger, d.name, err)
	}
	return entity, nil
}

func (d *baseDaoImpl[E, ID]) Delete(ctx context.Context, entity *E) (*E, error) {
	if entity == nil {
		return nil, nil
	}
	if _, err := d.db.NewDelete().Model(entity).WherePK().Exec(ctx); err != nil {
		d.logger.Error("Failed to delete entity", "entity", d.name, "error", err)
		return nil, err
	}
	return entity, nil
}

func (d *baseDaoImpl[E, ID]) DeleteByID(ctx context.Context, id ID) (*E, error) {
	entity, err := d.FindOne(ctx, id)
	if err != nil || entity == nil {
		return nil, err
	}
	return d.Delete(ctx, entity)
}

func (d *baseDaoImpl[E, ID]) FindOne(ctx context.Context, id ID) (*E, error) {
	pk, err := d.primaryKey()
	if err != nil {
		return nil, err
	}
	entity := new(E)
	err = d.db.NewSelect().Model(entity).Where("?TableAlias.? = ?", bun.Ident(pk.Name), id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		d.logger.Debug("Entity not found", "entity", d.name, "id", id)
		return nil, nil
	}
	if err != nil {
		d.logger.Error("Failed to find entity", "entity", d.name, "id", id, "error", err)
		return nil, err
	}
	return entity, nil
}

func (d *baseDaoImpl[E, ID]) FindAll(ctx context.Context) ([]*E, error) {
	return d.FindAllBy(ctx, nil)
}

func (d *baseDaoImpl[E, ID]) FindAllBy(ctx context.Context, params types.Params) ([]*E, error) {
	q, err := d.findAllQuery(params)
	if err != nil {
		d.logger.Debug("Query skipped", "entity", d.name, "reason", err.Error())
		return make([]*E, 0), nil
	}
	return query.List[E](ctx, d.exec, q, types.QueryEntity, params)
}

func (d *baseDaoImpl[E, ID]) FindOneBy(ctx context.Context, params types.Params) (*E, error) {
	if len(params.Keys()) == 0 {
		d.logger.Debug("Query skipped, no parameters set", "entity", d.name)
		return nil, nil
	}
	q, err := d.findAllQuery(params)
	if err != nil {
		d.logger.Debug("Query skipped", "entity", d.name, "reason", err.Error())
		return nil, nil
	}
	return query.One[E](ctx, d.exec, q, types.QueryEntity, params)
}

// findAllQuery builds "FROM <Entity> c WHERE c.col = :key AND ..." for the
// bindable keys of params.
func (d *baseDaoImpl[E, ID]) findAllQuery(params types.Params) (string, error) {
	var b strings.Builder
	b.WriteString("FROM ")
	b.WriteString(d.name)
	b.WriteString(" " + entityAlias)
	for i, key := range params.Keys() {
		column, ok := d.column(key)
		if !ok {
			return "", fmt.Errorf("%s has no column for parameter %q", d.name, key)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s.%s = :%s", entityAlias, column, key)
	}
	return b.String(), nil
}

// column maps a parameter key to a column of the entity table. The key may
// be the column name, the struct field name or its snake_case form.
func (d *baseDaoImpl[E, ID]) column(key string) (string, bool) {
	if f, ok := d.table.FieldMap[key]; ok {
		return string(f.SQLName), true
	}
	snake := strcase.ToSnake(key)
	for _, f := range d.table.Fields {
		if strings.EqualFold(f.GoName, key) || f.Name == snake {
			return string(f.SQLName), true
		}
	}
	return "", false
}

func (d *baseDaoImpl[E, ID]) SaveByQuery(ctx context.Context, q string, params types.Params) (int64, error) {
	return query.Exec[E](ctx, d.exec, q, updateKind(q), params)
}

func (d *baseDaoImpl[E, ID]) SaveByNativeQuery(ctx context.Context, q string, params types.Params) (int64, error) {
	return query.Exec[E](ctx, d.exec, q, types.QueryNative, params)
}

func (d *baseDaoImpl[E, ID]) FindByQuery(ctx context.Context, q string, params types.Params) (*E, error) {
	return query.One[E](ctx, d.exec, q, selectKind(q), params)
}

func (d *baseDaoImpl[E, ID]) FindByNamedQuery(ctx context.Context, name string, params types.Params) (*E, error) {
	return query.One[E](ctx, d.exec, name, types.QueryNamed, params)
}

func (d *baseDaoImpl[E, ID]) FindByNativeQuery(ctx context.Context, q string, params types.Params) (*E, error) {
	return query.One[E](ctx, d.exec, q, types.QueryNative, params)
}

func (d *baseDaoImpl[E, ID]) FindListByQuery(ctx context.Context, q string, params types.Params) ([]*E, error) {
	return query.List[E](ctx, d.exec, q, selectKind(q), params)
}

func (d *baseDaoImpl[E, ID]) FindListByNamedQuery(ctx context.Context, name string, params types.Params) ([]*E, error) {
	return query.List[E](ctx, d.exec, name, types.QueryNamed, params)
}

func (d *baseDaoImpl[E, ID]) FindListByNativeQuery(ctx context.Context, q string, params types.Params) ([]*E, error) {
	return query.List[E](ctx, d.exec, q, types.QueryNative, params)
}

func (d *baseDaoImpl[E, ID]) FindRowsByNativeQuery(ctx context.Context, q string, params types.Params) ([]map[string]any, error) {
	return query.Rows[E](ctx, d.exec, q, types.QueryNative, params)
}

func (d *baseDaoImpl[E, ID]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[E], error) {
	var entities []*E
	q := d.db.NewSelect().Model(&entities)
	if pageRequest.GetFilter() != nil {
		q = q.Where(pageRequest.GetFilter().Schema, pageRequest.GetFilter().Args...)
	}
	pagination := types.NewDefaultPagination[E](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := q.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	err = q.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(pageRequest.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func updateKind(q string) types.QueryKind {
	lq := strings.ToLower(strings.TrimSpace(q))
	if strings.HasPrefix(lq, "insert into ") || strings.HasPrefix(lq, "update ") || strings.HasPrefix(lq, "delete from ") {
		return types.QueryEntity
	}
	return types.QueryNamed
}

func selectKind(q string) types.QueryKind {
	if strings.Contains(strings.ToLower(q), "from ") {
		return types.QueryEntity
	}
	return types.QueryNamed
}
