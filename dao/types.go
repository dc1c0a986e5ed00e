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

	"github.com/tomoncle/easydao/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudDao defines save, delete and lookup operations for one entity type.
type CrudDao[E any, ID comparable] interface {
	// Save merges entity: a zero primary key inserts, otherwise the row with
	// that key is updated, or inserted when none exists. The merged copy is
	// returned and entity itself is left untouched. A nil entity returns nil.
	Save(ctx context.Context, entity *E) (*E, error)

	// Update overwrites the row with entity's primary key and returns entity.
	// It fails with ErrEntityNotFound when no such row exists. A nil entity
	// returns nil.
	Update(ctx context.Context, entity *E) (*E, error)

	// Delete removes entity by primary key and returns it.
	Delete(ctx context.Context, entity *E) (*E, error)

	// DeleteByID loads the entity with the given key and deletes it. It
	// returns nil when no such entity exists.
	DeleteByID(ctx context.Context, id ID) (*E, error)

	// FindOne returns the entity with the given key, or nil.
	FindOne(ctx context.Context, id ID) (*E, error)

	FindAll(ctx context.Context) ([]*E, error)

	// FindAllBy returns entities whose columns equal the given parameters.
	// Keys name a column or a struct field.
	FindAllBy(ctx context.Context, params types.Params) ([]*E, error)

	// FindOneBy is FindAllBy for a single entity. No parameters, no match and
	// several matches all return nil.
	FindOneBy(ctx context.Context, params types.Params) (*E, error)
}

// QueryDao runs registered, entity and native queries. Queries that cannot be
// bound are not executed and yield an empty result.
type QueryDao[E any] interface {
	// SaveByQuery runs an INSERT INTO, UPDATE or DELETE FROM entity query;
	// any other text is taken as the name of a registered query.
	SaveByQuery(ctx context.Context, query string, params types.Params) (int64, error)
	SaveByNativeQuery(ctx context.Context, query string, params types.Params) (int64, error)

	// FindByQuery runs query as an entity query when it contains "from ",
	// otherwise as a registered query.
	FindByQuery(ctx context.Context, query string, params types.Params) (*E, error)
	FindByNamedQuery(ctx context.Context, name string, params types.Params) (*E, error)
	FindByNativeQuery(ctx context.Context, query string, params types.Params) (*E, error)

	FindListByQuery(ctx context.Context, query string, params types.Params) ([]*E, error)
	FindListByNamedQuery(ctx context.Context, name string, params types.Params) ([]*E, error)
	FindListByNativeQuery(ctx context.Context, query string, params types.Params) ([]*E, error)

	// FindRowsByNativeQuery returns native rows as column maps.
	FindRowsByNativeQuery(ctx context.Context, query string, params types.Params) ([]map[string]any, error)
}

// PageQueryDao defines pagination functionality for listing entities.
type PageQueryDao[E any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[E], error)
}

// Dao combines CRUD, query and pagination operations and exposes Bun query
// builders for advanced use cases.
type Dao[E any, ID comparable] interface {
	CrudDao[E, ID]
	QueryDao[E]
	PageQueryDao[E]

	// WithTx returns a Dao bound to db, usually a bun.Tx.
	WithTx(db bun.IDB) Dao[E, ID]

	// NamedQuery returns the query text registered for E under name.
	NamedQuery(name string) (string, bool)

	// EntityName is the Go type name used in entity queries, e.g. "User".
	EntityName() string
	Table() *schema.Table
	DB() bun.IDB
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
