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

package easydao

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomoncle/easydao/dao"
	"github.com/tomoncle/easydao/database"
	"github.com/tomoncle/easydao/types"
	"github.com/tomoncle/easydao/uniquekey"
	"github.com/uptrace/bun"
)

// Names of the registered queries a Service looks for, prefixed with the
// entity name ("User.findByUK").
const (
	QueryFindAll  = "findAll"
	QueryFindList = "findList"
	QueryFindByID = "findById"
	QueryFindByUK = "findByUK"
	QueryDelete   = "delete"
)

// ErrInvalidParams wraps the Params.Check status that stopped an operation.
var ErrInvalidParams = errors.New("invalid parameters")

type Service[E any, ID comparable] interface {
	// Save merges entity and reports the outcome. On success the generated
	// identifier is copied back onto entity.
	Save(ctx context.Context, entity *E) types.Status

	// Update overwrites the stored entity with the same key. It reports
	// StatusEntityNotFound when there is none.
	Update(ctx context.Context, entity *E) types.Status

	// Delete removes entity and returns it.
	Delete(ctx context.Context, entity *E) (*E, error)

	// DeleteByID removes the entity with the given key, returning nil when
	// there is none.
	DeleteByID(ctx context.Context, id ID) (*E, error)

	// Remove runs the registered "<Entity>.delete" query. Without parameters
	// nothing is run and 0 is returned. Parameters failing Params.Check are
	// rejected with an ErrInvalidParams error.
	Remove(ctx context.Context, params types.Params) (int64, error)

	// FindOne returns the entity with the given key.
	FindOne(ctx context.Context, id ID) (*E, error)

	// FindByID runs the registered "<Entity>.findById" query.
	FindByID(ctx context.Context, params types.Params) (*E, error)

	// FindByUK looks entity up by its unique key, read from entity through the
	// predicates of the registered "<Entity>.findByUK" query. Without one, the
	// set columns tagged unique are matched instead.
	FindByUK(ctx context.Context, entity *E) (*E, error)

	// FindByUKParams runs "<Entity>.findByUK" with params, or matches params
	// against columns when no such query is registered.
	FindByUKParams(ctx context.Context, params types.Params) (*E, error)

	// FindAll prefers the registered "<Entity>.findAll" query.
	FindAll(ctx context.Context) ([]*E, error)

	// FindAllBy prefers the registered "<Entity>.findList" query and matches
	// params against columns otherwise.
	FindAllBy(ctx context.Context, params types.Params) ([]*E, error)

	// FindList runs the query registered under nameOrQuery, or nameOrQuery
	// itself as an entity query.
	FindList(ctx context.Context, nameOrQuery string, params types.Params) ([]*E, error)

	FindByQuery(ctx context.Context, query string, params types.Params) (*E, error)
	FindByNativeQuery(ctx context.Context, query string, params types.Params) (*E, error)
	FindListByQuery(ctx context.Context, query string, params types.Params) ([]*E, error)
	FindListByNativeQuery(ctx context.Context, query string, params types.Params) ([]*E, error)
	FindRowsByNativeQuery(ctx context.Context, query string, params types.Params) ([]map[string]any, error)
	SaveByQuery(ctx context.Context, query string, params types.Params) (int64, error)
	SaveByNativeQuery(ctx context.Context, query string, params types.Params) (int64, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[E], error)

	// WithTx returns a Service running on db, usually a bun.Tx.
	WithTx(db bun.IDB) Service[E, ID]

	// Dao exposes the underlying DAO and its Bun query builders.
	Dao() dao.Dao[E, ID]
}

type baseServiceImpl[E any, ID comparable] struct {
	dao    dao.Dao[E, ID]
	once   sync.Once
	logger database.Logger
}

// NewService returns a default Service implementation using the generic
// DAO backed by the global database connection. The DAO is created on first
// use, so the service may be built before InitDB runs.
func NewService[E any, ID comparable]() Service[E, ID] {
	return &baseServiceImpl[E, ID]{logger: database.NewLogger("SERVICE")}
}

// NewServiceWithDao returns a Service over d.
func NewServiceWithDao[E any, ID comparable](d dao.Dao[E, ID]) Service[E, ID] {
	s := &baseServiceImpl[E, ID]{dao: d, logger: database.NewLogger("SERVICE")}
	s.once.Do(func() {})
	return s
}

func (s *baseServiceImpl[E, ID]) baseDao() dao.Dao[E, ID] {
	s.once.Do(func() { s.dao = dao.NewDao[E, ID](database.GetDB()) })
	return s.dao
}

func (s *baseServiceImpl[E, ID]) Dao() dao.Dao[E, ID] { return s.baseDao() }

func (s *baseServiceImpl[E, ID]) WithTx(db bun.IDB) Service[E, ID] {
	return NewServiceWithDao[E, ID](s.baseDao().WithTx(db))
}

// queryName returns "<Entity>.<name>".
func (s *baseServiceImpl[E, ID]) queryName(name string) string {
	return s.baseDao().EntityName() + "." + name
}

func (s *baseServiceImpl[E, ID]) Save(ctx context.Context, entity *E) types.Status {
	if entity == nil {
		return types.StatusEntityNull
	}
	merged, err := s.baseDao().Save(ctx, entity)
	switch {
	case err == nil:
	case errors.Is(err, dao.ErrEntityExists):
		return types.StatusErrorExists
	case errors.Is(err, dao.ErrConstraintViolation):
		return types.StatusErrorConstraintViolation
	default:
		s.logger.Error("Failed to save entity", "entity", s.baseDao().EntityName(), "error", err)
		return types.StatusError
	}
	copyIdentifier(entity, merged, s.baseDao().Table())
	return types.StatusSuccess
}

func (s *baseServiceImpl[E, ID]) Update(ctx context.Context, entity *E) types.Status {
	if entity == nil {
		return types.StatusEntityNull
	}
	_, err := s.baseDao().Update(ctx, entity)
	switch {
	case err == nil:
		return types.StatusSuccess
	case errors.Is(err, dao.ErrEntityNotFound):
		return types.StatusEntityNotFound
	case errors.Is(err, dao.ErrEntityExists):
		return types.StatusErrorExists
	case errors.Is(err, dao.ErrConstraintViolation):
		return types.StatusErrorConstraintViolation
	default:
		s.logger.Error("Failed to update entity", "entity", s.baseDao().EntityName(), "error", err)
		return types.StatusError
	}
}

func (s *baseServiceImpl[E, ID]) Delete(ctx context.Context, entity *E) (*E, error) {
	return s.baseDao().Delete(ctx, entity)
}

func (s *baseServiceImpl[E, ID]) DeleteByID(ctx context.Context, id ID) (*E, error) {
	return s.baseDao().DeleteByID(ctx, id)
}

func (s *baseServiceImpl[E, ID]) Remove(ctx context.Context, params types.Params) (int64, error) {
	switch status := params.Check(); status {
	case types.StatusSuccess:
	case types.StatusNoParamsSet:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidParams, status)
	}
	return s.baseDao().SaveByQuery(ctx, s.queryName(QueryDelete), params)
}

func (s *baseServiceImpl[E, ID]) FindOne(ctx context.Context, id ID) (*E, error) {
	return s.baseDao().FindOne(ctx, id)
}

func (s *baseServiceImpl[E, ID]) FindByID(ctx context.Context, params types.Params) (*E, error) {
	return s.baseDao().FindByNamedQuery(ctx, s.queryName(QueryFindByID), params)
}

func (s *baseServiceImpl[E, ID]) FindByUK(ctx context.Context, entity *E) (*E, error) {
	if entity == nil {
		return nil, nil
	}
	name := s.queryName(QueryFindByUK)
	if q, ok := s.baseDao().NamedQuery(name); ok {
		return s.baseDao().FindByNamedQuery(ctx, name, uniquekey.Params(q, entity))
	}
	params := uniquekey.Columns(s.baseDao().Table(), entity)
	if len(params) == 0 {
		s.logger.Warn("No unique key query registered and no unique column set", "query", name)
		return nil, nil
	}
	return s.baseDao().FindOneBy(ctx, params)
}

func (s *baseServiceImpl[E, ID]) FindByUKParams(ctx context.Context, params types.Params) (*E, error) {
	name := s.queryName(QueryFindByUK)
	if _, ok := s.baseDao().NamedQuery(name); ok {
		return s.baseDao().FindByNamedQuery(ctx, name, params)
	}
	return s.baseDao().FindOneBy(ctx, params)
}

func (s *baseServiceImpl[E, ID]) FindAll(ctx context.Context) ([]*E, error) {
	name := s.queryName(QueryFindAll)
	if _, ok := s.baseDao().NamedQuery(name); ok {
		return s.baseDao().FindListByNamedQuery(ctx, name, nil)
	}
	return s.baseDao().FindAll(ctx)
}

func (s *baseServiceImpl[E, ID]) FindAllBy(ctx context.Context, params types.Params) ([]*E, error) {
	name := s.queryName(QueryFindList)
	if _, ok := s.baseDao().NamedQuery(name); ok {
		return s.baseDao().FindListByNamedQuery(ctx, name, params)
	}
	return s.baseDao().FindAllBy(ctx, params)
}

func (s *baseServiceImpl[E, ID]) FindList(ctx context.Context, nameOrQuery string, params types.Params) ([]*E, error) {
	if _, ok := s.baseDao().NamedQuery(nameOrQuery); ok {
		return s.baseDao().FindListByNamedQuery(ctx, nameOrQuery, params)
	}
	return s.baseDao().FindListByQuery(ctx, nameOrQuery, params)
}

func (s *baseServiceImpl[E, ID]) FindByQuery(ctx context.Context, query string, params types.Params) (*E, error) {
	return s.baseDao().FindByQuery(ctx, query, params)
}

func (s *baseServiceImpl[E, ID]) FindByNativeQuery(ctx context.Context, query string, params types.Params) (*E, error) {
	return s.baseDao().FindByNativeQuery(ctx, query, params)
}

func (s *baseServiceImpl[E, ID]) FindListByQuery(ctx context.Context, query string, params types.Params) ([]*E, error) {
	return s.baseDao().FindListByQuery(ctx, query, params)
}

func (s *baseServiceImpl[E, ID]) FindListByNativeQuery(ctx context.Context, query string, params types.Params) ([]*E, error) {
	return s.baseDao().FindListByNativeQuery(ctx, query, params)
}

func (s *baseServiceImpl[E, ID]) FindRowsByNativeQuery(ctx context.Context, query string, params types.Params) ([]map[string]any, error) {
	return s.baseDao().FindRowsByNativeQuery(ctx, query, params)
}

func (s *baseServiceImpl[E, ID]) SaveByQuery(ctx context.Context, query string, params types.Params) (int64, error) {
	return s.baseDao().SaveByQuery(ctx, query, params)
}

func (s *baseServiceImpl[E, ID]) SaveByNativeQuery(ctx context.Context, query string, params types.Params) (int64, error) {
	return s.baseDao().SaveByNativeQuery(ctx, query, params)
}

func (s *baseServiceImpl[E, ID]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[E], error) {
	return s.baseDao().Page(ctx, page)
}
