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
	"errors"
	"fmt"
	"strings"

	"github.com/tomoncle/easydao/database"
)

var (
	ErrEntityExists        = errors.New("entity already exists")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrPersistence         = errors.New("persistence error")
	ErrNoPrimaryKey        = errors.New("entity must declare exactly one primary key")
	ErrEntityNotFound      = errors.New("entity not found")
)

// SaveError reports a failed save. It matches both its class (ErrEntityExists,
// ErrConstraintViolation or ErrPersistence) and the driver error with
// errors.Is and errors.As.
type SaveError struct {
	Class    error
	SQLError database.SQLError
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%v (%s): %v", e.Class, e.SQLError, e.Err)
}

func (e *SaveError) Unwrap() []error {
	return []error{e.Class, e.Err}
}

// translateSaveError classifies a failed insert or update of entity.
// Errors the database layer cannot classify are returned unchanged.
func translateSaveError(logger database.Logger, entity string, err error) error {
	ok, kind := database.IsSqlError(err)
	if !ok {
		logger.Error("Unexpected error while saving entity", "entity", entity, "error", err)
		return err
	}

	class := ErrPersistence
	switch {
	case kind == database.DuplicateKeyErr:
		class = ErrEntityExists
	case kind.IsConstraintViolation():
		class = ErrConstraintViolation
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			class = ErrEntityExists
		}
	case kind.IsDataError():
		logger.Error("Inconsistent data while saving entity", "entity", entity, "error", err)
	}

	if class != ErrPersistence {
		logger.Debug("Entity rejected by database", "entity", entity, "reason", class.Error(), "error", err)
	} else if !kind.IsDataError() {
		logger.Error("Persistence error while saving entity", "entity", entity, "kind", kind.String(), "error", err)
	}
	return &SaveError{Class: class, SQLError: kind, Err: err}
}
