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

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsSqlError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want SQLError
	}{
		{"no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), NoRowsErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, DuplicateKeyErr},
		{"mysql not null", &mysql.MySQLError{Number: 1048}, NotNullViolationErr},
		{"mysql foreign key", &mysql.MySQLError{Number: 1452}, ForeignKeyViolationErr},
		{"mysql truncated", &mysql.MySQLError{Number: 1406}, DataTruncatedErr},
		{"mysql unknown number", &mysql.MySQLError{Number: 9999}, UnknownErr},
		{"pgx unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, DuplicateKeyErr},
		{"pgx check", &pgconn.PgError{Code: pgerrcode.CheckViolation}, CheckConstraintViolationErr},
		{"pgx undefined table", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: pgerrcode.UndefinedTable}), NoTableErr},
		{"pq not null", &pq.Error{Code: "23502"}, NotNullViolationErr},
		{"pq cast", &pq.Error{Code: "22P02"}, InvalidTypeCastErr},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), DuplicateKeyErr},
		{"sqlite not null", errors.New("NOT NULL constraint failed: notes.body"), NotNullViolationErr},
		{"sqlite no table", errors.New("SQL logic error: no such table: ghosts (1)"), NoTableErr},
		{"sqlite foreign key", errors.New("FOREIGN KEY constraint failed"), ForeignKeyViolationErr},
		{"message sqlstate", errors.New("ERROR: value too long (SQLSTATE 22001)"), DataTruncatedErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is, got := IsSqlError(tc.err)
			assert.True(t, is)
			assert.Equal(t, tc.want, got, got.String())
		})
	}
}

func TestIsSqlErrorUnrecognized(t *testing.T) {
	is, got := IsSqlError(nil)
	assert.False(t, is)
	assert.Equal(t, UnknownErr, got)

	is, got = IsSqlError(errors.New("connection refused"))
	assert.False(t, is)
	assert.Equal(t, UnknownErr, got)
}

func TestSQLErrorClasses(t *testing.T) {
	assert.True(t, NotNullViolationErr.IsConstraintViolation())
	assert.True(t, ForeignKeyViolationErr.IsConstraintViolation())
	assert.True(t, CheckConstraintViolationErr.IsConstraintViolation())
	assert.False(t, DuplicateKeyErr.IsConstraintViolation())

	assert.True(t, DataTruncatedErr.IsDataError())
	assert.True(t, InvalidTypeCastErr.IsDataError())
	assert.False(t, SyntaxErr.IsDataError())

	assert.Equal(t, "duplicate key", DuplicateKeyErr.String())
	assert.Equal(t, "unknown", SQLError(100).String())
}
