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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/easydao/types"
	"github.com/uptrace/bun/dialect"
)

func TestRewriteEntityQuery(t *testing.T) {
	db := newTestDB(t)
	table := Table[Widget](db)

	cases := []struct {
		in, want string
	}{
		{"FROM Widget w WHERE w.name = :name", `SELECT w.* FROM "widgets" w WHERE w.name = :name`},
		{"  from Widget as w", `SELECT w.* from "widgets" as w`},
		{"FROM Widget WHERE size > 1", `SELECT * FROM "widgets" WHERE size > 1`},
		{"FROM Widget", `SELECT * FROM "widgets"`},
		{"SELECT w FROM Widget w ORDER BY w.id", `SELECT w.* FROM "widgets" w ORDER BY w.id`},
		{"SELECT count(*) FROM Widget w", `SELECT count(*) FROM "widgets" w`},
		{"UPDATE Widget SET size = :size", `UPDATE "widgets" SET size = :size`},
		{"DELETE FROM Widget WHERE id = :id", `DELETE FROM "widgets" WHERE id = :id`},
		{"INSERT INTO Widget (name) VALUES (:name)", `INSERT INTO "widgets" (name) VALUES (:name)`},
		{"SELECT * FROM widgets", "SELECT * FROM widgets"},
		{"FROM WidgetPart p", "SELECT p.* FROM WidgetPart p"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, rewriteEntityQuery(tc.in, table), tc.in)
	}
}

func TestBind(t *testing.T) {
	q, args, err := bind("SELECT * FROM t WHERE a = :a AND b IN (:b)", map[string]any{
		"a": 1,
		"b": []int{2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = ? AND b IN (?, ?)", q)
	assert.Equal(t, []any{1, 2, 3}, args)

	q, args, err = bind("SELECT a::int FROM t WHERE b = :b", map[string]any{"b": "x"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT a::int FROM t WHERE b = ?", q)
	assert.Equal(t, []any{"x"}, args)

	q, args, err = bind("SELECT * FROM t", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t", q)
	assert.Empty(t, args)
}

func TestBindRejectsUnusedAndMissingParameters(t *testing.T) {
	_, _, err := bind("SELECT * FROM t WHERE a = :a", map[string]any{"a": 1, "b": 2})
	assert.ErrorIs(t, err, ErrUnboundParameter)

	_, _, err = bind("SELECT * FROM t WHERE a = :a AND b = :b", map[string]any{"a": 1})
	assert.ErrorIs(t, err, ErrUnboundParameter)

	_, _, err = bind("SELECT * FROM t", map[string]any{"a": 1})
	assert.ErrorIs(t, err, ErrUnboundParameter)

	_, _, err = bind("SELECT * FROM t WHERE a IN (:a)", map[string]any{"a": []int{}})
	assert.ErrorIs(t, err, ErrUnboundParameter)
}

func TestPlaceholders(t *testing.T) {
	names := placeholders(":a, x::text, (:b.c), :a")
	assert.Equal(t, map[string]bool{"a": true, "b.c": true}, names)
}

func TestQuotedTextIsNotBound(t *testing.T) {
	q, args, err := bind("SELECT name, '10:00:00' AS at FROM t", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT name, '10:00:00' AS at FROM t", q)
	assert.Empty(t, args)

	q, args, err = bind("SELECT 'why?' AS q FROM t WHERE a = :a -- :b?\n", map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'why\\?' AS q FROM t WHERE a = ? -- :b\\?\n", q)
	assert.Equal(t, []any{1}, args)

	q, _, err = bind(`SELECT "col:y", 'it''s :a' FROM t /* :z? */ WHERE a = :a`, map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "col:y", 'it''s :a' FROM t /* :z\? */ WHERE a = ?`, q)

	names := placeholders(`SELECT ':x', "col:y", `+"`w:v`"+` FROM t /* :z */ WHERE a = :a AND b = 'it''s :c'`)
	assert.Equal(t, map[string]bool{"a": true}, names)

	table := Table[Widget](newTestDB(t))
	assert.Equal(t, `SELECT w.* FROM "widgets" w WHERE w.name <> 'from Widget' AND w.size = :size`,
		rewriteEntityQuery("FROM Widget w WHERE w.name <> 'from Widget' AND w.size = :size", table))
}

func TestPaginate(t *testing.T) {
	const q = "SELECT * FROM t;"
	assert.Equal(t, q, paginate(dialect.SQLite, q, types.Window{}))
	assert.Equal(t, "SELECT * FROM t LIMIT 10", paginate(dialect.PG, q, types.Window{MaxResults: 10}))
	assert.Equal(t, "SELECT * FROM t LIMIT 10 OFFSET 20", paginate(dialect.MySQL, q, types.Window{MaxResults: 10, StartPosition: 20}))
	assert.Equal(t, "SELECT * FROM t LIMIT -1 OFFSET 5", paginate(dialect.SQLite, q, types.Window{StartPosition: 5}))
	assert.Equal(t, "SELECT * FROM t LIMIT "+mysqlNoLimit+" OFFSET 5", paginate(dialect.MySQL, q, types.Window{StartPosition: 5}))
	assert.Equal(t, "SELECT * FROM t OFFSET 5", paginate(dialect.PG, q, types.Window{StartPosition: 5}))
}
