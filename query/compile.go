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
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/tomoncle/easydao/types"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/schema"
)

var (
	// ErrNamedQueryNotFound is returned by Compile when no query is
	// registered under the requested name.
	ErrNamedQueryNotFound = errors.New("named query not found")
	// ErrUnboundParameter is returned by Compile when a supplied parameter
	// is not used by the query or a placeholder has no value.
	ErrUnboundParameter = errors.New("query parameter could not be bound")
)

// mysql has no "offset only" form; the manual recommends the largest BIGINT UNSIGNED.
const mysqlNoLimit = "18446744073709551615"

var (
	placeholderRe = regexp.MustCompile(`(?:^|[^:]):([\p{L}\p{N}_.]+)`)
	leadingFromRe = regexp.MustCompile(`(?is)^\s*from\s+[\w.]+(?:\s+(?:as\s+)?([A-Za-z_]\w*))?`)
	selectAliasRe = regexp.MustCompile(`(?is)^(\s*select\s+)([A-Za-z_]\w*)(\s+from\s+[\w.]+\s+(?:as\s+)?([A-Za-z_]\w*))`)

	// spans left alone by rewriting and binding: quoted strings and
	// identifiers, comments and bare question marks
	literalRe = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"|` + "`[^`]*`" + `|--[^\n]*|/\*(?s:.*?)\*/|\?`)
	maskRe    = regexp.MustCompile(`\x00(\d+)\x00`)

	targetPatterns sync.Map // entity type name -> *regexp.Regexp
)

const maskMark = "\x00"

var clauseKeywords = map[string]bool{
	"where": true, "order": true, "group": true, "having": true, "limit": true,
	"offset": true, "join": true, "left": true, "right": true, "inner": true,
	"outer": true, "cross": true, "full": true, "natural": true, "union": true,
	"on": true, "for": true,
}

// Statement is a compiled query ready to run through bun.
type Statement struct {
	Kind   types.QueryKind
	Source string // query text before rewriting; for named queries the registered text
	SQL    string
	Args   []any
	Window types.Window
}

// rewriteEntityQuery turns a query written against entity type names into SQL
// against the table.
//
//	FROM User u WHERE u.name = :name   ->  SELECT u.* FROM "users" u WHERE ...
//	SELECT u FROM User u               ->  SELECT u.* FROM "users" u
//	UPDATE User SET ...                ->  UPDATE "users" SET ...
func rewriteEntityQuery(q string, table *schema.Table) string {
	q, spans := mask(q)
	return unmask(rewriteMasked(q, table), spans, false)
}

func rewriteMasked(q string, table *schema.Table) string {
	if m := leadingFromRe.FindStringSubmatch(q); m != nil {
		alias := m[1]
		if alias != "" && !clauseKeywords[strings.ToLower(alias)] {
			q = "SELECT " + alias + ".* " + strings.TrimLeft(q, " \t\r\n")
		} else {
			q = "SELECT * " + strings.TrimLeft(q, " \t\r\n")
		}
	} else if m := selectAliasRe.FindStringSubmatch(q); m != nil && strings.EqualFold(m[2], m[4]) {
		q = m[1] + m[2] + ".*" + m[3] + q[len(m[0]):]
	}
	if table == nil {
		return q
	}
	sqlName := strings.ReplaceAll(string(table.SQLName), "$", "$$")
	return targetPattern(table.Type.Name()).ReplaceAllString(q, "${1}${2}"+sqlName)
}

func targetPattern(typeName string) *regexp.Regexp {
	if re, ok := targetPatterns.Load(typeName); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)\b(from|update|into|join)(\s+)` + regexp.QuoteMeta(typeName) + `\b`)
	actual, _ := targetPatterns.LoadOrStore(typeName, re)
	return actual.(*regexp.Regexp)
}

// mask replaces every literal span of q with a numbered marker so that
// colons and question marks inside it are not read as placeholders.
func mask(q string) (string, []string) {
	var spans []string
	masked := literalRe.ReplaceAllStringFunc(q, func(span string) string {
		spans = append(spans, span)
		return maskMark + strconv.Itoa(len(spans)-1) + maskMark
	})
	return masked, spans
}

// unmask puts the spans back. With escape set, question marks are written
// as `\?` so bun's formatter keeps them as text.
func unmask(q string, spans []string, escape bool) string {
	if len(spans) == 0 {
		return q
	}
	return maskRe.ReplaceAllStringFunc(q, func(m string) string {
		i, err := strconv.Atoi(strings.Trim(m, maskMark))
		if err != nil || i >= len(spans) {
			return m
		}
		if escape {
			return strings.ReplaceAll(spans[i], "?", `\?`)
		}
		return spans[i]
	})
}

// placeholders returns the distinct ":name" placeholders of q outside quoted
// text and comments. "::" is a literal colon.
func placeholders(q string) map[string]bool {
	masked, _ := mask(q)
	return maskedPlaceholders(masked)
}

func maskedPlaceholders(q string) map[string]bool {
	names := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(q, -1) {
		names[m[1]] = true
	}
	return names
}

// bind replaces ":name" placeholders with positional "?" markers. Every key of
// params must be used by q and every placeholder must have a value. Slice
// values are expanded for IN clauses. Quoted text and comments are not
// scanned, and any question mark they hold is escaped for bun.
func bind(q string, params map[string]any) (string, []any, error) {
	q, spans := mask(q)
	names := maskedPlaceholders(q)
	var unused []string
	for k := range params {
		if !names[k] {
			unused = append(unused, k)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return "", nil, fmt.Errorf("%w: %s not used by the query", ErrUnboundParameter, strings.Join(unused, ", "))
	}
	if len(names) == 0 {
		// bun formats only when args is non-nil, and only then reads `\?`
		return unmask(q, spans, true), []any{}, nil
	}

	// sqlx reads "::" as an escaped colon, so keep casts such as "::int" intact
	escaped := strings.ReplaceAll(q, "::", "::::")
	compiled, args, err := sqlx.Named(escaped, params)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnboundParameter, err)
	}
	compiled, args, err = sqlx.In(compiled, args...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnboundParameter, err)
	}
	return unmask(compiled, spans, true), args, nil
}

// paginate appends LIMIT/OFFSET for the window in the given dialect.
func paginate(name dialect.Name, q string, w types.Window) string {
	if w.MaxResults <= 0 && w.StartPosition <= 0 {
		return q
	}
	var b strings.Builder
	b.WriteString(strings.TrimRight(strings.TrimSpace(q), "; \t\r\n"))
	switch {
	case w.MaxResults > 0:
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(w.MaxResults))
	case name == dialect.MySQL:
		b.WriteString(" LIMIT " + mysqlNoLimit)
	case name == dialect.SQLite:
		b.WriteString(" LIMIT -1")
	}
	if w.StartPosition > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(w.StartPosition))
	}
	return b.String()
}
