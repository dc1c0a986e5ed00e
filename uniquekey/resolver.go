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

// Package uniquekey derives the parameters of a find-by-unique-key query from
// an entity value. Every "path = :param" predicate of the query is resolved
// against the entity through getters, fields or bun column names. Columns
// reads the unique-tagged columns instead when no query is registered.
package uniquekey

import (
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/tomoncle/easydao/types"
)

// Params returns the parameters for the "lhs = :param" predicates of query,
// read from entity. Predicates whose path cannot be resolved are left out.
func Params(query string, entity any) types.Params {
	params := types.Params{}
	if entity == nil {
		return params
	}
	for _, p := range Predicates(query) {
		if v, ok := Resolve(entity, p.Path); ok {
			params[p.Param] = v
		}
	}
	return params
}

// Resolve walks the dotted path over entity. Segments before the first one
// that matches are skipped, so a leading query alias such as "c." is
// ignored. Once a segment has matched, every later segment must match too.
func Resolve(entity any, path string) (any, bool) {
	cur := reflect.ValueOf(entity)
	if !cur.IsValid() {
		return nil, false
	}
	started := false
	for _, seg := range strings.Split(path, ".") {
		seg = strings.TrimSpace(seg)
		next, ok := reflect.Value{}, false
		if seg != "" {
			next, ok = step(cur, seg)
		}
		if !ok {
			if started {
				return nil, false
			}
			continue
		}
		started = true
		cur = next
	}
	if !started || !cur.CanInterface() {
		return nil, false
	}
	return cur.Interface(), true
}

// step resolves one path segment on v: a Get<Name> method, a <Name> method,
// an exported <Name> field, then a field whose bun column or snake_case name
// is the segment.
func step(v reflect.Value, seg string) (reflect.Value, bool) {
	names := accessorNames(seg)

	recv := v
	if recv.Kind() != reflect.Ptr && recv.CanAddr() {
		recv = recv.Addr()
	}
	for _, prefix := range []string{"Get", ""} {
		for _, name := range names {
			if out, ok := callGetter(recv, prefix+name); ok {
				return out, true
			}
		}
	}

	s := indirect(v)
	if s.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	t := s.Type()
	for _, name := range names {
		if f, ok := t.FieldByName(name); ok && f.IsExported() {
			return s.FieldByIndex(f.Index), true
		}
	}
	snake := strcase.ToSnake(seg)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if column(f) == seg || strcase.ToSnake(f.Name) == snake {
			return s.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func accessorNames(seg string) []string {
	camel := strcase.ToCamel(seg)
	names := []string{camel}
	if strings.HasSuffix(camel, "Id") {
		names = append(names, strings.TrimSuffix(camel, "Id")+"ID")
	}
	return names
}

func callGetter(v reflect.Value, name string) (reflect.Value, bool) {
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return reflect.Value{}, false
	}
	m := v.MethodByName(name)
	if !m.IsValid() || m.Type().NumIn() != 0 || m.Type().NumOut() == 0 {
		return reflect.Value{}, false
	}
	return m.Call(nil)[0], true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func column(f reflect.StructField) string {
	tag := f.Tag.Get("bun")
	if i := strings.IndexByte(tag, ','); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
