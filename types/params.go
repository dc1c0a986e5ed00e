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

package types

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Reserved parameter keys controlling pagination. They are never bound as
// query parameters.
const (
	ParamMaxResults    = "maxResults"
	ParamStartPosition = "startPosition"
)

// Params maps named query parameters (":name" in query text) to values.
type Params map[string]any

// NewParams builds Params from alternating key/value pairs.
func NewParams(kv ...any) Params {
	p := make(Params, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			p[k] = kv[i+1]
		}
	}
	return p
}

// WithMaxResults returns a copy of p limited to n rows.
func (p Params) WithMaxResults(n int) Params {
	c := p.Clone()
	c[ParamMaxResults] = n
	return c
}

// WithStartPosition returns a copy of p starting at row offset n.
func (p Params) WithStartPosition(n int) Params {
	c := p.Clone()
	c[ParamStartPosition] = n
	return c
}

// Clone returns a shallow copy; a nil Params clones to an empty map.
func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Keys returns the bindable keys in sorted order, trimmed of whitespace.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		k = strings.TrimSpace(k)
		if k == ParamMaxResults || k == ParamStartPosition {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Check reports whether p can be bound: StatusNoParamsSet without bindable
// keys, StatusNullParam when one of them is nil and StatusInvalidParam when
// a pagination key is not an integer.
func (p Params) Check() Status {
	bind, _, err := p.Split()
	if err != nil {
		return StatusInvalidParam
	}
	if len(bind) == 0 {
		return StatusNoParamsSet
	}
	for _, v := range bind {
		if v == nil {
			return StatusNullParam
		}
	}
	return StatusSuccess
}

// Window is the pagination window extracted from Params. A zero MaxResults
// means unlimited and a zero StartPosition means from the first row.
type Window struct {
	MaxResults    int
	StartPosition int
}

// Split separates the reserved control keys from the bindable parameters.
// maxResults is honored only when > 0 and startPosition only when > -1.
// p is left untouched.
func (p Params) Split() (map[string]any, Window, error) {
	var w Window
	bind := make(map[string]any, len(p))
	for k, v := range p {
		key := strings.TrimSpace(k)
		switch key {
		case ParamMaxResults:
			n, err := toInt(key, v)
			if err != nil {
				return nil, w, err
			}
			if n > 0 {
				w.MaxResults = n
			}
		case ParamStartPosition:
			n, err := toInt(key, v)
			if err != nil {
				return nil, w, err
			}
			if n > -1 {
				w.StartPosition = n
			}
		default:
			bind[key] = v
		}
	}
	return bind, w, nil
}

func toInt(key string, v any) (int, error) {
	if v == nil {
		return -1, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), nil
	default:
		return 0, fmt.Errorf("parameter %s must be an integer, got %T", key, v)
	}
}
