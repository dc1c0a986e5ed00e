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

package uniquekey

import (
	"regexp"
	"strings"
)

var (
	predicateRe = regexp.MustCompile(`[\w.]+\s*=\s*:[\w.]+`)
	paramRe     = regexp.MustCompile(`:[\w.]+`)
)

// Predicate is one "path = :param" comparison found in a query.
type Predicate struct {
	Path  string // left-hand side, e.g. "c.email"
	Param string // placeholder name without the colon
}

// Predicates returns the "path = :param" comparisons of query in order.
func Predicates(query string) []Predicate {
	var out []Predicate
	for _, frag := range predicateRe.FindAllString(query, -1) {
		eq := strings.IndexByte(frag, '=')
		param := strings.TrimPrefix(paramRe.FindString(frag[eq:]), ":")
		out = append(out, Predicate{
			Path:  strings.TrimSpace(frag[:eq]),
			Param: param,
		})
	}
	return out
}
