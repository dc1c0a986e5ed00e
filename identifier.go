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
	"reflect"

	"github.com/uptrace/bun/schema"
)

var (
	idGetters = []string{"GetID", "GetId"}
	idSetters = []string{"SetID", "SetId"}
)

// copyIdentifier copies the identifier of src onto dst. A GetID/GetId getter
// on src paired with a SetID/SetId setter on dst wins; otherwise the single
// primary key field of table is copied. Entities offering neither are left
// alone.
func copyIdentifier[E any](dst, src *E, table *schema.Table) {
	if dst == nil || src == nil || dst == src {
		return
	}
	if copyByAccessors(reflect.ValueOf(dst), reflect.ValueOf(src)) {
		return
	}
	if table == nil || len(table.PKs) != 1 {
		return
	}
	pk := table.PKs[0]
	to := reflect.ValueOf(dst).Elem().FieldByIndex(pk.Index)
	if to.CanSet() {
		to.Set(reflect.ValueOf(src).Elem().FieldByIndex(pk.Index))
	}
}

func copyByAccessors(dst, src reflect.Value) bool {
	for _, g := range idGetters {
		get := src.MethodByName(g)
		if !get.IsValid() || get.Type().NumIn() != 0 || get.Type().NumOut() == 0 {
			continue
		}
		for _, s := range idSetters {
			set := dst.MethodByName(s)
			if !set.IsValid() || set.Type().NumIn() != 1 {
				continue
			}
			id := get.Call(nil)[0]
			if !id.Type().AssignableTo(set.Type().In(0)) {
				continue
			}
			set.Call([]reflect.Value{id})
			return true
		}
	}
	return false
}
