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
	"reflect"

	"github.com/tomoncle/easydao/types"
	"github.com/uptrace/bun/schema"
)

// Columns returns the values of the columns tagged unique in table, keyed by
// column name and read from entity. Zero values are left out.
func Columns(table *schema.Table, entity any) types.Params {
	params := types.Params{}
	v := indirect(reflect.ValueOf(entity))
	if table == nil || !v.IsValid() || v.Type() != table.Type {
		return params
	}
	for _, f := range table.Fields {
		if !f.Tag.HasOption("unique") {
			continue
		}
		fv := v.FieldByIndex(f.Index)
		if fv.IsZero() {
			continue
		}
		params[f.Name] = fv.Interface()
	}
	return params
}
