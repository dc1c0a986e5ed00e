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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestDefaults(t *testing.T) {
	p := NewDefaultPageRequest(0, 0)
	assert.Equal(t, 1, p.GetPage())
	assert.Equal(t, 10, p.GetPageSize())
	assert.Zero(t, p.GetOffset())
	assert.Nil(t, p.GetFilter())
	assert.Empty(t, p.GetOrders())
}

func TestPageRequestParams(t *testing.T) {
	p := NewPageRequest(3, 20, NewQueryFilter("status = ?", "on"), []string{"id DESC"})
	assert.Equal(t, 40, p.GetOffset())
	assert.Equal(t, Params{ParamMaxResults: 20, ParamStartPosition: 40}, p.Params())
	assert.Equal(t, []interface{}{"on"}, p.GetFilter().Args)

	_, w, err := p.Params().Split()
	assert.NoError(t, err)
	assert.Equal(t, Window{MaxResults: 20, StartPosition: 40}, w)
}

func TestPagination(t *testing.T) {
	p := NewDefaultPagination[struct{}](1, 10)
	assert.Zero(t, p.TotalPages())
	assert.False(t, p.HasNext())
	assert.NotNil(t, p.Items)

	p.Total = 21
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasNext())

	p.Page = 3
	assert.False(t, p.HasNext())

	p.PageSize = 0
	assert.Zero(t, p.TotalPages())
}
