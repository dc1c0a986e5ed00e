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
	"github.com/stretchr/testify/require"
)

func TestNewParams(t *testing.T) {
	p := NewParams("name", "bob", 3, "skipped", "age")
	assert.Equal(t, Params{"name": "bob"}, p)
}

func TestSplitLeavesParamsUntouched(t *testing.T) {
	p := NewParams("name", "bob").WithMaxResults(5).WithStartPosition(10)

	bind, w, err := p.Split()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "bob"}, bind)
	assert.Equal(t, Window{MaxResults: 5, StartPosition: 10}, w)
	assert.Len(t, p, 3)
	assert.Equal(t, []string{"name"}, p.Keys())
}

func TestSplitWindowBounds(t *testing.T) {
	cases := []struct {
		name   string
		params Params
		want   Window
	}{
		{"zero max results means unlimited", Params{ParamMaxResults: 0}, Window{}},
		{"negative max results ignored", Params{ParamMaxResults: -3}, Window{}},
		{"negative start position ignored", Params{ParamStartPosition: -1}, Window{}},
		{"zero start position kept", Params{ParamStartPosition: 0}, Window{}},
		{"unsigned values", Params{ParamMaxResults: uint8(2), ParamStartPosition: uint(4)}, Window{MaxResults: 2, StartPosition: 4}},
		{"nil values ignored", Params{ParamMaxResults: nil, ParamStartPosition: nil}, Window{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bind, w, err := tc.params.Split()
			require.NoError(t, err)
			assert.Empty(t, bind)
			assert.Equal(t, tc.want, w)
		})
	}
}

func TestSplitRejectsNonInteger(t *testing.T) {
	_, _, err := Params{ParamMaxResults: "10"}.Split()
	assert.ErrorContains(t, err, ParamMaxResults)

	_, _, err = Params{ParamStartPosition: 1.5}.Split()
	assert.ErrorContains(t, err, ParamStartPosition)
}

func TestSplitTrimsKeys(t *testing.T) {
	bind, w, err := Params{" id ": 1, " maxResults": 2}.Split()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 1}, bind)
	assert.Equal(t, 2, w.MaxResults)
}

func TestCloneNil(t *testing.T) {
	var p Params
	c := p.Clone()
	require.NotNil(t, c)
	c["a"] = 1
	assert.Nil(t, p)
}

func TestCheck(t *testing.T) {
	assert.Equal(t, StatusNoParamsSet, Params(nil).Check())
	assert.Equal(t, StatusNoParamsSet, NewParams(ParamMaxResults, 5).Check())
	assert.Equal(t, StatusNullParam, Params{"a": 1, "b": nil}.Check())
	assert.Equal(t, StatusInvalidParam, NewParams("a", 1, ParamStartPosition, "x").Check())
	assert.Equal(t, StatusSuccess, NewParams("a", 1, ParamMaxResults, 5).Check())
	assert.True(t, NewParams("a", "").Check().IsSuccess())
}

