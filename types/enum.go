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

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

var (
	_ BaseEnum = Status(0)
	_ BaseEnum = QueryKind(0)
)

// Status is the outcome vocabulary returned by service save and update
// operations and by Params.Check.
type Status int

const (
	StatusSuccess Status = iota
	StatusError
	StatusErrorExists
	StatusErrorConstraintViolation
	StatusEntityNull
	StatusEntityNotFound // Update of a key with no row
	StatusNoParamsSet    // Params.Check: nothing to bind
	StatusNullParam      // Params.Check: a nil value
	StatusInvalidParam   // Params.Check: malformed pagination key
)

type enumMeta struct {
	name string
	code string
	desc string
}

var statusMeta = map[Status]enumMeta{
	StatusSuccess:                  {"SUCCESS", "success", "operation completed"},
	StatusError:                    {"ERROR", "error", "generic persistence error"},
	StatusErrorExists:              {"ERROR_EXISTS", "error.entity.exists", "entity already exists"},
	StatusErrorConstraintViolation: {"ERROR_CONSTRAINT_VIOLATION", "error.constraint.violation", "constraint violation"},
	StatusEntityNull:               {"ENTITY_NULL", "error.entity.null", "entity is nil"},
	StatusEntityNotFound:           {"ENTITY_NOT_FOUND", "error.entity.not.found", "entity not found"},
	StatusNoParamsSet:              {"NO_PARAMS_SET", "error.no.params", "no parameters set"},
	StatusNullParam:                {"NULL_PARAM", "error.null.param", "nil parameter"},
	StatusInvalidParam:             {"INVALID_PARAM", "error.invalid.param", "invalid parameter"},
}

func (s Status) IsValid() bool {
	_, ok := statusMeta[s]
	return ok
}

func (s Status) Number() int {
	if !s.IsValid() {
		return IllegalValue
	}
	return int(s)
}

// String returns the status code, e.g. "error.entity.exists".
func (s Status) String() string {
	if m, ok := statusMeta[s]; ok {
		return m.code
	}
	return IllegalName
}

func (s Status) Desc() string {
	if m, ok := statusMeta[s]; ok {
		return m.desc
	}
	return IllegalDesc
}

func (s Status) Name() string {
	if m, ok := statusMeta[s]; ok {
		return m.name
	}
	return IllegalName
}

// IsSuccess reports whether s is StatusSuccess.
func (s Status) IsSuccess() bool { return s == StatusSuccess }

// QueryKind selects how a query string is resolved and compiled.
type QueryKind int

const (
	// QueryNamed is a query registered under a name such as "User.findByUK".
	QueryNamed QueryKind = iota
	// QueryEntity is an ad-hoc query written against entity names.
	QueryEntity
	// QueryNative is raw SQL executed as written.
	QueryNative
)

var queryKindMeta = map[QueryKind]enumMeta{
	QueryNamed:  {"NAMED", "named", "pre-registered query"},
	QueryEntity: {"ENTITY", "entity", "ad-hoc entity query"},
	QueryNative: {"NATIVE", "native", "native SQL"},
}

func (k QueryKind) IsValid() bool {
	_, ok := queryKindMeta[k]
	return ok
}

func (k QueryKind) Number() int {
	if !k.IsValid() {
		return IllegalValue
	}
	return int(k)
}

func (k QueryKind) String() string {
	if m, ok := queryKindMeta[k]; ok {
		return m.code
	}
	return IllegalName
}

func (k QueryKind) Desc() string {
	if m, ok := queryKindMeta[k]; ok {
		return m.desc
	}
	return IllegalDesc
}

func (k QueryKind) Name() string {
	if m, ok := queryKindMeta[k]; ok {
		return m.name
	}
	return IllegalName
}
