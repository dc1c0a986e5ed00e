// Package dao provides a generic data access object built on Bun: merge
// style saves with translated failures, lookups by primary key or column
// values, and the registered, entity and native query variants of the query
// package.
package dao
