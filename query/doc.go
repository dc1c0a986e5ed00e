// Package query compiles and runs the three query kinds understood by the
// DAO layer: queries registered under a name, ad-hoc queries written against
// entity type names, and native SQL. Parameters use ":name" placeholders;
// the reserved keys maxResults and startPosition set the result window.
package query
