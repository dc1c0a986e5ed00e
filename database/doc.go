// Package database provides connection management for Bun (MySQL, Postgres
// through lib/pq or pgx, SQLite), viper based configuration, model table
// creation, the named query registry, query hooks, and the SQL error
// classification used to translate driver failures.
package database
