// Package postgres implements the store interfaces on top of PostgreSQL
// through database/sql with the pgx driver. The conditional update inside
// TryLock is the atomic primitive the dispatch lock protocol relies on.
package postgres
