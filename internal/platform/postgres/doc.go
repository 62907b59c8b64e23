// Package postgres provides PostgreSQL-backed implementations of the
// store interfaces and the event sink, using the pgx stdlib driver
// behind store.DBTX so every store works against either a connection
// pool or a transaction.
package postgres
