// Package store defines the persistence interfaces consumed by the
// service layer, along with the shared error taxonomy and transaction
// helpers. Implementations live in internal/platform/postgres.
package store
