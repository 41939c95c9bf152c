package store

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewPostgresDB wraps an open Postgres connection with the bun dialect used
// by the repositories in this package.
func NewPostgresDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}

// NewSQLiteDB wraps an open SQLite connection. Used by tests and small
// single-node installs.
func NewSQLiteDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, sqlitedialect.New())
}
