// Package migrations holds the schema migrations for the hosted
// relational store. Migrations are registered as Go migrations so the
// environment-derived table prefix (dev_/test_/prod_) can be applied at
// run time; goose tracks applied versions in its own table.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// tablePrefix is set by Run before goose executes the registered
// migrations. Goose's Go-migration signature has no config hook, so the
// prefix travels through this package variable.
var tablePrefix string

// Run opens a database/sql connection and applies all pending
// migrations for the given table prefix.
func Run(ctx context.Context, databaseURL, prefix string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	tablePrefix = prefix

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetTableName(prefix + "goose_db_version")

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
