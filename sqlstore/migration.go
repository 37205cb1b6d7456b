// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sqlstore

import (
	"database/sql"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

// This file maintains the database migration code.  See
// https://github.com/rubenv/sql-migrate for details of what goes in
// here.  This runs "outside" the normal catalog flow, either at
// initial startup or from an external tool.

func migrationSource(d *dialect) migrate.MigrationSource {
	return &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "1-catalog",
				Up: []string{
					fmt.Sprintf(`CREATE TABLE catalog_object (
						id VARCHAR(64) PRIMARY KEY,
						kind VARCHAR(32) NOT NULL,
						seq BIGINT NOT NULL,
						body %s NOT NULL
					)`, d.blobType),
					`CREATE INDEX catalog_object_seq ON catalog_object (seq)`,
					`CREATE TABLE catalog_default (
						slot VARCHAR(128) PRIMARY KEY,
						object_id VARCHAR(64) NOT NULL
					)`,
				},
				Down: []string{
					`DROP TABLE catalog_default`,
					`DROP INDEX catalog_object_seq`,
					`DROP TABLE catalog_object`,
				},
			},
		},
	}
}

// Upgrade upgrades a database to the latest database schema version.
func Upgrade(db *sql.DB, driver string) error {
	d, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("unknown database driver %q", driver)
	}
	_, err := migrate.Exec(db, d.migrate, migrationSource(d), migrate.Up)
	return err
}

// Drop clears a database by running all of the migrations in reverse,
// ultimately resulting in dropping all of the tables.
func Drop(db *sql.DB, driver string) error {
	d, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("unknown database driver %q", driver)
	}
	_, err := migrate.Exec(db, d.migrate, migrationSource(d), migrate.Down)
	return err
}
