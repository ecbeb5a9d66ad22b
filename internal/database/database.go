// Package database provides helpers for opening the local sqlite database
// and running migrations. This file has two responsibilities:
//  1. Opening a database connection using GORM (an ORM — Object Relational Mapper)
//  2. Running SQL migration files to keep the schema up to date
//
// Quizzik is a pass-the-device game, so the "database" is just a file next
// to the binary — nothing to provision, nothing to reach over the network.
// sqlite gives us durable snapshots and the history log for free.
package database

import (
	// The migrate package reads and applies versioned SQL migration files.
	"github.com/golang-migrate/migrate/v4"
	// Blank imports (_) register drivers with the migrate library without us
	// using them directly. This registers the sqlite3 database driver:
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	// This registers the "file://" source driver, so migrate can read .sql
	// files from disk:
	_ "github.com/golang-migrate/migrate/v4/source/file"

	// gorm lets us work with database records as Go structs instead of
	// writing raw SQL for every operation.
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens (creating if needed) the sqlite database at the given path
// and returns the GORM handle used for all queries.
//
// Example path: "quizzik.db", or "file::memory:?cache=shared" in tests.
func Connect(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

// RunMigrations applies any pending "up" migrations from the migrations/
// directory. Migrations are numbered SQL files (e.g. 000001_initial_schema.up.sql)
// tracked in a schema_migrations table, so the same migration never runs twice.
func RunMigrations(path string) error {
	m, err := migrate.New("file://migrations", "sqlite3://"+path)
	if err != nil {
		return err
	}

	// migrate.ErrNoChange just means the schema is already current — not an
	// error worth failing startup over.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}
