// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"fmt"

	"github.com/absmach/edgesync/internal/env"
	"github.com/absmach/edgesync/pkg/errors"
	_ "github.com/jackc/pgx/v5/stdlib" // required for SQL access
	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
)

var (
	errConfig    = errors.New("failed to load postgresql configuration")
	errConnect   = errors.New("failed to connect to postgresql server")
	errMigration = errors.New("failed to apply migrations")
)

type Config struct {
	Host        string `env:"HOST,notEmpty"     envDefault:"localhost"`
	Port        string `env:"PORT,notEmpty"     envDefault:"5432"`
	User        string `env:"USER,notEmpty"     envDefault:"edgesync"`
	Pass        string `env:"PASS,notEmpty"     envDefault:"edgesync"`
	Name        string `env:"NAME"              envDefault:"edgesync"`
	SSLMode     string `env:"SSL_MODE,notEmpty" envDefault:"disable"`
	SSLCert     string `env:"SSL_CERT"          envDefault:""`
	SSLKey      string `env:"SSL_KEY"           envDefault:""`
	SSLRootCert string `env:"SSL_ROOT_CERT"     envDefault:""`
}

// Migrations groups the migrations of one repository. Every group keeps
// its own bookkeeping table so repositories can share a database.
type Migrations struct {
	Table  string
	Source migrate.MemoryMigrationSource
}

// Setup creates a connection to the PostgreSQL instance configured through
// the environment and applies any unapplied migrations.
func Setup(prefix string, migrations ...Migrations) (*sqlx.DB, error) {
	cfg := Config{}
	if err := env.Parse(&cfg, env.Options{Prefix: prefix}); err != nil {
		return nil, errors.Wrap(errConfig, err)
	}
	return SetupDB(cfg, migrations...)
}

// SetupDB creates a connection to the PostgreSQL instance and applies any
// unapplied database migrations. A non-nil error is returned to indicate failure.
func SetupDB(cfg Config, migrations ...Migrations) (*sqlx.DB, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	for _, m := range migrations {
		if err := MigrateDB(db, m); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Connect creates a connection to the PostgreSQL instance.
func Connect(cfg Config) (*sqlx.DB, error) {
	url := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s sslcert=%s sslkey=%s sslrootcert=%s", cfg.Host, cfg.Port, cfg.User, cfg.Name, cfg.Pass, cfg.SSLMode, cfg.SSLCert, cfg.SSLKey, cfg.SSLRootCert)

	db, err := sqlx.Open("pgx", url)
	if err != nil {
		return nil, errors.Wrap(errConnect, err)
	}

	return db, nil
}

// MigrateDB applies any unapplied migrations of the group.
func MigrateDB(db *sqlx.DB, m Migrations) error {
	set := migrate.MigrationSet{TableName: m.Table}
	if _, err := set.Exec(db.DB, "postgres", m.Source, migrate.Up); err != nil {
		return errors.Wrap(errMigration, err)
	}
	return nil
}
