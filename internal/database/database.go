// Package database opens the relational store behind recipebox and provides
// transaction scoping and driver-neutral error classification.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL flavour of an open handle.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// ErrUnsupportedDriver is returned for URLs that are neither sqlite nor postgres.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// ParseURL maps a database URL to a driver name and data source name.
//
//	sqlite:///main.db            -> sqlite3, main.db
//	sqlite:////var/lib/r.db      -> sqlite3, /var/lib/r.db
//	postgres://user@host/recipes -> postgres, unchanged
func ParseURL(url string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(url, "sqlite:///"):
		path := strings.TrimPrefix(url, "sqlite:///")
		if path == "" {
			return "", "", fmt.Errorf("parse database url: empty sqlite path")
		}
		return DialectSQLite, sqliteDSN(path), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, url, nil
	default:
		return "", "", fmt.Errorf("parse database url: %w", ErrUnsupportedDriver)
	}
}

// sqliteDSN enables foreign keys so association rows cannot outlive their recipe.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// Open connects to the database described by url and verifies the connection.
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	dialect, dsn, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == DialectSQLite {
		// One connection serialises writers and keeps :memory: databases
		// visible to every statement.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// DialectOf reports the dialect of an open handle.
func DialectOf(db sqlx.ExtContext) Dialect {
	return Dialect(db.DriverName())
}
