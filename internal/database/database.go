package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Dialect identifies the SQL backend behind a DB handle.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// DB is a *sql.DB that remembers which dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DialectFor picks a dialect from a database URL. postgres:// and
// postgresql:// URLs go to Postgres, anything else is a SQLite path.
func DialectFor(url string) Dialect {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open opens the database named by url and runs migrations.
func Open(ctx context.Context, url string) (*DB, error) {
	dialect := DialectFor(url)

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectPostgres:
		db, err = sql.Open("pgx", url)
	default:
		db, err = sql.Open("sqlite", sqliteDSN(url))
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Every connection to :memory: gets its own empty database.
	if dialect == DialectSQLite && isMemory(url) {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(ctx, db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

func sqliteDSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func runMigrations(ctx context.Context, db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations)

	gooseDialect := "sqlite3"
	if dialect == DialectPostgres {
		gooseDialect = "postgres"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// Rebind rewrites ?-style placeholders into $N placeholders for Postgres.
// Queries are written once with ? and passed through Rebind at the call site.
func (db *DB) Rebind(query string) string {
	if db.Dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint in either backend.
func IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == pgUniqueViolation
	}
	return false
}
