package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect captures the few places where the supported databases disagree.
type Dialect struct {
	Name      string
	Driver    string
	Timestamp string
}

var (
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite", Timestamp: "DATETIME"}
	Postgres = Dialect{Name: "postgres", Driver: "pgx", Timestamp: "TIMESTAMPTZ"}
	MySQL    = Dialect{Name: "mysql", Driver: "mysql", Timestamp: "DATETIME(6)"}
)

// Rebind rewrites ?-style placeholders for drivers that need positional ones.
func (d Dialect) Rebind(query string) string {
	if d.Name != Postgres.Name {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DB is a database handle bound to its dialect.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Dialect returns the dialect the handle was opened with.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

func (db *DB) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.ExecContext(ctx, db.dialect.Rebind(query), args...)
}

func (db *DB) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.QueryContext(ctx, db.dialect.Rebind(query), args...)
}

func (db *DB) queryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.QueryRowContext(ctx, db.dialect.Rebind(query), args...)
}

// ParseURL maps a database URL onto a dialect and a driver specific DSN.
//
//	sqlite:///data/app.db       -> sqlite, data/app.db
//	sqlite:////var/lib/app.db   -> sqlite, /var/lib/app.db
//	postgres://u:p@host/db      -> pgx, unchanged
//	mysql://u:p@tcp(host)/db    -> mysql, u:p@tcp(host)/db?parseTime=true&loc=UTC
//
// Anything without a scheme is treated as a sqlite file path.
func ParseURL(raw string) (Dialect, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Dialect{}, "", fmt.Errorf("database url is required")
	}

	switch {
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			return Dialect{}, "", fmt.Errorf("sqlite database path is required")
		}
		return SQLite, path, nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return Postgres, raw, nil
	case strings.HasPrefix(raw, "mysql://"):
		dsn := strings.TrimPrefix(raw, "mysql://")
		if !strings.Contains(dsn, "parseTime=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "parseTime=true&loc=UTC"
		}
		return MySQL, dsn, nil
	case strings.Contains(raw, "://"):
		return Dialect{}, "", fmt.Errorf("unsupported database url scheme in %q", raw)
	default:
		return SQLite, raw, nil
	}
}

// Open connects to the database described by url and verifies the connection.
func Open(ctx context.Context, url string) (*DB, error) {
	dialect, dsn, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	if dialect == SQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", dialect.Name, err)
	}

	if dialect == SQLite {
		// sqlite serialises writers anyway; a single connection also keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s db: %w", dialect.Name, err)
	}

	return &DB{DB: db, dialect: dialect}, nil
}

// ensureIndex creates an index unless it already exists.
func (db *DB) ensureIndex(ctx context.Context, name, table, columns string) error {
	if db.dialect == MySQL {
		_, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX %s ON %s(%s)`, name, table, columns))
		if err != nil && !strings.Contains(err.Error(), "Duplicate key name") {
			return fmt.Errorf("create index %s: %w", name, err)
		}
		return nil
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s(%s)`, name, table, columns)); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// ensureColumns adds any column missing from table. Older databases were
// created before some columns existed.
func (db *DB) ensureColumns(ctx context.Context, table string, columns map[string]string) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s WHERE 1=0`, table))
	if err != nil {
		return fmt.Errorf("describe %s table: %w", table, err)
	}
	names, err := rows.Columns()
	rows.Close()
	if err != nil {
		return fmt.Errorf("read %s columns: %w", table, err)
	}

	existing := make(map[string]struct{}, len(names))
	for _, name := range names {
		existing[strings.ToLower(name)] = struct{}{}
	}

	for name, definition := range columns {
		if _, ok := existing[name]; ok {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, name, definition)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, name, err)
		}
	}
	return nil
}

// widenToText converts column to TEXT when an older schema declared it as a
// bounded VARCHAR. sqlite does not enforce VARCHAR lengths and is left alone.
func (db *DB) widenToText(ctx context.Context, table, column string, nullable bool) error {
	if db.dialect == SQLite {
		return nil
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE 1=0`, column, table))
	if err != nil {
		return fmt.Errorf("describe %s.%s: %w", table, column, err)
	}
	types, err := rows.ColumnTypes()
	rows.Close()
	if err != nil {
		return fmt.Errorf("read %s.%s type: %w", table, column, err)
	}
	if len(types) == 1 && strings.Contains(strings.ToUpper(types[0].DatabaseTypeName()), "TEXT") {
		return nil
	}

	var stmt string
	switch db.dialect {
	case Postgres:
		stmt = fmt.Sprintf(`ALTER TABLE %s ALTER COLUMN %s TYPE TEXT`, table, column)
	case MySQL:
		null := "NOT NULL"
		if nullable {
			null = "NULL"
		}
		stmt = fmt.Sprintf(`ALTER TABLE %s MODIFY %s TEXT %s`, table, column, null)
	default:
		return nil
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("widen %s.%s: %w", table, column, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
