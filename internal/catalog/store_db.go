package catalog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the pure-Go "sqlite" driver
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	pgUniqueCode = "23505"
)

// Dialect captures the few differences between the supported SQL backends.
type Dialect struct {
	Name   string
	Driver string

	// positional placeholder for the n-th (1-based) argument
	bind func(n int) string
	// row lock appended to read-modify-write selects
	lockRow string
}

var (
	Postgres = Dialect{
		Name:    "postgres",
		Driver:  "pgx",
		bind:    func(n int) string { return "$" + strconv.Itoa(n) },
		lockRow: " FOR UPDATE",
	}
	SQLite = Dialect{
		Name:   "sqlite",
		Driver: "sqlite",
		bind:   func(n int) string { return "?" + strconv.Itoa(n) },
	}
)

// DialectFor maps a configured backend name to its dialect.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unknown sql dialect %q", name)
	}
}

// q rewrites $n placeholders for the dialect.
func (d Dialect) q(query string) string {
	if d.Name == Postgres.Name {
		return query
	}
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(query[i+1 : j])
		if err != nil {
			b.WriteByte(c)
			continue
		}
		b.WriteString(d.bind(n))
		i = j - 1
	}
	return b.String()
}

// OpenDB opens and pings a database for the dialect.
func OpenDB(ctx context.Context, d Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	if d.Name == SQLite.Name {
		// one writer at a time; avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}
	if err := withTimeout(ctx, pingTimeout, db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name, err)
	}
	return db, nil
}

// Migrate creates the tables shared by every SQLStore.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			seq BIGINT NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE TABLE IF NOT EXISTS sequences (
			collection TEXT PRIMARY KEY,
			value BIGINT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SQLStore keeps a collection as JSON payload rows in a shared records
// table, ordered by an insertion sequence.
type SQLStore[T any] struct {
	db      *sql.DB
	dialect Dialect
	schema  Schema[T]
	ids     IDFunc
}

func NewSQLStore[T any](db *sql.DB, d Dialect, schema Schema[T], opts ...StoreOption) *SQLStore[T] {
	o := buildStoreOptions(opts)
	return &SQLStore[T]{db: db, dialect: d, schema: schema, ids: o.ids}
}

func (s *SQLStore[T]) Ping(ctx context.Context) error {
	return classify(withTimeout(ctx, pingTimeout, s.db.PingContext))
}

// Seed loads items when the collection is empty. It reports whether rows
// were written.
func (s *SQLStore[T]) Seed(ctx context.Context, items []T) (bool, error) {
	seeded := false
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, s.dialect.q(`
			SELECT COUNT(*) FROM records WHERE collection = $1
		`), s.schema.Kind).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		for i, v := range items {
			if err := s.schema.validate(v); err != nil {
				return fmt.Errorf("seed %s #%d: %w", s.schema.Kind, i, err)
			}
			if err := s.insert(ctx, tx, int64(i+1), v); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, s.dialect.q(`
			INSERT INTO sequences (collection, value) VALUES ($1, $2)
			ON CONFLICT (collection) DO UPDATE SET value = excluded.value
		`), s.schema.Kind, seedSequence(s.schema, items)); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	return seeded, err
}

func (s *SQLStore[T]) All(ctx context.Context) ([]T, error) {
	var out []T

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, s.dialect.q(`
			SELECT payload
			FROM records
			WHERE collection = $1
			ORDER BY seq ASC
		`), s.schema.Kind)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]T, 0, 16)
		for rows.Next() {
			var payload string
			if err := rows.Scan(&payload); err != nil {
				return err
			}
			v, err := s.decode(payload)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *SQLStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var (
		zero    T
		payload string
	)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, s.dialect.q(`
			SELECT payload
			FROM records
			WHERE collection = $1 AND id = $2
		`), s.schema.Kind, id).Scan(&payload)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, classify(err)
	}

	v, err := s.decode(payload)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (s *SQLStore[T]) Add(ctx context.Context, v T) (T, error) {
	var out T

	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.dialect.q(`
			INSERT INTO sequences (collection, value) VALUES ($1, 1)
			ON CONFLICT (collection) DO UPDATE SET value = sequences.value + 1
		`), s.schema.Kind); err != nil {
			return err
		}
		var seq int64
		if err := tx.QueryRowContext(ctx, s.dialect.q(`
			SELECT value FROM sequences WHERE collection = $1
		`), s.schema.Kind).Scan(&seq); err != nil {
			return err
		}

		next := s.schema.SetID(v, s.ids(seq))
		if err := s.schema.validate(next); err != nil {
			return err
		}
		if err := s.insert(ctx, tx, seq, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (s *SQLStore[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	var out T

	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var payload string
		err := tx.QueryRowContext(ctx, s.dialect.q(`
			SELECT payload
			FROM records
			WHERE collection = $1 AND id = $2
		`+s.dialect.lockRow), s.schema.Kind, id).Scan(&payload)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(s.schema.Kind, id)
		}
		if err != nil {
			return err
		}

		cur, err := s.decode(payload)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		if s.schema.ID(next) != id {
			return &ValidationError{Kind: s.schema.Kind, Field: "id", Reason: "is immutable"}
		}
		if err := s.schema.validate(next); err != nil {
			return err
		}

		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode %s: %w", s.schema.Kind, err)
		}
		if _, err := tx.ExecContext(ctx, s.dialect.q(`
			UPDATE records SET payload = $3
			WHERE collection = $1 AND id = $2
		`), s.schema.Kind, id, string(raw)); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (s *SQLStore[T]) Delete(ctx context.Context, id string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, s.dialect.q(`
			DELETE FROM records WHERE collection = $1 AND id = $2
		`), s.schema.Kind, id)
		if err != nil {
			return classify(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return classify(err)
		}
		if n == 0 {
			return notFound(s.schema.Kind, id)
		}
		return nil
	})
}

func (s *SQLStore[T]) insert(ctx context.Context, tx *sql.Tx, seq int64, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.schema.Kind, err)
	}
	_, err = tx.ExecContext(ctx, s.dialect.q(`
		INSERT INTO records (collection, id, seq, payload)
		VALUES ($1, $2, $3, $4)
	`), s.schema.Kind, s.schema.ID(v), seq, string(raw))
	return err
}

func (s *SQLStore[T]) decode(payload string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", s.schema.Kind, err)
	}
	return v, nil
}

// inTx runs fn in a read-committed transaction. Errors from fn that already
// carry a catalog class are returned as they are; driver errors are
// classified.
func (s *SQLStore[T]) inTx(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
		if s.dialect.Name == SQLite.Name {
			opts = nil
		}
		tx, err := s.db.BeginTx(ctx, opts)
		if err != nil {
			return classify(err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := fn(ctx, tx); err != nil {
			return classify(err)
		}
		return classify(tx.Commit())
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

// classify maps driver errors onto the catalog error classes.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrTransient, ErrUnauthorized} {
		if errors.Is(err, known) {
			return err
		}
	}
	// Deadlines and cancellation stay context errors so callers see a
	// timeout, not an outage.
	if isContextErr(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueCode:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			pgErr.Code == "40001", // serialization failure
			pgErr.Code == "40P01", // deadlock detected
			pgErr.Code == "57P01", // admin shutdown
			pgErr.Code == "57P03": // cannot connect now
			return transient(err)
		}
		return err
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}

	var ne net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		pgconn.Timeout(err),
		pgconn.SafeToRetry(err),
		errors.As(err, &ne):
		return transient(err)
	}
	return err
}

// isUniqueViolation catches SQLite's constraint error, which has no typed
// code shared with pgconn.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE")
}
