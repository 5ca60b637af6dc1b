/*
Package sqldb provides a database/sql implementation of domain.TxStore.

PURPOSE:
  Persists employees, students, attendance (DTR), payrolls, enrollments and
  payments. The same queries run on SQLite (mattn/go-sqlite3) and PostgreSQL
  (jackc/pgx stdlib); only placeholders and error codes differ.

KEY TABLES:
  employees, students:   directory records consumed by the services
  attendance:            one row per (employee_id, date)
  payrolls:              payroll runs
  payroll_attendance:    DTRs covered by each run (reset on delete)
  enrollments:           total fee and remaining balance
  payments:              tuition and document payments

UNIQUE KEYS:
  - idx_attendance_employee_date: one DTR per employee per day
  - idx_payments_receipt:        receipt numbers never repeat
  Violations surface as domain.DuplicateRecordError, whichever driver is used.

VALUE ENCODING:
  Dates are TEXT "2006-01-02" (lexical order = chronological order), clock
  times TEXT "15:04", money and hours TEXT decimals, timestamps TEXT RFC3339.

CONCURRENCY:
  WithTx holds a mutex for the whole transaction so SQLite sees one writer
  at a time. SQLite is limited to a single connection, which also keeps a
  ":memory:" database alive across calls. PostgreSQL relies on its own
  isolation.

USAGE:
  store, err := sqldb.Open(sqldb.SQLite, "./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  payroll.NewService(store, payroll.NoTax{})

MIGRATION:
  Schema is created on Open. Statements are executed one by one so the
  same list works for both drivers.

SEE ALSO:
  - domain/store.go: Interface definitions
  - domain/store/memory.go: In-memory implementation for testing
*/
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"

	"github.com/warp/campus-ledger/domain"
)

// Dialect names a supported database/sql driver.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "pgx"
)

// ParseDialect maps a config value to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return "", fmt.Errorf("unknown database driver %q", s)
}

// rebind rewrites ? placeholders for drivers that need $n.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
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

// =============================================================================
// STORE
// =============================================================================

// Store implements domain.TxStore on a *sql.DB.
type Store struct {
	*queries

	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

var _ domain.TxStore = (*Store)(nil)

// New opens a SQLite store at path. Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	return Open(SQLite, path)
}

// Open connects with the given dialect and migrates the schema.
func Open(dialect Dialect, dsn string) (*Store, error) {
	source := dsn
	if dialect == SQLite {
		source = dsn + "?_foreign_keys=on&_journal_mode=WAL"
	}

	db, err := sql.Open(string(dialect), source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}

	store := &Store{
		queries: &queries{db: db, dialect: dialect},
		db:      db,
		dialect: dialect,
	}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Dialect returns the driver the store was opened with.
func (s *Store) Dialect() Dialect { return s.dialect }

// WithTx executes fn within a database transaction.
// If fn returns error, transaction is rolled back.
func (s *Store) WithTx(ctx context.Context, fn func(domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Op: "begin transaction", Err: err}
	}
	defer sqlTx.Rollback()

	if err := fn(&queries{db: sqlTx, dialect: s.dialect}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return &domain.StorageError{Op: "commit transaction", Err: err}
	}
	return nil
}

// =============================================================================
// SCHEMA
// =============================================================================

var schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		department_id TEXT NOT NULL DEFAULT '',
		monthly_salary TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		student_number TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		time_in TEXT,
		time_out TEXT,
		lunch_start TEXT,
		lunch_end TEXT,
		overtime_start TEXT,
		overtime_end TEXT,
		status TEXT NOT NULL,
		leave_type TEXT NOT NULL DEFAULT '',
		remarks TEXT NOT NULL DEFAULT '',
		hours_worked TEXT NOT NULL,
		overtime_hours TEXT NOT NULL,
		pay_period TEXT NOT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	// One DTR per employee per day
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_employee_date
		ON attendance(employee_id, date)`,

	// Payroll aggregation: unpaid records in a window (hot path)
	`CREATE INDEX IF NOT EXISTS idx_attendance_employee_paid_date
		ON attendance(employee_id, is_paid, date)`,

	`CREATE TABLE IF NOT EXISTS payrolls (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		total_hours TEXT NOT NULL,
		total_overtime_hours TEXT NOT NULL,
		basic_salary TEXT NOT NULL,
		overtime_pay TEXT NOT NULL,
		allowances TEXT NOT NULL,
		deductions TEXT NOT NULL,
		tax TEXT NOT NULL,
		net_salary TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		status TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		paid_at TEXT,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_payrolls_employee
		ON payrolls(employee_id, period_start)`,

	`CREATE TABLE IF NOT EXISTS payroll_attendance (
		payroll_id TEXT NOT NULL REFERENCES payrolls(id),
		attendance_id TEXT NOT NULL REFERENCES attendance(id),
		PRIMARY KEY (payroll_id, attendance_id)
	)`,

	`CREATE TABLE IF NOT EXISTS enrollments (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES students(id),
		course TEXT NOT NULL,
		academic_year TEXT NOT NULL DEFAULT '',
		semester TEXT NOT NULL DEFAULT '',
		total_fee TEXT NOT NULL,
		remaining_balance TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		payment_type TEXT NOT NULL,
		student_id TEXT NOT NULL REFERENCES students(id),
		enrollment_id TEXT REFERENCES enrollments(id),
		document_ref TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		receipt_number TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		paid_at TEXT NOT NULL,
		cashier_id TEXT NOT NULL DEFAULT '',
		cashier_name TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_receipt
		ON payments(receipt_number)`,

	`CREATE INDEX IF NOT EXISTS idx_payments_enrollment
		ON payments(enrollment_id)`,
}

// migrate creates the database schema.
func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

// isUniqueViolation recognises unique-key failures from either driver.
func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.StorageError{Op: op, Err: err}
}
