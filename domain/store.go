/*
store.go - Persistence interface for the campus ledger

PURPOSE:
  Defines the interface between the services and the database. Services
  never hold a database handle; they receive a Store (or TxStore) by
  injection and run every multi-step write inside WithTx.

KEY INTERFACES:
  EmployeeStore / StudentStore: directory lookups (key-based)
  AttendanceStore:              DTR rows, unique per (employee, date)
  PayrollStore:                 payroll runs and their covered DTR ids
  EnrollmentStore / PaymentStore: tuition balances and payments
  Store:                        all of the above
  TxStore:                      Store + WithTx for atomic sequences

NOT FOUND CONVENTION:
  Get and Find methods return (nil, nil) when the row doesn't exist. Services turn
  that into a NotFoundError or ValidationError depending on context.

UNIQUENESS:
  Implementations MUST return *DuplicateRecordError when inserting a second
  attendance row for the same (employee, date) or a repeated receipt number.

ATOMICITY:
  WithTx runs fn against a transactional view. If fn returns an error every
  write made through the view is rolled back.

IMPLEMENTATIONS:
  - store/sqldb: SQLite (default) and PostgreSQL
  - domain/store: in-memory, for tests and local development
*/
package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DIRECTORY
// =============================================================================

type EmployeeStore interface {
	SaveEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}

type StudentStore interface {
	SaveStudent(ctx context.Context, st Student) error
	GetStudent(ctx context.Context, id StudentID) (*Student, error)
	ListStudents(ctx context.Context) ([]Student, error)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceStore interface {
	InsertAttendance(ctx context.Context, rec AttendanceRecord) error
	UpdateAttendance(ctx context.Context, rec AttendanceRecord) error
	DeleteAttendance(ctx context.Context, id AttendanceID) error
	GetAttendance(ctx context.Context, id AttendanceID) (*AttendanceRecord, error)

	// FindAttendance returns the record for (employee, date), if any.
	FindAttendance(ctx context.Context, employeeID EmployeeID, date Date) (*AttendanceRecord, error)

	// ListAttendance returns records with date in [from, to], ordered by date.
	// unpaidOnly restricts the result to is_paid = false.
	ListAttendance(ctx context.Context, employeeID EmployeeID, from, to Date, unpaidOnly bool) ([]AttendanceRecord, error)

	// SetAttendancePaid bulk-sets is_paid for the given ids.
	SetAttendancePaid(ctx context.Context, ids []AttendanceID, paid bool) error
}

// =============================================================================
// PAYROLL
// =============================================================================

type PayrollStore interface {
	// InsertPayroll persists the run and its covered attendance ids.
	InsertPayroll(ctx context.Context, p PayrollRecord) error
	UpdatePayroll(ctx context.Context, p PayrollRecord) error
	DeletePayroll(ctx context.Context, id PayrollID) error
	GetPayroll(ctx context.Context, id PayrollID) (*PayrollRecord, error)

	// ListPayrolls returns runs for one employee, or all when employeeID is empty.
	ListPayrolls(ctx context.Context, employeeID EmployeeID) ([]PayrollRecord, error)
}

// =============================================================================
// TUITION
// =============================================================================

type EnrollmentStore interface {
	SaveEnrollment(ctx context.Context, e Enrollment) error
	GetEnrollment(ctx context.Context, id EnrollmentID) (*Enrollment, error)
	SetRemainingBalance(ctx context.Context, id EnrollmentID, balance decimal.Decimal) error
}

type PaymentStore interface {
	InsertPayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, id PaymentID) error
	GetPayment(ctx context.Context, id PaymentID) (*Payment, error)
	ListPayments(ctx context.Context, enrollmentID EnrollmentID) ([]Payment, error)

	// SumPayments totals every payment recorded against the enrollment.
	SumPayments(ctx context.Context, enrollmentID EnrollmentID) (decimal.Decimal, error)
}

// =============================================================================
// STORE + TRANSACTIONS
// =============================================================================

// Store is the full persistence surface used by the services.
type Store interface {
	EmployeeStore
	StudentStore
	AttendanceStore
	PayrollStore
	EnrollmentStore
	PaymentStore
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
