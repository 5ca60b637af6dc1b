/*
Package domain provides the shared model of the campus ledger.

PURPOSE:
  Types and pure calculations used by the attendance, payroll and tuition
  services: calendar dates, clock times, money rounding, closed enums for
  every status column, the entities themselves and the store contract.

KEY CONCEPTS IN THIS FILE (types.go):
  - Actor: who performs an operation (passed explicitly, never ambient)
  - AttendanceRecord: one employee's daily time record (DTR)
  - PayrollRecord: one payment run over a pay period
  - Enrollment / Payment: tuition balance and the payments against it

DESIGN PRINCIPLES:
  1. Precision: money and hours use decimal.Decimal, rounded to 2 places
  2. Derived values: hours and balances are recomputed, never trusted
  3. Type Safety: typed IDs and enums prevent mixing references

SEE ALSO:
  - time.go: Date and TimeOfDay
  - period.go: semi-monthly pay period classifier
  - store.go: persistence contract
*/
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type StudentID string
type AttendanceID string
type PayrollID string
type EnrollmentID string
type PaymentID string

// Actor is the authenticated user performing an operation. It feeds the
// audit columns (created_by, cashier).
type Actor struct {
	ID   string
	Name string
}

// SystemActor is used by tooling that runs without a request context.
var SystemActor = Actor{ID: "system", Name: "System"}

// =============================================================================
// MONEY
// =============================================================================

// RoundMoney rounds half away from zero to 2 decimals.
func RoundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// =============================================================================
// ENUMS
// =============================================================================

// AttendanceStatus is the closed set of DTR statuses.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusHalfDay AttendanceStatus = "half_day"
	StatusOnLeave AttendanceStatus = "on_leave"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusOnLeave:
		return true
	}
	return false
}

// RequiresTimes reports whether time-in and time-out are mandatory.
func (s AttendanceStatus) RequiresTimes() bool {
	switch s {
	case StatusPresent, StatusLate, StatusHalfDay:
		return true
	case StatusAbsent, StatusOnLeave:
		return false
	}
	return false
}

// PayrollStatus is the payroll lifecycle.
//
//	pending ──▶ processing | completed | rejected   (terminal)
type PayrollStatus string

const (
	PayrollPending    PayrollStatus = "pending"
	PayrollProcessing PayrollStatus = "processing"
	PayrollCompleted  PayrollStatus = "completed"
	PayrollRejected   PayrollStatus = "rejected"
)

func (s PayrollStatus) Valid() bool {
	switch s {
	case PayrollPending, PayrollProcessing, PayrollCompleted, PayrollRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether an update may move s to next.
// Re-applying the current status is always allowed.
func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case PayrollPending:
		return next.Valid()
	case PayrollProcessing, PayrollCompleted, PayrollRejected:
		return false
	}
	return false
}

// PaymentMethod is how money changed hands, for payroll and tuition alike.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCheck        PaymentMethod = "check"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
	MethodOnline       PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCheck, MethodBankTransfer, MethodCard, MethodOnline:
		return true
	}
	return false
}

// PaymentType distinguishes tuition payments (which move an enrollment
// balance) from document request fees (which don't).
type PaymentType string

const (
	PaymentTuition  PaymentType = "tuition"
	PaymentDocument PaymentType = "document"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTuition, PaymentDocument:
		return true
	}
	return false
}

// =============================================================================
// DIRECTORY ENTITIES
// =============================================================================

type Employee struct {
	ID            EmployeeID
	Name          string
	Position      string
	DepartmentID  string
	MonthlySalary decimal.Decimal
	CreatedAt     time.Time
}

type Student struct {
	ID            StudentID
	StudentNumber string
	Name          string
	CreatedAt     time.Time
}

// =============================================================================
// ATTENDANCE RECORD (DTR)
// =============================================================================

type AttendanceRecord struct {
	ID         AttendanceID
	EmployeeID EmployeeID
	Date       Date

	TimeIn        *TimeOfDay
	TimeOut       *TimeOfDay
	LunchStart    *TimeOfDay
	LunchEnd      *TimeOfDay
	OvertimeStart *TimeOfDay
	OvertimeEnd   *TimeOfDay

	Status    AttendanceStatus
	LeaveType string
	Remarks   string

	// Derived
	HoursWorked   decimal.Decimal
	OvertimeHours decimal.Decimal
	PayPeriod     Date
	IsPaid        bool

	// Audit fields
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// PAYROLL RECORD
// =============================================================================

type PayrollRecord struct {
	ID          PayrollID
	EmployeeID  EmployeeID
	PeriodStart Date
	PeriodEnd   Date

	HourlyRate         decimal.Decimal
	TotalHours         decimal.Decimal
	TotalOvertimeHours decimal.Decimal

	BasicSalary decimal.Decimal
	OvertimePay decimal.Decimal
	Allowances  decimal.Decimal
	Deductions  decimal.Decimal
	Tax         decimal.Decimal
	NetSalary   decimal.Decimal

	PaymentMethod PaymentMethod
	Status        PayrollStatus
	Remarks       string
	PaidAt        *time.Time

	// AttendanceIDs are the DTRs aggregated into this run.
	AttendanceIDs []AttendanceID

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ComputeNet applies net = basic + overtime + allowances - deductions - tax.
func (p *PayrollRecord) ComputeNet() {
	p.NetSalary = RoundMoney(p.BasicSalary.
		Add(p.OvertimePay).
		Add(p.Allowances).
		Sub(p.Deductions).
		Sub(p.Tax))
}

// =============================================================================
// TUITION
// =============================================================================

type Enrollment struct {
	ID               EnrollmentID
	StudentID        StudentID
	Course           string
	AcademicYear     string
	Semester         string
	TotalFee         decimal.Decimal
	RemainingBalance decimal.Decimal
	CreatedAt        time.Time
}

type Payment struct {
	ID            PaymentID
	Type          PaymentType
	StudentID     StudentID
	EnrollmentID  EnrollmentID // empty for document payments
	DocumentRef   string       // document request reference for document payments
	Amount        decimal.Decimal
	Method        PaymentMethod
	ReceiptNumber string
	Remarks       string
	PaidAt        time.Time

	CashierID   string
	CashierName string
}
