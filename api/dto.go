/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Directory:
    EmployeeDTO, CreateEmployeeRequest, StudentDTO, CreateStudentRequest

  Attendance:
    AttendanceDTO, AttendanceRequest, PeriodSummaryDTO

  Payroll:
    PayrollDTO, RunPayrollRequest, UpdatePayrollRequest

  Tuition:
    EnrollmentDTO, CreateEnrollmentRequest, PaymentDTO, ReceiptDTO,
    RecordPaymentRequest, DocumentPaymentRequest

VALIDATION:
  Request types carry go-playground/validator tags for shape checks
  (required, oneof, date layout). Business rules (time windows, balances,
  state transitions) are enforced by the services.

MONEY:
  Amounts are accepted as JSON numbers or strings and returned as strings
  with two decimals ("2000.00") so clients never see float rounding.

SEE ALSO:
  - validate.go: validator setup and error conversion
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/campus-ledger/attendance"
	"github.com/warp/campus-ledger/domain"
	"github.com/warp/campus-ledger/payroll"
	"github.com/warp/campus-ledger/tuition"
)

// =============================================================================
// DIRECTORY
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Position      string `json:"position"`
	DepartmentID  string `json:"department_id,omitempty"`
	MonthlySalary string `json:"monthly_salary"`
	HourlyRate    string `json:"hourly_rate"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID            string          `json:"id" validate:"omitempty,max=64"`
	Name          string          `json:"name" validate:"required,max=200"`
	Position      string          `json:"position" validate:"max=100"`
	DepartmentID  string          `json:"department_id" validate:"max=64"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
}

// StudentDTO represents a student in API responses.
type StudentDTO struct {
	ID            string `json:"id"`
	StudentNumber string `json:"student_number"`
	Name          string `json:"name"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// CreateStudentRequest is the request to register a student.
type CreateStudentRequest struct {
	ID            string `json:"id" validate:"omitempty,max=64"`
	StudentNumber string `json:"student_number" validate:"required,max=32"`
	Name          string `json:"name" validate:"required,max=200"`
}

func toEmployeeDTO(e domain.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:            string(e.ID),
		Name:          e.Name,
		Position:      e.Position,
		DepartmentID:  e.DepartmentID,
		MonthlySalary: money(e.MonthlySalary),
		HourlyRate:    money(payroll.HourlyRate(e.MonthlySalary)),
		CreatedAt:     timestamp(e.CreatedAt),
	}
}

func toStudentDTO(s domain.Student) StudentDTO {
	return StudentDTO{
		ID:            string(s.ID),
		StudentNumber: s.StudentNumber,
		Name:          s.Name,
		CreatedAt:     timestamp(s.CreatedAt),
	}
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceRequest is the body of attendance create and update calls.
// Clock fields are "HH:MM" (seconds are accepted and ignored).
type AttendanceRequest struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Status        string `json:"status" validate:"required,oneof=present absent late half_day on_leave"`
	TimeIn        string `json:"time_in"`
	TimeOut       string `json:"time_out"`
	LunchStart    string `json:"lunch_start"`
	LunchEnd      string `json:"lunch_end"`
	OvertimeStart string `json:"overtime_start"`
	OvertimeEnd   string `json:"overtime_end"`
	LeaveType     string `json:"leave_type" validate:"max=50"`
	Remarks       string `json:"remarks" validate:"max=500"`
}

// AttendanceDTO represents a DTR in API responses.
type AttendanceDTO struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	Date          string `json:"date"`
	TimeIn        string `json:"time_in,omitempty"`
	TimeOut       string `json:"time_out,omitempty"`
	LunchStart    string `json:"lunch_start,omitempty"`
	LunchEnd      string `json:"lunch_end,omitempty"`
	OvertimeStart string `json:"overtime_start,omitempty"`
	OvertimeEnd   string `json:"overtime_end,omitempty"`
	Status        string `json:"status"`
	LeaveType     string `json:"leave_type,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
	HoursWorked   string `json:"hours_worked"`
	OvertimeHours string `json:"overtime_hours"`
	PayPeriod     string `json:"pay_period"`
	IsPaid        bool   `json:"is_paid"`
	CreatedBy     string `json:"created_by,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// PeriodSummaryDTO aggregates DTRs of one pay period.
type PeriodSummaryDTO struct {
	PeriodStart        string `json:"period_start"`
	PeriodEnd          string `json:"period_end"`
	DaysWorked         int    `json:"days_worked"`
	DaysAbsent         int    `json:"days_absent"`
	DaysOnLeave        int    `json:"days_on_leave"`
	TotalHours         string `json:"total_hours"`
	TotalOvertimeHours string `json:"total_overtime_hours"`
	UnpaidRecords      int    `json:"unpaid_records"`
}

func toAttendanceDTO(r domain.AttendanceRecord) AttendanceDTO {
	return AttendanceDTO{
		ID:            string(r.ID),
		EmployeeID:    string(r.EmployeeID),
		Date:          r.Date.String(),
		TimeIn:        domain.FormatTimeOfDay(r.TimeIn),
		TimeOut:       domain.FormatTimeOfDay(r.TimeOut),
		LunchStart:    domain.FormatTimeOfDay(r.LunchStart),
		LunchEnd:      domain.FormatTimeOfDay(r.LunchEnd),
		OvertimeStart: domain.FormatTimeOfDay(r.OvertimeStart),
		OvertimeEnd:   domain.FormatTimeOfDay(r.OvertimeEnd),
		Status:        string(r.Status),
		LeaveType:     r.LeaveType,
		Remarks:       r.Remarks,
		HoursWorked:   money(r.HoursWorked),
		OvertimeHours: money(r.OvertimeHours),
		PayPeriod:     r.PayPeriod.String(),
		IsPaid:        r.IsPaid,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     timestamp(r.CreatedAt),
		UpdatedAt:     timestamp(r.UpdatedAt),
	}
}

func toPeriodSummaryDTO(s attendance.PeriodSummary) PeriodSummaryDTO {
	return PeriodSummaryDTO{
		PeriodStart:        s.Period.Start.String(),
		PeriodEnd:          s.Period.End.String(),
		DaysWorked:         s.DaysWorked,
		DaysAbsent:         s.DaysAbsent,
		DaysOnLeave:        s.DaysOnLeave,
		TotalHours:         money(s.TotalHours),
		TotalOvertimeHours: money(s.TotalOvertime),
		UnpaidRecords:      s.UnpaidRecords,
	}
}

// =============================================================================
// PAYROLL
// =============================================================================

// RunPayrollRequest is the body of payroll create and preview calls.
type RunPayrollRequest struct {
	EmployeeID     string          `json:"employee_id" validate:"required"`
	PayPeriodStart string          `json:"pay_period_start" validate:"required,datetime=2006-01-02"`
	PayPeriodEnd   string          `json:"pay_period_end" validate:"required,datetime=2006-01-02"`
	Allowances     decimal.Decimal `json:"allowances"`
	Deductions     decimal.Decimal `json:"deductions"`
	PaymentMethod  string          `json:"payment_method" validate:"required,oneof=cash check bank_transfer card online"`
	Remarks        string          `json:"remarks" validate:"max=500"`
}

// UpdatePayrollRequest carries optional payroll changes.
type UpdatePayrollRequest struct {
	Allowances    *decimal.Decimal `json:"allowances"`
	Deductions    *decimal.Decimal `json:"deductions"`
	PaymentMethod *string          `json:"payment_method" validate:"omitempty,oneof=cash check bank_transfer card online"`
	Remarks       *string          `json:"remarks" validate:"omitempty,max=500"`
	Status        *string          `json:"status" validate:"omitempty,oneof=pending processing completed rejected"`
}

// PayrollDTO represents a payroll run in API responses.
type PayrollDTO struct {
	ID                 string   `json:"id,omitempty"`
	EmployeeID         string   `json:"employee_id"`
	PayPeriodStart     string   `json:"pay_period_start"`
	PayPeriodEnd       string   `json:"pay_period_end"`
	HourlyRate         string   `json:"hourly_rate"`
	TotalHours         string   `json:"total_hours"`
	TotalOvertimeHours string   `json:"total_overtime_hours"`
	BasicSalary        string   `json:"basic_salary"`
	OvertimePay        string   `json:"overtime_pay"`
	Allowances         string   `json:"allowances"`
	Deductions         string   `json:"deductions"`
	Tax                string   `json:"tax"`
	NetSalary          string   `json:"net_salary"`
	PaymentMethod      string   `json:"payment_method"`
	Status             string   `json:"status"`
	Remarks            string   `json:"remarks,omitempty"`
	PaidAt             string   `json:"paid_at,omitempty"`
	AttendanceIDs      []string `json:"attendance_ids"`
	CreatedBy          string   `json:"created_by,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
	UpdatedAt          string   `json:"updated_at,omitempty"`
}

func toPayrollDTO(p domain.PayrollRecord) PayrollDTO {
	ids := make([]string, len(p.AttendanceIDs))
	for i, id := range p.AttendanceIDs {
		ids[i] = string(id)
	}
	dto := PayrollDTO{
		ID:                 string(p.ID),
		EmployeeID:         string(p.EmployeeID),
		PayPeriodStart:     p.PeriodStart.String(),
		PayPeriodEnd:       p.PeriodEnd.String(),
		HourlyRate:         money(p.HourlyRate),
		TotalHours:         money(p.TotalHours),
		TotalOvertimeHours: money(p.TotalOvertimeHours),
		BasicSalary:        money(p.BasicSalary),
		OvertimePay:        money(p.OvertimePay),
		Allowances:         money(p.Allowances),
		Deductions:         money(p.Deductions),
		Tax:                money(p.Tax),
		NetSalary:          money(p.NetSalary),
		PaymentMethod:      string(p.PaymentMethod),
		Status:             string(p.Status),
		Remarks:            p.Remarks,
		AttendanceIDs:      ids,
		CreatedBy:          p.CreatedBy,
		CreatedAt:          timestamp(p.CreatedAt),
		UpdatedAt:          timestamp(p.UpdatedAt),
	}
	if p.PaidAt != nil {
		dto.PaidAt = timestamp(*p.PaidAt)
	}
	return dto
}

// =============================================================================
// TUITION
// =============================================================================

// CreateEnrollmentRequest registers a student for a course.
type CreateEnrollmentRequest struct {
	StudentID    string          `json:"student_id" validate:"required"`
	Course       string          `json:"course" validate:"required,max=200"`
	AcademicYear string          `json:"academic_year" validate:"max=20"`
	Semester     string          `json:"semester" validate:"max=20"`
	TotalFee     decimal.Decimal `json:"total_fee"`
}

// RecordPaymentRequest is a tuition payment.
type RecordPaymentRequest struct {
	StudentID     string          `json:"student_id" validate:"required"`
	EnrollmentID  string          `json:"enrollment_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash check bank_transfer card online"`
	Remarks       string          `json:"remarks" validate:"max=500"`
}

// DocumentPaymentRequest is a document request fee.
type DocumentPaymentRequest struct {
	StudentID     string          `json:"student_id" validate:"required"`
	DocumentRef   string          `json:"document_ref" validate:"required,max=100"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash check bank_transfer card online"`
	Remarks       string          `json:"remarks" validate:"max=500"`
}

// EnrollmentDTO represents an enrollment and its balance.
type EnrollmentDTO struct {
	ID               string `json:"id"`
	StudentID        string `json:"student_id"`
	Course           string `json:"course"`
	AcademicYear     string `json:"academic_year,omitempty"`
	Semester         string `json:"semester,omitempty"`
	TotalFee         string `json:"total_fee"`
	RemainingBalance string `json:"remaining_balance"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// PaymentDTO represents a payment in API responses.
type PaymentDTO struct {
	ID            string `json:"id"`
	PaymentType   string `json:"payment_type"`
	StudentID     string `json:"student_id"`
	EnrollmentID  string `json:"enrollment_id,omitempty"`
	DocumentRef   string `json:"document_ref,omitempty"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	ReceiptNumber string `json:"receipt_number"`
	Remarks       string `json:"remarks,omitempty"`
	PaidAt        string `json:"paid_at"`
	CashierName   string `json:"cashier_name,omitempty"`
}

// ReceiptDTO is the printable receipt view.
type ReceiptDTO struct {
	Payment    PaymentDTO     `json:"payment"`
	Student    StudentDTO     `json:"student"`
	Enrollment *EnrollmentDTO `json:"enrollment,omitempty"`
}

func toEnrollmentDTO(e domain.Enrollment) EnrollmentDTO {
	return EnrollmentDTO{
		ID:               string(e.ID),
		StudentID:        string(e.StudentID),
		Course:           e.Course,
		AcademicYear:     e.AcademicYear,
		Semester:         e.Semester,
		TotalFee:         money(e.TotalFee),
		RemainingBalance: money(e.RemainingBalance),
		CreatedAt:        timestamp(e.CreatedAt),
	}
}

func toPaymentDTO(p domain.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            string(p.ID),
		PaymentType:   string(p.Type),
		StudentID:     string(p.StudentID),
		EnrollmentID:  string(p.EnrollmentID),
		DocumentRef:   p.DocumentRef,
		Amount:        money(p.Amount),
		PaymentMethod: string(p.Method),
		ReceiptNumber: p.ReceiptNumber,
		Remarks:       p.Remarks,
		PaidAt:        timestamp(p.PaidAt),
		CashierName:   p.CashierName,
	}
}

func toReceiptDTO(r tuition.Receipt) ReceiptDTO {
	dto := ReceiptDTO{
		Payment: toPaymentDTO(r.Payment),
		Student: toStudentDTO(r.Student),
	}
	if r.Enrollment != nil {
		e := toEnrollmentDTO(*r.Enrollment)
		dto.Enrollment = &e
	}
	return dto
}

// =============================================================================
// SHARED
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
