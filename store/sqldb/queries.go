package sqldb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/campus-ledger/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// queries implements domain.Store against a database handle or a transaction.
type queries struct {
	db      querier
	dialect Dialect
}

var _ domain.Store = (*queries)(nil)

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.dialect.rebind(query), args...)
}

func (q *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.dialect.rebind(query), args...)
}

func (q *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.rebind(query), args...)
}

// =============================================================================
// DIRECTORY
// =============================================================================

// SaveEmployee inserts or updates an employee.
func (q *queries) SaveEmployee(ctx context.Context, emp domain.Employee) error {
	_, err := q.exec(ctx, `
		INSERT INTO employees (id, name, position, department_id, monthly_salary, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			position = excluded.position,
			department_id = excluded.department_id,
			monthly_salary = excluded.monthly_salary
	`, emp.ID, emp.Name, emp.Position, emp.DepartmentID, emp.MonthlySalary, formatTime(emp.CreatedAt))
	return storageErr("save employee", err)
}

const employeeColumns = `id, name, position, department_id, monthly_salary, created_at`

func scanEmployee(row scanner) (domain.Employee, error) {
	var emp domain.Employee
	var createdAt string
	err := row.Scan(&emp.ID, &emp.Name, &emp.Position, &emp.DepartmentID, &emp.MonthlySalary, &createdAt)
	emp.CreatedAt = parseTime(createdAt)
	return emp, err
}

// GetEmployee retrieves an employee by ID.
func (q *queries) GetEmployee(ctx context.Context, id domain.EmployeeID) (*domain.Employee, error) {
	emp, err := scanEmployee(q.queryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get employee", err)
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (q *queries) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := q.query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name`)
	if err != nil {
		return nil, storageErr("list employees", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, storageErr("scan employee", err)
		}
		employees = append(employees, emp)
	}
	return employees, storageErr("list employees", rows.Err())
}

// SaveStudent inserts or updates a student.
func (q *queries) SaveStudent(ctx context.Context, st domain.Student) error {
	_, err := q.exec(ctx, `
		INSERT INTO students (id, student_number, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			student_number = excluded.student_number,
			name = excluded.name
	`, st.ID, st.StudentNumber, st.Name, formatTime(st.CreatedAt))
	return storageErr("save student", err)
}

func scanStudent(row scanner) (domain.Student, error) {
	var st domain.Student
	var createdAt string
	err := row.Scan(&st.ID, &st.StudentNumber, &st.Name, &createdAt)
	st.CreatedAt = parseTime(createdAt)
	return st, err
}

// GetStudent retrieves a student by ID.
func (q *queries) GetStudent(ctx context.Context, id domain.StudentID) (*domain.Student, error) {
	st, err := scanStudent(q.queryRow(ctx,
		`SELECT id, student_number, name, created_at FROM students WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get student", err)
	}
	return &st, nil
}

// ListStudents returns all students ordered by name.
func (q *queries) ListStudents(ctx context.Context) ([]domain.Student, error) {
	rows, err := q.query(ctx, `SELECT id, student_number, name, created_at FROM students ORDER BY name`)
	if err != nil {
		return nil, storageErr("list students", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, storageErr("scan student", err)
		}
		students = append(students, st)
	}
	return students, storageErr("list students", rows.Err())
}

// =============================================================================
// ATTENDANCE
// =============================================================================

const attendanceColumns = `id, employee_id, date, time_in, time_out, lunch_start, lunch_end,
	overtime_start, overtime_end, status, leave_type, remarks, hours_worked,
	overtime_hours, pay_period, is_paid, created_by, created_at, updated_at`

func attendanceDuplicate(rec domain.AttendanceRecord) error {
	return &domain.DuplicateRecordError{
		Entity: "attendance",
		Key:    string(rec.EmployeeID) + " on " + rec.Date.String(),
	}
}

// InsertAttendance adds a DTR. The unique index rejects a second record for
// the same employee and day.
func (q *queries) InsertAttendance(ctx context.Context, rec domain.AttendanceRecord) error {
	_, err := q.exec(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.EmployeeID, rec.Date.String(),
		nullClock(rec.TimeIn), nullClock(rec.TimeOut),
		nullClock(rec.LunchStart), nullClock(rec.LunchEnd),
		nullClock(rec.OvertimeStart), nullClock(rec.OvertimeEnd),
		rec.Status, rec.LeaveType, rec.Remarks,
		rec.HoursWorked, rec.OvertimeHours, rec.PayPeriod.String(), rec.IsPaid,
		rec.CreatedBy, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return attendanceDuplicate(rec)
	}
	return storageErr("insert attendance", err)
}

// UpdateAttendance rewrites every column except id, is_paid and audit
// creation fields.
func (q *queries) UpdateAttendance(ctx context.Context, rec domain.AttendanceRecord) error {
	res, err := q.exec(ctx, `
		UPDATE attendance SET
			employee_id = ?, date = ?, time_in = ?, time_out = ?,
			lunch_start = ?, lunch_end = ?, overtime_start = ?, overtime_end = ?,
			status = ?, leave_type = ?, remarks = ?,
			hours_worked = ?, overtime_hours = ?, pay_period = ?, updated_at = ?
		WHERE id = ?
	`,
		rec.EmployeeID, rec.Date.String(),
		nullClock(rec.TimeIn), nullClock(rec.TimeOut),
		nullClock(rec.LunchStart), nullClock(rec.LunchEnd),
		nullClock(rec.OvertimeStart), nullClock(rec.OvertimeEnd),
		rec.Status, rec.LeaveType, rec.Remarks,
		rec.HoursWorked, rec.OvertimeHours, rec.PayPeriod.String(), formatTime(rec.UpdatedAt),
		rec.ID,
	)
	if isUniqueViolation(err) {
		return attendanceDuplicate(rec)
	}
	if err != nil {
		return storageErr("update attendance", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: "attendance", ID: string(rec.ID)}
	}
	return nil
}

// DeleteAttendance removes a DTR.
func (q *queries) DeleteAttendance(ctx context.Context, id domain.AttendanceID) error {
	_, err := q.exec(ctx, `DELETE FROM attendance WHERE id = ?`, id)
	return storageErr("delete attendance", err)
}

func scanAttendance(row scanner) (domain.AttendanceRecord, error) {
	var (
		rec                        domain.AttendanceRecord
		date, payPeriod            string
		timeIn, timeOut            sql.NullString
		lunchStart, lunchEnd       sql.NullString
		overtimeStart, overtimeEnd sql.NullString
		createdAt, updatedAt       string
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &date,
		&timeIn, &timeOut, &lunchStart, &lunchEnd, &overtimeStart, &overtimeEnd,
		&rec.Status, &rec.LeaveType, &rec.Remarks,
		&rec.HoursWorked, &rec.OvertimeHours, &payPeriod, &rec.IsPaid,
		&rec.CreatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return rec, err
	}

	rec.Date, _ = domain.ParseDate(date)
	rec.PayPeriod, _ = domain.ParseDate(payPeriod)
	rec.TimeIn = parseClock(timeIn)
	rec.TimeOut = parseClock(timeOut)
	rec.LunchStart = parseClock(lunchStart)
	rec.LunchEnd = parseClock(lunchEnd)
	rec.OvertimeStart = parseClock(overtimeStart)
	rec.OvertimeEnd = parseClock(overtimeEnd)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return rec, nil
}

// GetAttendance retrieves a DTR by ID.
func (q *queries) GetAttendance(ctx context.Context, id domain.AttendanceID) (*domain.AttendanceRecord, error) {
	rec, err := scanAttendance(q.queryRow(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get attendance", err)
	}
	return &rec, nil
}

// FindAttendance returns the employee's DTR for date, if any.
func (q *queries) FindAttendance(ctx context.Context, employeeID domain.EmployeeID, date domain.Date) (*domain.AttendanceRecord, error) {
	rec, err := scanAttendance(q.queryRow(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE employee_id = ? AND date = ?`,
		employeeID, date.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find attendance", err)
	}
	return &rec, nil
}

// ListAttendance returns the employee's DTRs in [from, to], oldest first.
func (q *queries) ListAttendance(ctx context.Context, employeeID domain.EmployeeID, from, to domain.Date, unpaidOnly bool) ([]domain.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance
		WHERE employee_id = ? AND date >= ? AND date <= ?`
	args := []any{employeeID, from.String(), to.String()}
	if unpaidOnly {
		query += ` AND is_paid = ?`
		args = append(args, false)
	}
	query += ` ORDER BY date`

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list attendance", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, storageErr("scan attendance", err)
		}
		records = append(records, rec)
	}
	return records, storageErr("list attendance", rows.Err())
}

// SetAttendancePaid flips is_paid on the given DTRs.
func (q *queries) SetAttendancePaid(ctx context.Context, ids []domain.AttendanceID, paid bool) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, paid)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := q.exec(ctx,
		`UPDATE attendance SET is_paid = ? WHERE id IN (`+placeholders(len(ids))+`)`,
		args...)
	return storageErr("set attendance paid", err)
}

// =============================================================================
// PAYROLL
// =============================================================================

const payrollColumns = `id, employee_id, period_start, period_end, hourly_rate, total_hours,
	total_overtime_hours, basic_salary, overtime_pay, allowances, deductions, tax,
	net_salary, payment_method, status, remarks, paid_at, created_by, created_at, updated_at`

// InsertPayroll persists the run and its covered attendance ids.
func (q *queries) InsertPayroll(ctx context.Context, p domain.PayrollRecord) error {
	_, err := q.exec(ctx, `
		INSERT INTO payrolls (`+payrollColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.EmployeeID, p.PeriodStart.String(), p.PeriodEnd.String(),
		p.HourlyRate, p.TotalHours, p.TotalOvertimeHours,
		p.BasicSalary, p.OvertimePay, p.Allowances, p.Deductions, p.Tax, p.NetSalary,
		p.PaymentMethod, p.Status, p.Remarks, nullTime(p.PaidAt),
		p.CreatedBy, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return &domain.DuplicateRecordError{Entity: "payroll", Key: "id " + string(p.ID)}
	}
	if err != nil {
		return storageErr("insert payroll", err)
	}

	for _, id := range p.AttendanceIDs {
		if _, err := q.exec(ctx,
			`INSERT INTO payroll_attendance (payroll_id, attendance_id) VALUES (?, ?)`,
			p.ID, id); err != nil {
			return storageErr("link payroll attendance", err)
		}
	}
	return nil
}

// UpdatePayroll rewrites the mutable payroll columns. Covered ids are fixed
// at creation.
func (q *queries) UpdatePayroll(ctx context.Context, p domain.PayrollRecord) error {
	res, err := q.exec(ctx, `
		UPDATE payrolls SET
			allowances = ?, deductions = ?, tax = ?, net_salary = ?,
			payment_method = ?, status = ?, remarks = ?, paid_at = ?, updated_at = ?
		WHERE id = ?
	`,
		p.Allowances, p.Deductions, p.Tax, p.NetSalary,
		p.PaymentMethod, p.Status, p.Remarks, nullTime(p.PaidAt), formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return storageErr("update payroll", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: "payroll", ID: string(p.ID)}
	}
	return nil
}

// DeletePayroll removes a run and its attendance links.
func (q *queries) DeletePayroll(ctx context.Context, id domain.PayrollID) error {
	if _, err := q.exec(ctx, `DELETE FROM payroll_attendance WHERE payroll_id = ?`, id); err != nil {
		return storageErr("unlink payroll attendance", err)
	}
	_, err := q.exec(ctx, `DELETE FROM payrolls WHERE id = ?`, id)
	return storageErr("delete payroll", err)
}

func scanPayroll(row scanner) (domain.PayrollRecord, error) {
	var (
		p                      domain.PayrollRecord
		periodStart, periodEnd string
		paidAt                 sql.NullString
		createdAt, updatedAt   string
	)
	err := row.Scan(
		&p.ID, &p.EmployeeID, &periodStart, &periodEnd,
		&p.HourlyRate, &p.TotalHours, &p.TotalOvertimeHours,
		&p.BasicSalary, &p.OvertimePay, &p.Allowances, &p.Deductions, &p.Tax, &p.NetSalary,
		&p.PaymentMethod, &p.Status, &p.Remarks, &paidAt,
		&p.CreatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return p, err
	}
	p.PeriodStart, _ = domain.ParseDate(periodStart)
	p.PeriodEnd, _ = domain.ParseDate(periodEnd)
	if paidAt.Valid {
		t := parseTime(paidAt.String)
		p.PaidAt = &t
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

func (q *queries) coveredAttendance(ctx context.Context, id domain.PayrollID) ([]domain.AttendanceID, error) {
	rows, err := q.query(ctx, `
		SELECT pa.attendance_id FROM payroll_attendance pa
		JOIN attendance a ON a.id = pa.attendance_id
		WHERE pa.payroll_id = ?
		ORDER BY a.date
	`, id)
	if err != nil {
		return nil, storageErr("load payroll attendance", err)
	}
	defer rows.Close()

	var ids []domain.AttendanceID
	for rows.Next() {
		var aid domain.AttendanceID
		if err := rows.Scan(&aid); err != nil {
			return nil, storageErr("scan payroll attendance", err)
		}
		ids = append(ids, aid)
	}
	return ids, storageErr("load payroll attendance", rows.Err())
}

// GetPayroll retrieves a run with its covered attendance ids.
func (q *queries) GetPayroll(ctx context.Context, id domain.PayrollID) (*domain.PayrollRecord, error) {
	p, err := scanPayroll(q.queryRow(ctx, `SELECT `+payrollColumns+` FROM payrolls WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get payroll", err)
	}
	if p.AttendanceIDs, err = q.coveredAttendance(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPayrolls returns runs for one employee, or all runs when employeeID is
// empty.
func (q *queries) ListPayrolls(ctx context.Context, employeeID domain.EmployeeID) ([]domain.PayrollRecord, error) {
	query := `SELECT ` + payrollColumns + ` FROM payrolls`
	var args []any
	if employeeID != "" {
		query += ` WHERE employee_id = ?`
		args = append(args, employeeID)
	}
	query += ` ORDER BY period_start, created_at`

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list payrolls", err)
	}

	var payrolls []domain.PayrollRecord
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			rows.Close()
			return nil, storageErr("scan payroll", err)
		}
		payrolls = append(payrolls, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storageErr("list payrolls", err)
	}
	// Release the connection before the per-run lookups; SQLite has only one.
	rows.Close()

	for i := range payrolls {
		if payrolls[i].AttendanceIDs, err = q.coveredAttendance(ctx, payrolls[i].ID); err != nil {
			return nil, err
		}
	}
	return payrolls, nil
}

// =============================================================================
// TUITION
// =============================================================================

// SaveEnrollment inserts or updates an enrollment.
func (q *queries) SaveEnrollment(ctx context.Context, e domain.Enrollment) error {
	_, err := q.exec(ctx, `
		INSERT INTO enrollments (id, student_id, course, academic_year, semester, total_fee, remaining_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			course = excluded.course,
			academic_year = excluded.academic_year,
			semester = excluded.semester,
			total_fee = excluded.total_fee,
			remaining_balance = excluded.remaining_balance
	`, e.ID, e.StudentID, e.Course, e.AcademicYear, e.Semester, e.TotalFee, e.RemainingBalance, formatTime(e.CreatedAt))
	return storageErr("save enrollment", err)
}

// GetEnrollment retrieves an enrollment by ID.
func (q *queries) GetEnrollment(ctx context.Context, id domain.EnrollmentID) (*domain.Enrollment, error) {
	var e domain.Enrollment
	var createdAt string
	err := q.queryRow(ctx, `
		SELECT id, student_id, course, academic_year, semester, total_fee, remaining_balance, created_at
		FROM enrollments WHERE id = ?
	`, id).Scan(&e.ID, &e.StudentID, &e.Course, &e.AcademicYear, &e.Semester, &e.TotalFee, &e.RemainingBalance, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get enrollment", err)
	}
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

// SetRemainingBalance stores a recomputed balance.
func (q *queries) SetRemainingBalance(ctx context.Context, id domain.EnrollmentID, balance decimal.Decimal) error {
	res, err := q.exec(ctx, `UPDATE enrollments SET remaining_balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return storageErr("set remaining balance", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: "enrollment", ID: string(id)}
	}
	return nil
}

const paymentColumns = `id, payment_type, student_id, enrollment_id, document_ref, amount,
	payment_method, receipt_number, remarks, paid_at, cashier_id, cashier_name`

// InsertPayment adds a payment. Receipt numbers are unique.
func (q *queries) InsertPayment(ctx context.Context, p domain.Payment) error {
	_, err := q.exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.Type, p.StudentID, nullString(string(p.EnrollmentID)), p.DocumentRef, p.Amount,
		p.Method, p.ReceiptNumber, p.Remarks, formatTime(p.PaidAt), p.CashierID, p.CashierName,
	)
	if isUniqueViolation(err) {
		return &domain.DuplicateRecordError{Entity: "payment", Key: "receipt " + p.ReceiptNumber}
	}
	return storageErr("insert payment", err)
}

// DeletePayment removes a payment.
func (q *queries) DeletePayment(ctx context.Context, id domain.PaymentID) error {
	_, err := q.exec(ctx, `DELETE FROM payments WHERE id = ?`, id)
	return storageErr("delete payment", err)
}

func scanPayment(row scanner) (domain.Payment, error) {
	var (
		p            domain.Payment
		enrollmentID sql.NullString
		paidAt       string
	)
	err := row.Scan(&p.ID, &p.Type, &p.StudentID, &enrollmentID, &p.DocumentRef, &p.Amount,
		&p.Method, &p.ReceiptNumber, &p.Remarks, &paidAt, &p.CashierID, &p.CashierName)
	p.EnrollmentID = domain.EnrollmentID(enrollmentID.String)
	p.PaidAt = parseTime(paidAt)
	return p, err
}

// GetPayment retrieves a payment by ID.
func (q *queries) GetPayment(ctx context.Context, id domain.PaymentID) (*domain.Payment, error) {
	p, err := scanPayment(q.queryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get payment", err)
	}
	return &p, nil
}

// ListPayments returns the payments of an enrollment, oldest first.
func (q *queries) ListPayments(ctx context.Context, enrollmentID domain.EnrollmentID) ([]domain.Payment, error) {
	rows, err := q.query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE enrollment_id = ? ORDER BY paid_at, receipt_number`,
		enrollmentID)
	if err != nil {
		return nil, storageErr("list payments", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, storageErr("scan payment", err)
		}
		payments = append(payments, p)
	}
	return payments, storageErr("list payments", rows.Err())
}

// SumPayments totals an enrollment's payments. Amounts are TEXT decimals, so
// the sum is taken in Go to keep exact precision on both drivers.
func (q *queries) SumPayments(ctx context.Context, enrollmentID domain.EnrollmentID) (decimal.Decimal, error) {
	rows, err := q.query(ctx, `SELECT amount FROM payments WHERE enrollment_id = ?`, enrollmentID)
	if err != nil {
		return decimal.Zero, storageErr("sum payments", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, storageErr("scan payment amount", err)
		}
		total = total.Add(amount)
	}
	return total, storageErr("sum payments", rows.Err())
}

// =============================================================================
// HELPERS
// =============================================================================

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullClock(t *domain.TimeOfDay) sql.NullString {
	return nullString(domain.FormatTimeOfDay(t))
}

func parseClock(ns sql.NullString) *domain.TimeOfDay {
	if !ns.Valid {
		return nil
	}
	t, err := domain.ParseTimeOfDay(ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
