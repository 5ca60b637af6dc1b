// Package store provides an in-memory domain.TxStore.
package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/campus-ledger/domain"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is a domain.TxStore backed by maps. WithTx is simulated with a
// snapshot taken before fn runs and restored if fn fails.
type Memory struct {
	mu sync.RWMutex
	d  *data
}

type dayKey struct {
	EmployeeID domain.EmployeeID
	Date       string
}

type data struct {
	employees       map[domain.EmployeeID]domain.Employee
	students        map[domain.StudentID]domain.Student
	attendance      map[domain.AttendanceID]domain.AttendanceRecord
	attendanceByDay map[dayKey]domain.AttendanceID
	payrolls        map[domain.PayrollID]domain.PayrollRecord
	enrollments     map[domain.EnrollmentID]domain.Enrollment
	payments        map[domain.PaymentID]domain.Payment
	receipts        map[string]domain.PaymentID
}

func newData() *data {
	return &data{
		employees:       make(map[domain.EmployeeID]domain.Employee),
		students:        make(map[domain.StudentID]domain.Student),
		attendance:      make(map[domain.AttendanceID]domain.AttendanceRecord),
		attendanceByDay: make(map[dayKey]domain.AttendanceID),
		payrolls:        make(map[domain.PayrollID]domain.PayrollRecord),
		enrollments:     make(map[domain.EnrollmentID]domain.Enrollment),
		payments:        make(map[domain.PaymentID]domain.Payment),
		receipts:        make(map[string]domain.PaymentID),
	}
}

// snapshot copies every table. Payroll id slices are cloned on write so a
// shallow copy of the maps is enough.
func (d *data) snapshot() *data {
	return &data{
		employees:       maps.Clone(d.employees),
		students:        maps.Clone(d.students),
		attendance:      maps.Clone(d.attendance),
		attendanceByDay: maps.Clone(d.attendanceByDay),
		payrolls:        maps.Clone(d.payrolls),
		enrollments:     maps.Clone(d.enrollments),
		payments:        maps.Clone(d.payments),
		receipts:        maps.Clone(d.receipts),
	}
}

func NewMemory() *Memory {
	return &Memory{d: newData()}
}

var (
	_ domain.TxStore = (*Memory)(nil)
	_ domain.Store   = (*view)(nil)
)

// WithTx executes fn within a transaction.
func (m *Memory) WithTx(ctx context.Context, fn func(domain.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.d.snapshot()
	if err := fn(&view{d: m.d}); err != nil {
		m.d = saved
		return err
	}
	return nil
}

func (m *Memory) unlocked() *view { return &view{d: m.d} }

// Directory

func (m *Memory) SaveEmployee(ctx context.Context, emp domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().SaveEmployee(ctx, emp)
}

func (m *Memory) GetEmployee(ctx context.Context, id domain.EmployeeID) (*domain.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().GetEmployee(ctx, id)
}

func (m *Memory) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().ListEmployees(ctx)
}

func (m *Memory) SaveStudent(ctx context.Context, st domain.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().SaveStudent(ctx, st)
}

func (m *Memory) GetStudent(ctx context.Context, id domain.StudentID) (*domain.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().GetStudent(ctx, id)
}

func (m *Memory) ListStudents(ctx context.Context) ([]domain.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().ListStudents(ctx)
}

// Attendance

func (m *Memory) InsertAttendance(ctx context.Context, rec domain.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().InsertAttendance(ctx, rec)
}

func (m *Memory) UpdateAttendance(ctx context.Context, rec domain.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().UpdateAttendance(ctx, rec)
}

func (m *Memory) DeleteAttendance(ctx context.Context, id domain.AttendanceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().DeleteAttendance(ctx, id)
}

func (m *Memory) GetAttendance(ctx context.Context, id domain.AttendanceID) (*domain.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().GetAttendance(ctx, id)
}

func (m *Memory) FindAttendance(ctx context.Context, employeeID domain.EmployeeID, date domain.Date) (*domain.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().FindAttendance(ctx, employeeID, date)
}

func (m *Memory) ListAttendance(ctx context.Context, employeeID domain.EmployeeID, from, to domain.Date, unpaidOnly bool) ([]domain.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().ListAttendance(ctx, employeeID, from, to, unpaidOnly)
}

func (m *Memory) SetAttendancePaid(ctx context.Context, ids []domain.AttendanceID, paid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().SetAttendancePaid(ctx, ids, paid)
}

// Payroll

func (m *Memory) InsertPayroll(ctx context.Context, p domain.PayrollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().InsertPayroll(ctx, p)
}

func (m *Memory) UpdatePayroll(ctx context.Context, p domain.PayrollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().UpdatePayroll(ctx, p)
}

func (m *Memory) DeletePayroll(ctx context.Context, id domain.PayrollID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().DeletePayroll(ctx, id)
}

func (m *Memory) GetPayroll(ctx context.Context, id domain.PayrollID) (*domain.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().GetPayroll(ctx, id)
}

func (m *Memory) ListPayrolls(ctx context.Context, employeeID domain.EmployeeID) ([]domain.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().ListPayrolls(ctx, employeeID)
}

// Tuition

func (m *Memory) SaveEnrollment(ctx context.Context, e domain.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().SaveEnrollment(ctx, e)
}

func (m *Memory) GetEnrollment(ctx context.Context, id domain.EnrollmentID) (*domain.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().GetEnrollment(ctx, id)
}

func (m *Memory) SetRemainingBalance(ctx context.Context, id domain.EnrollmentID, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().SetRemainingBalance(ctx, id, balance)
}

func (m *Memory) InsertPayment(ctx context.Context, p domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().InsertPayment(ctx, p)
}

func (m *Memory) DeletePayment(ctx context.Context, id domain.PaymentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked().DeletePayment(ctx, id)
}

func (m *Memory) GetPayment(ctx context.Context, id domain.PaymentID) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().GetPayment(ctx, id)
}

func (m *Memory) ListPayments(ctx context.Context, enrollmentID domain.EnrollmentID) ([]domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().ListPayments(ctx, enrollmentID)
}

func (m *Memory) SumPayments(ctx context.Context, enrollmentID domain.EnrollmentID) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unlocked().SumPayments(ctx, enrollmentID)
}

// =============================================================================
// VIEW - Lock-free implementation shared by Memory and WithTx
// =============================================================================

type view struct {
	d *data
}

func (v *view) SaveEmployee(_ context.Context, emp domain.Employee) error {
	v.d.employees[emp.ID] = emp
	return nil
}

func (v *view) GetEmployee(_ context.Context, id domain.EmployeeID) (*domain.Employee, error) {
	emp, ok := v.d.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (v *view) ListEmployees(_ context.Context) ([]domain.Employee, error) {
	result := make([]domain.Employee, 0, len(v.d.employees))
	for _, emp := range v.d.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (v *view) SaveStudent(_ context.Context, st domain.Student) error {
	v.d.students[st.ID] = st
	return nil
}

func (v *view) GetStudent(_ context.Context, id domain.StudentID) (*domain.Student, error) {
	st, ok := v.d.students[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (v *view) ListStudents(_ context.Context) ([]domain.Student, error) {
	result := make([]domain.Student, 0, len(v.d.students))
	for _, st := range v.d.students {
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (v *view) InsertAttendance(_ context.Context, rec domain.AttendanceRecord) error {
	k := dayKey{EmployeeID: rec.EmployeeID, Date: rec.Date.String()}
	if existing, ok := v.d.attendanceByDay[k]; ok {
		return &domain.DuplicateRecordError{
			Entity:     "attendance",
			Key:        string(rec.EmployeeID) + " on " + rec.Date.String(),
			ExistingID: string(existing),
		}
	}
	v.d.attendance[rec.ID] = rec
	v.d.attendanceByDay[k] = rec.ID
	return nil
}

func (v *view) UpdateAttendance(_ context.Context, rec domain.AttendanceRecord) error {
	old, ok := v.d.attendance[rec.ID]
	if !ok {
		return &domain.NotFoundError{Entity: "attendance", ID: string(rec.ID)}
	}
	oldKey := dayKey{EmployeeID: old.EmployeeID, Date: old.Date.String()}
	newKey := dayKey{EmployeeID: rec.EmployeeID, Date: rec.Date.String()}
	if oldKey != newKey {
		if existing, taken := v.d.attendanceByDay[newKey]; taken {
			return &domain.DuplicateRecordError{
				Entity:     "attendance",
				Key:        string(rec.EmployeeID) + " on " + rec.Date.String(),
				ExistingID: string(existing),
			}
		}
		delete(v.d.attendanceByDay, oldKey)
		v.d.attendanceByDay[newKey] = rec.ID
	}
	v.d.attendance[rec.ID] = rec
	return nil
}

func (v *view) DeleteAttendance(_ context.Context, id domain.AttendanceID) error {
	rec, ok := v.d.attendance[id]
	if !ok {
		return nil
	}
	delete(v.d.attendanceByDay, dayKey{EmployeeID: rec.EmployeeID, Date: rec.Date.String()})
	delete(v.d.attendance, id)
	return nil
}

func (v *view) GetAttendance(_ context.Context, id domain.AttendanceID) (*domain.AttendanceRecord, error) {
	rec, ok := v.d.attendance[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (v *view) FindAttendance(ctx context.Context, employeeID domain.EmployeeID, date domain.Date) (*domain.AttendanceRecord, error) {
	id, ok := v.d.attendanceByDay[dayKey{EmployeeID: employeeID, Date: date.String()}]
	if !ok {
		return nil, nil
	}
	return v.GetAttendance(ctx, id)
}

func (v *view) ListAttendance(_ context.Context, employeeID domain.EmployeeID, from, to domain.Date, unpaidOnly bool) ([]domain.AttendanceRecord, error) {
	var result []domain.AttendanceRecord
	for _, rec := range v.d.attendance {
		if rec.EmployeeID != employeeID {
			continue
		}
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		if unpaidOnly && rec.IsPaid {
			continue
		}
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (v *view) SetAttendancePaid(_ context.Context, ids []domain.AttendanceID, paid bool) error {
	for _, id := range ids {
		rec, ok := v.d.attendance[id]
		if !ok {
			continue
		}
		rec.IsPaid = paid
		v.d.attendance[id] = rec
	}
	return nil
}

func (v *view) InsertPayroll(_ context.Context, p domain.PayrollRecord) error {
	if _, ok := v.d.payrolls[p.ID]; ok {
		return &domain.DuplicateRecordError{Entity: "payroll", Key: "id " + string(p.ID)}
	}
	p.AttendanceIDs = slices.Clone(p.AttendanceIDs)
	v.d.payrolls[p.ID] = p
	return nil
}

func (v *view) UpdatePayroll(_ context.Context, p domain.PayrollRecord) error {
	old, ok := v.d.payrolls[p.ID]
	if !ok {
		return &domain.NotFoundError{Entity: "payroll", ID: string(p.ID)}
	}
	// Covered ids are fixed at creation.
	p.AttendanceIDs = old.AttendanceIDs
	v.d.payrolls[p.ID] = p
	return nil
}

func (v *view) DeletePayroll(_ context.Context, id domain.PayrollID) error {
	delete(v.d.payrolls, id)
	return nil
}

func (v *view) GetPayroll(_ context.Context, id domain.PayrollID) (*domain.PayrollRecord, error) {
	p, ok := v.d.payrolls[id]
	if !ok {
		return nil, nil
	}
	p.AttendanceIDs = slices.Clone(p.AttendanceIDs)
	return &p, nil
}

func (v *view) ListPayrolls(_ context.Context, employeeID domain.EmployeeID) ([]domain.PayrollRecord, error) {
	var result []domain.PayrollRecord
	for _, p := range v.d.payrolls {
		if employeeID != "" && p.EmployeeID != employeeID {
			continue
		}
		p.AttendanceIDs = slices.Clone(p.AttendanceIDs)
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PeriodStart.Equal(result[j].PeriodStart) {
			return result[i].PeriodStart.Before(result[j].PeriodStart)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (v *view) SaveEnrollment(_ context.Context, e domain.Enrollment) error {
	v.d.enrollments[e.ID] = e
	return nil
}

func (v *view) GetEnrollment(_ context.Context, id domain.EnrollmentID) (*domain.Enrollment, error) {
	e, ok := v.d.enrollments[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (v *view) SetRemainingBalance(_ context.Context, id domain.EnrollmentID, balance decimal.Decimal) error {
	e, ok := v.d.enrollments[id]
	if !ok {
		return &domain.NotFoundError{Entity: "enrollment", ID: string(id)}
	}
	e.RemainingBalance = balance
	v.d.enrollments[id] = e
	return nil
}

func (v *view) InsertPayment(_ context.Context, p domain.Payment) error {
	if existing, ok := v.d.receipts[p.ReceiptNumber]; ok {
		return &domain.DuplicateRecordError{
			Entity:     "payment",
			Key:        "receipt " + p.ReceiptNumber,
			ExistingID: string(existing),
		}
	}
	v.d.payments[p.ID] = p
	v.d.receipts[p.ReceiptNumber] = p.ID
	return nil
}

func (v *view) DeletePayment(_ context.Context, id domain.PaymentID) error {
	p, ok := v.d.payments[id]
	if !ok {
		return nil
	}
	delete(v.d.receipts, p.ReceiptNumber)
	delete(v.d.payments, id)
	return nil
}

func (v *view) GetPayment(_ context.Context, id domain.PaymentID) (*domain.Payment, error) {
	p, ok := v.d.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (v *view) ListPayments(_ context.Context, enrollmentID domain.EnrollmentID) ([]domain.Payment, error) {
	var result []domain.Payment
	for _, p := range v.d.payments {
		if p.EnrollmentID == enrollmentID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PaidAt.Before(result[j].PaidAt) })
	return result, nil
}

func (v *view) SumPayments(_ context.Context, enrollmentID domain.EnrollmentID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range v.d.payments {
		if p.EnrollmentID == enrollmentID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}
