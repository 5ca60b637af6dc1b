package payroll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/campus-ledger/attendance"
	"github.com/warp/campus-ledger/domain"
	"github.com/warp/campus-ledger/domain/store"
	"github.com/warp/campus-ledger/payroll"
)

var (
	ctx      = context.Background()
	hr       = domain.Actor{ID: "hr-1", Name: "HR Clerk"}
	march1   = domain.NewDate(2024, time.March, 1)
	march15  = domain.NewDate(2024, time.March, 15)
	decOf    = decimal.RequireFromString
	errDisk  = errors.New("disk full")
	fixedNow = time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC)
)

func clock(h, m int) *domain.TimeOfDay {
	t := domain.NewTimeOfDay(h, m)
	return &t
}

type fixture struct {
	mem     *store.Memory
	dtr     *attendance.Service
	payroll *payroll.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	require.NoError(t, mem.SaveEmployee(ctx, domain.Employee{
		ID:            "emp-1",
		Name:          "Maria Santos",
		MonthlySalary: decimal.NewFromInt(40000),
	}))
	require.NoError(t, mem.SaveEmployee(ctx, domain.Employee{
		ID:            "emp-2",
		Name:          "Jose Rizal",
		MonthlySalary: decimal.NewFromInt(32000),
	}))

	svc := payroll.NewService(mem, nil)
	svc.Now = func() time.Time { return fixedNow }
	return &fixture{mem: mem, dtr: attendance.NewService(mem), payroll: svc}
}

// workday submits 08:00-17:00 with a one hour lunch and optional overtime
// starting at 17:00.
func (f *fixture) workday(t *testing.T, emp domain.EmployeeID, day int, overtimeHours int) domain.AttendanceID {
	t.Helper()
	e := attendance.Entry{
		EmployeeID: emp,
		Date:       domain.NewDate(2024, time.March, day),
		Status:     domain.StatusPresent,
		TimeIn:     clock(8, 0),
		TimeOut:    clock(17, 0),
		LunchStart: clock(12, 0),
		LunchEnd:   clock(13, 0),
	}
	if overtimeHours > 0 {
		e.OvertimeStart = clock(17, 0)
		e.OvertimeEnd = clock(17+overtimeHours, 0)
	}
	rec, err := f.dtr.Submit(ctx, hr, e)
	require.NoError(t, err)
	return rec.ID
}

func (f *fixture) isPaid(t *testing.T, id domain.AttendanceID) bool {
	t.Helper()
	rec, err := f.mem.GetAttendance(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec.IsPaid
}

func runInput(emp domain.EmployeeID) payroll.RunInput {
	return payroll.RunInput{
		EmployeeID:  emp,
		PeriodStart: march1,
		PeriodEnd:   march15,
		Method:      domain.MethodBankTransfer,
	}
}

// =============================================================================
// RUN
// =============================================================================

func TestRun_SalaryScenario(t *testing.T) {
	f := newFixture(t)
	id := f.workday(t, "emp-1", 10, 2)

	in := runInput("emp-1")
	in.Allowances = decimal.NewFromInt(500)
	in.Deductions = decimal.NewFromInt(100)

	p, err := f.payroll.Run(ctx, hr, in)
	require.NoError(t, err)

	assert.Equal(t, "250", p.HourlyRate.String())
	assert.True(t, p.BasicSalary.Equal(decOf("2000.00")))
	assert.True(t, p.OvertimePay.Equal(decOf("750.00")))
	assert.True(t, p.Tax.IsZero())
	assert.True(t, p.NetSalary.Equal(decOf("3150.00")))
	assert.Equal(t, domain.PayrollPending, p.Status)
	assert.Nil(t, p.PaidAt)
	assert.Equal(t, []domain.AttendanceID{id}, p.AttendanceIDs)
	assert.True(t, f.isPaid(t, id))
}

func TestRun_FlatRateTax(t *testing.T) {
	f := newFixture(t)
	f.workday(t, "emp-1", 10, 2)
	f.payroll.Tax = payroll.FlatRate{Rate: decOf("0.10")}

	p, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)

	assert.True(t, p.Tax.Equal(decOf("275.00")))
	assert.True(t, p.NetSalary.Equal(decOf("2475.00")))
}

func TestRun_AggregatesOnlyUnpaidRecordsInWindow(t *testing.T) {
	f := newFixture(t)

	// GIVEN: two DTRs in the window, one after it, one for another employee
	a := f.workday(t, "emp-1", 4, 0)
	b := f.workday(t, "emp-1", 5, 1)
	outside := f.workday(t, "emp-1", 18, 0)
	other := f.workday(t, "emp-2", 5, 0)

	// WHEN: payroll runs for the first half of March
	first, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)

	// THEN: only the two in-window records are aggregated and paid
	assert.ElementsMatch(t, []domain.AttendanceID{a, b}, first.AttendanceIDs)
	assert.True(t, first.TotalHours.Equal(decOf("16")))
	assert.True(t, first.BasicSalary.Equal(decOf("4000")))
	assert.True(t, first.OvertimePay.Equal(decOf("375")))
	assert.True(t, f.isPaid(t, a))
	assert.True(t, f.isPaid(t, b))
	assert.False(t, f.isPaid(t, outside))
	assert.False(t, f.isPaid(t, other))

	// AND: a second run over the same window only picks up new DTRs
	late := f.workday(t, "emp-1", 12, 0)
	second, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)
	assert.Equal(t, []domain.AttendanceID{late}, second.AttendanceIDs)
	assert.True(t, second.BasicSalary.Equal(decOf("2000")))
}

func TestRun_EmptyWindowProducesZeroPayroll(t *testing.T) {
	f := newFixture(t)

	p, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)
	assert.True(t, p.BasicSalary.IsZero())
	assert.Empty(t, p.AttendanceIDs)
}

func TestRun_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		mut   func(in *payroll.RunInput)
		field string
	}{
		{"reversed period", func(in *payroll.RunInput) { in.PeriodEnd = domain.NewDate(2024, time.February, 28) }, "pay_period_end"},
		{"negative allowances", func(in *payroll.RunInput) { in.Allowances = decimal.NewFromInt(-1) }, "allowances"},
		{"negative deductions", func(in *payroll.RunInput) { in.Deductions = decimal.NewFromInt(-1) }, "deductions"},
		{"bad method", func(in *payroll.RunInput) { in.Method = "barter" }, "payment_method"},
		{"unknown employee", func(in *payroll.RunInput) { in.EmployeeID = "ghost" }, "employee_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := runInput("emp-1")
			tt.mut(&in)

			_, err := f.payroll.Run(ctx, hr, in)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	all, err := f.payroll.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPreview_WritesNothing(t *testing.T) {
	f := newFixture(t)
	id := f.workday(t, "emp-1", 10, 2)

	p, err := f.payroll.Preview(ctx, runInput("emp-1"))
	require.NoError(t, err)
	assert.True(t, p.NetSalary.Equal(decOf("2750")))
	assert.Empty(t, p.ID)

	assert.False(t, f.isPaid(t, id))
	all, err := f.payroll.List(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

// =============================================================================
// ATOMICITY
// =============================================================================

// failingStore injects a failure into one write of the transaction.
type failingStore struct {
	domain.TxStore
	failInsert   bool
	failMarkPaid bool
}

func (s *failingStore) WithTx(ctx context.Context, fn func(domain.Store) error) error {
	return s.TxStore.WithTx(ctx, func(tx domain.Store) error {
		return fn(&failingTx{Store: tx, parent: s})
	})
}

type failingTx struct {
	domain.Store
	parent *failingStore
}

func (tx *failingTx) InsertPayroll(ctx context.Context, p domain.PayrollRecord) error {
	if tx.parent.failInsert {
		return &domain.StorageError{Op: "insert payroll", Err: errDisk}
	}
	return tx.Store.InsertPayroll(ctx, p)
}

func (tx *failingTx) SetAttendancePaid(ctx context.Context, ids []domain.AttendanceID, paid bool) error {
	if tx.parent.failMarkPaid {
		return &domain.StorageError{Op: "mark attendance paid", Err: errDisk}
	}
	return tx.Store.SetAttendancePaid(ctx, ids, paid)
}

func TestRun_RollsBackWhenMarkPaidFails(t *testing.T) {
	f := newFixture(t)
	id := f.workday(t, "emp-1", 10, 0)

	svc := payroll.NewService(&failingStore{TxStore: f.mem, failMarkPaid: true}, nil)

	// WHEN: the payroll insert succeeds but marking DTRs paid fails
	_, err := svc.Run(ctx, hr, runInput("emp-1"))

	// THEN: no payroll is left behind and the DTR is still unpaid
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, errDisk)

	all, err := f.mem.ListPayrolls(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.False(t, f.isPaid(t, id))
}

func TestRun_RollsBackWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	id := f.workday(t, "emp-1", 10, 0)

	svc := payroll.NewService(&failingStore{TxStore: f.mem, failInsert: true}, nil)
	_, err := svc.Run(ctx, hr, runInput("emp-1"))
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.False(t, f.isPaid(t, id))
}

func TestDelete_RollsBackWhenResetFails(t *testing.T) {
	f := newFixture(t)
	id := f.workday(t, "emp-1", 10, 0)
	p, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)

	svc := payroll.NewService(&failingStore{TxStore: f.mem, failMarkPaid: true}, nil)
	err = svc.Delete(ctx, hr, p.ID)
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, err = f.payroll.Get(ctx, p.ID)
	assert.NoError(t, err)
	assert.True(t, f.isPaid(t, id))
}

// =============================================================================
// UPDATE
// =============================================================================

func TestUpdate_RecomputesNetFromStoredFigures(t *testing.T) {
	f := newFixture(t)
	f.workday(t, "emp-1", 10, 2)
	p, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)

	allowances := decimal.NewFromInt(1000)
	deductions := decOf("250.50")
	updated, err := f.payroll.Update(ctx, hr, p.ID, payroll.UpdateInput{
		Allowances: &allowances,
		Deductions: &deductions,
	})
	require.NoError(t, err)

	// 2000 + 750 + 1000 - 250.50 - 0
	assert.True(t, updated.NetSalary.Equal(decOf("3499.50")))
	assert.True(t, updated.BasicSalary.Equal(p.BasicSalary))
}

func TestUpdate_CompletedStampsPaidAtOnce(t *testing.T) {
	f := newFixture(t)
	f.workday(t, "emp-1", 10, 0)
	p, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)

	completed := domain.PayrollCompleted
	first, err := f.payroll.Update(ctx, hr, p.ID, payroll.UpdateInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, first.PaidAt)
	assert.Equal(t, fixedNow, *first.PaidAt)

	// WHEN: completed is applied again later
	f.payroll.Now = func() time.Time { return fixedNow.Add(48 * time.Hour) }
	remarks := "released"
	again, err := f.payroll.Update(ctx, hr, p.ID, payroll.UpdateInput{Status: &completed, Remarks: &remarks})
	require.NoError(t, err)

	// THEN: paid-at keeps its first value
	require.NotNil(t, again.PaidAt)
	assert.Equal(t, fixedNow, *again.PaidAt)
	assert.Equal(t, "released", again.Remarks)
}

func TestUpdate_StatusTransitions(t *testing.T) {
	f := newFixture(t)
	p, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)

	rejected := domain.PayrollRejected
	_, err = f.payroll.Update(ctx, hr, p.ID, payroll.UpdateInput{Status: &rejected})
	require.NoError(t, err)

	completed := domain.PayrollCompleted
	_, err = f.payroll.Update(ctx, hr, p.ID, payroll.UpdateInput{Status: &completed})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	allowances := decimal.NewFromInt(10)
	_, err = f.payroll.Update(ctx, hr, p.ID, payroll.UpdateInput{Allowances: &allowances})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	bogus := domain.PayrollStatus("paid")
	_, err = f.payroll.Update(ctx, hr, p.ID, payroll.UpdateInput{Status: &bogus})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.payroll.Update(ctx, hr, "missing", payroll.UpdateInput{Status: &completed})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// =============================================================================
// DELETE
// =============================================================================

func TestDelete_ResetsExactlyCoveredRecords(t *testing.T) {
	f := newFixture(t)
	a := f.workday(t, "emp-1", 4, 0)
	first, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)

	b := f.workday(t, "emp-1", 8, 0)
	second, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)

	// WHEN: the second run is deleted
	require.NoError(t, f.payroll.Delete(ctx, hr, second.ID))

	// THEN: only its own DTR returns to unpaid
	assert.True(t, f.isPaid(t, a))
	assert.False(t, f.isPaid(t, b))

	_, err = f.payroll.Get(ctx, second.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.payroll.Get(ctx, first.ID)
	assert.NoError(t, err)
}

func TestDelete_NonPendingIsRejectedWithoutMutation(t *testing.T) {
	f := newFixture(t)
	id := f.workday(t, "emp-1", 10, 0)
	p, err := f.payroll.Run(ctx, hr, runInput("emp-1"))
	require.NoError(t, err)

	processing := domain.PayrollProcessing
	_, err = f.payroll.Update(ctx, hr, p.ID, payroll.UpdateInput{Status: &processing})
	require.NoError(t, err)

	err = f.payroll.Delete(ctx, hr, p.ID)

	var state *domain.InvalidStateError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, "processing", state.State)

	stored, err := f.payroll.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayrollProcessing, stored.Status)
	assert.True(t, f.isPaid(t, id))
}

func TestDelete_Unknown(t *testing.T) {
	f := newFixture(t)
	err := f.payroll.Delete(ctx, hr, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// =============================================================================
// TAX POLICY
// =============================================================================

func TestPolicyFromRate(t *testing.T) {
	emp := domain.Employee{ID: "emp-1"}
	assert.IsType(t, payroll.NoTax{}, payroll.PolicyFromRate(decimal.Zero))

	flat := payroll.PolicyFromRate(decOf("0.12"))
	assert.True(t, flat.Tax(emp, decOf("1000")).Equal(decOf("120")))
	assert.True(t, flat.Tax(emp, decOf("333.33")).Equal(decOf("40")))
}
