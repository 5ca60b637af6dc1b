package sqldb_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/campus-ledger/attendance"
	"github.com/warp/campus-ledger/domain"
	"github.com/warp/campus-ledger/payroll"
	"github.com/warp/campus-ledger/store/sqldb"
	"github.com/warp/campus-ledger/tuition"
)

var (
	ctx   = context.Background()
	clerk = domain.Actor{ID: "hr-1", Name: "HR Clerk"}
	decOf = decimal.RequireFromString
)

func newStore(t *testing.T) *sqldb.Store {
	t.Helper()
	store, err := sqldb.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.SaveEmployee(ctx, domain.Employee{
		ID:            "emp-1",
		Name:          "Maria Santos",
		Position:      "Teacher I",
		MonthlySalary: decOf("40000"),
		CreatedAt:     time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.SaveStudent(ctx, domain.Student{
		ID:            "stu-1",
		StudentNumber: "2024-0001",
		Name:          "Juan Dela Cruz",
	}))
	return store
}

func clock(h, m int) *domain.TimeOfDay {
	t := domain.NewTimeOfDay(h, m)
	return &t
}

func workday(day int) attendance.Entry {
	return attendance.Entry{
		EmployeeID:    "emp-1",
		Date:          domain.NewDate(2024, time.March, day),
		Status:        domain.StatusPresent,
		TimeIn:        clock(8, 0),
		TimeOut:       clock(17, 0),
		LunchStart:    clock(12, 0),
		LunchEnd:      clock(13, 0),
		OvertimeStart: clock(17, 0),
		OvertimeEnd:   clock(19, 0),
	}
}

func TestDirectory_RoundTrip(t *testing.T) {
	store := newStore(t)

	emp, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, "Teacher I", emp.Position)
	assert.True(t, emp.MonthlySalary.Equal(decOf("40000")))
	assert.True(t, emp.CreatedAt.Equal(time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)))

	missing, err := store.GetEmployee(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Upsert keeps a single row
	emp.MonthlySalary = decOf("42000")
	require.NoError(t, store.SaveEmployee(ctx, *emp))
	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].MonthlySalary.Equal(decOf("42000")))

	students, err := store.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestAttendance_RoundTripAndUniqueDay(t *testing.T) {
	store := newStore(t)
	svc := attendance.NewService(store)

	rec, err := svc.Submit(ctx, clerk, workday(10))
	require.NoError(t, err)

	loaded, err := store.GetAttendance(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "08:00", loaded.TimeIn.String())
	assert.Equal(t, "13:00", loaded.LunchEnd.String())
	assert.True(t, loaded.HoursWorked.Equal(decOf("8")))
	assert.True(t, loaded.OvertimeHours.Equal(decOf("2")))
	assert.Equal(t, "2024-03-15", loaded.PayPeriod.String())
	assert.False(t, loaded.IsPaid)

	// The unique index backs the service check
	dupe := *loaded
	dupe.ID = "another"
	err = store.InsertAttendance(ctx, dupe)
	assert.ErrorIs(t, err, domain.ErrDuplicateRecord)

	_, err = svc.Submit(ctx, clerk, workday(10))
	assert.ErrorIs(t, err, domain.ErrDuplicateRecord)
}

func TestAttendance_UpdateOntoTakenDate(t *testing.T) {
	store := newStore(t)
	svc := attendance.NewService(store)

	_, err := svc.Submit(ctx, clerk, workday(4))
	require.NoError(t, err)
	moved, err := svc.Submit(ctx, clerk, workday(5))
	require.NoError(t, err)

	_, err = svc.Update(ctx, clerk, moved.ID, workday(4))
	assert.ErrorIs(t, err, domain.ErrDuplicateRecord)

	loaded, err := store.GetAttendance(ctx, moved.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", loaded.Date.String())
}

func TestAttendance_NullableClockFields(t *testing.T) {
	store := newStore(t)
	svc := attendance.NewService(store)

	rec, err := svc.Submit(ctx, clerk, attendance.Entry{
		EmployeeID: "emp-1",
		Date:       domain.NewDate(2024, time.March, 11),
		Status:     domain.StatusOnLeave,
		LeaveType:  "vacation",
	})
	require.NoError(t, err)

	loaded, err := store.GetAttendance(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.TimeIn)
	assert.Nil(t, loaded.OvertimeEnd)
	assert.Equal(t, "vacation", loaded.LeaveType)
}

func TestPayroll_RunAndDeleteOnSQLite(t *testing.T) {
	store := newStore(t)
	dtr := attendance.NewService(store)
	svc := payroll.NewService(store, nil)

	a, err := dtr.Submit(ctx, clerk, workday(4))
	require.NoError(t, err)
	b, err := dtr.Submit(ctx, clerk, workday(5))
	require.NoError(t, err)
	outside, err := dtr.Submit(ctx, clerk, workday(20))
	require.NoError(t, err)

	p, err := svc.Run(ctx, clerk, payroll.RunInput{
		EmployeeID:  "emp-1",
		PeriodStart: domain.NewDate(2024, time.March, 1),
		PeriodEnd:   domain.NewDate(2024, time.March, 15),
		Allowances:  decOf("500"),
		Method:      domain.MethodCash,
	})
	require.NoError(t, err)
	assert.True(t, p.BasicSalary.Equal(decOf("4000")))
	assert.True(t, p.OvertimePay.Equal(decOf("1500")))
	assert.True(t, p.NetSalary.Equal(decOf("6000")))

	stored, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.AttendanceID{a.ID, b.ID}, stored.AttendanceIDs)
	assert.Nil(t, stored.PaidAt)

	unpaid, err := store.ListAttendance(ctx, "emp-1", domain.NewDate(2024, time.March, 1), domain.NewDate(2024, time.March, 31), true)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, outside.ID, unpaid[0].ID)

	require.NoError(t, svc.Delete(ctx, clerk, p.ID))

	unpaid, err = store.ListAttendance(ctx, "emp-1", domain.NewDate(2024, time.March, 1), domain.NewDate(2024, time.March, 31), true)
	require.NoError(t, err)
	assert.Len(t, unpaid, 3)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPayroll_CompletedPersistsPaidAt(t *testing.T) {
	store := newStore(t)
	svc := payroll.NewService(store, payroll.FlatRate{Rate: decOf("0.05")})
	now := time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	_, err := attendance.NewService(store).Submit(ctx, clerk, workday(8))
	require.NoError(t, err)

	p, err := svc.Run(ctx, clerk, payroll.RunInput{
		EmployeeID:  "emp-1",
		PeriodStart: domain.NewDate(2024, time.March, 1),
		PeriodEnd:   domain.NewDate(2024, time.March, 15),
		Method:      domain.MethodBankTransfer,
	})
	require.NoError(t, err)
	// gross 2000 + 750 = 2750, tax 137.50
	assert.True(t, p.Tax.Equal(decOf("137.50")))

	completed := domain.PayrollCompleted
	_, err = svc.Update(ctx, clerk, p.ID, payroll.UpdateInput{Status: &completed})
	require.NoError(t, err)

	stored, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaidAt)
	assert.True(t, stored.PaidAt.Equal(now))
	assert.Equal(t, domain.PayrollCompleted, stored.Status)
	assert.True(t, stored.NetSalary.Equal(decOf("2612.50")))

	err = svc.Delete(ctx, clerk, p.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestTuition_RoundTripOnSQLite(t *testing.T) {
	store := newStore(t)
	ledger := tuition.NewLedger(store, nil)

	e, err := ledger.Enroll(ctx, tuition.EnrollInput{
		StudentID: "stu-1",
		Course:    "BS Accountancy",
		TotalFee:  decOf("18000"),
	})
	require.NoError(t, err)

	r, err := ledger.RecordPayment(ctx, domain.SystemActor, tuition.PaymentInput{
		StudentID:    "stu-1",
		EnrollmentID: e.ID,
		Amount:       decOf("4500.25"),
		Method:       domain.MethodCard,
	})
	require.NoError(t, err)
	assert.True(t, r.Enrollment.RemainingBalance.Equal(decOf("13499.75")))

	// Receipt numbers are unique in the table
	clash := r.Payment
	clash.ID = "clash"
	err = store.InsertPayment(ctx, clash)
	assert.ErrorIs(t, err, domain.ErrDuplicateRecord)

	require.NoError(t, ledger.ReversePayment(ctx, domain.SystemActor, r.Payment.ID))
	bal, err := ledger.Balance(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, bal.RemainingBalance.Equal(decOf("18000")))

	payments, err := ledger.Payments(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	store := newStore(t)

	err := store.WithTx(ctx, func(tx domain.Store) error {
		if err := tx.SaveStudent(ctx, domain.Student{ID: "stu-9", Name: "Temp"}); err != nil {
			return err
		}
		return &domain.InvalidStateError{Entity: "test", ID: "x", State: "any", Op: "abort"}
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	st, err := store.GetStudent(ctx, "stu-9")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestParseDialect(t *testing.T) {
	d, err := sqldb.ParseDialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, sqldb.Postgres, d)

	d, err = sqldb.ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, sqldb.SQLite, d)

	_, err = sqldb.ParseDialect("oracle")
	assert.Error(t, err)
}
