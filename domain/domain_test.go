package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/campus-ledger/domain"
)

func tod(t *testing.T, s string) *domain.TimeOfDay {
	t.Helper()
	v, err := domain.ParseTimeOfDay(s)
	require.NoError(t, err)
	return &v
}

// =============================================================================
// INTERVAL MATH
// =============================================================================

func TestHoursBetween(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       string
	}{
		{"full shift", "08:00", "17:00", "9"},
		{"lunch hour", "12:00", "13:00", "1"},
		{"twenty minutes", "10:00", "10:20", "0.33"},
		{"forty minutes rounds up", "10:00", "10:40", "0.67"},
		{"half hour", "17:00", "17:30", "0.5"},
		{"seconds truncated", "08:00:59", "08:30:00", "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.HoursBetween(tod(t, tt.start), tod(t, tt.end))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestHoursBetween_MissingEndpointIsZero(t *testing.T) {
	nine := domain.NewTimeOfDay(9, 0)
	assert.True(t, domain.HoursBetween(nil, &nine).IsZero())
	assert.True(t, domain.HoursBetween(&nine, nil).IsZero())
	assert.True(t, domain.HoursBetween(nil, nil).IsZero())
}

func TestHoursBetween_ReversedSpanIsNegative(t *testing.T) {
	// Overnight spans are not modelled; callers reject the negative result.
	got := domain.HoursBetween(tod(t, "22:00"), tod(t, "06:00"))
	assert.True(t, got.IsNegative())
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, s := range []string{"", "25:00", "8am", "12:60"} {
		_, err := domain.ParseTimeOfDay(s)
		assert.Error(t, err, s)
	}
}

func TestParseOptionalTimeOfDay_Empty(t *testing.T) {
	v, err := domain.ParseOptionalTimeOfDay("  ")
	require.NoError(t, err)
	assert.Nil(t, v)
}

// =============================================================================
// PAY PERIOD CLASSIFIER
// =============================================================================

func TestPayPeriodKey(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-03-10", "2024-03-15"},
		{"2024-03-15", "2024-03-15"},
		{"2024-03-16", "2024-03-31"},
		{"2024-03-20", "2024-03-31"},
		{"2024-02-20", "2024-02-29"}, // leap year
		{"2023-02-28", "2023-02-28"},
		{"2024-04-30", "2024-04-30"},
		{"2024-12-01", "2024-12-15"},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := domain.ParseDate(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, domain.PayPeriodKey(d).String())
		})
	}
}

func TestPayPeriodKey_AlwaysFifteenthOrMonthEnd(t *testing.T) {
	d := domain.NewDate(2023, time.January, 1)
	for i := 0; i < 800; i++ {
		key := domain.PayPeriodKey(d)
		last := domain.EndOfMonth(d.Year(), d.Month()).Day()
		assert.Contains(t, []int{15, last}, key.Day(), d.String())
		assert.Equal(t, d.Month(), key.Month())
		d = d.AddDays(1)
	}
}

func TestPayPeriodFor(t *testing.T) {
	first := domain.PayPeriodFor(domain.NewDate(2024, time.March, 3))
	assert.Equal(t, "[2024-03-01, 2024-03-15]", first.String())

	second := first.Next()
	assert.Equal(t, "[2024-03-16, 2024-03-31]", second.String())
	assert.True(t, second.Contains(domain.NewDate(2024, time.March, 31)))
	assert.False(t, second.Contains(domain.NewDate(2024, time.April, 1)))

	assert.Equal(t, "[2024-04-01, 2024-04-15]", second.Next().String())
}

func TestPayPeriodsBetween(t *testing.T) {
	periods := domain.PayPeriodsBetween(domain.NewDate(2024, time.January, 10), domain.NewDate(2024, time.February, 20))
	require.Len(t, periods, 4)
	assert.Equal(t, "2024-01-01", periods[0].Start.String())
	assert.Equal(t, "2024-02-29", periods[3].End.String())

	assert.Empty(t, domain.PayPeriodsBetween(domain.NewDate(2024, time.March, 1), domain.NewDate(2024, time.February, 1)))
}

// =============================================================================
// STATUS + NET SALARY
// =============================================================================

func TestPayrollStatus_Transitions(t *testing.T) {
	assert.True(t, domain.PayrollPending.CanTransitionTo(domain.PayrollCompleted))
	assert.True(t, domain.PayrollPending.CanTransitionTo(domain.PayrollProcessing))
	assert.True(t, domain.PayrollPending.CanTransitionTo(domain.PayrollRejected))
	assert.True(t, domain.PayrollCompleted.CanTransitionTo(domain.PayrollCompleted))

	assert.False(t, domain.PayrollCompleted.CanTransitionTo(domain.PayrollPending))
	assert.False(t, domain.PayrollProcessing.CanTransitionTo(domain.PayrollCompleted))
	assert.False(t, domain.PayrollRejected.CanTransitionTo(domain.PayrollProcessing))
	assert.False(t, domain.PayrollPending.CanTransitionTo("paid"))
}

func TestAttendanceStatus_RequiresTimes(t *testing.T) {
	assert.True(t, domain.StatusPresent.RequiresTimes())
	assert.True(t, domain.StatusLate.RequiresTimes())
	assert.True(t, domain.StatusHalfDay.RequiresTimes())
	assert.False(t, domain.StatusAbsent.RequiresTimes())
	assert.False(t, domain.StatusOnLeave.RequiresTimes())
	assert.False(t, domain.AttendanceStatus("sick").Valid())
}

func TestPayrollRecord_ComputeNet(t *testing.T) {
	p := domain.PayrollRecord{
		BasicSalary: decimal.NewFromInt(2000),
		OvertimePay: decimal.NewFromInt(750),
		Allowances:  decimal.NewFromInt(500),
		Deductions:  decimal.NewFromInt(100),
		Tax:         decimal.RequireFromString("120.50"),
	}
	p.ComputeNet()
	assert.Equal(t, "3029.5", p.NetSalary.String())
}

// =============================================================================
// ERRORS
// =============================================================================

func TestErrors_Classification(t *testing.T) {
	verr := domain.NewValidationError("time_in", "required")
	verr.Add("time_in", "ignored")
	verr.Add("time_out", "required")
	assert.ErrorIs(t, verr, domain.ErrValidation)
	assert.Equal(t, "validation failed: time_in: required; time_out: required", verr.Error())
	assert.True(t, domain.IsClientError(verr))

	dup := &domain.DuplicateRecordError{Entity: "attendance", Key: "emp-1 on 2024-03-10"}
	assert.ErrorIs(t, dup, domain.ErrDuplicateRecord)

	state := &domain.InvalidStateError{Entity: "payroll", ID: "p1", State: "completed", Op: "delete"}
	assert.ErrorIs(t, state, domain.ErrInvalidState)
	assert.True(t, domain.IsClientError(state))

	cause := errors.New("disk I/O error")
	storage := &domain.StorageError{Op: "commit", Err: cause}
	assert.ErrorIs(t, storage, domain.ErrStorage)
	assert.ErrorIs(t, storage, cause)
	assert.False(t, domain.IsClientError(storage))

	assert.True(t, domain.IsNotFound(&domain.NotFoundError{Entity: "payment", ID: "x"}))
}

func TestValidationError_OrNil(t *testing.T) {
	var v domain.ValidationError
	assert.NoError(t, v.OrNil())
	v.Add("amount", "must be greater than 0")
	assert.Error(t, v.OrNil())
}
