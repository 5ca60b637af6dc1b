/*
Package attendance records employees' daily time records (DTR).

PURPOSE:
  Validates an attendance entry, derives worked and overtime hours from the
  clock readings, tags the record with its semi-monthly pay period and
  persists it unpaid. Payroll later flips the records to paid.

INVARIANT:
  At most one record per (EmployeeID, Date). The check runs in the service
  and is backed by the store's unique key, so a concurrent insert that slips
  past the first check still fails with DuplicateRecordError.

DERIVED FIELDS:
  HoursWorked   = (TimeOut - TimeIn) - (LunchEnd - LunchStart), 2dp
  OvertimeHours = OvertimeEnd - OvertimeStart, 2dp
  PayPeriod     = 15th of the month for days 1-15, else the month's last day

  Derived fields are always recomputed; values sent by clients are ignored.
  A negative HoursWorked (lunch longer than the shift) is rejected.

SEE ALSO:
  - domain/interval.go: minute arithmetic
  - domain/period.go: pay period classifier
  - payroll: consumes unpaid records
*/
package attendance

import (
	"strings"

	"github.com/warp/campus-ledger/domain"
)

// Entry is the caller supplied part of an attendance record.
type Entry struct {
	EmployeeID domain.EmployeeID
	Date       domain.Date
	Status     domain.AttendanceStatus

	TimeIn        *domain.TimeOfDay
	TimeOut       *domain.TimeOfDay
	LunchStart    *domain.TimeOfDay
	LunchEnd      *domain.TimeOfDay
	OvertimeStart *domain.TimeOfDay
	OvertimeEnd   *domain.TimeOfDay

	LeaveType string
	Remarks   string
}

// Build validates e and returns a record with derived fields filled in.
// Identity and audit fields are left for the caller.
func Build(e Entry) (domain.AttendanceRecord, error) {
	v := &domain.ValidationError{}

	if e.EmployeeID == "" {
		v.Add("employee_id", "required")
	}
	if e.Date.IsZero() {
		v.Add("date", "required")
	}
	if !e.Status.Valid() {
		v.Add("status", "must be one of present, absent, late, half_day, on_leave")
	}

	checkClock(v, "time_in", e.TimeIn)
	checkClock(v, "time_out", e.TimeOut)
	checkClock(v, "lunch_start", e.LunchStart)
	checkClock(v, "lunch_end", e.LunchEnd)
	checkClock(v, "overtime_start", e.OvertimeStart)
	checkClock(v, "overtime_end", e.OvertimeEnd)

	if e.Status.RequiresTimes() {
		if e.TimeIn == nil {
			v.Add("time_in", "required for status "+string(e.Status))
		}
		if e.TimeOut == nil {
			v.Add("time_out", "required for status "+string(e.Status))
		}
	}
	if e.Status == domain.StatusOnLeave && strings.TrimSpace(e.LeaveType) == "" {
		v.Add("leave_type", "required when status is on_leave")
	}

	shift := domain.MinutesBetween(e.TimeIn, e.TimeOut)
	lunch := domain.MinutesBetween(e.LunchStart, e.LunchEnd)
	overtime := domain.MinutesBetween(e.OvertimeStart, e.OvertimeEnd)

	if shift < 0 {
		v.Add("time_out", "must not be before time_in (overnight shifts are not supported)")
	}
	if lunch < 0 {
		v.Add("lunch_end", "must not be before lunch_start")
	}
	if overtime < 0 {
		v.Add("overtime_end", "must not be before overtime_start")
	}
	if shift >= 0 && lunch >= 0 && shift-lunch < 0 {
		v.Add("lunch_end", "lunch break is longer than the worked shift")
	}

	if err := v.OrNil(); err != nil {
		return domain.AttendanceRecord{}, err
	}

	return domain.AttendanceRecord{
		EmployeeID:    e.EmployeeID,
		Date:          e.Date,
		TimeIn:        e.TimeIn,
		TimeOut:       e.TimeOut,
		LunchStart:    e.LunchStart,
		LunchEnd:      e.LunchEnd,
		OvertimeStart: e.OvertimeStart,
		OvertimeEnd:   e.OvertimeEnd,
		Status:        e.Status,
		LeaveType:     strings.TrimSpace(e.LeaveType),
		Remarks:       e.Remarks,
		HoursWorked:   domain.HoursFromMinutes(shift - lunch),
		OvertimeHours: domain.HoursFromMinutes(overtime),
		PayPeriod:     domain.PayPeriodKey(e.Date),
		IsPaid:        false,
	}, nil
}

func checkClock(v *domain.ValidationError, field string, t *domain.TimeOfDay) {
	if t != nil && !t.Valid() {
		v.Add(field, "invalid time of day")
	}
}
