/*
Package payroll turns unpaid attendance into payroll runs.

PURPOSE:
  Aggregates an employee's unpaid DTRs within a date window, prices them at
  the employee's hourly rate, persists a pending PayrollRecord and flags the
  covered DTRs paid. The three writes share one transaction.

RATES:
  hourly   = monthly salary / 160
  overtime = hourly * 1.5

  basic    = round2(sum(hours worked) * hourly)
  overtime = round2(sum(overtime hours) * overtime rate)
  tax      = TaxPolicy(employee, basic + overtime)
  net      = basic + overtime + allowances - deductions - tax

LIFECYCLE:
  pending ──▶ processing | completed | rejected

  Only pending runs can be deleted. Deleting resets exactly the DTRs the run
  covered (recorded at creation), not everything in the date window.

SEE ALSO:
  - attendance: produces the DTRs and owns MarkPaid/ResetPaid
  - tax.go: pluggable withholding
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/campus-ledger/domain"
)

// StandardMonthlyHours is the divisor turning a monthly salary into an
// hourly rate.
const StandardMonthlyHours = 160

// OvertimeMultiplier scales the hourly rate for overtime hours.
var OvertimeMultiplier = decimal.RequireFromString("1.5")

// HourlyRate returns the unrounded hourly rate for a monthly salary.
func HourlyRate(monthlySalary decimal.Decimal) decimal.Decimal {
	return monthlySalary.Div(decimal.NewFromInt(StandardMonthlyHours))
}

// Compute prices records for emp over in's period. It does not filter
// records; callers pass the unpaid DTRs of the window.
func Compute(emp domain.Employee, records []domain.AttendanceRecord, in RunInput, tax TaxPolicy) domain.PayrollRecord {
	hourly := HourlyRate(emp.MonthlySalary)
	overtimeRate := hourly.Mul(OvertimeMultiplier)

	hours := decimal.Zero
	overtime := decimal.Zero
	ids := make([]domain.AttendanceID, 0, len(records))
	for _, rec := range records {
		hours = hours.Add(rec.HoursWorked)
		overtime = overtime.Add(rec.OvertimeHours)
		ids = append(ids, rec.ID)
	}

	p := domain.PayrollRecord{
		EmployeeID:         emp.ID,
		PeriodStart:        in.PeriodStart,
		PeriodEnd:          in.PeriodEnd,
		HourlyRate:         domain.RoundMoney(hourly),
		TotalHours:         hours,
		TotalOvertimeHours: overtime,
		BasicSalary:        domain.RoundMoney(hours.Mul(hourly)),
		OvertimePay:        domain.RoundMoney(overtime.Mul(overtimeRate)),
		Allowances:         domain.RoundMoney(in.Allowances),
		Deductions:         domain.RoundMoney(in.Deductions),
		PaymentMethod:      in.Method,
		Status:             domain.PayrollPending,
		Remarks:            in.Remarks,
		AttendanceIDs:      ids,
	}
	if tax == nil {
		tax = NoTax{}
	}
	p.Tax = domain.RoundMoney(tax.Tax(emp, p.BasicSalary.Add(p.OvertimePay)))
	p.ComputeNet()
	return p
}
