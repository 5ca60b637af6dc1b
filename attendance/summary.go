package attendance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/campus-ledger/domain"
)

// PeriodSummary aggregates one employee's records within a pay period.
type PeriodSummary struct {
	Period        domain.PayPeriod
	DaysWorked    int // present, late, half_day
	DaysAbsent    int
	DaysOnLeave   int
	TotalHours    decimal.Decimal
	TotalOvertime decimal.Decimal
	UnpaidRecords int
}

// Summarize groups records by their pay period, oldest first.
func Summarize(records []domain.AttendanceRecord) []PeriodSummary {
	byKey := make(map[string]*PeriodSummary)
	for _, rec := range records {
		period := domain.PayPeriodFor(rec.Date)
		key := period.End.String()
		sum, ok := byKey[key]
		if !ok {
			sum = &PeriodSummary{Period: period, TotalHours: decimal.Zero, TotalOvertime: decimal.Zero}
			byKey[key] = sum
		}

		switch rec.Status {
		case domain.StatusPresent, domain.StatusLate, domain.StatusHalfDay:
			sum.DaysWorked++
		case domain.StatusAbsent:
			sum.DaysAbsent++
		case domain.StatusOnLeave:
			sum.DaysOnLeave++
		}
		sum.TotalHours = sum.TotalHours.Add(rec.HoursWorked)
		sum.TotalOvertime = sum.TotalOvertime.Add(rec.OvertimeHours)
		if !rec.IsPaid {
			sum.UnpaidRecords++
		}
	}

	result := make([]PeriodSummary, 0, len(byKey))
	for _, sum := range byKey {
		result = append(result, *sum)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period.Start.Before(result[j].Period.Start) })
	return result
}
