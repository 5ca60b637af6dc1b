package domain

// =============================================================================
// PAY PERIOD - Semi-monthly bucket used to group attendance
// =============================================================================

// PayPeriod is one semi-monthly window [Start, End]. End doubles as the
// bucket key stored on attendance records.
type PayPeriod struct {
	Start Date
	End   Date
}

// PayPeriodKey classifies a date: days 1-15 map to the 15th of the month,
// the rest to the last day of the month.
func PayPeriodKey(d Date) Date {
	if d.Day() <= 15 {
		return NewDate(d.Year(), d.Month(), 15)
	}
	return EndOfMonth(d.Year(), d.Month())
}

// PayPeriodFor returns the full window containing d.
func PayPeriodFor(d Date) PayPeriod {
	if d.Day() <= 15 {
		return PayPeriod{Start: StartOfMonth(d.Year(), d.Month()), End: PayPeriodKey(d)}
	}
	return PayPeriod{Start: NewDate(d.Year(), d.Month(), 16), End: PayPeriodKey(d)}
}

// Contains returns true if d is within [Start, End].
func (p PayPeriod) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Next returns the following semi-monthly window.
func (p PayPeriod) Next() PayPeriod { return PayPeriodFor(p.End.AddDays(1)) }

func (p PayPeriod) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PayPeriodsBetween lists every window touching [from, to], in order.
func PayPeriodsBetween(from, to Date) []PayPeriod {
	var periods []PayPeriod
	if to.Before(from) {
		return periods
	}
	for p := PayPeriodFor(from); p.Start.BeforeOrEqual(to); p = p.Next() {
		periods = append(periods, p)
	}
	return periods
}
