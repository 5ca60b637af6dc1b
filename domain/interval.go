package domain

import "github.com/shopspring/decimal"

// =============================================================================
// INTERVAL MATH - Elapsed time between two clock readings on one date
// =============================================================================

var sixty = decimal.NewFromInt(60)

// MinutesBetween returns end - start in minutes, or 0 when either is absent.
// Spans crossing midnight are not supported; end is expected to be >= start
// and a negative result is returned as-is for the caller to reject.
func MinutesBetween(start, end *TimeOfDay) int {
	if start == nil || end == nil {
		return 0
	}
	return int(*end) - int(*start)
}

// HoursFromMinutes converts minutes to hours rounded half-up to 2 decimals.
func HoursFromMinutes(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}

// HoursBetween is MinutesBetween expressed in hours (2dp).
func HoursBetween(start, end *TimeOfDay) decimal.Decimal {
	return HoursFromMinutes(MinutesBetween(start, end))
}
