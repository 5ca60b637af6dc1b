package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/campus-ledger/domain"
)

// TaxPolicy computes the withholding tax for one payroll run from the gross
// earnings (basic salary + overtime pay).
type TaxPolicy interface {
	Tax(emp domain.Employee, gross decimal.Decimal) decimal.Decimal
}

// NoTax withholds nothing.
type NoTax struct{}

func (NoTax) Tax(domain.Employee, decimal.Decimal) decimal.Decimal { return decimal.Zero }

// FlatRate withholds a fixed fraction of gross, e.g. 0.10 for 10%.
type FlatRate struct {
	Rate decimal.Decimal
}

func (f FlatRate) Tax(_ domain.Employee, gross decimal.Decimal) decimal.Decimal {
	if f.Rate.IsNegative() || gross.IsNegative() {
		return decimal.Zero
	}
	return domain.RoundMoney(gross.Mul(f.Rate))
}

// PolicyFromRate returns NoTax for a zero rate and FlatRate otherwise.
func PolicyFromRate(rate decimal.Decimal) TaxPolicy {
	if rate.IsZero() {
		return NoTax{}
	}
	return FlatRate{Rate: rate}
}
