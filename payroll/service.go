package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/campus-ledger/attendance"
	"github.com/warp/campus-ledger/domain"
)

// RunInput describes a payroll run request.
type RunInput struct {
	EmployeeID  domain.EmployeeID
	PeriodStart domain.Date
	PeriodEnd   domain.Date
	Allowances  decimal.Decimal
	Deductions  decimal.Decimal
	Method      domain.PaymentMethod
	Remarks     string
}

func (in RunInput) validate() error {
	v := &domain.ValidationError{}
	if in.EmployeeID == "" {
		v.Add("employee_id", "required")
	}
	if in.PeriodStart.IsZero() {
		v.Add("pay_period_start", "required")
	}
	if in.PeriodEnd.IsZero() {
		v.Add("pay_period_end", "required")
	}
	if !in.PeriodStart.IsZero() && !in.PeriodEnd.IsZero() && in.PeriodEnd.Before(in.PeriodStart) {
		v.Add("pay_period_end", "must not be before pay_period_start")
	}
	if in.Allowances.IsNegative() {
		v.Add("allowances", "must not be negative")
	}
	if in.Deductions.IsNegative() {
		v.Add("deductions", "must not be negative")
	}
	if !in.Method.Valid() {
		v.Add("payment_method", "must be one of cash, check, bank_transfer, card, online")
	}
	return v.OrNil()
}

// UpdateInput carries the optional fields of a payroll update. Nil fields
// are left unchanged.
type UpdateInput struct {
	Allowances *decimal.Decimal
	Deductions *decimal.Decimal
	Method     *domain.PaymentMethod
	Remarks    *string
	Status     *domain.PayrollStatus
}

func (in UpdateInput) validate() error {
	v := &domain.ValidationError{}
	if in.Allowances != nil && in.Allowances.IsNegative() {
		v.Add("allowances", "must not be negative")
	}
	if in.Deductions != nil && in.Deductions.IsNegative() {
		v.Add("deductions", "must not be negative")
	}
	if in.Method != nil && !in.Method.Valid() {
		v.Add("payment_method", "must be one of cash, check, bank_transfer, card, online")
	}
	if in.Status != nil && !in.Status.Valid() {
		v.Add("status", "must be one of pending, processing, completed, rejected")
	}
	return v.OrNil()
}

// =============================================================================
// SERVICE
// =============================================================================

// Service runs, amends and reverses payrolls.
type Service struct {
	Store domain.TxStore
	Tax   TaxPolicy
	Now   func() time.Time
}

// NewService creates a service. A nil tax policy withholds nothing.
func NewService(store domain.TxStore, tax TaxPolicy) *Service {
	if tax == nil {
		tax = NoTax{}
	}
	return &Service{Store: store, Tax: tax, Now: time.Now}
}

// Run aggregates the employee's unpaid DTRs in the period, persists a pending
// payroll and marks the DTRs paid. All or nothing.
func (s *Service) Run(ctx context.Context, actor domain.Actor, in RunInput) (*domain.PayrollRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var result domain.PayrollRecord
	err := s.Store.WithTx(ctx, func(store domain.Store) error {
		p, err := s.compute(ctx, store, in)
		if err != nil {
			return err
		}

		now := s.Now().UTC()
		p.ID = domain.PayrollID(uuid.NewString())
		p.CreatedBy = actor.ID
		p.CreatedAt = now
		p.UpdatedAt = now

		if err := store.InsertPayroll(ctx, p); err != nil {
			return err
		}
		if err := attendance.MarkPaid(ctx, store, p.AttendanceIDs); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Preview computes what Run would produce without writing anything.
func (s *Service) Preview(ctx context.Context, in RunInput) (*domain.PayrollRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.compute(ctx, s.Store, in)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) compute(ctx context.Context, store domain.Store, in RunInput) (domain.PayrollRecord, error) {
	emp, err := store.GetEmployee(ctx, in.EmployeeID)
	if err != nil {
		return domain.PayrollRecord{}, err
	}
	if emp == nil {
		return domain.PayrollRecord{}, domain.NewValidationError("employee_id", "unknown employee "+string(in.EmployeeID))
	}
	records, err := store.ListAttendance(ctx, in.EmployeeID, in.PeriodStart, in.PeriodEnd, true)
	if err != nil {
		return domain.PayrollRecord{}, err
	}
	return Compute(*emp, records, in, s.Tax), nil
}

// Update amends a payroll. Net salary is recomputed from the stored basic,
// overtime and tax whenever allowances or deductions change. Entering
// completed stamps PaidAt once.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id domain.PayrollID, in UpdateInput) (*domain.PayrollRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var result domain.PayrollRecord
	err := s.Store.WithTx(ctx, func(store domain.Store) error {
		p, err := store.GetPayroll(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.NotFoundError{Entity: "payroll", ID: string(id)}
		}

		amountsChange := in.Allowances != nil || in.Deductions != nil || in.Method != nil
		if amountsChange && isFinal(p.Status) {
			return &domain.InvalidStateError{Entity: "payroll", ID: string(id), State: string(p.Status), Op: "amend"}
		}
		if in.Status != nil && !p.Status.CanTransitionTo(*in.Status) {
			return &domain.InvalidStateError{Entity: "payroll", ID: string(id), State: string(p.Status), Op: "move to " + string(*in.Status)}
		}

		now := s.Now().UTC()
		if in.Allowances != nil {
			p.Allowances = domain.RoundMoney(*in.Allowances)
		}
		if in.Deductions != nil {
			p.Deductions = domain.RoundMoney(*in.Deductions)
		}
		if in.Method != nil {
			p.PaymentMethod = *in.Method
		}
		if in.Remarks != nil {
			p.Remarks = *in.Remarks
		}
		if in.Status != nil {
			p.Status = *in.Status
			if p.Status == domain.PayrollCompleted && p.PaidAt == nil {
				p.PaidAt = &now
			}
		}
		p.ComputeNet()
		p.UpdatedAt = now

		if err := store.UpdatePayroll(ctx, *p); err != nil {
			return err
		}
		result = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// isFinal reports whether amounts on a payroll are locked.
func isFinal(s domain.PayrollStatus) bool {
	return s == domain.PayrollCompleted || s == domain.PayrollRejected
}

// Delete removes a pending payroll and returns its DTRs to unpaid.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id domain.PayrollID) error {
	return s.Store.WithTx(ctx, func(store domain.Store) error {
		p, err := store.GetPayroll(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.NotFoundError{Entity: "payroll", ID: string(id)}
		}
		if p.Status != domain.PayrollPending {
			return &domain.InvalidStateError{Entity: "payroll", ID: string(id), State: string(p.Status), Op: "delete"}
		}
		if err := attendance.ResetPaid(ctx, store, p.AttendanceIDs); err != nil {
			return err
		}
		return store.DeletePayroll(ctx, id)
	})
}

// Get returns a payroll or NotFoundError.
func (s *Service) Get(ctx context.Context, id domain.PayrollID) (*domain.PayrollRecord, error) {
	p, err := s.Store.GetPayroll(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &domain.NotFoundError{Entity: "payroll", ID: string(id)}
	}
	return p, nil
}

// List returns payrolls of one employee, or all when employeeID is empty.
func (s *Service) List(ctx context.Context, employeeID domain.EmployeeID) ([]domain.PayrollRecord, error) {
	return s.Store.ListPayrolls(ctx, employeeID)
}
