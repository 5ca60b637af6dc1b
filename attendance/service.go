package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warp/campus-ledger/domain"
)

// =============================================================================
// SERVICE - DTR lifecycle
// =============================================================================

// Service creates, edits and removes attendance records.
type Service struct {
	Store domain.TxStore
	Now   func() time.Time
}

// NewService creates a service backed by store.
func NewService(store domain.TxStore) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Submit validates and stores a new record for (employee, date).
// Returns DuplicateRecordError if the employee already has a record that day.
func (s *Service) Submit(ctx context.Context, actor domain.Actor, e Entry) (*domain.AttendanceRecord, error) {
	rec, err := Build(e)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	rec.ID = domain.AttendanceID(uuid.NewString())
	rec.CreatedBy = actor.ID
	rec.CreatedAt = now
	rec.UpdatedAt = now

	err = s.Store.WithTx(ctx, func(store domain.Store) error {
		if err := requireEmployee(ctx, store, rec.EmployeeID); err != nil {
			return err
		}
		existing, err := store.FindAttendance(ctx, rec.EmployeeID, rec.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.DuplicateRecordError{
				Entity:     "attendance",
				Key:        string(rec.EmployeeID) + " on " + rec.Date.String(),
				ExistingID: string(existing.ID),
			}
		}
		return store.InsertAttendance(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update re-validates and recomputes an unpaid record. The employee of a
// record is fixed; an empty EmployeeID in e keeps the current one.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id domain.AttendanceID, e Entry) (*domain.AttendanceRecord, error) {
	var updated domain.AttendanceRecord

	err := s.Store.WithTx(ctx, func(store domain.Store) error {
		current, err := store.GetAttendance(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return &domain.NotFoundError{Entity: "attendance", ID: string(id)}
		}
		if current.IsPaid {
			return &domain.InvalidStateError{Entity: "attendance", ID: string(id), State: "paid", Op: "update"}
		}

		if e.EmployeeID == "" {
			e.EmployeeID = current.EmployeeID
		}
		if e.EmployeeID != current.EmployeeID {
			return domain.NewValidationError("employee_id", "cannot be changed")
		}

		rec, err := Build(e)
		if err != nil {
			return err
		}
		rec.ID = current.ID
		rec.CreatedBy = current.CreatedBy
		rec.CreatedAt = current.CreatedAt
		rec.UpdatedAt = s.Now().UTC()

		if err := store.UpdateAttendance(ctx, rec); err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes an unpaid record.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id domain.AttendanceID) error {
	return s.Store.WithTx(ctx, func(store domain.Store) error {
		current, err := store.GetAttendance(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return &domain.NotFoundError{Entity: "attendance", ID: string(id)}
		}
		if current.IsPaid {
			return &domain.InvalidStateError{Entity: "attendance", ID: string(id), State: "paid", Op: "delete"}
		}
		return store.DeleteAttendance(ctx, id)
	})
}

// Get returns a record or NotFoundError.
func (s *Service) Get(ctx context.Context, id domain.AttendanceID) (*domain.AttendanceRecord, error) {
	rec, err := s.Store.GetAttendance(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &domain.NotFoundError{Entity: "attendance", ID: string(id)}
	}
	return rec, nil
}

// List returns an employee's records in [from, to].
func (s *Service) List(ctx context.Context, employeeID domain.EmployeeID, from, to domain.Date) ([]domain.AttendanceRecord, error) {
	if to.Before(from) {
		return nil, domain.NewValidationError("to", "must not be before from")
	}
	return s.Store.ListAttendance(ctx, employeeID, from, to, false)
}

// Summaries groups an employee's records in [from, to] by pay period.
func (s *Service) Summaries(ctx context.Context, employeeID domain.EmployeeID, from, to domain.Date) ([]PeriodSummary, error) {
	records, err := s.List(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	return Summarize(records), nil
}

// =============================================================================
// PAID FLAG - Used by payroll inside its own transaction
// =============================================================================

// MarkPaid flags the given records as paid. Ownership and period checks are
// the caller's responsibility.
func MarkPaid(ctx context.Context, store domain.AttendanceStore, ids []domain.AttendanceID) error {
	if len(ids) == 0 {
		return nil
	}
	return store.SetAttendancePaid(ctx, ids, true)
}

// ResetPaid returns the given records to unpaid.
func ResetPaid(ctx context.Context, store domain.AttendanceStore, ids []domain.AttendanceID) error {
	if len(ids) == 0 {
		return nil
	}
	return store.SetAttendancePaid(ctx, ids, false)
}

func requireEmployee(ctx context.Context, store domain.EmployeeStore, id domain.EmployeeID) error {
	emp, err := store.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if emp == nil {
		return domain.NewValidationError("employee_id", "unknown employee "+string(id))
	}
	return nil
}
