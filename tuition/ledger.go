/*
Package tuition keeps enrollment balances in step with payments.

PURPOSE:
  Records tuition and document-fee payments, issues receipt numbers and
  recomputes an enrollment's remaining balance whenever a tuition payment is
  added or reversed.

INVARIANT:
  For every enrollment, after each create or reverse:

    remaining_balance = total_fee - sum(tuition payments)

  The balance is recomputed from the payment rows, never adjusted by delta,
  and the write shares a transaction with the payment insert or delete.

  Overpayment is accepted; the balance then goes negative (credit).
  Document payments carry no enrollment and never touch a balance.

SEE ALSO:
  - receipt.go: receipt number generation
  - domain/store.go: SumPayments, SetRemainingBalance
*/
package tuition

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/campus-ledger/domain"
)

// PaymentInput is a tuition payment against an enrollment.
type PaymentInput struct {
	StudentID    domain.StudentID
	EnrollmentID domain.EnrollmentID
	Amount       decimal.Decimal
	Method       domain.PaymentMethod
	Remarks      string
}

// DocumentPaymentInput is a fee for a document request (transcript,
// certificate). It has no enrollment.
type DocumentPaymentInput struct {
	StudentID   domain.StudentID
	DocumentRef string
	Amount      decimal.Decimal
	Method      domain.PaymentMethod
	Remarks     string
}

// EnrollInput registers a student for a course.
type EnrollInput struct {
	StudentID    domain.StudentID
	Course       string
	AcademicYear string
	Semester     string
	TotalFee     decimal.Decimal
}

// Receipt combines a payment with the student and enrollment it was made
// for. Enrollment is nil for document payments.
type Receipt struct {
	Payment    domain.Payment
	Student    domain.Student
	Enrollment *domain.Enrollment
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger records and reverses payments.
type Ledger struct {
	Store    domain.TxStore
	Receipts ReceiptNumberer
	Now      func() time.Time
}

// NewLedger creates a ledger. A nil numberer falls back to RandomReceipts.
func NewLedger(store domain.TxStore, receipts ReceiptNumberer) *Ledger {
	if receipts == nil {
		receipts = RandomReceipts{}
	}
	return &Ledger{Store: store, Receipts: receipts, Now: time.Now}
}

// Enroll creates an enrollment with its full fee outstanding.
func (l *Ledger) Enroll(ctx context.Context, in EnrollInput) (*domain.Enrollment, error) {
	v := &domain.ValidationError{}
	if in.StudentID == "" {
		v.Add("student_id", "required")
	}
	if strings.TrimSpace(in.Course) == "" {
		v.Add("course", "required")
	}
	if in.TotalFee.IsNegative() {
		v.Add("total_fee", "must not be negative")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	e := domain.Enrollment{
		ID:               domain.EnrollmentID(uuid.NewString()),
		StudentID:        in.StudentID,
		Course:           strings.TrimSpace(in.Course),
		AcademicYear:     in.AcademicYear,
		Semester:         in.Semester,
		TotalFee:         domain.RoundMoney(in.TotalFee),
		RemainingBalance: domain.RoundMoney(in.TotalFee),
		CreatedAt:        l.Now().UTC(),
	}
	err := l.Store.WithTx(ctx, func(store domain.Store) error {
		if _, err := requireStudent(ctx, store, in.StudentID); err != nil {
			return err
		}
		return store.SaveEnrollment(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// RecordPayment stores a tuition payment and recomputes the balance.
func (l *Ledger) RecordPayment(ctx context.Context, actor domain.Actor, in PaymentInput) (*Receipt, error) {
	v := &domain.ValidationError{}
	if in.StudentID == "" {
		v.Add("student_id", "required")
	}
	if in.EnrollmentID == "" {
		v.Add("enrollment_id", "required")
	}
	checkAmount(v, in.Amount, in.Method)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	p, err := l.newPayment(ctx, actor, domain.PaymentTuition, in.StudentID, in.Amount, in.Method, in.Remarks)
	if err != nil {
		return nil, err
	}
	p.EnrollmentID = in.EnrollmentID

	var receipt Receipt
	err = l.Store.WithTx(ctx, func(store domain.Store) error {
		student, err := requireStudent(ctx, store, in.StudentID)
		if err != nil {
			return err
		}
		enrollment, err := store.GetEnrollment(ctx, in.EnrollmentID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return domain.NewValidationError("enrollment_id", "unknown enrollment "+string(in.EnrollmentID))
		}
		if enrollment.StudentID != in.StudentID {
			return domain.NewValidationError("enrollment_id", "enrollment belongs to another student")
		}

		if err := store.InsertPayment(ctx, p); err != nil {
			return err
		}
		balance, err := recomputeBalance(ctx, store, *enrollment)
		if err != nil {
			return err
		}
		enrollment.RemainingBalance = balance

		receipt = Receipt{Payment: p, Student: *student, Enrollment: enrollment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// RecordDocumentPayment stores a document fee. No balance changes.
func (l *Ledger) RecordDocumentPayment(ctx context.Context, actor domain.Actor, in DocumentPaymentInput) (*Receipt, error) {
	v := &domain.ValidationError{}
	if in.StudentID == "" {
		v.Add("student_id", "required")
	}
	if strings.TrimSpace(in.DocumentRef) == "" {
		v.Add("document_ref", "required")
	}
	checkAmount(v, in.Amount, in.Method)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	p, err := l.newPayment(ctx, actor, domain.PaymentDocument, in.StudentID, in.Amount, in.Method, in.Remarks)
	if err != nil {
		return nil, err
	}
	p.DocumentRef = strings.TrimSpace(in.DocumentRef)

	var receipt Receipt
	err = l.Store.WithTx(ctx, func(store domain.Store) error {
		student, err := requireStudent(ctx, store, in.StudentID)
		if err != nil {
			return err
		}
		if err := store.InsertPayment(ctx, p); err != nil {
			return err
		}
		receipt = Receipt{Payment: p, Student: *student}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ReversePayment deletes a payment and restores the enrollment balance it
// had reduced.
func (l *Ledger) ReversePayment(ctx context.Context, actor domain.Actor, id domain.PaymentID) error {
	return l.Store.WithTx(ctx, func(store domain.Store) error {
		p, err := store.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.NotFoundError{Entity: "payment", ID: string(id)}
		}

		if p.Type == domain.PaymentTuition && p.EnrollmentID != "" {
			enrollment, err := store.GetEnrollment(ctx, p.EnrollmentID)
			if err != nil {
				return err
			}
			if enrollment == nil {
				return &domain.NotFoundError{Entity: "enrollment", ID: string(p.EnrollmentID)}
			}
			paid, err := store.SumPayments(ctx, p.EnrollmentID)
			if err != nil {
				return err
			}
			balance := domain.RoundMoney(enrollment.TotalFee.Sub(paid.Sub(p.Amount)))
			if err := store.SetRemainingBalance(ctx, p.EnrollmentID, balance); err != nil {
				return err
			}
		}
		return store.DeletePayment(ctx, id)
	})
}

// Receipt rebuilds the receipt view of a stored payment.
func (l *Ledger) Receipt(ctx context.Context, id domain.PaymentID) (*Receipt, error) {
	p, err := l.Store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &domain.NotFoundError{Entity: "payment", ID: string(id)}
	}
	student, err := l.Store.GetStudent(ctx, p.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, &domain.NotFoundError{Entity: "student", ID: string(p.StudentID)}
	}

	receipt := &Receipt{Payment: *p, Student: *student}
	if p.EnrollmentID != "" {
		if receipt.Enrollment, err = l.Store.GetEnrollment(ctx, p.EnrollmentID); err != nil {
			return nil, err
		}
	}
	return receipt, nil
}

// Payments lists the tuition payments of an enrollment, oldest first.
func (l *Ledger) Payments(ctx context.Context, enrollmentID domain.EnrollmentID) ([]domain.Payment, error) {
	if _, err := l.Balance(ctx, enrollmentID); err != nil {
		return nil, err
	}
	return l.Store.ListPayments(ctx, enrollmentID)
}

// Balance returns the enrollment with its current remaining balance.
func (l *Ledger) Balance(ctx context.Context, enrollmentID domain.EnrollmentID) (*domain.Enrollment, error) {
	e, err := l.Store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &domain.NotFoundError{Entity: "enrollment", ID: string(enrollmentID)}
	}
	return e, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (l *Ledger) newPayment(ctx context.Context, actor domain.Actor, typ domain.PaymentType, student domain.StudentID, amount decimal.Decimal, method domain.PaymentMethod, remarks string) (domain.Payment, error) {
	now := l.Now().UTC()
	number, err := l.Receipts.Next(ctx, now)
	if err != nil {
		return domain.Payment{}, &domain.StorageError{Op: "issue receipt number", Err: err}
	}
	return domain.Payment{
		ID:            domain.PaymentID(uuid.NewString()),
		Type:          typ,
		StudentID:     student,
		Amount:        domain.RoundMoney(amount),
		Method:        method,
		ReceiptNumber: number,
		Remarks:       remarks,
		PaidAt:        now,
		CashierID:     actor.ID,
		CashierName:   actor.Name,
	}, nil
}

func checkAmount(v *domain.ValidationError, amount decimal.Decimal, method domain.PaymentMethod) {
	if !amount.IsPositive() {
		v.Add("amount", "must be greater than 0")
	} else if !domain.RoundMoney(amount).IsPositive() {
		v.Add("amount", "must be at least 0.01")
	}
	if !method.Valid() {
		v.Add("payment_method", "must be one of cash, check, bank_transfer, card, online")
	}
}

func requireStudent(ctx context.Context, store domain.StudentStore, id domain.StudentID) (*domain.Student, error) {
	st, err := store.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.NewValidationError("student_id", "unknown student "+string(id))
	}
	return st, nil
}

// recomputeBalance sets remaining = total fee - sum of payments and returns it.
func recomputeBalance(ctx context.Context, store domain.Store, e domain.Enrollment) (decimal.Decimal, error) {
	paid, err := store.SumPayments(ctx, e.ID)
	if err != nil {
		return decimal.Zero, err
	}
	balance := domain.RoundMoney(e.TotalFee.Sub(paid))
	if err := store.SetRemainingBalance(ctx, e.ID, balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}
