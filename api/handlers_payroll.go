package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/campus-ledger/domain"
	"github.com/warp/campus-ledger/payroll"
)

// =============================================================================
// PAYROLL ENDPOINTS
// =============================================================================

// RunPayroll aggregates unpaid DTRs into a pending payroll.
func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	in, err := decodeRun(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rec, err := h.Payroll.Run(r.Context(), ActorFrom(r.Context()), in)
	h.Metrics.Observe("payroll.run", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayrollDTO(*rec))
}

// PreviewPayroll returns what RunPayroll would store, without writing.
func (h *Handler) PreviewPayroll(w http.ResponseWriter, r *http.Request) {
	in, err := decodeRun(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rec, err := h.Payroll.Preview(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayrollDTO(*rec))
}

// ListPayrolls returns payrolls, optionally for one ?employee_id.
func (h *Handler) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	emp := domain.EmployeeID(r.URL.Query().Get("employee_id"))
	recs, err := h.Payroll.List(r.Context(), emp)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]PayrollDTO, len(recs))
	for i, p := range recs {
		dtos[i] = toPayrollDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayroll returns one payroll with its covered DTR ids.
func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Payroll.Get(r.Context(), domain.PayrollID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayrollDTO(*rec))
}

// UpdatePayroll adjusts amounts, method, remarks or status.
func (h *Handler) UpdatePayroll(w http.ResponseWriter, r *http.Request) {
	var req UpdatePayrollRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	in := payroll.UpdateInput{
		Allowances: req.Allowances,
		Deductions: req.Deductions,
		Remarks:    req.Remarks,
	}
	if req.PaymentMethod != nil {
		m := domain.PaymentMethod(*req.PaymentMethod)
		in.Method = &m
	}
	if req.Status != nil {
		s := domain.PayrollStatus(*req.Status)
		in.Status = &s
	}

	rec, err := h.Payroll.Update(r.Context(), ActorFrom(r.Context()), domain.PayrollID(chi.URLParam(r, "id")), in)
	h.Metrics.Observe("payroll.update", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayrollDTO(*rec))
}

// DeletePayroll removes a pending payroll and releases its DTRs.
func (h *Handler) DeletePayroll(w http.ResponseWriter, r *http.Request) {
	err := h.Payroll.Delete(r.Context(), ActorFrom(r.Context()), domain.PayrollID(chi.URLParam(r, "id")))
	h.Metrics.Observe("payroll.delete", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeRun(r *http.Request) (payroll.RunInput, error) {
	var req RunPayrollRequest
	if err := decodeRequest(r, &req); err != nil {
		return payroll.RunInput{}, err
	}
	verr := &domain.ValidationError{}
	in := payroll.RunInput{
		EmployeeID:  domain.EmployeeID(req.EmployeeID),
		PeriodStart: parseDate(verr, "pay_period_start", req.PayPeriodStart),
		PeriodEnd:   parseDate(verr, "pay_period_end", req.PayPeriodEnd),
		Allowances:  req.Allowances,
		Deductions:  req.Deductions,
		Method:      domain.PaymentMethod(req.PaymentMethod),
		Remarks:     req.Remarks,
	}
	return in, verr.OrNil()
}
