package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/campus-ledger/domain"
	"github.com/warp/campus-ledger/tuition"
)

// =============================================================================
// TUITION ENDPOINTS
// =============================================================================

// CreateEnrollment enrolls a student; the balance starts at the total fee.
func (h *Handler) CreateEnrollment(w http.ResponseWriter, r *http.Request) {
	var req CreateEnrollmentRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	e, err := h.Ledger.Enroll(r.Context(), tuition.EnrollInput{
		StudentID:    domain.StudentID(req.StudentID),
		Course:       req.Course,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		TotalFee:     req.TotalFee,
	})
	h.Metrics.Observe("enrollment.create", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEnrollmentDTO(*e))
}

// GetEnrollment returns an enrollment with its current balance.
func (h *Handler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	e, err := h.Ledger.Balance(r.Context(), domain.EnrollmentID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEnrollmentDTO(*e))
}

// ListEnrollmentPayments returns the payments against an enrollment.
func (h *Handler) ListEnrollmentPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Ledger.Payments(r.Context(), domain.EnrollmentID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordPayment records a tuition payment and returns its receipt.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	receipt, err := h.Ledger.RecordPayment(r.Context(), ActorFrom(r.Context()), tuition.PaymentInput{
		StudentID:    domain.StudentID(req.StudentID),
		EnrollmentID: domain.EnrollmentID(req.EnrollmentID),
		Amount:       req.Amount,
		Method:       domain.PaymentMethod(req.PaymentMethod),
		Remarks:      req.Remarks,
	})
	h.Metrics.Observe("payment.record", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.Metrics.Collected(receipt.Payment)
	writeJSON(w, http.StatusCreated, toReceiptDTO(*receipt))
}

// RecordDocumentPayment records a document request fee.
func (h *Handler) RecordDocumentPayment(w http.ResponseWriter, r *http.Request) {
	var req DocumentPaymentRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	receipt, err := h.Ledger.RecordDocumentPayment(r.Context(), ActorFrom(r.Context()), tuition.DocumentPaymentInput{
		StudentID:   domain.StudentID(req.StudentID),
		DocumentRef: req.DocumentRef,
		Amount:      req.Amount,
		Method:      domain.PaymentMethod(req.PaymentMethod),
		Remarks:     req.Remarks,
	})
	h.Metrics.Observe("payment.document", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.Metrics.Collected(receipt.Payment)
	writeJSON(w, http.StatusCreated, toReceiptDTO(*receipt))
}

// GetReceipt returns the receipt view of a payment.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.Ledger.Receipt(r.Context(), domain.PaymentID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptDTO(*receipt))
}

// ReversePayment deletes a payment and restores the enrollment balance.
func (h *Handler) ReversePayment(w http.ResponseWriter, r *http.Request) {
	err := h.Ledger.ReversePayment(r.Context(), ActorFrom(r.Context()), domain.PaymentID(chi.URLParam(r, "id")))
	h.Metrics.Observe("payment.reverse", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
