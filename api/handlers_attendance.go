package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/campus-ledger/attendance"
	"github.com/warp/campus-ledger/domain"
)

// =============================================================================
// ATTENDANCE ENDPOINTS
// =============================================================================

// SubmitAttendance records a DTR for the employee in the path.
func (h *Handler) SubmitAttendance(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeEntry(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	entry.EmployeeID = domain.EmployeeID(chi.URLParam(r, "id"))

	rec, err := h.Attendance.Submit(r.Context(), ActorFrom(r.Context()), entry)
	h.Metrics.Observe("attendance.submit", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttendanceDTO(*rec))
}

// ListAttendance returns the employee's DTRs in ?from&to (default: this month).
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	records, err := h.Attendance.List(r.Context(), domain.EmployeeID(chi.URLParam(r, "id")), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]AttendanceDTO, len(records))
	for i, rec := range records {
		dtos[i] = toAttendanceDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayPeriods summarizes the employee's DTRs per semi-monthly period.
func (h *Handler) GetPayPeriods(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	summaries, err := h.Attendance.Summaries(r.Context(), domain.EmployeeID(chi.URLParam(r, "id")), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]PeriodSummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toPeriodSummaryDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAttendance returns one DTR.
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Attendance.Get(r.Context(), domain.AttendanceID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTO(*rec))
}

// UpdateAttendance replaces a DTR's times and status. Derived hours are
// recomputed by the service.
func (h *Handler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeEntry(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	id := domain.AttendanceID(chi.URLParam(r, "id"))
	rec, err := h.Attendance.Update(r.Context(), ActorFrom(r.Context()), id, entry)
	h.Metrics.Observe("attendance.update", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTO(*rec))
}

// DeleteAttendance removes an unpaid DTR.
func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	id := domain.AttendanceID(chi.URLParam(r, "id"))
	err := h.Attendance.Delete(r.Context(), ActorFrom(r.Context()), id)
	h.Metrics.Observe("attendance.delete", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeEntry(r *http.Request) (attendance.Entry, error) {
	var req AttendanceRequest
	if err := decodeRequest(r, &req); err != nil {
		return attendance.Entry{}, err
	}
	verr := &domain.ValidationError{}
	entry := attendance.Entry{
		Date:          parseDate(verr, "date", req.Date),
		Status:        domain.AttendanceStatus(req.Status),
		TimeIn:        parseClock(verr, "time_in", req.TimeIn),
		TimeOut:       parseClock(verr, "time_out", req.TimeOut),
		LunchStart:    parseClock(verr, "lunch_start", req.LunchStart),
		LunchEnd:      parseClock(verr, "lunch_end", req.LunchEnd),
		OvertimeStart: parseClock(verr, "overtime_start", req.OvertimeStart),
		OvertimeEnd:   parseClock(verr, "overtime_end", req.OvertimeEnd),
		LeaveType:     req.LeaveType,
		Remarks:       req.Remarks,
	}
	return entry, verr.OrNil()
}

// dateRange reads ?from and ?to. A missing from defaults to the first of the
// current month and a missing to to the end of from's month.
func dateRange(r *http.Request) (domain.Date, domain.Date, error) {
	verr := &domain.ValidationError{}
	today := domain.Today()
	from := domain.StartOfMonth(today.Year(), today.Month())
	if s := r.URL.Query().Get("from"); s != "" {
		from = parseDate(verr, "from", s)
	}
	to := domain.EndOfMonth(from.Year(), from.Month())
	if s := r.URL.Query().Get("to"); s != "" {
		to = parseDate(verr, "to", s)
	}
	return from, to, verr.OrNil()
}
