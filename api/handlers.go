/*
handlers.go - HTTP API handlers for the campus ledger

PURPOSE:
  Exposes the attendance, payroll and tuition services via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  services, which own every business rule.

ENDPOINTS:
  Directory:
    GET    /api/employees                    List employees
    POST   /api/employees                    Create employee
    GET    /api/employees/{id}               Get employee
    GET    /api/students                     List students
    POST   /api/students                     Register student

  Attendance (handlers_attendance.go):
    POST   /api/employees/{id}/attendance    Submit a DTR
    GET    /api/employees/{id}/attendance    DTRs in ?from&to
    GET    /api/employees/{id}/pay-periods   Per-period summaries
    GET    /api/attendance/{id}              Get DTR
    PUT    /api/attendance/{id}              Replace DTR
    DELETE /api/attendance/{id}              Delete DTR

  Payroll (handlers_payroll.go):
    POST   /api/payrolls                     Run payroll
    POST   /api/payrolls/preview             Compute without saving
    GET    /api/payrolls                     List (?employee_id)
    GET    /api/payrolls/{id}                Get payroll
    PUT    /api/payrolls/{id}                Adjust amounts or status
    DELETE /api/payrolls/{id}                Delete pending payroll

  Tuition (handlers_tuition.go):
    POST   /api/enrollments                  Enroll student
    GET    /api/enrollments/{id}             Enrollment and balance
    GET    /api/enrollments/{id}/payments    Payment history
    POST   /api/payments                     Tuition payment
    POST   /api/payments/documents           Document request fee
    GET    /api/payments/{id}/receipt        Receipt view
    DELETE /api/payments/{id}                Reverse payment

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: directory reads and writes
  - Attendance, Payroll, Ledger: the services
  - Metrics: operation counters
  - Checks: named health probes (database, redis)

REQUEST FLOW:
  1. Decode and validate the JSON body (validate.go)
  2. Resolve the actor (auth.go)
  3. Call the service
  4. Serialize response or map the error (errors.go)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/campus-ledger/attendance"
	"github.com/warp/campus-ledger/domain"
	"github.com/warp/campus-ledger/payroll"
	"github.com/warp/campus-ledger/tuition"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	Store      domain.TxStore
	Attendance *attendance.Service
	Payroll    *payroll.Service
	Ledger     *tuition.Ledger
	Metrics    *Metrics
	Checks     map[string]HealthCheck
}

// NewHandler wires the services over one store.
func NewHandler(store domain.TxStore, tax payroll.TaxPolicy, receipts tuition.ReceiptNumberer) *Handler {
	return &Handler{
		Store:      store,
		Attendance: attendance.NewService(store),
		Payroll:    payroll.NewService(store, tax),
		Ledger:     tuition.NewLedger(store, receipts),
		Metrics:    NewMetrics(),
		Checks:     map[string]HealthCheck{},
	}
}

// =============================================================================
// DIRECTORY ENDPOINTS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]EmployeeDTO, len(emps))
	for i, e := range emps {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := domain.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if emp == nil {
		writeDomainError(w, &domain.NotFoundError{Entity: "employee", ID: string(id)})
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee adds an employee. A client supplied id must be unused.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if req.MonthlySalary.IsNegative() {
		writeDomainError(w, domain.NewValidationError("monthly_salary", "must not be negative"))
		return
	}

	emp := domain.Employee{
		ID:            domain.EmployeeID(req.ID),
		Name:          req.Name,
		Position:      req.Position,
		DepartmentID:  req.DepartmentID,
		MonthlySalary: domain.RoundMoney(req.MonthlySalary),
		CreatedAt:     time.Now().UTC(),
	}
	if emp.ID == "" {
		emp.ID = domain.EmployeeID(uuid.NewString())
	}

	err := h.Store.WithTx(r.Context(), func(tx domain.Store) error {
		existing, err := tx.GetEmployee(r.Context(), emp.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.DuplicateRecordError{Entity: "employee", Key: "id", ExistingID: string(emp.ID)}
		}
		return tx.SaveEmployee(r.Context(), emp)
	})
	h.Metrics.Observe("employee.create", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// ListStudents returns all students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]StudentDTO, len(students))
	for i, s := range students {
		dtos[i] = toStudentDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStudent registers a student.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	st := domain.Student{
		ID:            domain.StudentID(req.ID),
		StudentNumber: req.StudentNumber,
		Name:          req.Name,
		CreatedAt:     time.Now().UTC(),
	}
	if st.ID == "" {
		st.ID = domain.StudentID(uuid.NewString())
	}

	err := h.Store.WithTx(r.Context(), func(tx domain.Store) error {
		existing, err := tx.GetStudent(r.Context(), st.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.DuplicateRecordError{Entity: "student", Key: "id", ExistingID: string(st.ID)}
		}
		return tx.SaveStudent(r.Context(), st)
	})
	h.Metrics.Observe("student.create", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentDTO(st))
}

// =============================================================================
// HEALTH
// =============================================================================

// Health runs every probe and reports 503 if any fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := map[string]string{}
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": results})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
