package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/warp/campus-ledger/domain"
)

// writeDomainError maps service errors to HTTP statuses. Storage failures
// are logged and reported without details.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, domain.ErrDuplicateRecord):
		writeError(w, http.StatusConflict, "duplicate record", err)
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid state", err)
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}
