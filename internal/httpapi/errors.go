package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finbooks/ledger/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusNotFound, msg, "not_found")
}
func conflict(w http.ResponseWriter, msg, code string) {
	writeErr(w, http.StatusConflict, msg, code)
}
func unprocessable(w http.ResponseWriter, msg, code string) {
	writeErr(w, http.StatusUnprocessableEntity, msg, code)
}

// writeDomainErr maps service errors onto HTTP statuses. Validation failures
// are 422 with their machine code; missing accounts and unknown entries are
// 404; conflicts (duplicate code, idempotency key reuse) are 409. An
// integrity fault means the ledger failed a self-check that must always
// pass, so it is logged loudly and surfaced as 500.
func (s *Server) writeDomainErr(w http.ResponseWriter, err error) {
	var v *errs.Validation
	if errors.As(err, &v) {
		unprocessable(w, v.Msg, v.Code)
		return
	}
	var missing *errs.MissingAccounts
	if errors.As(err, &missing) {
		notFound(w, missing.Error())
		return
	}
	switch {
	case errors.Is(err, errs.ErrIdempotencyConflict):
		conflict(w, "idempotency key already used with a different payload", "idempotency_conflict")
	case errors.Is(err, errs.ErrConflict):
		conflict(w, err.Error(), "conflict")
	case errors.Is(err, errs.ErrHasActivity):
		conflict(w, "account has journal activity and cannot be deleted", "account_has_activity")
	case errors.Is(err, errs.ErrNotFound):
		notFound(w, "not_found")
	case errors.Is(err, errs.ErrIntegrity):
		s.log.Error("ledger integrity fault", slog.String("err", err.Error()))
		writeErr(w, http.StatusInternalServerError, "internal_error", "integrity_fault")
	default:
		writeErr(w, http.StatusInternalServerError, "internal_error", "")
	}
}
