package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/finbooks/ledger/internal/idem"
	"github.com/finbooks/ledger/internal/ledger"
	"github.com/finbooks/ledger/internal/minor"
)

type ctxKey string

const (
	ctxKeyCandidate ctxKey = "validatedCandidate"
	ctxKeyIdemKey   ctxKey = "idempotencyKey"
)

// idempotencyKeyHeader is the request header carrying the client key.
const idempotencyKeyHeader = "Idempotency-Key"

// validatePostEntry decodes and shape-checks the POST /v1/entries payload,
// converts decimal amounts to minor units and stores the candidate in the
// request context. Business rules (balance, duplicates, dates) stay in the
// posting service.
func (s *Server) validatePostEntry() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req postEntryRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			c, ok := s.toCandidate(w, req)
			if !ok {
				return
			}
			key, ok := idemKeyFromHeader(w, r)
			if !ok {
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyCandidate, c)
			ctx = context.WithValue(ctx, ctxKeyIdemKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// toCandidate converts a decoded request into a domain candidate, writing the
// error response and returning ok=false on shape failures.
func (s *Server) toCandidate(w http.ResponseWriter, req postEntryRequest) (ledger.CandidateEntry, bool) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		badRequest(w, "invalid date: expected "+dateLayout)
		return ledger.CandidateEntry{}, false
	}
	if len(req.Narration) < 1 || len(req.Narration) > 500 {
		unprocessable(w, "narration must be between 1 and 500 characters", "invalid_narration")
		return ledger.CandidateEntry{}, false
	}
	c := ledger.CandidateEntry{
		Date:            date,
		Narration:       req.Narration,
		ReversesEntryID: req.ReversesEntryID,
		Lines:           make([]ledger.CandidateLine, 0, len(req.Lines)),
	}
	for _, ln := range req.Lines {
		cl := ledger.CandidateLine{AccountCode: ln.AccountCode}
		if ln.Debit != nil {
			cl.DebitCents, err = minor.ToUnits(*ln.Debit)
			if err != nil {
				unprocessable(w, "invalid debit amount for account "+ln.AccountCode+": "+err.Error(), "invalid_amount")
				return ledger.CandidateEntry{}, false
			}
		}
		if ln.Credit != nil {
			cl.CreditCents, err = minor.ToUnits(*ln.Credit)
			if err != nil {
				unprocessable(w, "invalid credit amount for account "+ln.AccountCode+": "+err.Error(), "invalid_amount")
				return ledger.CandidateEntry{}, false
			}
		}
		c.Lines = append(c.Lines, cl)
	}
	return c, true
}

// idemKeyFromHeader reads the optional Idempotency-Key header. An absent
// header means no idempotency; a present but oversized one is rejected.
func idemKeyFromHeader(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.Header.Get(idempotencyKeyHeader)
	if key != "" && !idem.ValidKey(key) {
		unprocessable(w, "idempotency key must be between 1 and 255 characters", "invalid_idempotency_key")
		return "", false
	}
	return key, true
}

// dateQueryParam parses an optional calendar-date query parameter. A missing
// parameter yields nil; a malformed one writes 400 and returns ok=false.
func dateQueryParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		badRequest(w, "invalid "+name+": expected "+dateLayout)
		return nil, false
	}
	return &t, true
}
