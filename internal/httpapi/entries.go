package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finbooks/ledger/internal/ledger"
)

// postEntry handles POST /v1/entries. The validation middleware has already
// placed the shape-checked candidate and idempotency key in the context.
// A replayed creation returns 200 with the original entry; a fresh one 201.
func (s *Server) postEntry(w http.ResponseWriter, r *http.Request) {
	c, _ := r.Context().Value(ctxKeyCandidate).(ledger.CandidateEntry)
	key, _ := r.Context().Value(ctxKeyIdemKey).(string)

	e, replayed, err := s.postingSvc.Create(r.Context(), c, key)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	if replayed {
		idempotentReplaysTotal.Inc()
		toJSON(w, http.StatusOK, s.toEntryResponse(e))
		return
	}
	entriesPostedTotal.Inc()
	toJSON(w, http.StatusCreated, s.toEntryResponse(e))
}

// listEntries handles GET /v1/entries?from=&to=.
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	from, ok := dateQueryParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := dateQueryParam(w, r, "to")
	if !ok {
		return
	}
	entries, err := s.postingSvc.List(r.Context(), from, to)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	resp := listEntriesResponse{Items: make([]entryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Items = append(resp.Items, s.toEntryResponse(e))
	}
	toJSON(w, http.StatusOK, resp)
}

// getEntry handles GET /v1/entries/{id}.
func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid entry id")
		return
	}
	e, err := s.postingSvc.Get(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, s.toEntryResponse(e))
}

// reverseEntry handles POST /v1/entries/{id}/reverse. The body is optional;
// an omitted date defaults to today. The reversal runs through the full
// validation and idempotency path like any other entry.
func (s *Server) reverseEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid entry id")
		return
	}
	var req reverseEntryRequest
	if body, readErr := io.ReadAll(r.Body); readErr == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			badRequest(w, "invalid JSON: "+err.Error())
			return
		}
	}
	var date time.Time
	if req.Date != "" {
		date, err = time.Parse(dateLayout, req.Date)
		if err != nil {
			badRequest(w, "invalid date: expected "+dateLayout)
			return
		}
	}
	key, ok := idemKeyFromHeader(w, r)
	if !ok {
		return
	}
	e, replayed, err := s.postingSvc.Reverse(r.Context(), id, date, req.Narration, key)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	if replayed {
		idempotentReplaysTotal.Inc()
		toJSON(w, http.StatusOK, s.toEntryResponse(e))
		return
	}
	entriesPostedTotal.Inc()
	toJSON(w, http.StatusCreated, s.toEntryResponse(e))
}
