package httpapi

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
)

// postAccount handles POST /v1/accounts.
func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req postAccountRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	a, err := s.directorySvc.Create(r.Context(), req.Code, req.Name, req.Type)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(a))
}

// listAccounts handles GET /v1/accounts.
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.directorySvc.List(r.Context())
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	items := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, struct {
		Items []accountResponse `json:"items"`
	}{Items: items})
}

// getAccount handles GET /v1/accounts/{code}.
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.directorySvc.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(a))
}

// deleteAccount handles DELETE /v1/accounts/{code}. Deletion is refused once
// the account has journal activity.
func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.directorySvc.Retire(r.Context(), chi.URLParam(r, "code")); err != nil {
		s.writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
