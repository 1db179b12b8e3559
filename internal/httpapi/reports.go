package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
)

// getAccountBalance handles GET /v1/accounts/{code}/balance?as_of=.
func (s *Server) getAccountBalance(w http.ResponseWriter, r *http.Request) {
	asOf, ok := dateQueryParam(w, r, "as_of")
	if !ok {
		return
	}
	b, err := s.reportSvc.AccountBalance(r.Context(), chi.URLParam(r, "code"), asOf)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, balanceResponse{
		AccountCode:  b.Account.Code,
		Type:         b.Account.Type,
		AsOf:         fmtDatePtr(asOf),
		DebitCents:   b.DebitCents,
		CreditCents:  b.CreditCents,
		BalanceCents: b.BalanceCents,
		Balance:      s.fmtAmount(b.BalanceCents),
	})
}

// trialBalance handles GET /v1/trial-balance?from=&to=.
func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	from, ok := dateQueryParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := dateQueryParam(w, r, "to")
	if !ok {
		return
	}
	tb, err := s.reportSvc.TrialBalance(r.Context(), from, to)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	resp := trialBalanceResponse{
		From:             fmtDatePtr(from),
		To:               fmtDatePtr(to),
		Rows:             make([]trialBalanceRow, 0, len(tb.Rows)),
		TotalDebitCents:  tb.TotalDebitCents,
		TotalCreditCents: tb.TotalCreditCents,
		TotalDebit:       s.fmtAmount(tb.TotalDebitCents),
		TotalCredit:      s.fmtAmount(tb.TotalCreditCents),
	}
	for _, row := range tb.Rows {
		resp.Rows = append(resp.Rows, trialBalanceRow{
			AccountCode:  row.Account.Code,
			Name:         row.Account.Name,
			Type:         row.Account.Type,
			DebitCents:   row.DebitCents,
			CreditCents:  row.CreditCents,
			BalanceCents: row.BalanceCents,
		})
	}
	toJSON(w, http.StatusOK, resp)
}

// equation handles GET /v1/equation?as_of=.
func (s *Server) equation(w http.ResponseWriter, r *http.Request) {
	asOf, ok := dateQueryParam(w, r, "as_of")
	if !ok {
		return
	}
	eq, err := s.reportSvc.Equation(r.Context(), asOf)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, equationResponse{
		AsOf:             fmtDatePtr(asOf),
		AssetsCents:      eq.AssetsCents,
		LiabilitiesCents: eq.LiabilitiesCents,
		EquityCents:      eq.EquityCents,
		RevenueCents:     eq.RevenueCents,
		ExpenseCents:     eq.ExpenseCents,
		NetIncomeCents:   eq.NetIncomeCents,
		DifferenceCents:  eq.DifferenceCents,
		Balanced:         eq.DifferenceCents == 0,
	})
}
