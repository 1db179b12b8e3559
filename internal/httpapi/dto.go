package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger/internal/ledger"
)

const dateLayout = "2006-01-02"

type postAccountRequest struct {
	Code string             `json:"code"`
	Name string             `json:"name"`
	Type ledger.AccountType `json:"type"`
}

type accountResponse struct {
	ID            uuid.UUID          `json:"id"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Type          ledger.AccountType `json:"type"`
	NormalBalance ledger.Polarity    `json:"normal_balance"`
}

type postEntryRequest struct {
	Date            string          `json:"date"`
	Narration       string          `json:"narration"`
	ReversesEntryID *uuid.UUID      `json:"reverses_entry_id,omitempty"`
	Lines           []postEntryLine `json:"lines"`
}

// postEntryLine carries decimal amounts; they are converted to minor units
// exactly once, at this boundary.
type postEntryLine struct {
	AccountCode string           `json:"account_code"`
	Debit       *decimal.Decimal `json:"debit,omitempty"`
	Credit      *decimal.Decimal `json:"credit,omitempty"`
}

type reverseEntryRequest struct {
	Date      string `json:"date,omitempty"`
	Narration string `json:"narration,omitempty"`
}

type entryResponse struct {
	ID              uuid.UUID      `json:"id"`
	Date            string         `json:"date"`
	Narration       string         `json:"narration"`
	PostedAt        time.Time      `json:"posted_at"`
	ReversesEntryID *uuid.UUID     `json:"reverses_entry_id,omitempty"`
	Lines           []lineResponse `json:"lines"`
}

type lineResponse struct {
	AccountCode string `json:"account_code"`
	LineIndex   int    `json:"line_index"`
	DebitCents  int64  `json:"debit_cents"`
	CreditCents int64  `json:"credit_cents"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
}

type listEntriesResponse struct {
	Items []entryResponse `json:"items"`
}

type balanceResponse struct {
	AccountCode  string             `json:"account_code"`
	Type         ledger.AccountType `json:"type"`
	AsOf         *string            `json:"as_of,omitempty"`
	DebitCents   int64              `json:"debit_cents"`
	CreditCents  int64              `json:"credit_cents"`
	BalanceCents int64              `json:"balance_cents"`
	Balance      string             `json:"balance"`
}

type trialBalanceRow struct {
	AccountCode  string             `json:"account_code"`
	Name         string             `json:"name"`
	Type         ledger.AccountType `json:"type"`
	DebitCents   int64              `json:"debit_cents"`
	CreditCents  int64              `json:"credit_cents"`
	BalanceCents int64              `json:"balance_cents"`
}

type trialBalanceResponse struct {
	From             *string           `json:"from,omitempty"`
	To               *string           `json:"to,omitempty"`
	Rows             []trialBalanceRow `json:"rows"`
	TotalDebitCents  int64             `json:"total_debit_cents"`
	TotalCreditCents int64             `json:"total_credit_cents"`
	TotalDebit       string            `json:"total_debit"`
	TotalCredit      string            `json:"total_credit"`
}

type equationResponse struct {
	AsOf             *string `json:"as_of,omitempty"`
	AssetsCents      int64   `json:"assets_cents"`
	LiabilitiesCents int64   `json:"liabilities_cents"`
	EquityCents      int64   `json:"equity_cents"`
	RevenueCents     int64   `json:"revenue_cents"`
	ExpenseCents     int64   `json:"expense_cents"`
	NetIncomeCents   int64   `json:"net_income_cents"`
	DifferenceCents  int64   `json:"difference_cents"`
	Balanced         bool    `json:"balanced"`
}

// fmtAmount renders minor units as a decimal amount in the configured
// display currency.
func (s *Server) fmtAmount(cents int64) string {
	amt, err := money.NewAmountFromMinorUnits(s.currency, cents)
	if err != nil {
		return ""
	}
	return amt.String()
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		Code:          a.Code,
		Name:          a.Name,
		Type:          a.Type,
		NormalBalance: ledger.NormalPolarity(a.Type),
	}
}

func (s *Server) toEntryResponse(e ledger.JournalEntry) entryResponse {
	resp := entryResponse{
		ID:              e.ID,
		Date:            e.Date.Format(dateLayout),
		Narration:       e.Narration,
		PostedAt:        e.PostedAt,
		ReversesEntryID: e.ReversesEntryID,
		Lines:           make([]lineResponse, 0, len(e.Lines)),
	}
	for _, ln := range e.Lines {
		lr := lineResponse{
			AccountCode: ln.AccountCode,
			LineIndex:   ln.LineIndex,
			DebitCents:  ln.DebitCents,
			CreditCents: ln.CreditCents,
		}
		if ln.DebitCents > 0 {
			lr.Debit = s.fmtAmount(ln.DebitCents)
		}
		if ln.CreditCents > 0 {
			lr.Credit = s.fmtAmount(ln.CreditCents)
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}

func fmtDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := ledger.Date(*t).Format(dateLayout)
	return &v
}
