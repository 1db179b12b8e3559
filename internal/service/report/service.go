// Package report derives account state from the append-only ledger: per
// account balances, trial balances over a date range and the accounting
// equation check. Nothing here writes; every figure is recomputed on demand
// by replaying stored lines.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/ledger/internal/errs"
	"github.com/finbooks/ledger/internal/ledger"
)

// Repo defines the read operations needed by the service.
type Repo interface {
	AccountByCode(ctx context.Context, c string) (ledger.Account, error)
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	EntriesByDateRange(ctx context.Context, from, to *time.Time) ([]ledger.JournalEntry, error)
}

// Balance holds the aggregate activity of one account. BalanceCents is the
// signed net-debit figure (debits minus credits); presentation against the
// account's normal polarity is the caller's concern.
type Balance struct {
	Account      ledger.Account
	DebitCents   int64
	CreditCents  int64
	BalanceCents int64
}

// TrialBalance lists one row per account, including accounts with no
// activity, sorted by code.
type TrialBalance struct {
	From             *time.Time
	To               *time.Time
	Rows             []Balance
	TotalDebitCents  int64
	TotalCreditCents int64
}

// Equation reports assets against liabilities plus equity, each side summed
// with the sign normalized to its polarity. Revenue and expense totals are
// given as context; a non-zero Difference is reported, never corrected.
type Equation struct {
	AsOf             *time.Time
	AssetsCents      int64
	LiabilitiesCents int64
	EquityCents      int64
	RevenueCents     int64
	ExpenseCents     int64
	NetIncomeCents   int64
	DifferenceCents  int64
}

// Service exposes balance and report queries.
type Service interface {
	AccountBalance(ctx context.Context, code string, asOf *time.Time) (Balance, error)
	TrialBalance(ctx context.Context, from, to *time.Time) (TrialBalance, error)
	Equation(ctx context.Context, asOf *time.Time) (Equation, error)
}

type service struct {
	repo Repo
}

func New(repo Repo) Service { return &service{repo: repo} }

// AccountBalance aggregates every line posted to the account with an entry
// date at or before asOf. A nil asOf means all activity.
func (s *service) AccountBalance(ctx context.Context, code string, asOf *time.Time) (Balance, error) {
	a, err := s.repo.AccountByCode(ctx, code)
	if err != nil {
		return Balance{}, err
	}
	entries, err := s.repo.EntriesByDateRange(ctx, nil, asOf)
	if err != nil {
		return Balance{}, err
	}
	b := Balance{Account: a}
	for _, e := range entries {
		for _, ln := range e.Lines {
			if ln.AccountID != a.ID {
				continue
			}
			b.DebitCents += ln.DebitCents
			b.CreditCents += ln.CreditCents
		}
	}
	b.BalanceCents = b.DebitCents - b.CreditCents
	return b, nil
}

// TrialBalance aggregates every account over entries whose date falls in
// [from, to]. Total debits must equal total credits; a mismatch means the
// store holds an unbalanced entry and surfaces as an integrity fault.
func (s *service) TrialBalance(ctx context.Context, from, to *time.Time) (TrialBalance, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return TrialBalance{}, err
	}
	entries, err := s.repo.EntriesByDateRange(ctx, from, to)
	if err != nil {
		return TrialBalance{}, err
	}

	byID := make(map[uuid.UUID]*Balance, len(accounts))
	tb := TrialBalance{From: from, To: to, Rows: make([]Balance, len(accounts))}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	for i, a := range accounts {
		tb.Rows[i] = Balance{Account: a}
		byID[a.ID] = &tb.Rows[i]
	}

	for _, e := range entries {
		for _, ln := range e.Lines {
			row, ok := byID[ln.AccountID]
			if !ok {
				return TrialBalance{}, fmt.Errorf("%w: line %s references unknown account %s",
					errs.ErrIntegrity, ln.ID, ln.AccountID)
			}
			row.DebitCents += ln.DebitCents
			row.CreditCents += ln.CreditCents
		}
	}

	for i := range tb.Rows {
		tb.Rows[i].BalanceCents = tb.Rows[i].DebitCents - tb.Rows[i].CreditCents
		tb.TotalDebitCents += tb.Rows[i].DebitCents
		tb.TotalCreditCents += tb.Rows[i].CreditCents
	}
	if tb.TotalDebitCents != tb.TotalCreditCents {
		return TrialBalance{}, fmt.Errorf("%w: trial balance does not reconcile: debits %d != credits %d",
			errs.ErrIntegrity, tb.TotalDebitCents, tb.TotalCreditCents)
	}
	return tb, nil
}

// Equation computes assets vs liabilities + equity as of a date. Each class
// is summed with its normal polarity so a healthy ledger shows positive
// figures on both sides. Revenue and expenses are excluded from the equation
// proper and reported as net income context.
func (s *service) Equation(ctx context.Context, asOf *time.Time) (Equation, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return Equation{}, err
	}
	entries, err := s.repo.EntriesByDateRange(ctx, nil, asOf)
	if err != nil {
		return Equation{}, err
	}

	typeByID := make(map[uuid.UUID]ledger.AccountType, len(accounts))
	for _, a := range accounts {
		typeByID[a.ID] = a.Type
	}

	eq := Equation{AsOf: asOf}
	for _, e := range entries {
		for _, ln := range e.Lines {
			t, ok := typeByID[ln.AccountID]
			if !ok {
				return Equation{}, fmt.Errorf("%w: line %s references unknown account %s",
					errs.ErrIntegrity, ln.ID, ln.AccountID)
			}
			net := ln.DebitCents - ln.CreditCents
			if ledger.NormalPolarity(t) == ledger.PolarityCredit {
				net = -net
			}
			switch t {
			case ledger.AccountTypeAsset:
				eq.AssetsCents += net
			case ledger.AccountTypeLiability:
				eq.LiabilitiesCents += net
			case ledger.AccountTypeEquity:
				eq.EquityCents += net
			case ledger.AccountTypeRevenue:
				eq.RevenueCents += net
			case ledger.AccountTypeExpense:
				eq.ExpenseCents += net
			}
		}
	}
	eq.NetIncomeCents = eq.RevenueCents - eq.ExpenseCents
	eq.DifferenceCents = eq.AssetsCents - (eq.LiabilitiesCents + eq.EquityCents + eq.NetIncomeCents)
	return eq, nil
}
