package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/ledger/internal/errs"
	"github.com/finbooks/ledger/internal/ledger"
	"github.com/finbooks/ledger/internal/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedAccounts(t *testing.T, store *memory.Store) map[string]ledger.Account {
	t.Helper()
	accs := map[string]ledger.Account{}
	for _, a := range []ledger.Account{
		{ID: uuid.New(), Code: "1001", Name: "Cash", Type: ledger.AccountTypeAsset},
		{ID: uuid.New(), Code: "3001", Name: "Capital", Type: ledger.AccountTypeEquity},
		{ID: uuid.New(), Code: "4001", Name: "Sales", Type: ledger.AccountTypeRevenue},
		{ID: uuid.New(), Code: "5001", Name: "Rent", Type: ledger.AccountTypeExpense},
	} {
		store.SeedAccount(a)
		accs[a.Code] = a
	}
	return accs
}

func post(t *testing.T, store *memory.Store, accs map[string]ledger.Account, d time.Time, debitCode string, creditCode string, cents int64) ledger.JournalEntry {
	t.Helper()
	entryID := uuid.New()
	e := ledger.JournalEntry{
		ID:        entryID,
		Date:      d,
		Narration: debitCode + "/" + creditCode,
		Lines: []ledger.JournalLine{
			{ID: uuid.New(), EntryID: entryID, AccountID: accs[debitCode].ID, AccountCode: debitCode, LineIndex: 0, DebitCents: cents},
			{ID: uuid.New(), EntryID: entryID, AccountID: accs[creditCode].ID, AccountCode: creditCode, LineIndex: 1, CreditCents: cents},
		},
	}
	saved, replayed, err := store.AppendEntry(context.Background(), e, "", "")
	require.NoError(t, err)
	require.False(t, replayed)
	return saved
}

// seedScenario posts the canonical three-entry setup: capital injection,
// a cash sale, then rent paid.
func seedScenario(t *testing.T, store *memory.Store) map[string]ledger.Account {
	accs := seedAccounts(t, store)
	post(t, store, accs, date(2025, 1, 1), "1001", "3001", 100000)
	post(t, store, accs, date(2025, 1, 5), "1001", "4001", 50000)
	post(t, store, accs, date(2025, 1, 7), "5001", "1001", 20000)
	return accs
}

func TestAccountBalances(t *testing.T) {
	store := memory.New()
	seedScenario(t, store)
	svc := New(store)
	ctx := context.Background()

	cases := []struct {
		code string
		want int64
	}{
		{"1001", 130000},
		{"4001", -50000},
		{"3001", -100000},
		{"5001", 20000},
	}
	for _, tc := range cases {
		b, err := svc.AccountBalance(ctx, tc.code, nil)
		require.NoError(t, err, tc.code)
		assert.Equal(t, tc.want, b.BalanceCents, tc.code)
	}
}

func TestAccountBalanceAsOf(t *testing.T) {
	store := memory.New()
	seedScenario(t, store)
	svc := New(store)

	asOf := date(2025, 1, 5)
	b, err := svc.AccountBalance(context.Background(), "1001", &asOf)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), b.BalanceCents)

	asOf = date(2025, 1, 4)
	b, err = svc.AccountBalance(context.Background(), "1001", &asOf)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), b.BalanceCents)
}

func TestAccountBalanceUnknownCode(t *testing.T) {
	store := memory.New()
	svc := New(store)
	_, err := svc.AccountBalance(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTrialBalance(t *testing.T) {
	store := memory.New()
	seedScenario(t, store)
	svc := New(store)

	tb, err := svc.TrialBalance(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(170000), tb.TotalDebitCents)
	assert.Equal(t, int64(170000), tb.TotalCreditCents)
	require.Len(t, tb.Rows, 4)
	// rows sorted by code, zero-activity accounts included
	assert.Equal(t, "1001", tb.Rows[0].Account.Code)
	assert.Equal(t, "5001", tb.Rows[3].Account.Code)
}

func TestTrialBalanceIncludesInactiveAccounts(t *testing.T) {
	store := memory.New()
	accs := seedAccounts(t, store)
	post(t, store, accs, date(2025, 1, 1), "1001", "3001", 100)
	svc := New(store)

	tb, err := svc.TrialBalance(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, tb.Rows, 4)
	for _, row := range tb.Rows {
		if row.Account.Code == "4001" || row.Account.Code == "5001" {
			assert.Zero(t, row.DebitCents)
			assert.Zero(t, row.CreditCents)
		}
	}
}

func TestTrialBalanceDateRange(t *testing.T) {
	store := memory.New()
	seedScenario(t, store)
	svc := New(store)

	from, to := date(2025, 1, 5), date(2025, 1, 7)
	tb, err := svc.TrialBalance(context.Background(), &from, &to)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), tb.TotalDebitCents)
	assert.Equal(t, tb.TotalDebitCents, tb.TotalCreditCents)
}

func TestEquation(t *testing.T) {
	store := memory.New()
	seedScenario(t, store)
	svc := New(store)

	eq, err := svc.Equation(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(130000), eq.AssetsCents)
	assert.Equal(t, int64(0), eq.LiabilitiesCents)
	assert.Equal(t, int64(100000), eq.EquityCents)
	assert.Equal(t, int64(50000), eq.RevenueCents)
	assert.Equal(t, int64(20000), eq.ExpenseCents)
	assert.Equal(t, int64(30000), eq.NetIncomeCents)
	assert.Equal(t, int64(0), eq.DifferenceCents)
}
