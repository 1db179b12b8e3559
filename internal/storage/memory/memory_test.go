package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/ledger/internal/errs"
	"github.com/finbooks/ledger/internal/ledger"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(a, b ledger.Account, d time.Time, cents int64) ledger.JournalEntry {
	id := uuid.New()
	return ledger.JournalEntry{
		ID:        id,
		Date:      d,
		Narration: "test",
		Lines: []ledger.JournalLine{
			{ID: uuid.New(), EntryID: id, AccountID: a.ID, AccountCode: a.Code, LineIndex: 0, DebitCents: cents},
			{ID: uuid.New(), EntryID: id, AccountID: b.ID, AccountCode: b.Code, LineIndex: 1, CreditCents: cents},
		},
	}
}

func seedTwo(t *testing.T, s *Store) (ledger.Account, ledger.Account) {
	t.Helper()
	cash := ledger.Account{ID: uuid.New(), Code: "1001", Name: "Cash", Type: ledger.AccountTypeAsset}
	capital := ledger.Account{ID: uuid.New(), Code: "3001", Name: "Capital", Type: ledger.AccountTypeEquity}
	s.SeedAccount(cash)
	s.SeedAccount(capital)
	return cash, capital
}

func TestCreateAccountDuplicateCode(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.CreateAccount(ctx, ledger.Account{ID: uuid.New(), Code: "1001", Name: "Cash", Type: ledger.AccountTypeAsset})
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, ledger.Account{ID: uuid.New(), Code: "1001", Name: "Dup", Type: ledger.AccountTypeAsset})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestAppendEntryOrderingAndPostedAt(t *testing.T) {
	s := New()
	ctx := context.Background()
	cash, capital := seedTwo(t, s)

	// insert out of date order
	e2, _, err := s.AppendEntry(ctx, entry(cash, capital, date(2025, 1, 5), 200), "", "")
	require.NoError(t, err)
	e1, _, err := s.AppendEntry(ctx, entry(cash, capital, date(2025, 1, 1), 100), "", "")
	require.NoError(t, err)
	e3, _, err := s.AppendEntry(ctx, entry(cash, capital, date(2025, 1, 5), 300), "", "")
	require.NoError(t, err)

	assert.True(t, e1.PostedAt.After(e2.PostedAt), "posted_at is monotonic")
	assert.True(t, e3.PostedAt.After(e1.PostedAt))

	got, err := s.EntriesByDateRange(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// date order first, then posting order within a date
	assert.Equal(t, e1.ID, got[0].ID)
	assert.Equal(t, e2.ID, got[1].ID)
	assert.Equal(t, e3.ID, got[2].ID)
}

func TestEntriesByDateRangeBounds(t *testing.T) {
	s := New()
	ctx := context.Background()
	cash, capital := seedTwo(t, s)
	for _, d := range []time.Time{date(2025, 1, 1), date(2025, 1, 5), date(2025, 1, 7)} {
		_, _, err := s.AppendEntry(ctx, entry(cash, capital, d, 100), "", "")
		require.NoError(t, err)
	}

	from, to := date(2025, 1, 2), date(2025, 1, 5)
	got, err := s.EntriesByDateRange(ctx, &from, &to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, date(2025, 1, 5), got[0].Date)

	from = date(2025, 1, 8)
	got, err = s.EntriesByDateRange(ctx, &from, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAppendEntryIdempotency(t *testing.T) {
	s := New()
	ctx := context.Background()
	cash, capital := seedTwo(t, s)

	first, replayed, err := s.AppendEntry(ctx, entry(cash, capital, date(2025, 1, 1), 100), "k1", "hash-a")
	require.NoError(t, err)
	assert.False(t, replayed)

	// same key + hash replays the stored entry, ignoring the new one
	second, replayed, err := s.AppendEntry(ctx, entry(cash, capital, date(2025, 1, 1), 100), "k1", "hash-a")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)

	_, _, err = s.AppendEntry(ctx, entry(cash, capital, date(2025, 1, 1), 999), "k1", "hash-b")
	assert.ErrorIs(t, err, errs.ErrIdempotencyConflict)

	rec, ok, err := s.IdempotencyRecord(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, rec.EntryID)
	assert.Equal(t, "hash-a", rec.RequestHash)
}

func TestAccountHasActivity(t *testing.T) {
	s := New()
	ctx := context.Background()
	cash, capital := seedTwo(t, s)

	has, err := s.AccountHasActivity(ctx, cash.ID)
	require.NoError(t, err)
	assert.False(t, has)

	_, _, err = s.AppendEntry(ctx, entry(cash, capital, date(2025, 1, 1), 100), "", "")
	require.NoError(t, err)

	has, err = s.AccountHasActivity(ctx, cash.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestEntryIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	cash, capital := seedTwo(t, s)

	e, _, err := s.AppendEntry(ctx, entry(cash, capital, date(2025, 1, 1), 100), "", "")
	require.NoError(t, err)

	// mutating the returned copy must not affect the stored entry
	e.Lines[0].DebitCents = 999999
	got, err := s.EntryByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Lines[0].DebitCents)
}
