package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/ledger/internal/errs"
	"github.com/finbooks/ledger/internal/ledger"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

func mustOpen(t *testing.T, dsn string) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func applyInitSQL(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Resolve init SQL path relative to this test file so CWD doesn't matter
	_, thisFile, _, _ := runtime.Caller(0)
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "../../../"))
	path := filepath.Join(repoRoot, "db", "migrations", "0001_init.sql")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read init sql: %v", err)
	}
	if _, err := s.pool.Exec(ctx, string(b)); err != nil {
		t.Fatalf("apply init sql: %v", err)
	}
}

func truncateAll(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.pool.Exec(ctx, `truncate entry_idempotency, entry_lines, entries, accounts`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func setupStore(t *testing.T) *Store {
	t.Helper()
	dsn := getTestDSN(t)
	s := mustOpen(t, dsn)
	t.Cleanup(s.Close)
	ctx := context.Background()
	var exists bool
	_ = s.pool.QueryRow(ctx, `select exists (select 1 from information_schema.tables where table_name = 'entries')`).Scan(&exists)
	if !exists {
		applyInitSQL(t, s)
	}
	truncateAll(t, s)
	return s
}

func seedAccounts(t *testing.T, s *Store) (ledger.Account, ledger.Account) {
	t.Helper()
	ctx := context.Background()
	cash, err := s.CreateAccount(ctx, ledger.Account{ID: uuid.New(), Code: "1001", Name: "Cash", Type: ledger.AccountTypeAsset})
	if err != nil {
		t.Fatalf("create cash: %v", err)
	}
	capital, err := s.CreateAccount(ctx, ledger.Account{ID: uuid.New(), Code: "3001", Name: "Capital", Type: ledger.AccountTypeEquity})
	if err != nil {
		t.Fatalf("create capital: %v", err)
	}
	return cash, capital
}

func buildEntry(a, b ledger.Account, d time.Time, cents int64) ledger.JournalEntry {
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

func TestCreateAccountConflict(t *testing.T) {
	s := setupStore(t)
	seedAccounts(t, s)
	_, err := s.CreateAccount(context.Background(), ledger.Account{ID: uuid.New(), Code: "1001", Name: "Dup", Type: ledger.AccountTypeAsset})
	if err != errs.ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAppendAndReadBack(t *testing.T) {
	s := setupStore(t)
	cash, capital := seedAccounts(t, s)
	ctx := context.Background()

	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e, replayed, err := s.AppendEntry(ctx, buildEntry(cash, capital, d, 100000), "", "")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if replayed {
		t.Fatal("unexpected replay")
	}
	if e.PostedAt.IsZero() {
		t.Fatal("posted_at not assigned")
	}

	got, err := s.EntryByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got.Lines) != 2 || got.Lines[0].AccountCode != "1001" || got.Lines[0].DebitCents != 100000 {
		t.Fatalf("unexpected entry: %+v", got)
	}

	list, err := s.EntriesByDateRange(ctx, &d, &d)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(list) != 1 || list[0].ID != e.ID {
		t.Fatalf("expected 1 entry in range, got %d", len(list))
	}
}

func TestIdempotencyRoundTrip(t *testing.T) {
	s := setupStore(t)
	cash, capital := seedAccounts(t, s)
	ctx := context.Background()
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first, _, err := s.AppendEntry(ctx, buildEntry(cash, capital, d, 100), "k1", "hash-a")
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	// same key + hash resolves to the stored entry
	second, replayed, err := s.AppendEntry(ctx, buildEntry(cash, capital, d, 100), "k1", "hash-a")
	if err != nil {
		t.Fatalf("replay append: %v", err)
	}
	if !replayed || second.ID != first.ID {
		t.Fatalf("expected replay of %s, got %s (replayed=%v)", first.ID, second.ID, replayed)
	}

	// same key, different hash is a conflict
	if _, _, err := s.AppendEntry(ctx, buildEntry(cash, capital, d, 999), "k1", "hash-b"); err != errs.ErrIdempotencyConflict {
		t.Fatalf("expected ErrIdempotencyConflict, got %v", err)
	}

	rec, ok, err := s.IdempotencyRecord(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("record lookup: ok=%v err=%v", ok, err)
	}
	if rec.EntryID != first.ID || rec.RequestHash != "hash-a" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestAccountHasActivityAndDelete(t *testing.T) {
	s := setupStore(t)
	cash, capital := seedAccounts(t, s)
	ctx := context.Background()

	has, err := s.AccountHasActivity(ctx, cash.ID)
	if err != nil || has {
		t.Fatalf("expected no activity, got has=%v err=%v", has, err)
	}

	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, _, err := s.AppendEntry(ctx, buildEntry(cash, capital, d, 100), "", ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	has, err = s.AccountHasActivity(ctx, cash.ID)
	if err != nil || !has {
		t.Fatalf("expected activity, got has=%v err=%v", has, err)
	}

	spare, err := s.CreateAccount(ctx, ledger.Account{ID: uuid.New(), Code: "9001", Name: "Spare", Type: ledger.AccountTypeExpense})
	if err != nil {
		t.Fatalf("create spare: %v", err)
	}
	if err := s.DeleteAccount(ctx, spare.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.AccountByCode(ctx, "9001"); err != errs.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
