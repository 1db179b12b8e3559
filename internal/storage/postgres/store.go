// Package postgres provides a pgx-backed storage implementation satisfying
// the repository and writer interfaces used by the services.
//
// It is intentionally small and explicit. Migrations that create the expected
// schema live under db/migrations. This package focuses on mapping between
// the domain entities and SQL rows and running the necessary transactions.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/ledger/internal/errs"
	"github.com/finbooks/ledger/internal/ledger"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Account reads ---

// AccountByCode returns the account with the given code.
func (s *Store) AccountByCode(ctx context.Context, code string) (ledger.Account, error) {
	var a ledger.Account
	err := s.pool.QueryRow(ctx, `
		select id, code, name, type from accounts where code = $1
	`, code).Scan(&a.ID, &a.Code, &a.Name, &a.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Account{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

// AccountsByCodes returns accounts keyed by code. Missing codes are absent
// from the result; the caller decides whether that is an error.
func (s *Store) AccountsByCodes(ctx context.Context, codes []string) (map[string]ledger.Account, error) {
	if len(codes) == 0 {
		return map[string]ledger.Account{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		select id, code, name, type from accounts where code = any($1)
	`, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]ledger.Account, len(codes))
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Type); err != nil {
			return nil, err
		}
		out[a.Code] = a
	}
	return out, rows.Err()
}

// ListAccounts returns all accounts ordered by code.
func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.pool.Query(ctx, `
		select id, code, name, type from accounts order by code asc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Account, 0)
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Type); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AccountHasActivity reports whether any journal line references the account.
func (s *Store) AccountHasActivity(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		select exists (select 1 from entry_lines where account_id = $1)
	`, accountID).Scan(&exists)
	return exists, err
}

// --- Account writes ---

// CreateAccount inserts an account row. A duplicate code surfaces as
// errs.ErrConflict.
func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	_, err := s.pool.Exec(ctx, `
		insert into accounts (id, code, name, type) values ($1,$2,$3,$4)
	`, a.ID, a.Code, a.Name, a.Type)
	if isUniqueViolation(err) {
		return ledger.Account{}, errs.ErrConflict
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

// DeleteAccount removes an account row. The directory service checks for
// activity before calling this.
func (s *Store) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from accounts where id = $1`, accountID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- Entry reads ---

// EntryByID returns an entry with lines populated in line order.
func (s *Store) EntryByID(ctx context.Context, entryID uuid.UUID) (ledger.JournalEntry, error) {
	var e ledger.JournalEntry
	err := s.pool.QueryRow(ctx, `
		select id, date, narration, posted_at, reverses_entry_id
		from entries
		where id = $1
	`, entryID).Scan(&e.ID, &e.Date, &e.Narration, &e.PostedAt, &e.ReversesEntryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.JournalEntry{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	rows, err := s.pool.Query(ctx, `
		select l.id, l.account_id, a.code, l.line_index, l.debit_cents, l.credit_cents
		from entry_lines l
		join accounts a on a.id = l.account_id
		where l.entry_id = $1
		order by l.line_index asc
	`, entryID)
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		ln := ledger.JournalLine{EntryID: entryID}
		if err := rows.Scan(&ln.ID, &ln.AccountID, &ln.AccountCode, &ln.LineIndex, &ln.DebitCents, &ln.CreditCents); err != nil {
			return ledger.JournalEntry{}, err
		}
		e.Lines = append(e.Lines, ln)
	}
	return e, rows.Err()
}

// EntriesByDateRange returns entries with date in [from, to] inclusive,
// ordered by date then posting order, lines populated. Nil bounds are open.
func (s *Store) EntriesByDateRange(ctx context.Context, from, to *time.Time) ([]ledger.JournalEntry, error) {
	rows, err := s.pool.Query(ctx, `
		select id, date, narration, posted_at, reverses_entry_id
		from entries
		where ($1::date is null or date >= $1)
		  and ($2::date is null or date <= $2)
		order by date asc, posted_seq asc
	`, dateArg(from), dateArg(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]ledger.JournalEntry, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var e ledger.JournalEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Narration, &e.PostedAt, &e.ReversesEntryID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}
	lineRows, err := s.pool.Query(ctx, `
		select l.id, l.entry_id, l.account_id, a.code, l.line_index, l.debit_cents, l.credit_cents
		from entry_lines l
		join accounts a on a.id = l.account_id
		where l.entry_id = any($1)
		order by l.entry_id, l.line_index asc
	`, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	idx := make(map[uuid.UUID]*ledger.JournalEntry, len(entries))
	for i := range entries {
		idx[entries[i].ID] = &entries[i]
	}
	for lineRows.Next() {
		var ln ledger.JournalLine
		if err := lineRows.Scan(&ln.ID, &ln.EntryID, &ln.AccountID, &ln.AccountCode, &ln.LineIndex, &ln.DebitCents, &ln.CreditCents); err != nil {
			return nil, err
		}
		if e := idx[ln.EntryID]; e != nil {
			e.Lines = append(e.Lines, ln)
		}
	}
	return entries, lineRows.Err()
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return ledger.Date(*t)
}

// --- Idempotency ---

// IdempotencyRecord returns the record for key, if any.
func (s *Store) IdempotencyRecord(ctx context.Context, key string) (ledger.IdempotencyRecord, bool, error) {
	rec := ledger.IdempotencyRecord{Key: key}
	err := s.pool.QueryRow(ctx, `
		select request_hash, entry_id from entry_idempotency where key = $1
	`, key).Scan(&rec.RequestHash, &rec.EntryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return ledger.IdempotencyRecord{}, false, err
	}
	return rec, true, nil
}

// --- Entry writes ---

// AppendEntry inserts the entry, its lines and (when key is non-empty) the
// idempotency record in one transaction. If a concurrent writer already
// recorded the key, this transaction rolls back and the stored record is
// re-read: an equal hash returns the winner's entry as a replay, a different
// hash is a conflict. The re-read is mandatory so that two concurrent
// identical requests both succeed with the same result.
func (s *Store) AppendEntry(ctx context.Context, e ledger.JournalEntry, key, requestHash string) (ledger.JournalEntry, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.JournalEntry{}, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var postedAt time.Time
	err = tx.QueryRow(ctx, `
		insert into entries (id, date, narration, reverses_entry_id)
		values ($1,$2,$3,$4)
		returning posted_at
	`, e.ID, e.Date, e.Narration, e.ReversesEntryID).Scan(&postedAt)
	if err != nil {
		return ledger.JournalEntry{}, false, err
	}
	for _, ln := range e.Lines {
		if _, err := tx.Exec(ctx, `
			insert into entry_lines (id, entry_id, account_id, line_index, debit_cents, credit_cents)
			values ($1,$2,$3,$4,$5,$6)
		`, ln.ID, e.ID, ln.AccountID, ln.LineIndex, ln.DebitCents, ln.CreditCents); err != nil {
			return ledger.JournalEntry{}, false, fmt.Errorf("insert line: %w", err)
		}
	}
	if key != "" {
		ct, err := tx.Exec(ctx, `
			insert into entry_idempotency (key, request_hash, entry_id)
			values ($1,$2,$3)
			on conflict (key) do nothing
		`, key, requestHash, e.ID)
		if err != nil {
			return ledger.JournalEntry{}, false, err
		}
		if ct.RowsAffected() == 0 {
			// Lost the race: discard our entry and resolve against the winner.
			_ = tx.Rollback(ctx)
			rec, ok, err := s.IdempotencyRecord(ctx, key)
			if err != nil {
				return ledger.JournalEntry{}, false, err
			}
			if !ok {
				return ledger.JournalEntry{}, false, errs.ErrConflict
			}
			if rec.RequestHash != requestHash {
				return ledger.JournalEntry{}, false, errs.ErrIdempotencyConflict
			}
			winner, err := s.EntryByID(ctx, rec.EntryID)
			return winner, true, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.JournalEntry{}, false, err
	}
	e.PostedAt = postedAt
	return e, false, nil
}

// SeedDev inserts a small chart of accounts for quick local testing. Codes
// that already exist are left untouched.
func (s *Store) SeedDev(ctx context.Context) ([]ledger.Account, error) {
	seed := []ledger.Account{
		{ID: uuid.New(), Code: "1001", Name: "Cash", Type: ledger.AccountTypeAsset},
		{ID: uuid.New(), Code: "3001", Name: "Capital", Type: ledger.AccountTypeEquity},
		{ID: uuid.New(), Code: "4001", Name: "Sales", Type: ledger.AccountTypeRevenue},
		{ID: uuid.New(), Code: "5001", Name: "Rent", Type: ledger.AccountTypeExpense},
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for _, a := range seed {
		if _, err := tx.Exec(ctx, `
			insert into accounts (id, code, name, type)
			values ($1,$2,$3,$4)
			on conflict (code) do nothing
		`, a.ID, a.Code, a.Name, a.Type); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return seed, nil
}
