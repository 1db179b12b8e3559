// Package memory provides an in-memory implementation of the ledger store
// used for development and tests. It keeps code paths easy to follow while
// allowing the postgres store to be plugged in unchanged.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/ledger/internal/errs"
	"github.com/finbooks/ledger/internal/ledger"
)

// entryKey orders entries asc by (Date, Seq): calendar date first, then
// insertion order within the same date.
type entryKey struct {
	Date time.Time
	Seq  uint64
	ID   uuid.UUID
}

// Store is an in-memory implementation of the repository and writer
// interfaces consumed by the services. Guarded by an RWMutex.
type Store struct {
	mu             sync.RWMutex
	accountsByCode map[string]ledger.Account
	accountsByID   map[uuid.UUID]ledger.Account
	entries        map[uuid.UUID]*ledger.JournalEntry
	entryKeys      []entryKey
	idem           map[string]ledger.IdempotencyRecord
	// linesByAccount counts lines per account for activity checks.
	linesByAccount map[uuid.UUID]int
	seq            uint64
	lastPosted     time.Time
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		accountsByCode: make(map[string]ledger.Account),
		accountsByID:   make(map[uuid.UUID]ledger.Account),
		entries:        make(map[uuid.UUID]*ledger.JournalEntry),
		idem:           make(map[string]ledger.IdempotencyRecord),
		linesByAccount: make(map[uuid.UUID]int),
	}
}

// Reset clears all state. Test helper.
func (s *Store) Reset() {
	s.mu.Lock()
	s.accountsByCode = map[string]ledger.Account{}
	s.accountsByID = map[uuid.UUID]ledger.Account{}
	s.entries = map[uuid.UUID]*ledger.JournalEntry{}
	s.entryKeys = nil
	s.idem = map[string]ledger.IdempotencyRecord{}
	s.linesByAccount = map[uuid.UUID]int{}
	s.seq = 0
	s.lastPosted = time.Time{}
	s.mu.Unlock()
}

// Ready reports store health. The in-memory store is always ready.
func (s *Store) Ready(_ context.Context) error { return nil }

// CreateAccount persists a new account. The code must be unused.
func (s *Store) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accountsByCode[a.Code]; ok {
		return ledger.Account{}, errs.ErrConflict
	}
	s.accountsByCode[a.Code] = a
	s.accountsByID[a.ID] = a
	return a, nil
}

// DeleteAccount removes an account. The directory service checks for
// activity before calling this; the store does a plain delete.
func (s *Store) DeleteAccount(_ context.Context, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accountsByID[accountID]
	if !ok {
		return errs.ErrNotFound
	}
	delete(s.accountsByID, accountID)
	delete(s.accountsByCode, a.Code)
	return nil
}

// AccountByCode returns the account with the given code.
func (s *Store) AccountByCode(_ context.Context, code string) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accountsByCode[code]
	if !ok {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

// AccountsByCodes returns the accounts found for the given codes. Missing
// codes are simply absent from the result; the caller decides whether that
// is an error.
func (s *Store) AccountsByCodes(_ context.Context, codes []string) (map[string]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]ledger.Account, len(codes))
	for _, c := range codes {
		if a, ok := s.accountsByCode[c]; ok {
			out[c] = a
		}
	}
	return out, nil
}

// ListAccounts returns all accounts sorted by code.
func (s *Store) ListAccounts(_ context.Context) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Account, 0, len(s.accountsByCode))
	for _, a := range s.accountsByCode {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// AccountHasActivity reports whether any journal line references the account.
func (s *Store) AccountHasActivity(_ context.Context, accountID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linesByAccount[accountID] > 0, nil
}

// EntryByID returns a single entry.
func (s *Store) EntryByID(_ context.Context, entryID uuid.UUID) (ledger.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	if !ok {
		return ledger.JournalEntry{}, errs.ErrNotFound
	}
	return cloneEntry(e), nil
}

// EntriesByDateRange returns entries with date in [from, to] inclusive,
// ordered by date then posting order. Nil bounds are open.
func (s *Store) EntriesByDateRange(_ context.Context, from, to *time.Time) ([]ledger.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.entryKeys
	start := 0
	if from != nil {
		f := ledger.Date(*from)
		start = sort.Search(len(keys), func(i int) bool { return !keys[i].Date.Before(f) })
	}
	end := len(keys)
	if to != nil {
		t := ledger.Date(*to)
		end = sort.Search(len(keys), func(i int) bool { return keys[i].Date.After(t) })
	}
	if start >= end {
		return nil, nil
	}
	out := make([]ledger.JournalEntry, 0, end-start)
	for _, k := range keys[start:end] {
		out = append(out, cloneEntry(s.entries[k.ID]))
	}
	return out, nil
}

// IdempotencyRecord returns the record for key, if any.
func (s *Store) IdempotencyRecord(_ context.Context, key string) (ledger.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.idem[key]
	return rec, ok, nil
}

// AppendEntry persists the entry, its lines and (when key is non-empty) the
// idempotency record as one atomic unit. If a record for the key already
// exists, the stored entry wins: an equal hash returns it as a replay, a
// different hash is a conflict. PostedAt is assigned here and is strictly
// monotonic across entries.
func (s *Store) AppendEntry(_ context.Context, entry ledger.JournalEntry, key, requestHash string) (ledger.JournalEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key != "" {
		if rec, ok := s.idem[key]; ok {
			if rec.RequestHash != requestHash {
				return ledger.JournalEntry{}, false, errs.ErrIdempotencyConflict
			}
			prev, ok := s.entries[rec.EntryID]
			if !ok {
				return ledger.JournalEntry{}, false, errs.ErrNotFound
			}
			return cloneEntry(prev), true, nil
		}
	}

	now := time.Now().UTC()
	if !now.After(s.lastPosted) {
		now = s.lastPosted.Add(time.Nanosecond)
	}
	s.lastPosted = now
	s.seq++

	e := cloneEntry(&entry)
	e.PostedAt = now
	s.entries[e.ID] = &e
	s.insertEntryIndexLocked(entryKey{Date: e.Date, Seq: s.seq, ID: e.ID})
	for _, ln := range e.Lines {
		s.linesByAccount[ln.AccountID]++
	}
	if key != "" {
		s.idem[key] = ledger.IdempotencyRecord{Key: key, RequestHash: requestHash, EntryID: e.ID}
	}
	return cloneEntry(&e), false, nil
}

// SeedAccount inserts an account directly. Test and dev helper.
func (s *Store) SeedAccount(a ledger.Account) {
	s.mu.Lock()
	s.accountsByCode[a.Code] = a
	s.accountsByID[a.ID] = a
	s.mu.Unlock()
}

// insertEntryIndexLocked inserts k into the sorted index, keeping order asc
// by (Date, Seq). Caller must hold the write lock.
func (s *Store) insertEntryIndexLocked(k entryKey) {
	keys := s.entryKeys
	i := sort.Search(len(keys), func(i int) bool {
		if keys[i].Date.After(k.Date) {
			return true
		}
		return keys[i].Date.Equal(k.Date) && keys[i].Seq > k.Seq
	})
	if i == len(keys) {
		s.entryKeys = append(keys, k)
		return
	}
	keys = append(keys, entryKey{})
	copy(keys[i+1:], keys[i:])
	keys[i] = k
	s.entryKeys = keys
}

func cloneEntry(e *ledger.JournalEntry) ledger.JournalEntry {
	out := *e
	out.Lines = make([]ledger.JournalLine, len(e.Lines))
	copy(out.Lines, e.Lines)
	if e.ReversesEntryID != nil {
		id := *e.ReversesEntryID
		out.ReversesEntryID = &id
	}
	return out
}
