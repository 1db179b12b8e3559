// Package posting implements entry creation: idempotency guard, account
// resolution, double-entry validation and the atomic append to the ledger
// store. Entries are immutable once posted; the only remedial operation is a
// reversal, which runs through this same path.
package posting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/ledger/internal/errs"
	"github.com/finbooks/ledger/internal/idem"
	"github.com/finbooks/ledger/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	AccountsByCodes(ctx context.Context, codes []string) (map[string]ledger.Account, error)
	EntryByID(ctx context.Context, entryID uuid.UUID) (ledger.JournalEntry, error)
	EntriesByDateRange(ctx context.Context, from, to *time.Time) ([]ledger.JournalEntry, error)
	IdempotencyRecord(ctx context.Context, key string) (ledger.IdempotencyRecord, bool, error)
}

// Writer defines the single write operation needed by the service. AppendEntry
// persists the entry, its lines and (when key is non-empty) the idempotency
// record in one atomic unit, and reports whether a concurrent writer already
// created the entry for the same key and payload.
type Writer interface {
	AppendEntry(ctx context.Context, e ledger.JournalEntry, key, requestHash string) (ledger.JournalEntry, bool, error)
}

// Service exposes validation and creation of journal entries.
type Service interface {
	Validate(ctx context.Context, c ledger.CandidateEntry) error
	Create(ctx context.Context, c ledger.CandidateEntry, key string) (ledger.JournalEntry, bool, error)
	Reverse(ctx context.Context, entryID uuid.UUID, date time.Time, narration, key string) (ledger.JournalEntry, bool, error)
	Get(ctx context.Context, entryID uuid.UUID) (ledger.JournalEntry, error)
	List(ctx context.Context, from, to *time.Time) ([]ledger.JournalEntry, error)
}

type service struct {
	repo   Repo
	writer Writer
	now    func() time.Time
}

func New(repo Repo, writer Writer) Service {
	return &service{repo: repo, writer: writer, now: time.Now}
}

// Validate resolves the candidate's accounts and runs the double-entry rules
// without persisting anything.
func (s *service) Validate(ctx context.Context, c ledger.CandidateEntry) error {
	accounts, err := s.resolve(ctx, c)
	if err != nil {
		return err
	}
	return s.validate(ctx, c, accounts)
}

// Create posts a candidate entry. With a non-empty key the idempotency guard
// runs first: a known key with an identical payload returns the original
// entry (replayed=true) without re-executing any business logic; a known key
// with a different payload fails with ErrIdempotencyConflict.
func (s *service) Create(ctx context.Context, c ledger.CandidateEntry, key string) (ledger.JournalEntry, bool, error) {
	var hash string
	if key != "" {
		if !idem.ValidKey(key) {
			return ledger.JournalEntry{}, false, errs.NewValidation("invalid_idempotency_key",
				"idempotency key must be between %d and %d characters", idem.MinKeyLen, idem.MaxKeyLen)
		}
		hash = idem.Fingerprint(c)
		rec, ok, err := s.repo.IdempotencyRecord(ctx, key)
		if err != nil {
			return ledger.JournalEntry{}, false, err
		}
		if ok {
			if rec.RequestHash != hash {
				return ledger.JournalEntry{}, false, errs.ErrIdempotencyConflict
			}
			prev, err := s.repo.EntryByID(ctx, rec.EntryID)
			return prev, true, err
		}
	}

	accounts, err := s.resolve(ctx, c)
	if err != nil {
		return ledger.JournalEntry{}, false, err
	}
	if err := s.validate(ctx, c, accounts); err != nil {
		return ledger.JournalEntry{}, false, err
	}

	entryID := uuid.New()
	e := ledger.JournalEntry{
		ID:              entryID,
		Date:            ledger.Date(c.Date),
		Narration:       c.Narration,
		ReversesEntryID: c.ReversesEntryID,
		Lines:           make([]ledger.JournalLine, 0, len(c.Lines)),
	}
	for i, ln := range c.Lines {
		acc := accounts[ln.AccountCode]
		e.Lines = append(e.Lines, ledger.JournalLine{
			ID:          uuid.New(),
			EntryID:     entryID,
			AccountID:   acc.ID,
			AccountCode: acc.Code,
			LineIndex:   i,
			DebitCents:  ln.DebitCents,
			CreditCents: ln.CreditCents,
		})
	}
	return s.writer.AppendEntry(ctx, e, key, hash)
}

// Reverse posts a new entry inverting entryID line by line. It is an ordinary
// create: full validation and the idempotency guard apply.
func (s *service) Reverse(ctx context.Context, entryID uuid.UUID, date time.Time, narration, key string) (ledger.JournalEntry, bool, error) {
	orig, err := s.repo.EntryByID(ctx, entryID)
	if err != nil {
		return ledger.JournalEntry{}, false, err
	}
	if date.IsZero() {
		date = s.now()
	}
	return s.Create(ctx, ledger.ReversalOf(orig, date, narration), key)
}

func (s *service) Get(ctx context.Context, entryID uuid.UUID) (ledger.JournalEntry, error) {
	return s.repo.EntryByID(ctx, entryID)
}

func (s *service) List(ctx context.Context, from, to *time.Time) ([]ledger.JournalEntry, error) {
	return s.repo.EntriesByDateRange(ctx, from, to)
}

// resolve looks up every account code referenced by the candidate. Missing
// codes are reported in one combined error.
func (s *service) resolve(ctx context.Context, c ledger.CandidateEntry) (map[string]ledger.Account, error) {
	codes := make([]string, 0, len(c.Lines))
	for _, ln := range c.Lines {
		codes = append(codes, ln.AccountCode)
	}
	found, err := s.repo.AccountsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	var missing []string
	seen := make(map[string]struct{}, len(codes))
	for _, cd := range codes {
		if _, dup := seen[cd]; dup {
			continue
		}
		seen[cd] = struct{}{}
		if _, ok := found[cd]; !ok {
			missing = append(missing, cd)
		}
	}
	if len(missing) > 0 {
		return nil, &errs.MissingAccounts{Codes: missing}
	}
	return found, nil
}
